package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	proposalapp "github.com/tierquote/backend/internal/application/proposal"
	"github.com/tierquote/backend/internal/domain/engagement"
	"github.com/tierquote/backend/internal/domain/estimate"
	"github.com/tierquote/backend/internal/domain/financing"
	"github.com/tierquote/backend/internal/domain/shared"
	"github.com/tierquote/backend/internal/infrastructure/cache"
	"github.com/tierquote/backend/internal/infrastructure/storage"
	"github.com/tierquote/backend/internal/interfaces/http/dto"
	"github.com/tierquote/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// =============================================================================
// Fakes
// =============================================================================

// fakeEstimateRepo serves a single estimate by token and records writes.
type fakeEstimateRepo struct {
	est        *estimate.Estimate
	list       []estimate.Estimate
	signResult bool
	signErr    error
	signedWith *estimate.SignPatch
}

func (r *fakeEstimateRepo) FindByToken(_ context.Context, token string) (*estimate.Estimate, error) {
	if r.est == nil || r.est.Token != token {
		return nil, shared.ErrNotFound
	}
	clone := *r.est
	return &clone, nil
}

func (r *fakeEstimateRepo) FindByID(_ context.Context, id uuid.UUID) (*estimate.Estimate, error) {
	if r.est == nil || r.est.ID != id {
		return nil, shared.ErrNotFound
	}
	clone := *r.est
	return &clone, nil
}

func (r *fakeEstimateRepo) FindAll(context.Context, shared.Filter) ([]estimate.Estimate, int64, error) {
	return r.list, int64(len(r.list)), nil
}

func (r *fakeEstimateRepo) Save(_ context.Context, est *estimate.Estimate) error {
	r.est = est
	return nil
}

func (r *fakeEstimateRepo) SetLineItemSelected(context.Context, uuid.UUID, bool) error { return nil }

func (r *fakeEstimateRepo) MarkViewed(_ context.Context, id uuid.UUID) (bool, error) {
	if r.est == nil || r.est.ID != id || r.est.Status != estimate.StatusSent || r.est.IsSigned() {
		return false, nil
	}
	r.est.Status = estimate.StatusViewed
	return true, nil
}

func (r *fakeEstimateRepo) SetSnooze(_ context.Context, id uuid.UUID, until time.Time) (bool, error) {
	if r.est == nil || r.est.ID != id || r.est.IsSigned() {
		return false, nil
	}
	r.est.SnoozedUntil = &until
	return true, nil
}

func (r *fakeEstimateRepo) SetStatus(_ context.Context, id uuid.UUID, status estimate.Status) (bool, error) {
	if r.est == nil || r.est.ID != id || r.est.IsSigned() {
		return false, nil
	}
	r.est.Status = status
	return true, nil
}

func (r *fakeEstimateRepo) Sign(_ context.Context, _ uuid.UUID, patch estimate.SignPatch) (bool, error) {
	r.signedWith = &patch
	return r.signResult, r.signErr
}

func (r *fakeEstimateRepo) SetDocument(context.Context, uuid.UUID, string, string) error { return nil }

type fakePlanRepo struct {
	plans []financing.Plan
}

func (r *fakePlanRepo) FindByID(_ context.Context, id uuid.UUID) (*financing.Plan, error) {
	for i := range r.plans {
		if r.plans[i].ID == id {
			return &r.plans[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakePlanRepo) FindActive(context.Context) ([]financing.Plan, error) {
	return r.plans, nil
}

type fakeSettings struct{}

func (fakeSettings) Settings(context.Context) (proposalapp.CompanySettings, error) {
	return proposalapp.CompanySettings{Name: "Summit Heating & Air"}, nil
}

type fakeGenerator struct {
	err error
}

func (g *fakeGenerator) RenderSignedProposal(context.Context, proposalapp.DocumentData) ([]byte, error) {
	if g.err != nil {
		return nil, g.err
	}
	return []byte("%PDF-1.7 test"), nil
}

type fakeEventRepo struct {
	events []engagement.Event
}

func (r *fakeEventRepo) Append(_ context.Context, event *engagement.Event) error {
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeEventRepo) FindByEstimate(context.Context, uuid.UUID) ([]engagement.Event, error) {
	return r.events, nil
}

// =============================================================================
// Fixtures
// =============================================================================

func newOpenEstimate(t *testing.T) *estimate.Estimate {
	t.Helper()
	est, err := estimate.NewEstimate("EST-2041", "Dana Whitfield")
	require.NoError(t, err)
	est.Status = estimate.StatusSent
	taxRate := decimal.RequireFromString("0.085")
	est.TaxRate = &taxRate
	est.TierLabels = []estimate.TierInfo{
		{Tier: 1, Name: "Good"},
		{Tier: 2, Name: "Better"},
	}

	base, err := estimate.NewLineItem(est.ID, 1, "Heat pump installation", decimal.NewFromInt(1), decimal.NewFromInt(4200))
	require.NoError(t, err)
	better, err := estimate.NewLineItem(est.ID, 2, "Heat pump installation, variable speed", decimal.NewFromInt(1), decimal.NewFromInt(5600))
	require.NoError(t, err)
	addon, err := estimate.NewLineItem(est.ID, 0, "Smart thermostat", decimal.NewFromInt(1), decimal.NewFromInt(300))
	require.NoError(t, err)
	addon.IsAddon = true

	est.Items = []estimate.LineItem{*base, *better, *addon}
	return est
}

type proposalEnv struct {
	handler *ProposalHandler
	repo    *fakeEstimateRepo
	events  *fakeEventRepo
	router  *gin.Engine
}

func newProposalEnv(est *estimate.Estimate) *proposalEnv {
	logger := zap.NewNop()
	repo := &fakeEstimateRepo{est: est, signResult: true}
	plans := &fakePlanRepo{}
	events := &fakeEventRepo{}
	sessions := cache.NewInMemorySessionStore()
	store := storage.NewStubDocumentStore()

	viewService := proposalapp.NewViewService(repo, plans, fakeSettings{}, logger)
	acceptanceService := proposalapp.NewAcceptanceService(repo, plans, &fakeGenerator{}, store, fakeSettings{}, logger)
	engagementService := proposalapp.NewEngagementService(repo, events, sessions, logger)

	h := NewProposalHandler(viewService, acceptanceService, engagementService, nil)

	router := gin.New()
	router.GET("/api/v1/proposals/:token", h.Get)
	router.POST("/api/v1/proposals/:token/accept", h.Accept)
	router.POST("/api/v1/proposals/:token/events", h.RecordEvent)
	router.POST("/api/v1/proposals/:token/session", h.RecordSession)

	return &proposalEnv{handler: h, repo: repo, events: events, router: router}
}

func acceptBody(tier int) string {
	return `{"signer_name":"Dana Whitfield","signature_data":"data:image/png;base64,iVBORw0KGgo=","selected_tier":` + jsonInt(tier) + `}`
}

func jsonInt(v int) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// =============================================================================
// Tests
// =============================================================================

func TestProposalHandler_Get(t *testing.T) {
	t.Run("returns proposal payload for valid token", func(t *testing.T) {
		est := newOpenEstimate(t)
		env := newProposalEnv(est)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/proposals/"+est.Token, nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "EST-2041", data["number"])
		assert.Equal(t, false, data["is_signed"])
		tiers := data["tiers"].([]interface{})
		assert.Len(t, tiers, 2)
	})

	t.Run("first open moves a sent estimate to viewed", func(t *testing.T) {
		est := newOpenEstimate(t)
		env := newProposalEnv(est)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/proposals/"+est.Token, nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, estimate.StatusViewed, env.repo.est.Status)
	})

	t.Run("unknown token returns 404", func(t *testing.T) {
		env := newProposalEnv(newOpenEstimate(t))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/proposals/wrong-token", nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeNotFound)
	})

	t.Run("expired proposal returns 410", func(t *testing.T) {
		est := newOpenEstimate(t)
		past := time.Now().Add(-time.Hour)
		est.AutoDeclineAt = &past
		env := newProposalEnv(est)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/proposals/"+est.Token, nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusGone, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeExpired)
	})

	t.Run("withdrawn proposal returns 410", func(t *testing.T) {
		est := newOpenEstimate(t)
		est.Status = estimate.StatusLost
		env := newProposalEnv(est)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/proposals/"+est.Token, nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusGone, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeUnavailable)
	})

	t.Run("signed proposal still renders", func(t *testing.T) {
		est := newOpenEstimate(t)
		now := time.Now()
		tier := 1
		total := decimal.NewFromInt(4882)
		est.SignedAt = &now
		est.SignerName = "Dana Whitfield"
		est.Status = estimate.StatusWon
		est.SelectedTier = &tier
		est.Total = &total
		env := newProposalEnv(est)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/proposals/"+est.Token, nil)
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, true, data["is_signed"])
		assert.Equal(t, "Dana Whitfield", data["signer_name"])
	})
}

func TestProposalHandler_Accept(t *testing.T) {
	t.Run("valid submission commits and returns document URL", func(t *testing.T) {
		est := newOpenEstimate(t)
		env := newProposalEnv(est)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/proposals/"+est.Token+"/accept", strings.NewReader(acceptBody(1)))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, true, data["ok"])
		assert.NotEmpty(t, data["proposal_pdf_url"])

		require.NotNil(t, env.repo.signedWith)
		assert.Equal(t, "Dana Whitfield", env.repo.signedWith.SignerName)
		assert.Equal(t, 1, env.repo.signedWith.SelectedTier)
	})

	t.Run("already signed returns 409", func(t *testing.T) {
		est := newOpenEstimate(t)
		now := time.Now()
		est.SignedAt = &now
		env := newProposalEnv(est)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/proposals/"+est.Token+"/accept", strings.NewReader(acceptBody(1)))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeAlreadyAccepted)
	})

	t.Run("losing the write race returns 409", func(t *testing.T) {
		est := newOpenEstimate(t)
		env := newProposalEnv(est)
		env.repo.signResult = false

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/proposals/"+est.Token+"/accept", strings.NewReader(acceptBody(1)))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeAlreadyAccepted)
	})

	t.Run("expired proposal returns 410", func(t *testing.T) {
		est := newOpenEstimate(t)
		past := time.Now().Add(-time.Minute)
		est.AutoDeclineAt = &past
		env := newProposalEnv(est)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/proposals/"+est.Token+"/accept", strings.NewReader(acceptBody(1)))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusGone, w.Code)
	})

	t.Run("tier not offered returns 400", func(t *testing.T) {
		est := newOpenEstimate(t)
		env := newProposalEnv(est)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/proposals/"+est.Token+"/accept", strings.NewReader(acceptBody(7)))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeInvalidInput)
	})

	t.Run("plain-text signature fails validation", func(t *testing.T) {
		est := newOpenEstimate(t)
		env := newProposalEnv(est)

		body := `{"signer_name":"Dana Whitfield","signature_data":"Dana","selected_tier":1}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/proposals/"+est.Token+"/accept", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "signature_data")
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		est := newOpenEstimate(t)
		env := newProposalEnv(est)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/proposals/"+est.Token+"/accept", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProposalHandler_RecordEvent(t *testing.T) {
	t.Run("valid event is accepted", func(t *testing.T) {
		est := newOpenEstimate(t)
		env := newProposalEnv(est)

		body := `{"type":"page_view","session_id":"sess-1"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/proposals/"+est.Token+"/events", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		require.Len(t, env.events.events, 1)
		assert.Equal(t, engagement.EventPageView, env.events.events[0].Type)
	})

	t.Run("unknown event type is dropped, not rejected", func(t *testing.T) {
		est := newOpenEstimate(t)
		env := newProposalEnv(est)

		body := `{"type":"mouse_wiggle","session_id":"sess-1"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/proposals/"+est.Token+"/events", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Empty(t, env.events.events)
	})

	t.Run("unknown token returns 404", func(t *testing.T) {
		env := newProposalEnv(newOpenEstimate(t))

		body := `{"type":"page_view"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/proposals/nope/events", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestProposalHandler_RecordSession(t *testing.T) {
	est := newOpenEstimate(t)
	env := newProposalEnv(est)

	body := `{"session_id":"sess-1","duration_seconds":42}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/proposals/"+est.Token+"/session", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
