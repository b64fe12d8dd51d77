package proposal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tierquote/backend/internal/domain/estimate"
	"github.com/tierquote/backend/internal/domain/financing"
	"github.com/tierquote/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// =============================================================================
// Mocks
// =============================================================================

type MockEstimateRepository struct {
	mock.Mock
}

func (m *MockEstimateRepository) FindByToken(ctx context.Context, token string) (*estimate.Estimate, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*estimate.Estimate), args.Error(1)
}

func (m *MockEstimateRepository) FindByID(ctx context.Context, id uuid.UUID) (*estimate.Estimate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*estimate.Estimate), args.Error(1)
}

func (m *MockEstimateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]estimate.Estimate, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]estimate.Estimate), args.Get(1).(int64), args.Error(2)
}

func (m *MockEstimateRepository) Save(ctx context.Context, est *estimate.Estimate) error {
	args := m.Called(ctx, est)
	return args.Error(0)
}

func (m *MockEstimateRepository) SetLineItemSelected(ctx context.Context, itemID uuid.UUID, selected bool) error {
	args := m.Called(ctx, itemID, selected)
	return args.Error(0)
}

func (m *MockEstimateRepository) MarkViewed(ctx context.Context, estimateID uuid.UUID) (bool, error) {
	args := m.Called(ctx, estimateID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEstimateRepository) SetSnooze(ctx context.Context, estimateID uuid.UUID, until time.Time) (bool, error) {
	args := m.Called(ctx, estimateID, until)
	return args.Bool(0), args.Error(1)
}

func (m *MockEstimateRepository) SetStatus(ctx context.Context, estimateID uuid.UUID, status estimate.Status) (bool, error) {
	args := m.Called(ctx, estimateID, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockEstimateRepository) Sign(ctx context.Context, estimateID uuid.UUID, patch estimate.SignPatch) (bool, error) {
	args := m.Called(ctx, estimateID, patch)
	return args.Bool(0), args.Error(1)
}

func (m *MockEstimateRepository) SetDocument(ctx context.Context, estimateID uuid.UUID, key, url string) error {
	args := m.Called(ctx, estimateID, key, url)
	return args.Error(0)
}

type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*financing.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financing.Plan), args.Error(1)
}

func (m *MockPlanRepository) FindActive(ctx context.Context) ([]financing.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]financing.Plan), args.Error(1)
}

type MockDocumentGenerator struct {
	mock.Mock
}

func (m *MockDocumentGenerator) RenderSignedProposal(ctx context.Context, data DocumentData) ([]byte, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Upload(ctx context.Context, key string, content []byte, contentType string) error {
	args := m.Called(ctx, key, content, contentType)
	return args.Error(0)
}

func (m *MockDocumentStore) SignedURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Error(1)
}

type MockSettingsSource struct {
	mock.Mock
}

func (m *MockSettingsSource) Settings(ctx context.Context) (CompanySettings, error) {
	args := m.Called(ctx)
	return args.Get(0).(CompanySettings), args.Error(1)
}

// =============================================================================
// Test Helpers
// =============================================================================

func newTestService(estimateRepo *MockEstimateRepository, planRepo *MockPlanRepository, generator *MockDocumentGenerator, store *MockDocumentStore, settings *MockSettingsSource) *AcceptanceService {
	return NewAcceptanceService(estimateRepo, planRepo, generator, store, settings, zap.NewNop())
}

func buildSignableEstimate(t *testing.T) *estimate.Estimate {
	t.Helper()

	est, err := estimate.NewEstimate("EST-2041", "Dana Whitfield")
	assert.NoError(t, err)
	est.Status = estimate.StatusSent
	est.CustomerEmail = "dana@example.com"
	taxRate := decimal.RequireFromString("0.085")
	est.TaxRate = &taxRate
	est.TierLabels = []estimate.TierInfo{
		{Tier: 1, Name: "Good"},
		{Tier: 2, Name: "Best"},
	}

	tier1, err := estimate.NewLineItem(est.ID, 1, "14 SEER heat pump system", decimal.NewFromInt(1), decimal.RequireFromString("4200"))
	assert.NoError(t, err)
	tier2, err := estimate.NewLineItem(est.ID, 2, "18 SEER variable-speed system", decimal.NewFromInt(1), decimal.RequireFromString("7900"))
	assert.NoError(t, err)
	addon, err := estimate.NewLineItem(est.ID, 0, "Smart thermostat", decimal.NewFromInt(1), decimal.RequireFromString("300"))
	assert.NoError(t, err)
	addon.IsAddon = true

	est.Items = []estimate.LineItem{*tier1, *tier2, *addon}
	return est
}

func validAcceptRequest(est *estimate.Estimate) AcceptProposalRequest {
	return AcceptProposalRequest{
		SignerName:       "Dana Whitfield",
		SignatureData:    "data:image/png;base64,iVBORw0KGgo=",
		SelectedTier:     1,
		SelectedAddonIDs: []uuid.UUID{est.Items[2].ID},
	}
}

func expectSuccessfulDocument(generator *MockDocumentGenerator, store *MockDocumentStore, estimateRepo *MockEstimateRepository) {
	generator.On("RenderSignedProposal", mock.Anything, mock.Anything).Return([]byte("%PDF-1.7"), nil)
	store.On("Upload", mock.Anything, mock.Anything, mock.Anything, "application/pdf").Return(nil)
	store.On("SignedURL", mock.Anything, mock.Anything, mock.Anything).Return("https://docs.example.com/signed.pdf", nil)
	estimateRepo.On("SetDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
}

// =============================================================================
// Test Cases
// =============================================================================

func TestAcceptanceService_Accept_Success(t *testing.T) {
	ctx := context.Background()
	est := buildSignableEstimate(t)

	estimateRepo := new(MockEstimateRepository)
	planRepo := new(MockPlanRepository)
	generator := new(MockDocumentGenerator)
	store := new(MockDocumentStore)
	settings := new(MockSettingsSource)
	service := newTestService(estimateRepo, planRepo, generator, store, settings)

	estimateRepo.On("FindByToken", ctx, est.Token).Return(est, nil)
	estimateRepo.On("SetLineItemSelected", ctx, est.Items[2].ID, true).Return(nil)
	estimateRepo.On("Sign", ctx, est.ID, mock.Anything).Return(true, nil)
	settings.On("Settings", mock.Anything).Return(CompanySettings{Name: "Comfort Air"}, nil)
	expectSuccessfulDocument(generator, store, estimateRepo)

	resp, psc, err := service.Accept(ctx, est.Token, validAcceptRequest(est), "203.0.113.9", "sess-1")

	assert.NoError(t, err)
	assert.True(t, resp.OK)
	assert.NotNil(t, resp.ProposalPDFURL)
	assert.Equal(t, "https://docs.example.com/signed.pdf", *resp.ProposalPDFURL)

	// The committed patch carries the computed amounts.
	patch := estimateRepo.Calls[2].Arguments.Get(2).(estimate.SignPatch)
	assert.Equal(t, "4500.00", patch.Subtotal.StringFixed(2))
	assert.Equal(t, "382.50", patch.TaxAmount.StringFixed(2))
	assert.Equal(t, "4882.50", patch.Total.StringFixed(2))
	assert.Equal(t, 1, patch.SelectedTier)

	assert.Equal(t, est.ID, psc.EstimateID)
	assert.Equal(t, "Good", psc.TierName)
	assert.True(t, psc.HasDocument())
	estimateRepo.AssertExpectations(t)
}

func TestAcceptanceService_Accept_WithFinancing(t *testing.T) {
	ctx := context.Background()
	est := buildSignableEstimate(t)
	plan, err := financing.NewPlan("60 months same-as-cash", decimal.RequireFromString("0.03"), 60)
	assert.NoError(t, err)

	estimateRepo := new(MockEstimateRepository)
	planRepo := new(MockPlanRepository)
	generator := new(MockDocumentGenerator)
	store := new(MockDocumentStore)
	settings := new(MockSettingsSource)
	service := newTestService(estimateRepo, planRepo, generator, store, settings)

	estimateRepo.On("FindByToken", ctx, est.Token).Return(est, nil)
	estimateRepo.On("SetLineItemSelected", ctx, est.Items[2].ID, true).Return(nil)
	estimateRepo.On("Sign", ctx, est.ID, mock.Anything).Return(true, nil)
	planRepo.On("FindByID", ctx, plan.ID).Return(plan, nil)
	settings.On("Settings", mock.Anything).Return(CompanySettings{}, nil)
	expectSuccessfulDocument(generator, store, estimateRepo)

	req := validAcceptRequest(est)
	req.FinancingPlanID = &plan.ID

	_, psc, err := service.Accept(ctx, est.Token, req, "203.0.113.9", "")

	assert.NoError(t, err)
	assert.Equal(t, "60 months same-as-cash", psc.FinancingLabel)
	assert.NotNil(t, psc.MonthlyPayment)
	assert.Equal(t, "84", psc.MonthlyPayment.StringFixed(0))
}

func TestAcceptanceService_Accept_UnresolvablePlanMeansNoFinancing(t *testing.T) {
	ctx := context.Background()
	est := buildSignableEstimate(t)
	missing := uuid.New()

	estimateRepo := new(MockEstimateRepository)
	planRepo := new(MockPlanRepository)
	generator := new(MockDocumentGenerator)
	store := new(MockDocumentStore)
	settings := new(MockSettingsSource)
	service := newTestService(estimateRepo, planRepo, generator, store, settings)

	estimateRepo.On("FindByToken", ctx, est.Token).Return(est, nil)
	estimateRepo.On("SetLineItemSelected", ctx, est.Items[2].ID, true).Return(nil)
	estimateRepo.On("Sign", ctx, est.ID, mock.Anything).Return(true, nil)
	planRepo.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)
	settings.On("Settings", mock.Anything).Return(CompanySettings{}, nil)
	expectSuccessfulDocument(generator, store, estimateRepo)

	req := validAcceptRequest(est)
	req.FinancingPlanID = &missing

	_, psc, err := service.Accept(ctx, est.Token, req, "", "")

	assert.NoError(t, err)
	assert.Nil(t, psc.MonthlyPayment)

	patch := estimateRepo.Calls[2].Arguments.Get(2).(estimate.SignPatch)
	assert.Nil(t, patch.FinancingPlanID)
}

func TestAcceptanceService_Accept_TokenNotFound(t *testing.T) {
	ctx := context.Background()

	estimateRepo := new(MockEstimateRepository)
	service := newTestService(estimateRepo, new(MockPlanRepository), new(MockDocumentGenerator), new(MockDocumentStore), new(MockSettingsSource))

	estimateRepo.On("FindByToken", ctx, "nope").Return(nil, shared.ErrNotFound)

	_, _, err := service.Accept(ctx, "nope", AcceptProposalRequest{SignerName: "Dana", SignatureData: "data:image/png;base64,x"}, "", "")

	assert.ErrorIs(t, err, shared.ErrNotFound)
	estimateRepo.AssertNotCalled(t, "Sign", mock.Anything, mock.Anything, mock.Anything)
}

func TestAcceptanceService_Accept_AlreadySigned(t *testing.T) {
	ctx := context.Background()
	est := buildSignableEstimate(t)
	signedAt := time.Now().Add(-time.Hour)
	est.SignedAt = &signedAt

	estimateRepo := new(MockEstimateRepository)
	service := newTestService(estimateRepo, new(MockPlanRepository), new(MockDocumentGenerator), new(MockDocumentStore), new(MockSettingsSource))

	estimateRepo.On("FindByToken", ctx, est.Token).Return(est, nil)

	_, _, err := service.Accept(ctx, est.Token, validAcceptRequest(est), "", "")

	assert.ErrorIs(t, err, shared.ErrAlreadyAccepted)
	estimateRepo.AssertNotCalled(t, "SetLineItemSelected", mock.Anything, mock.Anything, mock.Anything)
	estimateRepo.AssertNotCalled(t, "Sign", mock.Anything, mock.Anything, mock.Anything)
}

func TestAcceptanceService_Accept_ConcurrentRaceLoser(t *testing.T) {
	ctx := context.Background()
	est := buildSignableEstimate(t)

	estimateRepo := new(MockEstimateRepository)
	generator := new(MockDocumentGenerator)
	service := newTestService(estimateRepo, new(MockPlanRepository), generator, new(MockDocumentStore), new(MockSettingsSource))

	estimateRepo.On("FindByToken", ctx, est.Token).Return(est, nil)
	estimateRepo.On("SetLineItemSelected", ctx, est.Items[2].ID, true).Return(nil)
	// The conditional update reports the row was already signed.
	estimateRepo.On("Sign", ctx, est.ID, mock.Anything).Return(false, nil)

	_, psc, err := service.Accept(ctx, est.Token, validAcceptRequest(est), "", "")

	assert.ErrorIs(t, err, shared.ErrAlreadyAccepted)
	assert.Nil(t, psc)
	generator.AssertNotCalled(t, "RenderSignedProposal", mock.Anything, mock.Anything)
}

func TestAcceptanceService_Accept_SignWriteFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	est := buildSignableEstimate(t)

	estimateRepo := new(MockEstimateRepository)
	generator := new(MockDocumentGenerator)
	service := newTestService(estimateRepo, new(MockPlanRepository), generator, new(MockDocumentStore), new(MockSettingsSource))

	estimateRepo.On("FindByToken", ctx, est.Token).Return(est, nil)
	estimateRepo.On("SetLineItemSelected", ctx, est.Items[2].ID, true).Return(nil)
	estimateRepo.On("Sign", ctx, est.ID, mock.Anything).Return(false, errors.New("connection reset"))

	_, _, err := service.Accept(ctx, est.Token, validAcceptRequest(est), "", "")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrAlreadyAccepted)
	generator.AssertNotCalled(t, "RenderSignedProposal", mock.Anything, mock.Anything)
}

func TestAcceptanceService_Accept_DocumentFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	est := buildSignableEstimate(t)

	estimateRepo := new(MockEstimateRepository)
	generator := new(MockDocumentGenerator)
	store := new(MockDocumentStore)
	settings := new(MockSettingsSource)
	service := newTestService(estimateRepo, new(MockPlanRepository), generator, store, settings)

	estimateRepo.On("FindByToken", ctx, est.Token).Return(est, nil)
	estimateRepo.On("SetLineItemSelected", ctx, est.Items[2].ID, true).Return(nil)
	estimateRepo.On("Sign", ctx, est.ID, mock.Anything).Return(true, nil)
	settings.On("Settings", mock.Anything).Return(CompanySettings{}, nil)
	generator.On("RenderSignedProposal", mock.Anything, mock.Anything).Return(nil, errors.New("renderer crashed"))

	resp, psc, err := service.Accept(ctx, est.Token, validAcceptRequest(est), "", "")

	assert.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Nil(t, resp.ProposalPDFURL)
	assert.False(t, psc.HasDocument())
	store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAcceptanceService_Accept_AddonReconciliationIsDiffOnly(t *testing.T) {
	ctx := context.Background()
	est := buildSignableEstimate(t)
	// Add-on already selected in storage; submitting it again must not
	// trigger a redundant write.
	est.Items[2].IsSelected = true

	estimateRepo := new(MockEstimateRepository)
	generator := new(MockDocumentGenerator)
	store := new(MockDocumentStore)
	settings := new(MockSettingsSource)
	service := newTestService(estimateRepo, new(MockPlanRepository), generator, store, settings)

	estimateRepo.On("FindByToken", ctx, est.Token).Return(est, nil)
	estimateRepo.On("Sign", ctx, est.ID, mock.Anything).Return(true, nil)
	settings.On("Settings", mock.Anything).Return(CompanySettings{}, nil)
	expectSuccessfulDocument(generator, store, estimateRepo)

	_, _, err := service.Accept(ctx, est.Token, validAcceptRequest(est), "", "")

	assert.NoError(t, err)
	estimateRepo.AssertNotCalled(t, "SetLineItemSelected", mock.Anything, mock.Anything, mock.Anything)
}

func TestAcceptanceService_Accept_DeselectsUnsubmittedAddons(t *testing.T) {
	ctx := context.Background()
	est := buildSignableEstimate(t)
	est.Items[2].IsSelected = true

	estimateRepo := new(MockEstimateRepository)
	generator := new(MockDocumentGenerator)
	store := new(MockDocumentStore)
	settings := new(MockSettingsSource)
	service := newTestService(estimateRepo, new(MockPlanRepository), generator, store, settings)

	estimateRepo.On("FindByToken", ctx, est.Token).Return(est, nil)
	estimateRepo.On("SetLineItemSelected", ctx, est.Items[2].ID, false).Return(nil)
	estimateRepo.On("Sign", ctx, est.ID, mock.Anything).Return(true, nil)
	settings.On("Settings", mock.Anything).Return(CompanySettings{}, nil)
	expectSuccessfulDocument(generator, store, estimateRepo)

	req := validAcceptRequest(est)
	req.SelectedAddonIDs = nil

	_, _, err := service.Accept(ctx, est.Token, req, "", "")

	assert.NoError(t, err)
	patch := estimateRepo.Calls[2].Arguments.Get(2).(estimate.SignPatch)
	assert.Equal(t, "4200.00", patch.Subtotal.StringFixed(2))
	estimateRepo.AssertExpectations(t)
}
