package estimate

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tierquote/backend/internal/domain/shared"
)

func buildEstimate(t *testing.T) *Estimate {
	t.Helper()
	est, err := NewEstimate("EST-1001", "Pat Winters")
	require.NoError(t, err)
	est.Status = StatusSent

	for tier := 1; tier <= 2; tier++ {
		item, err := NewLineItem(est.ID, tier, "System package", decimal.NewFromInt(1), decimal.NewFromInt(4200))
		require.NoError(t, err)
		est.Items = append(est.Items, *item)
	}
	addon, err := NewLineItem(est.ID, 0, "Surge protector", decimal.NewFromInt(1), decimal.NewFromInt(300))
	require.NoError(t, err)
	addon.IsAddon = true
	est.Items = append(est.Items, *addon)

	return est
}

func validSubmission() AcceptanceSubmission {
	return AcceptanceSubmission{
		SignerName:    "Pat Winters",
		SignatureData: "data:image/png;base64,iVBORw0KGgo=",
		SelectedTier:  1,
	}
}

func TestEvaluateAcceptance(t *testing.T) {
	now := time.Now()

	t.Run("valid submission passes", func(t *testing.T) {
		est := buildEstimate(t)
		assert.NoError(t, est.EvaluateAcceptance(validSubmission(), now))
	})

	t.Run("signed estimate rejects even a valid payload", func(t *testing.T) {
		est := buildEstimate(t)
		signed := now.Add(-time.Hour)
		est.SignedAt = &signed

		err := est.EvaluateAcceptance(validSubmission(), now)
		assert.ErrorIs(t, err, shared.ErrAlreadyAccepted)
	})

	t.Run("already-accepted outranks a malformed payload", func(t *testing.T) {
		est := buildEstimate(t)
		signed := now.Add(-time.Hour)
		est.SignedAt = &signed

		sub := validSubmission()
		sub.SignerName = ""
		err := est.EvaluateAcceptance(sub, now)
		assert.ErrorIs(t, err, shared.ErrAlreadyAccepted)
	})

	t.Run("expired estimate rejects with expired", func(t *testing.T) {
		est := buildEstimate(t)
		past := now.Add(-24 * time.Hour)
		est.AutoDeclineAt = &past

		err := est.EvaluateAcceptance(validSubmission(), now)
		assert.ErrorIs(t, err, shared.ErrExpired)
	})

	t.Run("lost and dormant estimates are unavailable", func(t *testing.T) {
		for _, status := range []Status{StatusLost, StatusDormant} {
			est := buildEstimate(t)
			est.Status = status

			err := est.EvaluateAcceptance(validSubmission(), now)
			assert.ErrorIs(t, err, shared.ErrUnavailable, "status %s", status)
		}
	})

	t.Run("expiry outranks terminal status", func(t *testing.T) {
		est := buildEstimate(t)
		est.Status = StatusLost
		past := now.Add(-time.Hour)
		est.AutoDeclineAt = &past

		err := est.EvaluateAcceptance(validSubmission(), now)
		assert.ErrorIs(t, err, shared.ErrExpired)
	})

	t.Run("short signer name is invalid input", func(t *testing.T) {
		est := buildEstimate(t)
		sub := validSubmission()
		sub.SignerName = "  A  "

		err := est.EvaluateAcceptance(sub, now)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})

	t.Run("signature must be an image data URI", func(t *testing.T) {
		est := buildEstimate(t)
		sub := validSubmission()
		sub.SignatureData = "data:text/plain;base64,bm90IGFuIGltYWdl"

		err := est.EvaluateAcceptance(sub, now)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})

	t.Run("tier must be offered", func(t *testing.T) {
		est := buildEstimate(t)
		sub := validSubmission()
		sub.SelectedTier = 7

		err := est.EvaluateAcceptance(sub, now)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})
}

func TestEstimateHelpers(t *testing.T) {
	t.Run("token is opaque and unique per estimate", func(t *testing.T) {
		a, err := NewEstimate("EST-1", "A")
		require.NoError(t, err)
		b, err := NewEstimate("EST-2", "B")
		require.NoError(t, err)

		assert.Len(t, a.Token, 64)
		assert.NotEqual(t, a.Token, b.Token)
		assert.NotContains(t, a.Token, a.ID.String())
	})

	t.Run("external option resolution skips addons and empty ids", func(t *testing.T) {
		est := buildEstimate(t)
		opt1 := "fsm-opt-1"
		opt2 := "fsm-opt-2"
		est.Items[0].ExternalOptionID = &opt1
		est.Items[1].ExternalOptionID = &opt2

		got := est.ExternalOptionForTier(1)
		require.NotNil(t, got)
		assert.Equal(t, opt1, *got)

		assert.Nil(t, est.ExternalOptionForTier(3))
	})

	t.Run("external option ids deduplicate and exclude approved", func(t *testing.T) {
		est := buildEstimate(t)
		opt1 := "fsm-opt-1"
		opt2 := "fsm-opt-2"
		est.Items[0].ExternalOptionID = &opt1
		est.Items[1].ExternalOptionID = &opt2
		est.Items[2].ExternalOptionID = &opt2

		ids := est.ExternalOptionIDs(opt1)
		assert.Equal(t, []string{opt2}, ids)
	})

	t.Run("snooze and status override refuse signed estimates", func(t *testing.T) {
		est := buildEstimate(t)
		signed := time.Now()
		est.SignedAt = &signed

		assert.ErrorIs(t, est.Snooze(time.Now().Add(time.Hour)), shared.ErrAlreadyAccepted)
		assert.ErrorIs(t, est.OverrideStatus(StatusLost), shared.ErrAlreadyAccepted)
	})

	t.Run("tier name lookup", func(t *testing.T) {
		est := buildEstimate(t)
		est.TierLabels = []TierInfo{{Tier: 1, Name: "Good"}, {Tier: 2, Name: "Better", Tagline: "Most popular"}}

		assert.Equal(t, "Better", est.TierName(2))
		assert.Equal(t, "", est.TierName(9))
	})

	t.Run("offered tiers come from non-addon items", func(t *testing.T) {
		est := buildEstimate(t)
		sub := validSubmission()
		sub.SelectedTier = 2
		assert.NoError(t, est.EvaluateAcceptance(sub, time.Now()))
	})
}

func TestNewLineItem(t *testing.T) {
	estimateID := uuid.New()

	t.Run("computes line total", func(t *testing.T) {
		item, err := NewLineItem(estimateID, 1, "Heat pump", decimal.NewFromInt(2), decimal.NewFromFloat(1250.50))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromFloat(2501.00).Equal(item.LineTotal))
	})

	t.Run("rejects bad quantity and price", func(t *testing.T) {
		_, err := NewLineItem(estimateID, 1, "x", decimal.Zero, decimal.NewFromInt(1))
		assert.Error(t, err)

		_, err = NewLineItem(estimateID, 1, "x", decimal.NewFromInt(1), decimal.NewFromInt(-1))
		assert.Error(t, err)

		_, err = NewLineItem(estimateID, 1, "", decimal.NewFromInt(1), decimal.NewFromInt(1))
		assert.Error(t, err)
	})
}
