package fieldservice

import (
	"context"

	proposalapp "github.com/tierquote/backend/internal/application/proposal"
	"go.uber.org/zap"
)

// DisabledClient satisfies FieldServiceClient when no integration is
// configured. Writebacks are skipped with a debug log line so acceptance
// fan-out still runs its remaining tasks.
type DisabledClient struct {
	logger *zap.Logger
}

// NewDisabledClient creates a client that skips all writebacks
func NewDisabledClient(logger *zap.Logger) *DisabledClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DisabledClient{logger: logger}
}

var _ proposalapp.FieldServiceClient = (*DisabledClient)(nil)

func (c *DisabledClient) ApproveOption(_ context.Context, jobID, optionID string) (*string, error) {
	c.logger.Debug("Field service disabled, skipping option approval",
		zap.String("job_id", jobID), zap.String("option_id", optionID))
	return nil, nil
}

func (c *DisabledClient) DeclineOptions(_ context.Context, jobID string, optionIDs []string) error {
	c.logger.Debug("Field service disabled, skipping option decline",
		zap.String("job_id", jobID), zap.Int("options", len(optionIDs)))
	return nil
}

func (c *DisabledClient) UploadAttachment(_ context.Context, jobID, optionID, fileName string, _ []byte) error {
	c.logger.Debug("Field service disabled, skipping attachment upload",
		zap.String("job_id", jobID), zap.String("file", fileName))
	return nil
}

func (c *DisabledClient) AddNote(_ context.Context, jobID, optionID, _ string) error {
	c.logger.Debug("Field service disabled, skipping note",
		zap.String("job_id", jobID), zap.String("option_id", optionID))
	return nil
}
