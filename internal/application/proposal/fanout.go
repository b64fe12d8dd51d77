package proposal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tierquote/backend/internal/domain/engagement"
	"github.com/tierquote/backend/internal/domain/identity"
	"github.com/tierquote/backend/internal/domain/notification"
	"github.com/tierquote/backend/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FollowUpRetirer retires a follow-up schedule after acceptance.
type FollowUpRetirer interface {
	Retire(ctx context.Context, scheduleID uuid.UUID) error
}

// FanoutRunnerConfig contains configuration for the fan-out runner
type FanoutRunnerConfig struct {
	// StrictSync turns a skipped field-service writeback (no resolvable
	// external option for the accepted tier) into a task failure.
	StrictSync bool

	// TaskTimeout bounds each task so a hung external call cannot retain
	// the deferred-task goroutine forever.
	TaskTimeout time.Duration
}

// DefaultFanoutRunnerConfig returns default configuration
func DefaultFanoutRunnerConfig() FanoutRunnerConfig {
	return FanoutRunnerConfig{
		TaskTimeout: 30 * time.Second,
	}
}

// FanoutRunner executes the deferred post-acceptance tasks. It is started
// strictly after the customer response has been dispatched; every task is
// fault-isolated at its own boundary, so the runner always completes without
// raising to its caller and a failure in one task never blocks the others.
type FanoutRunner struct {
	engagementRepo   engagement.Repository
	notificationRepo notification.Repository
	userRepo         identity.Repository
	fieldService     FieldServiceClient
	email            EmailSender
	followUps        FollowUpRetirer
	config           FanoutRunnerConfig
	logger           *zap.Logger
}

// NewFanoutRunner creates a new fan-out runner
func NewFanoutRunner(
	engagementRepo engagement.Repository,
	notificationRepo notification.Repository,
	userRepo identity.Repository,
	fieldService FieldServiceClient,
	email EmailSender,
	followUps FollowUpRetirer,
	logger *zap.Logger,
) *FanoutRunner {
	return &FanoutRunner{
		engagementRepo:   engagementRepo,
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		fieldService:     fieldService,
		email:            email,
		followUps:        followUps,
		config:           DefaultFanoutRunnerConfig(),
		logger:           logger,
	}
}

// SetConfig sets the runner configuration
func (r *FanoutRunner) SetConfig(config FanoutRunnerConfig) {
	r.config = config
}

// Run executes all fan-out tasks for one committed acceptance. The caller
// passes a context detached from the request so an already-completed response
// cannot cancel the tasks. Run never returns an error; each task logs its own
// failure with enough context for manual replay.
func (r *FanoutRunner) Run(ctx context.Context, psc *PostSignContext) {
	r.runTask(ctx, psc, "engagement_record", r.recordSignedEvent)
	r.runTask(ctx, psc, "field_service_sync", r.syncFieldService)
	r.runTask(ctx, psc, "customer_email", r.sendCustomerEmail)
	r.runTask(ctx, psc, "internal_notifications", r.notifyStaff)
	r.runTask(ctx, psc, "followup_retirement", r.retireFollowUp)
}

// runTask is the per-task fault boundary: its own timeout, its own recover,
// its own failure log line.
func (r *FanoutRunner) runTask(ctx context.Context, psc *PostSignContext, name string, fn func(context.Context, *PostSignContext) error) {
	taskCtx, cancel := context.WithTimeout(ctx, r.config.TaskTimeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Fan-out task panicked",
				zap.String("task", name),
				zap.String("estimate_number", psc.Number),
				zap.Any("panic", rec))
		}
	}()

	if err := fn(taskCtx, psc); err != nil {
		r.logger.Error("Fan-out task failed",
			zap.String("task", name),
			zap.String("estimate_number", psc.Number),
			zap.Error(err))
	}
}

func (r *FanoutRunner) recordSignedEvent(ctx context.Context, psc *PostSignContext) error {
	event, err := engagement.NewEvent(psc.EstimateID, engagement.EventSigned, psc.SessionID,
		fmt.Sprintf(`{"tier":%d,"total":"%s"}`, psc.SelectedTier, psc.Totals.Total.StringFixed(2)),
		psc.SignerIP)
	if err != nil {
		return err
	}
	return r.engagementRepo.Append(ctx, event)
}

// syncFieldService writes the acceptance back to the external system. The
// four sub-steps run in sequence but each is independently fault-isolated;
// an attachment failure must not prevent the note from being attempted.
func (r *FanoutRunner) syncFieldService(ctx context.Context, psc *PostSignContext) error {
	if psc.ExternalJobID == nil {
		return nil
	}
	if psc.ApprovedOptionID == nil {
		if r.config.StrictSync {
			return fmt.Errorf("no external option resolvable for accepted tier %d on %s", psc.SelectedTier, psc.Number)
		}
		r.logger.Warn("No external option resolvable for accepted tier, skipping writeback",
			zap.String("estimate_number", psc.Number),
			zap.Int("tier", psc.SelectedTier))
		return nil
	}

	jobID := *psc.ExternalJobID
	optionID := *psc.ApprovedOptionID

	if createdJob, err := r.fieldService.ApproveOption(ctx, jobID, optionID); err != nil {
		r.logger.Error("Field-service option approval failed",
			zap.String("estimate_number", psc.Number),
			zap.String("option_id", optionID),
			zap.Error(err))
	} else if createdJob != nil {
		r.logger.Info("Field-service job created from accepted option",
			zap.String("estimate_number", psc.Number),
			zap.String("job_id", *createdJob))
	}

	if len(psc.DeclinedOptionIDs) > 0 {
		if err := r.fieldService.DeclineOptions(ctx, jobID, psc.DeclinedOptionIDs); err != nil {
			r.logger.Error("Field-service option decline failed",
				zap.String("estimate_number", psc.Number),
				zap.Strings("option_ids", psc.DeclinedOptionIDs),
				zap.Error(err))
		}
	}

	if psc.HasDocument() {
		if err := r.fieldService.UploadAttachment(ctx, jobID, optionID, psc.DocumentName, psc.DocumentPDF); err != nil {
			r.logger.Error("Field-service attachment upload failed",
				zap.String("estimate_number", psc.Number),
				zap.String("option_id", optionID),
				zap.Error(err))
		}
	}

	note := fmt.Sprintf("Proposal %s accepted by %s on %s.",
		psc.Number, psc.SignerName, psc.SignedAt.Format("Jan 2, 2006"))
	if err := r.fieldService.AddNote(ctx, jobID, optionID, note); err != nil {
		r.logger.Error("Field-service note append failed",
			zap.String("estimate_number", psc.Number),
			zap.String("option_id", optionID),
			zap.Error(err))
	}

	return nil
}

func (r *FanoutRunner) sendCustomerEmail(ctx context.Context, psc *PostSignContext) error {
	if psc.CustomerEmail == "" {
		return nil
	}

	p := message.NewPrinter(language.AmericanEnglish)
	totalF, _ := psc.Totals.Total.Float64()
	tierName := psc.TierName
	if tierName == "" {
		tierName = fmt.Sprintf("Option %d", psc.SelectedTier)
	}

	body := p.Sprintf(
		"<p>Hi %s,</p><p>Thank you for accepting proposal %s. You selected the <strong>%s</strong> package for a total of <strong>$%.2f</strong>.</p>",
		psc.CustomerName, psc.Number, tierName, totalF)
	if psc.MonthlyPayment != nil {
		monthlyF, _ := psc.MonthlyPayment.Float64()
		body += p.Sprintf("<p>Your financing plan (%s) comes to about $%.0f per month.</p>", psc.FinancingLabel, monthlyF)
	}
	body += "<p>A copy of your signed proposal is attached. We will be in touch shortly to schedule the work.</p>"

	msg := EmailMessage{
		To:       psc.CustomerEmail,
		Subject:  fmt.Sprintf("Proposal %s accepted", psc.Number),
		HTMLBody: body,
	}
	if psc.HasDocument() {
		msg.AttachmentName = psc.DocumentName
		msg.Attachment = psc.DocumentPDF
	}
	return r.email.Send(ctx, msg)
}

// notifyStaff creates one notification record per recipient: the assigned
// salesperson, if any, plus every active administrator.
func (r *FanoutRunner) notifyStaff(ctx context.Context, psc *PostSignContext) error {
	title := fmt.Sprintf("Proposal %s accepted", psc.Number)
	body := fmt.Sprintf("%s accepted %s (%s) for $%s.",
		psc.SignerName, psc.Number, psc.TierName, psc.Totals.Total.StringFixed(2))

	notified := make(map[uuid.UUID]bool)

	if psc.AssignedUserID != nil {
		if err := r.createNotification(ctx, *psc.AssignedUserID, psc, title, body); err != nil {
			r.logger.Error("Failed to notify assigned user",
				zap.String("estimate_number", psc.Number),
				zap.String("user_id", psc.AssignedUserID.String()),
				zap.Error(err))
		} else {
			notified[*psc.AssignedUserID] = true
		}
	}

	admins, err := r.userRepo.FindActiveAdmins(ctx)
	if err != nil {
		return err
	}
	for _, admin := range admins {
		if notified[admin.ID] {
			continue
		}
		if err := r.createNotification(ctx, admin.ID, psc, title, body); err != nil {
			r.logger.Error("Failed to notify administrator",
				zap.String("estimate_number", psc.Number),
				zap.String("user_id", admin.ID.String()),
				zap.Error(err))
		}
	}
	return nil
}

func (r *FanoutRunner) createNotification(ctx context.Context, userID uuid.UUID, psc *PostSignContext, title, body string) error {
	n, err := notification.NewNotification(userID, psc.EstimateID, notification.KindProposalAccepted, title, body)
	if err != nil {
		return err
	}
	return r.notificationRepo.Create(ctx, n)
}

func (r *FanoutRunner) retireFollowUp(ctx context.Context, psc *PostSignContext) error {
	if psc.FollowUpID == nil {
		return nil
	}
	err := r.followUps.Retire(ctx, *psc.FollowUpID)
	if errors.Is(err, shared.ErrNotFound) {
		// Schedule was deleted between sign and fan-out, nothing to retire.
		return nil
	}
	return err
}
