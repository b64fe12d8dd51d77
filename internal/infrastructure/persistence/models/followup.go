package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tierquote/backend/internal/domain/followup"
)

// FollowUpScheduleModel is the GORM model for follow-up schedules
type FollowUpScheduleModel struct {
	AggregateModel
	EstimateID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	CurrentStep int       `gorm:"not null;default:0"`

	Steps []FollowUpStepModel `gorm:"foreignKey:ScheduleID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for FollowUpScheduleModel
func (FollowUpScheduleModel) TableName() string {
	return "followup_schedules"
}

// FollowUpStepModel is the GORM model for follow-up steps
type FollowUpStepModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	ScheduleID uuid.UUID `gorm:"type:uuid;not null;index"`
	StepNumber int       `gorm:"not null"`
	SendAt     time.Time `gorm:"not null;index"`
	Status     string    `gorm:"size:20;not null"`
	SentAt     *time.Time
}

// TableName returns the table name for FollowUpStepModel
func (FollowUpStepModel) TableName() string {
	return "followup_steps"
}

// ToDomain converts the model to a domain schedule
func (m *FollowUpScheduleModel) ToDomain() *followup.Schedule {
	sched := &followup.Schedule{
		EstimateID:  m.EstimateID,
		CurrentStep: m.CurrentStep,
	}
	m.PopulateAggregateRoot(&sched.BaseAggregateRoot)

	sched.Steps = make([]followup.Step, len(m.Steps))
	for i, step := range m.Steps {
		sched.Steps[i] = followup.Step{
			ID:         step.ID,
			ScheduleID: step.ScheduleID,
			StepNumber: step.StepNumber,
			SendAt:     step.SendAt,
			Status:     followup.StepStatus(step.Status),
			SentAt:     step.SentAt,
		}
	}
	return sched
}

// FromDomain populates the model from a domain schedule
func (m *FollowUpScheduleModel) FromDomain(sched *followup.Schedule) {
	m.FromDomainAggregateRoot(sched.BaseAggregateRoot)
	m.EstimateID = sched.EstimateID
	m.CurrentStep = sched.CurrentStep

	m.Steps = make([]FollowUpStepModel, len(sched.Steps))
	for i, step := range sched.Steps {
		m.Steps[i] = FollowUpStepModel{
			ID:         step.ID,
			ScheduleID: step.ScheduleID,
			StepNumber: step.StepNumber,
			SendAt:     step.SendAt,
			Status:     string(step.Status),
			SentAt:     step.SentAt,
		}
	}
}
