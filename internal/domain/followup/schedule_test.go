package followup

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestScheduleRetire(t *testing.T) {
	now := time.Now()
	sched := NewSchedule(uuid.New(), []time.Time{
		now.Add(24 * time.Hour),
		now.Add(72 * time.Hour),
		now.Add(7 * 24 * time.Hour),
	})

	// first touch already went out
	sent := now.Add(-time.Hour)
	sched.Steps[0].Status = StepSent
	sched.Steps[0].SentAt = &sent
	sched.CurrentStep = 1

	sched.Retire()

	assert.Equal(t, StepSent, sched.Steps[0].Status, "sent steps keep their history")
	assert.Equal(t, StepSkipped, sched.Steps[1].Status)
	assert.Equal(t, StepSkipped, sched.Steps[2].Status)
	assert.Equal(t, len(sched.Steps), sched.CurrentStep)
	assert.Empty(t, sched.PendingSteps())
}
