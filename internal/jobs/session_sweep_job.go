package jobs

import (
	"time"

	"go.uber.org/zap"
)

// SessionSweepJobName is the name of the expired-session sweep job
const SessionSweepJobName = "session_sweep"

// SessionSweeper defines the interface for removing expired backend sessions.
// This interface allows the job to call the auth manager without importing
// the auth package directly.
type SessionSweeper interface {
	// SweepExpired removes expired and deactivated sessions and releases
	// their backend adapter instances. Returns the number removed.
	SweepExpired() int
}

// SessionSweepJob periodically removes expired backend sessions so that
// per-session adapter instances do not accumulate.
type SessionSweepJob struct {
	sweeper SessionSweeper
	logger  *zap.Logger
}

// NewSessionSweepJob creates a new session sweep job.
func NewSessionSweepJob(sweeper SessionSweeper, logger *zap.Logger) *SessionSweepJob {
	return &SessionSweepJob{
		sweeper: sweeper,
		logger:  logger,
	}
}

// Run executes the session sweep.
// This is called by the scheduler according to the cron expression.
func (j *SessionSweepJob) Run() {
	start := time.Now()
	removed := j.sweeper.SweepExpired()

	if removed > 0 {
		j.logger.Info("session sweep completed",
			zap.Int("sessions_removed", removed),
			zap.Duration("duration", time.Since(start)))
	}
}

// RegisterSessionSweepJob registers the session sweep job with the scheduler.
// The cronExpr should be a valid cron expression (e.g., "@every 5m").
func RegisterSessionSweepJob(scheduler *Scheduler, sweeper SessionSweeper, logger *zap.Logger, cronExpr string) error {
	job := NewSessionSweepJob(sweeper, logger)
	return scheduler.AddJob(SessionSweepJobName, cronExpr, job.Run)
}
