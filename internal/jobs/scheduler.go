package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/booklend/rental-service/internal/store"
)

const (
	logMsgScheduleFailed  = "failed to schedule job"
	logMsgSchedulerOn     = "scheduler started"
	logMsgSchedulerOff    = "scheduler stopped"
	logAttrJobName        = "job"
	logAttrCronExpression = "cron"
)

// Job is one unit of scheduled background work.
type Job interface {
	Run(ctx context.Context) error
}

// Scheduler runs registered jobs on cron schedules. All schedules are
// evaluated in UTC.
type Scheduler struct {
	cron   *cron.Cron
	logger store.Logger
}

// NewScheduler creates an empty scheduler.
func NewScheduler(logger store.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		logger: logger,
	}
}

// Register adds a job under the given cron expression. Panics inside the
// job are recovered and logged so one bad run never kills the scheduler.
func (s *Scheduler) Register(name string, expression string, job Job) error {
	_, err := s.cron.AddFunc(expression, func() {
		s.runWithRecovery(name, job)
	})
	if err != nil {
		s.logger.Error(logMsgScheduleFailed,
			logAttrJobName, name,
			logAttrCronExpression, expression,
			logAttrError, err.Error())
		return err
	}

	return nil
}

// Start begins running the registered schedules in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info(logMsgSchedulerOn)
}

// Stop halts scheduling and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info(logMsgSchedulerOff)
}

func (s *Scheduler) runWithRecovery(name string, job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(logMsgRecoveredPanic, logAttrJobName, name, logAttrPanicValue, r)
		}
	}()

	if err := job.Run(context.Background()); err != nil {
		s.logger.Error(logMsgSweepFailed, logAttrJobName, name, logAttrError, err.Error())
	}
}
