package scheduler

import (
	"package-tracker/internal/core/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of background work executed on a cron schedule.
type Job interface {
	// Name identifies the job in logs.
	Name() string
	// Schedule returns the cron expression the job runs on.
	Schedule() string
	// Run performs one execution of the job.
	Run()
}

// Scheduler runs registered jobs on their cron schedules.
type Scheduler struct {
	cron *cron.Cron
}

// New creates a Scheduler with the given jobs registered. Jobs run in their
// own goroutines so a slow job never delays the others.
func New(jobs []Job) (*Scheduler, error) {
	c := cron.New()

	for _, job := range jobs {
		job := job
		_, err := c.AddFunc(job.Schedule(), func() {
			logger.Named("scheduler").Debug("Running scheduled job", zap.String("job", job.Name()))
			go job.Run()
		})
		if err != nil {
			return nil, err
		}
	}

	return &Scheduler{cron: c}, nil
}

// Start begins executing registered jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler; running jobs are not interrupted.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
