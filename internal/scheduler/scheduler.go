package scheduler

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// JobFunc is a scheduled unit of work. Errors are logged, never fatal; the
// next run happens regardless.
type JobFunc func(ctx context.Context) error

// JobSpec binds a cron expression to a named job.
type JobSpec struct {
	Name     string
	Schedule string
	Run      JobFunc
}

// Scheduler runs periodic jobs on cron schedules. Runs of the same job
// never overlap: when a run is still in flight at the next tick, the tick
// is skipped.
type Scheduler struct {
	cron *cron.Cron
}

// New builds a scheduler from the given job table. It fails when any
// schedule expression does not parse.
func New(jobs []JobSpec) (*Scheduler, error) {
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))

	for _, spec := range jobs {
		spec := spec
		_, err := c.AddFunc(spec.Schedule, func() {
			slog.Info("scheduled job starting", "job", spec.Name)
			if err := spec.Run(context.Background()); err != nil {
				slog.Error("scheduled job failed", "job", spec.Name, "error", err)
				return
			}
			slog.Info("scheduled job finished", "job", spec.Name)
		})
		if err != nil {
			return nil, err
		}
	}

	return &Scheduler{cron: c}, nil
}

// Start launches the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling new runs and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
