package schedule

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a named function run on a fixed interval. Jobs that should only
// act at certain wall-clock moments (payday, Sundays) check the clock
// themselves and return nil on off ticks.
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler runs registered jobs on their intervals until stopped.
type Scheduler struct {
	jobs   []Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	logger *zap.Logger
}

func NewScheduler(logger ...*zap.Logger) *Scheduler {
	l := zap.L().Named("schedule")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("schedule")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
		logger: l,
	}
}

func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, Job{Name: name, Interval: interval, Fn: fn})
	s.logger.Info("job registered",
		zap.String("name", name),
		zap.Duration("interval", interval),
	)
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(job)
	}
	s.logger.Info("scheduler started", zap.Int("job_count", len(s.jobs)))
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runJob(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	// First run happens immediately, not one interval in.
	s.execute(job)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.execute(job)
		}
	}
}

func (s *Scheduler) execute(job Job) {
	if err := job.Fn(s.ctx); err != nil {
		s.logger.Error("job failed",
			zap.String("name", job.Name),
			zap.Error(err),
		)
	}
}
