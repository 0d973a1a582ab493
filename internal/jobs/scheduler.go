// Package jobs runs the server's periodic maintenance work on cron schedules.
package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Job is one unit of background work.
type Job interface {
	// Name identifies the job in logs and for on-demand runs.
	Name() string

	// Schedule is a cron expression ("@every 1m", "0 3 * * *"). An empty schedule
	// registers the job for on-demand runs only.
	Schedule() string

	Run(ctx context.Context) error
}

type funcJob struct {
	name     string
	schedule string
	run      func(ctx context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Schedule() string              { return j.schedule }
func (j funcJob) Run(ctx context.Context) error { return j.run(ctx) }

// Func adapts a plain function to a Job.
func Func(name, schedule string, run func(ctx context.Context) error) Job {
	return funcJob{name: name, schedule: schedule, run: run}
}

// Scheduler owns the cron runner and the registered jobs. A run that is still
// going when its next tick arrives is skipped.
type Scheduler struct {
	ctx  context.Context
	cron *cron.Cron
	jobs []Job
}

// NewScheduler returns a scheduler whose jobs receive ctx.
func NewScheduler(ctx context.Context) *Scheduler {
	return &Scheduler{
		ctx:  ctx,
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

func (s *Scheduler) Register(job Job) error {
	if schedule := job.Schedule(); schedule != "" {
		if _, err := s.cron.AddFunc(schedule, func() { s.execute(s.ctx, job) }); err != nil {
			return fmt.Errorf("schedule %s: %w", job.Name(), err)
		}
		log.Printf("jobs: %s scheduled (%s)", job.Name(), schedule)
	}
	s.jobs = append(s.jobs, job)
	return nil
}

// Start runs the cron loop until the scheduler's context ends.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("jobs: scheduler started with %d jobs", len(s.jobs))

	go func() {
		<-s.ctx.Done()
		<-s.cron.Stop().Done()
		log.Println("jobs: scheduler stopped")
	}()
}

// RunByName runs a registered job immediately.
func (s *Scheduler) RunByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() == name {
			return job.Run(ctx)
		}
	}
	return fmt.Errorf("jobs: no job named %q", name)
}

// Names lists the registered jobs in registration order.
func (s *Scheduler) Names() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}

func (s *Scheduler) execute(ctx context.Context, job Job) {
	if err := job.Run(ctx); err != nil {
		log.Printf("jobs: %s failed: %v", job.Name(), err)
	}
}
