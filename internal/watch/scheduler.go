package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/blogsync/internal/logfields"
)

// Scheduler wraps gocron to deploy targets periodically.
type Scheduler struct {
	scheduler gocron.Scheduler
	deployer  Deployer
}

// NewScheduler creates a scheduler that deploys through deployer.
func NewScheduler(deployer Deployer) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &Scheduler{scheduler: s, deployer: deployer}, nil
}

// ScheduleDeploy deploys target every interval. A run that is still going
// when the next one is due causes that one to be skipped. The job stops when
// ctx is done. It returns the job ID.
func (s *Scheduler) ScheduleDeploy(ctx context.Context, interval time.Duration, target string) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.executeDeploy, target),
		gocron.WithName(target+"-deploy"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithContext(ctx),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create periodic deploy job: %w", err)
	}
	slog.Info("Scheduled periodic deploy", logfields.Target(target), slog.Duration("interval", interval))
	return job.ID().String(), nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for running deploys.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// executeDeploy is called by gocron with the job context.
func (s *Scheduler) executeDeploy(ctx context.Context, target string) {
	slog.Info("Executing scheduled deploy", logfields.Target(target))
	logResult(s.deployer.Deploy(ctx, target))
}
