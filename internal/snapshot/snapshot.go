// Package snapshot periodically renders and publishes a report for every
// user that has enough data.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/pable/wintracker/internal/model"
	"github.com/pable/wintracker/internal/publish"
	"github.com/pable/wintracker/internal/report"
)

// Store is the read side the snapshotter needs.
type Store interface {
	ListUsers() ([]model.User, error)
	ListMatches(userID int64) ([]model.Match, error)
}

// Result counts what one run did.
type Result struct {
	Published []string
	Skipped   int
	Failed    int
}

// Snapshotter renders every user's report and hands it to Sink.
type Snapshotter struct {
	Store     Store
	Generator *report.Generator
	Sink      publish.Sink
	Logger    *slog.Logger

	sched gocron.Scheduler
}

func (s *Snapshotter) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// RunOnce walks all users. Users without matches or without enough ranked
// opponents are skipped; per-user failures are logged and counted, and only
// a failure to list users aborts the run.
func (s *Snapshotter) RunOnce(ctx context.Context) (Result, error) {
	var res Result
	log := s.logger()

	users, err := s.Store.ListUsers()
	if err != nil {
		return res, fmt.Errorf("list users: %w", err)
	}

	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		matches, err := s.Store.ListMatches(u.ID)
		if err != nil {
			log.Error("list matches", "tag", "snapshot", "user", u.Name, "err", err)
			res.Failed++
			continue
		}

		a, err := s.Generator.Generate(matches, u.Name)
		if errors.Is(err, report.ErrEmptyInput) || errors.Is(err, report.ErrInsufficientData) {
			res.Skipped++
			continue
		}
		if err != nil {
			log.Error("generate report", "tag", "snapshot", "user", u.Name, "err", err)
			res.Failed++
			continue
		}

		loc, err := publish.Publish(ctx, s.Sink, a)
		if err != nil {
			log.Error("publish report", "tag", "snapshot", "user", u.Name, "err", err)
			res.Failed++
			continue
		}
		log.Info("published report", "tag", "snapshot", "user", u.Name, "id", a.ID, "location", loc)
		res.Published = append(res.Published, loc)
	}
	return res, nil
}

// Start runs RunOnce every interval until Shutdown.
func (s *Snapshotter) Start(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("snapshot interval must be positive, got %s", interval)
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			res, err := s.RunOnce(context.Background())
			if err != nil {
				s.logger().Error("snapshot run", "tag", "snapshot", "err", err)
				return
			}
			s.logger().Info("snapshot run done", "tag", "snapshot",
				"published", len(res.Published), "skipped", res.Skipped, "failed", res.Failed)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("schedule snapshot job: %w", err)
	}

	sched.Start()
	s.sched = sched
	return nil
}

// Shutdown stops the scheduler, waiting for a running job to finish.
func (s *Snapshotter) Shutdown() error {
	if s.sched == nil {
		return nil
	}
	err := s.sched.Shutdown()
	s.sched = nil
	return err
}
