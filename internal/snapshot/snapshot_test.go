package snapshot

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/pable/wintracker/internal/model"
	"github.com/pable/wintracker/internal/report"
)

type fakeStore struct {
	users   []model.User
	matches map[int64][]model.Match
	failFor int64
}

func (f *fakeStore) ListUsers() ([]model.User, error) { return f.users, nil }

func (f *fakeStore) ListMatches(userID int64) ([]model.Match, error) {
	if userID == f.failFor {
		return nil, errors.New("db gone")
	}
	return f.matches[userID], nil
}

type memSink struct {
	mu   sync.Mutex
	keys []string
}

func (s *memSink) Put(_ context.Context, key string, _ []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	return "mem://" + key, nil
}

func (s *memSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

func enough() []model.Match {
	return []model.Match{
		{OpponentName: "Ana Silva", Wins: 5, Losses: 1},
		{OpponentName: "Bruno Costa", Wins: 2, Losses: 2},
		{OpponentName: "Carla Dias", Wins: 1, Losses: 3},
	}
}

func newSnapshotter(store Store, sink *memSink) *Snapshotter {
	return &Snapshotter{
		Store: store,
		Generator: &report.Generator{
			Template: image.NewNRGBA(image.Rect(0, 0, 200, 120)),
			Now:      func() time.Time { return time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC) },
		},
		Sink: sink,
	}
}

func TestRunOnce(t *testing.T) {
	store := &fakeStore{
		users: []model.User{
			{ID: 1, Name: "Maria Souza"},
			{ID: 2, Name: "Pedro Lima"},
			{ID: 3, Name: "Lucas Rocha"},
			{ID: 4, Name: "Broken User"},
		},
		matches: map[int64][]model.Match{
			1: enough(),
			3: {{OpponentName: "Ana Silva", Wins: 1}},
		},
		failFor: 4,
	}
	sink := &memSink{}

	res, err := newSnapshotter(store, sink).RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(res.Published) != 1 {
		t.Errorf("expected 1 published report, got %d", len(res.Published))
	}
	if res.Skipped != 2 {
		t.Errorf("expected 2 skipped (empty + insufficient), got %d", res.Skipped)
	}
	if res.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", res.Failed)
	}
	if sink.count() != 1 {
		t.Errorf("expected 1 sink put, got %d", sink.count())
	}
}

func TestRunOnceCancelled(t *testing.T) {
	store := &fakeStore{users: []model.User{{ID: 1, Name: "Maria Souza"}}, matches: map[int64][]model.Match{1: enough()}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newSnapshotter(store, &memSink{}).RunOnce(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestStartRejectsNonPositiveInterval(t *testing.T) {
	s := newSnapshotter(&fakeStore{}, &memSink{})
	if err := s.Start(0); err == nil {
		t.Error("expected error for zero interval")
	}
}

func TestStartAndShutdown(t *testing.T) {
	store := &fakeStore{users: []model.User{{ID: 1, Name: "Maria Souza"}}, matches: map[int64][]model.Match{1: enough()}}
	sink := &memSink{}
	s := newSnapshotter(store, sink)

	if err := s.Start(20 * time.Millisecond); err != nil {
		t.Fatalf("Start: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for sink.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if err := s.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if sink.count() == 0 {
		t.Error("expected the scheduled job to publish at least once")
	}
	if err := s.Shutdown(); err != nil {
		t.Errorf("second Shutdown: %v", err)
	}
}
