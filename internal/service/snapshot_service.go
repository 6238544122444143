package service

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/greenhabit/greenpoints-backend/internal/repository"
)

// snapshotBatchSize is how many snapshot upserts run concurrently; batches
// themselves are sequential.
const snapshotBatchSize = 10

// progressEvery controls how often the stream emits a progress event.
const progressEvery = 5

type SnapshotRun struct {
	Date       string `json:"date"`
	UsersCount int    `json:"usersCount"`
	TotalUsers int    `json:"totalUsers"`
}

type ProgressEvent struct {
	Type       string `json:"type"`
	Total      int    `json:"total,omitempty"`
	Current    int    `json:"current,omitempty"`
	Percent    int    `json:"percent,omitempty"`
	Date       string `json:"date,omitempty"`
	UsersCount int    `json:"usersCount,omitempty"`
	Message    string `json:"message,omitempty"`
}

type SnapshotService interface {
	// Run records every user's balance under today's date.
	Run(ctx context.Context) (*SnapshotRun, error)
	// Stream runs the same job sequentially and emits progress events on the
	// returned channel, which is closed after the terminal complete or error
	// event. The caller owns the transport encoding.
	Stream(ctx context.Context) <-chan ProgressEvent
}

type snapshotService struct {
	users     repository.UserRepository
	snapshots repository.SnapshotRepository
	now       func() time.Time
}

func NewSnapshotService(users repository.UserRepository, snapshots repository.SnapshotRepository) SnapshotService {
	return &snapshotService{users: users, snapshots: snapshots, now: time.Now}
}

func (s *snapshotService) Run(ctx context.Context) (*SnapshotRun, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	date := s.today()

	saved := 0
	for start := 0; start < len(users); start += snapshotBatchSize {
		end := start + snapshotBatchSize
		if end > len(users) {
			end = len(users)
		}
		g, gctx := errgroup.WithContext(ctx)
		for _, u := range users[start:end] {
			u := u
			g.Go(func() error {
				return s.snapshots.Upsert(gctx, u.UID, u.GreenPoints, date)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		saved += end - start
	}

	return &SnapshotRun{Date: date, UsersCount: saved, TotalUsers: len(users)}, nil
}

func (s *snapshotService) Stream(ctx context.Context) <-chan ProgressEvent {
	events := make(chan ProgressEvent)
	go func() {
		defer close(events)

		// Every send races the consumer going away; without the Done branch
		// an abandoned channel would pin this goroutine forever.
		send := func(ev ProgressEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		users, err := s.users.ListAll(ctx)
		if err != nil {
			send(ProgressEvent{Type: "error", Message: err.Error()})
			return
		}
		date := s.today()
		total := len(users)
		if !send(ProgressEvent{Type: "start", Total: total}) {
			return
		}

		saved := 0
		for _, u := range users {
			if err := s.snapshots.Upsert(ctx, u.UID, u.GreenPoints, date); err != nil {
				send(ProgressEvent{Type: "error", Message: err.Error()})
				return
			}
			saved++
			if saved%progressEvery == 0 || saved == total {
				if !send(ProgressEvent{
					Type:    "progress",
					Current: saved,
					Total:   total,
					Percent: int(math.Round(float64(saved) / float64(total) * 100)),
				}) {
					return
				}
			}
		}

		send(ProgressEvent{Type: "complete", Date: date, UsersCount: saved})
	}()
	return events
}

func (s *snapshotService) today() string {
	return s.now().UTC().Format("2006-01-02")
}
