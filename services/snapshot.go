// file: services/snapshot.go
package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/assessment-hisan/auction-backend/realtime"
	"gorm.io/gorm"
)

// Collection names a full-collection snapshot viewers can receive.
type Collection string

const (
	CollectionStudents Collection = "students"
	CollectionTeams    Collection = "teams"
)

// Snapshotter re-reads whole collections after mutations and broadcasts
// them. Requests made while a publish is pending coalesce: viewers only ever
// need the latest full state.
type Snapshotter struct {
	db  *gorm.DB
	bc  realtime.Broadcaster
	log *slog.Logger

	mu      sync.Mutex
	pending []Collection
	wake    chan struct{}
}

func NewSnapshotter(db *gorm.DB, bc realtime.Broadcaster, log *slog.Logger) *Snapshotter {
	return &Snapshotter{
		db:   db,
		bc:   bc,
		log:  log,
		wake: make(chan struct{}, 1),
	}
}

// Request queues snapshots in the given order. It never blocks.
func (s *Snapshotter) Request(cols ...Collection) {
	s.mu.Lock()
	for _, c := range cols {
		if !containsCollection(s.pending, c) {
			s.pending = append(s.pending, c)
		}
	}
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Run publishes requested snapshots until ctx is done, then flushes once more.
func (s *Snapshotter) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			s.Flush(flushCtx)
			cancel()
			return
		case <-s.wake:
			s.Flush(ctx)
		}
	}
}

// Flush publishes everything pending right now.
func (s *Snapshotter) Flush(ctx context.Context) {
	s.mu.Lock()
	cols := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, c := range cols {
		s.publish(ctx, c)
	}
}

func (s *Snapshotter) publish(ctx context.Context, c Collection) {
	switch c {
	case CollectionStudents:
		students, err := loadStudents(ctx, s.db)
		if err != nil {
			s.log.Error("students snapshot failed", "error", err)
			return
		}
		s.bc.Emit(realtime.EventStudentsUpdated, students)
		s.log.Debug("emitted snapshot", "event", realtime.EventStudentsUpdated, "count", len(students))
	case CollectionTeams:
		teams, err := loadTeamViews(ctx, s.db)
		if err != nil {
			s.log.Error("teams snapshot failed", "error", err)
			return
		}
		s.bc.Emit(realtime.EventTeamsUpdated, teams)
		s.log.Debug("emitted snapshot", "event", realtime.EventTeamsUpdated, "count", len(teams))
	}
}

func containsCollection(cols []Collection, c Collection) bool {
	for _, x := range cols {
		if x == c {
			return true
		}
	}
	return false
}
