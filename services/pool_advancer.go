// file: services/pool_advancer.go
package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/assessment-hisan/auction-backend/models"
	"github.com/assessment-hisan/auction-backend/realtime"
	"gorm.io/gorm"
)

const advanceTimeout = 10 * time.Second

// PoolAdvancer moves the uncalled-roster screen to the next pool once every
// student of the active section and pool has been called.
//
// Two timer policies exist. By default a screen has at most one pending
// advance, any settings edit cancels it, and the advance only applies if the
// screen still shows the section and pool it was scheduled for. With legacy
// timers every exhausted check schedules its own fire-and-forget advance
// that is never cancelled and overwrites the pool unconditionally.
type PoolAdvancer struct {
	db     *gorm.DB
	bc     realtime.Broadcaster
	log    *slog.Logger
	legacy bool

	mu      sync.Mutex
	pending map[string][]*pendingAdvance
	stopped bool
}

type pendingAdvance struct {
	timer   *time.Timer
	section string
	from    string
	to      string
}

var _ Advancer = (*PoolAdvancer)(nil)

func NewPoolAdvancer(db *gorm.DB, bc realtime.Broadcaster, log *slog.Logger, legacy bool) *PoolAdvancer {
	return &PoolAdvancer{
		db:      db,
		bc:      bc,
		log:     log,
		legacy:  legacy,
		pending: make(map[string][]*pendingAdvance),
	}
}

// Check looks at the uncalled screen and schedules an advance, or announces
// the end of the section, when its active pool has no uncalled students left.
func (a *PoolAdvancer) Check(ctx context.Context) error {
	var settings models.TvDisplaySettings
	res := a.db.WithContext(ctx).Where("screen_id = ?", models.ScreenUncalled).Limit(1).Find(&settings)
	if res.Error != nil {
		return storeError(res.Error, "load uncalled screen settings")
	}
	if res.RowsAffected == 0 || !settings.AutoAdvancePool {
		return nil
	}

	var uncalled int64
	err := a.db.WithContext(ctx).Model(&models.Student{}).
		Where("is_called = ? AND section = ? AND pool = ?", false, settings.Section, settings.Pool).
		Count(&uncalled).Error
	if err != nil {
		return storeError(err, "count uncalled students")
	}
	if uncalled > 0 {
		return nil
	}

	next, ok := models.NextPool(settings.Pool)
	if !ok {
		a.log.Info("all pools completed", "section", settings.Section, "pool", settings.Pool)
		a.bc.Emit(realtime.EventSectionCompleted, map[string]string{"section": settings.Section})
		return nil
	}

	delay := time.Duration(settings.AutoAdvanceDelaySeconds) * time.Second
	a.schedule(settings.Section, settings.Pool, next, delay)
	return nil
}

// SettingsChanged cancels any pending advance for the screen. Legacy timers
// are never cancelled.
func (a *PoolAdvancer) SettingsChanged(screenID string) {
	if a.legacy {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if n := len(a.pending[screenID]); n > 0 {
		a.log.Info("pending pool advance cancelled", "screen", screenID)
	}
	a.cancelLocked(screenID)
}

// Pending returns the number of advances waiting to fire for the screen.
func (a *PoolAdvancer) Pending(screenID string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending[screenID])
}

// Stop cancels every pending advance and refuses new ones.
func (a *PoolAdvancer) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	for screen := range a.pending {
		a.cancelLocked(screen)
	}
}

func (a *PoolAdvancer) schedule(section, from, to string, delay time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	if !a.legacy {
		// An identical advance already counting down keeps its deadline.
		if cur := a.pending[models.ScreenUncalled]; len(cur) == 1 &&
			cur[0].section == section && cur[0].from == from && cur[0].to == to {
			a.log.Debug("pool auto-advance already pending", "section", section, "from", from, "to", to)
			return
		}
		a.cancelLocked(models.ScreenUncalled)
	}

	p := &pendingAdvance{section: section, from: from, to: to}
	p.timer = time.AfterFunc(delay, func() { a.fire(p) })
	a.pending[models.ScreenUncalled] = append(a.pending[models.ScreenUncalled], p)

	a.log.Info("pool auto-advance scheduled",
		"section", section, "from", from, "to", to, "delay", delay, "legacy", a.legacy)
}

func (a *PoolAdvancer) cancelLocked(screenID string) {
	for _, p := range a.pending[screenID] {
		p.timer.Stop()
	}
	delete(a.pending, screenID)
}

// fire runs on the timer goroutine. An advance that was cancelled after its
// timer already started is no longer in the pending table and does nothing.
func (a *PoolAdvancer) fire(p *pendingAdvance) {
	a.mu.Lock()
	list := a.pending[models.ScreenUncalled]
	found := false
	for i, q := range list {
		if q == p {
			a.pending[models.ScreenUncalled] = append(list[:i:i], list[i+1:]...)
			found = true
			break
		}
	}
	if len(a.pending[models.ScreenUncalled]) == 0 {
		delete(a.pending, models.ScreenUncalled)
	}
	a.mu.Unlock()
	if !found {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), advanceTimeout)
	defer cancel()
	if err := a.advance(ctx, p); err != nil {
		a.log.Error("pool auto-advance failed", "to", p.to, "error", err)
	}
}

func (a *PoolAdvancer) advance(ctx context.Context, p *pendingAdvance) error {
	q := a.db.WithContext(ctx).Model(&models.TvDisplaySettings{}).Where("screen_id = ?", models.ScreenUncalled)
	if !a.legacy {
		q = q.Where("section = ? AND pool = ?", p.section, p.from)
	}
	res := q.Update("pool", p.to)
	if res.Error != nil {
		return storeError(res.Error, "advance pool")
	}
	if res.RowsAffected == 0 {
		a.log.Info("pool auto-advance skipped, screen moved on", "section", p.section, "from", p.from)
		return nil
	}

	var settings models.TvDisplaySettings
	if err := a.db.WithContext(ctx).First(&settings, "screen_id = ?", models.ScreenUncalled).Error; err != nil {
		return storeError(err, "reload uncalled screen settings")
	}
	a.bc.Emit(realtime.EventTV1SettingsUpdated, settings)
	a.log.Info("uncalled screen auto-advanced", "section", settings.Section, "pool", settings.Pool)
	return nil
}
