// file: services/deps.go
package services

import (
	"context"
	"log/slog"

	"github.com/assessment-hisan/auction-backend/realtime"
	"gorm.io/gorm"
)

// Advancer is notified by the engine after changes that can exhaust a pool
// and by the settings service after a screen is edited.
type Advancer interface {
	Check(ctx context.Context) error
	SettingsChanged(screenID string)
}

// Deps are the collaborators every service is built from. Snapshots, Cache
// and Advancer may be nil.
type Deps struct {
	DB          *gorm.DB
	Broadcaster realtime.Broadcaster
	Snapshots   *Snapshotter
	Cache       *Cache
	Advancer    Advancer
	Log         *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Broadcaster == nil {
		d.Broadcaster = realtime.Nop{}
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return d
}

func (d Deps) requestSnapshots(cols ...Collection) {
	if d.Snapshots != nil {
		d.Snapshots.Request(cols...)
	}
}

// studentsChanged runs after every student mutation.
func (d Deps) studentsChanged(ctx context.Context, checkPools bool) {
	d.Cache.Invalidate(ctx, sectionsAndPoolsKey)
	d.requestSnapshots(CollectionStudents)
	if checkPools {
		d.checkPools(ctx)
	}
}

func (d Deps) checkPools(ctx context.Context) {
	if d.Advancer == nil {
		return
	}
	if err := d.Advancer.Check(ctx); err != nil {
		d.Log.Warn("pool auto-advance check failed", "error", err)
	}
}
