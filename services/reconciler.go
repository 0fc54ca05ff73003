// file: services/reconciler.go
package services

import (
	"context"

	"github.com/assessment-hisan/auction-backend/models"
)

// Reconciler repairs the inconsistencies a crash between the independent
// steps of team creation or deletion can leave behind.
type Reconciler struct {
	Deps
}

func NewReconciler(d Deps) *Reconciler {
	return &Reconciler{Deps: d.withDefaults()}
}

type ReconcileReport struct {
	OrphansReleased   int64    `json:"orphansReleased"`
	CalledReset       int64    `json:"calledReset"`
	CalledMarked      int64    `json:"calledMarked"`
	RoleHoldersCalled int64    `json:"roleHoldersCalled"`
	TeamsMissingLead  []string `json:"teamsMissingLeader"`
}

func (r *ReconcileReport) Changed() bool {
	return r.OrphansReleased+r.CalledReset+r.CalledMarked+r.RoleHoldersCalled > 0
}

// Run scans students and teams and fixes, in order:
//   - students referencing a team that no longer exists are released;
//   - called students without a team are reset;
//   - students with a team but not called are marked called;
//   - team role holders not called into their team are called into it.
//
// Teams whose leader record is gone are only reported.
func (r *Reconciler) Run(ctx context.Context) (*ReconcileReport, error) {
	report := &ReconcileReport{TeamsMissingLead: []string{}}
	db := r.DB.WithContext(ctx)

	teamIDs := r.DB.Model(&models.Team{}).Select("id")
	res := db.Model(&models.Student{}).
		Where("team_id IS NOT NULL AND team_id NOT IN (?)", teamIDs).
		Updates(map[string]any{"team_id": nil, "is_called": false})
	if res.Error != nil {
		return nil, storeError(res.Error, "release orphaned students")
	}
	report.OrphansReleased = res.RowsAffected

	res = db.Model(&models.Student{}).Where("team_id IS NULL AND is_called = ?", true).Update("is_called", false)
	if res.Error != nil {
		return nil, storeError(res.Error, "reset called students without team")
	}
	report.CalledReset = res.RowsAffected

	res = db.Model(&models.Student{}).Where("team_id IS NOT NULL AND is_called = ?", false).Update("is_called", true)
	if res.Error != nil {
		return nil, storeError(res.Error, "mark students with team as called")
	}
	report.CalledMarked = res.RowsAffected

	var teams []models.Team
	if err := db.Find(&teams).Error; err != nil {
		return nil, storeError(err, "scan teams")
	}
	for i := range teams {
		t := &teams[i]
		ok, err := studentExists(ctx, r.DB, t.LeaderID)
		if err != nil {
			return nil, err
		}
		if !ok {
			report.TeamsMissingLead = append(report.TeamsMissingLead, t.Name)
		}

		res = db.Model(&models.Student{}).
			Where("id IN ?", t.RoleHolderIDs()).
			Where("(team_id IS NULL OR team_id <> ? OR is_called = ?)", t.ID, false).
			Updates(map[string]any{"team_id": t.ID, "is_called": true})
		if res.Error != nil {
			return nil, storeError(res.Error, "call role holders")
		}
		report.RoleHoldersCalled += res.RowsAffected
	}

	if report.Changed() {
		r.Log.Warn("reconciliation repaired records",
			"orphans_released", report.OrphansReleased,
			"called_reset", report.CalledReset,
			"called_marked", report.CalledMarked,
			"role_holders_called", report.RoleHoldersCalled)
		r.Cache.Invalidate(ctx, sectionsAndPoolsKey)
		r.requestSnapshots(CollectionStudents)
	} else {
		r.Log.Info("reconciliation found nothing to repair")
	}
	if len(report.TeamsMissingLead) > 0 {
		r.Log.Warn("teams reference a leader that no longer exists", "teams", report.TeamsMissingLead)
	}
	return report, nil
}
