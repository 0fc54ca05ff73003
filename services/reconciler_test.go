package services

import (
	"context"
	"testing"

	"github.com/assessment-hisan/auction-backend/dto"
	"github.com/assessment-hisan/auction-backend/models"
	"github.com/assessment-hisan/auction-backend/realtime"
	"github.com/stretchr/testify/require"
)

func TestReconcileRepairsInterruptedCascades(t *testing.T) {
	d, rec := newDeps(t)
	d.Snapshots = NewSnapshotter(d.DB, d.Broadcaster, d.Log)
	students := NewStudentService(d)
	teams := NewTeamService(d)
	ctx := context.Background()

	leader := seedStudent(t, students, "L-1", "Bidayay", "")
	sub := seedStudent(t, students, "S-1", "Bidayay", "")
	orphan := seedStudent(t, students, "O-1", "Bidayay", "")
	stray := seedStudent(t, students, "X-1", "Bidayay", "")
	team, err := teams.Create(ctx, dto.CreateTeamReq{
		Name:       "Falcons",
		Leader:     leader.ID,
		SubLeaders: map[string]string{"subLeader1": sub.ID},
		Color:      "red",
	})
	require.NoError(t, err)

	// A team deleted without releasing its member.
	require.NoError(t, d.DB.Model(&models.Student{}).Where("id = ?", orphan.ID).
		Updates(map[string]any{"team_id": "deleted-team", "is_called": true}).Error)
	// A called flag without a team.
	require.NoError(t, d.DB.Model(&models.Student{}).Where("id = ?", stray.ID).Update("is_called", true).Error)
	// A team created without calling its sub-leader.
	require.NoError(t, d.DB.Model(&models.Student{}).Where("id = ?", sub.ID).
		Updates(map[string]any{"team_id": nil, "is_called": false}).Error)
	// A team whose leader record is gone.
	require.NoError(t, d.DB.Create(&models.Team{Name: "Ghosts", LeaderID: "gone", Color: "grey"}).Error)
	d.Snapshots.Flush(ctx)
	rec.Reset()

	report, err := NewReconciler(d).Run(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, report.OrphansReleased)
	require.EqualValues(t, 1, report.CalledReset)
	require.EqualValues(t, 1, report.RoleHoldersCalled)
	require.Equal(t, []string{"Ghosts"}, report.TeamsMissingLead)
	require.True(t, report.Changed())
	requireInvariant(t, d)

	st, err := loadStudent(ctx, d.DB, sub.ID)
	require.NoError(t, err)
	require.Equal(t, team.ID, *st.TeamID)

	d.Snapshots.Flush(ctx)
	require.Equal(t, 1, rec.Count(realtime.EventStudentsUpdated))

	again, err := NewReconciler(d).Run(ctx)
	require.NoError(t, err)
	require.False(t, again.Changed())
}
