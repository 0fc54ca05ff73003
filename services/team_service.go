// file: services/team_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/assessment-hisan/auction-backend/dto"
	"github.com/assessment-hisan/auction-backend/mappers"
	"github.com/assessment-hisan/auction-backend/models"
	"gorm.io/gorm/clause"
)

// TeamService creates and dissolves teams. Steps that touch both teams and
// students commit independently; the Reconciler repairs what an interrupted
// sequence leaves behind.
type TeamService struct {
	Deps
}

func NewTeamService(d Deps) *TeamService {
	return &TeamService{Deps: d.withDefaults()}
}

func (s *TeamService) List(ctx context.Context) ([]models.TeamView, error) {
	return loadTeamViews(ctx, s.DB)
}

func (s *TeamService) Get(ctx context.Context, id string) (*models.TeamView, error) {
	return loadTeamView(ctx, s.DB, id)
}

// Create inserts the team, then calls its leader and sub-leaders into it.
// If the insert fails no student is touched. Sub-leader ids that do not
// resolve to a student are skipped.
func (s *TeamService) Create(ctx context.Context, req dto.CreateTeamReq) (*models.TeamView, error) {
	team := mappers.MapCreateTeamReqToModel(req)
	switch {
	case team.Name == "":
		return nil, invalid("name is required")
	case team.LeaderID == "":
		return nil, invalid("leader is required")
	case team.Color == "":
		return nil, invalid("color is required")
	}

	ok, err := studentExists(ctx, s.DB, team.LeaderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invalid("leader %s does not exist", team.LeaderID)
	}
	if err := checkRoleConflicts(ctx, s.DB, team.RoleHolderIDs(), ""); err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Omit(clause.Associations).Create(&team).Error; err != nil {
		if isDuplicate(err) {
			return nil, &Error{Kind: KindDuplicateKey, Msg: fmt.Sprintf("team name %q already exists", team.Name), Err: err}
		}
		return nil, storeError(err, "create team")
	}
	s.Log.Info("team created", "id", team.ID, "name", team.Name, "leader", team.LeaderID)

	if err := s.callRoleHolders(ctx, &team); err != nil {
		s.requestSnapshots(CollectionTeams, CollectionStudents)
		return nil, err
	}

	view, err := loadTeamView(ctx, s.DB, team.ID)
	if err != nil {
		return nil, err
	}

	s.Cache.Invalidate(ctx, sectionsAndPoolsKey)
	s.requestSnapshots(CollectionTeams, CollectionStudents)
	s.checkPools(ctx)
	return view, nil
}

// Update patches name, color, leader and sub-leaders. New role holders are
// called into the team.
func (s *TeamService) Update(ctx context.Context, id string, patch dto.TeamPatch) (*models.TeamView, error) {
	var team models.Team
	if err := s.DB.WithContext(ctx).First(&team, "id = ?", id).Error; err != nil {
		return nil, storeError(err, fmt.Sprintf("team %s not found", id))
	}

	var fields []string
	rolesChanged := false
	if patch.Name != nil {
		if team.Name = strings.TrimSpace(*patch.Name); team.Name == "" {
			return nil, invalid("name cannot be empty")
		}
		fields = append(fields, "Name")
	}
	if patch.Color != nil {
		if team.Color = strings.TrimSpace(*patch.Color); team.Color == "" {
			return nil, invalid("color cannot be empty")
		}
		fields = append(fields, "Color")
	}
	if patch.Leader != nil {
		leader := strings.TrimSpace(*patch.Leader)
		if leader == "" {
			return nil, invalid("leader cannot be empty")
		}
		ok, err := studentExists(ctx, s.DB, leader)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, invalid("leader %s does not exist", leader)
		}
		rolesChanged = rolesChanged || leader != team.LeaderID
		team.LeaderID = leader
		fields = append(fields, "LeaderID")
	}
	if patch.SubLeaders != nil {
		team.SubLeaders = mappers.MapSubLeaders(*patch.SubLeaders)
		rolesChanged = true
		fields = append(fields, "SubLeaders")
	}

	if rolesChanged {
		if err := checkRoleConflicts(ctx, s.DB, team.RoleHolderIDs(), team.ID); err != nil {
			return nil, err
		}
	}

	if len(fields) > 0 {
		err := s.DB.WithContext(ctx).Model(&team).Select(fields).Omit(clause.Associations).Updates(&team).Error
		if err != nil {
			if isDuplicate(err) {
				return nil, &Error{Kind: KindDuplicateKey, Msg: fmt.Sprintf("team name %q already exists", team.Name), Err: err}
			}
			return nil, storeError(err, "update team")
		}
	}

	if rolesChanged {
		if err := s.callRoleHolders(ctx, &team); err != nil {
			s.requestSnapshots(CollectionTeams, CollectionStudents)
			return nil, err
		}
	}

	view, err := loadTeamView(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}

	s.Log.Info("team updated", "id", id, "roles_changed", rolesChanged)
	if rolesChanged {
		s.requestSnapshots(CollectionTeams, CollectionStudents)
		s.checkPools(ctx)
	} else {
		s.requestSnapshots(CollectionTeams)
	}
	return view, nil
}

// Delete removes the team, then releases its students. The two phases are
// not atomic: if releasing fails the team is already gone and the students
// keep a dangling reference until the Reconciler runs.
func (s *TeamService) Delete(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Delete(&models.Team{}, "id = ?", id)
	if res.Error != nil {
		return storeError(res.Error, "delete team")
	}
	if res.RowsAffected == 0 {
		return notFound("team %s not found", id)
	}

	released := s.DB.WithContext(ctx).Model(&models.Student{}).Where("team_id = ?", id).
		Updates(map[string]any{"team_id": nil, "is_called": false})

	s.requestSnapshots(CollectionTeams, CollectionStudents)
	if released.Error != nil {
		s.Log.Error("team deleted but releasing its students failed; reconcile will repair", "team", id, "error", released.Error)
		return &Error{Kind: KindUnexpected, Msg: "team deleted but its students could not be released", Err: released.Error}
	}

	s.Log.Info("team deleted", "id", id, "released_students", released.RowsAffected)
	s.Cache.Invalidate(ctx, sectionsAndPoolsKey)
	return nil
}

// callRoleHolders marks the leader and sub-leaders called into team.
func (s *TeamService) callRoleHolders(ctx context.Context, team *models.Team) error {
	ids := team.RoleHolderIDs()

	var existing []string
	if err := s.DB.WithContext(ctx).Model(&models.Student{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
		return storeError(err, "look up role holders")
	}
	if missing := difference(ids, existing); len(missing) > 0 {
		s.Log.Warn("role holders not found, skipped", "team", team.ID, "ids", missing)
	}
	if len(existing) == 0 {
		return nil
	}

	err := s.DB.WithContext(ctx).Model(&models.Student{}).Where("id IN ?", existing).
		Updates(map[string]any{"is_called": true, "team_id": team.ID}).Error
	if err != nil {
		return storeError(err, "call role holders")
	}
	return nil
}

func difference(all, present []string) []string {
	seen := make(map[string]bool, len(present))
	for _, id := range present {
		seen[id] = true
	}
	var out []string
	for _, id := range all {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}
