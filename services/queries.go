// file: services/queries.go
package services

import (
	"context"
	"fmt"

	"github.com/assessment-hisan/auction-backend/mappers"
	"github.com/assessment-hisan/auction-backend/models"
	"gorm.io/gorm"
)

func loadStudents(ctx context.Context, db *gorm.DB) ([]models.Student, error) {
	students := []models.Student{}
	if err := db.WithContext(ctx).Order("created_at asc, id asc").Find(&students).Error; err != nil {
		return nil, storeError(err, "list students")
	}
	return students, nil
}

func loadStudent(ctx context.Context, db *gorm.DB, id string) (*models.Student, error) {
	var student models.Student
	if err := db.WithContext(ctx).First(&student, "id = ?", id).Error; err != nil {
		return nil, storeError(err, fmt.Sprintf("student %s not found", id))
	}
	return &student, nil
}

// loadTeamViews returns teams with role holders resolved. With ids given,
// only those teams are loaded.
func loadTeamViews(ctx context.Context, db *gorm.DB, ids ...string) ([]models.TeamView, error) {
	teams := []models.Team{}
	q := db.WithContext(ctx).Order("created_at asc, id asc")
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	if err := q.Find(&teams).Error; err != nil {
		return nil, storeError(err, "list teams")
	}

	var roleIDs []string
	for i := range teams {
		roleIDs = append(roleIDs, teams[i].RoleHolderIDs()...)
	}

	byID := map[string]*models.Student{}
	if len(roleIDs) > 0 {
		var students []models.Student
		if err := db.WithContext(ctx).Where("id IN ?", roleIDs).Find(&students).Error; err != nil {
			return nil, storeError(err, "resolve team members")
		}
		for i := range students {
			byID[students[i].ID] = &students[i]
		}
	}

	views := make([]models.TeamView, 0, len(teams))
	for _, t := range teams {
		views = append(views, mappers.MapTeamToView(t, byID))
	}
	return views, nil
}

func loadTeamView(ctx context.Context, db *gorm.DB, id string) (*models.TeamView, error) {
	views, err := loadTeamViews(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, notFound("team %s not found", id)
	}
	return &views[0], nil
}

func studentExists(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Student{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, storeError(err, "look up student")
	}
	return count > 0, nil
}

func teamExists(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Team{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, storeError(err, "look up team")
	}
	return count > 0, nil
}

// findLeadership scans every team for one in which the student is leader or
// sub-leader. Sub-leaders live in a JSON column, so the scan happens here
// rather than in SQL.
func findLeadership(ctx context.Context, db *gorm.DB, studentID string) (*models.Team, error) {
	var teams []models.Team
	if err := db.WithContext(ctx).Select("id", "name", "leader_id", "sub_leaders").Find(&teams).Error; err != nil {
		return nil, storeError(err, "scan teams")
	}
	for i := range teams {
		if teams[i].HoldsRole(studentID) {
			return &teams[i], nil
		}
	}
	return nil, nil
}

// checkRoleConflicts fails when any of ids already holds a role in a team
// other than exceptTeamID.
func checkRoleConflicts(ctx context.Context, db *gorm.DB, ids []string, exceptTeamID string) error {
	var teams []models.Team
	if err := db.WithContext(ctx).Select("id", "name", "leader_id", "sub_leaders").Find(&teams).Error; err != nil {
		return storeError(err, "scan teams")
	}
	for i := range teams {
		if teams[i].ID == exceptTeamID {
			continue
		}
		for _, id := range ids {
			if teams[i].HoldsRole(id) {
				return newError(KindLeadershipConflict, "student %s already holds a role in team %q", id, teams[i].Name)
			}
		}
	}
	return nil
}
