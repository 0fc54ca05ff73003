// file: services/student_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/assessment-hisan/auction-backend/dto"
	"github.com/assessment-hisan/auction-backend/mappers"
	"github.com/assessment-hisan/auction-backend/models"
	"github.com/assessment-hisan/auction-backend/realtime"
	"gorm.io/gorm/clause"
)

// StudentService owns student records and the called/team invariant:
// a student has a team reference exactly when it is called.
type StudentService struct {
	Deps
}

func NewStudentService(d Deps) *StudentService {
	return &StudentService{Deps: d.withDefaults()}
}

// DuplicateConflict describes one record a bulk insert rejected.
type DuplicateConflict struct {
	Index           int    `json:"index"`
	AdmissionNumber string `json:"admissionNumber"`
	Message         string `json:"message"`
}

type BulkResult struct {
	Inserted   []models.Student    `json:"insertedStudents"`
	Duplicates []DuplicateConflict `json:"duplicates"`
}

// List returns every student with its team resolved.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	students := []models.Student{}
	if err := s.DB.WithContext(ctx).Preload("Team").Order("created_at asc, id asc").Find(&students).Error; err != nil {
		return nil, storeError(err, "list students")
	}
	return students, nil
}

func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentReq) (*models.Student, error) {
	student, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.insert(ctx, &student); err != nil {
		return nil, err
	}

	s.Log.Info("student created", "id", student.ID, "admission_number", student.AdmissionNumber)
	s.studentsChanged(ctx, student.IsCalled)
	return &student, nil
}

// BulkCreate validates every record up front, then inserts them one by one.
// Duplicate admission numbers are collected instead of aborting the batch.
func (s *StudentService) BulkCreate(ctx context.Context, reqs []dto.CreateStudentReq) (*BulkResult, error) {
	if len(reqs) == 0 {
		return nil, invalid("at least one student is required")
	}

	students := make([]models.Student, len(reqs))
	for i, req := range reqs {
		st, err := s.build(ctx, req)
		if err != nil {
			return nil, &Error{Kind: KindOf(err), Msg: fmt.Sprintf("record %d: %v", i, err)}
		}
		students[i] = st
	}

	result := &BulkResult{
		Inserted:   []models.Student{},
		Duplicates: []DuplicateConflict{},
	}
	var failure error
	anyCalled := false
	for i := range students {
		err := s.insert(ctx, &students[i])
		switch {
		case err == nil:
			result.Inserted = append(result.Inserted, students[i])
			anyCalled = anyCalled || students[i].IsCalled
		case KindOf(err) == KindDuplicateKey:
			result.Duplicates = append(result.Duplicates, DuplicateConflict{
				Index:           i,
				AdmissionNumber: students[i].AdmissionNumber,
				Message:         err.Error(),
			})
		default:
			failure = err
		}
		if failure != nil {
			break
		}
	}

	s.Log.Info("bulk insert finished",
		"requested", len(reqs),
		"inserted", len(result.Inserted),
		"duplicates", len(result.Duplicates))
	if len(result.Inserted) > 0 {
		s.studentsChanged(ctx, anyCalled)
	}
	if failure != nil {
		return result, failure
	}
	return result, nil
}

// Update applies a partial patch. Team and called flag are kept in step:
// setting a team calls the student, clearing either clears both.
func (s *StudentService) Update(ctx context.Context, id string, patch dto.StudentPatch) (*models.Student, error) {
	student, err := loadStudent(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	for col, v := range map[string]*string{
		"name":             patch.Name,
		"admission_number": patch.AdmissionNumber,
		"class":            patch.Class,
		"section":          patch.Section,
	} {
		if v == nil {
			continue
		}
		trimmed := strings.TrimSpace(*v)
		if trimmed == "" {
			return nil, invalid("%s cannot be empty", col)
		}
		updates[col] = trimmed
	}
	if patch.Pool.Set {
		updates["pool"] = mappers.TrimmedOrNil(patch.Pool.Value)
	}

	teamID, called, teamChanged, err := resolveTeamPatch(student, patch)
	if err != nil {
		return nil, err
	}
	if teamChanged {
		if teamID != nil {
			ok, err := teamExists(ctx, s.DB, *teamID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, invalid("team %s does not exist", *teamID)
			}
		}
		team, err := findLeadership(ctx, s.DB, id)
		if err != nil {
			return nil, err
		}
		if team != nil {
			return nil, newError(KindLeadershipConflict, "student leads team %q; transfer the role or delete the team first", team.Name)
		}
	}
	if patch.TeamID.Set || patch.IsCalled != nil {
		updates["team_id"] = teamID
		updates["is_called"] = called
	}

	if len(updates) > 0 {
		err := s.DB.WithContext(ctx).Model(&models.Student{}).Where("id = ?", id).Updates(updates).Error
		if err != nil {
			if isDuplicate(err) {
				return nil, &Error{Kind: KindDuplicateKey, Msg: "admission number already exists", Err: err}
			}
			return nil, storeError(err, "update student")
		}
	}

	updated, err := loadStudent(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}

	s.Log.Info("student updated", "id", id, "called", updated.IsCalled)
	s.Broadcaster.Emit(realtime.EventStudentAssigned, updated)
	s.studentsChanged(ctx, true)
	return updated, nil
}

// resolveTeamPatch computes the team reference and called flag a patch leads to.
func resolveTeamPatch(current *models.Student, patch dto.StudentPatch) (teamID *string, called bool, changed bool, err error) {
	teamID = current.TeamID
	if patch.TeamID.Set {
		teamID = mappers.TrimmedOrNil(patch.TeamID.Value)
	}

	if patch.IsCalled != nil {
		switch {
		case patch.TeamID.Set && *patch.IsCalled != (teamID != nil):
			return nil, false, false, invalid("isCalled must be true exactly when teamId is set")
		case !patch.TeamID.Set && *patch.IsCalled && teamID == nil:
			return nil, false, false, invalid("a student can only be called into a team; teamId is required")
		case !patch.TeamID.Set && !*patch.IsCalled:
			teamID = nil
		}
	}

	return teamID, teamID != nil, !sameID(teamID, current.TeamID), nil
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Delete removes a student. Role holders cannot be deleted while their team exists.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := loadStudent(ctx, s.DB, id); err != nil {
		return err
	}

	team, err := findLeadership(ctx, s.DB, id)
	if err != nil {
		return err
	}
	if team != nil {
		return newError(KindLeadershipConflict, "student leads team %q and cannot be deleted", team.Name)
	}

	res := s.DB.WithContext(ctx).Delete(&models.Student{}, "id = ?", id)
	if res.Error != nil {
		return storeError(res.Error, "delete student")
	}
	if res.RowsAffected == 0 {
		return notFound("student %s not found", id)
	}

	s.Log.Info("student deleted", "id", id)
	s.studentsChanged(ctx, true)
	return nil
}

// AssignToPool moves students into pool and returns how many actually moved.
// Students already in the pool are left untouched, so repeating a call is a no-op.
func (s *StudentService) AssignToPool(ctx context.Context, studentIDs []string, pool string) (int64, error) {
	pool = strings.TrimSpace(pool)
	ids := make([]string, 0, len(studentIDs))
	for _, id := range studentIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 || pool == "" {
		return 0, invalid("studentIds and poolName are required")
	}

	res := s.DB.WithContext(ctx).Model(&models.Student{}).
		Where("id IN ?", ids).
		Where("(pool IS NULL OR pool <> ?)", pool).
		Update("pool", pool)
	if res.Error != nil {
		return 0, storeError(res.Error, "assign students to pool")
	}

	s.Log.Info("students assigned to pool", "pool", pool, "modified", res.RowsAffected)
	s.studentsChanged(ctx, true)
	return res.RowsAffected, nil
}

// Unassign clears a student's team and called flag. A leader or sub-leader
// of any team is refused without touching any record.
func (s *StudentService) Unassign(ctx context.Context, id string) (*models.Student, error) {
	if _, err := loadStudent(ctx, s.DB, id); err != nil {
		return nil, err
	}

	team, err := findLeadership(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if team != nil {
		s.Log.Warn("unassign refused, student holds a team role", "id", id, "team", team.Name)
		return nil, newError(KindLeadershipConflict, "student is a leader or sub-leader of team %q", team.Name)
	}

	err = s.DB.WithContext(ctx).Model(&models.Student{}).Where("id = ?", id).
		Updates(map[string]any{"team_id": nil, "is_called": false}).Error
	if err != nil {
		return nil, storeError(err, "unassign student")
	}

	updated, err := loadStudent(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}

	s.Log.Info("student unassigned", "id", id)
	s.Broadcaster.Emit(realtime.EventStudentUnassigned, updated)
	s.studentsChanged(ctx, false)
	return updated, nil
}

// build validates a create request and applies defaults.
func (s *StudentService) build(ctx context.Context, req dto.CreateStudentReq) (models.Student, error) {
	st := mappers.MapCreateReqToModel(req)

	switch {
	case st.Name == "":
		return st, invalid("name is required")
	case st.AdmissionNumber == "":
		return st, invalid("admissionNumber is required")
	case st.Class == "":
		return st, invalid("class is required")
	case st.Section == "":
		return st, invalid("section is required")
	}

	if st.TeamID == nil {
		if st.IsCalled {
			return st, invalid("a student can only be called into a team; teamId is required")
		}
		return st, nil
	}

	if req.IsCalled != nil && !*req.IsCalled {
		return st, invalid("isCalled must be true exactly when teamId is set")
	}
	ok, err := teamExists(ctx, s.DB, *st.TeamID)
	if err != nil {
		return st, err
	}
	if !ok {
		return st, invalid("team %s does not exist", *st.TeamID)
	}
	st.IsCalled = true
	return st, nil
}

func (s *StudentService) insert(ctx context.Context, st *models.Student) error {
	err := s.DB.WithContext(ctx).Omit(clause.Associations).Create(st).Error
	if err == nil {
		return nil
	}
	if isDuplicate(err) {
		return &Error{Kind: KindDuplicateKey, Msg: fmt.Sprintf("admission number %q already exists", st.AdmissionNumber), Err: err}
	}
	return storeError(err, "create student")
}
