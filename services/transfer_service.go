// file: services/transfer_service.go
package services

import (
	"context"
	"fmt"

	"github.com/assessment-hisan/auction-backend/dto"
	"github.com/assessment-hisan/auction-backend/mappers"
	"github.com/assessment-hisan/auction-backend/models"
	"gorm.io/gorm/clause"
)

const importBatchSize = 200

// TransferService moves student rosters in and out as JSON files.
type TransferService struct {
	Deps
}

func NewTransferService(d Deps) *TransferService {
	return &TransferService{Deps: d.withDefaults()}
}

// Export returns students matching the optional filters with team state
// stripped.
func (s *TransferService) Export(ctx context.Context, class, section string) ([]models.Student, error) {
	q := s.DB.WithContext(ctx).Order("created_at asc, id asc")
	if class != "" {
		q = q.Where("class = ?", class)
	}
	if section != "" {
		q = q.Where("section = ?", section)
	}

	var students []models.Student
	if err := q.Find(&students).Error; err != nil {
		return nil, storeError(err, "export students")
	}

	out := make([]models.Student, 0, len(students))
	for _, st := range students {
		out = append(out, mappers.ToExport(st))
	}
	return out, nil
}

// Import upserts students by admission number. New students start uncalled
// and without a team; existing students are released from their team unless
// they lead or sub-lead one, in which case their team state is kept. A pool
// missing from a record leaves the stored pool alone. When the file repeats
// an admission number the last entry wins.
func (s *TransferService) Import(ctx context.Context, records []dto.ImportStudent) (int, error) {
	if len(records) == 0 {
		return 0, invalid("the file contains no students")
	}

	index := map[string]int{}
	students := []models.Student{}
	setPool := []bool{}
	for i, rec := range records {
		st := mappers.MapImportToModel(rec)
		if st.AdmissionNumber == "" || st.Name == "" || st.Class == "" || st.Section == "" {
			return 0, invalid("record %d: name, admissionNumber, class and section are required", i)
		}
		if at, ok := index[st.AdmissionNumber]; ok {
			students[at] = st
			setPool[at] = rec.Pool.Set
			continue
		}
		index[st.AdmissionNumber] = len(students)
		students = append(students, st)
		setPool = append(setPool, rec.Pool.Set)
	}

	leaders, err := s.roleHolderAdmissions(ctx)
	if err != nil {
		return 0, err
	}

	groups := map[importColumns][]models.Student{}
	var order []importColumns
	kept := 0
	for i, st := range students {
		k := importColumns{keepTeam: leaders[st.AdmissionNumber], setPool: setPool[i]}
		if k.keepTeam {
			kept++
		}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], st)
	}

	for _, k := range order {
		rows := groups[k]
		err := s.DB.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "admission_number"}},
				DoUpdates: clause.AssignmentColumns(k.columns()),
			}).
			Omit(clause.Associations).
			CreateInBatches(&rows, importBatchSize).Error
		if err != nil {
			return 0, storeError(err, fmt.Sprintf("import %d students", len(rows)))
		}
	}

	s.Log.Info("students imported", "count", len(students), "role_holders_kept", kept)
	s.studentsChanged(ctx, false)
	return len(students), nil
}

// importColumns selects which stored columns an imported row overwrites.
type importColumns struct {
	keepTeam bool
	setPool  bool
}

func (k importColumns) columns() []string {
	cols := []string{"name", "class", "section", "updated_at"}
	if k.setPool {
		cols = append(cols, "pool")
	}
	if !k.keepTeam {
		cols = append(cols, "is_called", "team_id")
	}
	return cols
}

// roleHolderAdmissions returns the admission numbers of every student that
// leads or sub-leads a team.
func (s *TransferService) roleHolderAdmissions(ctx context.Context) (map[string]bool, error) {
	var teams []models.Team
	if err := s.DB.WithContext(ctx).Select("id", "leader_id", "sub_leaders").Find(&teams).Error; err != nil {
		return nil, storeError(err, "scan teams")
	}
	var ids []string
	for i := range teams {
		ids = append(ids, teams[i].RoleHolderIDs()...)
	}

	out := map[string]bool{}
	if len(ids) == 0 {
		return out, nil
	}
	var admissions []string
	err := s.DB.WithContext(ctx).Model(&models.Student{}).Where("id IN ?", ids).Pluck("admission_number", &admissions).Error
	if err != nil {
		return nil, storeError(err, "look up role holders")
	}
	for _, a := range admissions {
		out[a] = true
	}
	return out, nil
}
