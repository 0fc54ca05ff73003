// file: mappers/student_mapper.go
package mappers

import (
	"strings"

	"github.com/assessment-hisan/auction-backend/dto"
	"github.com/assessment-hisan/auction-backend/models"
)

// MapCreateReqToModel trims every text field. Blank pool and team values
// become null.
func MapCreateReqToModel(req dto.CreateStudentReq) models.Student {
	return models.Student{
		Name:            strings.TrimSpace(req.Name),
		AdmissionNumber: strings.TrimSpace(req.AdmissionNumber),
		Class:           strings.TrimSpace(req.Class),
		Section:         strings.TrimSpace(req.Section),
		Pool:            TrimmedOrNil(req.Pool),
		TeamID:          TrimmedOrNil(req.TeamID),
		IsCalled:        req.IsCalled != nil && *req.IsCalled,
	}
}

func MapImportToModel(rec dto.ImportStudent) models.Student {
	return models.Student{
		Name:            strings.TrimSpace(rec.Name),
		AdmissionNumber: strings.TrimSpace(rec.AdmissionNumber),
		Class:           strings.TrimSpace(rec.Class),
		Section:         strings.TrimSpace(rec.Section),
		Pool:            TrimmedOrNil(rec.Pool.Value),
	}
}

// ToExport strips team state so a reimported file starts everyone uncalled.
func ToExport(s models.Student) models.Student {
	s.TeamID = nil
	s.Team = nil
	s.IsCalled = false
	return s
}

func TrimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
