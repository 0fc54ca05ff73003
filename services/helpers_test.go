package services

import (
	"context"
	"testing"

	"github.com/assessment-hisan/auction-backend/dto"
	"github.com/assessment-hisan/auction-backend/models"
	"github.com/assessment-hisan/auction-backend/testutil"
	"github.com/stretchr/testify/require"
)

func newDeps(t *testing.T) (Deps, *testutil.Recorder) {
	t.Helper()
	rec := &testutil.Recorder{}
	return Deps{
		DB:          testutil.NewDB(t),
		Broadcaster: rec,
		Log:         testutil.Logger(),
	}, rec
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

func seedStudent(t *testing.T, svc *StudentService, admission, section, pool string) *models.Student {
	t.Helper()
	req := dto.CreateStudentReq{
		Name:            "Student " + admission,
		AdmissionNumber: admission,
		Class:           "10",
		Section:         section,
	}
	if pool != "" {
		req.Pool = strPtr(pool)
	}
	st, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	return st
}

// requireInvariant checks that every stored student has a team exactly when
// it is called.
func requireInvariant(t *testing.T, d Deps) {
	t.Helper()
	var students []models.Student
	require.NoError(t, d.DB.Find(&students).Error)
	for _, st := range students {
		require.Truef(t, st.Consistent(), "student %s: called=%v team=%v", st.AdmissionNumber, st.IsCalled, st.TeamID)
	}
}
