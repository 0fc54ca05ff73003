package services

import (
	"context"
	"testing"

	"github.com/assessment-hisan/auction-backend/dto"
	"github.com/assessment-hisan/auction-backend/models"
	"github.com/assessment-hisan/auction-backend/realtime"
	"github.com/stretchr/testify/require"
)

func TestCreateStudent(t *testing.T) {
	d, _ := newDeps(t)
	svc := NewStudentService(d)
	ctx := context.Background()

	st, err := svc.Create(ctx, dto.CreateStudentReq{
		Name:            "  Amina  ",
		AdmissionNumber: "A-001",
		Class:           "10",
		Section:         "Bidayay",
		Pool:            strPtr("Pool 1"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, st.ID)
	require.Equal(t, "Amina", st.Name)
	require.False(t, st.IsCalled)
	require.Nil(t, st.TeamID)
	require.Equal(t, "Pool 1", *st.Pool)

	students, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)
}

func TestCreateStudentValidation(t *testing.T) {
	d, _ := newDeps(t)
	svc := NewStudentService(d)
	ctx := context.Background()

	tests := []struct {
		name string
		req  dto.CreateStudentReq
	}{
		{"missing name", dto.CreateStudentReq{AdmissionNumber: "1", Class: "10", Section: "A"}},
		{"missing admission number", dto.CreateStudentReq{Name: "x", Class: "10", Section: "A"}},
		{"missing class", dto.CreateStudentReq{Name: "x", AdmissionNumber: "1", Section: "A"}},
		{"missing section", dto.CreateStudentReq{Name: "x", AdmissionNumber: "1", Class: "10"}},
		{"called without team", dto.CreateStudentReq{Name: "x", AdmissionNumber: "1", Class: "10", Section: "A", IsCalled: boolPtr(true)}},
		{"unknown team", dto.CreateStudentReq{Name: "x", AdmissionNumber: "1", Class: "10", Section: "A", TeamID: strPtr("nope")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCreateStudentDuplicateAdmission(t *testing.T) {
	d, _ := newDeps(t)
	svc := NewStudentService(d)
	seedStudent(t, svc, "A-001", "Bidayay", "")

	_, err := svc.Create(context.Background(), dto.CreateStudentReq{
		Name: "Other", AdmissionNumber: "A-001", Class: "9", Section: "Bidayay",
	})
	require.ErrorIs(t, err, ErrDuplicateKey)

	var count int64
	require.NoError(t, d.DB.Model(&models.Student{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestBulkCreateCollectsDuplicates(t *testing.T) {
	d, _ := newDeps(t)
	svc := NewStudentService(d)
	seedStudent(t, svc, "A-003", "Bidayay", "")

	reqs := make([]dto.CreateStudentReq, 0, 5)
	for _, adm := range []string{"A-001", "A-002", "A-003", "A-004", "A-005"} {
		reqs = append(reqs, dto.CreateStudentReq{Name: "S " + adm, AdmissionNumber: adm, Class: "10", Section: "Bidayay"})
	}

	result, err := svc.BulkCreate(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, result.Inserted, 4)
	require.Len(t, result.Duplicates, 1)
	require.Equal(t, 2, result.Duplicates[0].Index)
	require.Equal(t, "A-003", result.Duplicates[0].AdmissionNumber)

	var count int64
	require.NoError(t, d.DB.Model(&models.Student{}).Count(&count).Error)
	require.EqualValues(t, 5, count)
}

func TestBulkCreateRejectsInvalidBatch(t *testing.T) {
	d, _ := newDeps(t)
	svc := NewStudentService(d)

	_, err := svc.BulkCreate(context.Background(), []dto.CreateStudentReq{
		{Name: "ok", AdmissionNumber: "A-001", Class: "10", Section: "A"},
		{Name: "", AdmissionNumber: "A-002", Class: "10", Section: "A"},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Contains(t, err.Error(), "record 1")

	var count int64
	require.NoError(t, d.DB.Model(&models.Student{}).Count(&count).Error)
	require.Zero(t, count)

	_, err = svc.BulkCreate(context.Background(), nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateStudentNotFound(t *testing.T) {
	d, _ := newDeps(t)
	svc := NewStudentService(d)

	_, err := svc.Update(context.Background(), "missing", dto.StudentPatch{Name: strPtr("x")})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStudentKeepsTeamAndCalledInStep(t *testing.T) {
	d, rec := newDeps(t)
	students := NewStudentService(d)
	teams := NewTeamService(d)
	ctx := context.Background()

	leader := seedStudent(t, students, "L-1", "Bidayay", "Pool 1")
	member := seedStudent(t, students, "M-1", "Bidayay", "Pool 1")
	team, err := teams.Create(ctx, dto.CreateTeamReq{Name: "Falcons", Leader: leader.ID, Color: "#ff0000"})
	require.NoError(t, err)

	updated, err := students.Update(ctx, member.ID, dto.StudentPatch{TeamID: dto.Some(team.ID)})
	require.NoError(t, err)
	require.True(t, updated.IsCalled)
	require.Equal(t, team.ID, *updated.TeamID)
	require.Equal(t, 1, rec.Count(realtime.EventStudentAssigned))

	updated, err = students.Update(ctx, member.ID, dto.StudentPatch{IsCalled: boolPtr(false)})
	require.NoError(t, err)
	require.False(t, updated.IsCalled)
	require.Nil(t, updated.TeamID)

	_, err = students.Update(ctx, member.ID, dto.StudentPatch{IsCalled: boolPtr(true)})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = students.Update(ctx, member.ID, dto.StudentPatch{TeamID: dto.Some(team.ID), IsCalled: boolPtr(false)})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = students.Update(ctx, member.ID, dto.StudentPatch{TeamID: dto.Some("ghost")})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = students.Update(ctx, leader.ID, dto.StudentPatch{TeamID: dto.Null[string]()})
	require.ErrorIs(t, err, ErrLeadershipConflict)

	requireInvariant(t, d)
}

func TestUpdateStudentFields(t *testing.T) {
	d, _ := newDeps(t)
	svc := NewStudentService(d)
	ctx := context.Background()
	st := seedStudent(t, svc, "A-001", "Bidayay", "Pool 1")
	seedStudent(t, svc, "A-002", "Bidayay", "Pool 1")

	updated, err := svc.Update(ctx, st.ID, dto.StudentPatch{
		Name: strPtr("Renamed"),
		Pool: dto.Null[string](),
	})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
	require.Nil(t, updated.Pool)

	_, err = svc.Update(ctx, st.ID, dto.StudentPatch{Name: strPtr("  ")})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(ctx, st.ID, dto.StudentPatch{AdmissionNumber: strPtr("A-002")})
	require.ErrorIs(t, err, ErrDuplicateKey)
}

func TestDeleteStudent(t *testing.T) {
	d, _ := newDeps(t)
	students := NewStudentService(d)
	teams := NewTeamService(d)
	ctx := context.Background()

	leader := seedStudent(t, students, "L-1", "Bidayay", "")
	plain := seedStudent(t, students, "P-1", "Bidayay", "")
	_, err := teams.Create(ctx, dto.CreateTeamReq{Name: "Falcons", Leader: leader.ID, Color: "red"})
	require.NoError(t, err)

	require.NoError(t, students.Delete(ctx, plain.ID))
	require.ErrorIs(t, students.Delete(ctx, plain.ID), ErrNotFound)
	require.ErrorIs(t, students.Delete(ctx, leader.ID), ErrLeadershipConflict)
}

func TestAssignToPoolIsIdempotent(t *testing.T) {
	d, _ := newDeps(t)
	svc := NewStudentService(d)
	ctx := context.Background()

	a := seedStudent(t, svc, "A-001", "Bidayay", "")
	b := seedStudent(t, svc, "A-002", "Bidayay", "Pool 2")
	c := seedStudent(t, svc, "A-003", "Bidayay", "Pool 3")

	n, err := svc.AssignToPool(ctx, []string{a.ID, b.ID, c.ID}, "Pool 2")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	n, err = svc.AssignToPool(ctx, []string{a.ID, b.ID, c.ID}, "Pool 2")
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = svc.AssignToPool(ctx, []string{"unknown"}, "Pool 2")
	require.NoError(t, err)
	require.Zero(t, n)

	_, err = svc.AssignToPool(ctx, nil, "Pool 2")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.AssignToPool(ctx, []string{a.ID}, " ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestUnassignStudent(t *testing.T) {
	d, rec := newDeps(t)
	students := NewStudentService(d)
	teams := NewTeamService(d)
	ctx := context.Background()

	leader := seedStudent(t, students, "L-1", "Bidayay", "")
	sub := seedStudent(t, students, "S-1", "Bidayay", "")
	member := seedStudent(t, students, "M-1", "Bidayay", "")
	team, err := teams.Create(ctx, dto.CreateTeamReq{
		Name:       "Falcons",
		Leader:     leader.ID,
		SubLeaders: map[string]string{"subLeader1": sub.ID},
		Color:      "red",
	})
	require.NoError(t, err)
	_, err = students.Update(ctx, member.ID, dto.StudentPatch{TeamID: dto.Some(team.ID)})
	require.NoError(t, err)

	for _, id := range []string{leader.ID, sub.ID} {
		_, err := students.Unassign(ctx, id)
		require.ErrorIs(t, err, ErrLeadershipConflict)

		st, err := loadStudent(ctx, d.DB, id)
		require.NoError(t, err)
		require.True(t, st.IsCalled)
		require.Equal(t, team.ID, *st.TeamID)
	}

	rec.Reset()
	out, err := students.Unassign(ctx, member.ID)
	require.NoError(t, err)
	require.False(t, out.IsCalled)
	require.Nil(t, out.TeamID)
	require.Equal(t, 1, rec.Count(realtime.EventStudentUnassigned))

	_, err = students.Unassign(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	requireInvariant(t, d)
}
