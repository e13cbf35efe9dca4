package service

import (
	"academic_records/internal/common"
	"academic_records/internal/domain/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gradeFixture struct {
	svc      *GradeService
	grades   *fakeGradeRepo
	students *fakeStudentRepo
	classes  *fakeClassRepo
}

func newGradeFixture() *gradeFixture {
	f := &gradeFixture{
		grades:   newFakeGradeRepo(),
		students: newFakeStudentRepo(),
		classes:  newFakeClassRepo(),
	}
	f.svc = NewGradeService(f.grades, f.students, f.classes)
	return f
}

func (f *gradeFixture) seedGrade(studentID int64, value float64) int64 {
	id := f.grades.insert(model.Grade{StudentID: studentID, ClassID: 1, Value: value})
	_ = f.grades.put(id, model.Grade{ID: id, StudentID: studentID, ClassID: 1, Value: value})
	return id
}

func TestGradeReadIsOwnerScoped(t *testing.T) {
	f := newGradeFixture()
	bob := model.NewPrincipal(7, "bob", []model.Role{model.RoleUser}, true)
	own := f.seedGrade(7, 8.5)
	other := f.seedGrade(8, 6)

	g, err := f.svc.Get(context.Background(), bob, own)
	require.NoError(t, err)
	assert.Equal(t, 8.5, g.Value)

	_, err = f.svc.Get(context.Background(), bob, other)
	require.ErrorIs(t, err, common.ErrForbidden)

	_, err = f.svc.Get(context.Background(), adminPrincipal(), other)
	require.NoError(t, err)
}

func TestGradeAnonymousRejectedBeforeLookup(t *testing.T) {
	f := newGradeFixture()
	id := f.seedGrade(7, 5)

	_, err := f.svc.Get(context.Background(), nil, id)
	require.ErrorIs(t, err, common.ErrUnauthenticated)
	assert.Zero(t, f.grades.lookups)

	_, err = f.svc.Get(context.Background(), nil, 999)
	require.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestGradeMissingIsNotFound(t *testing.T) {
	f := newGradeFixture()
	_, err := f.svc.Get(context.Background(), userPrincipal(7), 42)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGradeListsByOwnerAndClass(t *testing.T) {
	f := newGradeFixture()
	f.seedGrade(7, 5)
	f.seedGrade(7, 6)
	f.seedGrade(8, 7)

	grades, err := f.svc.ListByStudent(context.Background(), userPrincipal(7), 7)
	require.NoError(t, err)
	assert.Len(t, grades, 2)

	_, err = f.svc.ListByStudent(context.Background(), userPrincipal(7), 8)
	require.ErrorIs(t, err, common.ErrForbidden)

	_, err = f.svc.ListByClass(context.Background(), userPrincipal(7), 1)
	require.ErrorIs(t, err, common.ErrForbidden)

	_, err = f.svc.List(context.Background(), userPrincipal(7))
	require.ErrorIs(t, err, common.ErrForbidden)

	all, err := f.svc.ListByClass(context.Background(), adminPrincipal(), 1)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGradeCreateValidatesAndRounds(t *testing.T) {
	f := newGradeFixture()
	studentID := f.students.insert(model.Student{Name: "Bob", CPF: "12345678901"})
	classID := f.classes.insert(model.Class{DisciplineID: 1, ProfessorID: 1, Year: 2025, Period: "2025.1"})
	ctx := context.Background()

	tooHigh := 10.5
	_, err := f.svc.Create(ctx, adminPrincipal(), GradeRequest{StudentID: studentID, ClassID: classID, Value: &tooHigh})
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = f.svc.Create(ctx, adminPrincipal(), GradeRequest{StudentID: studentID, ClassID: classID})
	require.ErrorIs(t, err, common.ErrValidation)

	value := 7.456
	_, err = f.svc.Create(ctx, adminPrincipal(), GradeRequest{StudentID: 99, ClassID: classID, Value: &value})
	require.ErrorIs(t, err, common.ErrNotFound)

	_, err = f.svc.Create(ctx, userPrincipal(studentID), GradeRequest{StudentID: studentID, ClassID: classID, Value: &value})
	require.ErrorIs(t, err, common.ErrForbidden)

	g, err := f.svc.Create(ctx, adminPrincipal(), GradeRequest{StudentID: studentID, ClassID: classID, Value: &value, Note: " final "})
	require.NoError(t, err)
	assert.Equal(t, 7.46, g.Value)
	assert.Equal(t, "final", g.Note)
	assert.NotZero(t, g.ID)
}

func TestGradeBoundsApplyToRoundedValue(t *testing.T) {
	f := newGradeFixture()
	studentID := f.students.insert(model.Student{Name: "Bob", CPF: "12345678901"})
	classID := f.classes.insert(model.Class{DisciplineID: 1, ProfessorID: 1, Year: 2025, Period: "2025.1"})
	ctx := context.Background()

	almostTen := 10.004
	g, err := f.svc.Create(ctx, adminPrincipal(), GradeRequest{StudentID: studentID, ClassID: classID, Value: &almostTen})
	require.NoError(t, err)
	assert.Equal(t, 10.0, g.Value)
	assert.Equal(t, 10.004, almostTen)

	overTen := 10.006
	_, err = f.svc.Update(ctx, adminPrincipal(), g.ID, GradeRequest{StudentID: studentID, ClassID: classID, Value: &overTen})
	require.ErrorIs(t, err, common.ErrValidation)
}
