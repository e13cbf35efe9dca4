package repository

import (
	"academic_records/internal/domain/model"
	"context"
	"database/sql"
	"fmt"
)

type EnrollmentRepository interface {
	Create(ctx context.Context, e *model.Enrollment) error
	Update(ctx context.Context, e *model.Enrollment) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.Enrollment, error)
	List(ctx context.Context) ([]model.Enrollment, error)
	ListByStudent(ctx context.Context, studentID int64) ([]model.Enrollment, error)
	ListByClass(ctx context.Context, classID int64) ([]model.Enrollment, error)
	ListByStudentAndClass(ctx context.Context, studentID, classID int64) ([]model.Enrollment, error)
}

type pgEnrollmentRepository struct {
	db *sql.DB
}

func NewPgEnrollmentRepository(db *sql.DB) EnrollmentRepository {
	return &pgEnrollmentRepository{db: db}
}

const enrollmentColumns = `id, student_id, class_id, enrolled_on, active`

func (r *pgEnrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO enrollments (student_id, class_id, enrolled_on, active) VALUES ($1, $2, $3, $4) RETURNING id`,
		e.StudentID, e.ClassID, e.EnrolledOn, e.Active).Scan(&e.ID)
	if err != nil {
		return translateWriteError("pgEnrollmentRepository.Create", err, "student already has an active enrollment in this class")
	}
	return nil
}

func (r *pgEnrollmentRepository) Update(ctx context.Context, e *model.Enrollment) error {
	return execAffectingOne(ctx, r.db, "pgEnrollmentRepository.Update", "student already has an active enrollment in this class",
		`UPDATE enrollments SET student_id = $1, class_id = $2, enrolled_on = $3, active = $4 WHERE id = $5`,
		e.StudentID, e.ClassID, e.EnrolledOn, e.Active, e.ID)
}

func (r *pgEnrollmentRepository) Delete(ctx context.Context, id int64) error {
	return execAffectingOne(ctx, r.db, "pgEnrollmentRepository.Delete", "enrollment cannot be deleted",
		`DELETE FROM enrollments WHERE id = $1`, id)
}

func (r *pgEnrollmentRepository) FindByID(ctx context.Context, id int64) (*model.Enrollment, error) {
	e := &model.Enrollment{}
	err := r.db.QueryRowContext(ctx, `SELECT `+enrollmentColumns+` FROM enrollments WHERE id = $1`, id).
		Scan(&e.ID, &e.StudentID, &e.ClassID, &e.EnrolledOn, &e.Active)
	if err != nil {
		return nil, translateReadError("pgEnrollmentRepository.FindByID", err)
	}
	return e, nil
}

func (r *pgEnrollmentRepository) List(ctx context.Context) ([]model.Enrollment, error) {
	return r.list(ctx, "pgEnrollmentRepository.List", `SELECT `+enrollmentColumns+` FROM enrollments ORDER BY id`)
}

func (r *pgEnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]model.Enrollment, error) {
	return r.list(ctx, "pgEnrollmentRepository.ListByStudent",
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE student_id = $1 ORDER BY enrolled_on DESC`, studentID)
}

func (r *pgEnrollmentRepository) ListByClass(ctx context.Context, classID int64) ([]model.Enrollment, error) {
	return r.list(ctx, "pgEnrollmentRepository.ListByClass",
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE class_id = $1 ORDER BY enrolled_on`, classID)
}

func (r *pgEnrollmentRepository) ListByStudentAndClass(ctx context.Context, studentID, classID int64) ([]model.Enrollment, error) {
	return r.list(ctx, "pgEnrollmentRepository.ListByStudentAndClass",
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE student_id = $1 AND class_id = $2`, studentID, classID)
}

func (r *pgEnrollmentRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]model.Enrollment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	enrollments := []model.Enrollment{}
	for rows.Next() {
		var e model.Enrollment
		if err := rows.Scan(&e.ID, &e.StudentID, &e.ClassID, &e.EnrolledOn, &e.Active); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}
