package repository

import (
	"academic_records/internal/domain/model"
	"context"
	"database/sql"
	"fmt"
)

type GradeRepository interface {
	Create(ctx context.Context, g *model.Grade) error
	Update(ctx context.Context, g *model.Grade) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.Grade, error)
	List(ctx context.Context) ([]model.Grade, error)
	ListByStudent(ctx context.Context, studentID int64) ([]model.Grade, error)
	ListByClass(ctx context.Context, classID int64) ([]model.Grade, error)
}

type pgGradeRepository struct {
	db *sql.DB
}

func NewPgGradeRepository(db *sql.DB) GradeRepository {
	return &pgGradeRepository{db: db}
}

const gradeColumns = `id, student_id, class_id, value::float8, COALESCE(note, '')`

func (r *pgGradeRepository) Create(ctx context.Context, g *model.Grade) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO grades (student_id, class_id, value, note) VALUES ($1, $2, $3, NULLIF($4, '')) RETURNING id`,
		g.StudentID, g.ClassID, g.Value, g.Note).Scan(&g.ID)
	if err != nil {
		return translateWriteError("pgGradeRepository.Create", err, "grade already exists")
	}
	return nil
}

func (r *pgGradeRepository) Update(ctx context.Context, g *model.Grade) error {
	return execAffectingOne(ctx, r.db, "pgGradeRepository.Update", "grade already exists",
		`UPDATE grades SET student_id = $1, class_id = $2, value = $3, note = NULLIF($4, '') WHERE id = $5`,
		g.StudentID, g.ClassID, g.Value, g.Note, g.ID)
}

func (r *pgGradeRepository) Delete(ctx context.Context, id int64) error {
	return execAffectingOne(ctx, r.db, "pgGradeRepository.Delete", "grade cannot be deleted",
		`DELETE FROM grades WHERE id = $1`, id)
}

func (r *pgGradeRepository) FindByID(ctx context.Context, id int64) (*model.Grade, error) {
	g := &model.Grade{}
	err := r.db.QueryRowContext(ctx, `SELECT `+gradeColumns+` FROM grades WHERE id = $1`, id).
		Scan(&g.ID, &g.StudentID, &g.ClassID, &g.Value, &g.Note)
	if err != nil {
		return nil, translateReadError("pgGradeRepository.FindByID", err)
	}
	return g, nil
}

func (r *pgGradeRepository) List(ctx context.Context) ([]model.Grade, error) {
	return r.list(ctx, "pgGradeRepository.List", `SELECT `+gradeColumns+` FROM grades ORDER BY id`)
}

func (r *pgGradeRepository) ListByStudent(ctx context.Context, studentID int64) ([]model.Grade, error) {
	return r.list(ctx, "pgGradeRepository.ListByStudent",
		`SELECT `+gradeColumns+` FROM grades WHERE student_id = $1 ORDER BY class_id`, studentID)
}

func (r *pgGradeRepository) ListByClass(ctx context.Context, classID int64) ([]model.Grade, error) {
	return r.list(ctx, "pgGradeRepository.ListByClass",
		`SELECT `+gradeColumns+` FROM grades WHERE class_id = $1 ORDER BY student_id`, classID)
}

func (r *pgGradeRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]model.Grade, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	grades := []model.Grade{}
	for rows.Next() {
		var g model.Grade
		if err := rows.Scan(&g.ID, &g.StudentID, &g.ClassID, &g.Value, &g.Note); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		grades = append(grades, g)
	}
	return grades, rows.Err()
}
