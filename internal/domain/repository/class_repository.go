package repository

import (
	"academic_records/internal/domain/model"
	"context"
	"database/sql"
	"fmt"
)

type ClassRepository interface {
	Create(ctx context.Context, c *model.Class) error
	Update(ctx context.Context, c *model.Class) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.Class, error)
	List(ctx context.Context) ([]model.Class, error)
	ListByDiscipline(ctx context.Context, disciplineID int64) ([]model.Class, error)
	ListByProfessor(ctx context.Context, professorID int64) ([]model.Class, error)
}

type pgClassRepository struct {
	db *sql.DB
}

func NewPgClassRepository(db *sql.DB) ClassRepository {
	return &pgClassRepository{db: db}
}

const classColumns = `id, discipline_id, professor_id, year, period`

func (r *pgClassRepository) Create(ctx context.Context, c *model.Class) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO classes (discipline_id, professor_id, year, period) VALUES ($1, $2, $3, $4) RETURNING id`,
		c.DisciplineID, c.ProfessorID, c.Year, c.Period).Scan(&c.ID)
	if err != nil {
		return translateWriteError("pgClassRepository.Create", err, "class already exists")
	}
	return nil
}

func (r *pgClassRepository) Update(ctx context.Context, c *model.Class) error {
	return execAffectingOne(ctx, r.db, "pgClassRepository.Update", "class already exists",
		`UPDATE classes SET discipline_id = $1, professor_id = $2, year = $3, period = $4 WHERE id = $5`,
		c.DisciplineID, c.ProfessorID, c.Year, c.Period, c.ID)
}

func (r *pgClassRepository) Delete(ctx context.Context, id int64) error {
	return execAffectingOne(ctx, r.db, "pgClassRepository.Delete", "class has enrollments or grades linked to it",
		`DELETE FROM classes WHERE id = $1`, id)
}

func (r *pgClassRepository) FindByID(ctx context.Context, id int64) (*model.Class, error) {
	c := &model.Class{}
	err := r.db.QueryRowContext(ctx, `SELECT `+classColumns+` FROM classes WHERE id = $1`, id).
		Scan(&c.ID, &c.DisciplineID, &c.ProfessorID, &c.Year, &c.Period)
	if err != nil {
		return nil, translateReadError("pgClassRepository.FindByID", err)
	}
	return c, nil
}

func (r *pgClassRepository) List(ctx context.Context) ([]model.Class, error) {
	return r.list(ctx, "pgClassRepository.List", `SELECT `+classColumns+` FROM classes ORDER BY year DESC, period`)
}

func (r *pgClassRepository) ListByDiscipline(ctx context.Context, disciplineID int64) ([]model.Class, error) {
	return r.list(ctx, "pgClassRepository.ListByDiscipline",
		`SELECT `+classColumns+` FROM classes WHERE discipline_id = $1 ORDER BY year DESC, period`, disciplineID)
}

func (r *pgClassRepository) ListByProfessor(ctx context.Context, professorID int64) ([]model.Class, error) {
	return r.list(ctx, "pgClassRepository.ListByProfessor",
		`SELECT `+classColumns+` FROM classes WHERE professor_id = $1 ORDER BY year DESC, period`, professorID)
}

func (r *pgClassRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]model.Class, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	classes := []model.Class{}
	for rows.Next() {
		var c model.Class
		if err := rows.Scan(&c.ID, &c.DisciplineID, &c.ProfessorID, &c.Year, &c.Period); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}
