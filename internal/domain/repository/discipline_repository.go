package repository

import (
	"academic_records/internal/domain/model"
	"context"
	"database/sql"
	"fmt"
)

type DisciplineRepository interface {
	Create(ctx context.Context, d *model.Discipline) error
	Update(ctx context.Context, d *model.Discipline) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.Discipline, error)
	FindBySlug(ctx context.Context, slug string) (*model.Discipline, error)
	List(ctx context.Context) ([]model.Discipline, error)
}

type pgDisciplineRepository struct {
	db *sql.DB
}

func NewPgDisciplineRepository(db *sql.DB) DisciplineRepository {
	return &pgDisciplineRepository{db: db}
}

const (
	disciplineColumns       = `id, name, slug, workload_hours, COALESCE(syllabus, '')`
	duplicateDisciplineMsg  = "discipline with this slug already exists"
	referencedDisciplineMsg = "discipline has classes linked to it"
)

func (r *pgDisciplineRepository) Create(ctx context.Context, d *model.Discipline) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO disciplines (name, slug, workload_hours, syllabus)
		 VALUES ($1, $2, $3, NULLIF($4, '')) RETURNING id`,
		d.Name, d.Slug, d.WorkloadHours, d.Syllabus).Scan(&d.ID)
	if err != nil {
		return translateWriteError("pgDisciplineRepository.Create", err, duplicateDisciplineMsg)
	}
	return nil
}

func (r *pgDisciplineRepository) Update(ctx context.Context, d *model.Discipline) error {
	return execAffectingOne(ctx, r.db, "pgDisciplineRepository.Update", duplicateDisciplineMsg,
		`UPDATE disciplines SET name = $1, slug = $2, workload_hours = $3, syllabus = NULLIF($4, '')
		 WHERE id = $5`,
		d.Name, d.Slug, d.WorkloadHours, d.Syllabus, d.ID)
}

func (r *pgDisciplineRepository) Delete(ctx context.Context, id int64) error {
	return execAffectingOne(ctx, r.db, "pgDisciplineRepository.Delete", referencedDisciplineMsg,
		`DELETE FROM disciplines WHERE id = $1`, id)
}

func (r *pgDisciplineRepository) FindByID(ctx context.Context, id int64) (*model.Discipline, error) {
	return r.findOne(ctx, "pgDisciplineRepository.FindByID",
		`SELECT `+disciplineColumns+` FROM disciplines WHERE id = $1`, id)
}

func (r *pgDisciplineRepository) FindBySlug(ctx context.Context, slug string) (*model.Discipline, error) {
	return r.findOne(ctx, "pgDisciplineRepository.FindBySlug",
		`SELECT `+disciplineColumns+` FROM disciplines WHERE slug = $1`, slug)
}

func (r *pgDisciplineRepository) findOne(ctx context.Context, op, query string, arg interface{}) (*model.Discipline, error) {
	d := &model.Discipline{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&d.ID, &d.Name, &d.Slug, &d.WorkloadHours, &d.Syllabus)
	if err != nil {
		return nil, translateReadError(op, err)
	}
	return d, nil
}

func (r *pgDisciplineRepository) List(ctx context.Context) ([]model.Discipline, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+disciplineColumns+` FROM disciplines ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("pgDisciplineRepository.List: %w", err)
	}
	defer rows.Close()

	disciplines := []model.Discipline{}
	for rows.Next() {
		var d model.Discipline
		if err := rows.Scan(&d.ID, &d.Name, &d.Slug, &d.WorkloadHours, &d.Syllabus); err != nil {
			return nil, fmt.Errorf("pgDisciplineRepository.List: scan: %w", err)
		}
		disciplines = append(disciplines, d)
	}
	return disciplines, rows.Err()
}
