package repository

import (
	"academic_records/internal/domain/model"
	"context"
	"database/sql"
	"fmt"
)

type ProfessorRepository interface {
	Create(ctx context.Context, p *model.Professor) error
	Update(ctx context.Context, p *model.Professor) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.Professor, error)
	List(ctx context.Context) ([]model.Professor, error)
}

type pgProfessorRepository struct {
	db *sql.DB
}

func NewPgProfessorRepository(db *sql.DB) ProfessorRepository {
	return &pgProfessorRepository{db: db}
}

func (r *pgProfessorRepository) Create(ctx context.Context, p *model.Professor) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO professors (name, email, phone) VALUES ($1, $2, NULLIF($3, '')) RETURNING id`,
		p.Name, p.Email, p.Phone).Scan(&p.ID)
	if err != nil {
		return translateWriteError("pgProfessorRepository.Create", err, "professor already exists")
	}
	return nil
}

func (r *pgProfessorRepository) Update(ctx context.Context, p *model.Professor) error {
	return execAffectingOne(ctx, r.db, "pgProfessorRepository.Update", "professor already exists",
		`UPDATE professors SET name = $1, email = $2, phone = NULLIF($3, '') WHERE id = $4`,
		p.Name, p.Email, p.Phone, p.ID)
}

func (r *pgProfessorRepository) Delete(ctx context.Context, id int64) error {
	return execAffectingOne(ctx, r.db, "pgProfessorRepository.Delete", "professor cannot be deleted",
		`DELETE FROM professors WHERE id = $1`, id)
}

func (r *pgProfessorRepository) FindByID(ctx context.Context, id int64) (*model.Professor, error) {
	p := &model.Professor{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, COALESCE(phone, '') FROM professors WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Email, &p.Phone)
	if err != nil {
		return nil, translateReadError("pgProfessorRepository.FindByID", err)
	}
	return p, nil
}

func (r *pgProfessorRepository) List(ctx context.Context) ([]model.Professor, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, email, COALESCE(phone, '') FROM professors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("pgProfessorRepository.List: %w", err)
	}
	defer rows.Close()

	professors := []model.Professor{}
	for rows.Next() {
		var p model.Professor
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Phone); err != nil {
			return nil, fmt.Errorf("pgProfessorRepository.List: scan: %w", err)
		}
		professors = append(professors, p)
	}
	return professors, rows.Err()
}
