package repository

import (
	"academic_records/internal/domain/model"
	"context"
	"database/sql"
	"fmt"
)

type StudentRepository interface {
	Create(ctx context.Context, s *model.Student) error
	Update(ctx context.Context, s *model.Student) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.Student, error)
	List(ctx context.Context) ([]model.Student, error)
	ExistsByCPF(ctx context.Context, cpf string) (bool, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}

type pgStudentRepository struct {
	db *sql.DB
}

func NewPgStudentRepository(db *sql.DB) StudentRepository {
	return &pgStudentRepository{db: db}
}

const duplicateStudentMsg = "student with given name or cpf already exists"

func (r *pgStudentRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO students (name, cpf) VALUES ($1, $2) RETURNING id`, s.Name, s.CPF).Scan(&s.ID)
	if err != nil {
		return translateWriteError("pgStudentRepository.Create", err, duplicateStudentMsg)
	}
	return nil
}

func (r *pgStudentRepository) Update(ctx context.Context, s *model.Student) error {
	return execAffectingOne(ctx, r.db, "pgStudentRepository.Update", duplicateStudentMsg,
		`UPDATE students SET name = $1, cpf = $2 WHERE id = $3`, s.Name, s.CPF, s.ID)
}

func (r *pgStudentRepository) Delete(ctx context.Context, id int64) error {
	return execAffectingOne(ctx, r.db, "pgStudentRepository.Delete", duplicateStudentMsg,
		`DELETE FROM students WHERE id = $1`, id)
}

func (r *pgStudentRepository) FindByID(ctx context.Context, id int64) (*model.Student, error) {
	s := &model.Student{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name, cpf FROM students WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.CPF)
	if err != nil {
		return nil, translateReadError("pgStudentRepository.FindByID", err)
	}
	return s, nil
}

func (r *pgStudentRepository) List(ctx context.Context) ([]model.Student, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, cpf FROM students ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("pgStudentRepository.List: %w", err)
	}
	defer rows.Close()

	students := []model.Student{}
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.CPF); err != nil {
			return nil, fmt.Errorf("pgStudentRepository.List: scan: %w", err)
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func (r *pgStudentRepository) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	var found bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM students WHERE cpf = $1)`, cpf).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("pgStudentRepository.ExistsByCPF: %w", err)
	}
	return found, nil
}

func (r *pgStudentRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var found bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM students WHERE name = $1)`, name).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("pgStudentRepository.ExistsByName: %w", err)
	}
	return found, nil
}
