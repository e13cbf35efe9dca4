package service

import (
	"academic_records/internal/app/authz"
	"academic_records/internal/domain/model"
	"academic_records/internal/domain/repository"
	"context"
	"strings"
)

type ProfessorService struct {
	professorRepo repository.ProfessorRepository
}

func NewProfessorService(professorRepo repository.ProfessorRepository) *ProfessorService {
	return &ProfessorService{professorRepo: professorRepo}
}

type ProfessorRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email,min=5,max=100"`
	Phone string `json:"phone" validate:"max=20"`
}

func (r *ProfessorRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
}

func (s *ProfessorService) List(ctx context.Context, p *model.Principal) ([]model.Professor, error) {
	if err := authz.Authorize(p, authz.KindProfessor, authz.OpList, nil); err != nil {
		return nil, err
	}
	return s.professorRepo.List(ctx)
}

func (s *ProfessorService) Get(ctx context.Context, p *model.Principal, id int64) (*model.Professor, error) {
	if err := authz.Authorize(p, authz.KindProfessor, authz.OpRead, nil); err != nil {
		return nil, err
	}
	return s.professorRepo.FindByID(ctx, id)
}

func (s *ProfessorService) Create(ctx context.Context, p *model.Principal, req ProfessorRequest) (*model.Professor, error) {
	if err := authz.Authorize(p, authz.KindProfessor, authz.OpCreate, nil); err != nil {
		return nil, err
	}
	req.normalize()
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	professor := &model.Professor{Name: req.Name, Email: req.Email, Phone: req.Phone}
	if err := s.professorRepo.Create(ctx, professor); err != nil {
		return nil, err
	}
	return professor, nil
}

func (s *ProfessorService) Update(ctx context.Context, p *model.Principal, id int64, req ProfessorRequest) (*model.Professor, error) {
	if err := authz.Authorize(p, authz.KindProfessor, authz.OpUpdate, nil); err != nil {
		return nil, err
	}
	req.normalize()
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	professor := &model.Professor{ID: id, Name: req.Name, Email: req.Email, Phone: req.Phone}
	if err := s.professorRepo.Update(ctx, professor); err != nil {
		return nil, err
	}
	return professor, nil
}

func (s *ProfessorService) Delete(ctx context.Context, p *model.Principal, id int64) error {
	if err := authz.Authorize(p, authz.KindProfessor, authz.OpDelete, nil); err != nil {
		return err
	}
	return s.professorRepo.Delete(ctx, id)
}
