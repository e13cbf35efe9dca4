package service

import (
	"academic_records/internal/app/authz"
	"academic_records/internal/common"
	"academic_records/internal/domain/model"
	"academic_records/internal/domain/repository"
	"context"
	"errors"
	"fmt"
	"strings"
)

type ClassService struct {
	classRepo      repository.ClassRepository
	disciplineRepo repository.DisciplineRepository
	professorRepo  repository.ProfessorRepository
}

func NewClassService(
	classRepo repository.ClassRepository,
	disciplineRepo repository.DisciplineRepository,
	professorRepo repository.ProfessorRepository,
) *ClassService {
	return &ClassService{
		classRepo:      classRepo,
		disciplineRepo: disciplineRepo,
		professorRepo:  professorRepo,
	}
}

type ClassRequest struct {
	DisciplineID int64  `json:"discipline_id" validate:"gt=0"`
	ProfessorID  int64  `json:"professor_id" validate:"gt=0"`
	Year         int    `json:"year" validate:"gte=1900,lte=2100"`
	Period       string `json:"period" validate:"required,min=2,max=10"`
}

func (s *ClassService) List(ctx context.Context, p *model.Principal) ([]model.Class, error) {
	if err := authz.Authorize(p, authz.KindClass, authz.OpList, nil); err != nil {
		return nil, err
	}
	return s.classRepo.List(ctx)
}

func (s *ClassService) ListByDiscipline(ctx context.Context, p *model.Principal, disciplineID int64) ([]model.Class, error) {
	if err := authz.Authorize(p, authz.KindClass, authz.OpList, nil); err != nil {
		return nil, err
	}
	return s.classRepo.ListByDiscipline(ctx, disciplineID)
}

func (s *ClassService) ListByProfessor(ctx context.Context, p *model.Principal, professorID int64) ([]model.Class, error) {
	if err := authz.Authorize(p, authz.KindClass, authz.OpList, nil); err != nil {
		return nil, err
	}
	return s.classRepo.ListByProfessor(ctx, professorID)
}

func (s *ClassService) Get(ctx context.Context, p *model.Principal, id int64) (*model.Class, error) {
	if err := authz.Authorize(p, authz.KindClass, authz.OpRead, nil); err != nil {
		return nil, err
	}
	return s.classRepo.FindByID(ctx, id)
}

func (s *ClassService) Create(ctx context.Context, p *model.Principal, req ClassRequest) (*model.Class, error) {
	if err := authz.Authorize(p, authz.KindClass, authz.OpCreate, nil); err != nil {
		return nil, err
	}
	c, err := s.fromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.classRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ClassService) Update(ctx context.Context, p *model.Principal, id int64, req ClassRequest) (*model.Class, error) {
	if err := authz.Authorize(p, authz.KindClass, authz.OpUpdate, nil); err != nil {
		return nil, err
	}
	c, err := s.fromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	c.ID = id
	if err := s.classRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ClassService) Delete(ctx context.Context, p *model.Principal, id int64) error {
	if err := authz.Authorize(p, authz.KindClass, authz.OpDelete, nil); err != nil {
		return err
	}
	return s.classRepo.Delete(ctx, id)
}

func (s *ClassService) fromRequest(ctx context.Context, req ClassRequest) (*model.Class, error) {
	req.Period = strings.TrimSpace(req.Period)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if _, err := s.disciplineRepo.FindByID(ctx, req.DisciplineID); err != nil {
		return nil, referenceError("discipline", req.DisciplineID, err)
	}
	if _, err := s.professorRepo.FindByID(ctx, req.ProfessorID); err != nil {
		return nil, referenceError("professor", req.ProfessorID, err)
	}
	return &model.Class{
		DisciplineID: req.DisciplineID,
		ProfessorID:  req.ProfessorID,
		Year:         req.Year,
		Period:       req.Period,
	}, nil
}

// referenceError names the missing record a request pointed at.
func referenceError(kind string, id int64, err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("%s %d: %w", kind, id, common.ErrNotFound)
	}
	return err
}
