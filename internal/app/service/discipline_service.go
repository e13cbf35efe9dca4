package service

import (
	"academic_records/internal/app/authz"
	"academic_records/internal/common"
	"academic_records/internal/domain/model"
	"academic_records/internal/domain/repository"
	"context"
	"errors"
	"strings"

	"github.com/gosimple/slug"
)

type DisciplineService struct {
	disciplineRepo repository.DisciplineRepository
}

func NewDisciplineService(disciplineRepo repository.DisciplineRepository) *DisciplineService {
	return &DisciplineService{disciplineRepo: disciplineRepo}
}

type DisciplineRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=100"`
	WorkloadHours int    `json:"workload_hours" validate:"gt=0"`
	Syllabus      string `json:"syllabus"`
}

func (s *DisciplineService) List(ctx context.Context, p *model.Principal) ([]model.Discipline, error) {
	if err := authz.Authorize(p, authz.KindDiscipline, authz.OpList, nil); err != nil {
		return nil, err
	}
	return s.disciplineRepo.List(ctx)
}

func (s *DisciplineService) Get(ctx context.Context, p *model.Principal, id int64) (*model.Discipline, error) {
	if err := authz.Authorize(p, authz.KindDiscipline, authz.OpRead, nil); err != nil {
		return nil, err
	}
	return s.disciplineRepo.FindByID(ctx, id)
}

func (s *DisciplineService) GetBySlug(ctx context.Context, p *model.Principal, disciplineSlug string) (*model.Discipline, error) {
	if err := authz.Authorize(p, authz.KindDiscipline, authz.OpRead, nil); err != nil {
		return nil, err
	}
	return s.disciplineRepo.FindBySlug(ctx, disciplineSlug)
}

// Create derives the slug from the name; two disciplines may not share a slug.
func (s *DisciplineService) Create(ctx context.Context, p *model.Principal, req DisciplineRequest) (*model.Discipline, error) {
	if err := authz.Authorize(p, authz.KindDiscipline, authz.OpCreate, nil); err != nil {
		return nil, err
	}
	d, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, d.Slug, 0); err != nil {
		return nil, err
	}
	if err := s.disciplineRepo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DisciplineService) Update(ctx context.Context, p *model.Principal, id int64, req DisciplineRequest) (*model.Discipline, error) {
	if err := authz.Authorize(p, authz.KindDiscipline, authz.OpUpdate, nil); err != nil {
		return nil, err
	}
	d, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	d.ID = id
	if err := s.ensureSlugFree(ctx, d.Slug, id); err != nil {
		return nil, err
	}
	if err := s.disciplineRepo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DisciplineService) Delete(ctx context.Context, p *model.Principal, id int64) error {
	if err := authz.Authorize(p, authz.KindDiscipline, authz.OpDelete, nil); err != nil {
		return err
	}
	return s.disciplineRepo.Delete(ctx, id)
}

func (s *DisciplineService) fromRequest(req DisciplineRequest) (*model.Discipline, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	d := &model.Discipline{
		Name:          req.Name,
		Slug:          slug.Make(req.Name),
		WorkloadHours: req.WorkloadHours,
		Syllabus:      strings.TrimSpace(req.Syllabus),
	}
	if d.Slug == "" {
		return nil, common.Validationf("name must contain letters or digits")
	}
	return d, nil
}

// ensureSlugFree fails when another discipline than selfID already uses slug.
func (s *DisciplineService) ensureSlugFree(ctx context.Context, disciplineSlug string, selfID int64) error {
	existing, err := s.disciplineRepo.FindBySlug(ctx, disciplineSlug)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != selfID {
		return common.Conflictf("a discipline with slug %q already exists", disciplineSlug)
	}
	return nil
}
