package service

import (
	"academic_records/internal/app/authz"
	"academic_records/internal/domain/model"
	"academic_records/internal/domain/repository"
	"context"
	"math"
	"strings"
)

type GradeService struct {
	gradeRepo   repository.GradeRepository
	studentRepo repository.StudentRepository
	classRepo   repository.ClassRepository
}

func NewGradeService(
	gradeRepo repository.GradeRepository,
	studentRepo repository.StudentRepository,
	classRepo repository.ClassRepository,
) *GradeService {
	return &GradeService{
		gradeRepo:   gradeRepo,
		studentRepo: studentRepo,
		classRepo:   classRepo,
	}
}

type GradeRequest struct {
	StudentID int64    `json:"student_id" validate:"gt=0"`
	ClassID   int64    `json:"class_id" validate:"gt=0"`
	Value     *float64 `json:"value" validate:"required,gte=0,lte=10"`
	Note      string   `json:"note" validate:"max=255"`
}

func (s *GradeService) List(ctx context.Context, p *model.Principal) ([]model.Grade, error) {
	if err := authz.Authorize(p, authz.KindGrade, authz.OpList, nil); err != nil {
		return nil, err
	}
	return s.gradeRepo.List(ctx)
}

func (s *GradeService) Get(ctx context.Context, p *model.Principal, id int64) (*model.Grade, error) {
	if err := requirePrincipal(p, authz.KindGrade, authz.OpRead); err != nil {
		return nil, err
	}
	g, err := s.gradeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(p, authz.KindGrade, authz.OpRead, authz.Owner(g.StudentID)); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GradeService) ListByStudent(ctx context.Context, p *model.Principal, studentID int64) ([]model.Grade, error) {
	if err := authz.Authorize(p, authz.KindGrade, authz.OpRead, authz.Owner(studentID)); err != nil {
		return nil, err
	}
	return s.gradeRepo.ListByStudent(ctx, studentID)
}

func (s *GradeService) ListByClass(ctx context.Context, p *model.Principal, classID int64) ([]model.Grade, error) {
	if err := authz.Authorize(p, authz.KindGrade, authz.OpRead, nil); err != nil {
		return nil, err
	}
	return s.gradeRepo.ListByClass(ctx, classID)
}

func (s *GradeService) Create(ctx context.Context, p *model.Principal, req GradeRequest) (*model.Grade, error) {
	if err := authz.Authorize(p, authz.KindGrade, authz.OpCreate, nil); err != nil {
		return nil, err
	}
	g, err := s.fromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.gradeRepo.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GradeService) Update(ctx context.Context, p *model.Principal, id int64, req GradeRequest) (*model.Grade, error) {
	if err := authz.Authorize(p, authz.KindGrade, authz.OpUpdate, nil); err != nil {
		return nil, err
	}
	g, err := s.fromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	g.ID = id
	if err := s.gradeRepo.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GradeService) Delete(ctx context.Context, p *model.Principal, id int64) error {
	if err := authz.Authorize(p, authz.KindGrade, authz.OpDelete, nil); err != nil {
		return err
	}
	return s.gradeRepo.Delete(ctx, id)
}

func (s *GradeService) fromRequest(ctx context.Context, req GradeRequest) (*model.Grade, error) {
	req.Note = strings.TrimSpace(req.Note)
	// The bounds apply to the value as stored.
	if req.Value != nil {
		rounded := roundGrade(*req.Value)
		req.Value = &rounded
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if _, err := s.studentRepo.FindByID(ctx, req.StudentID); err != nil {
		return nil, referenceError("student", req.StudentID, err)
	}
	if _, err := s.classRepo.FindByID(ctx, req.ClassID); err != nil {
		return nil, referenceError("class", req.ClassID, err)
	}
	return &model.Grade{
		StudentID: req.StudentID,
		ClassID:   req.ClassID,
		Value:     *req.Value,
		Note:      req.Note,
	}, nil
}

// roundGrade keeps two decimal places, matching the NUMERIC(4,2) column.
func roundGrade(v float64) float64 {
	return math.Round(v*100) / 100
}
