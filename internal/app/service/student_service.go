package service

import (
	"academic_records/internal/app/authz"
	"academic_records/internal/common"
	"academic_records/internal/domain/model"
	"academic_records/internal/domain/repository"
	"context"
	"strings"
)

type StudentService struct {
	studentRepo repository.StudentRepository
}

func NewStudentService(studentRepo repository.StudentRepository) *StudentService {
	return &StudentService{studentRepo: studentRepo}
}

type StudentRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
	CPF  string `json:"cpf" validate:"required,len=11,numeric"`
}

func (s *StudentService) List(ctx context.Context, p *model.Principal) ([]model.Student, error) {
	if err := authz.Authorize(p, authz.KindStudent, authz.OpList, nil); err != nil {
		return nil, err
	}
	return s.studentRepo.List(ctx)
}

func (s *StudentService) Get(ctx context.Context, p *model.Principal, id int64) (*model.Student, error) {
	if err := authz.Authorize(p, authz.KindStudent, authz.OpRead, nil); err != nil {
		return nil, err
	}
	return s.studentRepo.FindByID(ctx, id)
}

func (s *StudentService) Create(ctx context.Context, p *model.Principal, req StudentRequest) (*model.Student, error) {
	if err := authz.Authorize(p, authz.KindStudent, authz.OpCreate, nil); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if taken, err := s.studentRepo.ExistsByCPF(ctx, req.CPF); err != nil {
		return nil, err
	} else if taken {
		return nil, common.Conflictf("a student with cpf %s already exists", req.CPF)
	}
	if taken, err := s.studentRepo.ExistsByName(ctx, req.Name); err != nil {
		return nil, err
	} else if taken {
		return nil, common.Conflictf("a student named %q already exists", req.Name)
	}

	student := &model.Student{Name: req.Name, CPF: req.CPF}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *StudentService) Update(ctx context.Context, p *model.Principal, id int64, req StudentRequest) (*model.Student, error) {
	if err := authz.Authorize(p, authz.KindStudent, authz.OpUpdate, nil); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	student := &model.Student{ID: id, Name: req.Name, CPF: req.CPF}
	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *StudentService) Delete(ctx context.Context, p *model.Principal, id int64) error {
	if err := authz.Authorize(p, authz.KindStudent, authz.OpDelete, nil); err != nil {
		return err
	}
	return s.studentRepo.Delete(ctx, id)
}
