package service

import (
	"academic_records/internal/app/authz"
	"academic_records/internal/common"
	"academic_records/internal/domain/model"
	"academic_records/internal/domain/repository"
	"context"
	"time"
)

const dateLayout = "2006-01-02"

type EnrollmentService struct {
	enrollmentRepo repository.EnrollmentRepository
	studentRepo    repository.StudentRepository
	classRepo      repository.ClassRepository
	now            func() time.Time
}

func NewEnrollmentService(
	enrollmentRepo repository.EnrollmentRepository,
	studentRepo repository.StudentRepository,
	classRepo repository.ClassRepository,
) *EnrollmentService {
	return &EnrollmentService{
		enrollmentRepo: enrollmentRepo,
		studentRepo:    studentRepo,
		classRepo:      classRepo,
		now:            time.Now,
	}
}

type EnrollmentRequest struct {
	StudentID  int64  `json:"student_id" validate:"gt=0"`
	ClassID    int64  `json:"class_id" validate:"gt=0"`
	EnrolledOn string `json:"enrolled_on" validate:"omitempty,datetime=2006-01-02"`
	Active     *bool  `json:"active"`
}

func (s *EnrollmentService) List(ctx context.Context, p *model.Principal) ([]model.Enrollment, error) {
	if err := authz.Authorize(p, authz.KindEnrollment, authz.OpList, nil); err != nil {
		return nil, err
	}
	return s.enrollmentRepo.List(ctx)
}

// Get rejects anonymous callers before the lookup, then decides with the
// enrollment's student as owner.
func (s *EnrollmentService) Get(ctx context.Context, p *model.Principal, id int64) (*model.Enrollment, error) {
	if err := requirePrincipal(p, authz.KindEnrollment, authz.OpRead); err != nil {
		return nil, err
	}
	e, err := s.enrollmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(p, authz.KindEnrollment, authz.OpRead, authz.Owner(e.StudentID)); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EnrollmentService) ListByStudent(ctx context.Context, p *model.Principal, studentID int64) ([]model.Enrollment, error) {
	if err := authz.Authorize(p, authz.KindEnrollment, authz.OpRead, authz.Owner(studentID)); err != nil {
		return nil, err
	}
	return s.enrollmentRepo.ListByStudent(ctx, studentID)
}

// ListByClass spans many owners, so only administrators may use it.
func (s *EnrollmentService) ListByClass(ctx context.Context, p *model.Principal, classID int64) ([]model.Enrollment, error) {
	if err := authz.Authorize(p, authz.KindEnrollment, authz.OpRead, nil); err != nil {
		return nil, err
	}
	return s.enrollmentRepo.ListByClass(ctx, classID)
}

func (s *EnrollmentService) Create(ctx context.Context, p *model.Principal, req EnrollmentRequest) (*model.Enrollment, error) {
	if err := authz.Authorize(p, authz.KindEnrollment, authz.OpCreate, nil); err != nil {
		return nil, err
	}
	e, err := s.fromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNoActiveDuplicate(ctx, e); err != nil {
		return nil, err
	}
	if err := s.enrollmentRepo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EnrollmentService) Update(ctx context.Context, p *model.Principal, id int64, req EnrollmentRequest) (*model.Enrollment, error) {
	if err := authz.Authorize(p, authz.KindEnrollment, authz.OpUpdate, nil); err != nil {
		return nil, err
	}
	e, err := s.fromRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	e.ID = id
	if err := s.ensureNoActiveDuplicate(ctx, e); err != nil {
		return nil, err
	}
	if err := s.enrollmentRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EnrollmentService) Delete(ctx context.Context, p *model.Principal, id int64) error {
	if err := authz.Authorize(p, authz.KindEnrollment, authz.OpDelete, nil); err != nil {
		return err
	}
	return s.enrollmentRepo.Delete(ctx, id)
}

func (s *EnrollmentService) fromRequest(ctx context.Context, req EnrollmentRequest) (*model.Enrollment, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if _, err := s.studentRepo.FindByID(ctx, req.StudentID); err != nil {
		return nil, referenceError("student", req.StudentID, err)
	}
	if _, err := s.classRepo.FindByID(ctx, req.ClassID); err != nil {
		return nil, referenceError("class", req.ClassID, err)
	}

	enrolledOn := s.now().UTC().Truncate(24 * time.Hour)
	if req.EnrolledOn != "" {
		parsed, err := time.Parse(dateLayout, req.EnrolledOn)
		if err != nil {
			return nil, common.Validationf("enrolled_on must be a date in %s format", dateLayout)
		}
		enrolledOn = parsed
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return &model.Enrollment{
		StudentID:  req.StudentID,
		ClassID:    req.ClassID,
		EnrolledOn: enrolledOn,
		Active:     active,
	}, nil
}

// ensureNoActiveDuplicate allows at most one active enrollment per student and class.
func (s *EnrollmentService) ensureNoActiveDuplicate(ctx context.Context, e *model.Enrollment) error {
	if !e.Active {
		return nil
	}
	existing, err := s.enrollmentRepo.ListByStudentAndClass(ctx, e.StudentID, e.ClassID)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.Active && other.ID != e.ID {
			return common.Conflictf("student %d already has an active enrollment in class %d", e.StudentID, e.ClassID)
		}
	}
	return nil
}

// requirePrincipal rejects anonymous callers of an owner-scoped operation before any
// record is loaded, so that existence is not revealed to them.
func requirePrincipal(p *model.Principal, kind authz.ResourceKind, op authz.Operation) error {
	if p != nil {
		return nil
	}
	return authz.Authorize(nil, kind, op, nil)
}
