package service

import (
	"academic_records/internal/app/authz"
	"academic_records/internal/common"
	"academic_records/internal/common/security"
	"academic_records/internal/domain/model"
	"academic_records/internal/domain/repository"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type UserService struct {
	userRepo    repository.UserRepository
	revocations repository.RevocationRepository
	hasher      *security.PasswordHasher
	log         *zap.Logger
	now         func() time.Time
}

func NewUserService(
	userRepo repository.UserRepository,
	revocations repository.RevocationRepository,
	hasher *security.PasswordHasher,
	log *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		revocations: revocations,
		hasher:      hasher,
		log:         log,
		now:         time.Now,
	}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6,password_bytes"`
	// Roles is honoured only when an administrator registers the account.
	Roles []string `json:"roles,omitempty"`
}

type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=100"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6,password_bytes"`
}

// Register creates an active credential with the default role. Anonymous callers are
// allowed; a username or email already in use is a conflict, whether caught here or
// by the store's unique constraints.
func (s *UserService) Register(ctx context.Context, p *model.Principal, req RegisterRequest) (*model.User, error) {
	if err := authz.Authorize(p, authz.KindUser, authz.OpCreate, nil); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	roles := []model.Role{model.DefaultRole}
	if len(req.Roles) > 0 {
		if p == nil || !p.IsAdmin() {
			return nil, fmt.Errorf("only administrators may assign roles: %w", common.ErrForbidden)
		}
		parsed, err := model.ParseRoles(req.Roles)
		if err != nil {
			return nil, common.Validationf("%v", err)
		}
		roles = parsed
	}

	if err := s.checkAvailable(ctx, req.Username, req.Email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("UserService.Register: %w", err)
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Active:       true,
		Roles:        roles,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

func (s *UserService) checkAvailable(ctx context.Context, username, email string) error {
	if username != "" {
		taken, err := s.userRepo.ExistsByUsername(ctx, username)
		if err != nil {
			return err
		}
		if taken {
			return common.Conflictf("username %q is already taken", username)
		}
	}
	if email != "" {
		taken, err := s.userRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if taken {
			return common.Conflictf("email %q is already registered", email)
		}
	}
	return nil
}

func (s *UserService) Get(ctx context.Context, p *model.Principal, id int64) (*model.User, error) {
	if err := authz.Authorize(p, authz.KindUser, authz.OpRead, authz.Owner(id)); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, p *model.Principal) ([]model.User, error) {
	if err := authz.Authorize(p, authz.KindUser, authz.OpList, nil); err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx)
}

// Update changes a user's own profile. Changing the password revokes every token
// issued to the user so far.
func (s *UserService) Update(ctx context.Context, p *model.Principal, id int64, req UpdateUserRequest) (*model.User, error) {
	if err := authz.Authorize(p, authz.KindUser, authz.OpUpdate, authz.Owner(id)); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var newUsername, newEmail string
	if req.Username != nil && *req.Username != user.Username {
		newUsername = *req.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		newEmail = *req.Email
	}
	if err := s.checkAvailable(ctx, newUsername, newEmail); err != nil {
		return nil, err
	}
	if newUsername != "" {
		user.Username = newUsername
	}
	if newEmail != "" {
		user.Email = newEmail
	}

	passwordChanged := false
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("UserService.Update: %w", err)
		}
		user.PasswordHash = hash
		passwordChanged = true
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if passwordChanged {
		if err := s.revokeAll(ctx, user.ID, "password changed"); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, p *model.Principal, id int64) error {
	if err := authz.Authorize(p, authz.KindUser, authz.OpDelete, authz.Owner(id)); err != nil {
		return err
	}
	if err := s.userRepo.DeleteByID(ctx, id); err != nil {
		return err
	}
	return s.revokeAll(ctx, id, "user deleted")
}

// SetRoles replaces a user's role set. Tokens issued before the change stop working.
func (s *UserService) SetRoles(ctx context.Context, p *model.Principal, id int64, names []string) (*model.User, error) {
	if err := authz.Authorize(p, authz.KindUser, authz.OpManage, authz.Owner(id)); err != nil {
		return nil, err
	}
	roles, err := model.ParseRoles(names)
	if err != nil {
		return nil, common.Validationf("%v", err)
	}
	if len(roles) == 0 {
		return nil, common.Validationf("at least one role is required")
	}

	if err := s.userRepo.SetRoles(ctx, id, roles); err != nil {
		return nil, err
	}
	if err := s.revokeAll(ctx, id, "roles changed"); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(ctx, id)
}

// SetActive enables or disables a credential. Deactivation revokes every token the
// user holds; an inactive user cannot log in.
func (s *UserService) SetActive(ctx context.Context, p *model.Principal, id int64, active bool) (*model.User, error) {
	if err := authz.Authorize(p, authz.KindUser, authz.OpManage, authz.Owner(id)); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Active == active {
		return user, nil
	}

	user.Active = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if !active {
		if err := s.revokeAll(ctx, id, "user deactivated"); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *UserService) revokeAll(ctx context.Context, userID int64, reason string) error {
	if err := s.revocations.RevokeUserTokens(ctx, userID, s.now()); err != nil {
		return fmt.Errorf("revoke tokens of user %d: %w", userID, err)
	}
	s.log.Info("user tokens revoked", zap.Int64("user_id", userID), zap.String("reason", reason))
	return nil
}
