package service

import (
	"academic_records/internal/app/authz"
	"academic_records/internal/common"
	"academic_records/internal/common/security"
	"academic_records/internal/domain/model"
	"academic_records/internal/domain/repository"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

type AuthService struct {
	userRepo    repository.UserRepository
	revocations repository.RevocationRepository
	hasher      *security.PasswordHasher
	codec       *security.TokenCodec
	log         *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	userRepo repository.UserRepository,
	revocations repository.RevocationRepository,
	hasher *security.PasswordHasher,
	codec *security.TokenCodec,
	log *zap.Logger,
) *AuthService {
	s := &AuthService{
		userRepo:    userRepo,
		revocations: revocations,
		hasher:      hasher,
		codec:       codec,
		log:         log,
	}
	s.comparisonHash()
	return s
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
}

// Login exchanges a username and password for a bearer token. Every authentication
// failure returns common.ErrInvalidCredentials after the same amount of hashing work,
// so callers cannot tell an unknown or inactive user from a wrong password.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := authz.Authorize(nil, authz.KindAuth, authz.OpLogin, nil); err != nil {
		return nil, err
	}

	var user *model.User
	if req.Username != "" {
		found, err := s.userRepo.FindByUsername(ctx, req.Username)
		switch {
		case err == nil:
			user = found
		case errors.Is(err, common.ErrNotFound):
		default:
			return nil, fmt.Errorf("AuthService.Login: %w", err)
		}
	}

	if user == nil || !user.Active || req.Password == "" {
		s.hasher.Verify(req.Password, s.comparisonHash())
		s.log.Info("login rejected", zap.String("username", req.Username))
		return nil, common.ErrInvalidCredentials
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.log.Info("login rejected", zap.String("username", req.Username))
		return nil, common.ErrInvalidCredentials
	}

	principal := model.NewPrincipal(user.ID, user.Username, user.Roles, user.Active)
	token, err := s.codec.Issue(principal)
	if err != nil {
		return nil, fmt.Errorf("AuthService.Login: %w", err)
	}

	s.log.Info("login succeeded", zap.Int64("user_id", user.ID), zap.String("jti", token.ID))
	return &LoginResponse{
		Token:     token.Raw,
		TokenType: "Bearer",
		ExpiresAt: token.ExpiresAt,
		UserID:    user.ID,
		Username:  user.Username,
		Roles:     model.RoleStrings(user.Roles),
	}, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, p *model.Principal, token *model.Token) error {
	if err := authz.Authorize(p, authz.KindAuth, authz.OpLogout, nil); err != nil {
		return err
	}
	if token == nil || token.SubjectID != p.ID() {
		return fmt.Errorf("token does not belong to the caller: %w", common.ErrBadRequest)
	}
	if err := s.revocations.RevokeToken(ctx, token.ID, token.ExpiresAt); err != nil {
		return fmt.Errorf("AuthService.Logout: %w", err)
	}
	s.log.Info("logout", zap.Int64("user_id", p.ID()), zap.String("jti", token.ID))
	return nil
}

// comparisonHash is a real hash at the configured cost, compared against when there
// is no stored hash to check.
func (s *AuthService) comparisonHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("not-a-real-password")
		if err != nil {
			s.log.Error("could not build comparison hash", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
