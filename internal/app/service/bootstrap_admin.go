package service

import (
	"academic_records/internal/common/security"
	"academic_records/internal/domain/model"
	"academic_records/internal/domain/repository"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
)

type BootstrapAdminOptions struct {
	Username     string
	Email        string
	PasswordPath string
}

// BootstrapAdmin creates an initial administrator when none exists and writes its
// generated password to opts.PasswordPath. It does nothing if an admin already exists.
func BootstrapAdmin(
	ctx context.Context,
	userRepo repository.UserRepository,
	hasher *security.PasswordHasher,
	log *zap.Logger,
	opts BootstrapAdminOptions,
) (bool, error) {
	has, err := userRepo.HasAdmin(ctx)
	if err != nil {
		return false, fmt.Errorf("BootstrapAdmin: %w", err)
	}
	if has {
		return false, nil
	}
	if opts.PasswordPath == "" {
		return false, errors.New("BootstrapAdmin: password path is required")
	}

	password, err := generatePassword(32)
	if err != nil {
		return false, fmt.Errorf("BootstrapAdmin: %w", err)
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("BootstrapAdmin: %w", err)
	}

	admin := &model.User{
		Username:     opts.Username,
		Email:        opts.Email,
		PasswordHash: hash,
		Active:       true,
		Roles:        []model.Role{model.RoleAdmin},
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("BootstrapAdmin: %w", err)
	}

	if err := os.WriteFile(opts.PasswordPath, []byte(password+"\n"), 0o600); err != nil {
		return false, fmt.Errorf("BootstrapAdmin: write password: %w", err)
	}
	log.Info("initial admin created",
		zap.String("username", admin.Username),
		zap.String("password_path", opts.PasswordPath))
	return true, nil
}

func generatePassword(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("password length must be positive")
	}
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw)[:length], nil
}
