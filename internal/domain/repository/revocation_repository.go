package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationRepository holds revoked token ids and per-user cut-off times. A token
// is revoked when its id is listed, or when it was issued at or before the cut-off
// of its subject.
type RevocationRepository interface {
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
	RevokeUserTokens(ctx context.Context, userID int64, at time.Time) error
	UserTokensRevokedAt(ctx context.Context, userID int64) (time.Time, bool, error)
}

type redisRevocationRepository struct {
	rdb      *redis.Client
	tokenTTL time.Duration
	now      func() time.Time
}

// NewRedisRevocationRepository keeps user cut-offs for tokenTTL, after which every
// token issued before the cut-off has expired on its own.
func NewRedisRevocationRepository(rdb *redis.Client, tokenTTL time.Duration) RevocationRepository {
	return &redisRevocationRepository{rdb: rdb, tokenTTL: tokenTTL, now: time.Now}
}

const (
	revokedTokenPrefix = "revoked:token:"
	revokedUserPrefix  = "revoked:user:"
)

func (r *redisRevocationRepository) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.rdb.Set(ctx, revokedTokenPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("redisRevocationRepository.RevokeToken: %w", err)
	}
	return nil
}

func (r *redisRevocationRepository) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revokedTokenPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("redisRevocationRepository.IsTokenRevoked: %w", err)
	}
	return n > 0, nil
}

func (r *redisRevocationRepository) RevokeUserTokens(ctx context.Context, userID int64, at time.Time) error {
	key := revokedUserPrefix + strconv.FormatInt(userID, 10)
	if err := r.rdb.Set(ctx, key, at.Unix(), r.tokenTTL).Err(); err != nil {
		return fmt.Errorf("redisRevocationRepository.RevokeUserTokens: %w", err)
	}
	return nil
}

func (r *redisRevocationRepository) UserTokensRevokedAt(ctx context.Context, userID int64) (time.Time, bool, error) {
	key := revokedUserPrefix + strconv.FormatInt(userID, 10)
	secs, err := r.rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redisRevocationRepository.UserTokensRevokedAt: %w", err)
	}
	return time.Unix(secs, 0), true, nil
}

// NopRevocationRepository is used when revocation is disabled. Nothing is ever revoked.
type NopRevocationRepository struct{}

func (NopRevocationRepository) RevokeToken(context.Context, string, time.Time) error { return nil }
func (NopRevocationRepository) IsTokenRevoked(context.Context, string) (bool, error) {
	return false, nil
}
func (NopRevocationRepository) RevokeUserTokens(context.Context, int64, time.Time) error { return nil }
func (NopRevocationRepository) UserTokensRevokedAt(context.Context, int64) (time.Time, bool, error) {
	return time.Time{}, false, nil
}
