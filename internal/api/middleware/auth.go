package middleware

import (
	"academic_records/internal/common"
	"academic_records/internal/common/security"
	"academic_records/internal/domain/model"
	"academic_records/internal/domain/repository"
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
)

type contextKey string

const (
	principalCtxKey contextKey = "principal"
	tokenCtxKey     contextKey = "token"
)

// Resolver attaches the caller's identity to each request. It never rejects a
// request for lack of identity; that decision belongs to the authorization engine.
type Resolver struct {
	codec        *security.TokenCodec
	revocations  repository.RevocationRepository
	log          *zap.Logger
	findTokenFns []func(r *http.Request) string
}

// NewResolver searches for a token with findTokenFns in order, the way jwtauth.Verify
// does. Without any, only the Authorization: Bearer header is read.
func NewResolver(
	codec *security.TokenCodec,
	revocations repository.RevocationRepository,
	log *zap.Logger,
	findTokenFns ...func(r *http.Request) string,
) *Resolver {
	if len(findTokenFns) == 0 {
		findTokenFns = []func(r *http.Request) string{jwtauth.TokenFromHeader}
	}
	return &Resolver{codec: codec, revocations: revocations, log: log, findTokenFns: findTokenFns}
}

func (res *Resolver) findToken(r *http.Request) string {
	for _, fn := range res.findTokenFns {
		if raw := fn(r); raw != "" {
			return raw
		}
	}
	return ""
}

// Resolve turns a raw bearer token into a verified token. It returns nil with no
// error for an absent, invalid, expired or revoked token. An error means the
// revocation store could not be consulted.
func (res *Resolver) Resolve(ctx context.Context, raw string) (*model.Token, error) {
	if raw == "" {
		return nil, nil
	}

	token, err := res.codec.Verify(raw)
	if err != nil {
		res.log.Debug("ignoring invalid bearer token", zap.Error(err))
		return nil, nil
	}

	revoked, err := res.revocations.IsTokenRevoked(ctx, token.ID)
	if err != nil {
		return nil, fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		res.log.Debug("ignoring revoked bearer token", zap.String("jti", token.ID))
		return nil, nil
	}

	cutoff, found, err := res.revocations.UserTokensRevokedAt(ctx, token.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("check user revocation: %w", err)
	}
	if found && !token.IssuedAt.After(cutoff) {
		res.log.Debug("ignoring bearer token issued before user revocation",
			zap.Int64("user_id", token.SubjectID), zap.String("jti", token.ID))
		return nil, nil
	}
	return token, nil
}

func (res *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := res.Resolve(r.Context(), res.findToken(r))
		if err != nil {
			res.log.Error("identity resolution failed", zap.Error(err))
			common.RespondWithDomainError(w, err)
			return
		}
		if token == nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), token)))
	})
}

// WithToken stores a verified token and the principal it projects.
func WithToken(ctx context.Context, token *model.Token) context.Context {
	ctx = context.WithValue(ctx, tokenCtxKey, token)
	return context.WithValue(ctx, principalCtxKey, token.Principal())
}

// PrincipalFromContext returns the caller, or nil for an anonymous request.
func PrincipalFromContext(ctx context.Context) *model.Principal {
	p, _ := ctx.Value(principalCtxKey).(*model.Principal)
	return p
}

func TokenFromContext(ctx context.Context) *model.Token {
	t, _ := ctx.Value(tokenCtxKey).(*model.Token)
	return t
}
