package security

import (
	"academic_records/internal/domain/model"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const MinSecretLength = 32

var (
	ErrSecretTooShort = fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)
	ErrInvalidToken   = errors.New("invalid token")
)

// signingMethod is fixed per deployment; tokens claiming anything else are rejected.
var signingMethod = jwt.SigningMethodHS256

// Claims is the wire shape of an access token.
type Claims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies signed, time-limited access tokens.
// Verification is a pure function of the token, the secret and the clock.
type TokenCodec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type CodecOption func(*TokenCodec)

// WithClock overrides the time source, used by tests to pin issuance and expiry.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

func NewTokenCodec(secret, issuer string, ttl time.Duration, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	c := &TokenCodec{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Issue mints a token for the principal with the codec's configured lifetime.
func (c *TokenCodec) Issue(p *model.Principal) (*model.Token, error) {
	return c.IssueWithTTL(p, c.ttl)
}

// IssueWithTTL mints a token that expires ttl after issuance.
func (c *TokenCodec) IssueWithTTL(p *model.Principal, ttl time.Duration) (*model.Token, error) {
	if p == nil {
		return nil, errors.New("issue token: nil principal")
	}
	roles := p.Roles()
	if len(roles) == 0 {
		return nil, errors.New("issue token: principal has no roles")
	}

	issuedAt := jwt.NewNumericDate(c.now())
	expiresAt := jwt.NewNumericDate(issuedAt.Add(ttl))
	claims := Claims{
		Username: p.Username(),
		Roles:    model.RoleStrings(roles),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(p.ID(), 10),
			Issuer:    c.issuer,
			IssuedAt:  issuedAt,
			NotBefore: issuedAt,
			ExpiresAt: expiresAt,
		},
	}

	raw, err := jwt.NewWithClaims(signingMethod, claims).SignedString(c.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &model.Token{
		ID:        claims.ID,
		SubjectID: p.ID(),
		Username:  claims.Username,
		Roles:     roles,
		IssuedAt:  issuedAt.Time,
		ExpiresAt: expiresAt.Time,
		Raw:       raw,
	}, nil
}

// Verify checks signature, algorithm, issuer and lifetime, and that every field a
// principal needs is present. A token is rejected from the instant now >= exp.
func (c *TokenCodec) Verify(raw string) (*model.Token, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(c.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, parserOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claimsToToken(claims, raw)
}

func claimsToToken(claims *Claims, raw string) (*model.Token, error) {
	if claims.Subject == "" || claims.Username == "" || len(claims.Roles) == 0 || claims.IssuedAt == nil {
		return nil, fmt.Errorf("%w: missing required claims", ErrInvalidToken)
	}
	subjectID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not an id", ErrInvalidToken)
	}
	roles, err := model.ParseRoles(claims.Roles)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return &model.Token{
		ID:        claims.ID,
		SubjectID: subjectID,
		Username:  claims.Username,
		Roles:     roles,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		Raw:       raw,
	}, nil
}
