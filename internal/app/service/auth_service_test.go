package service

import (
	"academic_records/internal/common"
	"academic_records/internal/common/security"
	"academic_records/internal/domain/model"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testJWTSecret = "test-secret-key-that-is-32-bytes!"

type authFixture struct {
	users       *fakeUserRepo
	revocations *fakeRevocations
	codec       *security.TokenCodec
	svc         *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	codec, err := security.NewTokenCodec(testJWTSecret, "academic-records", time.Hour)
	require.NoError(t, err)

	f := &authFixture{
		users:       newFakeUserRepo(),
		revocations: newFakeRevocations(),
		codec:       codec,
	}
	f.svc = NewAuthService(f.users, f.revocations, testHasher(), codec, zap.NewNop())
	return f
}

func (f *authFixture) addUser(t *testing.T, username, password string, active bool, roles ...model.Role) *model.User {
	t.Helper()
	hash, err := testHasher().Hash(password)
	require.NoError(t, err)
	if len(roles) == 0 {
		roles = []model.Role{model.RoleUser}
	}
	return f.users.add(model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Active:       active,
		Roles:        roles,
	})
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	f := newAuthFixture(t)
	alice := f.addUser(t, "alice", "secret123", true, model.RoleUser, model.RoleAdmin)

	resp, err := f.svc.Login(context.Background(), LoginRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, alice.ID, resp.UserID)
	assert.ElementsMatch(t, []string{"USER", "ADMIN"}, resp.Roles)

	token, err := f.codec.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, token.SubjectID)
	assert.Equal(t, "alice", token.Username)
	assert.True(t, token.Principal().IsAdmin())
	assert.WithinDuration(t, resp.ExpiresAt, token.ExpiresAt, time.Second)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "alice", "secret123", true)
	f.addUser(t, "carol", "secret123", false)

	cases := []struct {
		name string
		req  LoginRequest
	}{
		{"wrong password", LoginRequest{Username: "alice", Password: "wrong"}},
		{"unknown user", LoginRequest{Username: "nobody", Password: "secret123"}},
		{"inactive user", LoginRequest{Username: "carol", Password: "secret123"}},
		{"username differs in case", LoginRequest{Username: "Alice", Password: "secret123"}},
		{"empty payload", LoginRequest{}},
	}

	var messages []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := f.svc.Login(context.Background(), tc.req)
			assert.Nil(t, resp)
			require.ErrorIs(t, err, common.ErrInvalidCredentials)
			require.ErrorIs(t, err, common.ErrUnauthorized)
			messages = append(messages, err.Error())
		})
	}
	for _, m := range messages {
		assert.Equal(t, messages[0], m)
	}
}

func TestLoginStoreFailureIsNotAnAuthError(t *testing.T) {
	f := newAuthFixture(t)
	f.users.err = errStoreDown

	_, err := f.svc.Login(context.Background(), LoginRequest{Username: "alice", Password: "x"})
	require.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, common.ErrUnauthorized)
	assert.Equal(t, 500, common.HTTPStatusFromError(err))
}

func TestLogoutRevokesPresentedToken(t *testing.T) {
	f := newAuthFixture(t)
	alice := f.addUser(t, "alice", "secret123", true)
	resp, err := f.svc.Login(context.Background(), LoginRequest{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	token, err := f.codec.Verify(resp.Token)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), token.Principal(), token))

	revoked, err := f.revocations.IsTokenRevoked(context.Background(), token.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, alice.ID, token.SubjectID)
}

func TestLogoutRequiresMatchingPrincipal(t *testing.T) {
	f := newAuthFixture(t)
	token, err := f.codec.Issue(userPrincipal(7))
	require.NoError(t, err)

	err = f.svc.Logout(context.Background(), nil, token)
	require.ErrorIs(t, err, common.ErrUnauthenticated)

	err = f.svc.Logout(context.Background(), userPrincipal(8), token)
	require.ErrorIs(t, err, common.ErrBadRequest)
}
