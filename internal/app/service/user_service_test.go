package service

import (
	"academic_records/internal/common"
	"academic_records/internal/domain/model"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUserFixture() (*UserService, *fakeUserRepo, *fakeRevocations) {
	users := newFakeUserRepo()
	revocations := newFakeRevocations()
	return NewUserService(users, revocations, testHasher(), zap.NewNop()), users, revocations
}

func TestRegisterThenDuplicateConflicts(t *testing.T) {
	svc, _, _ := newUserFixture()
	ctx := context.Background()

	alice, err := svc.Register(ctx, nil, RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotZero(t, alice.ID)
	assert.True(t, alice.Active)
	assert.Equal(t, []model.Role{model.DefaultRole}, alice.Roles)
	assert.NotEqual(t, "secret123", alice.PasswordHash)

	_, err = svc.Register(ctx, nil, RegisterRequest{Username: "alice", Email: "other@example.com", Password: "secret123"})
	require.ErrorIs(t, err, common.ErrConflict)

	_, err = svc.Register(ctx, nil, RegisterRequest{Username: "alice2", Email: "alice@example.com", Password: "secret123"})
	require.ErrorIs(t, err, common.ErrConflict)
}

func TestRegisterLostRaceStillConflicts(t *testing.T) {
	svc, users, _ := newUserFixture()
	users.add(model.User{Username: "alice", Email: "alice@example.com", Active: true, Roles: []model.Role{model.RoleUser}})
	users.hideExisting = true

	_, err := svc.Register(context.Background(), nil, RegisterRequest{Username: "alice", Email: "a2@example.com", Password: "secret123"})
	require.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, 409, common.HTTPStatusFromError(err))
}

func TestConcurrentRegistrationCreatesOneUser(t *testing.T) {
	svc, users, _ := newUserFixture()
	users.hideExisting = true

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(context.Background(), nil,
				RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret123"})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, common.ErrConflict)
	}
	assert.Equal(t, 1, created)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newUserFixture()

	_, err := svc.Register(context.Background(), nil, RegisterRequest{Username: "al", Email: "not-an-email", Password: "123"})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, err.Error(), "username")
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "password")
}

func TestPasswordLimitIsCountedInBytes(t *testing.T) {
	svc, users, revocations := newUserFixture()
	users.add(model.User{ID: 7, Username: "bob", Email: "bob@example.com", Active: true, Roles: []model.Role{model.RoleUser}})
	ctx := context.Background()

	// 40 runes, 80 bytes.
	long := strings.Repeat("é", 40)
	_, err := svc.Register(ctx, nil, RegisterRequest{Username: "alice", Email: "alice@example.com", Password: long})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, 400, common.HTTPStatusFromError(err))
	assert.Contains(t, err.Error(), "bytes")

	_, err = svc.Update(ctx, userPrincipal(7), 7, UpdateUserRequest{Password: &long})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, 400, common.HTTPStatusFromError(err))
	_, revoked, _ := revocations.UserTokensRevokedAt(ctx, 7)
	assert.False(t, revoked)

	// 36 runes, 72 bytes: exactly at the limit.
	fits := strings.Repeat("é", 36)
	user, err := svc.Register(ctx, nil, RegisterRequest{Username: "carol", Email: "carol@example.com", Password: fits})
	require.NoError(t, err)
	assert.True(t, testHasher().Verify(fits, user.PasswordHash))
}

func TestOnlyAdminsAssignRolesAtRegistration(t *testing.T) {
	svc, _, _ := newUserFixture()
	req := RegisterRequest{Username: "mallory", Email: "m@example.com", Password: "secret123", Roles: []string{"ADMIN"}}

	_, err := svc.Register(context.Background(), nil, req)
	require.ErrorIs(t, err, common.ErrForbidden)

	_, err = svc.Register(context.Background(), userPrincipal(3), req)
	require.ErrorIs(t, err, common.ErrForbidden)

	user, err := svc.Register(context.Background(), adminPrincipal(), req)
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
}

func TestGetUserSelfOrAdmin(t *testing.T) {
	svc, users, _ := newUserFixture()
	bob := users.add(model.User{ID: 7, Username: "bob", Email: "bob@example.com", Active: true, Roles: []model.Role{model.RoleUser}})

	got, err := svc.Get(context.Background(), userPrincipal(7), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)

	_, err = svc.Get(context.Background(), userPrincipal(8), bob.ID)
	require.ErrorIs(t, err, common.ErrForbidden)

	_, err = svc.Get(context.Background(), nil, bob.ID)
	require.ErrorIs(t, err, common.ErrUnauthenticated)

	_, err = svc.Get(context.Background(), adminPrincipal(), bob.ID)
	require.NoError(t, err)

	_, err = svc.List(context.Background(), userPrincipal(7))
	require.ErrorIs(t, err, common.ErrForbidden)
}

func TestUpdatePasswordRevokesTokens(t *testing.T) {
	svc, users, revocations := newUserFixture()
	users.add(model.User{ID: 7, Username: "bob", Email: "bob@example.com", Active: true, Roles: []model.Role{model.RoleUser}})
	users.add(model.User{ID: 8, Username: "eve", Email: "eve@example.com", Active: true, Roles: []model.Role{model.RoleUser}})

	taken := "eve"
	_, err := svc.Update(context.Background(), userPrincipal(7), 7, UpdateUserRequest{Username: &taken})
	require.ErrorIs(t, err, common.ErrConflict)

	password := "new-secret"
	updated, err := svc.Update(context.Background(), userPrincipal(7), 7, UpdateUserRequest{Password: &password})
	require.NoError(t, err)
	assert.True(t, testHasher().Verify("new-secret", updated.PasswordHash))

	_, revoked, _ := revocations.UserTokensRevokedAt(context.Background(), 7)
	assert.True(t, revoked)
}

func TestSetRolesAndActiveAreAdminOnlyAndRevoke(t *testing.T) {
	svc, users, revocations := newUserFixture()
	users.add(model.User{ID: 7, Username: "bob", Email: "bob@example.com", Active: true, Roles: []model.Role{model.RoleUser}})
	ctx := context.Background()

	_, err := svc.SetRoles(ctx, userPrincipal(7), 7, []string{"ADMIN"})
	require.ErrorIs(t, err, common.ErrForbidden)

	_, err = svc.SetRoles(ctx, adminPrincipal(), 7, []string{"SUPERUSER"})
	require.ErrorIs(t, err, common.ErrValidation)

	user, err := svc.SetRoles(ctx, adminPrincipal(), 7, []string{"ROLE_ADMIN", "user"})
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
	_, revoked, _ := revocations.UserTokensRevokedAt(ctx, 7)
	assert.True(t, revoked)

	delete(revocations.userCut, 7)
	user, err = svc.SetActive(ctx, adminPrincipal(), 7, false)
	require.NoError(t, err)
	assert.False(t, user.Active)
	_, revoked, _ = revocations.UserTokensRevokedAt(ctx, 7)
	assert.True(t, revoked)
}

func TestDeleteRevokeFailureSurfaces(t *testing.T) {
	svc, users, revocations := newUserFixture()
	users.add(model.User{ID: 7, Username: "bob", Email: "bob@example.com", Active: true, Roles: []model.Role{model.RoleUser}})
	revocations.err = errors.New("redis down")

	err := svc.Delete(context.Background(), userPrincipal(7), 7)
	require.Error(t, err)
	assert.Equal(t, 500, common.HTTPStatusFromError(err))

	err = svc.Delete(context.Background(), userPrincipal(7), 9)
	require.ErrorIs(t, err, common.ErrForbidden)
}
