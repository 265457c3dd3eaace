package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/fraudguard/internal/store"
	"github.com/jonathan/fraudguard/internal/types"
)

func newUserService(t *testing.T) (*UserService, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	return NewUserService(st, testPasswordConfig()), st
}

func TestSeedAdminIdempotent(t *testing.T) {
	svc, st := newUserService(t)
	ctx := context.Background()

	first, err := svc.SeedAdmin(ctx, "admin", "admin@fraudguard.ai", "admin123")
	require.NoError(t, err)
	assert.Equal(t, types.RoleAdmin, first.Role)

	second, err := svc.SeedAdmin(ctx, "admin", "admin@fraudguard.ai", "admin123")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "seeding twice must not create a second admin")

	users, err := st.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestRegisterStoresHashNotPassword(t *testing.T) {
	svc, st := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "priya", "priya@example.com", "password123")
	require.NoError(t, err)

	stored, err := st.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.Equal(t, types.RoleUser, stored.Role)
}

func TestRegisterSetsCurrentUser(t *testing.T) {
	svc, st := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "priya", "priya@example.com", "password123")
	require.NoError(t, err)

	current, err := st.GetCurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, current, "registering signs the user in")
	assert.Equal(t, user.ID, current.ID)
	assert.Equal(t, user.Email, current.Email)
}

func TestListUsersReturnsAllAccounts(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "priya", "priya@example.com", "password123")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "arjun", "arjun@example.com", "password123")
	require.NoError(t, err)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestLoginSetsCurrentUser(t *testing.T) {
	svc, st := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "priya", "priya@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx))

	_, err = svc.Login(ctx, "priya@example.com", "password123")
	require.NoError(t, err)

	current, err := st.GetCurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, user.ID, current.ID)

	require.NoError(t, svc.Logout(ctx))
	current, err = st.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestLoginGenericErrorForUnknownAndWrongPassword(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "priya", "priya@example.com", "password123")
	require.NoError(t, err)

	_, unknownErr := svc.Login(ctx, "nobody@example.com", "password123")
	_, wrongErr := svc.Login(ctx, "priya@example.com", "wrong")

	var a, b *ErrInvalidCredentials
	require.ErrorAs(t, unknownErr, &a)
	require.ErrorAs(t, wrongErr, &b)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error(), "response must not reveal which part was wrong")
}

func TestBlockedLoginDoesNotSetSession(t *testing.T) {
	svc, st := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "priya", "priya@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx))

	_, err = svc.SetBlocked(ctx, user.ID, true)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "priya@example.com", "password123")
	var blocked *ErrAccountBlocked
	require.ErrorAs(t, err, &blocked)

	current, err := st.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}
