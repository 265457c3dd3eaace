package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	s, st := newTestServer(t, nil)
	handler := s.routes()

	token, userID := registerUser(t, handler, "priya", "priya@example.com")
	assert.NotEmpty(t, token)

	// Registration marks the session.
	current, err := st.GetCurrentUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, userID, current.ID.String())

	rec := doJSON(t, handler, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "priya@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		User struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"user"`
		Token string `json:"token"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, userID, resp.User.ID)
	assert.Equal(t, "user", resp.User.Role)
	assert.NotEmpty(t, resp.Token)
}

func TestRegisterValidation(t *testing.T) {
	s, _ := newTestServer(t, nil)
	handler := s.routes()

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing email", map[string]string{"username": "priya", "password": "password123"}},
		{"bad email", map[string]string{"username": "priya", "email": "nope", "password": "password123"}},
		{"short password", map[string]string{"username": "priya", "email": "p@example.com", "password": "123"}},
		{"short username", map[string]string{"username": "ab", "email": "p@example.com", "password": "password123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodPost, "/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s, _ := newTestServer(t, nil)
	handler := s.routes()

	registerUser(t, handler, "priya", "priya@example.com")

	rec := doJSON(t, handler, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "other",
		"email":    "Priya@Example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginInvalidCredentials(t *testing.T) {
	s, _ := newTestServer(t, nil)
	handler := s.routes()

	registerUser(t, handler, "priya", "priya@example.com")

	t.Run("wrong password", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/auth/login", "", map[string]string{
			"email":    "priya@example.com",
			"password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/auth/login", "", map[string]string{
			"email":    "nobody@example.com",
			"password": "password123",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLoginBlockedUser(t *testing.T) {
	s, _ := newTestServer(t, nil)
	handler := s.routes()

	_, userID := registerUser(t, handler, "priya", "priya@example.com")

	id, err := uuid.Parse(userID)
	require.NoError(t, err)
	_, err = s.users.SetBlocked(context.Background(), id, true)
	require.NoError(t, err)

	rec := doJSON(t, handler, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "priya@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "blocked")
}

func TestLogoutClearsSession(t *testing.T) {
	s, st := newTestServer(t, nil)
	handler := s.routes()

	registerUser(t, handler, "priya", "priya@example.com")

	current, err := st.GetCurrentUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, current)

	rec := doJSON(t, handler, http.MethodPost, "/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	current, err = st.GetCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, current)
}
