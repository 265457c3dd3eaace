package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/fraudguard/internal/config"
	"github.com/jonathan/fraudguard/internal/llm"
	"github.com/jonathan/fraudguard/internal/store"
)

const testJobPayload = `{
	"result": "Fake Job",
	"confidence_score": 90,
	"risk_rate": 82,
	"risk_level": "High",
	"explanations": ["Upfront fee requested"],
	"safety_tips": ["Never pay to apply"]
}`

const testResumePayload = `{
	"match_percentage": 68,
	"ats_score": 75,
	"fraud_risk_score": 15,
	"strength_score": 6,
	"rating": "Medium",
	"summary": "Decent fit",
	"matched_skills": ["Go"],
	"missing_skills": ["Docker"],
	"suggestions": ["Quantify results"],
	"roadmap": ["Learn Docker basics"]
}`

const testInterviewPayload = `{
	"technical_questions": ["What is a goroutine?"],
	"hr_questions": ["Why this role?"],
	"roadmap": ["Day 1: fundamentals"],
	"resources": ["Go by Example"]
}`

// scriptedClient returns canned responses or errors in order.
type scriptedClient struct {
	responses []string
	errs      []error
	calls     int
}

func (c *scriptedClient) Generate(_ context.Context, _ llm.Request) (string, error) {
	i := c.calls
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i < len(c.responses) {
		return c.responses[i], nil
	}
	return "", errors.New("scripted client: no response configured")
}

func (c *scriptedClient) Close() error { return nil }

func testPasswordConfig() *config.PasswordConfig {
	return &config.PasswordConfig{BcryptCost: 10}
}

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{Secret: "test-secret", ExpirationHours: 1}
}

// newTestServer builds a server over the memory store and a scripted model
// client. No rate limiter, so tests never trip buckets.
func newTestServer(t *testing.T, client llm.Client) (*Server, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	if client == nil {
		client = &scriptedClient{}
	}
	s := newServer(st, client, testPasswordConfig(), testJWTConfig(), "*")
	return s, st
}

// doJSON performs a request with an optional JSON body and bearer token.
func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a recorded JSON response into dst.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

// registerUser registers an account through the API and returns its token
// and user ID.
func registerUser(t *testing.T, handler http.Handler, username, email string) (token string, userID string) {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	decodeBody(t, rec, &resp)
	return resp.Token, resp.User.ID
}

// adminToken seeds the admin account and logs it in.
func adminToken(t *testing.T, s *Server, handler http.Handler) string {
	t.Helper()

	_, err := s.users.SeedAdmin(context.Background(), "admin", "admin@fraudguard.ai", "admin123")
	require.NoError(t, err)

	rec := doJSON(t, handler, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "admin@fraudguard.ai",
		"password": "admin123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &resp)
	return resp.Token
}
