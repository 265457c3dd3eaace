package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/fraudguard/internal/llm"
	"github.com/jonathan/fraudguard/internal/risk"
	"github.com/jonathan/fraudguard/internal/store"
)

const validJobPayload = `{
	"result": "Fake Job",
	"confidence_score": 92,
	"risk_rate": 85,
	"risk_level": "High",
	"explanations": ["Asks for a training fee upfront"],
	"safety_tips": ["Never pay to get hired"]
}`

const validResumePayload = `{
	"match_percentage": 74,
	"ats_score": 81,
	"fraud_risk_score": 20,
	"strength_score": 7,
	"rating": "High",
	"summary": "Solid match",
	"matched_skills": ["Go", "SQL"],
	"missing_skills": ["Kubernetes"],
	"suggestions": ["Add metrics to bullet points"],
	"roadmap": ["Week 1: container basics"]
}`

const validInterviewPayload = `{
	"technical_questions": ["Explain goroutine scheduling"],
	"hr_questions": ["Tell me about a conflict you resolved"],
	"roadmap": ["Day 1: review fundamentals"],
	"resources": ["Go tour"]
}`

// mockClient scripts model-boundary responses and records every invocation.
type mockClient struct {
	responses []string
	errs      []error
	calls     int
	requests  []llm.Request
}

func (m *mockClient) Generate(_ context.Context, req llm.Request) (string, error) {
	i := m.calls
	m.calls++
	m.requests = append(m.requests, req)
	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return "", errors.New("mock: no scripted response")
}

func (m *mockClient) Close() error { return nil }

func newTestService(client *mockClient) (*Service, *store.Memory) {
	st := store.NewMemory()
	svc := NewService(client, st).
		WithClock(func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }).
		WithSleeper(func(context.Context, time.Duration) error { return nil })
	return svc, st
}

func TestAnalyzeJobValidationFailsBeforeBoundaryCall(t *testing.T) {
	client := &mockClient{}
	svc, _ := newTestService(client)

	_, err := svc.AnalyzeJob(context.Background(), uuid.Nil, JobInput{Salary: "$90k"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"title", "description"}, verr.Fields)
	assert.Zero(t, client.calls, "model boundary must not be invoked")
}

func TestAnalyzeJobSuccessPersistsForSignedInUser(t *testing.T) {
	client := &mockClient{responses: []string{validJobPayload}}
	svc, st := newTestService(client)
	userID := uuid.New()

	result, err := svc.AnalyzeJob(context.Background(), userID, JobInput{
		Title:       "Remote Data Entry",
		Company:     "QuickCash Ltd",
		Description: "Pay a small onboarding fee to start earning today!",
	})
	require.NoError(t, err)
	assert.Equal(t, 85.0, result.RiskRate)
	assert.Equal(t, risk.CategoryFake, result.Classification.Category)

	scans, err := st.ListJobScansByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, "Remote Data Entry", scans[0].JobTitle)
	assert.Equal(t, 85.0, scans[0].RiskRate)
}

func TestAnalyzeJobAnonymousIsNotPersisted(t *testing.T) {
	client := &mockClient{responses: []string{validJobPayload}}
	svc, st := newTestService(client)

	_, err := svc.AnalyzeJob(context.Background(), uuid.Nil, JobInput{
		Title:       "Remote Data Entry",
		Description: "desc",
	})
	require.NoError(t, err)

	scans, err := st.ListJobScans(context.Background())
	require.NoError(t, err)
	assert.Empty(t, scans)
}

func TestAnalyzeJobScreenshotSatisfiesDescription(t *testing.T) {
	client := &mockClient{responses: []string{validJobPayload}}
	svc, _ := newTestService(client)

	_, err := svc.AnalyzeJob(context.Background(), uuid.Nil, JobInput{
		Title:      "Internship",
		SourceType: "screenshot",
		Screenshot: []byte{0x89, 0x50, 0x4e, 0x47},
	})
	require.NoError(t, err)
	require.Len(t, client.requests, 1)
	require.Len(t, client.requests[0].Parts, 2)
	assert.Equal(t, "image/png", client.requests[0].Parts[1].MIMEType)
}

func TestGenerateRetriesOnRateLimitWithIncreasingDelay(t *testing.T) {
	client := &mockClient{errs: []error{
		errors.New("googleapi: Error 429: quota exceeded"),
		errors.New("googleapi: Error 429: quota exceeded"),
		errors.New("googleapi: Error 429: quota exceeded"),
	}}
	svc, _ := newTestService(client)

	var delays []time.Duration
	svc.WithSleeper(func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	})

	_, err := svc.AnalyzeJob(context.Background(), uuid.Nil, JobInput{Title: "t", Description: "d"})

	var rerr *RateLimitError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 3, rerr.Attempts)
	assert.Equal(t, 3, client.calls)

	require.Len(t, delays, 2)
	assert.Less(t, delays[0], delays[1], "backoff must strictly increase")
}

func TestGenerateDoesNotRetryOtherErrors(t *testing.T) {
	client := &mockClient{errs: []error{errors.New("connection refused")}}
	svc, _ := newTestService(client)

	_, err := svc.AnalyzeJob(context.Background(), uuid.Nil, JobInput{Title: "t", Description: "d"})
	require.Error(t, err)

	var rerr *RateLimitError
	assert.False(t, errors.As(err, &rerr))
	assert.Equal(t, 1, client.calls, "non-rate-limit errors are never retried")
}

func TestGenerateRecoversAfterRateLimit(t *testing.T) {
	client := &mockClient{
		errs:      []error{errors.New("429 resource exhausted"), nil},
		responses: []string{"", validJobPayload},
	}
	svc, _ := newTestService(client)

	result, err := svc.AnalyzeJob(context.Background(), uuid.Nil, JobInput{Title: "t", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, 2, client.calls)
	assert.Equal(t, risk.CategoryFake, result.Classification.Category)
}

func TestAnalyzeJobMalformedResponse(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "the job looks fake to me"},
		{"missing fields", `{"result": "Fake Job"}`},
		{"wrong types", `{"result": "Fake Job", "confidence_score": "high", "risk_rate": 10, "risk_level": "Low", "explanations": [], "safety_tips": []}`},
		{"bad enum", `{"result": "Maybe", "confidence_score": 1, "risk_rate": 10, "risk_level": "Low", "explanations": [], "safety_tips": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockClient{responses: []string{tt.payload}}
			svc, _ := newTestService(client)

			_, err := svc.AnalyzeJob(context.Background(), uuid.Nil, JobInput{Title: "t", Description: "d"})

			var merr *MalformedResponseError
			require.ErrorAs(t, err, &merr)
			assert.Equal(t, 1, client.calls, "malformed responses are not retried")
		})
	}
}

func TestAnalyzeJobClampsOutOfRangeRisk(t *testing.T) {
	payload := `{
		"result": "Fake Job", "confidence_score": 99, "risk_rate": 140,
		"risk_level": "High", "explanations": [], "safety_tips": []
	}`
	client := &mockClient{responses: []string{payload}}
	svc, _ := newTestService(client)

	result, err := svc.AnalyzeJob(context.Background(), uuid.Nil, JobInput{Title: "t", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.RiskRate)
}

func TestAnalyzeResume(t *testing.T) {
	client := &mockClient{responses: []string{validResumePayload}}
	svc, st := newTestService(client)
	userID := uuid.New()

	result, err := svc.AnalyzeResume(context.Background(), userID, ResumeInput{
		JobTitle:       "Backend Engineer",
		ResumeText:     "Go developer with 4 years of experience.",
		JobDescription: "We need a Go backend engineer.",
	})
	require.NoError(t, err)
	assert.Equal(t, 74.0, result.MatchPercentage)
	assert.Equal(t, risk.CategoryGenuine, result.Classification.Category)

	scans, err := st.ListResumeScansByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, 20.0, scans[0].FraudRiskScore)
	assert.Equal(t, []string{"Go", "SQL"}, scans[0].MatchedSkills)
}

func TestAnalyzeResumeValidation(t *testing.T) {
	client := &mockClient{}
	svc, _ := newTestService(client)

	_, err := svc.AnalyzeResume(context.Background(), uuid.Nil, ResumeInput{})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"job_title", "resume_text", "job_description"}, verr.Fields)
	assert.Zero(t, client.calls)
}

func TestGenerateInterviewPrep(t *testing.T) {
	client := &mockClient{responses: []string{validInterviewPayload}}
	svc, st := newTestService(client)
	userID := uuid.New()

	result, mod, err := svc.GenerateInterviewPrep(context.Background(), userID, InterviewInput{
		Role:            "Software Engineer",
		ExperienceLevel: "Fresher",
	})
	require.NoError(t, err)
	assert.Len(t, result.TechnicalQuestions, 1)
	require.NotNil(t, mod)
	assert.Equal(t, "Software Engineer", mod.Role)

	mods, err := st.ListInterviewModulesByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, mods, 1)
}

func TestGenerateInterviewPrepAnonymous(t *testing.T) {
	client := &mockClient{responses: []string{validInterviewPayload}}
	svc, _ := newTestService(client)

	_, mod, err := svc.GenerateInterviewPrep(context.Background(), uuid.Nil, InterviewInput{
		Role:            "Data Analyst",
		ExperienceLevel: "Junior (1-2 yrs)",
	})
	require.NoError(t, err)
	assert.Nil(t, mod, "anonymous generations are not persisted")
}

func TestChat(t *testing.T) {
	client := &mockClient{responses: []string{"Stay away from jobs asking for fees!"}}
	svc, _ := newTestService(client)

	reply, err := svc.Chat(context.Background(), []Message{
		{Role: RoleUser, Content: "Is it normal to pay for training before starting?"},
	})
	require.NoError(t, err)
	assert.Contains(t, reply, "fees")

	require.Len(t, client.requests, 1)
	assert.Equal(t, llm.TierChat, client.requests[0].Tier)
	assert.False(t, client.requests[0].JSONResponse)
}

func TestChatFallsBackOnModelError(t *testing.T) {
	client := &mockClient{errs: []error{errors.New("connection reset")}}
	svc, _ := newTestService(client)

	reply, err := svc.Chat(context.Background(), []Message{
		{Role: RoleUser, Content: "hello"},
	})
	require.NoError(t, err, "model failures must not fail the conversation")
	assert.Equal(t, chatFallbackReply, reply)
}

func TestChatRequiresMessages(t *testing.T) {
	client := &mockClient{}
	svc, _ := newTestService(client)

	_, err := svc.Chat(context.Background(), nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, client.calls)
}
