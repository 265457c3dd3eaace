// Package analysis orchestrates the three analysis kinds against the model
// boundary: validate input, call the model with retry on rate limits,
// strictly parse the constrained JSON response, classify and persist.
package analysis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/fraudguard/internal/llm"
	"github.com/jonathan/fraudguard/internal/risk"
	"github.com/jonathan/fraudguard/internal/store"
	"github.com/jonathan/fraudguard/internal/types"
)

const (
	maxAttempts    = 3
	baseRetryDelay = time.Second
)

// JobInput is the user-supplied job offer data.
type JobInput struct {
	Title       string
	Company     string
	Salary      string
	Location    string
	Email       string
	Website     string
	Description string
	SourceType  string // manual, email, file, screenshot, url
	Screenshot  []byte // optional inline PNG
}

// ResumeInput is the user-supplied resume-match data.
type ResumeInput struct {
	JobTitle       string
	ResumeText     string
	JobDescription string
}

// InterviewInput selects the interview-prep module to generate.
type InterviewInput struct {
	Role            string
	ExperienceLevel string
}

// JobAnalysis is the parsed job-fraud result. Classification is derived from
// RiskRate by the risk package, never taken from the model's own label.
type JobAnalysis struct {
	Result          string      `json:"result"`
	ConfidenceScore float64     `json:"confidence_score"`
	RiskRate        float64     `json:"risk_rate"`
	RiskLevel       string      `json:"risk_level"`
	Explanations    []string    `json:"explanations"`
	SafetyTips      []string    `json:"safety_tips"`
	Classification  risk.Result `json:"classification"`
}

// ResumeAnalysis is the parsed resume-match result.
type ResumeAnalysis struct {
	MatchPercentage float64     `json:"match_percentage"`
	ATSScore        float64     `json:"ats_score"`
	FraudRiskScore  float64     `json:"fraud_risk_score"`
	StrengthScore   float64     `json:"strength_score"`
	Rating          string      `json:"rating"`
	Summary         string      `json:"summary"`
	MatchedSkills   []string    `json:"matched_skills"`
	MissingSkills   []string    `json:"missing_skills"`
	Suggestions     []string    `json:"suggestions"`
	Roadmap         []string    `json:"roadmap"`
	Classification  risk.Result `json:"classification"`
}

// InterviewPrep is the parsed interview-preparation result.
type InterviewPrep struct {
	TechnicalQuestions []string `json:"technical_questions"`
	HRQuestions        []string `json:"hr_questions"`
	Roadmap            []string `json:"roadmap"`
	Resources          []string `json:"resources"`
}

// Service runs analyses through the model boundary and persists successes.
type Service struct {
	client llm.Client
	store  store.Store
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewService creates an orchestrator over the given model client and store.
func NewService(client llm.Client, st store.Store) *Service {
	return &Service{
		client: client,
		store:  st,
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// WithClock overrides the clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithSleeper overrides the retry sleeper, for tests.
func (s *Service) WithSleeper(sleep func(ctx context.Context, d time.Duration) error) *Service {
	s.sleep = sleep
	return s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// generate calls the model boundary, retrying only on rate-limit failures
// with exponentially increasing delay: the request state machine loops
// Pending at most maxAttempts times, every other failure goes straight out.
func (s *Service) generate(ctx context.Context, req llm.Request) (string, error) {
	var lastErr error
	delay := baseRetryDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := s.client.Generate(ctx, req)
		if err == nil {
			return text, nil
		}
		if !isRateLimited(err) {
			return "", err
		}
		lastErr = err
		if attempt < maxAttempts {
			log.Printf("[analysis] rate limited (attempt %d/%d), retrying in %s", attempt, maxAttempts, delay)
			if serr := s.sleep(ctx, delay); serr != nil {
				return "", serr
			}
			delay *= 2
		}
	}
	return "", &RateLimitError{Attempts: maxAttempts, Err: lastErr}
}

// AnalyzeJob runs a job-fraud analysis. When userID identifies a signed-in
// user the result is persisted as a JobScanRecord; anonymous analyses are
// returned but never stored.
func (s *Service) AnalyzeJob(ctx context.Context, userID uuid.UUID, in JobInput) (*JobAnalysis, error) {
	var missing []string
	if in.Title == "" {
		missing = append(missing, "title")
	}
	if in.Description == "" && len(in.Screenshot) == 0 {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	parts := []llm.Part{{Text: buildJobPrompt(in)}}
	if len(in.Screenshot) > 0 {
		parts = append(parts, llm.Part{Data: in.Screenshot, MIMEType: "image/png"})
	}

	payload, err := s.generate(ctx, llm.Request{
		SystemInstruction: jobAnalysisInstruction,
		Parts:             parts,
		Tier:              llm.TierAnalysis,
		JSONResponse:      true,
	})
	if err != nil {
		return nil, err
	}

	var result JobAnalysis
	if err := decodeStrict(jobAnalysisSchema, payload, &result); err != nil {
		return nil, err
	}
	result.RiskRate = risk.Clamp(result.RiskRate)
	result.Classification = risk.Classify(result.RiskRate)

	if userID != uuid.Nil {
		rec := &types.JobScanRecord{
			ID:              uuid.New(),
			UserID:          userID,
			JobTitle:        in.Title,
			CompanyName:     in.Company,
			Prediction:      result.Classification.Verdict,
			ConfidenceScore: result.ConfidenceScore,
			RiskRate:        result.RiskRate,
			Explanations:    result.Explanations,
			SafetyTips:      result.SafetyTips,
			CreatedAt:       s.now(),
		}
		if err := s.store.SaveJobScan(ctx, rec); err != nil {
			return nil, fmt.Errorf("failed to persist job scan: %w", err)
		}
	}
	return &result, nil
}

// AnalyzeResume runs a resume-match analysis, persisting for signed-in users.
func (s *Service) AnalyzeResume(ctx context.Context, userID uuid.UUID, in ResumeInput) (*ResumeAnalysis, error) {
	var missing []string
	if in.JobTitle == "" {
		missing = append(missing, "job_title")
	}
	if in.ResumeText == "" {
		missing = append(missing, "resume_text")
	}
	if in.JobDescription == "" {
		missing = append(missing, "job_description")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	payload, err := s.generate(ctx, llm.Request{
		SystemInstruction: resumeAnalysisInstruction,
		Parts:             []llm.Part{{Text: buildResumePrompt(in)}},
		Tier:              llm.TierAnalysis,
		JSONResponse:      true,
	})
	if err != nil {
		return nil, err
	}

	var result ResumeAnalysis
	if err := decodeStrict(resumeAnalysisSchema, payload, &result); err != nil {
		return nil, err
	}
	result.FraudRiskScore = risk.Clamp(result.FraudRiskScore)
	result.Classification = risk.Classify(result.FraudRiskScore)

	if userID != uuid.Nil {
		rec := &types.ResumeScanRecord{
			ID:              uuid.New(),
			UserID:          userID,
			JobTitle:        in.JobTitle,
			MatchPercentage: result.MatchPercentage,
			ATSScore:        result.ATSScore,
			FraudRiskScore:  result.FraudRiskScore,
			StrengthScore:   result.StrengthScore,
			MatchedSkills:   result.MatchedSkills,
			MissingSkills:   result.MissingSkills,
			Suggestions:     result.Suggestions,
			Roadmap:         result.Roadmap,
			CreatedAt:       s.now(),
		}
		if err := s.store.SaveResumeScan(ctx, rec); err != nil {
			return nil, fmt.Errorf("failed to persist resume scan: %w", err)
		}
	}
	return &result, nil
}

// GenerateInterviewPrep produces an interview module, persisting for
// signed-in users. Interview modules carry no risk score and are not part of
// the unified activity log.
func (s *Service) GenerateInterviewPrep(ctx context.Context, userID uuid.UUID, in InterviewInput) (*InterviewPrep, *types.InterviewModule, error) {
	var missing []string
	if in.Role == "" {
		missing = append(missing, "role")
	}
	if in.ExperienceLevel == "" {
		missing = append(missing, "experience_level")
	}
	if len(missing) > 0 {
		return nil, nil, &ValidationError{Fields: missing}
	}

	payload, err := s.generate(ctx, llm.Request{
		SystemInstruction: interviewPrepInstruction,
		Parts:             []llm.Part{{Text: buildInterviewPrompt(in)}},
		Tier:              llm.TierAnalysis,
		JSONResponse:      true,
	})
	if err != nil {
		return nil, nil, err
	}

	var result InterviewPrep
	if err := decodeStrict(interviewPrepSchema, payload, &result); err != nil {
		return nil, nil, err
	}

	var mod *types.InterviewModule
	if userID != uuid.Nil {
		mod = &types.InterviewModule{
			ID:                 uuid.New(),
			UserID:             userID,
			Role:               in.Role,
			ExperienceLevel:    in.ExperienceLevel,
			TechnicalQuestions: result.TechnicalQuestions,
			HRQuestions:        result.HRQuestions,
			Roadmap:            result.Roadmap,
			Resources:          result.Resources,
			CreatedAt:          s.now(),
		}
		if err := s.store.SaveInterviewModule(ctx, mod); err != nil {
			return nil, nil, fmt.Errorf("failed to persist interview module: %w", err)
		}
	}
	return &result, mod, nil
}
