// Package types defines the shared domain types for the fraud screening platform.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the access level of a user account.
type Role string

// Account roles
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a platform account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize to JSON
	IsBlocked    bool      `json:"is_blocked"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// JobScanRecord is the persisted result of a job-fraud analysis.
//
// Prediction is stored for display convenience only. It is never authoritative:
// every read path re-derives the verdict from RiskRate via the risk package, so
// a stale or hand-edited label can never disagree with the score it came from.
type JobScanRecord struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	JobTitle        string    `json:"job_title"`
	CompanyName     string    `json:"company_name"`
	Prediction      string    `json:"prediction"`
	ConfidenceScore float64   `json:"confidence_score"`
	RiskRate        float64   `json:"risk_rate"`
	Explanations    []string  `json:"explanations"`
	SafetyTips      []string  `json:"safety_tips"`
	CreatedAt       time.Time `json:"created_at"`
}

// ResumeScanRecord is the persisted result of a resume-match analysis.
// FraudRiskScore feeds the same classifier as JobScanRecord.RiskRate.
type ResumeScanRecord struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	JobTitle        string    `json:"job_title"`
	MatchPercentage float64   `json:"match_percentage"`
	ATSScore        float64   `json:"ats_score"`
	FraudRiskScore  float64   `json:"fraud_risk_score"`
	StrengthScore   float64   `json:"strength_score"`
	MatchedSkills   []string  `json:"matched_skills"`
	MissingSkills   []string  `json:"missing_skills"`
	Suggestions     []string  `json:"suggestions"`
	Roadmap         []string  `json:"roadmap"`
	CreatedAt       time.Time `json:"created_at"`
}

// InterviewModule is a saved interview-preparation module. It is owned by a
// single user and is not part of the unified activity log.
type InterviewModule struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"user_id"`
	Role               string    `json:"role"`
	ExperienceLevel    string    `json:"experience_level"`
	TechnicalQuestions []string  `json:"technical_questions"`
	HRQuestions        []string  `json:"hr_questions"`
	Roadmap            []string  `json:"roadmap"`
	Resources          []string  `json:"resources"`
	CreatedAt          time.Time `json:"created_at"`
}
