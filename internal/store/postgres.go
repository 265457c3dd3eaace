package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/fraudguard/internal/types"
)

// Postgres is the production Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// ConnectPostgres establishes a connection pool, verifies it and ensures the
// schema exists.
func ConnectPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			is_blocked BOOLEAN NOT NULL DEFAULT FALSE,
			role TEXT NOT NULL DEFAULT 'user',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS job_scans (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			job_title TEXT NOT NULL,
			company_name TEXT NOT NULL,
			prediction TEXT NOT NULL,
			confidence_score DOUBLE PRECISION NOT NULL,
			risk_rate DOUBLE PRECISION NOT NULL,
			explanations JSONB NOT NULL DEFAULT '[]',
			safety_tips JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS resume_scans (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			job_title TEXT NOT NULL,
			match_percentage DOUBLE PRECISION NOT NULL,
			ats_score DOUBLE PRECISION NOT NULL,
			fraud_risk_score DOUBLE PRECISION NOT NULL,
			strength_score DOUBLE PRECISION NOT NULL,
			matched_skills JSONB NOT NULL DEFAULT '[]',
			missing_skills JSONB NOT NULL DEFAULT '[]',
			suggestions JSONB NOT NULL DEFAULT '[]',
			roadmap JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS interview_modules (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role TEXT NOT NULL,
			experience_level TEXT NOT NULL,
			technical_questions JSONB NOT NULL DEFAULT '[]',
			hr_questions JSONB NOT NULL DEFAULT '[]',
			roadmap JSONB NOT NULL DEFAULT '[]',
			resources JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS current_user_pointer (
			slot INT PRIMARY KEY DEFAULT 1 CHECK (slot = 1),
			user_id UUID REFERENCES users(id) ON DELETE SET NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// CreateUser inserts a user, mapping unique-email violations to ErrDuplicateEmail.
func (p *Postgres) CreateUser(ctx context.Context, user *types.User) error {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, user.Email,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return ErrDuplicateEmail
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, is_blocked, role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.IsBlocked, user.Role, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by id, or nil if absent.
func (p *Postgres) GetUser(ctx context.Context, id uuid.UUID) (*types.User, error) {
	return p.scanUser(p.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, is_blocked, role, created_at
		 FROM users WHERE id = $1`, id))
}

// GetUserByEmail retrieves a user by email, or nil if absent.
func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	return p.scanUser(p.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, is_blocked, role, created_at
		 FROM users WHERE LOWER(email) = LOWER($1)`, email))
}

func (p *Postgres) scanUser(row pgx.Row) (*types.User, error) {
	var u types.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsBlocked, &u.Role, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// ListUsers returns all users, newest first.
func (p *Postgres) ListUsers(ctx context.Context) ([]types.User, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, username, email, password_hash, is_blocked, role, created_at
		 FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		var u types.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsBlocked, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser replaces a user by id. Returns ErrNotFound when the id is absent.
func (p *Postgres) UpdateUser(ctx context.Context, user *types.User) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE users SET username = $2, email = $3, password_hash = $4, is_blocked = $5, role = $6
		 WHERE id = $1`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.IsBlocked, user.Role,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes a user and its scans inside a single transaction.
// The FK cascade would cover the scans on its own, but keeping the delete in
// an explicit transaction means the invariant holds even if the schema loses
// the cascade clause.
func (p *Postgres) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, table := range []string{"job_scans", "resume_scans", "interview_modules"} {
		if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, table), id); err != nil {
			return fmt.Errorf("failed to cascade delete %s: %w", table, err)
		}
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

// SaveJobScan inserts a job scan record.
func (p *Postgres) SaveJobScan(ctx context.Context, rec *types.JobScanRecord) error {
	explanations, err := json.Marshal(rec.Explanations)
	if err != nil {
		return fmt.Errorf("failed to marshal explanations: %w", err)
	}
	tips, err := json.Marshal(rec.SafetyTips)
	if err != nil {
		return fmt.Errorf("failed to marshal safety tips: %w", err)
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO job_scans (id, user_id, job_title, company_name, prediction,
		   confidence_score, risk_rate, explanations, safety_tips, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.UserID, rec.JobTitle, rec.CompanyName, rec.Prediction,
		rec.ConfidenceScore, rec.RiskRate, explanations, tips, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save job scan: %w", err)
	}
	return nil
}

// ListJobScans returns every job scan, newest first.
func (p *Postgres) ListJobScans(ctx context.Context) ([]types.JobScanRecord, error) {
	return p.queryJobScans(ctx,
		`SELECT id, user_id, job_title, company_name, prediction, confidence_score,
		   risk_rate, explanations, safety_tips, created_at
		 FROM job_scans ORDER BY created_at DESC`)
}

// ListJobScansByUser returns only the given user's job scans, newest first.
func (p *Postgres) ListJobScansByUser(ctx context.Context, userID uuid.UUID) ([]types.JobScanRecord, error) {
	return p.queryJobScans(ctx,
		`SELECT id, user_id, job_title, company_name, prediction, confidence_score,
		   risk_rate, explanations, safety_tips, created_at
		 FROM job_scans WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (p *Postgres) queryJobScans(ctx context.Context, query string, args ...any) ([]types.JobScanRecord, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list job scans: %w", err)
	}
	defer rows.Close()

	var recs []types.JobScanRecord
	for rows.Next() {
		var (
			r            types.JobScanRecord
			explanations []byte
			tips         []byte
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.JobTitle, &r.CompanyName, &r.Prediction,
			&r.ConfidenceScore, &r.RiskRate, &explanations, &tips, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job scan: %w", err)
		}
		if err := json.Unmarshal(explanations, &r.Explanations); err != nil {
			return nil, fmt.Errorf("failed to decode explanations: %w", err)
		}
		if err := json.Unmarshal(tips, &r.SafetyTips); err != nil {
			return nil, fmt.Errorf("failed to decode safety tips: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// DeleteJobScan removes a job scan by id. No-op when absent.
func (p *Postgres) DeleteJobScan(ctx context.Context, id uuid.UUID) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM job_scans WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete job scan: %w", err)
	}
	return nil
}

// SaveResumeScan inserts a resume scan record.
func (p *Postgres) SaveResumeScan(ctx context.Context, rec *types.ResumeScanRecord) error {
	fields := map[string][]string{
		"matched_skills": rec.MatchedSkills,
		"missing_skills": rec.MissingSkills,
		"suggestions":    rec.Suggestions,
		"roadmap":        rec.Roadmap,
	}
	encoded := make(map[string][]byte, len(fields))
	for name, val := range fields {
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", name, err)
		}
		encoded[name] = b
	}

	_, err := p.pool.Exec(ctx,
		`INSERT INTO resume_scans (id, user_id, job_title, match_percentage, ats_score,
		   fraud_risk_score, strength_score, matched_skills, missing_skills, suggestions, roadmap, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.ID, rec.UserID, rec.JobTitle, rec.MatchPercentage, rec.ATSScore,
		rec.FraudRiskScore, rec.StrengthScore,
		encoded["matched_skills"], encoded["missing_skills"], encoded["suggestions"], encoded["roadmap"],
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save resume scan: %w", err)
	}
	return nil
}

// ListResumeScans returns every resume scan, newest first.
func (p *Postgres) ListResumeScans(ctx context.Context) ([]types.ResumeScanRecord, error) {
	return p.queryResumeScans(ctx,
		`SELECT id, user_id, job_title, match_percentage, ats_score, fraud_risk_score,
		   strength_score, matched_skills, missing_skills, suggestions, roadmap, created_at
		 FROM resume_scans ORDER BY created_at DESC`)
}

// ListResumeScansByUser returns only the given user's resume scans, newest first.
func (p *Postgres) ListResumeScansByUser(ctx context.Context, userID uuid.UUID) ([]types.ResumeScanRecord, error) {
	return p.queryResumeScans(ctx,
		`SELECT id, user_id, job_title, match_percentage, ats_score, fraud_risk_score,
		   strength_score, matched_skills, missing_skills, suggestions, roadmap, created_at
		 FROM resume_scans WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (p *Postgres) queryResumeScans(ctx context.Context, query string, args ...any) ([]types.ResumeScanRecord, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list resume scans: %w", err)
	}
	defer rows.Close()

	var recs []types.ResumeScanRecord
	for rows.Next() {
		var (
			r                                       types.ResumeScanRecord
			matched, missing, suggestions, roadmap []byte
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.JobTitle, &r.MatchPercentage, &r.ATSScore,
			&r.FraudRiskScore, &r.StrengthScore, &matched, &missing, &suggestions, &roadmap, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resume scan: %w", err)
		}
		for _, pair := range []struct {
			raw []byte
			dst *[]string
		}{
			{matched, &r.MatchedSkills},
			{missing, &r.MissingSkills},
			{suggestions, &r.Suggestions},
			{roadmap, &r.Roadmap},
		} {
			if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
				return nil, fmt.Errorf("failed to decode resume scan field: %w", err)
			}
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// DeleteResumeScan removes a resume scan by id. No-op when absent.
func (p *Postgres) DeleteResumeScan(ctx context.Context, id uuid.UUID) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM resume_scans WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete resume scan: %w", err)
	}
	return nil
}

// SaveInterviewModule inserts an interview module.
func (p *Postgres) SaveInterviewModule(ctx context.Context, mod *types.InterviewModule) error {
	technical, err := json.Marshal(mod.TechnicalQuestions)
	if err != nil {
		return fmt.Errorf("failed to marshal technical questions: %w", err)
	}
	hr, err := json.Marshal(mod.HRQuestions)
	if err != nil {
		return fmt.Errorf("failed to marshal hr questions: %w", err)
	}
	roadmap, err := json.Marshal(mod.Roadmap)
	if err != nil {
		return fmt.Errorf("failed to marshal roadmap: %w", err)
	}
	resources, err := json.Marshal(mod.Resources)
	if err != nil {
		return fmt.Errorf("failed to marshal resources: %w", err)
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO interview_modules (id, user_id, role, experience_level,
		   technical_questions, hr_questions, roadmap, resources, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		mod.ID, mod.UserID, mod.Role, mod.ExperienceLevel, technical, hr, roadmap, resources, mod.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save interview module: %w", err)
	}
	return nil
}

// ListInterviewModulesByUser returns the user's interview modules, newest first.
func (p *Postgres) ListInterviewModulesByUser(ctx context.Context, userID uuid.UUID) ([]types.InterviewModule, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, user_id, role, experience_level, technical_questions, hr_questions,
		   roadmap, resources, created_at
		 FROM interview_modules WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interview modules: %w", err)
	}
	defer rows.Close()

	var mods []types.InterviewModule
	for rows.Next() {
		var (
			m                                 types.InterviewModule
			technical, hr, roadmap, resources []byte
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.ExperienceLevel,
			&technical, &hr, &roadmap, &resources, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan interview module: %w", err)
		}
		for _, pair := range []struct {
			raw []byte
			dst *[]string
		}{
			{technical, &m.TechnicalQuestions},
			{hr, &m.HRQuestions},
			{roadmap, &m.Roadmap},
			{resources, &m.Resources},
		} {
			if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
				return nil, fmt.Errorf("failed to decode interview module field: %w", err)
			}
		}
		mods = append(mods, m)
	}
	return mods, rows.Err()
}

// DeleteInterviewModule removes an interview module by id. No-op when absent.
func (p *Postgres) DeleteInterviewModule(ctx context.Context, id uuid.UUID) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM interview_modules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete interview module: %w", err)
	}
	return nil
}

// SetCurrentUser stores the session pointer in the singleton row. Passing nil
// clears it (logout).
func (p *Postgres) SetCurrentUser(ctx context.Context, user *types.User) error {
	var userID *uuid.UUID
	if user != nil {
		userID = &user.ID
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO current_user_pointer (slot, user_id) VALUES (1, $1)
		 ON CONFLICT (slot) DO UPDATE SET user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to set current user: %w", err)
	}
	return nil
}

// GetCurrentUser returns the session pointer, or nil when signed out.
func (p *Postgres) GetCurrentUser(ctx context.Context) (*types.User, error) {
	var userID *uuid.UUID
	err := p.pool.QueryRow(ctx, `SELECT user_id FROM current_user_pointer WHERE slot = 1`).Scan(&userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if userID == nil {
		return nil, nil
	}
	return p.GetUser(ctx, *userID)
}
