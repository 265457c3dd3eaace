// Package store provides durable CRUD access to users, scan records,
// interview modules and the session-user pointer. The Store interface is
// injected into orchestration and aggregation code; an in-memory
// implementation backs tests and keyless local runs, a PostgreSQL
// implementation backs production.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jonathan/fraudguard/internal/types"
)

// Sentinel errors shared by all implementations.
var (
	// ErrNotFound is returned when an update targets a record that does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when creating a user with an email already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store is the persistence boundary for all platform records.
//
// Every write is durable before the call returns. DeleteUser cascades over the
// user's job and resume scans atomically: a reader never observes the user
// gone with its records still present, or the reverse. Delete operations on
// individual scans are no-ops when the id is absent; that policy is consistent
// across both record kinds.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *types.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	ListUsers(ctx context.Context) ([]types.User, error)
	UpdateUser(ctx context.Context, user *types.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error

	// Job scans, newest first
	SaveJobScan(ctx context.Context, rec *types.JobScanRecord) error
	ListJobScans(ctx context.Context) ([]types.JobScanRecord, error)
	ListJobScansByUser(ctx context.Context, userID uuid.UUID) ([]types.JobScanRecord, error)
	DeleteJobScan(ctx context.Context, id uuid.UUID) error

	// Resume scans, newest first
	SaveResumeScan(ctx context.Context, rec *types.ResumeScanRecord) error
	ListResumeScans(ctx context.Context) ([]types.ResumeScanRecord, error)
	ListResumeScansByUser(ctx context.Context, userID uuid.UUID) ([]types.ResumeScanRecord, error)
	DeleteResumeScan(ctx context.Context, id uuid.UUID) error

	// Interview modules, newest first
	SaveInterviewModule(ctx context.Context, mod *types.InterviewModule) error
	ListInterviewModulesByUser(ctx context.Context, userID uuid.UUID) ([]types.InterviewModule, error)
	DeleteInterviewModule(ctx context.Context, id uuid.UUID) error

	// Session pointer. Setting nil is the logout contract.
	SetCurrentUser(ctx context.Context, user *types.User) error
	GetCurrentUser(ctx context.Context) (*types.User, error)
}
