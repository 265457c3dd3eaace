package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/fraudguard/internal/types"
)

// Memory is an in-memory Store. Every mutation runs under a single lock, so a
// read-modify-write such as the user delete cascade is atomic from any
// caller's perspective. Used by tests and as the fallback when no DATABASE_URL
// is configured.
type Memory struct {
	mu          sync.RWMutex
	users       []types.User
	jobScans    []types.JobScanRecord
	resumeScans []types.ResumeScanRecord
	modules     []types.InterviewModule
	currentUser *types.User
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

var _ Store = (*Memory)(nil)

// CreateUser appends a user, rejecting duplicate emails.
func (m *Memory) CreateUser(_ context.Context, user *types.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}
	m.users = append(m.users, *user)
	return nil
}

// GetUser returns the user by id, or nil if absent.
func (m *Memory) GetUser(_ context.Context, id uuid.UUID) (*types.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.ID == id {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

// GetUserByEmail returns the user by email (case-insensitive), or nil if absent.
func (m *Memory) GetUserByEmail(_ context.Context, email string) (*types.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

// ListUsers returns all users.
func (m *Memory) ListUsers(_ context.Context) ([]types.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.User, len(m.users))
	copy(out, m.users)
	return out, nil
}

// UpdateUser replaces a user by id. Returns ErrNotFound if the id is absent.
func (m *Memory) UpdateUser(_ context.Context, user *types.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.users {
		if m.users[i].ID == user.ID {
			m.users[i] = *user
			return nil
		}
	}
	return ErrNotFound
}

// DeleteUser removes a user and cascades over its job and resume scans in the
// same critical section.
func (m *Memory) DeleteUser(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	users := m.users[:0]
	for _, u := range m.users {
		if u.ID == id {
			found = true
			continue
		}
		users = append(users, u)
	}
	if !found {
		return ErrNotFound
	}
	m.users = users

	jobScans := m.jobScans[:0]
	for _, r := range m.jobScans {
		if r.UserID != id {
			jobScans = append(jobScans, r)
		}
	}
	m.jobScans = jobScans

	resumeScans := m.resumeScans[:0]
	for _, r := range m.resumeScans {
		if r.UserID != id {
			resumeScans = append(resumeScans, r)
		}
	}
	m.resumeScans = resumeScans

	modules := m.modules[:0]
	for _, mod := range m.modules {
		if mod.UserID != id {
			modules = append(modules, mod)
		}
	}
	m.modules = modules

	if m.currentUser != nil && m.currentUser.ID == id {
		m.currentUser = nil
	}
	return nil
}

// SaveJobScan prepends a job scan record.
func (m *Memory) SaveJobScan(_ context.Context, rec *types.JobScanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.jobScans = append([]types.JobScanRecord{*rec}, m.jobScans...)
	return nil
}

// ListJobScans returns all job scans ordered by creation time descending.
func (m *Memory) ListJobScans(_ context.Context) ([]types.JobScanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.JobScanRecord, len(m.jobScans))
	copy(out, m.jobScans)
	sortJobScans(out)
	return out, nil
}

// ListJobScansByUser returns only the given user's job scans, newest first.
func (m *Memory) ListJobScansByUser(_ context.Context, userID uuid.UUID) ([]types.JobScanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []types.JobScanRecord
	for _, r := range m.jobScans {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sortJobScans(out)
	return out, nil
}

// DeleteJobScan removes a job scan by id. No-op when absent.
func (m *Memory) DeleteJobScan(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.jobScans[:0]
	for _, r := range m.jobScans {
		if r.ID != id {
			out = append(out, r)
		}
	}
	m.jobScans = out
	return nil
}

// SaveResumeScan prepends a resume scan record.
func (m *Memory) SaveResumeScan(_ context.Context, rec *types.ResumeScanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.resumeScans = append([]types.ResumeScanRecord{*rec}, m.resumeScans...)
	return nil
}

// ListResumeScans returns all resume scans ordered by creation time descending.
func (m *Memory) ListResumeScans(_ context.Context) ([]types.ResumeScanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.ResumeScanRecord, len(m.resumeScans))
	copy(out, m.resumeScans)
	sortResumeScans(out)
	return out, nil
}

// ListResumeScansByUser returns only the given user's resume scans, newest first.
func (m *Memory) ListResumeScansByUser(_ context.Context, userID uuid.UUID) ([]types.ResumeScanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []types.ResumeScanRecord
	for _, r := range m.resumeScans {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sortResumeScans(out)
	return out, nil
}

// DeleteResumeScan removes a resume scan by id. No-op when absent.
func (m *Memory) DeleteResumeScan(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.resumeScans[:0]
	for _, r := range m.resumeScans {
		if r.ID != id {
			out = append(out, r)
		}
	}
	m.resumeScans = out
	return nil
}

// SaveInterviewModule prepends an interview module.
func (m *Memory) SaveInterviewModule(_ context.Context, mod *types.InterviewModule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.modules = append([]types.InterviewModule{*mod}, m.modules...)
	return nil
}

// ListInterviewModulesByUser returns the user's interview modules, newest first.
func (m *Memory) ListInterviewModulesByUser(_ context.Context, userID uuid.UUID) ([]types.InterviewModule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []types.InterviewModule
	for _, mod := range m.modules {
		if mod.UserID == userID {
			out = append(out, mod)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// DeleteInterviewModule removes an interview module by id. No-op when absent.
func (m *Memory) DeleteInterviewModule(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.modules[:0]
	for _, mod := range m.modules {
		if mod.ID != id {
			out = append(out, mod)
		}
	}
	m.modules = out
	return nil
}

// SetCurrentUser stores the session pointer. Passing nil clears it (logout).
func (m *Memory) SetCurrentUser(_ context.Context, user *types.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user == nil {
		m.currentUser = nil
		return nil
	}
	u := *user
	m.currentUser = &u
	return nil
}

// GetCurrentUser returns the session pointer, or nil when signed out.
func (m *Memory) GetCurrentUser(_ context.Context) (*types.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.currentUser == nil {
		return nil, nil
	}
	u := *m.currentUser
	return &u, nil
}

// Ordering is stable and keyed on CreatedAt descending regardless of
// insertion order; prepending is only a fast path for the common case.
func sortJobScans(recs []types.JobScanRecord) {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
}

func sortResumeScans(recs []types.ResumeScanRecord) {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
}
