// Package activity merges job-fraud and resume-match records into a single
// chronological log for history and admin views. Entries are derived on every
// call; the package holds no state of its own.
package activity

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/fraudguard/internal/risk"
	"github.com/jonathan/fraudguard/internal/store"
	"github.com/jonathan/fraudguard/internal/types"
)

// Source tags which collection an entry came from.
type Source string

// Entry sources
const (
	SourceJobScan    Source = "job-scan"
	SourceResumeScan Source = "resume-scan"
)

// Entry is one row of the unified activity log. Verdict and Category are
// always recomputed from the record's own risk field; the stored prediction
// string is ignored.
type Entry struct {
	ID       uuid.UUID     `json:"id"`
	Source   Source        `json:"source"`
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle"`
	RiskRate float64       `json:"risk_rate"`
	Date     time.Time     `json:"date"`
	Verdict  string        `json:"verdict"`
	Category risk.Category `json:"category"`
}

// Filter narrows an activity listing. Zero value matches everything.
type Filter struct {
	// Query is matched case-insensitively against title and subtitle.
	Query string
	// Category is one of fake, genuine, suspicious, or empty/"all" for no filter.
	Category string
}

// Build merges the two collections into entries sorted by date descending.
// Empty inputs yield an empty sequence.
func Build(jobScans []types.JobScanRecord, resumeScans []types.ResumeScanRecord) []Entry {
	entries := make([]Entry, 0, len(jobScans)+len(resumeScans))

	for _, r := range jobScans {
		res := risk.Classify(r.RiskRate)
		entries = append(entries, Entry{
			ID:       r.ID,
			Source:   SourceJobScan,
			Title:    r.JobTitle,
			Subtitle: r.CompanyName,
			RiskRate: r.RiskRate,
			Date:     r.CreatedAt,
			Verdict:  res.Verdict,
			Category: res.Category,
		})
	}
	for _, r := range resumeScans {
		res := risk.Classify(r.FraudRiskScore)
		entries = append(entries, Entry{
			ID:       r.ID,
			Source:   SourceResumeScan,
			Title:    r.JobTitle,
			Subtitle: fmt.Sprintf("Resume match %.0f%%", r.MatchPercentage),
			RiskRate: r.FraudRiskScore,
			Date:     r.CreatedAt,
			Verdict:  res.Verdict,
			Category: res.Category,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.After(entries[j].Date) })
	return entries
}

// Apply returns the entries matching f, preserving order.
func Apply(entries []Entry, f Filter) []Entry {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	category := strings.ToLower(strings.TrimSpace(f.Category))
	if category == "all" {
		category = ""
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if query != "" &&
			!strings.Contains(strings.ToLower(e.Title), query) &&
			!strings.Contains(strings.ToLower(e.Subtitle), query) {
			continue
		}
		if category != "" && string(e.Category) != category {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Service reads the record store and produces filtered activity listings.
type Service struct {
	store store.Store
}

// NewService creates an activity service over the given store.
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// List builds the activity log for one user, or for every user when userID is
// uuid.Nil (admin scope), applying f.
func (s *Service) List(ctx context.Context, userID uuid.UUID, f Filter) ([]Entry, error) {
	var (
		jobScans    []types.JobScanRecord
		resumeScans []types.ResumeScanRecord
		err         error
	)

	if userID == uuid.Nil {
		jobScans, err = s.store.ListJobScans(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list job scans: %w", err)
		}
		resumeScans, err = s.store.ListResumeScans(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list resume scans: %w", err)
		}
	} else {
		jobScans, err = s.store.ListJobScansByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to list job scans: %w", err)
		}
		resumeScans, err = s.store.ListResumeScansByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to list resume scans: %w", err)
		}
	}

	return Apply(Build(jobScans, resumeScans), f), nil
}

// Visible reports whether the entry exists within the given scope, reading
// only the collection the source names. uuid.Nil scopes to every user.
func (s *Service) Visible(ctx context.Context, userID uuid.UUID, source Source, id uuid.UUID) (bool, error) {
	switch source {
	case SourceJobScan:
		var (
			scans []types.JobScanRecord
			err   error
		)
		if userID == uuid.Nil {
			scans, err = s.store.ListJobScans(ctx)
		} else {
			scans, err = s.store.ListJobScansByUser(ctx, userID)
		}
		if err != nil {
			return false, fmt.Errorf("failed to list job scans: %w", err)
		}
		for _, r := range scans {
			if r.ID == id {
				return true, nil
			}
		}
		return false, nil
	case SourceResumeScan:
		var (
			scans []types.ResumeScanRecord
			err   error
		)
		if userID == uuid.Nil {
			scans, err = s.store.ListResumeScans(ctx)
		} else {
			scans, err = s.store.ListResumeScansByUser(ctx, userID)
		}
		if err != nil {
			return false, fmt.Errorf("failed to list resume scans: %w", err)
		}
		for _, r := range scans {
			if r.ID == id {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("unknown activity source: %q", source)
	}
}

// Delete removes the underlying record for an entry, dispatching on source.
// Callers rebuild the log afterwards; there is no cached state to invalidate.
func (s *Service) Delete(ctx context.Context, source Source, id uuid.UUID) error {
	switch source {
	case SourceJobScan:
		return s.store.DeleteJobScan(ctx, id)
	case SourceResumeScan:
		return s.store.DeleteResumeScan(ctx, id)
	default:
		return fmt.Errorf("unknown activity source: %q", source)
	}
}
