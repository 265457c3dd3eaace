// Package stats computes platform-wide figures for the admin dashboard.
// Everything is recomputed from raw records on every call, which keeps the
// numbers consistent with the store at the cost of an O(n) scan; acceptable
// for an admin-only, low-frequency read. Concurrent identical reads are
// collapsed with singleflight, never cached.
package stats

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonathan/fraudguard/internal/risk"
	"github.com/jonathan/fraudguard/internal/store"
)

// growthDays is the window of the growth trend, today included.
const growthDays = 7

// RiskDistribution counts analyses per risk level across both record kinds.
type RiskDistribution struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// GrowthPoint is one calendar day of the growth trend.
type GrowthPoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Users int    `json:"users"`
	Scans int    `json:"scans"`
}

// Stats is the full admin snapshot.
type Stats struct {
	TotalUsers         int              `json:"total_users"`
	TotalAnalyses      int              `json:"total_analyses"`
	FakeJobsDetected   int              `json:"fake_jobs_detected"`
	HighRiskPercentage int              `json:"high_risk_percentage"`
	NewUsersToday      int              `json:"new_users_today"`
	RiskDistribution   RiskDistribution `json:"risk_distribution"`
	GrowthTrend        []GrowthPoint    `json:"growth_trend"` // oldest first
}

// Service computes statistics over a record store.
type Service struct {
	store store.Store
	now   func() time.Time
	group singleflight.Group
}

// NewService creates a stats service. The clock defaults to time.Now.
func NewService(s store.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// WithClock overrides the clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Compute builds a fresh snapshot. Concurrent callers share one underlying
// computation; nothing is retained between calls. The shared computation
// runs on a detached context so a cancelled leader does not fail its
// followers.
func (s *Service) Compute(ctx context.Context) (*Stats, error) {
	v, err, _ := s.group.Do("stats", func() (any, error) {
		return s.compute(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.(*Stats), nil
}

func (s *Service) compute(ctx context.Context) (*Stats, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	jobScans, err := s.store.ListJobScans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list job scans: %w", err)
	}
	resumeScans, err := s.store.ListResumeScans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list resume scans: %w", err)
	}

	now := s.now()
	today := dayKey(now)

	out := &Stats{
		TotalUsers:    len(users),
		TotalAnalyses: len(jobScans) + len(resumeScans),
	}

	scores := make([]float64, 0, out.TotalAnalyses)
	scanDays := make([]string, 0, out.TotalAnalyses)
	for _, r := range jobScans {
		scores = append(scores, r.RiskRate)
		scanDays = append(scanDays, dayKey(r.CreatedAt))
	}
	for _, r := range resumeScans {
		scores = append(scores, r.FraudRiskScore)
		scanDays = append(scanDays, dayKey(r.CreatedAt))
	}

	for _, score := range scores {
		switch risk.Classify(score).Level {
		case risk.LevelLow:
			out.RiskDistribution.Low++
		case risk.LevelMedium:
			out.RiskDistribution.Medium++
		case risk.LevelHigh:
			out.RiskDistribution.High++
		}
	}
	out.FakeJobsDetected = out.RiskDistribution.High

	if out.TotalAnalyses > 0 {
		out.HighRiskPercentage = int(math.Round(float64(out.FakeJobsDetected) / float64(out.TotalAnalyses) * 100))
	}

	userDays := make([]string, 0, len(users))
	for _, u := range users {
		day := dayKey(u.CreatedAt)
		userDays = append(userDays, day)
		if day == today {
			out.NewUsersToday++
		}
	}

	out.GrowthTrend = make([]GrowthPoint, 0, growthDays)
	for i := growthDays - 1; i >= 0; i-- {
		day := dayKey(now.AddDate(0, 0, -i))
		point := GrowthPoint{Date: day}
		for _, d := range userDays {
			if d == day {
				point.Users++
			}
		}
		for _, d := range scanDays {
			if d == day {
				point.Scans++
			}
		}
		out.GrowthTrend = append(out.GrowthTrend, point)
	}

	return out, nil
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
