package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/fraudguard/internal/activity"
	"github.com/jonathan/fraudguard/internal/risk"
	"github.com/jonathan/fraudguard/internal/server/middleware"
	"github.com/jonathan/fraudguard/internal/types"
)

// handleListActivity returns the caller's unified activity log, optionally
// filtered by ?q= and ?category=.
func (s *Server) handleListActivity(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r)

	entries, err := s.activity.List(r.Context(), identity.UserID, activity.Filter{
		Query:    r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
	})
	if err != nil {
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, entries)
}

// handleDeleteActivity deletes one of the caller's activity entries. Admins
// may delete any entry.
func (s *Server) handleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r)

	source := activity.Source(r.PathValue("source"))
	if source != activity.SourceJobScan && source != activity.SourceResumeScan {
		errorResponse(w, http.StatusBadRequest, "unknown activity source")
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	scope := identity.UserID
	if identity.IsAdmin() {
		scope = uuid.Nil
	}
	visible, err := s.activity.Visible(r.Context(), scope, source, id)
	if err != nil {
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if !visible {
		errorResponse(w, http.StatusNotFound, "activity entry not found")
		return
	}

	if err := s.activity.Delete(r.Context(), source, id); err != nil {
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "entry deleted"})
}

// handleActivityReport renders a plain-text report for one of the caller's
// job scans.
func (s *Server) handleActivityReport(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r)

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	scans, err := s.store.ListJobScansByUser(r.Context(), identity.UserID)
	if err != nil {
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	var scan *types.JobScanRecord
	for i := range scans {
		if scans[i].ID == id {
			scan = &scans[i]
			break
		}
	}
	if scan == nil {
		errorResponse(w, http.StatusNotFound, "job scan not found")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "fraudguard-report-"+id.String()+".txt"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(renderJobScanReport(scan)))
}

// renderJobScanReport formats a job scan as a downloadable text report.
// The verdict is re-derived from the stored risk rate.
func renderJobScanReport(scan *types.JobScanRecord) string {
	res := risk.Classify(scan.RiskRate)

	var sb strings.Builder
	sb.WriteString("FraudGuard Analysis Report\n")
	sb.WriteString("==========================\n\n")
	fmt.Fprintf(&sb, "Scanned:    %s\n", scan.CreatedAt.Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&sb, "Job Title:  %s\n", scan.JobTitle)
	if scan.CompanyName != "" {
		fmt.Fprintf(&sb, "Company:    %s\n", scan.CompanyName)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Verdict:    %s\n", res.Verdict)
	fmt.Fprintf(&sb, "Risk Rate:  %.0f/100 (%s risk)\n", scan.RiskRate, res.Level)
	fmt.Fprintf(&sb, "Confidence: %.0f%%\n", scan.ConfidenceScore)

	if len(scan.Explanations) > 0 {
		sb.WriteString("\nFindings:\n")
		for _, e := range scan.Explanations {
			sb.WriteString("  - " + e + "\n")
		}
	}
	if len(scan.SafetyTips) > 0 {
		sb.WriteString("\nSafety Tips:\n")
		for _, tip := range scan.SafetyTips {
			sb.WriteString("  - " + tip + "\n")
		}
	}
	return sb.String()
}
