package server

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/fraudguard/internal/analysis"
	"github.com/jonathan/fraudguard/internal/server/middleware"
)

// analyzeJobRequest is the POST /analyze/job payload. Either a description,
// a posting URL, or a base64 screenshot must carry the content.
type analyzeJobRequest struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Salary      string `json:"salary"`
	Location    string `json:"location"`
	Email       string `json:"email"`
	Website     string `json:"website"`
	Description string `json:"description"`
	SourceType  string `json:"source_type"`
	URL         string `json:"url"`
	Screenshot  string `json:"screenshot"` // base64 PNG
}

// analyzeResumeRequest is the POST /analyze/resume payload.
type analyzeResumeRequest struct {
	JobTitle       string `json:"job_title"`
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description"`
}

// interviewPrepRequest is the POST /interview-prep payload.
type interviewPrepRequest struct {
	Role            string `json:"role"`
	ExperienceLevel string `json:"experience_level"`
}

// chatRequest is the POST /chat payload.
type chatRequest struct {
	Messages []analysis.Message `json:"messages"`
}

// callerID returns the authenticated user ID, or uuid.Nil for anonymous
// requests. Anonymous analyses run but are never persisted.
func callerID(r *http.Request) uuid.UUID {
	if identity, ok := middleware.IdentityFrom(r); ok {
		return identity.UserID
	}
	return uuid.Nil
}

// handleAnalyzeJob runs a job-fraud analysis. A posting URL is fetched and
// reduced to text first; a screenshot is forwarded as an inline image.
func (s *Server) handleAnalyzeJob(w http.ResponseWriter, r *http.Request) {
	var req analyzeJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := analysis.JobInput{
		Title:       req.Title,
		Company:     req.Company,
		Salary:      req.Salary,
		Location:    req.Location,
		Email:       req.Email,
		Website:     req.Website,
		Description: req.Description,
		SourceType:  req.SourceType,
	}

	if req.URL != "" {
		posting, err := s.fetcher.JobPosting(r.Context(), req.URL)
		if err != nil {
			log.Printf("[server] posting ingestion failed: %v", err)
			errorResponse(w, HTTPStatus(err), err.Error())
			return
		}
		if in.Title == "" {
			in.Title = posting.Title
		}
		if in.Description == "" {
			in.Description = posting.Description
		}
		if in.Website == "" {
			in.Website = req.URL
		}
		if in.SourceType == "" {
			in.SourceType = "url"
		}
	}

	if req.Screenshot != "" {
		data, err := base64.StdEncoding.DecodeString(req.Screenshot)
		if err != nil {
			errorResponse(w, http.StatusBadRequest, "screenshot is not valid base64")
			return
		}
		in.Screenshot = data
		if in.SourceType == "" {
			in.SourceType = "screenshot"
		}
	}

	result, err := s.analyzer.AnalyzeJob(r.Context(), callerID(r), in)
	if err != nil {
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, result)
}

// handleAnalyzeResume runs a resume-match analysis.
func (s *Server) handleAnalyzeResume(w http.ResponseWriter, r *http.Request) {
	var req analyzeResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.analyzer.AnalyzeResume(r.Context(), callerID(r), analysis.ResumeInput{
		JobTitle:       req.JobTitle,
		ResumeText:     req.ResumeText,
		JobDescription: req.JobDescription,
	})
	if err != nil {
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, result)
}

// handleInterviewPrep generates an interview-preparation module.
func (s *Server) handleInterviewPrep(w http.ResponseWriter, r *http.Request) {
	var req interviewPrepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, mod, err := s.analyzer.GenerateInterviewPrep(r.Context(), callerID(r), analysis.InterviewInput{
		Role:            req.Role,
		ExperienceLevel: req.ExperienceLevel,
	})
	if err != nil {
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	response := map[string]any{"prep": result}
	if mod != nil {
		response["module"] = mod
	}
	jsonResponse(w, http.StatusOK, response)
}

// handleListInterviewModules returns the caller's saved modules.
func (s *Server) handleListInterviewModules(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r)

	modules, err := s.store.ListInterviewModulesByUser(r.Context(), identity.UserID)
	if err != nil {
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, modules)
}

// handleDeleteInterviewModule deletes one of the caller's saved modules.
func (s *Server) handleDeleteInterviewModule(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r)

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid module id")
		return
	}

	modules, err := s.store.ListInterviewModulesByUser(r.Context(), identity.UserID)
	if err != nil {
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	owned := false
	for _, m := range modules {
		if m.ID == id {
			owned = true
			break
		}
	}
	if !owned {
		errorResponse(w, http.StatusNotFound, "module not found")
		return
	}

	if err := s.store.DeleteInterviewModule(r.Context(), id); err != nil {
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "module deleted"})
}

// handleChat produces a safety-assistant reply. Replies are not persisted.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := s.analyzer.Chat(r.Context(), req.Messages)
	if err != nil {
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"reply": reply})
}
