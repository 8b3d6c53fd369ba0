package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/christopher-nones/resume-scorer/internal/config"
	"github.com/christopher-nones/resume-scorer/internal/export"
	"github.com/christopher-nones/resume-scorer/internal/ingestion"
	"github.com/christopher-nones/resume-scorer/internal/models"
)

const (
	apiKeyHeader = "X-API-Key"
	xlsxMIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Evaluator is the scoring pipeline behind the HTTP surface. Satisfied by
// *scoring.Scorer.
type Evaluator interface {
	ExtractCriteria(ctx context.Context, jobDescription string, additionalCriteria []string) (models.CriteriaList, error)
	ScoreResumes(ctx context.Context, docs []models.ExtractedDocument, criteria []string, jobTitle string) []models.CandidateResult
}

// Server handles HTTP requests.
type Server struct {
	cfg       *config.Config
	evaluator Evaluator
}

// NewServer creates a new API server.
func NewServer(cfg *config.Config, evaluator Evaluator) *Server {
	return &Server{cfg: cfg, evaluator: evaluator}
}

// Router returns the HTTP router.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /extract-criteria", s.requireAPIKey(http.HandlerFunc(s.handleExtractCriteria)))
	mux.Handle("POST /score-resumes", s.requireAPIKey(http.HandlerFunc(s.handleScoreResumes)))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /", s.handleRoot)

	return s.loggingMiddleware(mux)
}

// handleRoot provides API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "Resume Scoring API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"POST /extract-criteria": "Extract ranking criteria from a job description document",
			"POST /score-resumes":    "Score resumes against criteria, returns an Excel report",
			"GET /health":            "Health check",
		},
	})
}

// handleHealth provides a health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleExtractCriteria accepts one job description document plus optional
// additional criteria and returns the extracted criteria list.
func (s *Server) handleExtractCriteria(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.Server.MaxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse form: %v", err))
		return
	}

	fileHeaders := r.MultipartForm.File["file"]
	if len(fileHeaders) == 0 {
		s.respondError(w, http.StatusBadRequest, "No job description file provided")
		return
	}

	format, err := ingestion.FormatFromFilename(fileHeaders[0].Filename)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Only PDF and DOCX files are supported")
		return
	}

	data, err := readMultipartFile(fileHeaders[0])
	if err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read uploaded file: %v", err))
		return
	}

	jobDescription, err := ingestion.ExtractText(data, format)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	additionalCriteria := r.MultipartForm.Value["additional_criteria"]

	criteria, err := s.evaluator.ExtractCriteria(r.Context(), jobDescription, additionalCriteria)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("All LLM attempts failed: %v", err))
		return
	}

	s.respondJSON(w, http.StatusOK, criteria)
}

// handleScoreResumes accepts a criteria list plus resume files and streams
// back the scored workbook.
func (s *Server) handleScoreResumes(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.Server.MaxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse form: %v", err))
		return
	}

	criteria := r.MultipartForm.Value["criteria"]
	if len(criteria) == 0 {
		s.respondError(w, http.StatusBadRequest, "No criteria provided")
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		s.respondError(w, http.StatusBadRequest, "No resume files provided")
		return
	}

	files := make([]ingestion.UploadedFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		data, err := readMultipartFile(fh)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read uploaded file %s: %v", fh.Filename, err))
			return
		}
		files = append(files, ingestion.UploadedFile{Filename: fh.Filename, Data: data})
	}

	// Format violations reject the whole batch before any scoring happens.
	docs, err := ingestion.ProcessFiles(files)
	if err != nil {
		if errors.Is(err, ingestion.ErrUnsupportedFormat) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	results := s.evaluator.ScoreResumes(r.Context(), docs, criteria, r.FormValue("job_title"))

	summary, detailed, err := export.BuildTables(results)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	workbook, err := export.WriteWorkbook(summary, detailed)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("Error generating Excel file: %v", err))
		return
	}

	w.Header().Set("Content-Type", xlsxMIMEType)
	w.Header().Set("Content-Disposition", "attachment; filename=resume_scores.xlsx")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(workbook); err != nil {
		log.Error().Err(err).Msg("failed to write workbook response")
	}
}

// requireAPIKey gates a handler behind the shared-secret header.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Server.APISecret == "" {
			s.respondError(w, http.StatusInternalServerError, "API Key is missing")
			return
		}
		if r.Header.Get(apiKeyHeader) != s.cfg.Server.APISecret {
			s.respondError(w, http.StatusForbidden, "Unauthorized: Invalid API Key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// respondJSON sends a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// respondError sends an error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"detail": message})
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
