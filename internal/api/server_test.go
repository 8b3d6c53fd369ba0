package api

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/christopher-nones/resume-scorer/internal/config"
	"github.com/christopher-nones/resume-scorer/internal/models"
)

const testAPIKey = "test-secret"

// stubEvaluator fakes the scoring pipeline behind the HTTP surface.
type stubEvaluator struct {
	criteria       models.CriteriaList
	criteriaErr    error
	gotDescription string
	gotAdditional  []string

	results     []models.CandidateResult
	gotDocs     []models.ExtractedDocument
	gotCriteria []string
	gotJobTitle string
}

func (s *stubEvaluator) ExtractCriteria(_ context.Context, jobDescription string, additionalCriteria []string) (models.CriteriaList, error) {
	s.gotDescription = jobDescription
	s.gotAdditional = additionalCriteria
	return s.criteria, s.criteriaErr
}

func (s *stubEvaluator) ScoreResumes(_ context.Context, docs []models.ExtractedDocument, criteria []string, jobTitle string) []models.CandidateResult {
	s.gotDocs = docs
	s.gotCriteria = criteria
	s.gotJobTitle = jobTitle
	return s.results
}

func newTestServer(evaluator Evaluator) *Server {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8000",
			APISecret:      testAPIKey,
			MaxUploadBytes: 32 << 20,
		},
	}
	return NewServer(cfg, evaluator)
}

// buildDocx assembles a minimal DOCX archive so handlers can run real text
// extraction on uploads.
func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString("<w:p><w:r><w:t>" + p + "</w:t></w:r></w:p>")
	}
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body.String() + `</w:body></w:document>`
	rels := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"word/document.xml":            document,
		"word/_rels/document.xml.rels": rels,
	} {
		f, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create zip entry %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

type formFile struct {
	field    string
	filename string
	data     []byte
}

// multipartBody builds a multipart request body from form values and files.
func multipartBody(t *testing.T, values map[string][]string, files []formFile) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, vs := range values {
		for _, v := range vs {
			if err := mw.WriteField(field, v); err != nil {
				t.Fatalf("failed to write field %s: %v", field, err)
			}
		}
	}
	for _, file := range files {
		part, err := mw.CreateFormFile(file.field, file.filename)
		if err != nil {
			t.Fatalf("failed to create form file %s: %v", file.filename, err)
		}
		if _, err := part.Write(file.data); err != nil {
			t.Fatalf("failed to write form file %s: %v", file.filename, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func doRequest(t *testing.T, handler http.Handler, method, path, apiKey string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if apiKey != "" {
		req.Header.Set(apiKeyHeader, apiKey)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func errorDetail(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var payload map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("response body is not a JSON error: %v", err)
	}
	return payload["detail"]
}

// TestAuth tests the API key gate on the protected endpoints
func TestAuth(t *testing.T) {
	router := newTestServer(&stubEvaluator{}).Router()

	tests := []struct {
		name       string
		path       string
		apiKey     string
		wantStatus int
		wantDetail string
	}{
		{name: "Missing key on extract", path: "/extract-criteria", wantStatus: http.StatusForbidden, wantDetail: "Unauthorized: Invalid API Key"},
		{name: "Wrong key on extract", path: "/extract-criteria", apiKey: "wrong", wantStatus: http.StatusForbidden, wantDetail: "Unauthorized: Invalid API Key"},
		{name: "Missing key on score", path: "/score-resumes", wantStatus: http.StatusForbidden, wantDetail: "Unauthorized: Invalid API Key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, router, http.MethodPost, tt.path, tt.apiKey, nil, "")
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if got := errorDetail(t, rr); got != tt.wantDetail {
				t.Errorf("detail = %q, want %q", got, tt.wantDetail)
			}
		})
	}
}

// TestAuth_UnconfiguredSecret tests the server-side misconfiguration response
func TestAuth_UnconfiguredSecret(t *testing.T) {
	server := NewServer(&config.Config{}, &stubEvaluator{})
	rr := doRequest(t, server.Router(), http.MethodPost, "/extract-criteria", "anything", nil, "")

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if got := errorDetail(t, rr); got != "API Key is missing" {
		t.Errorf("detail = %q, want %q", got, "API Key is missing")
	}
}

// TestHealth tests that the health endpoint is open
func TestHealth(t *testing.T) {
	router := newTestServer(&stubEvaluator{}).Router()
	rr := doRequest(t, router, http.MethodGet, "/health", "", nil, "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var payload map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["status"] != "healthy" {
		t.Errorf("status field = %q, want %q", payload["status"], "healthy")
	}
}

// TestExtractCriteria tests the happy path for criteria extraction
func TestExtractCriteria(t *testing.T) {
	evaluator := &stubEvaluator{
		criteria: models.CriteriaList{Criteria: []string{"Python experience", "SQL experience"}},
	}
	router := newTestServer(evaluator).Router()

	body, contentType := multipartBody(t,
		map[string][]string{"additional_criteria": {"AWS certification"}},
		[]formFile{{field: "file", filename: "job.docx", data: buildDocx(t, "Senior Python Engineer", "5+ years required")}},
	)
	rr := doRequest(t, router, http.MethodPost, "/extract-criteria", testAPIKey, body, contentType)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}
	var got models.CriteriaList
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(got.Criteria) != 2 || got.Criteria[0] != "Python experience" {
		t.Errorf("criteria = %v, want the stubbed list", got.Criteria)
	}
	if !strings.Contains(evaluator.gotDescription, "Senior Python Engineer") {
		t.Errorf("evaluator got description %q, want the extracted document text", evaluator.gotDescription)
	}
	if len(evaluator.gotAdditional) != 1 || evaluator.gotAdditional[0] != "AWS certification" {
		t.Errorf("additional criteria = %v, want the form values", evaluator.gotAdditional)
	}
}

// TestExtractCriteria_Validation tests the request validation failures
func TestExtractCriteria_Validation(t *testing.T) {
	tests := []struct {
		name       string
		files      []formFile
		wantDetail string
	}{
		{
			name:       "No file",
			wantDetail: "No job description file provided",
		},
		{
			name:       "Unsupported extension",
			files:      []formFile{{field: "file", filename: "job.txt", data: []byte("text")}},
			wantDetail: "Only PDF and DOCX files are supported",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestServer(&stubEvaluator{}).Router()
			body, contentType := multipartBody(t, nil, tt.files)
			rr := doRequest(t, router, http.MethodPost, "/extract-criteria", testAPIKey, body, contentType)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			if got := errorDetail(t, rr); got != tt.wantDetail {
				t.Errorf("detail = %q, want %q", got, tt.wantDetail)
			}
		})
	}
}

// TestExtractCriteria_LLMFailure tests the 500 when every provider fails
func TestExtractCriteria_LLMFailure(t *testing.T) {
	evaluator := &stubEvaluator{criteriaErr: errors.New("all LLM providers failed: deepseek: boom; openai: boom")}
	router := newTestServer(evaluator).Router()

	body, contentType := multipartBody(t, nil,
		[]formFile{{field: "file", filename: "job.docx", data: buildDocx(t, "Engineer")}},
	)
	rr := doRequest(t, router, http.MethodPost, "/extract-criteria", testAPIKey, body, contentType)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if got := errorDetail(t, rr); !strings.HasPrefix(got, "All LLM attempts failed:") {
		t.Errorf("detail = %q, want 'All LLM attempts failed:' prefix", got)
	}
}

// TestScoreResumes tests the happy path through to the workbook response
func TestScoreResumes(t *testing.T) {
	evaluator := &stubEvaluator{
		results: []models.CandidateResult{
			{
				CandidateName: "Jane Doe",
				Entries:       []models.ScoreEntry{{Criterion: "Python", Score: 4, Justification: "strong"}},
				TotalScore:    4,
			},
		},
	}
	router := newTestServer(evaluator).Router()

	body, contentType := multipartBody(t,
		map[string][]string{
			"criteria":  {"Python", "SQL"},
			"job_title": {"Backend Engineer"},
		},
		[]formFile{{field: "files", filename: "jane.docx", data: buildDocx(t, "Jane Doe", "Python engineer")}},
	)
	rr := doRequest(t, router, http.MethodPost, "/score-resumes", testAPIKey, body, contentType)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Type"); got != xlsxMIMEType {
		t.Errorf("Content-Type = %q, want %q", got, xlsxMIMEType)
	}
	if got := rr.Header().Get("Content-Disposition"); got != "attachment; filename=resume_scores.xlsx" {
		t.Errorf("Content-Disposition = %q", got)
	}
	if rr.Body.Len() == 0 {
		t.Error("response body is empty, want workbook bytes")
	}

	if len(evaluator.gotDocs) != 1 || evaluator.gotDocs[0].Filename != "jane.docx" {
		t.Errorf("evaluator got docs %v, want the uploaded resume", evaluator.gotDocs)
	}
	if len(evaluator.gotCriteria) != 2 {
		t.Errorf("evaluator got criteria %v, want both form values", evaluator.gotCriteria)
	}
	if evaluator.gotJobTitle != "Backend Engineer" {
		t.Errorf("evaluator got job title %q, want %q", evaluator.gotJobTitle, "Backend Engineer")
	}
}

// TestScoreResumes_Validation tests the request validation failures
func TestScoreResumes_Validation(t *testing.T) {
	tests := []struct {
		name       string
		values     map[string][]string
		files      []formFile
		wantDetail string
	}{
		{
			name:       "No criteria",
			files:      []formFile{{field: "files", filename: "a.docx", data: []byte("x")}},
			wantDetail: "No criteria provided",
		},
		{
			name:       "No files",
			values:     map[string][]string{"criteria": {"Python"}},
			wantDetail: "No resume files provided",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestServer(&stubEvaluator{}).Router()
			body, contentType := multipartBody(t, tt.values, tt.files)
			rr := doRequest(t, router, http.MethodPost, "/score-resumes", testAPIKey, body, contentType)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			if got := errorDetail(t, rr); got != tt.wantDetail {
				t.Errorf("detail = %q, want %q", got, tt.wantDetail)
			}
		})
	}
}

// TestScoreResumes_UnsupportedFormatRejectsBatch tests that one bad extension
// fails the whole upload before any scoring happens
func TestScoreResumes_UnsupportedFormatRejectsBatch(t *testing.T) {
	evaluator := &stubEvaluator{}
	router := newTestServer(evaluator).Router()

	body, contentType := multipartBody(t,
		map[string][]string{"criteria": {"Python"}},
		[]formFile{
			{field: "files", filename: "good.docx", data: buildDocx(t, "fine")},
			{field: "files", filename: "bad.txt", data: []byte("plain text")},
		},
	)
	rr := doRequest(t, router, http.MethodPost, "/score-resumes", testAPIKey, body, contentType)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if got := errorDetail(t, rr); !strings.Contains(got, "bad.txt") {
		t.Errorf("detail = %q, want the offending filename", got)
	}
	if evaluator.gotDocs != nil {
		t.Error("evaluator was called despite the format rejection")
	}
}

// TestScoreResumes_EmptyResults tests the 500 when no results can be rendered
func TestScoreResumes_EmptyResults(t *testing.T) {
	evaluator := &stubEvaluator{results: nil}
	router := newTestServer(evaluator).Router()

	body, contentType := multipartBody(t,
		map[string][]string{"criteria": {"Python"}},
		[]formFile{{field: "files", filename: "jane.docx", data: buildDocx(t, "Jane")}},
	)
	rr := doRequest(t, router, http.MethodPost, "/score-resumes", testAPIKey, body, contentType)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if got := errorDetail(t, rr); got != "no valid results were generated" {
		t.Errorf("detail = %q, want the empty-report message", got)
	}
}

// TestScoreResumes_ErroredCandidateStillInReport tests that error placeholders
// flow through to the workbook instead of aborting the request
func TestScoreResumes_ErroredCandidateStillInReport(t *testing.T) {
	evaluator := &stubEvaluator{
		results: []models.CandidateResult{
			{CandidateName: "broken", Error: "Failed to analyze: all LLM providers failed"},
		},
	}
	router := newTestServer(evaluator).Router()

	body, contentType := multipartBody(t,
		map[string][]string{"criteria": {"Python"}},
		[]formFile{{field: "files", filename: "broken.docx", data: buildDocx(t, "text")}},
	)
	rr := doRequest(t, router, http.MethodPost, "/score-resumes", testAPIKey, body, contentType)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Type"); got != xlsxMIMEType {
		t.Errorf("Content-Type = %q, want %q", got, xlsxMIMEType)
	}
}
