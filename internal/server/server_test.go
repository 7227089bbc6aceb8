package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klytics/sheetlens/internal/ai"
	"github.com/klytics/sheetlens/internal/analysis"
	"github.com/klytics/sheetlens/internal/formats/xlsx"
)

type stubProvider struct {
	reply      string
	err        error
	panicMsg   string
	lastPrompt string
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Infer(ctx context.Context, system string, messages []ai.Message, opts ai.InferOptions) (*ai.InferResult, error) {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	s.lastPrompt = messages[len(messages)-1].Content
	if s.err != nil {
		return nil, s.err
	}
	return &ai.InferResult{Content: s.reply, Model: "stub-1"}, nil
}

func newTestServer(p ai.Provider, maxUpload string) http.Handler {
	svc := analysis.New(analysis.Options{Provider: p, AnalyzeRows: 50, AskRows: 120})
	return New(Options{Service: svc, MaxUpload: maxUpload})
}

func sampleWorkbook(t *testing.T) []byte {
	t.Helper()
	data, err := xlsx.WriteBytes(&xlsx.Workbook{Sheets: []xlsx.Sheet{
		{Name: "Sales", Rows: [][]string{{"Region", "Total"}, {"North", "120"}, {"South", "95"}}},
		{Name: "Notes"},
	}})
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// multipartRequest builds a POST with the given form fields. A nil file omits the file part.
func multipartRequest(t *testing.T, path string, file []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if file != nil {
		fw, err := w.CreateFormFile("file", "book.xlsx")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(file); err != nil {
			t.Fatal(err)
		}
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
	}
	return out
}

func TestAnalyzeOK(t *testing.T) {
	p := &stubProvider{reply: "North leads."}
	srv := newTestServer(p, "")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, multipartRequest(t, "/analyze", sampleWorkbook(t), nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := decode(t, rec)["analysis"]; got != "North leads." {
		t.Errorf("analysis = %q", got)
	}
	if !strings.Contains(p.lastPrompt, "### SHEET: Sales\nRegion,Total\nNorth,120\nSouth,95\n") {
		t.Errorf("prompt missing sales block:\n%s", p.lastPrompt)
	}
	if !strings.Contains(p.lastPrompt, "### SHEET: Notes\n(empty)\n") {
		t.Errorf("prompt missing empty placeholder:\n%s", p.lastPrompt)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected a request id header")
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	srv := newTestServer(&stubProvider{}, "")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, multipartRequest(t, "/analyze", nil, map[string]string{"other": "x"}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode(t, rec)["error"]; got != "No file provided" {
		t.Errorf("error = %q", got)
	}
}

func TestAnalyzeNotMultipart(t *testing.T) {
	srv := newTestServer(&stubProvider{}, "")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode(t, rec)["error"]; got != "No file provided" {
		t.Errorf("error = %q", got)
	}
}

func TestAnalyzeUnreadableWorkbook(t *testing.T) {
	p := &stubProvider{reply: "unused"}
	srv := newTestServer(p, "")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, multipartRequest(t, "/analyze", []byte("plain text, not a workbook"), nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode(t, rec)["error"]; got == "" {
		t.Error("expected an error message")
	}
	if p.lastPrompt != "" {
		t.Error("model must not be called")
	}
}

func TestAnalyzeModelFailure(t *testing.T) {
	srv := newTestServer(&stubProvider{err: errors.New("upstream timeout")}, "")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, multipartRequest(t, "/analyze", sampleWorkbook(t), nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode(t, rec)["error"]; !strings.Contains(got, "upstream timeout") {
		t.Errorf("error = %q", got)
	}
}

func TestAskOK(t *testing.T) {
	p := &stubProvider{reply: "North"}
	srv := newTestServer(p, "")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, multipartRequest(t, "/ask", sampleWorkbook(t), map[string]string{"question": "Which region sold most?"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := decode(t, rec)["answer"]; got != "North" {
		t.Errorf("answer = %q", got)
	}
	if !strings.Contains(p.lastPrompt, "Question: Which region sold most?\n\nData:\n### SHEET: Sales") {
		t.Errorf("unexpected prompt:\n%s", p.lastPrompt)
	}
}

func TestAskMissingQuestion(t *testing.T) {
	srv := newTestServer(&stubProvider{}, "")

	for _, q := range []map[string]string{nil, {"question": "   "}} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, multipartRequest(t, "/ask", sampleWorkbook(t), q))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
		if got := decode(t, rec)["error"]; got != "No question provided" {
			t.Errorf("error = %q", got)
		}
	}
}

func TestAskChecksFileBeforeQuestion(t *testing.T) {
	srv := newTestServer(&stubProvider{}, "")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, multipartRequest(t, "/ask", nil, nil))

	if got := decode(t, rec)["error"]; got != "No file provided" {
		t.Errorf("error = %q", got)
	}
}

func TestBodyLimit(t *testing.T) {
	srv := newTestServer(&stubProvider{reply: "x"}, "1K")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, multipartRequest(t, "/analyze", bytes.Repeat([]byte("a"), 4096), nil))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestPanicRecovered(t *testing.T) {
	srv := newTestServer(&stubProvider{panicMsg: "boom"}, "")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, multipartRequest(t, "/analyze", sampleWorkbook(t), nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode(t, rec)["error"]; got != "internal server error" {
		t.Errorf("error = %q", got)
	}
}

func TestIndexAndPing(t *testing.T) {
	srv := newTestServer(&stubProvider{}, "")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("index status = %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Type"), "text/html") {
		t.Errorf("index content type = %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "/analyze") {
		t.Error("index page should post to /analyze")
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("ping status = %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&stubProvider{reply: "ok"}, "")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, multipartRequest(t, "/analyze", sampleWorkbook(t), nil))

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"sheetlens_requests_total", "sheetlens_preview_sheets_total", "sheetlens_model_duration_seconds"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
