package server

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"example.com/pdbgate/internal/report"
)

// buildBook assembles a minimal Mobipocket container: an 86-byte header
// carrying the BOOKMOBI signature followed by one record with a MOBI
// sub-header and a trailing full name.
func buildBook(bookName string) []byte {
	header := make([]byte, 86)
	copy(header[60:], "BOOKMOBI")
	binary.BigEndian.PutUint16(header[76:], 1)
	binary.BigEndian.PutUint32(header[78:], 86)

	nameOff := uint32(280)
	record := make([]byte, int(nameOff)+len(bookName))
	binary.BigEndian.PutUint16(record[0:], 1)
	copy(record[16:], "MOBI")
	binary.BigEndian.PutUint32(record[20:], 232)
	binary.BigEndian.PutUint32(record[28:], 1252)
	binary.BigEndian.PutUint32(record[84:], nameOff)
	binary.BigEndian.PutUint32(record[88:], uint32(len(bookName)))
	copy(record[nameOff:], bookName)
	return append(header, record...)
}

func writeBook(t *testing.T, name, bookName string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, buildBook(bookName), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := NewServer(Options{StorageDir: filepath.Join(t.TempDir(), "storage")})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleExtract(t *testing.T) {
	srv := newTestServer(t)
	router := NewRouter(srv)
	input := writeBook(t, "book.mobi", "Server Test Book")

	rec := postJSON(t, router, "/extract", map[string]string{"input": input})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var ext report.Extraction
	if err := json.NewDecoder(rec.Body).Decode(&ext); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if ext.Result == nil || ext.Result.Format != "Mobipocket" {
		t.Fatalf("result = %+v", ext.Result)
	}
	if got := ext.Result.Fields["BookName"]; got != "Server Test Book" {
		t.Fatalf("BookName = %v", got)
	}
	if ext.Sha256 == "" || ext.Size == 0 {
		t.Fatalf("missing digest or size: %+v", ext)
	}
	if !ext.Checks.Summary.Pass {
		t.Fatalf("checks did not pass: %+v", ext.Checks)
	}
}

func TestHandleExtractUnrecognized(t *testing.T) {
	srv := newTestServer(t)
	router := NewRouter(srv)
	path := filepath.Join(t.TempDir(), "noise.bin")
	if err := os.WriteFile(path, []byte("not a database"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	rec := postJSON(t, router, "/extract", map[string]string{"input": path})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleExtractMissingInput(t *testing.T) {
	srv := newTestServer(t)
	router := NewRouter(srv)

	rec := postJSON(t, router, "/extract", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUploadThenExtract(t *testing.T) {
	srv := newTestServer(t)
	router := NewRouter(srv)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "uploaded.mobi")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(buildBook("Uploaded Book")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status %d: %s", rec.Code, rec.Body.String())
	}
	var uploaded struct {
		Files []ArtifactRef `json:"files"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&uploaded); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if len(uploaded.Files) != 1 {
		t.Fatalf("uploaded files = %+v", uploaded.Files)
	}

	rec = postJSON(t, router, "/extract", map[string]string{"input": uploaded.Files[0].ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("extract status %d: %s", rec.Code, rec.Body.String())
	}
	var ext report.Extraction
	if err := json.NewDecoder(rec.Body).Decode(&ext); err != nil {
		t.Fatalf("decode extraction: %v", err)
	}
	if got := ext.Result.Fields["BookName"]; got != "Uploaded Book" {
		t.Fatalf("BookName = %v", got)
	}
}

func postUpload(t *testing.T, handler http.Handler, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestUploadRejectsUnknownSignature(t *testing.T) {
	srv := newTestServer(t)
	router := NewRouter(srv)

	junk := bytes.Repeat([]byte("not a container "), 16)
	rec := postUpload(t, router, "junk.mobi", junk)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422: %s", rec.Code, rec.Body.String())
	}
	if arts := srv.listArtifacts(); len(arts) != 0 {
		t.Fatalf("rejected upload left artifacts: %+v", arts)
	}
}

func TestUploadRejectsForeignExtension(t *testing.T) {
	srv := newTestServer(t)
	router := NewRouter(srv)

	rec := postUpload(t, router, "notes.txt", buildBook("Disguised Book"))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422: %s", rec.Code, rec.Body.String())
	}
	if arts := srv.listArtifacts(); len(arts) != 0 {
		t.Fatalf("rejected upload left artifacts: %+v", arts)
	}
}

func TestHandleBatchExtract(t *testing.T) {
	srv := newTestServer(t)
	router := NewRouter(srv)
	good := writeBook(t, "good.mobi", "Batch Book")
	bad := filepath.Join(t.TempDir(), "bad.bin")
	if err := os.WriteFile(bad, []byte("junk"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	rec := postJSON(t, router, "/batch-extract", map[string]any{"inputs": []string{good, bad}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Fatalf("content type %q", ct)
	}
	var records []batchRecord
	scanner := bufio.NewScanner(rec.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var record batchRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("decode line %q: %v", line, err)
		}
		records = append(records, record)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	last := records[len(records)-1]
	if last.Type != "summary" || last.Summary == nil {
		t.Fatalf("last record = %+v", last)
	}
	if last.Summary.Total != 2 || last.Summary.Recognized != 1 || last.Summary.Skipped != 1 {
		t.Fatalf("summary = %+v", *last.Summary)
	}
}

func TestHandleReportProducesArtifacts(t *testing.T) {
	srv := newTestServer(t)
	router := NewRouter(srv)
	input := writeBook(t, "book.mobi", "Report Book")

	rec := postJSON(t, router, "/report", map[string]string{"input": input})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Extraction report.Extraction `json:"extraction"`
		Artifacts  []ArtifactRef     `json:"artifacts"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Artifacts) != 2 {
		t.Fatalf("artifacts = %+v", resp.Artifacts)
	}
	for _, art := range resp.Artifacts {
		req := httptest.NewRequest(http.MethodGet, "/artifacts/"+art.ID, nil)
		dl := httptest.NewRecorder()
		router.ServeHTTP(dl, req)
		if dl.Code != http.StatusOK {
			t.Fatalf("download %s status %d", art.Name, dl.Code)
		}
		if dl.Body.Len() == 0 {
			t.Fatalf("download %s is empty", art.Name)
		}
	}
}

func TestHandleFormats(t *testing.T) {
	srv := newTestServer(t)
	router := NewRouter(srv)

	req := httptest.NewRequest(http.MethodGet, "/formats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var formats []string
	if err := json.NewDecoder(rec.Body).Decode(&formats); err != nil {
		t.Fatalf("decode formats: %v", err)
	}
	found := false
	for _, f := range formats {
		if f == "Mobipocket" {
			found = true
		}
	}
	if !found {
		t.Fatalf("formats missing Mobipocket: %v", formats)
	}
}

func TestHandleHealthz(t *testing.T) {
	srv := newTestServer(t)
	router := NewRouter(srv)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
}
