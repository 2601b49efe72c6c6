package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"example.com/pdbgate/internal/palm"
	"example.com/pdbgate/internal/report"
)

// batchRecord is one NDJSON line of a batch response. Exactly one of
// Extraction or Error is set on file records; the final line carries the
// summary.
type batchRecord struct {
	Type       string             `json:"type"`
	File       string             `json:"file,omitempty"`
	Extraction *report.Extraction `json:"extraction,omitempty"`
	Error      string             `json:"error,omitempty"`
	Summary    *batchSummary      `json:"summary,omitempty"`
}

type batchSummary struct {
	Total      int `json:"total"`
	Recognized int `json:"recognized"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// handleBatchExtract runs extractions for many inputs concurrently and
// streams one NDJSON record per file as results arrive, followed by a
// summary record. Record order follows completion, not request order.
func (s *Server) handleBatchExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Inputs []string `json:"inputs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid json: %v", err), http.StatusBadRequest)
		return
	}
	if len(req.Inputs) == 0 {
		http.Error(w, "inputs required", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	writer := NewNDJSONWriter(w)

	results := make(chan batchOutcome, len(req.Inputs))
	jobs := make(chan string)
	workers := s.concurrency
	if workers > len(req.Inputs) {
		workers = len(req.Inputs)
	}
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for token := range jobs {
				results <- s.batchOne(token)
			}
		}()
	}
	go func() {
		for _, token := range req.Inputs {
			jobs <- token
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	summary := batchSummary{Total: len(req.Inputs)}
	for out := range results {
		switch {
		case out.recognized:
			summary.Recognized++
		case out.skipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
		if err := writer.WriteObject(out.record); err != nil {
			return
		}
	}
	_ = writer.WriteObject(batchRecord{Type: "summary", Summary: &summary})
}

type batchOutcome struct {
	record     batchRecord
	recognized bool
	skipped    bool
}

func (s *Server) batchOne(token string) batchOutcome {
	out := batchOutcome{record: batchRecord{Type: "file", File: token}}
	path, err := s.resolvePath(token)
	if err != nil {
		out.record.Error = err.Error()
		return out
	}
	ext, err := s.extractOne(path)
	if errors.Is(err, palm.ErrNotRecognized) {
		out.record.Error = err.Error()
		out.skipped = true
		return out
	}
	if err != nil {
		out.record.Error = err.Error()
		return out
	}
	out.record.Extraction = &ext
	out.recognized = true
	return out
}
