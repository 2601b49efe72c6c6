package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires HTTP routes to the server's handlers.
func NewRouter(s *Server) http.Handler {
	mux := http.NewServeMux()
	m := s.metrics
	mux.HandleFunc("/extract", m.Instrument("/extract", s.handleExtract))
	mux.HandleFunc("/batch-extract", m.Instrument("/batch-extract", s.handleBatchExtract))
	mux.HandleFunc("/report", m.Instrument("/report", s.handleReport))
	mux.HandleFunc("/formats", m.Instrument("/formats", s.handleFormats))
	mux.HandleFunc("/upload", m.Instrument("/upload", s.handleUpload))
	mux.HandleFunc("/artifacts/", m.Instrument("/artifacts", s.handleArtifacts))
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
