// Package api provides HTTP handlers and the main API server logic for
// CallPrep.
//
// It exposes endpoints for identity validation and full call-prep
// generation. The API integrates with the identity, lookup, render, and
// genai modules.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/BTreeMap/CallPrep/internal/identity"
	"github.com/BTreeMap/CallPrep/internal/models"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// DefaultRequestTimeout bounds a single call-prep request end to end.
const DefaultRequestTimeout = 60 * time.Second

// recordFetcher retrieves the aggregated record for a validated
// identity. The lookup client satisfies this.
type recordFetcher interface {
	Fetch(ctx context.Context, id models.Identity) (*models.PatientRecord, error)
}

// summarizer produces the narrative briefing for a record. The genai
// client satisfies this; a nil summarizer disables generation.
type summarizer interface {
	ClinicalSummary(ctx context.Context, record *models.PatientRecord) (string, error)
}

// Opts holds configuration options for the API server.
type Opts struct {
	Addr      string
	Validator *identity.Validator
	Fetcher   recordFetcher
	Summarize summarizer
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithValidator sets the identity validator.
func WithValidator(v *identity.Validator) Option {
	return func(o *Opts) { o.Validator = v }
}

// WithLookupClient sets the aggregator client used to fetch records.
func WithLookupClient(f recordFetcher) Option {
	return func(o *Opts) { o.Fetcher = f }
}

// WithGenAIClient sets the summary generator. Optional: without it the
// call-prep endpoint returns the deterministic snapshot only.
func WithGenAIClient(s summarizer) Option {
	return func(o *Opts) { o.Summarize = s }
}

// Server handles CallPrep HTTP requests.
type Server struct {
	addr      string
	validator *identity.Validator
	fetcher   recordFetcher
	summarize summarizer
}

// NewServer creates an API server from the given options.
func NewServer(opts ...Option) (*Server, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Validator == nil {
		cfg.Validator = identity.New()
	}
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("lookup client must be provided")
	}
	return &Server{
		addr:      cfg.Addr,
		validator: cfg.Validator,
		fetcher:   cfg.Fetcher,
		summarize: cfg.Summarize,
	}, nil
}

// Handler returns the server's route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/validate", s.validateHandler)
	mux.HandleFunc("/callprep", s.callPrepHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// Run starts the HTTP server and blocks until it exits.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  DefaultRequestTimeout,
		WriteTimeout: DefaultRequestTimeout,
	}
	slog.Info("CallPrep API running", "addr", s.addr)
	return srv.ListenAndServe()
}
