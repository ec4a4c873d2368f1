// Package lookup wraps the healthcare data aggregator API for CallPrep.
//
// It fetches the aggregated patient record for a validated identity. The
// client is a thin, retry-free wrapper: callers own any back-off policy.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/BTreeMap/CallPrep/internal/models"
)

// DefaultTimeout bounds a single aggregator call when no HTTP client is
// supplied.
const DefaultTimeout = 30 * time.Second

// aggregatePath is the aggregator endpoint queried for both identity
// schemes.
const aggregatePath = "/patients/aggregate"

// ErrNotFound indicates the aggregator has no record for the identity.
var ErrNotFound = errors.New("no patient record found for the given identity")

// Opts holds configuration options for the lookup client.
type Opts struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Option defines a configuration option for the lookup client.
type Option func(*Opts)

// WithBaseURL sets the aggregator base URL.
func WithBaseURL(baseURL string) Option {
	return func(o *Opts) { o.BaseURL = baseURL }
}

// WithAPIKey sets the bearer token sent with each request.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithTimeout sets the per-request timeout used when no HTTP client is
// supplied.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) { o.Timeout = d }
}

// WithHTTPClient injects a custom HTTP client (tests use this).
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = c }
}

// Client fetches aggregated patient records over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a lookup client. BaseURL and APIKey fall back to the
// CALLPREP_API_BASE_URL and CALLPREP_API_KEY environment variables.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("CALLPREP_API_BASE_URL")
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("CALLPREP_API_KEY")
	}
	slog.Debug("Lookup client config loaded",
		"base_url_set", cfg.BaseURL != "",
		"api_key_set", cfg.APIKey != "")

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("aggregator base URL must be provided")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid aggregator base URL: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    httpClient,
	}, nil
}

// Fetch retrieves the aggregated record for a validated identity. The
// query parameters follow the identity's method: subscriber/member for
// the ID scheme, first/last/dob for name+DOB.
func (c *Client) Fetch(ctx context.Context, id models.Identity) (*models.PatientRecord, error) {
	query := url.Values{}
	switch id.Method {
	case models.MethodID:
		query.Set("subscriber_id", id.SubscriberID)
		query.Set("member_id", id.MemberID)
	case models.MethodNameDOB:
		query.Set("first_name", id.FirstName)
		query.Set("last_name", id.LastName)
		query.Set("dob", id.DOB)
	default:
		return nil, fmt.Errorf("unsupported identity method %q", id.Method)
	}

	reqURL := c.baseURL + aggregatePath + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build aggregator request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	slog.Debug("Lookup.Fetch: calling aggregator", "method", id.Method)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("aggregator request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		slog.Debug("Lookup.Fetch: no record found", "method", id.Method)
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Error("Lookup.Fetch: aggregator returned error status", "status", resp.StatusCode)
		return nil, fmt.Errorf("aggregator returned status %d: %s", resp.StatusCode, string(body))
	}

	var record models.PatientRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("failed to decode aggregator response: %w", err)
	}
	slog.Debug("Lookup.Fetch: record fetched", "subscriber_id_set", record.Demographics.SubscriberID != "")
	return &record, nil
}
