package swissvotes

import (
	"fmt"
	"log/slog"
	"time"
)

// DiscoveryFilter selects which listing rows count as discoverable votes.
// The two variants observed in the wild disagree, so the choice is explicit
// configuration rather than a silent default.
type DiscoveryFilter int

const (
	// FilterUpcoming accepts only rows whose ballot type matches exactly,
	// whose three outcome columns are still blank placeholders, and whose
	// vote date is today or later.
	FilterUpcoming DiscoveryFilter = iota
	// FilterTypeOnly accepts every row whose ballot type matches exactly,
	// regardless of date or outcome columns.
	FilterTypeOnly
)

// String implements fmt.Stringer for DiscoveryFilter.
func (f DiscoveryFilter) String() string {
	switch f {
	case FilterUpcoming:
		return "upcoming"
	case FilterTypeOnly:
		return "type-only"
	default:
		return fmt.Sprintf("unknown(%d)", int(f))
	}
}

// ParseDiscoveryFilter converts a flag value into a DiscoveryFilter.
func ParseDiscoveryFilter(s string) (DiscoveryFilter, error) {
	switch s {
	case "upcoming":
		return FilterUpcoming, nil
	case "type-only":
		return FilterTypeOnly, nil
	default:
		return 0, fmt.Errorf("unknown discovery filter %q (valid: upcoming, type-only)", s)
	}
}

const (
	defaultBaseURL     = "https://swissvotes.ch"
	defaultBallotType  = "Volksinitiative"
	defaultHTTPTimeout = 20 * time.Second
	defaultPDFTimeout  = 30 * time.Second
	defaultUserAgent   = "civic-mcp-scraper/1.0"
)

// Config holds the scraper pipeline configuration. Use NewConfig with option
// functions; the zero value is not usable.
type Config struct {
	// BaseURL is the origin the listing and detail pages are fetched from.
	BaseURL string
	// BallotType is the exact listing-column string a row must carry.
	BallotType string
	// HTTPTimeout bounds listing and detail page fetches.
	HTTPTimeout time.Duration
	// PDFTimeout bounds brochure PDF downloads.
	PDFTimeout time.Duration
	// Languages are the brochure language codes to extract, in order.
	Languages []string
	// Filter selects the discovery row filter variant.
	Filter DiscoveryFilter
	// UserAgent is sent on every outgoing request.
	UserAgent string
	// Logger receives pipeline progress. Defaults to slog.Default().
	Logger *slog.Logger
}

// ConfigOptionFunc is a function used as an option for NewConfig.
type ConfigOptionFunc func(*Config)

// NewConfig creates a new scraper config with the provided options applied
// over the defaults.
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		BaseURL:     defaultBaseURL,
		BallotType:  defaultBallotType,
		HTTPTimeout: defaultHTTPTimeout,
		PDFTimeout:  defaultPDFTimeout,
		Languages:   []string{"de", "fr", "it"},
		Filter:      FilterUpcoming,
		UserAgent:   defaultUserAgent,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// WithBaseURL specifies the site origin to scrape.
// The default is https://swissvotes.ch.
func WithBaseURL(baseURL string) ConfigOptionFunc {
	return func(c *Config) {
		c.BaseURL = baseURL
	}
}

// WithBallotType specifies the exact ballot-type string a listing row must
// match. The default is "Volksinitiative".
func WithBallotType(ballotType string) ConfigOptionFunc {
	return func(c *Config) {
		c.BallotType = ballotType
	}
}

// WithHTTPTimeout specifies the timeout for listing and detail page fetches.
// The default is 20 seconds.
func WithHTTPTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

// WithPDFTimeout specifies the timeout for brochure PDF downloads.
// The default is 30 seconds.
func WithPDFTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.PDFTimeout = timeout
	}
}

// WithLanguages specifies which brochure languages to extract, in order.
// The default is de, fr, it.
func WithLanguages(languages []string) ConfigOptionFunc {
	return func(c *Config) {
		c.Languages = languages
	}
}

// WithDiscoveryFilter specifies the discovery filter variant.
// The default is FilterUpcoming.
func WithDiscoveryFilter(filter DiscoveryFilter) ConfigOptionFunc {
	return func(c *Config) {
		c.Filter = filter
	}
}

// WithUserAgent specifies the User-Agent header for outgoing requests.
func WithUserAgent(userAgent string) ConfigOptionFunc {
	return func(c *Config) {
		c.UserAgent = userAgent
	}
}

// WithLogger specifies the logger the pipeline reports progress to.
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.Logger = logger
	}
}
