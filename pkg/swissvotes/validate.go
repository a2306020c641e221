package swissvotes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// requiredFields lists the dataset fields every published vote must carry.
var requiredFields = []struct {
	name  string
	empty func(*VoteRecord) bool
}{
	{"vote_id", func(r *VoteRecord) bool { return r.VoteID == "" }},
	{"offizieller_titel", func(r *VoteRecord) bool { return r.OffiziellerTitel == "" }},
	{"abstimmungsdatum", func(r *VoteRecord) bool { return r.Abstimmungsdatum == "" }},
	{"rechtsform", func(r *VoteRecord) bool { return r.Rechtsform == "" }},
	{"politikbereich", func(r *VoteRecord) bool { return r.Politikbereich == "" }},
	{"abstimmungstext_pdf", func(r *VoteRecord) bool { return r.AbstimmungstextPDF == "" }},
	{"botschaft_des_bundesrats_pdf", func(r *VoteRecord) bool { return r.BotschaftBundesratPDF == "" }},
	{"abstimmungsbuechlein_pdf", func(r *VoteRecord) bool { return r.AbstimmungsbuechleinPDF == "" }},
	{"parteiparolen", func(r *VoteRecord) bool { return len(r.Parteiparolen) == 0 }},
}

// pdfLinkFields are the document links probed for reachable PDF content.
var pdfLinkFields = []struct {
	name string
	get  func(*VoteRecord) string
}{
	{"abstimmungstext_pdf", func(r *VoteRecord) string { return r.AbstimmungstextPDF }},
	{"botschaft_des_bundesrats_pdf", func(r *VoteRecord) string { return r.BotschaftBundesratPDF }},
	{"abstimmungsbuechlein_pdf", func(r *VoteRecord) string { return r.AbstimmungsbuechleinPDF }},
}

// Validator checks dataset records for completeness and probes their PDF
// links. Link probing can be disabled for offline runs.
type Validator struct {
	client    *resty.Client
	logger    *slog.Logger
	skipLinks bool
}

// NewValidator returns a Validator probing links with the given timeout.
// A nil logger falls back to slog.Default.
func NewValidator(timeout time.Duration, skipLinks bool, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		client:    resty.New().SetTimeout(timeout).SetHeader("User-Agent", defaultUserAgent),
		logger:    logger,
		skipLinks: skipLinks,
	}
}

// VoteReport collects the validation errors of one vote.
type VoteReport struct {
	VoteID string
	Title  string
	Errors []string
}

// ValidationReport summarizes a validation run over a dataset.
type ValidationReport struct {
	TotalVotes int
	Issues     []VoteReport
}

// TotalErrors counts the individual errors across all reported votes.
func (r *ValidationReport) TotalErrors() int {
	total := 0
	for _, issue := range r.Issues {
		total += len(issue.Errors)
	}
	return total
}

// Validate checks every record for its required fields and, unless link
// probing is disabled, verifies that each PDF link resolves to PDF content.
// A field already reported as missing is not probed again as a link.
func (v *Validator) Validate(ctx context.Context, ds *Dataset) *ValidationReport {
	report := &ValidationReport{TotalVotes: len(ds.FederalInitiatives)}

	for i := range ds.FederalInitiatives {
		vote := &ds.FederalInitiatives[i]

		errs := validateVoteFields(vote)
		if !v.skipLinks {
			errs = append(errs, v.validatePDFLinks(ctx, vote)...)
		}
		if len(errs) == 0 {
			continue
		}
		report.Issues = append(report.Issues, VoteReport{
			VoteID: vote.VoteID,
			Title:  vote.OffiziellerTitel,
			Errors: errs,
		})
	}

	return report
}

func validateVoteFields(vote *VoteRecord) []string {
	var errs []string
	for _, field := range requiredFields {
		if field.empty(vote) {
			errs = append(errs, fmt.Sprintf("Missing or empty: %s", field.name))
		}
	}
	return errs
}

func (v *Validator) validatePDFLinks(ctx context.Context, vote *VoteRecord) []string {
	var errs []string
	for _, field := range pdfLinkFields {
		url := field.get(vote)
		if url == "" {
			continue
		}
		if !strings.HasSuffix(url, ".pdf") {
			errs = append(errs, fmt.Sprintf("%s is not a valid PDF link: %s", field.name, url))
			continue
		}

		status, contentType, err := v.probePDF(ctx, url)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s failed request: %s", field.name, err))
			continue
		}
		if status != http.StatusOK {
			errs = append(errs, fmt.Sprintf("%s request failed: %s (status %d)", field.name, url, status))
		} else if !strings.Contains(strings.ToLower(contentType), "pdf") {
			errs = append(errs, fmt.Sprintf("%s not returning PDF content: %s (type %s)", field.name, url, contentType))
		}
	}
	return errs
}

// probePDF issues a HEAD request and falls back to a streamed GET when the
// server rejects HEAD with 405 or 403. The body of the fallback GET is
// closed without being read.
func (v *Validator) probePDF(ctx context.Context, url string) (int, string, error) {
	res, err := v.client.R().SetContext(ctx).Head(url)
	if err != nil {
		return 0, "", err
	}
	status := res.StatusCode()
	contentType := res.Header().Get("Content-Type")

	if status == http.StatusMethodNotAllowed || status == http.StatusForbidden {
		v.logger.Debug("HEAD rejected, retrying with GET",
			slog.String("url", url),
			slog.Int("status", status))
		get, err := v.client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(url)
		if err != nil {
			return 0, "", err
		}
		defer get.RawBody().Close()
		status = get.StatusCode()
		contentType = get.Header().Get("Content-Type")
	}

	return status, contentType, nil
}
