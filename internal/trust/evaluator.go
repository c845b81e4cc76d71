package trust

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/campushq/internship-portal/internal"
)

// Evaluator scores a recruiter's declared company identity 0-100. A score
// below the activation threshold holds the account for manual review.
type Evaluator interface {
	Score(ctx context.Context, companyName, website string) int
}

const (
	pointsTLS          = 20
	pointsDomainMature = 20
	pointsDomainYoung  = 10
	pointsDirectory    = 10
	maxScore           = 100

	matureDomainAgeDays = 365
	youngDomainAgeDays  = 180
)

// HTTPEvaluator runs three independent network checks against the declared
// website and company name. Every check degrades silently to zero points on
// failure: a flaky upstream must never block signup, it only lowers trust.
type HTTPEvaluator struct {
	cfg    internal.TrustConfig
	client *http.Client
	logger *slog.Logger
}

func NewHTTPEvaluator(cfg internal.TrustConfig, logger *slog.Logger) *HTTPEvaluator {
	return &HTTPEvaluator{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.CheckTimeout},
		logger: logger,
	}
}

func (e *HTTPEvaluator) Score(ctx context.Context, companyName, website string) int {
	domain := NormalizeDomain(website)
	if domain == "" {
		return 0
	}

	score := 0
	if e.hasValidTLS(ctx, domain) {
		score += pointsTLS
	}
	score += e.domainAgePoints(ctx, domain)
	if e.listedInDirectory(ctx, companyName) {
		score += pointsDirectory
	}

	if score > maxScore {
		score = maxScore
	}
	return score
}

// NormalizeDomain strips the scheme, a leading www, any path, and the port
// from a user-supplied website string.
func NormalizeDomain(website string) string {
	s := strings.TrimSpace(strings.ToLower(website))
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[:i]
	}
	if !strings.Contains(s, ".") {
		return ""
	}
	return s
}

// hasValidTLS succeeds only when the domain serves HTTPS with a certificate
// the standard roots accept.
func (e *HTTPEvaluator) hasValidTLS(ctx context.Context, domain string) bool {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.CheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, "https://"+domain, nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Debug("TLS check failed", "domain", domain, "error", err)
		return false
	}
	defer resp.Body.Close()
	return true
}

type whoisResponse struct {
	Success     bool   `json:"success"`
	CreatedDate string `json:"created_date"`
}

// domainAgePoints awards points on a registration-age ladder: domains older
// than a year score full points, older than six months half.
func (e *HTTPEvaluator) domainAgePoints(ctx context.Context, domain string) int {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.CheckTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/%s", strings.TrimRight(e.cfg.WhoisAPIURL, "/"), domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0
	}
	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Debug("whois lookup failed", "domain", domain, "error", err)
		return 0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0
	}

	var info whoisResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return 0
	}
	if !info.Success || info.CreatedDate == "" {
		return 0
	}

	created, err := parseWhoisDate(info.CreatedDate)
	if err != nil {
		return 0
	}

	ageDays := int(time.Since(created).Hours() / 24)
	switch {
	case ageDays > matureDomainAgeDays:
		return pointsDomainMature
	case ageDays > youngDomainAgeDays:
		return pointsDomainYoung
	default:
		return 0
	}
}

func parseWhoisDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", s)
}

// listedInDirectory searches for the company's professional directory page.
func (e *HTTPEvaluator) listedInDirectory(ctx context.Context, companyName string) bool {
	if strings.TrimSpace(companyName) == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.CheckTimeout)
	defer cancel()

	query := url.Values{}
	query.Set("q", fmt.Sprintf("%q site:linkedin.com/company", companyName))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.cfg.SearchURL+"?"+query.Encode(), nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; internship-portal/1.0)")

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Debug("directory search failed", "company", companyName, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false
	}
	return strings.Contains(string(body), "linkedin.com/company")
}
