// Package linkcheck implements reachability probing for study material
// references. The checker rules on one reference at a time: a reference
// is acceptable only when it is a well-formed URL and a single probe
// returns HTTP 200. There are no retries; a transient failure makes the
// reference invalid for this run and the next pipeline run probes again.
package linkcheck

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// CheckerConfig contains configuration for the link checker.
type CheckerConfig struct {
	// Timeout is the per-probe HTTP timeout.
	Timeout time.Duration

	// UserAgent is sent with every probe.
	UserAgent string

	// AllowedHosts restricts probing to the listed hostnames.
	// Empty means any host is acceptable.
	AllowedHosts []string

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultCheckerConfig returns sensible defaults.
func DefaultCheckerConfig() CheckerConfig {
	return CheckerConfig{
		Timeout:   5 * time.Second,
		UserAgent: "study-buddy-linkcheck/1.0",
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// VERDICT
// ══════════════════════════════════════════════════════════════════════════════

// Result is the checker's verdict on one reference.
type Result struct {
	// OK - the reference is well-formed and reachable.
	OK bool

	// Reason - short explanation when not OK.
	Reason string

	// StatusCode - the final HTTP status, 0 when no response arrived.
	StatusCode int

	// ProbedURL - the URL actually probed, after normalization.
	// Diagnostics only. The stored reference is never rewritten.
	ProbedURL string
}

// ══════════════════════════════════════════════════════════════════════════════
// CHECKER
// ══════════════════════════════════════════════════════════════════════════════

// Checker probes references over HTTP.
type Checker struct {
	config     CheckerConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewChecker creates a new link checker.
func NewChecker(config CheckerConfig) *Checker {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}

	return &Checker{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: config.Logger.With("component", "linkcheck"),
	}
}

// Check probes a single reference. It never returns an error: every
// failure mode is a verdict, not an exception.
func (c *Checker) Check(ctx context.Context, reference string) Result {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return Result{OK: false, Reason: "empty reference"}
	}

	probeURL, err := normalizeForProbe(reference)
	if err != nil {
		return Result{OK: false, Reason: fmt.Sprintf("malformed reference: %v", err)}
	}

	if len(c.config.AllowedHosts) > 0 && !c.hostAllowed(probeURL) {
		return Result{
			OK:        false,
			Reason:    fmt.Sprintf("host not allowed: %s", probeURL.Hostname()),
			ProbedURL: probeURL.String(),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, probeURL.String(), nil)
	if err != nil {
		return Result{OK: false, Reason: fmt.Sprintf("build probe request: %v", err), ProbedURL: probeURL.String()}
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("probe failed", "url", probeURL.String(), "error", err)
		return Result{OK: false, Reason: "unreachable", ProbedURL: probeURL.String()}
	}
	defer resp.Body.Close()

	c.logger.Debug("probe completed", "url", probeURL.String(), "status", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return Result{
			OK:         false,
			Reason:     fmt.Sprintf("status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
			ProbedURL:  probeURL.String(),
		}
	}

	return Result{OK: true, StatusCode: resp.StatusCode, ProbedURL: probeURL.String()}
}

// hostAllowed reports whether the URL's hostname is in the allow list.
// A leading "www." is ignored on both sides, so an allow list entry of
// "youtube.com" matches www.youtube.com and vice versa.
func (c *Checker) hostAllowed(u *url.URL) bool {
	host := stripWWW(u.Hostname())
	for _, allowed := range c.config.AllowedHosts {
		if strings.EqualFold(host, stripWWW(allowed)) {
			return true
		}
	}
	return false
}

func stripWWW(host string) string {
	if len(host) > 4 && strings.EqualFold(host[:4], "www.") {
		return host[4:]
	}
	return host
}

// ══════════════════════════════════════════════════════════════════════════════
// URL NORMALIZATION
// The probe URL may differ from the raw reference: short video links
// become canonical watch URLs and a missing scheme defaults to https.
// The rewritten form is used for the probe only.
// ══════════════════════════════════════════════════════════════════════════════

// normalizeForProbe parses the reference and rewrites known short forms.
func normalizeForProbe(reference string) (*url.URL, error) {
	if strings.ContainsAny(reference, " \t\r\n") {
		return nil, fmt.Errorf("contains whitespace")
	}

	raw := reference
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("missing host")
	}

	if rewritten, ok := rewriteShortVideoLink(u); ok {
		return rewritten, nil
	}

	return u, nil
}

// rewriteShortVideoLink maps youtu.be/<id> onto the canonical watch URL.
func rewriteShortVideoLink(u *url.URL) (*url.URL, bool) {
	if !strings.EqualFold(u.Hostname(), "youtu.be") {
		return nil, false
	}

	videoID := strings.Trim(u.Path, "/")
	if slash := strings.IndexByte(videoID, '/'); slash >= 0 {
		videoID = videoID[:slash]
	}
	if videoID == "" {
		return nil, false
	}

	return &url.URL{
		Scheme:   "https",
		Host:     "www.youtube.com",
		Path:     "/watch",
		RawQuery: url.Values{"v": {videoID}}.Encode(),
	}, true
}
