package account

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/campushq/internship-portal/internal"
)

// BotVerdict describes why a signup was classified as automated. Detections
// are never surfaced to the caller; the gate answers with the same success
// response either way so an attacker cannot probe which heuristic fired.
type BotVerdict string

const (
	VerdictHuman       BotVerdict = ""
	VerdictHoneypot    BotVerdict = "honeypot"
	VerdictTooFast     BotVerdict = "form_too_fast"
	VerdictNoChallenge BotVerdict = "challenge_missing"
	VerdictLowScore    BotVerdict = "challenge_low_score"
)

// BotDetector runs the signup anti-abuse heuristics in a fixed order:
// honeypot, form timing, then the third-party challenge token.
type BotDetector struct {
	cfg    internal.AntiBotConfig
	client *http.Client
	logger *slog.Logger
}

func NewBotDetector(cfg internal.AntiBotConfig, logger *slog.Logger) *BotDetector {
	timeout := 5 * time.Second
	return &BotDetector{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Inspect classifies a signup submission. VerdictHuman means the request
// should proceed; anything else means silent-success without side effects.
func (d *BotDetector) Inspect(ctx context.Context, dto SignupDTO) BotVerdict {
	if strings.TrimSpace(dto.Website) != "" {
		return VerdictHoneypot
	}

	if dto.FormDurationMS > 0 && time.Duration(dto.FormDurationMS)*time.Millisecond < d.cfg.MinFormDuration {
		return VerdictTooFast
	}

	// Challenge verification only applies outside a trusted execution
	// context (local dev, CI) where no challenge provider is configured.
	if !d.cfg.ChallengeEnabled {
		return VerdictHuman
	}
	if dto.ChallengeToken == "" {
		return VerdictNoChallenge
	}

	score, ok := d.verifyChallenge(ctx, dto.ChallengeToken)
	if !ok || score < d.cfg.ChallengeMinScore {
		return VerdictLowScore
	}

	return VerdictHuman
}

type challengeResult struct {
	Success bool    `json:"success"`
	Score   float64 `json:"score"`
}

// verifyChallenge posts the token to the provider's siteverify endpoint.
// A provider outage counts against the submitter: unverifiable traffic is
// treated the same as a failed challenge.
func (d *BotDetector) verifyChallenge(ctx context.Context, token string) (float64, bool) {
	form := url.Values{}
	form.Set("secret", d.cfg.ChallengeSecret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.ChallengeVerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		d.logger.Error("challenge verify: failed to build request", "error", err)
		return 0, false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("challenge verify: provider unreachable", "error", err)
		return 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		d.logger.Warn("challenge verify: unexpected status", "status", resp.StatusCode)
		return 0, false
	}

	var result challengeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		d.logger.Error("challenge verify: bad response body", "error", err)
		return 0, false
	}

	if !result.Success {
		return 0, false
	}
	return result.Score, true
}
