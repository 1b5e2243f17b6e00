package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Hsnnder/real-estatemvp/internal/config"
)

// ErrSiteVerifyUnavailable is returned when Cloudflare could not give an answer.
// Callers treat it like a failed check.
var ErrSiteVerifyUnavailable = errors.New("turnstile siteverify unavailable")

// maxResponseBytes bounds the siteverify body; real answers are a few hundred bytes.
const maxResponseBytes = 64 << 10

// ITurnstileVerifier checks the widget token posted with the contact form.
type ITurnstileVerifier interface {
	Enabled() bool
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
	Hostname   string   `json:"hostname"`
}

type turnstileVerifier struct {
	secret     string
	verifyURL  string
	httpClient *http.Client
}

// NewTurnstileVerifier creates a verifier from the Cloudflare settings. Without
// a secret key it is disabled and accepts every submission.
func NewTurnstileVerifier(cfg *config.Config) ITurnstileVerifier {
	return &turnstileVerifier{
		secret:     cfg.CloudflareTurnstileSecretKey,
		verifyURL:  cfg.CloudflareSiteVerifyURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func (v *turnstileVerifier) Enabled() bool {
	return v.secret != ""
}

// Verify posts the token to siteverify. A blank token fails without a request.
func (v *turnstileVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if !v.Enabled() {
		return true, nil
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return false, nil
	}

	form := url.Values{"secret": {v.secret}, "response": {token}}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrSiteVerifyUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		log.Printf("Turnstile siteverify request failed: %v", err)
		return false, fmt.Errorf("%w: %v", ErrSiteVerifyUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		log.Printf("Turnstile siteverify answered %d", resp.StatusCode)
		return false, fmt.Errorf("%w: status %d", ErrSiteVerifyUnavailable, resp.StatusCode)
	}

	var result siteverifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&result); err != nil {
		log.Printf("Turnstile siteverify returned an unreadable body: %v", err)
		return false, fmt.Errorf("%w: %v", ErrSiteVerifyUnavailable, err)
	}
	if !result.Success {
		log.Printf("Turnstile rejected contact form token from %s: %v", remoteIP, result.ErrorCodes)
	}
	return result.Success, nil
}
