package enrich

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	appcfg "github.com/folio-space/core/internal/config"
	"go.uber.org/zap"
)

const (
	screenshotWidth          = 1200
	screenshotHeight         = 800
	screenshotQuality        = 80
	screenshotPrimaryTimeout = 30 * time.Second
	secondaryRenderDelaySecs = 2
)

var errInvalidWebsiteURL = errors.New("invalid website url")

// validateWebsiteURL accepts absolute http/https URLs only.
func validateWebsiteURL(raw string) (string, error) {
	target := strings.TrimSpace(raw)
	parsed, err := neturl.Parse(target)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", errInvalidWebsiteURL
	}
	return target, nil
}

// ScreenshotResolver captures a website preview. The primary provider returns
// a hosted image URL; when it fails for any reason the secondary provider is
// tried, whose raw bytes are embedded as a data URL. Both providers failing
// is the Unavailable terminal state, not an error.
type ScreenshotResolver struct {
	cfg    appcfg.ScreenshotConfig
	client *http.Client
	logger *zap.Logger
}

func NewScreenshotResolver(cfg appcfg.ScreenshotConfig, logger *zap.Logger) *ScreenshotResolver {
	return &ScreenshotResolver{
		cfg:    cfg,
		client: &http.Client{},
		logger: logger,
	}
}

// Resolve runs the primary→secondary fallback pipeline. The only error it
// returns is URL validation failure, which callers must report before any
// provider is contacted.
func (r *ScreenshotResolver) Resolve(ctx context.Context, websiteURL string) (ScreenshotResult, error) {
	target, err := validateWebsiteURL(websiteURL)
	if err != nil {
		return ScreenshotResult{Source: ScreenshotUnavailable}, err
	}

	if ref, err := r.capturePrimary(ctx, target); err == nil {
		return ScreenshotResult{Source: ScreenshotPrimary, Reference: ref}, nil
	} else {
		r.logger.Warn("screenshot: primary provider failed", zap.String("url", target), zap.Error(err))
	}

	if ref, err := r.captureSecondary(ctx, target); err == nil {
		return ScreenshotResult{Source: ScreenshotSecondary, Reference: ref}, nil
	} else {
		r.logger.Warn("screenshot: secondary provider failed", zap.String("url", target), zap.Error(err))
	}

	return ScreenshotResult{Source: ScreenshotUnavailable}, nil
}

// capturePrimary POSTs a render request and expects a hosted image URL back.
func (r *ScreenshotResolver) capturePrimary(ctx context.Context, target string) (string, error) {
	endpoint := strings.TrimSpace(r.cfg.Primary.Endpoint)
	if endpoint == "" {
		return "", errors.New("primary provider not configured")
	}

	body, _ := json.Marshal(map[string]interface{}{
		"url":             target,
		"access_key":      r.cfg.Primary.APIKey,
		"viewport_width":  screenshotWidth,
		"viewport_height": screenshotHeight,
		"format":          "png",
		"quality":         screenshotQuality,
	})

	ctx, cancel := context.WithTimeout(ctx, screenshotPrimaryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var payload struct {
		ScreenshotURL string `json:"screenshot_url"`
		URL           string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	ref := strings.TrimSpace(payload.ScreenshotURL)
	if ref == "" {
		ref = strings.TrimSpace(payload.URL)
	}
	if ref == "" {
		return "", errors.New("empty screenshot url in provider response")
	}
	return ref, nil
}

// captureSecondary GETs raw image bytes and embeds them as a data URL.
// Suppresses ads, cookie banners and trackers, and waits a short render
// delay so dynamic content settles.
func (r *ScreenshotResolver) captureSecondary(ctx context.Context, target string) (string, error) {
	endpoint := strings.TrimSpace(r.cfg.Secondary.Endpoint)
	key := strings.TrimSpace(r.cfg.Secondary.APIKey)
	if endpoint == "" || key == "" {
		return "", errors.New("secondary provider not configured")
	}

	params := neturl.Values{}
	params.Set("access_key", key)
	params.Set("url", target)
	params.Set("width", fmt.Sprint(screenshotWidth))
	params.Set("height", fmt.Sprint(screenshotHeight))
	params.Set("format", "png")
	params.Set("quality", fmt.Sprint(screenshotQuality))
	params.Set("block_ads", "true")
	params.Set("block_cookie_banners", "true")
	params.Set("block_trackers", "true")
	params.Set("delay", fmt.Sprint(secondaryRenderDelaySecs))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	img, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", err
	}
	if len(img) == 0 {
		return "", errors.New("empty image body")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = "image/png"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(img), nil
}
