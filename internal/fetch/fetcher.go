package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/guttosm/sthpulse/config"
	"github.com/guttosm/sthpulse/internal/logger"
)

// browserUA avoids the content-negotiation rejections BMP applies to
// bare client user agents.
const browserUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Client fetches the raw metric CSV from the BMP API.
//
// It tries each configured URL in order with bearer auth and a
// CSV-preferring Accept header, and returns the first successful body.
// There is no retry within a single URL and no backoff; the URL list
// itself is the fallback.
type Client struct {
	http *resty.Client
	urls []string
}

// NewClient builds a Client from fetch configuration.
//
// Parameters:
//   - cfg: fetch settings (API key, candidate URLs, per-attempt timeout).
func NewClient(cfg config.FetchConfig) *Client {
	c := resty.New().
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second).
		SetAuthToken(cfg.APIKey).
		SetHeader("Accept", "text/csv, */*;q=0.8").
		SetHeader("User-Agent", browserUA)

	return &Client{http: c, urls: cfg.URLs}
}

// FetchCSV issues a GET against each candidate URL until one returns a
// 2xx, logging every attempt's URL, status code, and content type.
//
// Returns:
//   - the raw response body and the URL that served it on first success
//   - after exhausting every URL, an error wrapping the last failure
//     (network error or non-2xx status).
func (c *Client) FetchCSV(ctx context.Context) (string, string, error) {
	if len(c.urls) == 0 {
		return "", "", fmt.Errorf("no endpoint URLs configured")
	}

	log := logger.C("fetch")

	var lastErr error
	for _, url := range c.urls {
		resp, err := c.http.R().SetContext(ctx).Get(url)
		if err != nil {
			log.Warn().Str("url", url).Err(err).Msg("request failed")
			lastErr = fmt.Errorf("GET %s: %w", url, err)
			continue
		}

		log.Info().
			Str("url", url).
			Int("status", resp.StatusCode()).
			Str("content_type", resp.Header().Get("Content-Type")).
			Msg("bmp response")

		if resp.IsError() {
			lastErr = fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode())
			continue
		}

		return resp.String(), url, nil
	}

	return "", "", fmt.Errorf("failed to fetch metric from all endpoints, last error: %w", lastErr)
}
