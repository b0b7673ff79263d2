// Package weatherclient fetches provider responses with per-provider
// timeouts, bounded retry, and per-host pacing, handing successful
// payloads to the extraction transformer.
package weatherclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seaglow/seaglow/internal/constants"
	"github.com/seaglow/seaglow/internal/extract"
	"github.com/seaglow/seaglow/pkg/locations"
)

// ErrWindUnitParam is returned when an Open-Meteo wind URL lacks
// wind_speed_unit=ms. The Open-Meteo default is km/h, which would
// silently corrupt every wind calculation downstream, so the request is
// refused before any network traffic.
var ErrWindUnitParam = errors.New("open-meteo wind URL missing wind_speed_unit=ms")

const (
	maxAttempts = 3

	// Transport failures (timeouts, resets) wait a flat 30s between
	// attempts; HTTP 429 waits 60s doubling per attempt.
	transientRetryWait = 30 * time.Second
	rateLimitBaseWait  = 60 * time.Second

	// OpenWeatherMap is slow enough under load to deserve double the
	// budget of the other providers.
	openWeatherMapTimeout = 30 * time.Second
	defaultTimeout        = 15 * time.Second
)

// Options configures a Client.
type Options struct {
	// StrictWindUnits refuses Open-Meteo wind URLs without
	// wind_speed_unit=ms. When false the violation is logged and the
	// request proceeds.
	StrictWindUnits bool
	// PaceInterval is the minimum spacing between requests to the same
	// host. Zero disables pacing.
	PaceInterval time.Duration
	// UserAgent overrides the default outbound User-Agent.
	UserAgent string
}

// Client issues provider requests. Safe for concurrent use.
type Client struct {
	logger      *zap.SugaredLogger
	transformer *extract.Transformer
	strict      bool
	userAgent   string
	pacer       *hostPacer

	// Injection points for tests.
	timeoutFn func(url string) time.Duration
	sleepFn   func(ctx context.Context, d time.Duration) error
	nowFn     func() time.Time
}

// New creates a provider client around the given transformer.
func New(transformer *extract.Transformer, opts Options, logger *zap.SugaredLogger) *Client {
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = constants.UserAgent
	}
	return &Client{
		logger:      logger,
		transformer: transformer,
		strict:      opts.StrictWindUnits,
		userAgent:   userAgent,
		pacer:       newHostPacer(opts.PaceInterval),
		timeoutFn:   timeoutFor,
		sleepFn:     sleepContext,
		nowFn:       time.Now,
	}
}

// Fetch retrieves and transforms one provider response. A nil observation
// with a nil error means the provider family is unknown to the registry;
// callers merge nothing in that case.
func (c *Client) Fetch(ctx context.Context, source locations.Source) (*extract.Observation, error) {
	if windUnitViolation(source.URL) {
		if c.strict {
			return nil, fmt.Errorf("%w: %s", ErrWindUnitParam, source.URL)
		}
		c.logger.Warnf("open-meteo wind URL %s lacks wind_speed_unit=ms, proceeding (strict validation disabled)", source.URL)
	}

	if err := c.pacer.wait(ctx, source.URL, c.nowFn, c.sleepFn); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, status, err := c.do(ctx, source)
		switch {
		case err != nil:
			lastErr = err
			if attempt == maxAttempts {
				break
			}
			c.logger.Warnf("request to %s failed (attempt %d/%d): %v, retrying in %s",
				source.URL, attempt, maxAttempts, err, transientRetryWait)
			if serr := c.sleepFn(ctx, transientRetryWait); serr != nil {
				return nil, serr
			}
			continue

		case status == http.StatusTooManyRequests:
			wait := rateLimitBaseWait << (attempt - 1)
			lastErr = fmt.Errorf("rate limited by %s (429)", source.Name)
			if attempt == maxAttempts {
				break
			}
			c.logger.Warnf("%s rate limited request (attempt %d/%d), backing off %s",
				source.Name, attempt, maxAttempts, wait)
			if serr := c.sleepFn(ctx, wait); serr != nil {
				return nil, serr
			}
			continue

		case status/100 != 2:
			// Anything that isn't a timeout or a rate limit won't get
			// better on retry.
			return nil, fmt.Errorf("%s returned status %d", source.Name, status)

		default:
			var doc map[string]interface{}
			if err := json.Unmarshal(body, &doc); err != nil {
				return nil, fmt.Errorf("decoding response from %s: %w", source.Name, err)
			}
			return c.transformer.Transform(doc, source.URL, c.nowFn()), nil
		}
		break
	}

	return nil, fmt.Errorf("giving up on %s after %d attempts: %w", source.Name, maxAttempts, lastErr)
}

func (c *Client) do(ctx context.Context, source locations.Source) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	if source.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+source.APIKey)
	}

	client := http.Client{Timeout: c.timeoutFn(source.URL)}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

// windUnitViolation reports whether the URL requests Open-Meteo wind data
// without forcing meters per second.
func windUnitViolation(url string) bool {
	return strings.Contains(url, "wind_speed_10m") &&
		strings.Contains(url, "open-meteo.com") &&
		!strings.Contains(url, "wind_speed_unit=ms")
}

func timeoutFor(url string) time.Duration {
	if strings.Contains(url, "openweathermap.org") {
		return openWeatherMapTimeout
	}
	return defaultTimeout
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
