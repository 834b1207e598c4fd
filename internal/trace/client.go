package trace

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/jorgecardleitao/private-jets/internal/constants"
	"github.com/jorgecardleitao/private-jets/internal/metrics"
)

// DefaultBaseURL is the public globe history source.
const DefaultBaseURL = "https://globe.adsbexchange.com"

// Client fetches day traces from the globe history source. One Client is
// shared by all workers: its limiter paces every outbound request globally,
// independently of how many workers drive it.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	limiter *rate.Limiter
	retry   RetryConfig
	m       *metrics.Registry
}

// NewClient builds a Client capped at requestsPerSecond outbound requests.
func NewClient(requestsPerSecond float64) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &Client{
		BaseURL: DefaultBaseURL,
		HTTP: &http.Client{
			Timeout: 45 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		retry:   DefaultRetryConfig(),
		m:       metrics.Default(),
	}
}

func last2(icao string) string {
	return icao[len(icao)-2:]
}

// adsbxSID builds the session cookie the source's own frontend computes:
// ts+1728e5+"_"+Math.random().toString(36).substring(2,15)
func adsbxSID() string {
	ts := time.Now().UnixMilli() + 1728*100000
	const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	suffix := make([]byte, 13)
	for i := range suffix {
		suffix[i] = alphanumeric[rand.Intn(len(alphanumeric))]
	}
	return fmt.Sprintf("%d_%s", ts, suffix)
}

// FetchDayTrace fetches one day of raw trace data for a lowercased icao
// number straight from the source, pacing and retrying as configured. The
// day must be over (UTC): the source only serves closed days.
func (c *Client) FetchDayTrace(ctx context.Context, icao string, day time.Time) ([]byte, error) {
	attempt := 0
	return Retry(ctx, c.retry, func() ([]byte, error) {
		attempt++
		if attempt > 1 {
			c.m.FetchRetriesTotal.Inc()
		}
		return c.dayTraceOnce(ctx, icao, day)
	})
}

func (c *Client) dayTraceOnce(ctx context.Context, icao string, day time.Time) ([]byte, error) {
	unit := fmt.Sprintf("%s/%s", icao, day.Format("2006-01-02"))

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("awaiting rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/globe_history/%s/traces/%s/trace_full_%s.json",
		c.BaseURL, day.Format("2006/01/02"), last2(icao), icao)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewSourceError(constants.ErrCodeNetworkError, unit, err)
	}
	c.setBrowserHeaders(req, icao, day)

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	c.m.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.m.FetchesTotal.WithLabelValues("error").Inc()
		return nil, NewSourceError(constants.ErrCodeNetworkError, unit, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			c.m.FetchesTotal.WithLabelValues("error").Inc()
			return nil, NewSourceError(constants.ErrCodeTruncatedPayload, unit, err)
		}
		c.m.FetchesTotal.WithLabelValues("ok").Inc()
		return data, nil
	case http.StatusNotFound:
		// The source has no registration data for this aircraft/day.
		// That absence is data: return the documented empty payload.
		c.m.FetchesTotal.WithLabelValues("not_found").Inc()
		return syntheticEmptyTrace(icao, day), nil
	case http.StatusTooManyRequests:
		c.m.FetchesTotal.WithLabelValues("rate_limited").Inc()
		return nil, &RateLimitError{
			StatusCode: resp.StatusCode,
			RetryAfter: ParseRetryAfter(resp.Header),
			Key:        unit,
		}
	default:
		c.m.FetchesTotal.WithLabelValues("error").Inc()
		return nil, NewSourceError(constants.ErrCodeBadStatus, unit,
			fmt.Errorf("status %d", resp.StatusCode))
	}
}

// setBrowserHeaders mimics the source's own frontend. Accept-Encoding is
// left to the transport so response decompression keeps working.
func (c *Client) setBrowserHeaders(req *http.Request, icao string, day time.Time) {
	date := day.Format("2006-01-02")
	referer := fmt.Sprintf("%s/?icao=%s&lat=54.448&lon=10.602&zoom=7.0&showTrace=%s",
		c.BaseURL, icao, date)

	req.Header.Set("User-Agent",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:109.0) Gecko/20100101 Firefox/118.0")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Referer", referer)
	req.Header.Set("Cookie", "adsbx_sid="+adsbxSID())
	req.Header.Set("Sec-Fetch-Dest", "empty")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Sec-Fetch-Site", "same-origin")
}

func syntheticEmptyTrace(icao string, day time.Time) []byte {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return []byte(fmt.Sprintf(
		`{"icao":"%s","noRegData":true,"timestamp":%.3f,"trace":[]}`,
		icao, float64(midnight.Unix())))
}
