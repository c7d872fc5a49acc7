package httpclient

import (
	"net/http"
	"net/url"
	"time"

	"ecom-connector/internal/core/logger"

	"go.uber.org/zap"
)

// redactedParams are query parameters whose values never reach the logs.
var redactedParams = []string{"sign", "access_token", "token", "app_secret"}

// redactURL masks credential-bearing query parameters before logging.
func redactURL(u *url.URL) string {
	query := u.Query()
	changed := false
	for _, key := range redactedParams {
		if query.Has(key) {
			query.Set(key, "REDACTED")
			changed = true
		}
	}
	if !changed {
		return u.String()
	}
	clone := *u
	clone.RawQuery = query.Encode()
	return clone.String()
}

// LoggingRoundTripper captures request details for debugging.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
}

// RoundTrip executes the request and logs details.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	loggedURL := redactURL(req.URL)

	logger.Get().Debug("HTTP Request Started",
		zap.String("method", req.Method),
		zap.String("url", loggedURL),
	)

	resp, err := lrt.Proxied.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		logger.Get().Error("HTTP Request Failed",
			zap.String("method", req.Method),
			zap.String("url", loggedURL),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Get().Debug("HTTP Request Completed",
		zap.String("method", req.Method),
		zap.String("url", loggedURL),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

// NewClient returns an http.Client with logging middleware.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &LoggingRoundTripper{
			Proxied: http.DefaultTransport,
		},
		Timeout: timeout,
	}
}
