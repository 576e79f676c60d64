package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const requestTimeout = 10 * time.Second

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// restEndpoint performs rate limited GET requests against a JSON geocoding API.
type restEndpoint struct {
	name         string        // Provider name used in errors and logs
	client       HTTPClient    // HTTP client for making requests
	baseURL      string        // Endpoint URL without query
	header       http.Header   // Headers sent with every request
	limiter      *rate.Limiter // Shared by every caller of the provider
	log          *slog.Logger  // Logger for logging operations
	unauthorized error         // Returned on 401 and 403 when set
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

func newLimiter(rateLimit int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(rateLimit), rateLimit)
}

// getJSON waits for the limiter, sends one request with params and decodes the body into out.
func (e *restEndpoint) getJSON(ctx context.Context, params url.Values, out any) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL, err := url.Parse(e.baseURL)
	if err != nil {
		return fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	for key, values := range params {
		query[key] = values
	}
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range e.header {
		req.Header[key] = values
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case e.unauthorized != nil &&
		(resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden):
		return e.unauthorized
	default:
		e.log.ErrorContext(ctx, "Geocoding API error",
			"provider", e.name, "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("%s API returned status %d: %s", e.name, resp.StatusCode, string(body))
	}

	if err = json.Unmarshal(body, out); err != nil {
		e.log.DebugContext(ctx, "Unparsable geocoding response", "provider", e.name, "body", string(body))
		return fmt.Errorf("failed to decode %s response: %w", e.name, err)
	}

	return nil
}
