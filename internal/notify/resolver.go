// Package notify publishes the hApp URLs of holo-hosted DNAs to the HAPP2HOST resolver.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"conductorsync/pkg/logging"

	"github.com/hashicorp/go-retryablehttp"
)

// Options configures a Resolver.
type Options struct {
	URL string
	// Retries is the number of attempts after the first one.
	Retries int
	// RetryDelay is the fixed wait between attempts.
	RetryDelay time.Duration
	// Timeout bounds a single attempt. Zero means no timeout.
	Timeout time.Duration
}

// Resolver posts hosted hApp URLs to the resolver endpoint.
type Resolver struct {
	url    string
	client *retryablehttp.Client
}

// NewResolver creates a Resolver with a bounded retry budget and a fixed delay.
func NewResolver(opts Options) *Resolver {
	client := retryablehttp.NewClient()
	client.RetryMax = opts.Retries
	client.RetryWaitMin = opts.RetryDelay
	client.RetryWaitMax = opts.RetryDelay
	client.Backoff = func(_, _ time.Duration, _ int, _ *http.Response) time.Duration {
		return opts.RetryDelay
	}
	client.HTTPClient.Timeout = opts.Timeout
	client.Logger = leveledLogger{}

	return &Resolver{
		url:    opts.URL,
		client: client,
	}
}

// UpdateHosts posts happURLs as a JSON array. Nothing is sent for an empty list.
func (r *Resolver) UpdateHosts(ctx context.Context, happURLs []string) error {
	if len(happURLs) == 0 {
		logging.Debug("Notify", "No holo-hosted hApps, skipping resolver update")
		return nil
	}

	body, err := json.Marshal(happURLs)
	if err != nil {
		return fmt.Errorf("failed to encode hApp URLs: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, r.url, body)
	if err != nil {
		return fmt.Errorf("failed to build resolver request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to resolver failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("request to resolver failed: %s", resp.Status)
	}

	logging.Info("Notify", "Published %d hApp URL(s) to %s", len(happURLs), r.url)
	return nil
}

// leveledLogger routes retryablehttp's logging into pkg/logging.
type leveledLogger struct{}

func (leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	logging.Error("Notify", nil, "%s %v", msg, keysAndValues)
}

func (leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	logging.Debug("Notify", "%s %v", msg, keysAndValues)
}

func (leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	logging.Debug("Notify", "%s %v", msg, keysAndValues)
}

func (leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	logging.Warn("Notify", "%s %v", msg, keysAndValues)
}
