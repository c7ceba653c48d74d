package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"
)

// Event is a flat key-value notification emitted after a committed transition.
type Event struct {
	Type    string            `json:"type"`
	Payload map[string]string `json:"payload"`
}

// Sink receives notification events. Delivery is best effort: a failing sink
// never affects the transition that produced the event.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// HTTPSink posts events to an external notification service.
type HTTPSink struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPSink creates HTTP sink with default timeout.
func NewHTTPSink(baseURL string, logger *slog.Logger) (*HTTPSink, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse notify url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("notify url must be absolute")
	}
	return &HTTPSink{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Publish posts a single event.
func (s *HTTPSink) Publish(ctx context.Context, event Event) error {
	endpoint := *s.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/events")

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		s.logger.Error("notify request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(data)))
		return fmt.Errorf("notify error: %s", resp.Status)
	}
	return nil
}

// LogSink writes events to the logger only; used when no sink is configured.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink that records events locally.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Publish logs the event.
func (s *LogSink) Publish(_ context.Context, event Event) error {
	s.logger.Info("event", slog.String("type", event.Type), slog.Any("payload", event.Payload))
	return nil
}
