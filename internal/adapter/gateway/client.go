package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session binds an initiated payment to the processor-side redirect flow.
type Session struct {
	Authority   string
	RedirectURL string
}

// Client exposes operations against the payment processor.
type Client interface {
	CreateSession(ctx context.Context, amount decimal.Decimal, description string) (*Session, error)
}

// SandboxClient issues correlation tokens and redirect URLs for the sandbox
// gateway. Verification happens through the inbound callback endpoint, so no
// outbound call is made here.
type SandboxClient struct {
	baseURL *url.URL
}

// NewSandboxClient creates a gateway client for the given redirect base URL.
func NewSandboxClient(baseURL string) (*SandboxClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	return &SandboxClient{baseURL: parsed}, nil
}

// CreateSession allocates a fresh authority token and its redirect URL.
func (c *SandboxClient) CreateSession(_ context.Context, _ decimal.Decimal, _ string) (*Session, error) {
	authority := "A" + strings.ReplaceAll(uuid.New().String(), "-", "")
	redirect := *c.baseURL
	redirect.Path = strings.TrimSuffix(redirect.Path, "/") + "/" + authority
	return &Session{Authority: authority, RedirectURL: redirect.String()}, nil
}
