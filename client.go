// Package carebridge is the Go client SDK for the CareBridge healthcare
// coordination platform: authentication and onboarding, appointment
// scheduling, vitals and report tracking, messaging, and billing.
//
// Every operation funnels through a single request path that retries
// transient failures and normalizes all error shapes into one APIError
// value, so callers branch on a single, predictable failure type.
package carebridge

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/carebridge/sdk-go/internal/auth"
	"github.com/carebridge/sdk-go/internal/httpx"
	"github.com/carebridge/sdk-go/version"
)

// HTTPClient is the minimal transport contract the SDK depends on.
type HTTPClient = httpx.Doer

// TokenProvider yields the bearer token for one outgoing request.
type TokenProvider = auth.TokenProvider

// Form collects the entries of a form-encoded submission. Forms without
// file parts are sent as plain JSON; see Request.Form.
type Form = httpx.Form

// Rail selects which backend a request is sent to.
type Rail int

const (
	// RailClient targets the patient/caregiver-facing API.
	RailClient Rail = iota
	// RailAdmin targets the admin-facing API.
	RailAdmin
)

// Client exposes a typed, token-aware wrapper over the CareBridge APIs.
type Client struct {
	clientBaseURL string
	adminBaseURL  string

	http    *httpx.Client
	tokens  auth.TokenProvider
	logger  *slog.Logger

	keepAliveInterval time.Duration
	keepAliveTimeout  time.Duration
	keepAliveOnce     sync.Once
	keepAliveCancel   context.CancelFunc
	keepAliveWG       sync.WaitGroup
}

// NewClient constructs a new Client instance using the supplied
// configuration.
func NewClient(cfg Config) (*Client, error) {
	cfgCopy := cfg
	if err := (&cfgCopy).Validate(); err != nil {
		return nil, err
	}

	doer := cfgCopy.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	var limiter *rate.Limiter
	if cfgCopy.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfgCopy.RequestsPerSecond), cfgCopy.RequestBurst)
	}

	tokens := resolveTokens(cfgCopy)

	c := &Client{
		clientBaseURL: cfgCopy.ClientBaseURL,
		adminBaseURL:  cfgCopy.AdminBaseURL,
		http: httpx.NewClient(httpx.Options{
			Doer:          doer,
			MaxRetries:    cfgCopy.MaxRetries,
			RetryInterval: cfgCopy.RetryInterval,
			Limiter:       limiter,
			UserAgent:     "carebridge-sdk-go/" + version.String(),
			Logger:        cfgCopy.Logger,
		}),
		tokens:            tokens,
		logger:            cfgCopy.Logger,
		keepAliveInterval: cfgCopy.KeepAliveInterval,
		keepAliveTimeout:  cfgCopy.KeepAliveTimeout,
	}

	c.startKeepAlive()
	return c, nil
}

// resolveTokens picks the credential source. A session source wins over a
// direct token provider and is consulted anew for every request.
func resolveTokens(cfg Config) auth.TokenProvider {
	if cfg.Sessions != nil {
		sessions := cfg.Sessions
		return auth.TokenFunc(func(ctx context.Context) (string, error) {
			s, err := sessions.Session(ctx)
			if err != nil {
				return "", err
			}
			return s.AccessToken, nil
		})
	}
	if cfg.Tokens != nil {
		return cfg.Tokens
	}
	return auth.None()
}

// Close stops background activity held by the client.
func (c *Client) Close() error {
	c.stopKeepAlive()
	return nil
}

func (c *Client) baseURL(r Rail) string {
	if r == RailAdmin {
		return c.adminBaseURL
	}
	return c.clientBaseURL
}
