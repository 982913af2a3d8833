package carebridge

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/carebridge/sdk-go/internal/httpx"
)

const (
	// DefaultClientBaseURL is used when Config.ClientBaseURL and the
	// corresponding environment variable are both unset.
	DefaultClientBaseURL = "https://api.carebridge.health"
	// DefaultAdminBaseURL is used when Config.AdminBaseURL and the
	// corresponding environment variable are both unset.
	DefaultAdminBaseURL = "https://admin-api.carebridge.health"
	// DefaultHTTPTimeout bounds each HTTP exchange if no client is provided.
	DefaultHTTPTimeout = httpx.DefaultTimeout
	// DefaultMaxRetries is the number of resends after a transient failure.
	DefaultMaxRetries = httpx.DefaultMaxRetries
	// DefaultRetryInterval seeds the retry backoff schedule.
	DefaultRetryInterval = httpx.DefaultRetryInterval

	// EnvClientBaseURL overrides the patient/caregiver-facing base URL.
	EnvClientBaseURL = "CAREBRIDGE_CLIENT_API_URL"
	// EnvAdminBaseURL overrides the admin-facing base URL.
	EnvAdminBaseURL = "CAREBRIDGE_ADMIN_API_URL"

	// defaultKeepAliveTimeout caps how long a keep-alive ping may run.
	defaultKeepAliveTimeout = 10 * time.Second
)

// Config encapsulates the options required to instantiate a Client.
type Config struct {
	// ClientBaseURL is the patient/caregiver-facing API root. Falls back
	// to EnvClientBaseURL, then DefaultClientBaseURL.
	ClientBaseURL string
	// AdminBaseURL is the admin-facing API root. Falls back to
	// EnvAdminBaseURL, then DefaultAdminBaseURL.
	AdminBaseURL string

	// HTTPClient performs the underlying exchanges; defaults to an
	// http.Client with DefaultHTTPTimeout.
	HTTPClient HTTPClient
	// MaxRetries overrides the retry bound; negative disables retries.
	MaxRetries int
	// RetryInterval overrides the initial retry delay.
	RetryInterval time.Duration
	// RequestsPerSecond throttles outgoing requests; zero means no limit.
	RequestsPerSecond float64
	// RequestBurst is the limiter burst size; defaults to 1 when a rate
	// limit is set.
	RequestBurst int

	// Sessions supplies the per-request session whose access token
	// authenticates outgoing calls. Re-read on every request.
	Sessions SessionSource
	// Tokens supplies bearer tokens directly; ignored when Sessions is
	// set. Useful for fixed-credential processes.
	Tokens TokenProvider

	// KeepAliveInterval enables background session pings when positive.
	KeepAliveInterval time.Duration
	// KeepAliveTimeout overrides the timeout per keep-alive ping.
	KeepAliveTimeout time.Duration

	// Logger receives debug traces; nil keeps the SDK silent.
	Logger *slog.Logger
}

// Validate performs basic sanity checks on the configuration and fills
// defaults for optional fields.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config cannot be nil")
	}

	clientURL := firstNonEmpty(c.ClientBaseURL, os.Getenv(EnvClientBaseURL), DefaultClientBaseURL)
	if _, err := url.ParseRequestURI(clientURL); err != nil {
		return fmt.Errorf("invalid ClientBaseURL: %w", err)
	}
	c.ClientBaseURL = strings.TrimRight(clientURL, "/")

	adminURL := firstNonEmpty(c.AdminBaseURL, os.Getenv(EnvAdminBaseURL), DefaultAdminBaseURL)
	if _, err := url.ParseRequestURI(adminURL); err != nil {
		return fmt.Errorf("invalid AdminBaseURL: %w", err)
	}
	c.AdminBaseURL = strings.TrimRight(adminURL, "/")

	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = DefaultRetryInterval
	}

	if c.RequestsPerSecond < 0 {
		return errors.New("RequestsPerSecond cannot be negative")
	}
	if c.RequestsPerSecond > 0 && c.RequestBurst <= 0 {
		c.RequestBurst = 1
	}

	if c.KeepAliveInterval < 0 {
		return errors.New("KeepAliveInterval cannot be negative")
	}
	if c.KeepAliveInterval > 0 && c.KeepAliveTimeout <= 0 {
		c.KeepAliveTimeout = defaultKeepAliveTimeout
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
