// Package httpx carries the shared HTTP plumbing for the SDK: request
// construction (JSON and multipart), bounded response decoding, and a
// retrying Doer that absorbs transient backend failures.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds each HTTP exchange.
	DefaultTimeout = 15 * time.Second
	// MaxBodyBytes caps request and response bodies.
	MaxBodyBytes = 20 << 20
	// DefaultMaxRetries is the number of resends after the initial attempt.
	DefaultMaxRetries = 3
	// DefaultRetryInterval seeds the exponential backoff schedule.
	DefaultRetryInterval = 500 * time.Millisecond

	// HeaderRequestID correlates a request across the SDK and the backend.
	HeaderRequestID = "X-Request-Id"
)

// Doer represents the subset of http.Client used across the SDK. It is
// intentionally small so callers can supply custom transports (for example
// to record fixtures in tests).
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Options configures a Client.
type Options struct {
	// Doer performs the actual exchange; defaults to an http.Client with
	// DefaultTimeout.
	Doer Doer
	// MaxRetries is the number of resends after the first attempt.
	// Negative disables retries; zero means DefaultMaxRetries.
	MaxRetries int
	// RetryInterval is the initial backoff delay; zero means
	// DefaultRetryInterval. Subsequent delays grow exponentially with
	// jitter.
	RetryInterval time.Duration
	// Limiter, when set, throttles outgoing requests before they are sent.
	Limiter *rate.Limiter
	// UserAgent is attached to every request when non-empty.
	UserAgent string
	// Logger receives debug-level retry traces; nil disables logging.
	Logger *slog.Logger
}

// Client is a Doer that retries transient failures. A failure is
// transient when the transport returned no response (other than a
// canceled context) or the response status is 5xx. 4xx responses are
// semantic failures and are never retried. All retry state is local to
// one Do call, so concurrent requests retry independently.
type Client struct {
	doer       Doer
	maxRetries int
	interval   time.Duration
	limiter    *rate.Limiter
	userAgent  string
	logger     *slog.Logger
}

// NewClient builds a retrying Client, applying defaults for unset options.
func NewClient(opts Options) *Client {
	doer := opts.Doer
	if doer == nil {
		doer = &http.Client{Timeout: DefaultTimeout}
	}

	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	} else if maxRetries < 0 {
		maxRetries = 0
	}

	interval := opts.RetryInterval
	if interval <= 0 {
		interval = DefaultRetryInterval
	}

	return &Client{
		doer:       doer,
		maxRetries: maxRetries,
		interval:   interval,
		limiter:    opts.Limiter,
		userAgent:  opts.UserAgent,
		logger:     opts.Logger,
	}
}

// Do sends the request, resending on transient failures up to the retry
// bound. The returned response (including a final non-retryable or
// retries-exhausted error response) has an unread body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get(HeaderRequestID) == "" {
		req.Header.Set(HeaderRequestID, uuid.NewString())
	}
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	schedule := backoff.NewExponentialBackOff()
	schedule.InitialInterval = c.interval
	schedule.RandomizationFactor = 0.1
	schedule.MaxElapsedTime = 0
	schedule.Reset()

	for attempt := 0; ; attempt++ {
		attemptReq, err := cloneForAttempt(req, attempt)
		if err != nil {
			return nil, err
		}

		resp, doErr := c.doer.Do(attemptReq)

		retryable := false
		switch {
		case doErr != nil:
			retryable = req.Context().Err() == nil
		case resp.StatusCode >= 500 && resp.StatusCode < 600:
			retryable = true
		}

		if !retryable || attempt >= c.maxRetries {
			return resp, doErr
		}
		if req.Body != nil && req.GetBody == nil {
			// Cannot replay the body; surface the failure as-is.
			return resp, doErr
		}

		if resp != nil {
			drain(resp)
		}

		delay := schedule.NextBackOff()
		if c.logger != nil {
			c.logger.Debug("retrying request",
				"method", req.Method,
				"url", req.URL.String(),
				"attempt", attempt+1,
				"delay", delay,
			)
		}
		if err := sleep(req.Context(), delay); err != nil {
			return nil, err
		}
	}
}

func cloneForAttempt(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 0 {
		return req, nil
	}
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("replay request body: %w", err)
		}
		clone.Body = body
	}
	return clone, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, MaxBodyBytes))
	_ = resp.Body.Close()
}

// NewJSONRequest serialises the given payload as JSON (if non-nil) and
// creates an HTTP request bound to the supplied context.
func NewJSONRequest(ctx context.Context, method, url string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		if len(raw) > MaxBodyBytes {
			return nil, errors.New("request body exceeds size limit")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// Form collects the entries of a form-encoded submission: named string
// values plus optional file parts.
type Form struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name  string
	value string
}

type formFile struct {
	field       string
	filename    string
	contentType string
	content     []byte
}

// Set appends a string entry. Repeated names are preserved.
func (f *Form) Set(name, value string) {
	f.fields = append(f.fields, formField{name: name, value: value})
}

// AddFile appends a file entry. An empty contentType defaults to
// application/octet-stream.
func (f *Form) AddFile(field, filename, contentType string, content []byte) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	f.files = append(f.files, formFile{
		field:       field,
		filename:    filename,
		contentType: contentType,
		content:     content,
	})
}

// HasFiles reports whether any entry carries binary content.
func (f *Form) HasFiles() bool {
	return len(f.files) > 0
}

// NewFormRequest builds a request from a form. Text-only forms are
// demoted to a plain JSON object so the backend does not have to parse
// multipart for what is really a structured submission; forms with at
// least one file part are sent as multipart/form-data.
func NewFormRequest(ctx context.Context, method, url string, form *Form) (*http.Request, error) {
	if form == nil || !form.HasFiles() {
		return NewJSONRequest(ctx, method, url, demoteForm(form))
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, field := range form.fields {
		if err := writer.WriteField(field.name, field.value); err != nil {
			return nil, fmt.Errorf("write form field %s: %w", field.name, err)
		}
	}

	for _, file := range form.files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.field, file.filename))
		header.Set("Content-Type", file.contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("write form file %s: %w", file.field, err)
		}
		if _, err := part.Write(file.content); err != nil {
			return nil, fmt.Errorf("write form file %s: %w", file.field, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize form: %w", err)
	}
	if buf.Len() > MaxBodyBytes {
		return nil, errors.New("request body exceeds size limit")
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

// demoteForm reconstructs a plain object from text-only form entries.
// Repeated names collapse into an array.
func demoteForm(form *Form) map[string]any {
	payload := make(map[string]any)
	if form == nil {
		return payload
	}
	for _, field := range form.fields {
		switch existing := payload[field.name].(type) {
		case nil:
			payload[field.name] = field.value
		case string:
			payload[field.name] = []string{existing, field.value}
		case []string:
			payload[field.name] = append(existing, field.value)
		}
	}
	return payload
}

// ReadBody consumes the response body up to MaxBodyBytes.
func ReadBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(body) > MaxBodyBytes {
		return nil, errors.New("response body exceeds size limit")
	}
	return body, nil
}

// DecodeJSON unmarshals the response body into target, bounded by
// MaxBodyBytes. The caller retains responsibility for closing the body.
func DecodeJSON(resp *http.Response, target any) error {
	if target == nil {
		return errors.New("decode target must be non-nil")
	}
	body, err := ReadBody(resp)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// IsJSON reports whether the response declares a JSON content type.
func IsJSON(resp *http.Response) bool {
	ct := resp.Header.Get("Content-Type")
	return strings.Contains(ct, "application/json")
}
