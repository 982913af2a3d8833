package carebridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/carebridge/sdk-go/internal/apierrors"
	"github.com/carebridge/sdk-go/internal/httpx"
)

// Request describes one backend exchange.
type Request struct {
	// Rail selects the target backend; defaults to RailClient.
	Rail Rail
	// Method is http.MethodGet or http.MethodPost.
	Method string
	// Path is appended to the rail's base URL.
	Path string
	// Params are forwarded as the query string (GET only).
	Params url.Values
	// JSON, when non-nil, is sent as an application/json body.
	JSON any
	// Form, when non-nil, is sent as multipart/form-data if it carries
	// file parts, otherwise demoted to a JSON object. Takes precedence
	// over JSON.
	Form *Form
	// DataKey is the path to the payload inside the response envelope;
	// defaults to ["data"].
	DataKey []string
}

// Result carries a successful envelope. Data is the payload extracted at
// the request's DataKey; Raw preserves the full response body.
type Result[T any] struct {
	Success bool
	Status  bool
	Message string
	Data    T
	Raw     json.RawMessage
}

// Call performs one exchange against the backend and unwraps its response
// envelope. All failure modes — transport errors after retries, non-2xx
// statuses, and 2xx responses whose envelope reports success=false — come
// back as a *APIError via the error return; Call itself never retries.
func Call[T any](ctx context.Context, c *Client, req Request) (*Result[T], error) {
	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, apierrors.Classify(err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, apierrors.Classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, apierrors.Decode(resp)
	}

	body, err := httpx.ReadBody(resp)
	if err != nil {
		return nil, apierrors.Classify(err)
	}

	return unwrapEnvelope[T](resp.StatusCode, body, req.DataKey)
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	if method != http.MethodGet && method != http.MethodPost {
		return nil, fmt.Errorf("unsupported method %s", method)
	}

	target := c.baseURL(req.Rail) + req.Path
	if method == http.MethodGet && len(req.Params) > 0 {
		target += "?" + req.Params.Encode()
	}

	var (
		httpReq *http.Request
		err     error
	)
	switch {
	case method == http.MethodGet:
		httpReq, err = http.NewRequestWithContext(ctx, method, target, nil)
	case req.Form != nil:
		httpReq, err = httpx.NewFormRequest(ctx, method, target, req.Form)
	default:
		httpReq, err = httpx.NewJSONRequest(ctx, method, target, req.JSON)
	}
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Accept", "*/*")

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	return httpReq, nil
}

// unwrapEnvelope enforces the envelope contract: an explicit
// success=false or status=false marks the response as a failure even when
// the HTTP exchange succeeded.
func unwrapEnvelope[T any](statusCode int, body []byte, dataKey []string) (*Result[T], error) {
	var envelope struct {
		Success *bool           `json:"success"`
		Status  *bool           `json:"status"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apierrors.Classify(fmt.Errorf("decode response: %w", err))
	}

	if isFalse(envelope.Success) || isFalse(envelope.Status) {
		return nil, apierrors.DecodeBody(statusCode, body)
	}

	result := &Result[T]{
		Success: boolOr(envelope.Success, true),
		Status:  boolOr(envelope.Status, true),
		Message: joinRawMessage(envelope.Message),
		Raw:     body,
	}

	payload, ok, err := extractDataKey(body, dataKey)
	if err != nil {
		return nil, apierrors.Classify(err)
	}
	if ok {
		if err := json.Unmarshal(payload, &result.Data); err != nil {
			return nil, apierrors.Classify(fmt.Errorf("decode payload: %w", err))
		}
	}

	return result, nil
}

// extractDataKey walks the response body along the key path, defaulting
// to ["data"]. A missing key yields ok=false rather than an error so
// endpoints without a payload still succeed.
func extractDataKey(body []byte, dataKey []string) (json.RawMessage, bool, error) {
	if len(dataKey) == 0 {
		dataKey = []string{"data"}
	}

	current := json.RawMessage(body)
	for _, key := range dataKey {
		var level map[string]json.RawMessage
		if err := json.Unmarshal(current, &level); err != nil {
			return nil, false, fmt.Errorf("extract %s: %w", strings.Join(dataKey, "."), err)
		}
		next, found := level[key]
		if !found || len(next) == 0 || string(next) == "null" {
			return nil, false, nil
		}
		current = next
	}
	return current, true, nil
}

func isFalse(v *bool) bool {
	return v != nil && !*v
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

// joinRawMessage renders an envelope message that may be a string or a
// list of strings.
func joinRawMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return ""
}
