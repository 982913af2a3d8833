// Package apierrors normalizes every failure mode of a backend exchange
// into a single APIError shape: HTTP error envelopes, transport errors,
// local exceptions, and values that are not errors at all.
package apierrors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Type classifies an APIError into a stable, machine-readable vocabulary.
type Type string

const (
	TypeValidation Type = "VALIDATION_ERROR"
	TypeAuth       Type = "AUTH_ERROR"
	TypeForbidden  Type = "FORBIDDEN_ERROR"
	TypeNotFound   Type = "NOT_FOUND_ERROR"
	TypeRateLimit  Type = "RATE_LIMIT_ERROR"
	TypeServer     Type = "SERVER_ERROR"
	TypeNetwork    Type = "NETWORK_ERROR"
	TypeAPI        Type = "API_ERROR"
	TypeGeneric    Type = "GENERIC_ERROR"
	TypeUnknown    Type = "UNKNOWN_ERROR"
)

// fallbackMessage matches the backend's own wording for bodies that carry
// no usable message.
const fallbackMessage = "An unexpected error occured"

// APIError is the normalized error value returned by every SDK operation.
// FieldErrors is populated only for validation failures and preserves the
// per-field messages for inline display.
type APIError struct {
	StatusCode  int
	Message     string
	Type        Type
	FieldErrors map[string][]string
}

// New builds an APIError from one or more message strings, joined with "; ".
func New(statusCode int, typ Type, messages ...string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    joinMessages(messages),
		Type:       typ,
	}
}

// NewValidation builds a VALIDATION_ERROR from a field->messages map. All
// field messages are flattened into the top-level message as well.
func NewValidation(fields map[string][]string) *APIError {
	return &APIError{
		StatusCode:  http.StatusBadRequest,
		Message:     joinMessages(flattenFields(fields)),
		Type:        TypeValidation,
		FieldErrors: fields,
	}
}

// Error satisfies the error interface.
func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("carebridge: %s (%s)", e.Message, e.Type)
}

// MarshalJSON projects the error into a plain object that survives
// serialization boundaries. The isError marker lets the other side
// recognize the value without type information.
func (e *APIError) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"name":       "ApiError",
		"message":    e.Message,
		"statusCode": e.StatusCode,
		"errorType":  string(e.Type),
		"rawErrors":  e.FieldErrors,
		"isError":    true,
	})
}

// IsAPIError reports whether v is an APIError, either as a concrete value
// or as a plain map carrying the isError marker (e.g. after a JSON round
// trip through another process).
func IsAPIError(v any) bool {
	switch val := v.(type) {
	case *APIError:
		return val != nil
	case APIError:
		return true
	case map[string]any:
		marker, ok := val["isError"].(bool)
		return ok && marker
	case error:
		var apiErr *APIError
		return errors.As(val, &apiErr)
	}
	return false
}

// FromMap rehydrates an APIError from its serialized map projection.
// Returns nil when the map does not carry the isError marker.
func FromMap(m map[string]any) *APIError {
	if marker, ok := m["isError"].(bool); !ok || !marker {
		return nil
	}

	e := &APIError{Type: TypeUnknown, StatusCode: http.StatusInternalServerError}
	if msg, ok := m["message"].(string); ok {
		e.Message = msg
	}
	if code, ok := m["statusCode"].(float64); ok {
		e.StatusCode = int(code)
	}
	if typ, ok := m["errorType"].(string); ok && typ != "" {
		e.Type = Type(typ)
	}
	if raw, ok := m["rawErrors"].(map[string]any); ok {
		e.FieldErrors = coerceFieldMap(raw)
	}
	return e
}

// Classify converts an arbitrary failure value into an APIError. It is
// total: every input maps to exactly one APIError and the function itself
// never fails.
func Classify(v any) *APIError {
	switch val := v.(type) {
	case nil:
		return New(http.StatusInternalServerError, TypeUnknown, "unknown error")
	case *APIError:
		if val == nil {
			return New(http.StatusInternalServerError, TypeUnknown, "unknown error")
		}
		return val
	case APIError:
		return &val
	case map[string]any:
		if e := FromMap(val); e != nil {
			return e
		}
		return New(http.StatusInternalServerError, TypeUnknown, fmt.Sprint(val))
	case error:
		return classifyError(val)
	default:
		return New(http.StatusInternalServerError, TypeUnknown, fmt.Sprint(val))
	}
}

func classifyError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	if isTimeout(err) {
		return New(http.StatusRequestTimeout, TypeNetwork, "request timed out")
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return New(http.StatusInternalServerError, TypeNetwork, "network error: unable to reach the server")
	}

	return New(http.StatusInternalServerError, TypeGeneric, err.Error())
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Decode reads an HTTP error response and converts it into an APIError.
// The body is consumed; malformed or empty bodies still yield a usable
// error.
func Decode(resp *http.Response) *APIError {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return New(resp.StatusCode, typeForStatus(resp.StatusCode), resp.Status)
	}
	return DecodeBody(resp.StatusCode, body)
}

// DecodeBody converts a backend error envelope into an APIError. It
// accepts the three shapes the backend emits: a message (string or list),
// an error (string or field-keyed map), and a details object keyed by
// field name. Field-level details force TypeValidation regardless of the
// HTTP status.
func DecodeBody(statusCode int, body []byte) *APIError {
	e := &APIError{StatusCode: statusCode, Type: typeForStatus(statusCode)}

	var envelope struct {
		Message json.RawMessage `json:"message"`
		Error   json.RawMessage `json:"error"`
		Details json.RawMessage `json:"details"`
		Data    struct {
			Error json.RawMessage `json:"error"`
		} `json:"data"`
	}

	if len(body) == 0 || json.Unmarshal(body, &envelope) != nil {
		if msg := strings.TrimSpace(string(body)); msg != "" {
			e.Message = msg
		} else {
			e.Message = fallbackMessage
		}
		return e
	}

	var messages []string
	if msgs := stringList(envelope.Message); len(msgs) > 0 {
		messages = msgs
	} else if msgs := stringList(envelope.Error); len(msgs) > 0 {
		messages = msgs
	}

	fields := fieldMap(envelope.Details)
	if len(fields) == 0 {
		fields = fieldMap(envelope.Data.Error)
	}
	if len(fields) == 0 {
		fields = fieldMap(envelope.Error)
	}

	if len(fields) > 0 {
		// Field-level validation takes classification priority.
		e.Type = TypeValidation
		e.FieldErrors = fields
		messages = append(messages, flattenFields(fields)...)
	}

	if len(messages) == 0 {
		messages = []string{fallbackMessage}
	}
	e.Message = joinMessages(messages)
	return e
}

func typeForStatus(statusCode int) Type {
	switch {
	case statusCode == http.StatusBadRequest:
		return TypeValidation
	case statusCode == http.StatusUnauthorized:
		return TypeAuth
	case statusCode == http.StatusForbidden:
		return TypeForbidden
	case statusCode == http.StatusNotFound:
		return TypeNotFound
	case statusCode == http.StatusTooManyRequests:
		return TypeRateLimit
	case statusCode >= 500:
		return TypeServer
	default:
		return TypeAPI
	}
}

// stringList accepts a JSON string or array of strings.
func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if s := strings.TrimSpace(single); s != "" {
			return []string{s}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, s := range list {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// fieldMap accepts a JSON object mapping field names to a message or a
// list of messages. Non-object values yield nil.
func fieldMap(raw json.RawMessage) map[string][]string {
	if len(raw) == 0 {
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || len(obj) == 0 {
		return nil
	}

	fields := make(map[string][]string, len(obj))
	for name, val := range obj {
		if msgs := stringList(val); len(msgs) > 0 {
			fields[name] = msgs
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func coerceFieldMap(raw map[string]any) map[string][]string {
	fields := make(map[string][]string, len(raw))
	for name, val := range raw {
		switch v := val.(type) {
		case string:
			fields[name] = []string{v}
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					fields[name] = append(fields[name], s)
				}
			}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// flattenFields collects all field messages in deterministic field order.
func flattenFields(fields map[string][]string) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		out = append(out, fields[name]...)
	}
	return out
}

func joinMessages(messages []string) string {
	return strings.Join(messages, "; ")
}
