package carebridge

import (
	"net/http"

	"github.com/carebridge/sdk-go/internal/apierrors"
)

// APIError is the normalized error value returned by every SDK operation.
type APIError = apierrors.APIError

// ErrorType classifies an APIError.
type ErrorType = apierrors.Type

const (
	ErrorTypeValidation = apierrors.TypeValidation
	ErrorTypeAuth       = apierrors.TypeAuth
	ErrorTypeForbidden  = apierrors.TypeForbidden
	ErrorTypeNotFound   = apierrors.TypeNotFound
	ErrorTypeRateLimit  = apierrors.TypeRateLimit
	ErrorTypeServer     = apierrors.TypeServer
	ErrorTypeNetwork    = apierrors.TypeNetwork
	ErrorTypeAPI        = apierrors.TypeAPI
	ErrorTypeGeneric    = apierrors.TypeGeneric
	ErrorTypeUnknown    = apierrors.TypeUnknown
)

// IsAPIError reports whether v is an APIError, either as a concrete value
// or as a plain map carrying the isError marker after a serialization
// round trip.
func IsAPIError(v any) bool {
	return apierrors.IsAPIError(v)
}

// ClassifyError converts an arbitrary failure value into an APIError.
func ClassifyError(v any) *APIError {
	return apierrors.Classify(v)
}

// apiErrorFromStatus converts an HTTP error response into an APIError.
func apiErrorFromStatus(resp *http.Response) *APIError {
	return apierrors.Decode(resp)
}
