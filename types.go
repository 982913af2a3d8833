package carebridge

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/carebridge/sdk-go/internal/apierrors"
)

// User mirrors the account entity returned by the backend.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	UserType  UserType  `json:"userType"`
	IsBoarded bool      `json:"isBoarded"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Page carries the pagination options shared by listing operations.
type Page struct {
	Page    int
	PerPage int
}

func (p Page) apply(params url.Values) {
	if p.Page > 0 {
		params.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		params.Set("perPage", strconv.Itoa(p.PerPage))
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRequest checks req against its validate tags and reports
// failures as a VALIDATION_ERROR APIError with per-field messages — the
// same shape the backend uses, so callers render both identically.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierrors.Classify(err)
	}

	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		name := fieldKey(fe.Field())
		fields[name] = append(fields[name], validationMessage(name, fe))
	}
	return apierrors.NewValidation(fields)
}

func fieldKey(name string) string {
	if name == "" {
		return name
	}
	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

func validationMessage(name string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", name)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", name)
	case "min":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more", name, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be %s or less", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}
