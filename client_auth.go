package carebridge

import (
	"context"
	"net/http"
)

// LoginRequest carries the credentials for an email/password sign-in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RegisterRequest creates a new patient or caregiver account.
type RegisterRequest struct {
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=8"`
	FirstName string   `json:"firstName" validate:"required"`
	LastName  string   `json:"lastName" validate:"required"`
	UserType  UserType `json:"userType" validate:"required,oneof=patient caregiver"`
	Phone     string   `json:"phone,omitempty"`
}

// OnboardingRequest completes the post-registration profile.
type OnboardingRequest struct {
	DateOfBirth      string   `json:"dateOfBirth" validate:"required"`
	Address          string   `json:"address" validate:"required"`
	City             string   `json:"city" validate:"required"`
	Conditions       []string `json:"conditions,omitempty"`
	EmergencyContact string   `json:"emergencyContact,omitempty"`
}

// AuthPayload is returned by login and registration. The access token is
// what the web tier stores into the user's session cookie.
type AuthPayload struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
	IsBoarded   bool   `json:"isBoarded"`
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthPayload, error) {
	if err := validateRequest(req); err != nil {
		return nil, ClassifyError(err)
	}

	res, err := Call[AuthPayload](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/v1/auth/login",
		JSON:   req,
	})
	if err != nil {
		return nil, err
	}
	return &res.Data, nil
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthPayload, error) {
	if err := validateRequest(req); err != nil {
		return nil, ClassifyError(err)
	}

	res, err := Call[AuthPayload](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/v1/auth/register",
		JSON:   req,
	})
	if err != nil {
		return nil, err
	}
	return &res.Data, nil
}

// CompleteOnboarding submits the profile details collected after
// registration and returns the updated user.
func (c *Client) CompleteOnboarding(ctx context.Context, req OnboardingRequest) (*User, error) {
	if err := validateRequest(req); err != nil {
		return nil, ClassifyError(err)
	}

	res, err := Call[User](ctx, c, Request{
		Method:  http.MethodPost,
		Path:    "/v1/auth/onboarding",
		JSON:    req,
		DataKey: []string{"data", "user"},
	})
	if err != nil {
		return nil, err
	}
	return &res.Data, nil
}

// Logout invalidates the current session's token server-side.
func (c *Client) Logout(ctx context.Context) error {
	_, err := Call[struct{}](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/v1/auth/logout",
	})
	return err
}
