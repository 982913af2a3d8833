package carebridge_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	carebridge "github.com/carebridge/sdk-go"
	"github.com/carebridge/sdk-go/internal/fakeapi"
)

func TestLogin(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()

	client := newTestClient(t, srv.URL, carebridge.Config{})

	payload, err := client.Login(context.Background(), carebridge.LoginRequest{
		Email:    "ada@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.Equal(t, "token-user-1", payload.AccessToken)
	require.Equal(t, "ada@example.com", payload.User.Email)
	require.True(t, payload.IsBoarded)
}

func TestLoginRejectsInvalidInputLocally(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()

	client := newTestClient(t, srv.URL, carebridge.Config{})

	_, err := client.Login(context.Background(), carebridge.LoginRequest{
		Email:    "not-an-email",
		Password: "short",
	})
	require.Error(t, err)

	var apiErr *carebridge.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, carebridge.ErrorTypeValidation, apiErr.Type)
	require.Contains(t, apiErr.FieldErrors, "email")
	require.Contains(t, apiErr.FieldErrors, "password")

	// Validation fails before any request is made.
	require.Zero(t, srv.Calls("/v1/auth/login"))
}

func TestLoginSurfacesBackendAuthError(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()

	client := newTestClient(t, srv.URL, carebridge.Config{})

	_, err := client.Login(context.Background(), carebridge.LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong-password",
	})
	require.Error(t, err)

	var apiErr *carebridge.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, carebridge.ErrorTypeAuth, apiErr.Type)
	require.Equal(t, "invalid credentials", apiErr.Message)
}

func TestRegisterValidatesUserType(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()

	client := newTestClient(t, srv.URL, carebridge.Config{})

	_, err := client.Register(context.Background(), carebridge.RegisterRequest{
		Email:     "ada@example.com",
		Password:  "correct-horse",
		FirstName: "Ada",
		LastName:  "Osei",
		UserType:  carebridge.UserTypeAdmin,
	})
	require.Error(t, err)

	var apiErr *carebridge.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, carebridge.ErrorTypeValidation, apiErr.Type)
	require.Contains(t, apiErr.FieldErrors, "userType")
}

func TestLogout(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()

	client := newTestClient(t, srv.URL, carebridge.Config{
		Sessions: carebridge.StaticSession(carebridge.Session{
			AccessToken: "token-user-1",
			IsLoggedIn:  true,
		}),
	})

	require.NoError(t, client.Logout(context.Background()))
	require.Equal(t, 1, srv.Calls("/v1/auth/logout"))
}
