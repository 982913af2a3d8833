package carebridge_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	carebridge "github.com/carebridge/sdk-go"
)

func TestConfigValidateDefaults(t *testing.T) {
	cfg := carebridge.Config{}
	require.NoError(t, cfg.Validate())

	require.Equal(t, carebridge.DefaultClientBaseURL, cfg.ClientBaseURL)
	require.Equal(t, carebridge.DefaultAdminBaseURL, cfg.AdminBaseURL)
	require.Equal(t, carebridge.DefaultMaxRetries, cfg.MaxRetries)
	require.Equal(t, carebridge.DefaultRetryInterval, cfg.RetryInterval)
}

func TestConfigValidateEnvFallback(t *testing.T) {
	t.Setenv(carebridge.EnvClientBaseURL, "https://client.staging.example.com/")
	t.Setenv(carebridge.EnvAdminBaseURL, "https://admin.staging.example.com")

	cfg := carebridge.Config{}
	require.NoError(t, cfg.Validate())

	require.Equal(t, "https://client.staging.example.com", cfg.ClientBaseURL)
	require.Equal(t, "https://admin.staging.example.com", cfg.AdminBaseURL)
}

func TestConfigValidateExplicitValuesWinOverEnv(t *testing.T) {
	t.Setenv(carebridge.EnvClientBaseURL, "https://env.example.com")

	cfg := carebridge.Config{ClientBaseURL: "https://explicit.example.com"}
	require.NoError(t, cfg.Validate())
	require.Equal(t, "https://explicit.example.com", cfg.ClientBaseURL)
}

func TestConfigValidateRejectsBadURLs(t *testing.T) {
	cfg := carebridge.Config{ClientBaseURL: "::not-a-url"}
	require.Error(t, cfg.Validate())

	cfg = carebridge.Config{AdminBaseURL: "::not-a-url"}
	require.Error(t, cfg.Validate())
}

func TestConfigValidateRejectsNegativeRates(t *testing.T) {
	cfg := carebridge.Config{RequestsPerSecond: -1}
	require.Error(t, cfg.Validate())

	cfg = carebridge.Config{KeepAliveInterval: -time.Second}
	require.Error(t, cfg.Validate())
}

func TestConfigValidateKeepAliveDefaults(t *testing.T) {
	cfg := carebridge.Config{KeepAliveInterval: time.Minute}
	require.NoError(t, cfg.Validate())
	require.NotZero(t, cfg.KeepAliveTimeout)
}

func TestConfigValidateRateLimiterBurst(t *testing.T) {
	cfg := carebridge.Config{RequestsPerSecond: 10}
	require.NoError(t, cfg.Validate())
	require.Equal(t, 1, cfg.RequestBurst)
}
