package carebridge_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	carebridge "github.com/carebridge/sdk-go"
	"github.com/carebridge/sdk-go/internal/fakeapi"
)

func TestListPlans(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()

	client := newTestClient(t, srv.URL, carebridge.Config{})

	plans, err := client.ListPlans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 2)
	require.Equal(t, "basic", plans[0].ID)
	require.EqualValues(t, 2900, plans[1].PriceCents)
}

func TestSubscribeValidatesPlan(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()

	client := newTestClient(t, srv.URL, carebridge.Config{})

	_, err := client.Subscribe(context.Background(), carebridge.SubscribeRequest{})
	require.Error(t, err)

	var apiErr *carebridge.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, carebridge.ErrorTypeValidation, apiErr.Type)
	require.Contains(t, apiErr.FieldErrors, "planId")
	require.Contains(t, apiErr.FieldErrors, "paymentMethod")
}
