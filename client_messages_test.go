package carebridge_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	carebridge "github.com/carebridge/sdk-go"
	"github.com/carebridge/sdk-go/internal/fakeapi"
)

func TestSendMessage(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()

	client := newTestClient(t, srv.URL, carebridge.Config{})

	msg, err := client.SendMessage(context.Background(), carebridge.SendMessageRequest{
		RecipientID: "cg-9",
		Body:        "Running ten minutes late",
	})
	require.NoError(t, err)
	require.Equal(t, "msg-5", msg.ID)
	require.Equal(t, "cg-9", msg.RecipientID)
}

func TestSendMessageValidatesRecipient(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()

	client := newTestClient(t, srv.URL, carebridge.Config{})

	_, err := client.SendMessage(context.Background(), carebridge.SendMessageRequest{
		Body: "orphaned message",
	})
	require.Error(t, err)

	var apiErr *carebridge.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, carebridge.ErrorTypeValidation, apiErr.Type)
	require.Contains(t, apiErr.FieldErrors, "recipientId")
	require.Zero(t, srv.Calls("/v1/messages"))
}

func TestListConversation(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()

	client := newTestClient(t, srv.URL, carebridge.Config{})

	page, err := client.ListConversation(context.Background(), "cg-9", carebridge.Page{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Len(t, page.Messages, 1)
	require.Equal(t, "cg-9", page.Messages[0].SenderID)
}
