package carebridge

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Message is one entry in a patient/caregiver conversation.
type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"senderId"`
	RecipientID string    `json:"recipientId"`
	Body        string    `json:"body"`
	ReadAt      time.Time `json:"readAt,omitempty"`
	SentAt      time.Time `json:"sentAt"`
}

// ConversationPage is one page of a two-party message history.
type ConversationPage struct {
	Messages []Message `json:"messages"`
	Total    int       `json:"total"`
}

// SendMessageRequest posts a message to another platform user.
type SendMessageRequest struct {
	RecipientID string `json:"recipientId" validate:"required"`
	Body        string `json:"body" validate:"required,max=4000"`
}

// SendMessage delivers a message to the recipient's inbox.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error) {
	if err := validateRequest(req); err != nil {
		return nil, ClassifyError(err)
	}

	res, err := Call[Message](ctx, c, Request{
		Method:  http.MethodPost,
		Path:    "/v1/messages",
		JSON:    req,
		DataKey: []string{"data", "message"},
	})
	if err != nil {
		return nil, err
	}
	return &res.Data, nil
}

// ListConversation returns the message history with one other user,
// newest first.
func (c *Client) ListConversation(ctx context.Context, participantID string, page Page) (*ConversationPage, error) {
	if participantID == "" {
		return nil, ClassifyError(fmt.Errorf("participantID is required"))
	}

	params := url.Values{}
	page.apply(params)

	res, err := Call[ConversationPage](ctx, c, Request{
		Method:  http.MethodGet,
		Path:    "/v1/messages/" + url.PathEscape(participantID),
		Params:  params,
		DataKey: []string{"data", "conversation"},
	})
	if err != nil {
		return nil, err
	}
	return &res.Data, nil
}
