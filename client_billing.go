package carebridge

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Plan is a subscription tier with its entitlements.
type Plan struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	PriceCents   int64    `json:"priceCents"`
	Currency     string   `json:"currency"`
	Interval     string   `json:"interval"`
	Entitlements []string `json:"entitlements,omitempty"`
}

// Invoice is a billing record for a subscription period.
type Invoice struct {
	ID          string    `json:"id"`
	PlanID      string    `json:"planId"`
	AmountCents int64     `json:"amountCents"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	IssuedAt    time.Time `json:"issuedAt"`
	PaidAt      time.Time `json:"paidAt,omitempty"`
}

// SubscribeRequest switches the account onto a plan.
type SubscribeRequest struct {
	PlanID        string `json:"planId" validate:"required"`
	PaymentMethod string `json:"paymentMethod" validate:"required"`
}

// ListPlans returns the available subscription tiers.
func (c *Client) ListPlans(ctx context.Context) ([]Plan, error) {
	res, err := Call[[]Plan](ctx, c, Request{
		Method:  http.MethodGet,
		Path:    "/v1/billing/plans",
		DataKey: []string{"data", "plans"},
	})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// Subscribe puts the account on the given plan.
func (c *Client) Subscribe(ctx context.Context, req SubscribeRequest) (*Invoice, error) {
	if err := validateRequest(req); err != nil {
		return nil, ClassifyError(err)
	}

	res, err := Call[Invoice](ctx, c, Request{
		Method:  http.MethodPost,
		Path:    "/v1/billing/subscribe",
		JSON:    req,
		DataKey: []string{"data", "invoice"},
	})
	if err != nil {
		return nil, err
	}
	return &res.Data, nil
}

// ListInvoices returns the account's billing history.
func (c *Client) ListInvoices(ctx context.Context, page Page) ([]Invoice, error) {
	params := url.Values{}
	page.apply(params)

	res, err := Call[[]Invoice](ctx, c, Request{
		Method:  http.MethodGet,
		Path:    "/v1/billing/invoices",
		Params:  params,
		DataKey: []string{"data", "invoices"},
	})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}
