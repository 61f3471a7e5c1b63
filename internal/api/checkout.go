package api

import (
	"context"
	"net/http"
	"net/url"
)

// Plan identifiers accepted by the checkout endpoint
const (
	PlanLearner = "learner"
	PlanPremium = "premium"
)

// Checkout is a hosted payment session created by the backend
type Checkout struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

// CreateCheckout asks the backend for a hosted checkout session. The
// plan travels as a query parameter, matching the endpoint's contract.
// The client never touches payment details; it only hands the learner
// the URL to finish payment in a browser.
func (c *Client) CreateCheckout(ctx context.Context, planType string) (*Checkout, error) {
	query := url.Values{}
	query.Set("plan_type", planType)

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/payments/create-checkout?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var result Checkout
	if err := parseResponse(resp, &result); err != nil {
		return nil, err
	}

	c.logger.Debug("checkout session created", "session_id", result.SessionID)
	return &result, nil
}
