package api

import "context"

// redirectURLResponse is the backend's answer to both Stripe URL requests:
// a single URL the browser must be sent to. The rest of the flow happens
// on Stripe's side and comes back to us as a redirect with a one-shot
// `result` query parameter.
type redirectURLResponse struct {
	URL string `json:"url"`
}

// ConnectBankURL asks the backend to open a Stripe Connect onboarding
// session for the authenticated creator and returns the URL to redirect
// them to. country is the creator's two-letter bank country code.
//
// A failure here is transient by contract — nothing about the creator's
// state has changed, so the form can simply be resubmitted.
func (c *Client) ConnectBankURL(ctx context.Context, pair TokenPair, country string) (string, error) {
	body := map[string]string{"country": country}

	var res redirectURLResponse
	if err := c.postJSON(ctx, "/stripe/connect", pair, body, &res, "bank connection"); err != nil {
		return "", err
	}
	return res.URL, nil
}

// CheckoutRequest describes one tip a supporter wants to send.
type CheckoutRequest struct {
	Username string `json:"username"`
	Amount   int64  `json:"payment_amount"` // minor currency units
	Name     string `json:"name,omitempty"`
	Message  string `json:"message,omitempty"`
}

// CheckoutURL asks the backend to open a Stripe Checkout session for a tip
// and returns the URL to redirect the supporter to. No authentication —
// anyone may tip.
func (c *Client) CheckoutURL(ctx context.Context, req CheckoutRequest) (string, error) {
	var res redirectURLResponse
	if err := c.postJSON(ctx, "/stripe/checkout", TokenPair{}, req, &res, "checkout"); err != nil {
		return "", err
	}
	return res.URL, nil
}
