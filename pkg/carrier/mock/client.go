// Package mock provides a canned carrier implementation for testing and for
// running the gateway without live credentials.
package mock

import (
	"context"

	"github.com/tournevent/rategate/pkg/carrier"
)

// Client is a mock carrier. Err, when set, is returned from every call;
// Quotes, when set, replace the canned defaults.
type Client struct {
	name   string
	Quotes []carrier.RateQuote
	Err    error
}

// New creates a new mock carrier.
func New(name string) *Client {
	return &Client{name: name}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// GetRates returns canned rate quotes, honoring the request's service-level
// filter the way a real adapter would.
func (c *Client) GetRates(ctx context.Context, req *carrier.RateRequest) (*carrier.RateResponse, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	if err := carrier.ValidateRateRequest(req); err != nil {
		return nil, err
	}

	quotes := c.Quotes
	if quotes == nil {
		ground := 3
		express := 1
		quotes = []carrier.RateQuote{
			{
				Carrier:      c.name,
				ServiceLevel: "03",
				ServiceName:  "Ground",
				Total:        carrier.Money{Amount: "15.82", Currency: "USD"},
				DeliveryDays: &ground,
			},
			{
				Carrier:      c.name,
				ServiceLevel: "01",
				ServiceName:  "Next Day Air",
				Total:        carrier.Money{Amount: "42.50", Currency: "USD"},
				DeliveryDays: &express,
			},
		}
	}

	if req.ServiceLevel != "" {
		filtered := make([]carrier.RateQuote, 0, len(quotes))
		for _, q := range quotes {
			if q.ServiceLevel == req.ServiceLevel {
				filtered = append(filtered, q)
			}
		}
		quotes = filtered
	}

	return &carrier.RateResponse{Quotes: quotes}, nil
}

// Ensure Client implements the carrier interface.
var _ carrier.Carrier = (*Client)(nil)
