package carrier

import (
	"context"
)

// Gateway is the single entry point into the rating pipeline: it resolves a
// carrier by name and delegates. All domain logic lives in the adapters, so
// the gateway deliberately adds nothing beyond routing.
type Gateway struct {
	registry *Registry
}

// NewGateway creates a gateway over a registry.
func NewGateway(registry *Registry) *Gateway {
	return &Gateway{registry: registry}
}

// GetRates resolves the named carrier and forwards the request. Errors from
// the registry or the adapter propagate unchanged.
func (g *Gateway) GetRates(ctx context.Context, name string, req *RateRequest) (*RateResponse, error) {
	c, err := g.registry.Get(name)
	if err != nil {
		return nil, err
	}
	return c.GetRates(ctx, req)
}
