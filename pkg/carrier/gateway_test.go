package carrier_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/rategate/pkg/carrier"
	"github.com/tournevent/rategate/pkg/carrier/mock"
)

func TestGateway_GetRates(t *testing.T) {
	registry := carrier.NewRegistry()
	registry.Register("ups", mock.New("ups"))
	gateway := carrier.NewGateway(registry)

	resp, err := gateway.GetRates(context.Background(), "ups", validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Quotes)
	assert.Equal(t, "ups", resp.Quotes[0].Carrier)
}

func TestGateway_GetRates_UnknownCarrier(t *testing.T) {
	registry := carrier.NewRegistry()
	gateway := carrier.NewGateway(registry)

	_, err := gateway.GetRates(context.Background(), "fedex", validRequest())
	require.Error(t, err)

	var cerr *carrier.Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, carrier.CodeUnsupportedCarrier, cerr.Code)
}

func TestGateway_GetRates_PropagatesErrorUnchanged(t *testing.T) {
	failing := mock.New("ups")
	failing.Err = carrier.NewError(carrier.CodeRateLimited, "slow down").
		WithStatus(429).
		WithRetryable(true)

	registry := carrier.NewRegistry()
	registry.Register("ups", failing)
	gateway := carrier.NewGateway(registry)

	_, err := gateway.GetRates(context.Background(), "ups", validRequest())
	require.Error(t, err)

	var cerr *carrier.Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, carrier.CodeRateLimited, cerr.Code)
	assert.Equal(t, 429, cerr.Status)
	assert.True(t, cerr.Retryable)
}
