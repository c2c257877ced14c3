package carrier_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/rategate/pkg/carrier"
	"github.com/tournevent/rategate/pkg/carrier/mock"
)

func TestRegistry_Register(t *testing.T) {
	registry := carrier.NewRegistry()

	registry.Register("test-carrier", mock.New("test-carrier"))

	got, err := registry.Get("test-carrier")
	require.NoError(t, err, "carrier should be registered")
	assert.Equal(t, "test-carrier", got.Name())
}

func TestRegistry_Register_Override(t *testing.T) {
	registry := carrier.NewRegistry()

	first := mock.New("first")
	second := mock.New("second")

	registry.Register("ups", first)
	registry.Register("ups", second)
	assert.Equal(t, 1, registry.Count())

	got, err := registry.Get("ups")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Name(), "last registration wins")
}

func TestRegistry_Get_NotFound(t *testing.T) {
	registry := carrier.NewRegistry()

	_, err := registry.Get("nonexistent")
	require.Error(t, err, "should return error for unregistered carrier")

	var cerr *carrier.Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, carrier.CodeUnsupportedCarrier, cerr.Code)
	assert.False(t, cerr.Retryable, "missing carrier is a config error, not transient")
}

func TestRegistry_Names(t *testing.T) {
	registry := carrier.NewRegistry()

	registry.Register("ups", mock.New("ups"))
	registry.Register("fedex", mock.New("fedex"))

	names := registry.Names()
	assert.Len(t, names, 2)
	assert.Contains(t, names, "ups")
	assert.Contains(t, names, "fedex")
}

func TestRegistry_Count(t *testing.T) {
	registry := carrier.NewRegistry()
	assert.Equal(t, 0, registry.Count())

	registry.Register("ups", mock.New("ups"))
	assert.Equal(t, 1, registry.Count())

	registry.Register("fedex", mock.New("fedex"))
	assert.Equal(t, 2, registry.Count())
}
