package ups_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/tournevent/rategate/pkg/auth"
	"github.com/tournevent/rategate/pkg/carrier"
	"github.com/tournevent/rategate/pkg/carrier/ups"
	"github.com/tournevent/rategate/pkg/transport"
)

// staticTokens is a TokenSource stub.
type staticTokens struct {
	token string
	err   error
	calls int
}

func (s *staticTokens) GetAccessToken(ctx context.Context) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

func newTestClient(mock *transport.MockClient, tokens auth.TokenSource) *ups.Client {
	logger := otelzap.New(zap.NewNop())
	return ups.New(ups.Config{
		BaseURL: "https://api.example.test",
		Version: "v2409",
	}, mock, tokens, logger, nil)
}

func validRequest() *carrier.RateRequest {
	return &carrier.RateRequest{
		Shipper: carrier.Address{
			CountryCode:   "US",
			PostalCode:    "10001",
			StateProvince: "NY",
			City:          "New York",
			AddressLine1:  "350 Fifth Ave",
			AddressLine2:  "Suite 6000",
		},
		Recipient: carrier.Address{
			CountryCode: "US",
			PostalCode:  "94105",
		},
		Packages: []carrier.Package{
			{Weight: carrier.Weight{Value: 2.5, Unit: carrier.WeightLB}},
		},
	}
}

const twoServiceBody = `{
	"RateResponse": {
		"Response": {},
		"RatedShipment": [
			{
				"Service": {"Code": "03", "Description": "UPS Ground"},
				"TotalCharges": {"MonetaryValue": "12.34", "CurrencyCode": "USD"},
				"GuaranteedDelivery": {"BusinessDaysInTransit": "3"}
			},
			{
				"Service": {"Code": "02", "Description": "UPS 2nd Day Air"},
				"TotalCharges": {"MonetaryValue": "25.10", "CurrencyCode": "USD"}
			}
		]
	}
}`

func TestClient_GetRates_Success(t *testing.T) {
	mock := transport.NewMockClient()
	mock.QueueStatus(http.StatusOK, twoServiceBody)

	client := newTestClient(mock, &staticTokens{token: "tok-1"})

	resp, err := client.GetRates(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, resp.Quotes, 2)

	// Quotes come back in carrier order, fields mapped verbatim.
	first := resp.Quotes[0]
	assert.Equal(t, "ups", first.Carrier)
	assert.Equal(t, "03", first.ServiceLevel)
	assert.Equal(t, "UPS Ground", first.ServiceName)
	assert.Equal(t, carrier.Money{Amount: "12.34", Currency: "USD"}, first.Total)
	require.NotNil(t, first.DeliveryDays)
	assert.Equal(t, 3, *first.DeliveryDays)

	second := resp.Quotes[1]
	assert.Equal(t, "02", second.ServiceLevel)
	assert.Equal(t, carrier.Money{Amount: "25.10", Currency: "USD"}, second.Total)
	assert.Nil(t, second.DeliveryDays)
}

func TestClient_GetRates_ShopMode(t *testing.T) {
	mock := transport.NewMockClient()
	mock.QueueStatus(http.StatusOK, twoServiceBody)

	client := newTestClient(mock, &staticTokens{token: "tok-1"})

	_, err := client.GetRates(context.Background(), validRequest())
	require.NoError(t, err)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "https://api.example.test/rating/v2409/Shop", reqs[0].URL)
	assert.NotContains(t, string(reqs[0].Body), `"Service"`)
}

func TestClient_GetRates_SingleServiceMode(t *testing.T) {
	mock := transport.NewMockClient()
	mock.QueueStatus(http.StatusOK, twoServiceBody)

	client := newTestClient(mock, &staticTokens{token: "tok-1"})

	req := validRequest()
	req.ServiceLevel = "03"

	resp, err := client.GetRates(context.Background(), req)
	require.NoError(t, err)

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "https://api.example.test/rating/v2409/Rate", reqs[0].URL)
	assert.Contains(t, string(reqs[0].Body), `"Service":{"Code":"03"}`)

	// Upstream returned "03" and "02"; the filter keeps only the forced one.
	require.Len(t, resp.Quotes, 1)
	assert.Equal(t, "03", resp.Quotes[0].ServiceLevel)
}

func TestClient_GetRates_WirePayload(t *testing.T) {
	mock := transport.NewMockClient()
	mock.QueueStatus(http.StatusOK, twoServiceBody)

	client := newTestClient(mock, &staticTokens{token: "tok-1"})

	req := validRequest()
	req.Packages[0].Dimensions = &carrier.Dimensions{
		Length: 10, Width: 5.5, Height: 4, Unit: carrier.DimensionIN,
	}

	_, err := client.GetRates(context.Background(), req)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(mock.Requests()[0].Body, &body))

	shipment := body["RateRequest"].(map[string]any)["Shipment"].(map[string]any)

	shipper := shipment["Shipper"].(map[string]any)["Address"].(map[string]any)
	assert.Equal(t, "US", shipper["CountryCode"])
	assert.Equal(t, "10001", shipper["PostalCode"])
	assert.Equal(t, "NY", shipper["StateProvinceCode"])
	assert.Equal(t, []any{"350 Fifth Ave", "Suite 6000"}, shipper["AddressLine"])

	// Recipient has no address lines: the field is omitted entirely.
	recipient := shipment["ShipTo"].(map[string]any)["Address"].(map[string]any)
	assert.NotContains(t, recipient, "AddressLine")
	assert.NotContains(t, recipient, "City")

	// All numerics ride as decimal strings.
	pkg := shipment["Package"].([]any)[0].(map[string]any)
	weight := pkg["PackageWeight"].(map[string]any)
	assert.Equal(t, "2.5", weight["Weight"])
	assert.Equal(t, "LB", weight["UnitOfMeasurement"].(map[string]any)["Code"])

	dims := pkg["Dimensions"].(map[string]any)
	assert.Equal(t, "10", dims["Length"])
	assert.Equal(t, "5.5", dims["Width"])
	assert.Equal(t, "4", dims["Height"])
	assert.Equal(t, "IN", dims["UnitOfMeasurement"].(map[string]any)["Code"])
}

func TestClient_GetRates_DimensionsOmittedWhenAbsent(t *testing.T) {
	mock := transport.NewMockClient()
	mock.QueueStatus(http.StatusOK, twoServiceBody)

	client := newTestClient(mock, &staticTokens{token: "tok-1"})

	_, err := client.GetRates(context.Background(), validRequest())
	require.NoError(t, err)

	assert.NotContains(t, string(mock.Requests()[0].Body), `"Dimensions"`)
}

func TestClient_GetRates_Headers(t *testing.T) {
	mock := transport.NewMockClient()
	mock.QueueStatus(http.StatusOK, twoServiceBody)

	client := newTestClient(mock, &staticTokens{token: "tok-1"})

	_, err := client.GetRates(context.Background(), validRequest())
	require.NoError(t, err)

	headers := mock.Requests()[0].Headers
	assert.Equal(t, "Bearer tok-1", headers.Get("Authorization"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	assert.Equal(t, "rategate", headers.Get("transactionSrc"))
	assert.NotEmpty(t, headers.Get("transId"))
}

func TestClient_GetRates_ValidationGate(t *testing.T) {
	mock := transport.NewMockClient()
	tokens := &staticTokens{token: "tok-1"}
	client := newTestClient(mock, tokens)

	req := validRequest()
	req.Shipper.CountryCode = "USA"

	_, err := client.GetRates(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, carrier.CodeValidation, carrier.CodeOf(err))
	assert.Equal(t, 0, mock.CallCount(), "invalid requests never reach the network")
	assert.Equal(t, 0, tokens.calls, "invalid requests never trigger a token exchange")
}

func TestClient_GetRates_TokenFailureGate(t *testing.T) {
	mock := transport.NewMockClient()
	tokens := &staticTokens{err: carrier.NewError(carrier.CodeAuth, "OAuth unauthorized").WithStatus(401).WithRetryable(true)}
	client := newTestClient(mock, tokens)

	_, err := client.GetRates(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, carrier.CodeAuth, carrier.CodeOf(err))
	assert.Equal(t, 0, mock.CallCount(), "no rating call without a token")
}

func TestClient_GetRates_StatusMapping(t *testing.T) {
	tests := []struct {
		status    int
		code      carrier.ErrorCode
		retryable bool
	}{
		{429, carrier.CodeRateLimited, true},
		{401, carrier.CodeAuth, true},
		{403, carrier.CodeAuth, true},
		{500, carrier.CodeUpstream, true},
		{503, carrier.CodeUpstream, true},
		{400, carrier.CodeUpstream, false},
		{404, carrier.CodeUpstream, false},
	}

	for _, tt := range tests {
		mock := transport.NewMockClient()
		mock.QueueStatus(tt.status, `{"response":{"errors":[{"code":"110002"}]}}`)

		client := newTestClient(mock, &staticTokens{token: "tok-1"})

		_, err := client.GetRates(context.Background(), validRequest())
		require.Error(t, err, "status %d", tt.status)

		var cerr *carrier.Error
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, tt.code, cerr.Code, "status %d", tt.status)
		assert.Equal(t, tt.status, cerr.Status)
		assert.Equal(t, tt.retryable, cerr.Retryable, "status %d", tt.status)
	}
}

func TestClient_GetRates_UpstreamErrorCarriesBody(t *testing.T) {
	mock := transport.NewMockClient()
	mock.QueueStatus(http.StatusBadRequest, `{"response":{"errors":[{"code":"110002","message":"invalid shipment"}]}}`)

	client := newTestClient(mock, &staticTokens{token: "tok-1"})

	_, err := client.GetRates(context.Background(), validRequest())
	require.Error(t, err)

	var cerr *carrier.Error
	require.True(t, errors.As(err, &cerr))
	details, ok := cerr.Details.(string)
	require.True(t, ok)
	assert.Contains(t, details, "invalid shipment")
}

func TestClient_GetRates_EmptyRatedShipmentList(t *testing.T) {
	mock := transport.NewMockClient()
	mock.QueueStatus(http.StatusOK, `{"RateResponse":{"RatedShipment":[]}}`)

	client := newTestClient(mock, &staticTokens{token: "tok-1"})

	resp, err := client.GetRates(context.Background(), validRequest())
	require.NoError(t, err, "no available services is not an error")
	assert.Empty(t, resp.Quotes)
}

func TestClient_GetRates_MissingRatedShipmentList(t *testing.T) {
	mock := transport.NewMockClient()
	mock.QueueStatus(http.StatusOK, `{"RateResponse":{}}`)

	client := newTestClient(mock, &staticTokens{token: "tok-1"})

	_, err := client.GetRates(context.Background(), validRequest())
	require.Error(t, err)

	var cerr *carrier.Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, carrier.CodeMalformedResponse, cerr.Code)
	assert.False(t, cerr.Retryable, "schema drift is not transient")
}

func TestClient_GetRates_MalformedEntries(t *testing.T) {
	cases := []string{
		`{}`,
		`{"RateResponse":{"RatedShipment":[{"TotalCharges":{"MonetaryValue":"1.00","CurrencyCode":"USD"}}]}}`,
		`{"RateResponse":{"RatedShipment":[{"Service":{"Code":"03"}}]}}`,
		`{"RateResponse":{"RatedShipment":[{"Service":{"Code":"03"},"TotalCharges":{"CurrencyCode":"USD"}}]}}`,
	}

	for _, body := range cases {
		mock := transport.NewMockClient()
		mock.QueueStatus(http.StatusOK, body)

		client := newTestClient(mock, &staticTokens{token: "tok-1"})

		_, err := client.GetRates(context.Background(), validRequest())
		require.Error(t, err, "body %q", body)
		assert.Equal(t, carrier.CodeMalformedResponse, carrier.CodeOf(err))
	}
}

func TestClient_GetRates_NotJSON(t *testing.T) {
	mock := transport.NewMockClient()
	mock.QueueStatus(http.StatusOK, `<html>gateway</html>`)

	client := newTestClient(mock, &staticTokens{token: "tok-1"})

	_, err := client.GetRates(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, carrier.CodeMalformedResponse, carrier.CodeOf(err))
}

func TestClient_GetRates_AlertsBecomeWarnings(t *testing.T) {
	mock := transport.NewMockClient()
	mock.QueueStatus(http.StatusOK, `{
		"RateResponse": {
			"RatedShipment": [
				{
					"Service": {"Code": "03"},
					"TotalCharges": {"MonetaryValue": "12.34", "CurrencyCode": "USD"},
					"RatedShipmentAlert": [
						{"Code": "110971", "Description": "Your invoice may vary from the displayed reference rates"}
					]
				}
			]
		}
	}`)

	client := newTestClient(mock, &staticTokens{token: "tok-1"})

	resp, err := client.GetRates(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, resp.Quotes, 1)
	require.Len(t, resp.Quotes[0].Warnings, 1)
	assert.Contains(t, resp.Quotes[0].Warnings[0], "reference rates")
}

func TestClient_GetRates_TransportErrorPassesThrough(t *testing.T) {
	mock := transport.NewMockClient()
	mock.Queue(nil, carrier.NewError(carrier.CodeTimeout, "HTTP request timed out").WithRetryable(true))

	client := newTestClient(mock, &staticTokens{token: "tok-1"})

	_, err := client.GetRates(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, carrier.CodeTimeout, carrier.CodeOf(err))
	assert.True(t, carrier.IsRetryable(err))
}

func TestClient_GetRates_TokenReusedAcrossCalls(t *testing.T) {
	// End to end through the real provider: two rate calls inside the
	// token's validity window share one exchange.
	tokenBody := `{"access_token":"tok-1","expires_in":3600}`
	exchanges := 0

	mock := transport.NewMockClient()
	mock.OnDo = func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		if strings.Contains(req.URL, "/oauth/token") {
			exchanges++
			return &transport.Response{Status: http.StatusOK, Body: []byte(tokenBody)}, nil
		}
		return &transport.Response{Status: http.StatusOK, Body: []byte(twoServiceBody)}, nil
	}

	provider := auth.NewProvider(mock, auth.ProviderConfig{
		TokenURL:     "https://api.example.test/security/v1/oauth/token",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	})
	client := newTestClient(mock, provider)

	_, err := client.GetRates(context.Background(), validRequest())
	require.NoError(t, err)
	_, err = client.GetRates(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, exchanges, "second call reuses the cached token")

	rating := mock.Requests()[len(mock.Requests())-1]
	assert.Equal(t, "Bearer tok-1", rating.Headers.Get("Authorization"))
}

func TestClient_Name(t *testing.T) {
	client := newTestClient(transport.NewMockClient(), &staticTokens{token: "tok-1"})
	assert.Equal(t, "ups", client.Name())
}
