// Package ups provides integration with the UPS Rating API.
package ups

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/tournevent/rategate/pkg/auth"
	"github.com/tournevent/rategate/pkg/carrier"
	"github.com/tournevent/rategate/pkg/transport"
)

const carrierName = "ups"

// Config holds UPS rating configuration.
type Config struct {
	BaseURL        string
	Version        string // rating API version path segment, e.g. "v2409"
	TransactionSrc string // transactionSrc header tag, defaults to "rategate"
	Timeout        time.Duration
}

// Client is the UPS rating client. It implements the carrier.Carrier
// interface; the HTTP transport and token source are injected so tests can
// script exchanges and token lifecycles.
type Client struct {
	config Config
	http   transport.Client
	auth   auth.TokenSource
	logger *otelzap.Logger
	tracer trace.Tracer
}

// New creates a new UPS rating client.
func New(cfg Config, httpClient transport.Client, tokenSource auth.TokenSource, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if cfg.TransactionSrc == "" {
		cfg.TransactionSrc = "rategate"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		config: cfg,
		http:   httpClient,
		auth:   tokenSource,
		logger: logger,
		tracer: tracer,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// GetRates returns normalized quotes from the UPS Rating API. Every step
// gates the next one: an invalid request never reaches the network, a failed
// token exchange never reaches the rating endpoint.
func (c *Client) GetRates(ctx context.Context, req *carrier.RateRequest) (*carrier.RateResponse, error) {
	if err := carrier.ValidateRateRequest(req); err != nil {
		return nil, err
	}

	requestOption := RequestOptionShop
	if req.ServiceLevel != "" {
		requestOption = RequestOptionRate
	}

	c.logger.Info("Getting UPS rates",
		zap.String("origin_postal", req.Shipper.PostalCode),
		zap.String("destination_postal", req.Recipient.PostalCode),
		zap.Int("package_count", len(req.Packages)),
		zap.String("request_option", requestOption),
	)

	token, err := c.auth.GetAccessToken(ctx)
	if err != nil {
		c.logger.Error("UPS token acquisition failed", zap.Error(err))
		return nil, err
	}

	payload, err := json.Marshal(buildRateRequestBody(req))
	if err != nil {
		return nil, carrier.NewError(carrier.CodeInternal, "failed to marshal UPS rate request").WithCause(err)
	}

	resp, err := c.http.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		URL:    rateURL(c.config.BaseURL, c.config.Version, requestOption),
		Headers: http.Header{
			"Authorization":  []string{"Bearer " + token},
			"Content-Type":   []string{"application/json"},
			"Transactionsrc": []string{c.config.TransactionSrc},
			"Transid":        []string{uuid.New().String()},
		},
		Body:    payload,
		Timeout: c.config.Timeout,
	})
	if err != nil {
		c.logger.Error("UPS API error", zap.Error(err))
		return nil, err
	}

	if err := classifyStatus(resp); err != nil {
		c.logger.Error("UPS API rejected request",
			zap.Int("status", resp.Status),
			zap.Error(err),
		)
		return nil, err
	}

	var body RateResponseBody
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, carrier.NewError(carrier.CodeMalformedResponse, "UPS response is not valid JSON").
			WithDetails(string(resp.Body)).
			WithCause(err)
	}
	if problems := validateRateResponse(&body); len(problems) > 0 {
		return nil, carrier.NewError(carrier.CodeMalformedResponse, "UPS response schema mismatch").
			WithDetails(problems)
	}

	return normalizeRateResponse(&body, req.ServiceLevel), nil
}

// classifyStatus maps a non-2xx rating response into the shared taxonomy.
func classifyStatus(resp *transport.Response) error {
	switch {
	case resp.Status == http.StatusTooManyRequests:
		return carrier.NewError(carrier.CodeRateLimited, "UPS rate limit exceeded").
			WithStatus(resp.Status).
			WithRetryable(true)
	case resp.Status == http.StatusUnauthorized || resp.Status == http.StatusForbidden:
		return carrier.NewError(carrier.CodeAuth, "UPS unauthorized").
			WithStatus(resp.Status).
			WithRetryable(true)
	case resp.Status >= 400:
		return carrier.NewError(carrier.CodeUpstream, "UPS request failed").
			WithStatus(resp.Status).
			WithRetryable(resp.Status >= 500).
			WithDetails(string(resp.Body))
	}
	return nil
}

// ============================================================================
// Conversion helpers: carrier models -> API models
// ============================================================================

func buildRateRequestBody(req *carrier.RateRequest) *RateRequestBody {
	shipment := Shipment{
		Shipper: ShipmentParty{Address: addressToAPI(req.Shipper)},
		ShipTo:  ShipmentParty{Address: addressToAPI(req.Recipient)},
		Package: packagesToAPI(req.Packages),
	}
	if req.ServiceLevel != "" {
		shipment.Service = &ServiceCode{Code: req.ServiceLevel}
	}

	return &RateRequestBody{
		RateRequest: RateRequestElement{Shipment: shipment},
	}
}

func addressToAPI(addr carrier.Address) Address {
	out := Address{
		CountryCode:       addr.CountryCode,
		PostalCode:        addr.PostalCode,
		StateProvinceCode: addr.StateProvince,
		City:              addr.City,
	}
	// Address lines ride along only when the first one is present.
	if addr.AddressLine1 != "" {
		out.AddressLine = []string{addr.AddressLine1}
		if addr.AddressLine2 != "" {
			out.AddressLine = append(out.AddressLine, addr.AddressLine2)
		}
	}
	return out
}

func packagesToAPI(pkgs []carrier.Package) []Package {
	result := make([]Package, len(pkgs))
	for i, p := range pkgs {
		result[i] = Package{
			PackageWeight: PackageWeight{
				UnitOfMeasurement: UnitOfMeasurement{Code: string(p.Weight.Unit)},
				Weight:            formatDecimal(p.Weight.Value),
			},
		}
		if p.Dimensions != nil {
			result[i].Dimensions = &Dimensions{
				UnitOfMeasurement: UnitOfMeasurement{Code: string(p.Dimensions.Unit)},
				Length:            formatDecimal(p.Dimensions.Length),
				Width:             formatDecimal(p.Dimensions.Width),
				Height:            formatDecimal(p.Dimensions.Height),
			}
		}
	}
	return result
}

// formatDecimal renders a value the way UPS expects its string-typed
// numerics: shortest decimal form, no exponent, no locale formatting.
func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ============================================================================
// Conversion helpers: API models -> carrier models
// ============================================================================

func normalizeRateResponse(body *RateResponseBody, serviceFilter string) *carrier.RateResponse {
	rated := *body.RateResponse.RatedShipment

	quotes := make([]carrier.RateQuote, 0, len(rated))
	for _, rs := range rated {
		// The Rate request option already forces a single service, but the
		// upstream may still return more; filter again.
		if serviceFilter != "" && rs.Service.Code != serviceFilter {
			continue
		}

		quote := carrier.RateQuote{
			Carrier:      carrierName,
			ServiceLevel: rs.Service.Code,
			ServiceName:  rs.Service.Description,
			Total: carrier.Money{
				Amount:   rs.TotalCharges.MonetaryValue,
				Currency: rs.TotalCharges.CurrencyCode,
			},
		}

		if rs.GuaranteedDelivery != nil && rs.GuaranteedDelivery.BusinessDaysInTransit != "" {
			if days, err := strconv.Atoi(rs.GuaranteedDelivery.BusinessDaysInTransit); err == nil && days >= 0 {
				quote.DeliveryDays = &days
			}
		}
		for _, alert := range rs.RatedShipmentAlert {
			if alert.Description != "" {
				quote.Warnings = append(quote.Warnings, alert.Description)
			}
		}

		quotes = append(quotes, quote)
	}

	return &carrier.RateResponse{Quotes: quotes}
}

// Ensure Client implements the carrier interface.
var _ carrier.Carrier = (*Client)(nil)
