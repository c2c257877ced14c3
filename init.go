package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"

	"github.com/tournevent/rategate/internal/config"
	"github.com/tournevent/rategate/internal/telemetry"
	"github.com/tournevent/rategate/pkg/auth"
	"github.com/tournevent/rategate/pkg/carrier"
	"github.com/tournevent/rategate/pkg/carrier/mock"
	"github.com/tournevent/rategate/pkg/carrier/ups"
	"github.com/tournevent/rategate/pkg/transport"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
	return shutdown, err
}

func initCarrierRegistry(cfg *config.Config, logger *otelzap.Logger) *carrier.Registry {
	registry := carrier.NewRegistry()

	tracer := otel.GetTracerProvider().Tracer(cfg.ServiceName)

	if cfg.UPSEnabled {
		if cfg.UPSUseMock {
			registry.Register("ups", mock.New("ups"))
			return registry
		}

		httpClient := transport.NewHTTPClient(transport.HTTPClientConfig{
			Timeout: cfg.HTTPTimeout,
		})
		tokens := auth.NewProvider(httpClient, auth.ProviderConfig{
			TokenURL:     cfg.TokenURL(),
			ClientID:     cfg.UPSClientID,
			ClientSecret: cfg.UPSClientSecret,
			Timeout:      cfg.TokenTimeout,
			Skew:         cfg.TokenSkew,
		})
		upsClient := ups.New(ups.Config{
			BaseURL:        cfg.UPSBaseURL,
			Version:        cfg.UPSRateVersion,
			TransactionSrc: cfg.UPSTransactionSrc,
			Timeout:        cfg.HTTPTimeout,
		}, httpClient, tokens, logger, tracer)
		registry.Register(upsClient.Name(), upsClient)
	}

	return registry
}

func runRate(cmd *cobra.Command, args []string) error {
	carrierName, requestPath := args[0], args[1]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	raw, err := os.ReadFile(requestPath)
	if err != nil {
		return fmt.Errorf("reading request file: %w", err)
	}
	var req carrier.RateRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("parsing request file: %w", err)
	}

	gateway := carrier.NewGateway(initCarrierRegistry(cfg, logger))
	resp, err := gateway.GetRates(cmd.Context(), carrierName, &req)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
