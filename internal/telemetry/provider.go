package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Environment variables that enable OTLP export.
const (
	EnvMetricsURL = "ONESECMAIL_OTEL_METRICS_URL"
	EnvLogsURL    = "ONESECMAIL_OTEL_LOGS_URL"
)

const defaultExportInterval = 30 * time.Second

// Config selects the OTLP/HTTP endpoints. An empty URL leaves that signal
// on the no-op global provider.
type Config struct {
	MetricsURL     string
	LogsURL        string
	ExportInterval time.Duration
}

// Provider owns the SDK providers installed by Init.
type Provider struct {
	meters  *sdkmetric.MeterProvider
	loggers *sdklog.LoggerProvider
}

// Init installs OTLP/HTTP exporting meter and logger providers as the OTel
// globals. Call Shutdown on the result to flush pending data.
func Init(ctx context.Context, cfg Config) (*Provider, error) {
	p := &Provider{}
	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = defaultExportInterval
	}

	if cfg.MetricsURL != "" {
		exp, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(cfg.MetricsURL))
		if err != nil {
			return nil, fmt.Errorf("create metric exporter: %w", err)
		}
		p.meters = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval))),
		)
		otel.SetMeterProvider(p.meters)
	}

	if cfg.LogsURL != "" {
		exp, err := otlploghttp.New(ctx, otlploghttp.WithEndpointURL(cfg.LogsURL))
		if err != nil {
			_ = p.Shutdown(ctx)
			return nil, fmt.Errorf("create log exporter: %w", err)
		}
		p.loggers = sdklog.NewLoggerProvider(
			sdklog.WithProcessor(sdklog.NewBatchProcessor(exp)),
		)
		global.SetLoggerProvider(p.loggers)
	}

	return p, nil
}

// Enabled reports whether any exporter was installed.
func (p *Provider) Enabled() bool {
	return p != nil && (p.meters != nil || p.loggers != nil)
}

// Shutdown flushes and stops the installed providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.meters != nil {
		errs = append(errs, p.meters.Shutdown(ctx))
	}
	if p.loggers != nil {
		errs = append(errs, p.loggers.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
