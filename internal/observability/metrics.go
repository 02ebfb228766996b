package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/m3dev4/essenz/internal/config"
)

// InitMetrics installs the global meter provider. The returned shutdown
// flushes the final export.
func InitMetrics(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELMetricsEnabled {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create metric exporter: %w", err)
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))),
	)
	otel.SetMeterProvider(provider)

	return provider.Shutdown, nil
}

// AuthMetrics counts the outcomes of account and session operations.
type AuthMetrics struct {
	registrations  metric.Int64Counter
	logins         metric.Int64Counter
	verifications  metric.Int64Counter
	sessionsActive metric.Int64UpDownCounter
	loginDuration  metric.Float64Histogram
}

func NewAuthMetrics() (*AuthMetrics, error) {
	meter := otel.Meter("essenz/auth")

	registrations, err := meter.Int64Counter("auth.registrations",
		metric.WithDescription("Registration attempts by outcome"))
	if err != nil {
		return nil, err
	}
	logins, err := meter.Int64Counter("auth.logins",
		metric.WithDescription("Login attempts by outcome"))
	if err != nil {
		return nil, err
	}
	verifications, err := meter.Int64Counter("auth.email_verifications",
		metric.WithDescription("Email verification attempts by outcome"))
	if err != nil {
		return nil, err
	}
	sessionsActive, err := meter.Int64UpDownCounter("auth.sessions.active",
		metric.WithDescription("Sessions currently tracked"))
	if err != nil {
		return nil, err
	}
	loginDuration, err := meter.Float64Histogram("auth.login.duration",
		metric.WithDescription("Login handling time"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &AuthMetrics{
		registrations:  registrations,
		logins:         logins,
		verifications:  verifications,
		sessionsActive: sessionsActive,
		loginDuration:  loginDuration,
	}, nil
}

func (m *AuthMetrics) RecordRegistration(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.registrations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *AuthMetrics) RecordLogin(ctx context.Context, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.logins.Add(ctx, 1, attrs)
	m.loginDuration.Record(ctx, elapsed.Seconds(), attrs)
}

func (m *AuthMetrics) RecordVerification(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.verifications.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *AuthMetrics) SessionOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.sessionsActive.Add(ctx, 1)
}

func (m *AuthMetrics) SessionClosed(ctx context.Context, n int64) {
	if m == nil {
		return
	}
	m.sessionsActive.Add(ctx, -n)
}
