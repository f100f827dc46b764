// Package telemetry defines the auth-domain metrics recorded by the
// revocation and auth services.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds counters for the token lifecycle. All record methods are
// safe on a nil receiver so wiring telemetry stays optional.
type Metrics struct {
	tokenChecks  metric.Int64Counter
	revocations  metric.Int64Counter
	sweepDeleted metric.Int64Counter
}

// NewMetrics registers the token lifecycle counters on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	tokenChecks, err := meter.Int64Counter("auth.token_checks",
		metric.WithDescription("Token checks by outcome"))
	if err != nil {
		return nil, err
	}
	revocations, err := meter.Int64Counter("auth.revocations",
		metric.WithDescription("Tokens revoked by reason"))
	if err != nil {
		return nil, err
	}
	sweepDeleted, err := meter.Int64Counter("auth.sweep_deleted",
		metric.WithDescription("Expired revocation records removed by the sweep"))
	if err != nil {
		return nil, err
	}
	return &Metrics{
		tokenChecks:  tokenChecks,
		revocations:  revocations,
		sweepDeleted: sweepDeleted,
	}, nil
}

// RecordCheck counts one token check with its outcome (valid, invalid,
// expired, revoked, inactive).
func (m *Metrics) RecordCheck(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.tokenChecks.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordRevocation counts one revocation with its reason.
func (m *Metrics) RecordRevocation(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.revocations.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordSweep counts records removed by one sweep run.
func (m *Metrics) RecordSweep(ctx context.Context, deleted int64) {
	if m == nil {
		return
	}
	m.sweepDeleted.Add(ctx, deleted)
}
