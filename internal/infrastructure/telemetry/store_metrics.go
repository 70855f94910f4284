package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// Payment channels reported on pozinox_payments_total
const (
	PaymentChannelReturn  = "return"
	PaymentChannelWebhook = "webhook"
)

// Verification code results reported on pozinox_verification_codes_total
const (
	CodeResultSent      = "sent"
	CodeResultVerified  = "verified"
	CodeResultInvalid   = "invalid"
	CodeResultExhausted = "exhausted"
)

// ErrMeterNil is returned when a metrics constructor gets a nil meter
var ErrMeterNil = &MetricsError{Op: "NewStoreMetrics", Err: "meter cannot be nil"}

// MetricsError reports a failed metrics setup step
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// StoreMetrics holds the storefront business counters
type StoreMetrics struct {
	quotesCreated     *Counter
	quotesFinalized   *Counter
	quoteValue        *Histogram
	payments          *Counter
	verificationCodes *Counter
}

// NewStoreMetrics creates the business instruments on meter
func NewStoreMetrics(meter metric.Meter) (*StoreMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &StoreMetrics{}
	var err error
	if m.quotesCreated, err = NewCounter(meter, "pozinox_quotes_created_total",
		"Quotes opened by customers", "{quote}"); err != nil {
		return nil, err
	}
	if m.quotesFinalized, err = NewCounter(meter, "pozinox_quotes_finalized_total",
		"Quotes finalized into orders", "{quote}"); err != nil {
		return nil, err
	}
	if m.quoteValue, err = NewHistogram(meter, HistogramOpts{
		Name:        "pozinox_quote_value_clp",
		Description: "Total of finalized quotes",
		Unit:        "CLP",
		Boundaries:  QuoteValueBuckets,
	}); err != nil {
		return nil, err
	}
	if m.payments, err = NewCounter(meter, "pozinox_payments_total",
		"Payment notifications applied to orders", "{payment}"); err != nil {
		return nil, err
	}
	if m.verificationCodes, err = NewCounter(meter, "pozinox_verification_codes_total",
		"Email verification codes by outcome", "{code}"); err != nil {
		return nil, err
	}
	return m, nil
}

// QuoteCreated counts a newly opened quote
func (m *StoreMetrics) QuoteCreated(ctx context.Context) {
	m.quotesCreated.Inc(ctx)
}

// QuoteFinalized counts a finalized quote and records its total
func (m *StoreMetrics) QuoteFinalized(ctx context.Context, total decimal.Decimal) {
	m.quotesFinalized.Inc(ctx)
	m.quoteValue.Record(ctx, total.InexactFloat64())
}

// PaymentApplied counts a gateway payment status received on channel
func (m *StoreMetrics) PaymentApplied(ctx context.Context, status, channel string) {
	m.payments.Inc(ctx, AttrPaymentStatus.String(status), AttrPaymentChannel.String(channel))
}

// VerificationCode counts a code outcome for purpose
func (m *StoreMetrics) VerificationCode(ctx context.Context, purpose, result string) {
	m.verificationCodes.Inc(ctx, AttrCodePurpose.String(purpose), AttrCodeResult.String(result))
}
