package trade

import (
	"context"
	"fmt"
	"time"
)

// OrderNumberPrefix starts every order number
const OrderNumberPrefix = "POZ"

// FormatOrderNumber renders POZ + YYYYMMDD + a sequence padded to three digits.
// Sequences above 999 widen the number instead of wrapping.
func FormatOrderNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("%s%s%03d", OrderNumberPrefix, day.Format("20060102"), seq)
}

// OrderSequence atomically reserves the next per-day sequence value, starting at 1
type OrderSequence interface {
	Next(ctx context.Context, day time.Time) (int64, error)
}

// OrderNumberGenerator assigns order numbers from an OrderSequence
type OrderNumberGenerator struct {
	seq OrderSequence
	now func() time.Time
	loc *time.Location
}

// GeneratorOption configures an OrderNumberGenerator
type GeneratorOption func(*OrderNumberGenerator)

// WithClock overrides the time source
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *OrderNumberGenerator) { g.now = now }
}

// WithLocation sets the time zone used to decide the calendar day
func WithLocation(loc *time.Location) GeneratorOption {
	return func(g *OrderNumberGenerator) {
		if loc != nil {
			g.loc = loc
		}
	}
}

// NewOrderNumberGenerator creates a generator backed by seq
func NewOrderNumberGenerator(seq OrderSequence, opts ...GeneratorOption) *OrderNumberGenerator {
	g := &OrderNumberGenerator{seq: seq, now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate reserves and formats the next order number for today
func (g *OrderNumberGenerator) Generate(ctx context.Context) (string, error) {
	now := g.now().In(g.loc)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, g.loc)
	n, err := g.seq.Next(ctx, day)
	if err != nil {
		return "", fmt.Errorf("reserve order sequence: %w", err)
	}
	return FormatOrderNumber(day, n), nil
}
