package lab

import (
	"time"

	"github.com/rs/zerolog"
)

// Reconciler turns a flat list of readings into one record per test.
type Reconciler struct {
	dates  DateStrategy
	now    func() time.Time
	logger zerolog.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithDateStrategy replaces the timestamp parser.
func WithDateStrategy(s DateStrategy) Option {
	return func(r *Reconciler) { r.dates = s }
}

// WithClock replaces the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

func NewReconciler(logger zerolog.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		dates:  DefaultStrategy,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Now returns the reconciler's current time.
func (r *Reconciler) Now() time.Time { return r.now() }

// Reconcile groups, resolves and orders the readings as of the
// reconciler's clock.
func (r *Reconciler) Reconcile(readings []Reading) []Record {
	return r.ReconcileAt(readings, r.now())
}

// ReconcileAt is Reconcile with an explicit reference time.
func (r *Reconciler) ReconcileAt(readings []Reading, now time.Time) []Record {
	groups := GroupReadings(readings)
	records := make([]Record, 0, len(groups))
	for _, g := range groups {
		for _, rd := range g.Readings {
			if !r.dates.Parse(rd.Timestamp).OK {
				r.logger.Debug().
					Str("test", rd.TestName).
					Str("timestamp", rd.Timestamp).
					Msg("lab reading has no usable timestamp")
			}
		}
		records = append(records, resolveWith(r.dates, g.Readings, now))
	}
	return Order(records)
}

// Reconcile runs the full pipeline with the default date strategy.
func Reconcile(readings []Reading, now time.Time) []Record {
	return NewReconciler(zerolog.Nop()).ReconcileAt(readings, now)
}
