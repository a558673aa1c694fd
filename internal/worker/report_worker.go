package worker

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"miles/internal/events"
	"miles/internal/export"
	"miles/internal/models"
)

// ReportSource reads the full booking table. Satisfied by
// *supabase.Client.
type ReportSource interface {
	ListAllBookings(ctx context.Context) ([]models.BookingRecord, error)
}

// ReportWorker periodically writes an XLSX snapshot of all bookings to
// disk for the operator. A booking event marks the snapshot dirty so an
// idle table does not get rewritten every tick.
type ReportWorker struct {
	source   ReportSource
	exporter *export.Exporter
	dir      string
	interval time.Duration
	retry    RetryPolicy
	dirty    atomic.Bool
	logger   *zerolog.Logger
}

func NewReportWorker(source ReportSource, dir string, interval time.Duration, retry RetryPolicy, logger *zerolog.Logger) *ReportWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 3
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 30 * time.Second
	}
	if interval <= 0 {
		interval = time.Hour
	}

	w := &ReportWorker{
		source:   source,
		exporter: export.NewExporter(),
		dir:      dir,
		interval: interval,
		retry:    retry,
		logger:   logger,
	}
	w.dirty.Store(true)
	return w
}

// BindEvents subscribes the worker to booking events on the bus.
func (w *ReportWorker) BindEvents(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, func(event *events.Event) error {
		w.dirty.Store(true)
		return nil
	})
}

// Run blocks until ctx is cancelled.
func (w *ReportWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info().Str("dir", w.dir).Dur("interval", w.interval).Msg("report worker started")
	w.flush(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("report worker stopped")
			return
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *ReportWorker) flush(ctx context.Context) {
	if !w.dirty.Swap(false) {
		return
	}
	if err := w.writeReport(ctx); err != nil && ctx.Err() == nil {
		w.dirty.Store(true)
		w.logger.Error().Err(err).Msg("report write failed, will retry next tick")
	}
}

// WriteNow forces one report write, with retries.
func (w *ReportWorker) WriteNow(ctx context.Context) error {
	return w.writeReport(ctx)
}

func (w *ReportWorker) writeReport(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= w.retry.MaxRetries; attempt++ {
		records, err := w.source.ListAllBookings(ctx)
		if err == nil {
			path := filepath.Join(w.dir, export.Filename(time.Now()))
			if err = w.exporter.SaveReport(path, records); err == nil {
				w.logger.Info().Str("path", path).Int("rows", len(records)).Msg("booking report written")
				return nil
			}
		}
		lastErr = err

		delay := w.retry.NextDelay(attempt)
		w.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("report attempt failed")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("report failed after %d attempts: %w", w.retry.MaxRetries, lastErr)
}
