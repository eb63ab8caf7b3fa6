// Package scheduler runs the periodic daily closing.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/iho/caseledger/internal/domain"
	"github.com/iho/caseledger/internal/usecase"
)

// DailyReporter builds the daily report of a date.
type DailyReporter interface {
	DailyReport(ctx context.Context, date string, opts usecase.ReportOptions) (*usecase.PeriodReport, error)
}

// ClosingRecorder publishes the outcome of a closing run.
type ClosingRecorder interface {
	SetClosingBalances(payer, a, b int64)
	ClosingFailed()
}

// ClosingJob computes the daily report of the previous calendar day.
type ClosingJob struct {
	reports  DailyReporter
	recorder ClosingRecorder
	loc      *time.Location
	logger   zerolog.Logger
	timeout  time.Duration
	now      func() time.Time
	cron     *cron.Cron
}

// NewClosingJob creates a ClosingJob evaluating days in loc.
func NewClosingJob(reports DailyReporter, recorder ClosingRecorder, loc *time.Location, logger zerolog.Logger) *ClosingJob {
	if loc == nil {
		loc = time.UTC
	}
	return &ClosingJob{
		reports:  reports,
		recorder: recorder,
		loc:      loc,
		logger:   logger.With().Str("job", "daily_closing").Logger(),
		timeout:  5 * time.Minute,
		now:      time.Now,
	}
}

// Start schedules the job on a standard five field cron spec.
func (j *ClosingJob) Start(schedule string) error {
	c := cron.New(cron.WithLocation(j.loc))

	if _, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()

		_, _ = j.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("unable to schedule daily closing: %w", err)
	}

	c.Start()
	j.cron = c
	j.logger.Info().Str("schedule", schedule).Str("timezone", j.loc.String()).Msg("daily closing scheduler started")

	return nil
}

// Stop stops the scheduler and returns a context done when the running job ends.
func (j *ClosingJob) Stop() context.Context {
	if j.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return j.cron.Stop()
}

// RunOnce closes the day before the current one.
func (j *ClosingJob) RunOnce(ctx context.Context) (*usecase.PeriodReport, error) {
	date := PreviousDay(j.now(), j.loc)
	log := j.logger.With().Str("date", date).Logger()
	ctx = log.WithContext(ctx)

	report, err := j.reports.DailyReport(ctx, date, usecase.ReportOptions{BestEffort: true})
	if err != nil {
		j.recorder.ClosingFailed()
		log.Error().Err(err).Msg("daily closing failed")
		return nil, err
	}

	closing := report.Closing
	j.recorder.SetClosingBalances(closing.Balances.Payer, closing.Balances.A, closing.Balances.B)

	log.Info().
		Int64("collected", report.CashFlow.Collected).
		Int64("to_lab", report.Distribution.ToLab).
		Int64("to_a", report.Distribution.ToA).
		Int64("to_b", report.Distribution.ToB).
		Int64("balance_payer", closing.Balances.Payer).
		Int64("balance_a", closing.Balances.A).
		Int64("balance_b", closing.Balances.B).
		Int("cases", closing.Cases).
		Int("skipped", len(report.Skipped)).
		Msg("daily closing computed")

	return report, nil
}

// PreviousDay returns the calendar day before now in loc, as YYYY-MM-DD.
func PreviousDay(now time.Time, loc *time.Location) string {
	local := now.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d-1, 12, 0, 0, 0, loc).Format(domain.DateLayout)
}
