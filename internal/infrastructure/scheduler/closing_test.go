package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/caseledger/internal/domain"
	"github.com/iho/caseledger/internal/usecase"
)

type stubReporter struct {
	dates  []string
	opts   usecase.ReportOptions
	report *usecase.PeriodReport
	err    error
}

func (s *stubReporter) DailyReport(_ context.Context, date string, opts usecase.ReportOptions) (*usecase.PeriodReport, error) {
	s.dates = append(s.dates, date)
	s.opts = opts
	return s.report, s.err
}

type stubRecorder struct {
	payer, a, b int64
	set         bool
	failures    int
}

func (r *stubRecorder) SetClosingBalances(payer, a, b int64) {
	r.payer, r.a, r.b = payer, a, b
	r.set = true
}

func (r *stubRecorder) ClosingFailed() { r.failures++ }

func TestPreviousDay(t *testing.T) {
	buenosAires := time.FixedZone("ART", -3*60*60)

	tests := []struct {
		name string
		now  time.Time
		loc  *time.Location
		want string
	}{
		{"mid month", time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC), time.UTC, "2025-03-14"},
		{"first of month", time.Date(2025, 3, 1, 0, 5, 0, 0, time.UTC), time.UTC, "2025-02-28"},
		{"first of year", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.UTC, "2024-12-31"},
		{"local day differs from UTC", time.Date(2025, 3, 15, 1, 0, 0, 0, time.UTC), buenosAires, "2025-03-13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PreviousDay(tt.now, tt.loc))
		})
	}
}

func TestRunOncePublishesBalances(t *testing.T) {
	reporter := &stubReporter{report: &usecase.PeriodReport{
		Closing: usecase.ClosingSnapshot{
			Cases:    3,
			Balances: domain.Balances{Payer: 900, A: 300, B: 600},
		},
	}}
	recorder := &stubRecorder{}

	job := NewClosingJob(reporter, recorder, time.UTC, zerolog.Nop())
	job.now = func() time.Time { return time.Date(2025, 3, 15, 0, 5, 0, 0, time.UTC) }

	report, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, []string{"2025-03-14"}, reporter.dates)
	assert.True(t, reporter.opts.BestEffort)
	assert.True(t, recorder.set)
	assert.Equal(t, int64(900), recorder.payer)
	assert.Equal(t, int64(300), recorder.a)
	assert.Equal(t, int64(600), recorder.b)
	assert.Zero(t, recorder.failures)
}

func TestRunOnceCountsFailures(t *testing.T) {
	reporter := &stubReporter{err: errors.New("database unavailable")}
	recorder := &stubRecorder{}

	job := NewClosingJob(reporter, recorder, time.UTC, zerolog.Nop())

	_, err := job.RunOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, recorder.failures)
	assert.False(t, recorder.set)
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	job := NewClosingJob(&stubReporter{}, &stubRecorder{}, time.UTC, zerolog.Nop())

	assert.Error(t, job.Start("not a schedule"))
}

func TestStartAndStop(t *testing.T) {
	job := NewClosingJob(&stubReporter{}, &stubRecorder{}, time.UTC, zerolog.Nop())

	require.NoError(t, job.Start("5 0 * * *"))

	select {
	case <-job.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
