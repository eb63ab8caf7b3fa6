package domain

import (
	"fmt"
	"regexp"
	"time"
)

// PeriodKind distinguishes report windows.
type PeriodKind string

const (
	PeriodMonthly PeriodKind = "monthly"
	PeriodDaily   PeriodKind = "daily"
)

// DateLayout is the format of daily report dates.
const DateLayout = "2006-01-02"

var dateParamRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Period is a half-open report window [Start, End).
type Period struct {
	Kind  PeriodKind
	Year  int
	Month time.Month
	Day   int
	Start time.Time
	End   time.Time
}

// MonthlyPeriod returns the window from the first instant of the month to the
// first instant of the next one, in loc.
func MonthlyPeriod(year, month int, loc *time.Location) (Period, error) {
	if year < 1 || year > 9999 {
		return Period{}, NewValidationError("year", "must be a four digit year")
	}
	if month < 1 || month > 12 {
		return Period{}, NewValidationError("month", "must be between 1 and 12")
	}
	if loc == nil {
		loc = time.UTC
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return Period{
		Kind:  PeriodMonthly,
		Year:  year,
		Month: time.Month(month),
		Start: start,
		End:   time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, loc),
	}, nil
}

// DailyPeriod returns the window from midnight of date to midnight of the next
// day, in loc. An empty date means the day containing now.
func DailyPeriod(date string, now time.Time, loc *time.Location) (Period, error) {
	if loc == nil {
		loc = time.UTC
	}

	var start time.Time
	if date == "" {
		local := now.In(loc)
		start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	} else {
		if !dateParamRegex.MatchString(date) {
			return Period{}, NewValidationError("date", "must match YYYY-MM-DD")
		}
		parsed, err := time.ParseInLocation(DateLayout, date, loc)
		if err != nil {
			return Period{}, NewValidationError("date", fmt.Sprintf("is not a calendar date: %s", date))
		}
		start = parsed
	}

	return Period{
		Kind:  PeriodDaily,
		Year:  start.Year(),
		Month: start.Month(),
		Day:   start.Day(),
		Start: start,
		End:   time.Date(start.Year(), start.Month(), start.Day()+1, 0, 0, 0, 0, loc),
	}, nil
}

// Contains reports whether t falls inside [Start, End).
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// BeforeEnd reports whether t precedes the exclusive end of the window.
func (p Period) BeforeEnd(t time.Time) bool {
	return t.Before(p.End)
}

// Label renders the period as YYYY-MM or YYYY-MM-DD.
func (p Period) Label() string {
	if p.Kind == PeriodDaily {
		return p.Start.Format(DateLayout)
	}
	return p.Start.Format("2006-01")
}
