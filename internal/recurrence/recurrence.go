// Package recurrence implements the calendar arithmetic of recurring
// expenses. All dates are calendar days represented as UTC midnight.
package recurrence

import (
	"time"

	apperrors "bookkeeper/internal/errors"
	"bookkeeper/internal/models"
)

// Period is the distance between two occurrences.
type Period struct {
	Amount int                   `json:"amount"`
	Unit   models.RecurrenceUnit `json:"unit"`
}

// Validate checks that the period has a positive amount and a known unit.
func (p Period) Validate() error {
	if p.Amount <= 0 {
		return apperrors.InvalidInput("amount", p.Amount, "period amount must be positive")
	}
	switch p.Unit {
	case models.RecurrenceUnitDays, models.RecurrenceUnitWeeks, models.RecurrenceUnitMonths,
		models.RecurrenceUnitQuarters, models.RecurrenceUnitYears:
		return nil
	}
	return apperrors.InvalidInput("unit", p.Unit, "one of days, weeks, months, quarters, years")
}

// Date returns the calendar day y-m-d.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Day truncates t to its calendar day.
func Day(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// Next returns from advanced by one period. Month based units clamp to the
// last day of the target month, so Jan 31 plus one month is the end of
// February.
func Next(from time.Time, p Period) (time.Time, error) {
	if err := p.Validate(); err != nil {
		return time.Time{}, err
	}
	from = Day(from)
	switch p.Unit {
	case models.RecurrenceUnitDays:
		return from.AddDate(0, 0, p.Amount), nil
	case models.RecurrenceUnitWeeks:
		return from.AddDate(0, 0, 7*p.Amount), nil
	case models.RecurrenceUnitMonths:
		return addMonths(from, p.Amount), nil
	case models.RecurrenceUnitQuarters:
		return addMonths(from, 3*p.Amount), nil
	default:
		return addMonths(from, 12*p.Amount), nil
	}
}

func addMonths(from time.Time, months int) time.Time {
	year, month, day := from.Date()
	// day 0 of the following month is the last day of the target month
	last := Date(year, month+time.Month(months)+1, 0).Day()
	return Date(year, month+time.Month(months), min(day, last))
}

// Limit returns the exclusive upper bound for generating occurrences: the
// target date, or occursUntil when that comes first.
func Limit(target time.Time, occursUntil *time.Time) time.Time {
	target = Day(target)
	if occursUntil != nil && Day(*occursUntil).Before(target) {
		return Day(*occursUntil)
	}
	return target
}

// MissingDates lists the occurrence dates from nextMissing that fall strictly
// before limit, and returns the watermark to store afterwards: the first date
// that was not generated. When nothing is missing the watermark is
// nextMissing itself.
func MissingDates(nextMissing, limit time.Time, p Period) ([]time.Time, time.Time, error) {
	if err := p.Validate(); err != nil {
		return nil, time.Time{}, err
	}
	limit = Day(limit)
	var dates []time.Time
	d := Day(nextMissing)
	for d.Before(limit) {
		dates = append(dates, d)
		next, err := Next(d, p)
		if err != nil {
			return nil, time.Time{}, err
		}
		d = next
	}
	return dates, d, nil
}
