package models

import "time"

// RecurrenceUnit is the calendar unit of a recurrence period.
type RecurrenceUnit string

const (
	RecurrenceUnitDays     RecurrenceUnit = "days"
	RecurrenceUnitWeeks    RecurrenceUnit = "weeks"
	RecurrenceUnitMonths   RecurrenceUnit = "months"
	RecurrenceUnitQuarters RecurrenceUnit = "quarters"
	RecurrenceUnitYears    RecurrenceUnit = "years"
)

// RecurringExpenseTarget selects which occurrences of a series an update or
// delete affects.
type RecurringExpenseTarget string

const (
	TargetSingle RecurringExpenseTarget = "single"
	TargetAll    RecurringExpenseTarget = "all"
	TargetAfter  RecurringExpenseTarget = "after"
)

// Valid reports whether t is a known target.
func (t RecurringExpenseTarget) Valid() bool {
	switch t {
	case TargetSingle, TargetAll, TargetAfter:
		return true
	}
	return false
}

// RecurringExpense describes a recurring series.
//
// NextMissing is the earliest date for which no occurrence exists yet and
// only ever moves forward. Version is bumped on every watermark write;
// writers compare it to detect a concurrent backfill.
type RecurringExpense struct {
	Base
	GroupID           string         `gorm:"type:uuid;not null;index" json:"group_id"`
	TemplateExpenseID *string        `gorm:"type:uuid" json:"template_expense_id,omitempty"`
	PeriodAmount      int            `gorm:"not null" json:"period_amount"`
	PeriodUnit        RecurrenceUnit `gorm:"not null" json:"period_unit"`
	OccursUntil       *time.Time     `gorm:"type:date" json:"occurs_until,omitempty"`
	NextMissing       time.Time      `gorm:"type:date;not null" json:"next_missing"`
	Version           int            `gorm:"not null" json:"version"`
}
