package models

import (
	"time"

	"bookkeeper/internal/money"
)

// ExpenseType determines which two division types are legal for an expense.
type ExpenseType string

const (
	ExpenseTypeExpense  ExpenseType = "expense"
	ExpenseTypeIncome   ExpenseType = "income"
	ExpenseTypeTransfer ExpenseType = "transfer"
)

// ExpenseTypes lists every known expense type.
var ExpenseTypes = []ExpenseType{ExpenseTypeExpense, ExpenseTypeIncome, ExpenseTypeTransfer}

// Valid reports whether t is a known expense type.
func (t ExpenseType) Valid() bool {
	switch t {
	case ExpenseTypeExpense, ExpenseTypeIncome, ExpenseTypeTransfer:
		return true
	}
	return false
}

// ExpenseDivisionType is one leg kind of an expense division.
type ExpenseDivisionType string

const (
	DivisionTypeCost       ExpenseDivisionType = "cost"
	DivisionTypeBenefit    ExpenseDivisionType = "benefit"
	DivisionTypeIncome     ExpenseDivisionType = "income"
	DivisionTypeSplit      ExpenseDivisionType = "split"
	DivisionTypeTransferor ExpenseDivisionType = "transferor"
	DivisionTypeTransferee ExpenseDivisionType = "transferee"
)

// Valid reports whether t is a known division type.
func (t ExpenseDivisionType) Valid() bool {
	switch t {
	case DivisionTypeCost, DivisionTypeBenefit, DivisionTypeIncome,
		DivisionTypeSplit, DivisionTypeTransferor, DivisionTypeTransferee:
		return true
	}
	return false
}

// Expense is an expense, income or transfer recorded in a group.
//
// Template expenses hold the canonical data of a recurring series and are
// never returned by ordinary listings. Occurrences generated from a template
// carry the RecurringExpenseID of their series.
type Expense struct {
	Base
	GroupID            string                `gorm:"type:uuid;not null;index" json:"group_id"`
	UserID             string                `gorm:"type:uuid;not null" json:"user_id"`
	SourceID           string                `gorm:"type:uuid;not null" json:"source_id"`
	Type               ExpenseType           `gorm:"not null" json:"type"`
	Title              string                `gorm:"not null" json:"title"`
	Receiver           string                `json:"receiver"`
	Description        string                `json:"description,omitempty"`
	Sum                money.Money           `gorm:"type:numeric(14,2);not null" json:"sum"`
	Date               time.Time             `gorm:"type:date;not null;index" json:"date"`
	Confirmed          bool                  `gorm:"not null" json:"confirmed"`
	Template           bool                  `gorm:"not null;index" json:"template"`
	RecurringExpenseID *string               `gorm:"type:uuid;index" json:"recurring_expense_id,omitempty"`
	Division           []ExpenseDivisionItem `gorm:"foreignKey:ExpenseID" json:"division,omitempty"`
}

// ExpenseDivisionItem is one user's signed part of an expense. Rows are
// replaced as a whole whenever the division of an expense changes.
type ExpenseDivisionItem struct {
	ExpenseID string              `gorm:"type:uuid;primaryKey" json:"-"`
	UserID    string              `gorm:"type:uuid;primaryKey" json:"user_id"`
	Type      ExpenseDivisionType `gorm:"primaryKey" json:"type"`
	Sum       money.Money         `gorm:"type:numeric(14,2);not null" json:"sum"`
}
