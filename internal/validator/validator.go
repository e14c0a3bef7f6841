// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"bookkeeper/internal/models"
	"bookkeeper/internal/money"
)

// maxMoney is the first amount that no longer fits numeric(14,2).
var maxMoney = money.MustFrom("1000000000000")

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("expense_type", validateExpenseType)
		_ = v.RegisterValidation("division_type", validateDivisionType)
		_ = v.RegisterValidation("recurrence_unit", validateRecurrenceUnit)
		_ = v.RegisterValidation("recurring_target", validateRecurringTarget)
		_ = v.RegisterValidation("date_only", validateDateOnly)
		_ = v.RegisterValidation("money", validateMoney)
		v.RegisterCustomTypeFunc(moneyValue, money.Money{})
		v.RegisterTagNameFunc(jsonName)
	}
}

func validateExpenseType(fl validator.FieldLevel) bool {
	return models.ExpenseType(fl.Field().String()).Valid()
}

func validateDivisionType(fl validator.FieldLevel) bool {
	return models.ExpenseDivisionType(fl.Field().String()).Valid()
}

func validateRecurrenceUnit(fl validator.FieldLevel) bool {
	switch models.RecurrenceUnit(fl.Field().String()) {
	case models.RecurrenceUnitDays, models.RecurrenceUnitWeeks, models.RecurrenceUnitMonths,
		models.RecurrenceUnitQuarters, models.RecurrenceUnitYears:
		return true
	}
	return false
}

func validateRecurringTarget(fl validator.FieldLevel) bool {
	return models.RecurringExpenseTarget(fl.Field().String()).Valid()
}

// validateDateOnly accepts calendar dates in YYYY-MM-DD form.
func validateDateOnly(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.DateOnly, fl.Field().String())
	return err == nil
}

// moneyValue lets tags on money.Money fields see the canonical string.
func moneyValue(field reflect.Value) interface{} {
	if m, ok := field.Interface().(money.Money); ok {
		return m.String()
	}
	return nil
}

func validateMoney(fl validator.FieldLevel) bool {
	m, err := money.From(fl.Field().String())
	if err != nil {
		return false
	}
	return m.Abs().Lt(maxMoney)
}

// jsonName reports validation failures under the JSON field name.
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
