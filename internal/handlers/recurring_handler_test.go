package handlers

import (
	"net/http"
	"testing"

	apperrors "bookkeeper/internal/errors"
	"bookkeeper/internal/models"
	"bookkeeper/internal/recurrence"
	"bookkeeper/internal/services"
)

func TestRecurringHandler_CreateRecurring(t *testing.T) {
	t.Run("returns 201 with ids", func(t *testing.T) {
		audit := &mockAuditService{}
		recurring := &mockRecurringService{
			createRecurringFn: func(_, expenseID string, period recurrence.Period) (*services.RecurringCreated, error) {
				if expenseID != testExpenseID || period.Amount != 1 || period.Unit != models.RecurrenceUnitMonths {
					t.Errorf("unexpected args %s %+v", expenseID, period)
				}
				return &services.RecurringCreated{TemplateExpenseID: "t", RecurringExpenseID: "r"}, nil
			},
		}
		r := setupExpenseRouter(&mockExpenseService{}, recurring, audit)

		rec := doRequest(r, "POST", expensesPath+"/"+testExpenseID+"/recurring", `{"period_amount":1,"period_unit":"months"}`)

		assertStatus(t, rec, http.StatusCreated)
		if parseJSON(t, rec)["recurring_expense_id"] != "r" {
			t.Error("expected recurring_expense_id in response")
		}
		if a := audit.actions(); len(a) != 1 || a[0] != "CREATE_RECURRING" {
			t.Errorf("expected CREATE_RECURRING audit, got %v", a)
		}
	})

	t.Run("returns 400 on unknown unit", func(t *testing.T) {
		r := setupExpenseRouter(&mockExpenseService{}, &mockRecurringService{}, &mockAuditService{})

		rec := doRequest(r, "POST", expensesPath+"/"+testExpenseID+"/recurring", `{"period_amount":1,"period_unit":"fortnights"}`)

		assertStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("returns 400 when already recurring", func(t *testing.T) {
		recurring := &mockRecurringService{
			createRecurringFn: func(string, string, recurrence.Period) (*services.RecurringCreated, error) {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidExpense, "Expense is already recurring")
			},
		}
		r := setupExpenseRouter(&mockExpenseService{}, recurring, &mockAuditService{})

		rec := doRequest(r, "POST", expensesPath+"/"+testExpenseID+"/recurring", `{"period_amount":1,"period_unit":"weeks"}`)

		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, parseJSON(t, rec), "INVALID_EXPENSE")
	})
}

func TestRecurringHandler_UpdateRecurring(t *testing.T) {
	t.Run("passes target", func(t *testing.T) {
		var got models.RecurringExpenseTarget
		audit := &mockAuditService{}
		recurring := &mockRecurringService{
			updateFn: func(_, _ string, target models.RecurringExpenseTarget, _ services.ExpenseInput) (*services.OperationResult, error) {
				got = target
				return &services.OperationResult{Message: "Updated after occurrences", Count: 3}, nil
			},
		}
		r := setupExpenseRouter(&mockExpenseService{}, recurring, audit)

		rec := doRequest(r, "PUT", expensesPath+"/recurring/"+testExpenseID+"?target=after", expenseBody)

		assertStatus(t, rec, http.StatusOK)
		if got != models.TargetAfter {
			t.Errorf("expected target after, got %s", got)
		}
		if parseJSON(t, rec)["count"] != float64(3) {
			t.Error("expected count 3")
		}
		if a := audit.actions(); len(a) != 1 || a[0] != "UPDATE_RECURRING" {
			t.Errorf("expected UPDATE_RECURRING audit, got %v", a)
		}
	})

	t.Run("returns 400 without target", func(t *testing.T) {
		r := setupExpenseRouter(&mockExpenseService{}, &mockRecurringService{}, &mockAuditService{})

		rec := doRequest(r, "PUT", expensesPath+"/recurring/"+testExpenseID, expenseBody)

		assertStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("returns 409 on concurrent update", func(t *testing.T) {
		recurring := &mockRecurringService{
			updateFn: func(string, string, models.RecurringExpenseTarget, services.ExpenseInput) (*services.OperationResult, error) {
				return nil, apperrors.ErrConcurrentUpdate
			},
		}
		r := setupExpenseRouter(&mockExpenseService{}, recurring, &mockAuditService{})

		rec := doRequest(r, "PUT", expensesPath+"/recurring/"+testExpenseID+"?target=all", expenseBody)

		assertStatus(t, rec, http.StatusConflict)
		assertErrorCode(t, parseJSON(t, rec), "CONCURRENT_UPDATE")
	})
}

func TestRecurringHandler_DeleteRecurring(t *testing.T) {
	for _, target := range []models.RecurringExpenseTarget{models.TargetSingle, models.TargetAll, models.TargetAfter} {
		t.Run("target "+string(target), func(t *testing.T) {
			var got models.RecurringExpenseTarget
			recurring := &mockRecurringService{
				deleteFn: func(_, _ string, tgt models.RecurringExpenseTarget) (*services.OperationResult, error) {
					got = tgt
					return &services.OperationResult{Count: 1}, nil
				},
			}
			r := setupExpenseRouter(&mockExpenseService{}, recurring, &mockAuditService{})

			rec := doRequest(r, "DELETE", expensesPath+"/recurring/"+testExpenseID+"?target="+string(target), "")

			assertStatus(t, rec, http.StatusOK)
			if got != target {
				t.Errorf("expected target %s, got %s", target, got)
			}
		})
	}

	t.Run("returns 400 on unknown target", func(t *testing.T) {
		r := setupExpenseRouter(&mockExpenseService{}, &mockRecurringService{}, &mockAuditService{})

		rec := doRequest(r, "DELETE", expensesPath+"/recurring/"+testExpenseID+"?target=future", "")

		assertStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("returns 400 on non recurring expense", func(t *testing.T) {
		recurring := &mockRecurringService{
			deleteFn: func(string, string, models.RecurringExpenseTarget) (*services.OperationResult, error) {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidExpense, "Expense is not recurring")
			},
		}
		r := setupExpenseRouter(&mockExpenseService{}, recurring, &mockAuditService{})

		rec := doRequest(r, "DELETE", expensesPath+"/recurring/"+testExpenseID+"?target=all", "")

		assertStatus(t, rec, http.StatusBadRequest)
		assertErrorCode(t, parseJSON(t, rec), "INVALID_EXPENSE")
	})
}
