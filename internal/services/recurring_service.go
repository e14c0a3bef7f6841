package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "bookkeeper/internal/errors"
	"bookkeeper/internal/logger"
	"bookkeeper/internal/metrics"
	"bookkeeper/internal/models"
	"bookkeeper/internal/recurrence"
)

// recurringService materializes and edits recurring expense series.
//
// Each series is a RecurringExpense row plus a hidden template expense.
// Occurrences are created lazily by CreateMissing, one transaction per
// series. The series row is read with a row lock and its watermark is
// written with a version check, so two backfills of the same series can
// never both create the same date.
type recurringService struct {
	db       *gorm.DB
	inflight singleflight.Group
}

// NewRecurringService creates a new RecurringServicer.
func NewRecurringService(db *gorm.DB) RecurringServicer {
	return &recurringService{db: db}
}

// CreateRecurring turns an expense into the first item of a recurring
// series. The expense is copied into a template and the first missing date
// is one period after the expense date.
func (s *recurringService) CreateRecurring(groupID, expenseID string, period recurrence.Period) (*RecurringCreated, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	var result *RecurringCreated
	err := s.db.Transaction(func(tx *gorm.DB) error {
		expense, err := loadExpense(tx, groupID, expenseID)
		if err != nil {
			return err
		}
		if expense.Template || expense.RecurringExpenseID != nil {
			return apperrors.WithMessage(apperrors.ErrInvalidExpense, "Expense is already recurring")
		}

		nextMissing, err := recurrence.Next(expense.Date, period)
		if err != nil {
			return err
		}

		template := cloneExpense(expense)
		template.Template = true
		if err := tx.Create(template).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		rec := &models.RecurringExpense{
			GroupID:           groupID,
			TemplateExpenseID: &template.ID,
			PeriodAmount:      period.Amount,
			PeriodUnit:        period.Unit,
			NextMissing:       nextMissing,
			Version:           1,
		}
		if err := tx.Create(rec).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Model(&models.Expense{}).
			Where("id IN ?", []string{expense.ID, template.ID}).
			Update("recurring_expense_id", rec.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		result = &RecurringCreated{TemplateExpenseID: template.ID, RecurringExpenseID: rec.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("recurring expense created",
		"group_id", groupID,
		"recurring_expense_id", result.RecurringExpenseID,
		"period_amount", period.Amount,
		"period_unit", period.Unit,
	)
	return result, nil
}

// CreateMissing creates every occurrence of the group's active series that
// falls before target and returns how many were created. Calling it again
// with the same target creates nothing. Concurrent calls for the same group
// and target share one run, which is detached from the caller's
// cancellation so one abandoned request cannot fail the others.
func (s *recurringService) CreateMissing(ctx context.Context, groupID string, target time.Time) (int, error) {
	target = recurrence.Day(target)
	key := groupID + "|" + target.Format(time.DateOnly)
	run := context.WithoutCancel(ctx)
	v, err, _ := s.inflight.Do(key, func() (interface{}, error) {
		return s.createMissing(run, groupID, target)
	})
	return v.(int), err
}

func (s *recurringService) createMissing(ctx context.Context, groupID string, target time.Time) (int, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.RecurringExpense{}).
		Where("group_id = ? AND template_expense_id IS NOT NULL AND next_missing < ?", groupID, target).
		Where("occurs_until IS NULL OR occurs_until > next_missing").
		Order("next_missing").
		Pluck("id", &ids).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := 0
	for _, id := range ids {
		n, err := s.backfill(ctx, groupID, id, target)
		if err != nil {
			logger.Get().Errorw("recurring backfill failed",
				"group_id", groupID,
				"recurring_expense_id", id,
				"error", err,
			)
			return total, err
		}
		total += n
	}

	if total > 0 {
		logger.Get().Infow("recurring occurrences created",
			"group_id", groupID,
			"target", target.Format(time.DateOnly),
			"count", total,
		)
	}
	return total, nil
}

// backfill materializes the missing occurrences of one series and advances
// its watermark in the same transaction.
func (s *recurringService) backfill(ctx context.Context, groupID, recurringID string, target time.Time) (int, error) {
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := lockRecurrence(tx, groupID, recurringID)
		if err != nil {
			if errors.Is(err, apperrors.ErrRecurrenceNotFound) {
				// deleted since it was listed
				return nil
			}
			return err
		}
		if rec.TemplateExpenseID == nil {
			return nil
		}

		period := recurrence.Period{Amount: rec.PeriodAmount, Unit: rec.PeriodUnit}
		dates, watermark, err := recurrence.MissingDates(rec.NextMissing, recurrence.Limit(target, rec.OccursUntil), period)
		if err != nil {
			return err
		}
		if len(dates) == 0 {
			return nil
		}

		template, err := loadExpense(tx, groupID, *rec.TemplateExpenseID)
		if err != nil {
			return err
		}

		for _, d := range dates {
			occurrence := cloneExpense(template)
			occurrence.Template = false
			occurrence.Confirmed = false
			occurrence.Date = d
			occurrence.RecurringExpenseID = &rec.ID
			if err := tx.Create(occurrence).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		res := tx.Model(&models.RecurringExpense{}).
			Where("id = ? AND version = ?", rec.ID, rec.Version).
			Updates(map[string]interface{}{
				"next_missing": watermark,
				"version":      rec.Version + 1,
			})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrConcurrentUpdate
		}

		created = len(dates)
		return nil
	})
	if err != nil {
		return 0, err
	}
	metrics.OccurrencesCreated.Add(float64(created))
	return created, nil
}

// DeleteRecurringByID deletes occurrences of the series the expense belongs
// to. single deletes only the expense. all deletes the template, every
// occurrence and the series. after deletes the template and every occurrence
// on or after the expense date and ends the series at that date.
func (s *recurringService) DeleteRecurringByID(groupID, expenseID string, target models.RecurringExpenseTarget) (*OperationResult, error) {
	if !target.Valid() {
		return nil, apperrors.InvalidInput("target", target, "one of single, all, after")
	}

	var result *OperationResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		expense, rec, err := loadOccurrence(tx, groupID, expenseID)
		if err != nil {
			return err
		}

		switch target {
		case models.TargetSingle:
			if err := deleteExpenses(tx, []string{expense.ID}); err != nil {
				return err
			}
			result = &OperationResult{Message: "Deleted one occurrence", Count: 1}

		case models.TargetAll:
			ids, err := seriesExpenseIDs(tx, groupID, rec.ID, nil)
			if err != nil {
				return err
			}
			if err := deleteExpenses(tx, ids); err != nil {
				return err
			}
			if err := tx.Delete(rec).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			result = &OperationResult{Message: "Deleted all occurrences", Count: len(ids)}

		case models.TargetAfter:
			ids, err := seriesExpenseIDs(tx, groupID, rec.ID, &expense.Date)
			if err != nil {
				return err
			}
			if err := deleteExpenses(tx, ids); err != nil {
				return err
			}
			res := tx.Model(&models.RecurringExpense{}).
				Where("id = ? AND version = ?", rec.ID, rec.Version).
				Updates(map[string]interface{}{
					"occurs_until":        expense.Date,
					"template_expense_id": nil,
					"version":             rec.Version + 1,
				})
			if res.Error != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
			}
			if res.RowsAffected == 0 {
				return apperrors.ErrConcurrentUpdate
			}
			result = &OperationResult{
				Message: fmt.Sprintf("Deleted occurrences from %s", expense.Date.Format(time.DateOnly)),
				Count:   len(ids),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("recurring expense deleted",
		"group_id", groupID,
		"expense_id", expenseID,
		"target", target,
		"count", result.Count,
	)
	return result, nil
}

// UpdateRecurring applies input to occurrences of the series the expense
// belongs to. single is an ordinary update of the expense. all and after
// derive the division once and write the same fields and division to every
// affected expense, the template included. Dates are never changed by all
// or after.
func (s *recurringService) UpdateRecurring(groupID, expenseID string, target models.RecurringExpenseTarget, input ExpenseInput) (*OperationResult, error) {
	if !target.Valid() {
		return nil, apperrors.InvalidInput("target", target, "one of single, all, after")
	}
	if err := validateExpenseInput(input); err != nil {
		return nil, err
	}

	var result *OperationResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		expense, rec, err := loadOccurrence(tx, groupID, expenseID)
		if err != nil {
			return err
		}

		if target == models.TargetSingle {
			if err := updateExpenseTx(tx, groupID, expense, input); err != nil {
				return err
			}
			result = &OperationResult{Message: "Updated one occurrence", Count: 1}
			return nil
		}

		items, err := resolveDivision(tx, groupID, input)
		if err != nil {
			return err
		}

		var from *time.Time
		if target == models.TargetAfter {
			from = &expense.Date
		}
		ids, err := seriesExpenseIDs(tx, groupID, rec.ID, from)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Expense{}).
			Where("id IN ?", ids).
			Updates(expenseFields(input)).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := replaceDivision(tx, ids, items); err != nil {
			return err
		}
		result = &OperationResult{Message: fmt.Sprintf("Updated %s occurrences", target), Count: len(ids)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Infow("recurring expense updated",
		"group_id", groupID,
		"expense_id", expenseID,
		"target", target,
		"count", result.Count,
	)
	return result, nil
}

// loadOccurrence reads a visible recurring expense and locks its series.
func loadOccurrence(tx *gorm.DB, groupID, expenseID string) (*models.Expense, *models.RecurringExpense, error) {
	expense, err := loadExpense(tx, groupID, expenseID)
	if err != nil {
		return nil, nil, err
	}
	if expense.Template {
		return nil, nil, apperrors.ErrExpenseNotFound
	}
	if expense.RecurringExpenseID == nil {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidExpense, "Expense is not recurring")
	}
	rec, err := lockRecurrence(tx, groupID, *expense.RecurringExpenseID)
	if err != nil {
		return nil, nil, err
	}
	return expense, rec, nil
}

func lockRecurrence(tx *gorm.DB, groupID, recurringID string) (*models.RecurringExpense, error) {
	var rec models.RecurringExpense
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND group_id = ?", recurringID, groupID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecurrenceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &rec, nil
}

// seriesExpenseIDs lists the template and occurrences of a series. With from
// set, only the template and occurrences dated on or after from are listed.
func seriesExpenseIDs(tx *gorm.DB, groupID, recurringID string, from *time.Time) ([]string, error) {
	q := tx.Model(&models.Expense{}).Where("group_id = ? AND recurring_expense_id = ?", groupID, recurringID)
	if from != nil {
		q = q.Where("template = ? OR date >= ?", true, *from)
	}
	var ids []string
	if err := q.Order("date").Pluck("id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return ids, nil
}
