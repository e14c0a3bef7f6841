package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookkeeper/internal/division"
	apperrors "bookkeeper/internal/errors"
	"bookkeeper/internal/logger"
	"bookkeeper/internal/metrics"
	"bookkeeper/internal/models"
	"bookkeeper/internal/pagination"
	"bookkeeper/internal/recurrence"
)

// expenseService handles ordinary expense bookkeeping.
type expenseService struct {
	db        *gorm.DB
	recurring RecurringServicer
	now       func() time.Time
}

// NewExpenseService creates a new ExpenseServicer. When recurring is not nil,
// month listings first create the recurring occurrences that are due.
func NewExpenseService(db *gorm.DB, recurring RecurringServicer) ExpenseServicer {
	return &expenseService{db: db, recurring: recurring, now: time.Now}
}

// CreateExpense stores a new expense together with its division.
func (s *expenseService) CreateExpense(groupID string, input ExpenseInput) (*models.Expense, error) {
	if err := validateExpenseInput(input); err != nil {
		return nil, err
	}

	expense := &models.Expense{GroupID: groupID}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		items, err := resolveDivision(tx, groupID, input)
		if err != nil {
			return err
		}
		applyExpenseInput(expense, input, true)
		expense.Division = items
		if err := tx.Create(expense).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// GetExpenseByID retrieves a visible expense of the group with its division.
func (s *expenseService) GetExpenseByID(groupID, expenseID string) (*models.Expense, error) {
	expense, err := loadExpense(s.db, groupID, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.Template {
		return nil, apperrors.ErrExpenseNotFound
	}
	return expense, nil
}

// GetMonthExpenses lists the visible expenses of one calendar month. Due
// recurring occurrences up to the end of the month, but not past today, are
// created before listing.
func (s *expenseService) GetMonthExpenses(ctx context.Context, groupID string, year int, month time.Month, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error) {
	if month < time.January || month > time.December {
		return nil, apperrors.InvalidInput("month", int(month), "month must be between 1 and 12")
	}
	page.Defaults()

	start := recurrence.Date(year, month, 1)
	end := start.AddDate(0, 1, 0)

	if s.recurring != nil {
		target := end
		if tomorrow := recurrence.Day(s.now()).AddDate(0, 0, 1); tomorrow.Before(target) {
			target = tomorrow
		}
		if _, err := s.recurring.CreateMissing(ctx, groupID, target); err != nil {
			return nil, err
		}
	}

	base := s.db.WithContext(ctx).Model(&models.Expense{}).
		Where("group_id = ? AND template = ? AND date >= ? AND date < ?", groupID, false, start, end)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Session(&gorm.Session{}).
		Preload("Division").
		Order("date, created_at").
		Scopes(pagination.Paginate(page)).
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &resp, nil
}

// UpdateExpense replaces the fields and the division of one expense.
func (s *expenseService) UpdateExpense(groupID, expenseID string, input ExpenseInput) (*models.Expense, error) {
	if err := validateExpenseInput(input); err != nil {
		return nil, err
	}

	var expense *models.Expense
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		expense, err = loadExpense(tx, groupID, expenseID)
		if err != nil {
			return err
		}
		if expense.Template {
			return apperrors.ErrExpenseNotFound
		}
		return updateExpenseTx(tx, groupID, expense, input)
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// DeleteExpense deletes one expense and its division.
func (s *expenseService) DeleteExpense(groupID, expenseID string) (*OperationResult, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		expense, err := loadExpense(tx, groupID, expenseID)
		if err != nil {
			return err
		}
		if expense.Template {
			return apperrors.ErrExpenseNotFound
		}
		return deleteExpenses(tx, []string{expense.ID})
	})
	if err != nil {
		return nil, err
	}
	return &OperationResult{Message: "Expense deleted", Count: 1}, nil
}

// DetermineDivision returns the division an expense with the given input
// would get, without storing anything.
func (s *expenseService) DetermineDivision(groupID string, input ExpenseInput) ([]models.ExpenseDivisionItem, error) {
	if input.Type != "" && !input.Type.Valid() {
		return nil, apperrors.InvalidInput("type", input.Type, "one of expense, income, transfer")
	}
	return resolveDivision(s.db, groupID, input)
}

func validateExpenseInput(in ExpenseInput) error {
	switch {
	case !in.Type.Valid():
		return apperrors.InvalidInput("type", in.Type, "one of expense, income, transfer")
	case strings.TrimSpace(in.Title) == "":
		return apperrors.InvalidInput("title", in.Title, "title is required")
	case in.UserID == "":
		return apperrors.InvalidInput("user_id", in.UserID, "user is required")
	case in.SourceID == "":
		return apperrors.InvalidInput("source_id", in.SourceID, "source is required")
	case in.Date.IsZero():
		return apperrors.InvalidInput("date", in.Date, "date is required")
	}
	return nil
}

// resolveDivision loads the source of the input and derives or validates
// the division. Rejected legs are counted per leg.
func resolveDivision(db *gorm.DB, groupID string, in ExpenseInput) ([]models.ExpenseDivisionItem, error) {
	source, err := loadSource(db, groupID, in.SourceID)
	if err != nil {
		return nil, err
	}
	items, err := division.Determine(division.Input{
		Type:     in.Type,
		Sum:      in.Sum,
		UserID:   in.UserID,
		Division: in.Division,
	}, source)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && models.ExpenseDivisionType(appErr.Field).Valid() {
			metrics.DivisionValidationFailures.WithLabelValues(appErr.Field).Inc()
		}
		return nil, err
	}
	return items, nil
}

func applyExpenseInput(e *models.Expense, in ExpenseInput, withDate bool) {
	e.UserID = in.UserID
	e.SourceID = in.SourceID
	e.Type = in.Type
	e.Title = strings.TrimSpace(in.Title)
	e.Receiver = in.Receiver
	e.Description = in.Description
	e.Sum = in.Sum
	e.Confirmed = in.Confirmed
	if withDate {
		e.Date = recurrence.Day(in.Date)
	}
}

// expenseFields is the column set written when input is applied to several
// expenses at once. The date is left alone.
func expenseFields(in ExpenseInput) map[string]interface{} {
	return map[string]interface{}{
		"user_id":     in.UserID,
		"source_id":   in.SourceID,
		"type":        in.Type,
		"title":       strings.TrimSpace(in.Title),
		"receiver":    in.Receiver,
		"description": in.Description,
		"sum":         in.Sum,
		"confirmed":   in.Confirmed,
	}
}

func updateExpenseTx(tx *gorm.DB, groupID string, expense *models.Expense, input ExpenseInput) error {
	items, err := resolveDivision(tx, groupID, input)
	if err != nil {
		return err
	}
	applyExpenseInput(expense, input, true)
	if err := tx.Omit(clause.Associations).Save(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := replaceDivision(tx, []string{expense.ID}, items); err != nil {
		return err
	}
	expense.Division = division.Copy(items, expense.ID)
	return nil
}

// replaceDivision deletes the stored division of every expense and inserts
// items for each of them instead.
func replaceDivision(tx *gorm.DB, expenseIDs []string, items []models.ExpenseDivisionItem) error {
	if len(expenseIDs) == 0 {
		return nil
	}
	if err := tx.Where("expense_id IN ?", expenseIDs).Delete(&models.ExpenseDivisionItem{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	rows := make([]models.ExpenseDivisionItem, 0, len(expenseIDs)*len(items))
	for _, id := range expenseIDs {
		rows = append(rows, division.Copy(items, id)...)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func deleteExpenses(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("expense_id IN ?", ids).Delete(&models.ExpenseDivisionItem{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := tx.Where("id IN ?", ids).Delete(&models.Expense{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	logger.Get().Infow("expenses deleted", "count", len(ids))
	return nil
}

// loadExpense reads an expense of the group, templates included, with its
// division.
func loadExpense(db *gorm.DB, groupID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	err := db.Preload("Division").
		Where("id = ? AND group_id = ?", expenseID, groupID).
		First(&expense).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// cloneExpense copies an expense and its division into a new, unsaved row.
func cloneExpense(src *models.Expense) *models.Expense {
	c := *src
	c.Base = models.Base{}
	c.Division = division.Copy(src.Division, "")
	return &c
}
