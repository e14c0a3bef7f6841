package services

import (
	"context"
	"time"

	"bookkeeper/internal/models"
	"bookkeeper/internal/money"
	"bookkeeper/internal/pagination"
	"bookkeeper/internal/recurrence"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
}

// GroupServicer defines the contract for group membership.
type GroupServicer interface {
	CreateGroup(ownerID, name string) (*models.Group, error)
	GetUserGroups(userID string) ([]models.Group, error)
	AddMember(groupID, userID string) error
	IsMember(groupID, userID string) (bool, error)
	ListGroupIDs() ([]string, error)
}

// SourceShare is one user's share when creating a source.
type SourceShare struct {
	UserID string
	Share  int
}

// SourceServicer defines the contract for funding sources.
type SourceServicer interface {
	CreateSource(groupID, name string, shares []SourceShare) (*models.Source, error)
	GetGroupSources(groupID string) ([]models.Source, error)
	GetSourceByID(groupID, sourceID string) (*models.Source, error)
}

// ExpenseInput carries the editable fields of an expense. A nil or empty
// Division lets the division be derived from the source.
type ExpenseInput struct {
	UserID      string
	SourceID    string
	Type        models.ExpenseType
	Title       string
	Receiver    string
	Description string
	Sum         money.Money
	Date        time.Time
	Confirmed   bool
	Division    []models.ExpenseDivisionItem
}

// OperationResult reports the outcome of an operation that may touch
// several expenses.
type OperationResult struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// ExpenseServicer defines the contract for ordinary expense handling.
type ExpenseServicer interface {
	CreateExpense(groupID string, input ExpenseInput) (*models.Expense, error)
	GetExpenseByID(groupID, expenseID string) (*models.Expense, error)
	GetMonthExpenses(ctx context.Context, groupID string, year int, month time.Month, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error)
	UpdateExpense(groupID, expenseID string, input ExpenseInput) (*models.Expense, error)
	DeleteExpense(groupID, expenseID string) (*OperationResult, error)
	DetermineDivision(groupID string, input ExpenseInput) ([]models.ExpenseDivisionItem, error)
}

// RecurringCreated identifies the template and series made by CreateRecurring.
type RecurringCreated struct {
	TemplateExpenseID  string `json:"template_expense_id"`
	RecurringExpenseID string `json:"recurring_expense_id"`
}

// RecurringServicer defines the contract for recurring expense series.
type RecurringServicer interface {
	CreateRecurring(groupID, expenseID string, period recurrence.Period) (*RecurringCreated, error)
	CreateMissing(ctx context.Context, groupID string, target time.Time) (int, error)
	DeleteRecurringByID(groupID, expenseID string, target models.RecurringExpenseTarget) (*OperationResult, error)
	UpdateRecurring(groupID, expenseID string, target models.RecurringExpenseTarget, input ExpenseInput) (*OperationResult, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(groupID, userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
