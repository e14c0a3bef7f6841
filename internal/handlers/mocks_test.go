package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"bookkeeper/internal/models"
	"bookkeeper/internal/pagination"
	"bookkeeper/internal/recurrence"
	"bookkeeper/internal/services"
	"bookkeeper/internal/validator"
)

const (
	testUserID    = "01900000-0000-7000-8000-000000000001"
	testOtherID   = "01900000-0000-7000-8000-000000000002"
	testGroupID   = "01900000-0000-7000-8000-0000000000aa"
	testSourceID  = "01900000-0000-7000-8000-0000000000bb"
	testExpenseID = "01900000-0000-7000-8000-0000000000cc"
)

// --- mock services ---

type mockUserService struct {
	createUserFn     func(email, password, firstName, lastName string) (*models.User, error)
	getUserByEmailFn func(email string) (*models.User, error)
	getUserByIDFn    func(id string) (*models.User, error)
	verifyPasswordFn func(user *models.User, password string) bool
	attemptLoginFn   func(email, password string) (*models.User, error)
}

func (m *mockUserService) CreateUser(email, password, firstName, lastName string) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(email, password, firstName, lastName)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByEmail(email string) (*models.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(email)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{}, nil
}

func (m *mockUserService) VerifyPassword(user *models.User, password string) bool {
	if m.verifyPasswordFn != nil {
		return m.verifyPasswordFn(user, password)
	}
	return true
}

func (m *mockUserService) AttemptLogin(email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{}, nil
}

type mockGroupService struct {
	createGroupFn   func(ownerID, name string) (*models.Group, error)
	getUserGroupsFn func(userID string) ([]models.Group, error)
	addMemberFn     func(groupID, userID string) error
	isMemberFn      func(groupID, userID string) (bool, error)
}

func (m *mockGroupService) CreateGroup(ownerID, name string) (*models.Group, error) {
	if m.createGroupFn != nil {
		return m.createGroupFn(ownerID, name)
	}
	return &models.Group{}, nil
}

func (m *mockGroupService) GetUserGroups(userID string) ([]models.Group, error) {
	if m.getUserGroupsFn != nil {
		return m.getUserGroupsFn(userID)
	}
	return nil, nil
}

func (m *mockGroupService) AddMember(groupID, userID string) error {
	if m.addMemberFn != nil {
		return m.addMemberFn(groupID, userID)
	}
	return nil
}

func (m *mockGroupService) IsMember(groupID, userID string) (bool, error) {
	if m.isMemberFn != nil {
		return m.isMemberFn(groupID, userID)
	}
	return true, nil
}

func (m *mockGroupService) ListGroupIDs() ([]string, error) { return nil, nil }

type mockSourceService struct {
	createSourceFn    func(groupID, name string, shares []services.SourceShare) (*models.Source, error)
	getGroupSourcesFn func(groupID string) ([]models.Source, error)
	getSourceByIDFn   func(groupID, sourceID string) (*models.Source, error)
}

func (m *mockSourceService) CreateSource(groupID, name string, shares []services.SourceShare) (*models.Source, error) {
	if m.createSourceFn != nil {
		return m.createSourceFn(groupID, name, shares)
	}
	return &models.Source{}, nil
}

func (m *mockSourceService) GetGroupSources(groupID string) ([]models.Source, error) {
	if m.getGroupSourcesFn != nil {
		return m.getGroupSourcesFn(groupID)
	}
	return nil, nil
}

func (m *mockSourceService) GetSourceByID(groupID, sourceID string) (*models.Source, error) {
	if m.getSourceByIDFn != nil {
		return m.getSourceByIDFn(groupID, sourceID)
	}
	return &models.Source{}, nil
}

type mockExpenseService struct {
	createExpenseFn     func(groupID string, in services.ExpenseInput) (*models.Expense, error)
	getExpenseByIDFn    func(groupID, expenseID string) (*models.Expense, error)
	getMonthExpensesFn  func(groupID string, year int, month time.Month, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error)
	updateExpenseFn     func(groupID, expenseID string, in services.ExpenseInput) (*models.Expense, error)
	deleteExpenseFn     func(groupID, expenseID string) (*services.OperationResult, error)
	determineDivisionFn func(groupID string, in services.ExpenseInput) ([]models.ExpenseDivisionItem, error)
}

func (m *mockExpenseService) CreateExpense(groupID string, in services.ExpenseInput) (*models.Expense, error) {
	if m.createExpenseFn != nil {
		return m.createExpenseFn(groupID, in)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) GetExpenseByID(groupID, expenseID string) (*models.Expense, error) {
	if m.getExpenseByIDFn != nil {
		return m.getExpenseByIDFn(groupID, expenseID)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) GetMonthExpenses(_ context.Context, groupID string, year int, month time.Month, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error) {
	if m.getMonthExpensesFn != nil {
		return m.getMonthExpensesFn(groupID, year, month, page)
	}
	resp := pagination.NewPageResponse[models.Expense](nil, 1, 20, 0)
	return &resp, nil
}

func (m *mockExpenseService) UpdateExpense(groupID, expenseID string, in services.ExpenseInput) (*models.Expense, error) {
	if m.updateExpenseFn != nil {
		return m.updateExpenseFn(groupID, expenseID, in)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) DeleteExpense(groupID, expenseID string) (*services.OperationResult, error) {
	if m.deleteExpenseFn != nil {
		return m.deleteExpenseFn(groupID, expenseID)
	}
	return &services.OperationResult{Message: "Expense deleted", Count: 1}, nil
}

func (m *mockExpenseService) DetermineDivision(groupID string, in services.ExpenseInput) ([]models.ExpenseDivisionItem, error) {
	if m.determineDivisionFn != nil {
		return m.determineDivisionFn(groupID, in)
	}
	return nil, nil
}

type mockRecurringService struct {
	createRecurringFn func(groupID, expenseID string, period recurrence.Period) (*services.RecurringCreated, error)
	createMissingFn   func(groupID string, target time.Time) (int, error)
	deleteFn          func(groupID, expenseID string, target models.RecurringExpenseTarget) (*services.OperationResult, error)
	updateFn          func(groupID, expenseID string, target models.RecurringExpenseTarget, in services.ExpenseInput) (*services.OperationResult, error)
}

func (m *mockRecurringService) CreateRecurring(groupID, expenseID string, period recurrence.Period) (*services.RecurringCreated, error) {
	if m.createRecurringFn != nil {
		return m.createRecurringFn(groupID, expenseID, period)
	}
	return &services.RecurringCreated{}, nil
}

func (m *mockRecurringService) CreateMissing(_ context.Context, groupID string, target time.Time) (int, error) {
	if m.createMissingFn != nil {
		return m.createMissingFn(groupID, target)
	}
	return 0, nil
}

func (m *mockRecurringService) DeleteRecurringByID(groupID, expenseID string, target models.RecurringExpenseTarget) (*services.OperationResult, error) {
	if m.deleteFn != nil {
		return m.deleteFn(groupID, expenseID, target)
	}
	return &services.OperationResult{}, nil
}

func (m *mockRecurringService) UpdateRecurring(groupID, expenseID string, target models.RecurringExpenseTarget, in services.ExpenseInput) (*services.OperationResult, error) {
	if m.updateFn != nil {
		return m.updateFn(groupID, expenseID, target, in)
	}
	return &services.OperationResult{}, nil
}

type auditEntry struct {
	groupID, userID, action, resourceID string
	changes                             map[string]interface{}
}

type mockAuditService struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (m *mockAuditService) Log(groupID, userID, action, _, resourceID, _ string, changes map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, auditEntry{groupID, userID, action, resourceID, changes})
}

func (m *mockAuditService) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.action
	}
	return out
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

// injectContext stands in for AuthMiddleware and GroupAccess.
func injectContext(userID, groupID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		if groupID != "" {
			c.Set("groupID", groupID)
		}
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
}
