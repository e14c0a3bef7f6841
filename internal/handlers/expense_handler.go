package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bookkeeper/internal/models"
	"bookkeeper/internal/money"
	"bookkeeper/internal/pagination"
	"bookkeeper/internal/services"
)

// ExpenseHandler handles expense requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer, auditService services.AuditServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, auditService: auditService}
}

// DivisionItemRequest is one user's signed part of an expense.
type DivisionItemRequest struct {
	UserID string                     `json:"user_id" binding:"required,uuid"`
	Type   models.ExpenseDivisionType `json:"type" binding:"required,division_type"`
	Sum    money.Money                `json:"sum" binding:"money"`
}

// DivisionRequest carries the fields that decide an expense division. When
// division is omitted it is derived from the source shares.
type DivisionRequest struct {
	UserID   string                `json:"user_id" binding:"omitempty,uuid"`
	SourceID string                `json:"source_id" binding:"required,uuid"`
	Type     models.ExpenseType    `json:"type" binding:"required,expense_type"`
	Sum      money.Money           `json:"sum" binding:"money"`
	Division []DivisionItemRequest `json:"division" binding:"omitempty,dive"`
}

// ExpenseRequest represents the request payload for creating or updating an
// expense. user_id defaults to the authenticated user.
type ExpenseRequest struct {
	DivisionRequest
	Title       string `json:"title" binding:"required,max=255"`
	Receiver    string `json:"receiver" binding:"max=255"`
	Description string `json:"description" binding:"max=1000"`
	Date        string `json:"date" binding:"required,date_only"`
	Confirmed   *bool  `json:"confirmed"`
}

func (r DivisionRequest) input(callerID string) services.ExpenseInput {
	in := services.ExpenseInput{
		UserID:   r.UserID,
		SourceID: r.SourceID,
		Type:     r.Type,
		Sum:      r.Sum,
	}
	if in.UserID == "" {
		in.UserID = callerID
	}
	for _, item := range r.Division {
		in.Division = append(in.Division, models.ExpenseDivisionItem{
			UserID: item.UserID,
			Type:   item.Type,
			Sum:    item.Sum,
		})
	}
	return in
}

func (r ExpenseRequest) input(callerID string) (services.ExpenseInput, error) {
	in := r.DivisionRequest.input(callerID)
	date, err := parseDate("date", r.Date)
	if err != nil {
		return in, err
	}
	in.Title = r.Title
	in.Receiver = r.Receiver
	in.Description = r.Description
	in.Date = date
	in.Confirmed = r.Confirmed == nil || *r.Confirmed
	return in, nil
}

// bindExpense reads the caller, the group and the expense payload.
func bindExpense(c *gin.Context) (userID, groupID string, in services.ExpenseInput, err error) {
	if userID, err = getUserID(c); err != nil {
		return
	}
	if groupID, err = getGroupID(c); err != nil {
		return
	}
	var req ExpenseRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		err = bindingError(bindErr)
		return
	}
	in, err = req.input(userID)
	return
}

// CreateExpense creates an expense, income or transfer
// @Summary     Create an expense
// @Description Create an expense. Without a division the source shares decide who pays.
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       groupId path string true "Group ID"
// @Param       request body ExpenseRequest true "Expense details"
// @Success     201 {object} models.Expense "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input or division"
// @Failure     403 {object} ErrorResponse "Not a member of the group"
// @Failure     404 {object} ErrorResponse "Source not found"
// @Router      /groups/{groupId}/expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, groupID, in, err := bindExpense(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.CreateExpense(groupID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(groupID, userID, "CREATE_EXPENSE", "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"type": expense.Type, "sum": expense.Sum.String()})

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// GetMonthExpenses lists the expenses of one month
// @Summary     List expenses of a month
// @Description Recurring occurrences that are due are created before listing.
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       groupId path string true "Group ID"
// @Param       year query int true "Year"
// @Param       month query int true "Month (1-12)"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Not a member of the group"
// @Router      /groups/{groupId}/expenses/month [get]
func (h *ExpenseHandler) GetMonthExpenses(c *gin.Context) {
	groupID, err := getGroupID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	year, err := queryInt(c, "year")
	if err != nil {
		respondWithError(c, err)
		return
	}
	month, err := queryInt(c, "month")
	if err != nil {
		respondWithError(c, err)
		return
	}
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	result, err := h.expenseService.GetMonthExpenses(c.Request.Context(), groupID, year, time.Month(month), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetExpense returns one expense with its division
// @Summary     Get an expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       groupId path string true "Group ID"
// @Param       id path string true "Expense ID"
// @Success     200 {object} models.Expense "Expense"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /groups/{groupId}/expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	groupID, err := getGroupID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(groupID, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// UpdateExpense replaces the fields and division of an expense
// @Summary     Update an expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       groupId path string true "Group ID"
// @Param       id path string true "Expense ID"
// @Param       request body ExpenseRequest true "Expense details"
// @Success     200 {object} models.Expense "Expense updated"
// @Failure     400 {object} ErrorResponse "Invalid input or division"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /groups/{groupId}/expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	userID, groupID, in, err := bindExpense(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.UpdateExpense(groupID, expenseID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(groupID, userID, "UPDATE_EXPENSE", "expense", expense.ID, c.ClientIP(),
		map[string]interface{}{"type": expense.Type, "sum": expense.Sum.String()})

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// DeleteExpense deletes an expense
// @Summary     Delete an expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       groupId path string true "Group ID"
// @Param       id path string true "Expense ID"
// @Success     200 {object} services.OperationResult "Expense deleted"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /groups/{groupId}/expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	groupID, err := getGroupID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.expenseService.DeleteExpense(groupID, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(groupID, userID, "DELETE_EXPENSE", "expense", expenseID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, result)
}

// DetermineDivision previews the division of an expense without storing it
// @Summary     Preview an expense division
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       groupId path string true "Group ID"
// @Param       request body DivisionRequest true "Division inputs"
// @Success     200 {array} models.ExpenseDivisionItem "Division"
// @Failure     400 {object} ErrorResponse "Invalid division"
// @Failure     404 {object} ErrorResponse "Source not found"
// @Router      /groups/{groupId}/expenses/division [post]
func (h *ExpenseHandler) DetermineDivision(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	groupID, err := getGroupID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DivisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	items, err := h.expenseService.DetermineDivision(groupID, req.input(userID))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"division": items})
}
