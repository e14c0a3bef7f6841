package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookkeeper/internal/models"
	"bookkeeper/internal/recurrence"
	"bookkeeper/internal/services"
)

// RecurringHandler handles recurring expense series.
type RecurringHandler struct {
	recurringService services.RecurringServicer
	auditService     services.AuditServicer
}

// NewRecurringHandler creates a new RecurringHandler.
func NewRecurringHandler(recurringService services.RecurringServicer, auditService services.AuditServicer) *RecurringHandler {
	return &RecurringHandler{recurringService: recurringService, auditService: auditService}
}

// RecurringRequest represents the period of a new recurring series.
type RecurringRequest struct {
	PeriodAmount int                   `json:"period_amount" binding:"required,min=1"`
	PeriodUnit   models.RecurrenceUnit `json:"period_unit" binding:"required,recurrence_unit"`
}

// TargetQuery selects the occurrences affected by a scoped update or delete.
type TargetQuery struct {
	Target models.RecurringExpenseTarget `form:"target" binding:"required,recurring_target"`
}

// CreateRecurring turns an expense into the first item of a recurring series
// @Summary     Make an expense recurring
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       groupId path string true "Group ID"
// @Param       id path string true "Expense ID"
// @Param       request body RecurringRequest true "Recurrence period"
// @Success     201 {object} services.RecurringCreated "Series created"
// @Failure     400 {object} ErrorResponse "Invalid period or expense already recurring"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /groups/{groupId}/expenses/{id}/recurring [post]
func (h *RecurringHandler) CreateRecurring(c *gin.Context) {
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

	var req RecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	period := recurrence.Period{Amount: req.PeriodAmount, Unit: req.PeriodUnit}
	created, err := h.recurringService.CreateRecurring(groupID, expenseID, period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(groupID, userID, "CREATE_RECURRING", "expense", expenseID, c.ClientIP(),
		map[string]interface{}{
			"recurring_expense_id": created.RecurringExpenseID,
			"period_amount":        period.Amount,
			"period_unit":          period.Unit,
		})

	c.JSON(http.StatusCreated, created)
}

// UpdateRecurring updates occurrences of a recurring series
// @Summary     Update a recurring expense
// @Description target=single updates the expense only, all updates the whole series, after updates the expense and later occurrences.
// @Tags        recurring
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       groupId path string true "Group ID"
// @Param       id path string true "Expense ID"
// @Param       target query string true "single, all or after"
// @Param       request body ExpenseRequest true "Expense details"
// @Success     200 {object} services.OperationResult "Occurrences updated"
// @Failure     400 {object} ErrorResponse "Invalid input or expense not recurring"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     409 {object} ErrorResponse "Concurrent update"
// @Router      /groups/{groupId}/expenses/recurring/{id} [put]
func (h *RecurringHandler) UpdateRecurring(c *gin.Context) {
	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	var q TargetQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindingError(err))
		return
	}
	userID, groupID, in, err := bindExpense(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.recurringService.UpdateRecurring(groupID, expenseID, q.Target, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(groupID, userID, "UPDATE_RECURRING", "expense", expenseID, c.ClientIP(),
		map[string]interface{}{"target": q.Target, "count": result.Count})

	c.JSON(http.StatusOK, result)
}

// DeleteRecurring deletes occurrences of a recurring series
// @Summary     Delete a recurring expense
// @Description target=single deletes the expense only, all deletes the whole series, after deletes the expense and later occurrences and ends the series.
// @Tags        recurring
// @Produce     json
// @Security    BearerAuth
// @Param       groupId path string true "Group ID"
// @Param       id path string true "Expense ID"
// @Param       target query string true "single, all or after"
// @Success     200 {object} services.OperationResult "Occurrences deleted"
// @Failure     400 {object} ErrorResponse "Invalid target or expense not recurring"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     409 {object} ErrorResponse "Concurrent update"
// @Router      /groups/{groupId}/expenses/recurring/{id} [delete]
func (h *RecurringHandler) DeleteRecurring(c *gin.Context) {
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
	var q TargetQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindingError(err))
		return
	}

	result, err := h.recurringService.DeleteRecurringByID(groupID, expenseID, q.Target)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(groupID, userID, "DELETE_RECURRING", "expense", expenseID, c.ClientIP(),
		map[string]interface{}{"target": q.Target, "count": result.Count})

	c.JSON(http.StatusOK, result)
}
