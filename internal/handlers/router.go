package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookkeeper/internal/metrics"
	"bookkeeper/internal/middleware"
	"bookkeeper/internal/services"
)

// Services bundles the service layer the router dispatches to.
type Services struct {
	Users     services.UserServicer
	Groups    services.GroupServicer
	Sources   services.SourceServicer
	Expenses  services.ExpenseServicer
	Recurring services.RecurringServicer
	Audit     services.AuditServicer
}

// NewRouter builds the gin engine with middleware and all API routes.
func NewRouter(svc Services) *gin.Engine {
	authHandler := NewAuthHandler(svc.Users)
	groupHandler := NewGroupHandler(svc.Groups, svc.Audit)
	sourceHandler := NewSourceHandler(svc.Sources, svc.Audit)
	expenseHandler := NewExpenseHandler(svc.Expenses, svc.Audit)
	recurringHandler := NewRecurringHandler(svc.Recurring, svc.Audit)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())
	protected.GET("/profile", authHandler.GetProfile)
	protected.POST("/groups", groupHandler.CreateGroup)
	protected.GET("/groups", groupHandler.GetGroups)

	// Group scoped routes
	group := protected.Group("/groups/:groupId")
	group.Use(middleware.GroupAccess(svc.Groups))
	group.POST("/users", groupHandler.AddMember)

	group.POST("/sources", sourceHandler.CreateSource)
	group.GET("/sources", sourceHandler.GetSources)
	group.GET("/sources/:id", sourceHandler.GetSource)

	expenses := group.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("/month", expenseHandler.GetMonthExpenses)
	expenses.POST("/division", expenseHandler.DetermineDivision)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	expenses.POST("/:id/recurring", recurringHandler.CreateRecurring)
	expenses.PUT("/recurring/:id", recurringHandler.UpdateRecurring)
	expenses.DELETE("/recurring/:id", recurringHandler.DeleteRecurring)

	return router
}
