package routes

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"github.com/ledgerise/ledgerise-api/handlers"
	"github.com/ledgerise/ledgerise-api/services"
)

// SetupAuthRoutes sets up public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, db *sql.DB) {
	authHandler := &handlers.AuthHandler{DB: db}

	rg.POST("/auth/signup", authHandler.Signup)
	rg.POST("/auth/login", authHandler.Login)
	rg.POST("/auth/refresh", authHandler.Refresh)
	rg.POST("/auth/logout", authHandler.Logout)
	rg.POST("/auth/forgot-password", authHandler.ForgotPassword)
	rg.POST("/auth/reset-password", authHandler.ResetPassword)
}

// SetupUserRoutes sets up protected profile, onboarding, password and
// 2FA routes.
func SetupUserRoutes(rg *gin.RouterGroup, db *sql.DB) {
	userHandler := handlers.NewUserHandler(db)

	rg.GET("/user/profile", userHandler.GetProfile)
	rg.PUT("/user/currency", userHandler.UpdateCurrency)
	rg.GET("/user/onboarding", userHandler.GetOnboardingStatus)
	rg.POST("/user/onboarding", userHandler.CompleteOnboarding)
	rg.POST("/user/password", userHandler.ChangePassword)
	rg.POST("/user/2fa/setup", userHandler.SetupTOTP)
	rg.POST("/user/2fa/verify", userHandler.VerifyTOTP)
	rg.POST("/user/2fa/disable", userHandler.DisableTOTP)
}

// SetupCategoryRoutes sets up protected category routes.
func SetupCategoryRoutes(rg *gin.RouterGroup, db *sql.DB, ws *handlers.WSHandler) {
	h := &handlers.CategoryHandler{
		Service: services.NewCategoryService(db),
		WS:      ws,
	}

	rg.GET("/categories", h.List)
	rg.POST("/categories", h.Create)
	rg.PUT("/categories/reorder", h.Reorder)
	rg.PUT("/categories/:id", h.Update)
	rg.DELETE("/categories/:id", h.Delete)
}

// SetupBudgetRoutes sets up protected budget-month and allocation
// routes.
func SetupBudgetRoutes(rg *gin.RouterGroup, db *sql.DB, ws *handlers.WSHandler) {
	h := &handlers.BudgetHandler{
		Months:      services.NewBudgetMonthService(db),
		Allocations: services.NewAllocationService(db),
		WS:          ws,
	}

	rg.GET("/budget-months", h.ListMonths)
	rg.POST("/budget-months", h.CreateMonth)
	rg.GET("/budget-months/current", h.GetCurrentMonth)
	rg.PUT("/budget-months/:id/income", h.UpdateIncome)
	rg.PUT("/budget-months/:id/savings-rate", h.UpdateSavingsRate)

	rg.GET("/budget-months/:id/allocations", h.ListAllocations)
	rg.PUT("/budget-months/:id/allocations/:categoryId", h.UpsertAllocation)
	rg.DELETE("/budget-months/:id/allocations/:categoryId", h.RemoveAllocation)
	rg.DELETE("/allocations/:id", h.DeleteAllocation)

	rg.POST("/budget-months/:id/copy-from/:sourceId", h.CopyAllocations)
	rg.POST("/budget-months/:id/copy-from-previous", h.CopyFromPrevious)
}

// SetupInsightsRoutes sets up protected insights routes.
func SetupInsightsRoutes(rg *gin.RouterGroup, db *sql.DB) {
	h := &handlers.InsightsHandler{Service: services.NewInsightsService(db)}

	rg.GET("/insights", h.GetInsights)
	rg.GET("/insights/history", h.GetHistory)
}

// SetupAdminRoutes sets up admin routes gated by the X-Admin-Secret
// header.
func SetupAdminRoutes(rg *gin.RouterGroup, db *sql.DB) {
	h := &handlers.AdminHandler{Service: services.NewAdminService(db)}

	rg.POST("/admin/reconcile-email", h.ReconcileEmail)
}
