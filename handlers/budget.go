package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ledgerise/ledgerise-api/middleware"
	"github.com/ledgerise/ledgerise-api/models"
	"github.com/ledgerise/ledgerise-api/services"
)

type BudgetHandler struct {
	Months      *services.BudgetMonthService
	Allocations *services.AllocationService
	WS          *WSHandler
}

// ============================================================================
// BUDGET MONTHS
// ============================================================================

// ListMonths returns every budget month, newest first. When year and
// month query parameters are present it returns that single month
// instead.
func (h *BudgetHandler) ListMonths(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	yearStr, monthStr := c.Query("year"), c.Query("month")
	if yearStr != "" || monthStr != "" {
		year, err1 := strconv.Atoi(yearStr)
		month, err2 := strconv.Atoi(monthStr)
		if err1 != nil || err2 != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year or month"})
			return
		}

		bm, err := h.Months.GetMonth(c.Request.Context(), userID, year, month)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, bm)
		return
	}

	months, err := h.Months.ListAll(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget_months": months})
}

// GetCurrentMonth returns the calendar month's record, creating it on
// first access.
func (h *BudgetHandler) GetCurrentMonth(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	year, month := services.CurrentMonth()
	bm, err := h.Months.GetOrCreate(c.Request.Context(), userID, year, month)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bm)
}

type CreateBudgetMonthRequest struct {
	Year  int `json:"year" binding:"required"`
	Month int `json:"month" binding:"required"`
}

// CreateMonth gets or creates the (year, month) record. Creation is
// limited to the editable window.
func (h *BudgetHandler) CreateMonth(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req CreateBudgetMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bm, err := h.Months.GetOrCreate(c.Request.Context(), userID, req.Year, req.Month)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(userID, "budget_months_changed")

	c.JSON(http.StatusOK, bm)
}

func (h *BudgetHandler) UpdateIncome(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Months.UpdateIncome(c.Request.Context(), userID, c.Param("id"), req.Income); err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(userID, "budget_months_changed")

	c.JSON(http.StatusOK, gin.H{"message": "Income updated successfully"})
}

func (h *BudgetHandler) UpdateSavingsRate(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateSavingsRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.Months.UpdateSavingsRate(c.Request.Context(), userID, c.Param("id"), req.SavingsRate, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(userID, "budget_months_changed")

	c.JSON(http.StatusOK, gin.H{"message": "Savings rate updated successfully"})
}

// ============================================================================
// ALLOCATIONS
// ============================================================================

func (h *BudgetHandler) ListAllocations(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	allocations, err := h.Allocations.List(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"allocations": allocations})
}

func (h *BudgetHandler) UpsertAllocation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpsertAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.Allocations.Upsert(c.Request.Context(), userID, c.Param("id"), c.Param("categoryId"), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(userID, "allocations_changed")

	c.JSON(http.StatusOK, gin.H{"message": "Allocation saved successfully"})
}

func (h *BudgetHandler) RemoveAllocation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.Allocations.RemoveFromMonth(c.Request.Context(), userID, c.Param("id"), c.Param("categoryId"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(userID, "allocations_changed")

	c.JSON(http.StatusOK, gin.H{"message": "Allocation removed successfully"})
}

func (h *BudgetHandler) DeleteAllocation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.Allocations.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(userID, "allocations_changed")

	c.JSON(http.StatusOK, gin.H{"message": "Allocation deleted successfully"})
}

// ============================================================================
// COPY FORWARD
// ============================================================================

func (h *BudgetHandler) CopyAllocations(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.Allocations.CopyExplicit(c.Request.Context(), userID, c.Param("sourceId"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(userID, "allocations_changed")

	c.JSON(http.StatusOK, gin.H{"message": "Allocations copied successfully"})
}

func (h *BudgetHandler) CopyFromPrevious(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.Allocations.CopyFromPrevious(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(userID, "allocations_changed")

	c.JSON(http.StatusOK, gin.H{"message": "Allocations copied from previous month"})
}
