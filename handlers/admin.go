package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/ledgerise/ledgerise-api/models"
	"github.com/ledgerise/ledgerise-api/services"
)

type AdminHandler struct {
	Service *services.AdminService
}

// checkAdminSecret gates the admin surface behind a shared header
// secret. Returns false after writing the error response.
func checkAdminSecret(c *gin.Context) bool {
	adminSecret := c.GetHeader("X-Admin-Secret")
	expectedSecret := os.Getenv("ADMIN_SECRET")

	if expectedSecret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ADMIN_SECRET not configured"})
		return false
	}

	if adminSecret != expectedSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid admin secret"})
		return false
	}

	return true
}

// ReconcileEmail merges duplicate accounts sharing a normalized email.
// POST /api/v1/admin/reconcile-email
func (h *AdminHandler) ReconcileEmail(c *gin.Context) {
	if !checkAdminSecret(c) {
		return
	}

	var req models.ReconcileEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.Service.ResolveDuplicateEmail(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}
