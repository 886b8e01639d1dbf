package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerise/ledgerise-api/middleware"
	"github.com/ledgerise/ledgerise-api/services"
)

type InsightsHandler struct {
	Service *services.InsightsService
}

func (h *InsightsHandler) GetInsights(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	insights, err := h.Service.GetInsights(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, insights)
}

func (h *InsightsHandler) GetHistory(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	history, err := h.Service.GetHistory(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}
