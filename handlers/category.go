package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerise/ledgerise-api/middleware"
	"github.com/ledgerise/ledgerise-api/models"
	"github.com/ledgerise/ledgerise-api/services"
)

type CategoryHandler struct {
	Service *services.CategoryService
	WS      *WSHandler
}

func (h *CategoryHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	categories, err := h.Service.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *CategoryHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.Service.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(userID, "categories_changed")

	c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Service.Update(c.Request.Context(), userID, c.Param("id"), req); err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(userID, "categories_changed")

	c.JSON(http.StatusOK, gin.H{"message": "Category updated successfully"})
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.Service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(userID, "categories_changed")

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

func (h *CategoryHandler) Reorder(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.ReorderCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Service.Reorder(c.Request.Context(), userID, req.CategoryIDs); err != nil {
		respondError(c, err)
		return
	}

	h.WS.BroadcastUpdate(userID, "categories_changed")

	c.JSON(http.StatusOK, gin.H{"message": "Categories reordered successfully"})
}
