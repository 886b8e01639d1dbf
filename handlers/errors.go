package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerise/ledgerise-api/services"
)

// respondError maps domain errors onto HTTP statuses. Ownership
// failures and missing records share one "Not found" payload so the
// API never leaks whether a foreign record exists.
func respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var conflictErr *services.ConflictError
	var stateErr *services.StateError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Message})
	case errors.As(err, &stateErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": stateErr.Message})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		log.Printf("❌ Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
