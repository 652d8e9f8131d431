package handler

import (
	"errors"
	"net/http"

	"sokoni/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondError maps the domain error taxonomy onto HTTP responses. Balance
// errors carry the exact shortfall so the UI can prompt a top-up.
func respondError(c *gin.Context, err error) {
	var insufficient *domain.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":     "insufficient balance",
			"code":      "insufficient_balance",
			"shortfall": insufficient.Shortfall(),
			"available": insufficient.Available,
		})
		return
	}
	var duplicate *domain.DuplicateTransactionError
	if errors.As(err, &duplicate) {
		c.JSON(http.StatusConflict, gin.H{
			"error": duplicate.Error(),
			"code":  "duplicate_transaction",
		})
		return
	}
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUnknownCategory),
		errors.Is(err, domain.ErrMissingIdemKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation_error"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "code": "not_found"})
	case errors.Is(err, domain.ErrNotReversible):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "not_reversible"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "internal_error"})
	}
}
