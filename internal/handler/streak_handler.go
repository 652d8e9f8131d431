package handler

import (
	"net/http"

	"sokoni/internal/middleware"
	"sokoni/internal/service"

	"github.com/gin-gonic/gin"
)

type StreakHandler struct {
	streakSvc *service.StreakService
}

func NewStreakHandler(streakSvc *service.StreakService) *StreakHandler {
	return &StreakHandler{streakSvc: streakSvc}
}

// CheckIn records the caller's daily check-in. Safe to call repeatedly; a
// second call on the same day reports already_checked_in.
func (h *StreakHandler) CheckIn(c *gin.Context) {
	sellerID := middleware.GetSellerID(c)
	result, err := h.streakSvc.CheckIn(sellerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetStreak returns the caller's streak state.
func (h *StreakHandler) GetStreak(c *gin.Context) {
	sellerID := middleware.GetSellerID(c)
	rec, err := h.streakSvc.GetStreak(sellerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
