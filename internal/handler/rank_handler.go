package handler

import (
	"net/http"
	"strconv"

	"sokoni/internal/middleware"
	"sokoni/internal/service"

	"github.com/gin-gonic/gin"
)

type RankHandler struct {
	rankSvc      *service.RankService
	defaultLimit int
}

func NewRankHandler(rankSvc *service.RankService, defaultLimit int) *RankHandler {
	return &RankHandler{rankSvc: rankSvc, defaultLimit: defaultLimit}
}

// GetMyRank recomputes the caller's peer group and returns their position.
func (h *RankHandler) GetMyRank(c *gin.Context) {
	sellerID := middleware.GetSellerID(c)
	snap, err := h.rankSvc.GetMyRank(c.Request.Context(), sellerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rank":              snap.RankInCategory,
		"total_in_category": snap.TotalInCategory,
		"total_score":       snap.TotalScore,
		"metrics":           snap,
	})
}

// GetLeaderboard returns the top of the caller's peer group plus their own
// row.
func (h *RankHandler) GetLeaderboard(c *gin.Context) {
	sellerID := middleware.GetSellerID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.defaultLimit)))
	if limit < 1 || limit > 100 {
		limit = h.defaultLimit
	}
	board, err := h.rankSvc.GetLeaderboard(c.Request.Context(), sellerID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}
