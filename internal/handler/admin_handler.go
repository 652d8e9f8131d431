package handler

import (
	"net/http"
	"strconv"

	"sokoni/config"
	"sokoni/internal/auth"
	"sokoni/internal/domain"
	"sokoni/internal/middleware"
	"sokoni/internal/models"
	"sokoni/internal/repository"
	"sokoni/internal/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type AdminHandler struct {
	cfg        *config.Config
	txSvc      *service.TransactionService
	sellerRepo repository.SellerRepository
}

func NewAdminHandler(cfg *config.Config, txSvc *service.TransactionService, sellerRepo repository.SellerRepository) *AdminHandler {
	return &AdminHandler{cfg: cfg, txSvc: txSvc, sellerRepo: sellerRepo}
}

// Login handles POST /admin/login against the configured staff credentials.
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation_error"})
		return
	}
	if h.cfg.Admin.PasswordHash == "" || req.Email != h.cfg.Admin.Email {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.cfg.Admin.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	token, err := auth.GenerateAccessToken(&h.cfg.JWT, 0, req.Email, domain.RoleAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

// AdjustWallet handles POST /admin/wallets/:sellerID/adjust — a staff
// credit or deduction of unrestricted size, attributed to the acting admin.
func (h *AdminHandler) AdjustWallet(c *gin.Context) {
	sellerID, ok := parseSellerID(c)
	if !ok {
		return
	}
	var req struct {
		Amount    int64  `json:"amount" binding:"required"`
		Reason    string `json:"reason" binding:"required"`
		Direction string `json:"direction" binding:"required,oneof=add deduct"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation_error"})
		return
	}
	entry, err := h.txSvc.AdminAdjust(sellerID, req.Amount, req.Reason, middleware.GetEmail(c), req.Direction)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"new_balance": entry.BalanceAfter, "transaction": entry})
}

// ReverseTransaction handles POST /admin/transactions/:id/reverse.
func (h *AdminHandler) ReverseTransaction(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id", "code": "validation_error"})
		return
	}
	entry, err := h.txSvc.Reverse(uint(id), middleware.GetEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reversal": entry})
}

// AuditWallet handles GET /admin/wallets/:sellerID/audit — recomputes the
// balance from the ledger and reports whether the cache matches.
func (h *AdminHandler) AuditWallet(c *gin.Context) {
	sellerID, ok := parseSellerID(c)
	if !ok {
		return
	}
	result, err := h.txSvc.Audit(sellerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpsertSeller handles PUT /admin/sellers/:sellerID — registers or updates
// the local seller mirror (identity, classification, active flag).
func (h *AdminHandler) UpsertSeller(c *gin.Context) {
	sellerID, ok := parseSellerID(c)
	if !ok {
		return
	}
	var req struct {
		StoreName   string `json:"store_name"`
		City        string `json:"city"`
		Category    string `json:"category" binding:"required"`
		Subcategory string `json:"subcategory"`
		IsActive    *bool  `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation_error"})
		return
	}
	seller := &models.Seller{
		ID:          sellerID,
		StoreName:   req.StoreName,
		City:        req.City,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		IsActive:    true,
	}
	if req.IsActive != nil {
		seller.IsActive = *req.IsActive
	}
	if err := h.sellerRepo.Upsert(seller); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, seller)
}

// UpdateAggregates handles PUT /admin/sellers/:sellerID/aggregates — the
// push endpoint for booking/review aggregate feeds.
func (h *AdminHandler) UpdateAggregates(c *gin.Context) {
	sellerID, ok := parseSellerID(c)
	if !ok {
		return
	}
	var agg repository.SellerAggregates
	if err := c.ShouldBindJSON(&agg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation_error"})
		return
	}
	if err := h.sellerRepo.UpdateAggregates(sellerID, agg); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "aggregates updated"})
}

func parseSellerID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("sellerID"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid seller id", "code": "validation_error"})
		return 0, false
	}
	return uint(id), true
}
