package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"sokoni/internal/domain"
	"sokoni/internal/middleware"
	"sokoni/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type WalletHandler struct {
	txSvc *service.TransactionService
}

func NewWalletHandler(txSvc *service.TransactionService) *WalletHandler {
	return &WalletHandler{txSvc: txSvc}
}

// GetWallet returns the caller's balance, totals and recent transactions.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	sellerID := middleware.GetSellerID(c)
	summary, err := h.txSvc.GetWallet(sellerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ListTransactions returns the caller's paginated ledger history.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	sellerID := middleware.GetSellerID(c)
	page, limit := parsePagination(c)
	entries, total, err := h.txSvc.ListTransactions(sellerID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries, "total": total, "page": page, "limit": limit})
}

// Earn credits a catalogue reward to the caller's wallet.
func (h *WalletHandler) Earn(c *gin.Context) {
	sellerID := middleware.GetSellerID(c)
	var req struct {
		Category       string `json:"category" binding:"required"`
		IdempotencyKey string `json:"idempotency_key"`
		ReferenceID    string `json:"reference_id"`
		ReferenceType  string `json:"reference_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation_error"})
		return
	}
	key := req.IdempotencyKey
	if key == "" {
		key = deriveIdempotencyKey(c, sellerID, "earn", req.Category, req.ReferenceID)
	}
	entry, err := h.txSvc.Earn(sellerID, req.Category, key, req.ReferenceID, req.ReferenceType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"new_balance": entry.BalanceAfter, "transaction": entry})
}

// Spend debits a catalogue service cost from the caller's wallet.
func (h *WalletHandler) Spend(c *gin.Context) {
	sellerID := middleware.GetSellerID(c)
	var req struct {
		ServiceType    string `json:"service_type" binding:"required"`
		IdempotencyKey string `json:"idempotency_key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation_error"})
		return
	}
	key := req.IdempotencyKey
	if key == "" {
		key = deriveIdempotencyKey(c, sellerID, "spend", req.ServiceType, "")
	}
	entry, err := h.txSvc.Spend(sellerID, req.ServiceType, key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"new_balance": entry.BalanceAfter, "transaction": entry})
}

// deriveIdempotencyKey builds a deterministic key when the client omits one,
// so double-clicks and timeout retries collapse without client cooperation.
// With a reference id the key is stable per referenced entity; without one
// it is stable per calendar day. The key is mandatory at the transaction
// service, so this is the fallback of last resort.
func deriveIdempotencyKey(c *gin.Context, sellerID uint, op, category, referenceID string) string {
	scope := referenceID
	if scope == "" {
		scope = dayBucket(c)
	}
	name := fmt.Sprintf("%s|%d|%s|%s", op, sellerID, category, scope)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("sokoni:"+name)).String()
}

func dayBucket(c *gin.Context) string {
	// Date header is set by the gateway; fall back to an explicit bucket
	// query param used by retrying clients.
	if b := c.Query("bucket"); b != "" {
		return b
	}
	return domain.TodayBucket()
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
