package service

import (
	"errors"
	"fmt"
	"time"

	"sokoni/config"
	"sokoni/internal/domain"
	"sokoni/internal/models"
	"sokoni/internal/repository"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// TransactionService is the only component that writes the ledger and the
// wallet cache. Every balance mutation flows through Credit, Debit or
// Reverse; each runs in a single database transaction holding a row lock on
// the wallet, so before/after snapshots are consistent under concurrency.
type TransactionService struct {
	ledger  repository.LedgerRepository
	wallets repository.WalletRepository
	credits config.CreditsConfig
	log     zerolog.Logger
}

func NewTransactionService(
	ledger repository.LedgerRepository,
	wallets repository.WalletRepository,
	credits config.CreditsConfig,
	log zerolog.Logger,
) *TransactionService {
	return &TransactionService{
		ledger:  ledger,
		wallets: wallets,
		credits: credits,
		log:     log.With().Str("component", "transactions").Logger(),
	}
}

// TxRequest describes one credit or debit. IdempotencyKey is mandatory;
// callers that cannot supply one must derive a deterministic key from their
// request context before reaching this layer.
type TxRequest struct {
	SellerID       uint
	Amount         int64
	Category       string
	IdempotencyKey string
	ReferenceID    string
	ReferenceType  string
	Actor          string
	// EntryType overrides the default CREDIT/DEBIT type for admin and
	// hold entries. Leave empty for the normal paths.
	EntryType string
}

func (r *TxRequest) validate() error {
	if r.SellerID == 0 {
		return fmt.Errorf("%w: seller id is required", domain.ErrValidation)
	}
	if r.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if r.Category == "" {
		return fmt.Errorf("%w: category is required", domain.ErrValidation)
	}
	if r.IdempotencyKey == "" {
		return domain.ErrMissingIdemKey
	}
	return nil
}

// Credit appends a completed credit entry and updates the wallet cache.
// A retry carrying the same idempotency key and parameters returns the
// original entry without touching the balance.
func (s *TransactionService) Credit(req TxRequest) (*models.LedgerEntry, error) {
	if req.EntryType == "" {
		req.EntryType = domain.EntryTypeCredit
	}
	return s.apply(req, true)
}

// Debit appends a completed debit entry after checking available balance.
// Fails with InsufficientBalanceError carrying the exact shortfall.
func (s *TransactionService) Debit(req TxRequest) (*models.LedgerEntry, error) {
	if req.EntryType == "" {
		req.EntryType = domain.EntryTypeDebit
	}
	return s.apply(req, false)
}

func (s *TransactionService) apply(req TxRequest, isCredit bool) (*models.LedgerEntry, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var entry *models.LedgerEntry
	err := s.ledger.Atomically(func(tx repository.LedgerTx) error {
		existing, err := tx.FindByKey(req.SellerID, req.IdempotencyKey)
		if err == nil {
			replayed, rerr := replayOrConflict(existing, req)
			if rerr != nil {
				return rerr
			}
			entry = replayed
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		wallet, err := tx.WalletForUpdate(req.SellerID)
		if err != nil {
			return err
		}
		if !isCredit {
			if available := wallet.Available(); available < req.Amount {
				return &domain.InsufficientBalanceError{Available: available, Requested: req.Amount}
			}
		}

		before := wallet.Balance
		after := before + req.Amount
		if !isCredit {
			after = before - req.Amount
		}

		e := &models.LedgerEntry{
			SellerID:       req.SellerID,
			Type:           req.EntryType,
			Amount:         req.Amount,
			BalanceBefore:  before,
			BalanceAfter:   after,
			Category:       req.Category,
			ReferenceID:    req.ReferenceID,
			ReferenceType:  req.ReferenceType,
			Status:         domain.EntryStatusCompleted,
			IdempotencyKey: req.IdempotencyKey,
			Actor:          req.Actor,
		}
		if err := tx.Append(e); err != nil {
			// Lost a race on the unique (seller, key) index: the other
			// writer's entry is authoritative.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				winner, ferr := tx.FindByKey(req.SellerID, req.IdempotencyKey)
				if ferr != nil {
					return err
				}
				replayed, rerr := replayOrConflict(winner, req)
				if rerr != nil {
					return rerr
				}
				entry = replayed
				return nil
			}
			return err
		}

		now := time.Now()
		wallet.Balance = after
		wallet.LastTransactionAt = &now
		if isCredit {
			wallet.TotalEarned += req.Amount
		} else {
			wallet.TotalSpent += req.Amount
		}
		if err := tx.UpdateWallet(wallet); err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// replayOrConflict decides what an idempotency-key hit means: an identical
// retry is collapsed to the original entry; a parameter mismatch is a client
// bug and must not silently succeed.
func replayOrConflict(existing *models.LedgerEntry, req TxRequest) (*models.LedgerEntry, error) {
	if existing.Amount == req.Amount && existing.Category == req.Category && existing.Type == req.EntryType {
		return existing, nil
	}
	return nil, &domain.DuplicateTransactionError{Key: req.IdempotencyKey}
}

// Reverse undoes a completed entry by applying an opposite-direction entry
// through the normal credit/debit path and linking the pair. At most one
// reversal per entry.
func (s *TransactionService) Reverse(entryID uint, actor string) (*models.LedgerEntry, error) {
	original, err := s.ledger.FindByID(entryID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.EntryStatusCompleted || original.ReversedByID != nil {
		return nil, domain.ErrNotReversible
	}

	req := TxRequest{
		SellerID:       original.SellerID,
		Amount:         original.Amount,
		Category:       domain.CategoryReversal,
		IdempotencyKey: fmt.Sprintf("reversal-%d", original.ID),
		ReferenceID:    fmt.Sprintf("%d", original.ID),
		ReferenceType:  domain.RefTypeLedger,
		Actor:          actor,
		EntryType:      oppositeType(original.Type),
	}

	var reversal *models.LedgerEntry
	err = s.ledger.Atomically(func(tx repository.LedgerTx) error {
		// Re-read under the transaction so two admins cannot both reverse.
		orig, err := tx.FindByID(entryID)
		if err != nil {
			return err
		}
		if orig.Status != domain.EntryStatusCompleted || orig.ReversedByID != nil {
			return domain.ErrNotReversible
		}

		wallet, err := tx.WalletForUpdate(orig.SellerID)
		if err != nil {
			return err
		}

		isCredit := originalWasDebit(orig.Type)
		if !isCredit {
			if available := wallet.Available(); available < orig.Amount {
				return &domain.InsufficientBalanceError{Available: available, Requested: orig.Amount}
			}
		}

		before := wallet.Balance
		after := before + orig.Amount
		if !isCredit {
			after = before - orig.Amount
		}

		rev := &models.LedgerEntry{
			SellerID:       req.SellerID,
			Type:           req.EntryType,
			Amount:         req.Amount,
			BalanceBefore:  before,
			BalanceAfter:   after,
			Category:       req.Category,
			ReferenceID:    req.ReferenceID,
			ReferenceType:  req.ReferenceType,
			Status:         domain.EntryStatusCompleted,
			IdempotencyKey: req.IdempotencyKey,
			Actor:          actor,
			ReversalOfID:   &orig.ID,
		}
		if err := tx.Append(rev); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrNotReversible
			}
			return err
		}

		now := time.Now()
		wallet.Balance = after
		wallet.LastTransactionAt = &now
		if isCredit {
			wallet.TotalEarned += orig.Amount
		} else {
			wallet.TotalSpent += orig.Amount
		}
		if err := tx.UpdateWallet(wallet); err != nil {
			return err
		}
		if err := tx.LinkReversal(orig, rev); err != nil {
			return err
		}
		reversal = rev
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint("entry_id", entryID).Uint("reversal_id", reversal.ID).Str("actor", actor).Msg("entry reversed")
	return reversal, nil
}

func oppositeType(entryType string) string {
	switch entryType {
	case domain.EntryTypeCredit:
		return domain.EntryTypeDebit
	case domain.EntryTypeDebit:
		return domain.EntryTypeCredit
	case domain.EntryTypeAdminAdd:
		return domain.EntryTypeAdminDeduct
	case domain.EntryTypeAdminDeduct:
		return domain.EntryTypeAdminAdd
	case domain.EntryTypeHold:
		return domain.EntryTypeRelease
	default:
		return domain.EntryTypeCredit
	}
}

func originalWasDebit(entryType string) bool {
	switch entryType {
	case domain.EntryTypeDebit, domain.EntryTypeAdminDeduct, domain.EntryTypeHold:
		return true
	}
	return false
}

// Earn credits a catalogue reward. The category must exist in the injected
// reward catalogue; the amount always comes from the catalogue, never the
// caller.
func (s *TransactionService) Earn(sellerID uint, category, idemKey, refID, refType string) (*models.LedgerEntry, error) {
	amount, ok := s.credits.Rewards[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a reward category", domain.ErrUnknownCategory, category)
	}
	return s.Credit(TxRequest{
		SellerID:       sellerID,
		Amount:         amount,
		Category:       category,
		IdempotencyKey: idemKey,
		ReferenceID:    refID,
		ReferenceType:  refType,
		Actor:          "system",
	})
}

// Spend debits a catalogue service cost.
func (s *TransactionService) Spend(sellerID uint, serviceType, idemKey string) (*models.LedgerEntry, error) {
	amount, ok := s.credits.Costs[serviceType]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a paid service", domain.ErrUnknownCategory, serviceType)
	}
	return s.Debit(TxRequest{
		SellerID:       sellerID,
		Amount:         amount,
		Category:       serviceType,
		IdempotencyKey: idemKey,
		Actor:          "system",
	})
}

// AdminAdjust applies a staff credit or deduction of arbitrary size,
// attributed to the acting admin. direction is "add" or "deduct".
func (s *TransactionService) AdminAdjust(sellerID uint, amount int64, reason, adminID, direction string) (*models.LedgerEntry, error) {
	req := TxRequest{
		SellerID:       sellerID,
		Amount:         amount,
		IdempotencyKey: fmt.Sprintf("admin-%s-%d-%d", adminID, sellerID, time.Now().UnixNano()),
		ReferenceID:    reason,
		ReferenceType:  domain.RefTypeAdmin,
		Actor:          adminID,
	}
	switch direction {
	case "add":
		req.Category = domain.CategoryAdminBonus
		req.EntryType = domain.EntryTypeAdminAdd
		return s.Credit(req)
	case "deduct":
		req.Category = domain.CategoryAdminPenalty
		req.EntryType = domain.EntryTypeAdminDeduct
		return s.Debit(req)
	default:
		return nil, fmt.Errorf("%w: direction must be add or deduct", domain.ErrValidation)
	}
}

// WalletSummary is the read model for GetWallet.
type WalletSummary struct {
	Wallet             *models.Wallet       `json:"wallet"`
	AvailableBalance   int64                `json:"available_balance"`
	RecentTransactions []models.LedgerEntry `json:"recent_transactions"`
}

// GetWallet returns the wallet (created lazily) plus recent ledger entries.
func (s *TransactionService) GetWallet(sellerID uint) (*WalletSummary, error) {
	wallet, err := s.wallets.GetOrCreate(sellerID)
	if err != nil {
		return nil, err
	}
	recent, err := s.ledger.Recent(sellerID, 10)
	if err != nil {
		return nil, err
	}
	return &WalletSummary{
		Wallet:             wallet,
		AvailableBalance:   wallet.Available(),
		RecentTransactions: recent,
	}, nil
}

func (s *TransactionService) ListTransactions(sellerID uint, page, limit int) ([]models.LedgerEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.ledger.List(sellerID, page, limit)
}

// AuditResult compares the cached wallet balance against the ledger.
type AuditResult struct {
	SellerID      uint  `json:"seller_id"`
	CachedBalance int64 `json:"cached_balance"`
	LedgerBalance int64 `json:"ledger_balance"`
	Credits       int64 `json:"credits"`
	Debits        int64 `json:"debits"`
	Consistent    bool  `json:"consistent"`
}

// Audit recomputes the balance from the ledger and checks the cache
// invariant: balance == sum(credits) - sum(debits).
func (s *TransactionService) Audit(sellerID uint) (*AuditResult, error) {
	wallet, err := s.wallets.GetBySellerID(sellerID)
	if err != nil {
		return nil, err
	}
	credits, debits, err := s.ledger.SumCompleted(sellerID)
	if err != nil {
		return nil, err
	}
	ledgerBalance := credits - debits
	return &AuditResult{
		SellerID:      sellerID,
		CachedBalance: wallet.Balance,
		LedgerBalance: ledgerBalance,
		Credits:       credits,
		Debits:        debits,
		Consistent:    wallet.Balance == ledgerBalance,
	}, nil
}
