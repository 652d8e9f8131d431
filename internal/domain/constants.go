package domain

const (
	RoleSeller = "SELLER"
	RoleAdmin  = "ADMIN"
)

// Ledger entry types.
const (
	EntryTypeCredit      = "CREDIT"
	EntryTypeDebit       = "DEBIT"
	EntryTypeHold        = "HOLD"
	EntryTypeRelease     = "RELEASE"
	EntryTypeAdminAdd    = "ADMIN_ADD"
	EntryTypeAdminDeduct = "ADMIN_DEDUCT"
)

// Ledger entry statuses.
const (
	EntryStatusCompleted = "COMPLETED"
	EntryStatusPending   = "PENDING"
	EntryStatusCancelled = "CANCELLED"
	EntryStatusReversed  = "REVERSED"
)

// Earn/spend categories not tied to a catalogue entry.
const (
	CategoryAdminBonus   = "admin_bonus"
	CategoryAdminPenalty = "admin_penalty"
	CategoryReversal     = "reversal"
)

// Streak categories; amounts come from the injected reward catalogue.
const (
	CategoryFirstLogin       = "first_login"
	CategoryStreakDaily      = "streak_daily"
	CategoryStreakRestart    = "streak_restart"
	CategoryStreakCheckpoint = "streak_checkpoint"
)

// Reference types linking a ledger entry to the triggering entity.
const (
	RefTypeBooking  = "booking"
	RefTypeReview   = "review"
	RefTypeStreak   = "streak"
	RefTypeReferral = "referral"
	RefTypeAdmin    = "admin"
	RefTypeLedger   = "ledger_entry"
)

// Day statuses in a streak week history.
const (
	DayStatusHit    = "hit"
	DayStatusMissed = "missed"
	DayStatusFrozen = "frozen"
)

// StreakCheckpointInterval is the streak length multiple that triggers the
// checkpoint bonus and anchors the soft-landing reset.
const StreakCheckpointInterval = 7

// WeekHistoryLen bounds the per-seller day history kept on the streak record.
const WeekHistoryLen = 7
