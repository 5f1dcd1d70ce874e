package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	TransactionTypeBookingPayout = "BOOKING_PAYOUT"
	TransactionTypeWithdrawal    = "WITHDRAWAL"
	TransactionTypeAdjustment    = "ADJUSTMENT"
)

// Wallet holds the running balance of an ally. One wallet per ally profile,
// created lazily on first access.
type Wallet struct {
	ID                    uuid.UUID
	AllyID                uuid.UUID
	BalanceAvailableCents int64
	BalancePendingCents   int64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// WalletTransaction is an append-only ledger entry. Amount is signed:
// negative for debits (withdrawals), positive for credits.
type WalletTransaction struct {
	ID            uuid.UUID
	WalletID      uuid.UUID
	Type          string
	AmountCents   int64
	Currency      string
	ReferenceType string
	ReferenceID   uuid.UUID
	Note          string
	CreatedAt     time.Time
}
