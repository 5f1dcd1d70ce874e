package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	WithdrawalStatusPending  = "PENDING"
	WithdrawalStatusApproved = "APPROVED"
	WithdrawalStatusRejected = "REJECTED"
	WithdrawalStatusPaid     = "PAID"
)

// MinWithdrawalCents is the smallest amount an ally may cash out ($100.00).
const MinWithdrawalCents int64 = 10000

// ReferenceTypeWithdrawal links a ledger entry back to its withdrawal request.
const ReferenceTypeWithdrawal = "WITHDRAWAL_REQUEST"

// BankDetailsSnapshot is a point-in-time copy of the ally's payout bank
// profile, captured when the withdrawal is requested. Later edits to the
// profile never change it. The account number keeps only its last 4 digits.
type BankDetailsSnapshot struct {
	BankName          string
	AccountMasked     string
	AccountHolderName string
	HolderID          string
}

// MaskAccountNumber keeps the last 4 characters and replaces the rest
// with asterisks.
func MaskAccountNumber(number string) string {
	number = strings.TrimSpace(number)
	if len(number) <= 4 {
		return number
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}

// WithdrawalRequest is an ally's request to cash out available balance.
// Amount and bank details are fixed at creation; only staff review actions
// mutate the remaining fields. Requests are never deleted.
type WithdrawalRequest struct {
	ID               uuid.UUID
	AllyID           uuid.UUID
	AmountCents      int64
	Currency         string
	Status           string
	Bank             BankDetailsSnapshot
	PaymentReference *string
	ReceiptURL       *string
	RejectionReason  *string
	ReviewedByUserID *uuid.UUID
	ReviewedAt       *time.Time
	CreatedAt        time.Time
}

// Terminal reports whether the request reached a state with no outgoing
// transitions.
func (w WithdrawalRequest) Terminal() bool {
	return w.Status == WithdrawalStatusRejected || w.Status == WithdrawalStatusPaid
}
