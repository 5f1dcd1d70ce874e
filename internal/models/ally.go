package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	KYCStatusPending  = "PENDING"
	KYCStatusApproved = "APPROVED"
	KYCStatusRejected = "REJECTED"
)

// Ally is a property-listing partner. Bank profile fields are the live
// payout destination; withdrawal requests snapshot them at creation time.
type Ally struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	KYCStatus         string
	BankName          string
	BankAccountNumber string
	AccountHolderName string
	HolderID          string
	CreatedAt         time.Time
}

// BankProfileComplete reports whether every payout field is present.
func (a Ally) BankProfileComplete() bool {
	return a.BankName != "" && a.BankAccountNumber != "" && a.AccountHolderName != "" && a.HolderID != ""
}
