package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AuditActionWithdrawalRequested = "WITHDRAWAL_REQUESTED"
	AuditActionWithdrawalApproved  = "WITHDRAWAL_APPROVED"
	AuditActionWithdrawalRejected  = "WITHDRAWAL_REJECTED"
	AuditActionWithdrawalPaid      = "WITHDRAWAL_PAID"
)

// AuditEntry is an append-only trace of a state transition. It is written
// after the transition commits and is not required for ledger correctness.
type AuditEntry struct {
	ID          uuid.UUID
	ActorUserID uuid.UUID
	Action      string
	EntityType  string
	EntityID    uuid.UUID
	Metadata    map[string]any
	CreatedAt   time.Time
}
