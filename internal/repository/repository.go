package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/alamarhq/alamar/internal/models"
)

type CreateAllyParams struct {
	UserID            uuid.UUID
	KYCStatus         string
	BankName          string
	BankAccountNumber string
	AccountHolderName string
	HolderID          string
}

// Ally repository interface
type AllyRepo interface {
	CreateAlly(ctx context.Context, params CreateAllyParams) (models.Ally, error)

	// Get ally by profile id
	// If ally not found must return apperrors.ErrAllyNotFound
	GetAlly(ctx context.Context, allyID uuid.UUID) (models.Ally, error)
	GetAllyByUserID(ctx context.Context, userID uuid.UUID) (models.Ally, error)
}

// Wallet repository interface
type WalletRepo interface {
	// Get wallet for ally, creating an empty one if it does not exist yet
	GetOrCreateWallet(ctx context.Context, allyID uuid.UUID) (models.Wallet, error)

	// Get wallet for ally
	// forUpdate locks the row for the rest of the surrounding transaction
	// If wallet not found must return apperrors.ErrWalletNotFound
	GetWallet(ctx context.Context, allyID uuid.UUID, forUpdate bool) (models.Wallet, error)

	// Insert a ledger entry and adjust the wallet balance by its amount.
	// A debit that would drive the available balance negative must fail
	// with apperrors.ErrInsufficientBalance and write nothing.
	ApplyTransaction(ctx context.Context, t models.WalletTransaction) (models.Wallet, error)

	ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]models.WalletTransaction, error)
}

type CreateWithdrawalParams struct {
	AllyID      uuid.UUID
	AmountCents int64
	Currency    string
	Bank        models.BankDetailsSnapshot
}

type MarkPaidParams struct {
	ReviewerID       uuid.UUID
	ReviewedAt       time.Time
	PaymentReference *string
	ReceiptURL       *string
}

// Withdrawal repository interface
//
// Approve, Reject and MarkPaid are conditional updates: they succeed only
// when the request is in a state the transition is allowed from, and must
// return apperrors.ErrStateConflict otherwise (apperrors.ErrWithdrawalNotFound
// when the request does not exist at all).
type WithdrawalRepo interface {
	CreateWithdrawal(ctx context.Context, params CreateWithdrawalParams) (models.WithdrawalRequest, error)

	GetWithdrawal(ctx context.Context, id uuid.UUID, forUpdate bool) (models.WithdrawalRequest, error)
	ListWithdrawalsByAlly(ctx context.Context, allyID uuid.UUID) ([]models.WithdrawalRequest, error)
	ListWithdrawalsByStatus(ctx context.Context, status string, limit int) ([]models.WithdrawalRequest, error)

	Approve(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID, at time.Time) (models.WithdrawalRequest, error)
	Reject(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID, at time.Time, reason string) (models.WithdrawalRequest, error)
	MarkPaid(ctx context.Context, id uuid.UUID, params MarkPaidParams) (models.WithdrawalRequest, error)
}

// Settings repository interface: string key to raw JSON value
type SettingsRepo interface {
	// If key not found must return apperrors.ErrSettingNotFound
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
}

// Audit repository interface, append-only
type AuditRepo interface {
	Record(ctx context.Context, entry models.AuditEntry) error
}

// Storage bundles every repository over one connection or transaction
type Storage interface {
	Ally() AllyRepo
	Wallet() WalletRepo
	Withdrawal() WithdrawalRepo
	Settings() SettingsRepo
	Audit() AuditRepo

	// InTx runs fn with a Storage bound to a single db transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(Storage) error) error
}
