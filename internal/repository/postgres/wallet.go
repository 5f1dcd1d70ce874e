package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/alamarhq/alamar/internal/apperrors"
	"github.com/alamarhq/alamar/internal/models"
)

type WalletRepo struct {
	DB DBTX
}

// Create wallet for ally if it does not exist yet, return it either way
const getOrCreateWallet = `-- name: GetOrCreateWallet
WITH insert_wallet AS (
	INSERT INTO wallets (ally_id, balance_available_cents, balance_pending_cents)
	VALUES ($1, 0, 0)
	ON CONFLICT (ally_id) DO NOTHING
	RETURNING id, ally_id, balance_available_cents, balance_pending_cents, created_at, updated_at
)
SELECT * FROM insert_wallet
UNION
SELECT id, ally_id, balance_available_cents, balance_pending_cents, created_at, updated_at
FROM wallets WHERE ally_id = $1
`

func (r *WalletRepo) GetOrCreateWallet(ctx context.Context, allyID uuid.UUID) (models.Wallet, error) {
	rows, _ := r.DB.Query(ctx, getOrCreateWallet, allyID)
	wallet, err := pgx.CollectOneRow(rows, rowToWallet)
	if err != nil {
		return wallet, fmt.Errorf("db error: %w", err)
	}

	return wallet, nil
}

const getWallet = `-- name: GetWallet
SELECT id, ally_id, balance_available_cents, balance_pending_cents, created_at, updated_at
FROM wallets
WHERE ally_id = $1
`

func (r *WalletRepo) GetWallet(ctx context.Context, allyID uuid.UUID, forUpdate bool) (models.Wallet, error) {
	query := getWallet
	if forUpdate {
		query += " FOR UPDATE"
	}

	rows, _ := r.DB.Query(ctx, query, allyID)
	wallet, err := pgx.CollectOneRow(rows, rowToWallet)

	switch {
	case err == nil:
		return wallet, nil
	case errors.Is(err, pgx.ErrNoRows):
		return wallet, apperrors.ErrWalletNotFound
	default:
		return wallet, fmt.Errorf("db error: %w", err)
	}
}

const adjustBalance = `-- name: AdjustBalance
UPDATE wallets
SET balance_available_cents = balance_available_cents + $2,
    updated_at = now()
WHERE id = $1 AND balance_available_cents + $2 >= 0
RETURNING id, ally_id, balance_available_cents, balance_pending_cents, created_at, updated_at
`

const insertTransaction = `-- name: InsertTransaction
INSERT INTO wallet_transactions (wallet_id, type, amount_cents, currency, reference_type, reference_id, note)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

// ApplyTransaction adjusts the wallet balance by the signed amount and
// records the ledger entry. Run it inside Storage.InTx whenever it has to
// commit or fail together with other writes.
func (r *WalletRepo) ApplyTransaction(ctx context.Context, t models.WalletTransaction) (models.Wallet, error) {
	rows, _ := r.DB.Query(ctx, adjustBalance, t.WalletID, t.AmountCents)
	wallet, err := pgx.CollectOneRow(rows, rowToWallet)

	switch {
	case err == nil:
	case errors.Is(err, pgx.ErrNoRows):
		// Either the wallet is missing or the debit would overdraw it
		if _, exErr := r.walletExists(ctx, t.WalletID); exErr != nil {
			return wallet, exErr
		}
		return wallet, apperrors.ErrInsufficientBalance
	default:
		return wallet, fmt.Errorf("db error: %w", err)
	}

	var refID *uuid.UUID
	if t.ReferenceID != uuid.Nil {
		refID = &t.ReferenceID
	}

	_, err = r.DB.Exec(ctx, insertTransaction, t.WalletID, t.Type, t.AmountCents, t.Currency, t.ReferenceType, refID, t.Note)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			// A ledger entry for this withdrawal already exists
			return wallet, fmt.Errorf("duplicate ledger entry for %s %s: %w", t.ReferenceType, t.ReferenceID, apperrors.ErrStateConflict)
		}
		return wallet, fmt.Errorf("db error: %w", err)
	}

	return wallet, nil
}

const listTransactions = `-- name: ListTransactions
SELECT id, wallet_id, type, amount_cents, currency, reference_type, reference_id, note, created_at
FROM wallet_transactions
WHERE wallet_id = $1
ORDER BY created_at DESC
LIMIT $2
`

func (r *WalletRepo) ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	rows, _ := r.DB.Query(ctx, listTransactions, walletID, limit)
	transactions, err := pgx.CollectRows(rows, rowToTransaction)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return transactions, nil
}

func (r *WalletRepo) walletExists(ctx context.Context, walletID uuid.UUID) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM wallets WHERE id = $1)", walletID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	if !exists {
		return false, apperrors.ErrWalletNotFound
	}
	return true, nil
}

func rowToWallet(row pgx.CollectableRow) (models.Wallet, error) {
	var w models.Wallet
	err := row.Scan(&w.ID, &w.AllyID, &w.BalanceAvailableCents, &w.BalancePendingCents, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

func rowToTransaction(row pgx.CollectableRow) (models.WalletTransaction, error) {
	var t models.WalletTransaction
	var refID *uuid.UUID
	err := row.Scan(&t.ID, &t.WalletID, &t.Type, &t.AmountCents, &t.Currency, &t.ReferenceType, &refID, &t.Note, &t.CreatedAt)
	if refID != nil {
		t.ReferenceID = *refID
	}
	return t, err
}
