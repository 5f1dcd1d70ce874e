package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/alamarhq/alamar/internal/apperrors"
	"github.com/alamarhq/alamar/internal/models"
	"github.com/alamarhq/alamar/internal/repository"
)

type WithdrawalRepo struct {
	DB DBTX
}

const withdrawalColumns = `id, ally_id, amount_cents, currency, status,
	bank_name, bank_account_masked, account_holder_name, holder_id,
	payment_reference, receipt_url, rejection_reason, reviewed_by_user_id, reviewed_at, created_at`

const createWithdrawal = `-- name: CreateWithdrawal
INSERT INTO withdrawal_requests (ally_id, amount_cents, currency, bank_name, bank_account_masked, account_holder_name, holder_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + withdrawalColumns

func (r *WithdrawalRepo) CreateWithdrawal(ctx context.Context, params repository.CreateWithdrawalParams) (models.WithdrawalRequest, error) {
	rows, _ := r.DB.Query(ctx, createWithdrawal,
		params.AllyID, params.AmountCents, params.Currency,
		params.Bank.BankName, params.Bank.AccountMasked, params.Bank.AccountHolderName, params.Bank.HolderID,
	)
	w, err := pgx.CollectOneRow(rows, rowToWithdrawal)
	if err != nil {
		return w, fmt.Errorf("db error: %w", err)
	}

	return w, nil
}

const getWithdrawal = `-- name: GetWithdrawal
SELECT ` + withdrawalColumns + `
FROM withdrawal_requests
WHERE id = $1
`

func (r *WithdrawalRepo) GetWithdrawal(ctx context.Context, id uuid.UUID, forUpdate bool) (models.WithdrawalRequest, error) {
	query := getWithdrawal
	if forUpdate {
		query += " FOR UPDATE"
	}

	rows, _ := r.DB.Query(ctx, query, id)
	w, err := pgx.CollectOneRow(rows, rowToWithdrawal)

	switch {
	case err == nil:
		return w, nil
	case errors.Is(err, pgx.ErrNoRows):
		return w, apperrors.ErrWithdrawalNotFound
	default:
		return w, fmt.Errorf("db error: %w", err)
	}
}

const listWithdrawalsByAlly = `-- name: ListWithdrawalsByAlly
SELECT ` + withdrawalColumns + `
FROM withdrawal_requests
WHERE ally_id = $1
ORDER BY created_at DESC
`

func (r *WithdrawalRepo) ListWithdrawalsByAlly(ctx context.Context, allyID uuid.UUID) ([]models.WithdrawalRequest, error) {
	rows, _ := r.DB.Query(ctx, listWithdrawalsByAlly, allyID)
	list, err := pgx.CollectRows(rows, rowToWithdrawal)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return list, nil
}

const listWithdrawalsByStatus = `-- name: ListWithdrawalsByStatus
SELECT ` + withdrawalColumns + `
FROM withdrawal_requests
WHERE status = $1
ORDER BY created_at DESC
LIMIT $2
`

func (r *WithdrawalRepo) ListWithdrawalsByStatus(ctx context.Context, status string, limit int) ([]models.WithdrawalRequest, error) {
	rows, _ := r.DB.Query(ctx, listWithdrawalsByStatus, status, limit)
	list, err := pgx.CollectRows(rows, rowToWithdrawal)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return list, nil
}

// Transitions are conditional updates: the WHERE clause names the states the
// transition is allowed from, so a request in any other state is left
// untouched and the caller gets ErrStateConflict.

const approveWithdrawal = `-- name: ApproveWithdrawal
UPDATE withdrawal_requests
SET status = 'APPROVED', reviewed_by_user_id = $2, reviewed_at = $3, rejection_reason = NULL
WHERE id = $1 AND status = 'PENDING'
RETURNING ` + withdrawalColumns

func (r *WithdrawalRepo) Approve(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID, at time.Time) (models.WithdrawalRequest, error) {
	rows, _ := r.DB.Query(ctx, approveWithdrawal, id, reviewerID, at)
	return r.collectTransition(ctx, rows, id)
}

const rejectWithdrawal = `-- name: RejectWithdrawal
UPDATE withdrawal_requests
SET status = 'REJECTED', reviewed_by_user_id = $2, reviewed_at = $3, rejection_reason = $4
WHERE id = $1 AND status IN ('PENDING', 'APPROVED')
RETURNING ` + withdrawalColumns

func (r *WithdrawalRepo) Reject(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID, at time.Time, reason string) (models.WithdrawalRequest, error) {
	rows, _ := r.DB.Query(ctx, rejectWithdrawal, id, reviewerID, at, reason)
	return r.collectTransition(ctx, rows, id)
}

const markWithdrawalPaid = `-- name: MarkWithdrawalPaid
UPDATE withdrawal_requests
SET status = 'PAID', reviewed_by_user_id = $2, reviewed_at = $3, payment_reference = $4, receipt_url = $5
WHERE id = $1 AND status = 'APPROVED'
RETURNING ` + withdrawalColumns

func (r *WithdrawalRepo) MarkPaid(ctx context.Context, id uuid.UUID, params repository.MarkPaidParams) (models.WithdrawalRequest, error) {
	rows, _ := r.DB.Query(ctx, markWithdrawalPaid, id, params.ReviewerID, params.ReviewedAt, params.PaymentReference, params.ReceiptURL)
	return r.collectTransition(ctx, rows, id)
}

// collectTransition turns an empty conditional-update result into
// ErrWithdrawalNotFound or ErrStateConflict depending on whether the
// request exists.
func (r *WithdrawalRepo) collectTransition(ctx context.Context, rows pgx.Rows, id uuid.UUID) (models.WithdrawalRequest, error) {
	w, err := pgx.CollectOneRow(rows, rowToWithdrawal)

	switch {
	case err == nil:
		return w, nil
	case errors.Is(err, pgx.ErrNoRows):
		current, getErr := r.GetWithdrawal(ctx, id, false)
		if getErr != nil {
			return w, getErr
		}
		return w, fmt.Errorf("request is %s: %w", current.Status, apperrors.ErrStateConflict)
	default:
		return w, fmt.Errorf("db error: %w", err)
	}
}

func rowToWithdrawal(row pgx.CollectableRow) (models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest
	err := row.Scan(
		&w.ID, &w.AllyID, &w.AmountCents, &w.Currency, &w.Status,
		&w.Bank.BankName, &w.Bank.AccountMasked, &w.Bank.AccountHolderName, &w.Bank.HolderID,
		&w.PaymentReference, &w.ReceiptURL, &w.RejectionReason, &w.ReviewedByUserID, &w.ReviewedAt, &w.CreatedAt,
	)
	return w, err
}
