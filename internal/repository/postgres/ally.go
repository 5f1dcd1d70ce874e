package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/alamarhq/alamar/internal/apperrors"
	"github.com/alamarhq/alamar/internal/models"
	"github.com/alamarhq/alamar/internal/repository"
)

type AllyRepo struct {
	DB DBTX
}

const createAlly = `-- name: CreateAlly
INSERT INTO allies (user_id, kyc_status, bank_name, bank_account_number, account_holder_name, holder_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, user_id, kyc_status, bank_name, bank_account_number, account_holder_name, holder_id, created_at
`

func (r *AllyRepo) CreateAlly(ctx context.Context, params repository.CreateAllyParams) (models.Ally, error) {
	if params.KYCStatus == "" {
		params.KYCStatus = models.KYCStatusPending
	}

	rows, _ := r.DB.Query(ctx, createAlly,
		params.UserID, params.KYCStatus, params.BankName, params.BankAccountNumber, params.AccountHolderName, params.HolderID,
	)
	ally, err := pgx.CollectOneRow(rows, rowToAlly)
	if err != nil {
		return ally, fmt.Errorf("db error: %w", err)
	}

	return ally, nil
}

const getAlly = `-- name: GetAlly
SELECT id, user_id, kyc_status, bank_name, bank_account_number, account_holder_name, holder_id, created_at
FROM allies
WHERE id = $1
`

func (r *AllyRepo) GetAlly(ctx context.Context, allyID uuid.UUID) (models.Ally, error) {
	rows, _ := r.DB.Query(ctx, getAlly, allyID)
	return collectAlly(rows)
}

const getAllyByUserID = `-- name: GetAllyByUserID
SELECT id, user_id, kyc_status, bank_name, bank_account_number, account_holder_name, holder_id, created_at
FROM allies
WHERE user_id = $1
`

func (r *AllyRepo) GetAllyByUserID(ctx context.Context, userID uuid.UUID) (models.Ally, error) {
	rows, _ := r.DB.Query(ctx, getAllyByUserID, userID)
	return collectAlly(rows)
}

func collectAlly(rows pgx.Rows) (models.Ally, error) {
	ally, err := pgx.CollectOneRow(rows, rowToAlly)

	switch {
	case err == nil:
		return ally, nil
	case errors.Is(err, pgx.ErrNoRows):
		return ally, apperrors.ErrAllyNotFound
	default:
		return ally, fmt.Errorf("db error: %w", err)
	}
}

func rowToAlly(row pgx.CollectableRow) (models.Ally, error) {
	var a models.Ally
	err := row.Scan(&a.ID, &a.UserID, &a.KYCStatus, &a.BankName, &a.BankAccountNumber, &a.AccountHolderName, &a.HolderID, &a.CreatedAt)
	return a, err
}
