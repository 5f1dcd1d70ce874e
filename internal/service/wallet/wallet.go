package wallet

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/alamarhq/alamar/internal/apperrors"
	"github.com/alamarhq/alamar/internal/logger"
	"github.com/alamarhq/alamar/internal/models"
	"github.com/alamarhq/alamar/internal/repository"
)

// Notifier delivers best-effort mail. Failures never escalate to operation
// failures; the service logs and moves on.
type Notifier interface {
	Send(ctx context.Context, to string, subject string, text string) error
}

type Config struct {
	// FinanceEmail receives a note about every new withdrawal request
	FinanceEmail string
}

// Service is the withdrawal ledger. State machine:
//
//	PENDING -> APPROVED -> PAID
//	PENDING -> REJECTED
//	APPROVED -> REJECTED
//
// REJECTED and PAID are terminal. Balance is checked informationally when a
// withdrawal is requested and authoritatively re-checked, with the wallet
// row locked, inside the mark-paid transaction. Approval places no hold, so
// of several approved requests racing for the same balance the late one
// fails at pay time and stays APPROVED.
type Service struct {
	cfg      Config
	storage  repository.Storage
	notifier Notifier
	logger   logger.Logger
}

func NewService(cfg Config, storage repository.Storage, notifier Notifier, l logger.Logger) *Service {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Service{
		cfg:      cfg,
		storage:  storage,
		notifier: notifier,
		logger:   l,
	}
}

// GetWallet returns the actor's wallet, creating an empty one on first access.
func (s *Service) GetWallet(ctx context.Context, actor models.Actor) (models.Wallet, error) {
	allyID, err := requireAlly(actor)
	if err != nil {
		return models.Wallet{}, err
	}

	return s.storage.Wallet().GetOrCreateWallet(ctx, allyID)
}

// ListTransactions returns the most recent ledger entries of the actor's wallet.
func (s *Service) ListTransactions(ctx context.Context, actor models.Actor, limit int) ([]models.WalletTransaction, error) {
	wallet, err := s.GetWallet(ctx, actor)
	if err != nil {
		return nil, err
	}

	return s.storage.Wallet().ListTransactions(ctx, wallet.ID, limit)
}

// Credit adds funds to an ally's wallet with a matching ledger entry, both
// written in one db transaction. Called by booking settlement; amount must
// be positive. Debits go through MarkPaid only.
func (s *Service) Credit(ctx context.Context, allyID uuid.UUID, amountCents int64, currency string, txType string, note string) (models.Wallet, error) {
	if amountCents <= 0 {
		return models.Wallet{}, fmt.Errorf("credit amount must be positive: %w", apperrors.ErrValidation)
	}

	switch txType {
	case "":
		txType = models.TransactionTypeBookingPayout
	case models.TransactionTypeBookingPayout, models.TransactionTypeAdjustment:
	default:
		return models.Wallet{}, fmt.Errorf("%q is not a credit type: %w", txType, apperrors.ErrValidation)
	}

	var wallet models.Wallet
	err := s.storage.InTx(ctx, func(tx repository.Storage) error {
		w, err := tx.Wallet().GetOrCreateWallet(ctx, allyID)
		if err != nil {
			return err
		}

		wallet, err = tx.Wallet().ApplyTransaction(ctx, models.WalletTransaction{
			WalletID:    w.ID,
			Type:        txType,
			AmountCents: amountCents,
			Currency:    currency,
			Note:        note,
		})
		return err
	})
	if err != nil {
		return models.Wallet{}, err
	}

	return wallet, nil
}

// RequestWithdrawal creates a PENDING withdrawal for the actor's ally profile.
//
// Preconditions: ALIADO role, approved KYC, complete bank profile, amount at
// least models.MinWithdrawalCents and not above the currently available
// balance. The balance check here is informational only; nothing is debited
// or held until the request is paid.
func (s *Service) RequestWithdrawal(ctx context.Context, actor models.Actor, amountCents int64, currency string) (models.WithdrawalRequest, error) {
	var req models.WithdrawalRequest

	allyID, err := requireAlly(actor)
	if err != nil {
		return req, err
	}

	ally, err := s.storage.Ally().GetAlly(ctx, allyID)
	if err != nil {
		return req, err
	}

	switch {
	case ally.KYCStatus != models.KYCStatusApproved:
		return req, fmt.Errorf("KYC is not approved: %w", apperrors.ErrValidation)
	case !ally.BankProfileComplete():
		return req, fmt.Errorf("bank profile is incomplete: %w", apperrors.ErrValidation)
	case amountCents < models.MinWithdrawalCents:
		return req, fmt.Errorf("amount is below the %d cents minimum: %w", models.MinWithdrawalCents, apperrors.ErrValidation)
	}

	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return req, fmt.Errorf("currency is required: %w", apperrors.ErrValidation)
	}

	wallet, err := s.storage.Wallet().GetOrCreateWallet(ctx, allyID)
	if err != nil {
		return req, err
	}
	if amountCents > wallet.BalanceAvailableCents {
		return req, fmt.Errorf("requested %d with %d available: %w", amountCents, wallet.BalanceAvailableCents, apperrors.ErrInsufficientBalance)
	}

	req, err = s.storage.Withdrawal().CreateWithdrawal(ctx, repository.CreateWithdrawalParams{
		AllyID:      allyID,
		AmountCents: amountCents,
		Currency:    currency,
		Bank: models.BankDetailsSnapshot{
			BankName:          ally.BankName,
			AccountMasked:     models.MaskAccountNumber(ally.BankAccountNumber),
			AccountHolderName: ally.AccountHolderName,
			HolderID:          ally.HolderID,
		},
	})
	if err != nil {
		return req, fmt.Errorf("can't create withdrawal request. Err: %w", err)
	}

	s.notifyFinance(ctx, req)
	s.audit(ctx, actor.ID, models.AuditActionWithdrawalRequested, req.ID, map[string]any{
		"amount_cents": req.AmountCents,
		"currency":     req.Currency,
	})

	return req, nil
}

// ListOwnWithdrawals returns the actor's withdrawal requests, newest first.
func (s *Service) ListOwnWithdrawals(ctx context.Context, actor models.Actor) ([]models.WithdrawalRequest, error) {
	allyID, err := requireAlly(actor)
	if err != nil {
		return nil, err
	}

	return s.storage.Withdrawal().ListWithdrawalsByAlly(ctx, allyID)
}

// ListWithdrawals returns requests in the given status for staff review.
func (s *Service) ListWithdrawals(ctx context.Context, actor models.Actor, status string, limit int) ([]models.WithdrawalRequest, error) {
	if !actor.IsStaff() {
		return nil, fmt.Errorf("staff role required: %w", apperrors.ErrAuthorization)
	}
	if limit <= 0 {
		limit = 100
	}

	return s.storage.Withdrawal().ListWithdrawalsByStatus(ctx, status, limit)
}

// Approve moves a PENDING request to APPROVED and records the reviewer.
func (s *Service) Approve(ctx context.Context, actor models.Actor, id uuid.UUID) (models.WithdrawalRequest, error) {
	if !actor.IsStaff() {
		return models.WithdrawalRequest{}, fmt.Errorf("staff role required: %w", apperrors.ErrAuthorization)
	}

	req, err := s.storage.Withdrawal().Approve(ctx, id, actor.ID, time.Now())
	if err != nil {
		return req, err
	}

	s.audit(ctx, actor.ID, models.AuditActionWithdrawalApproved, req.ID, nil)
	return req, nil
}

// Reject moves a PENDING or APPROVED request to REJECTED with a reason.
func (s *Service) Reject(ctx context.Context, actor models.Actor, id uuid.UUID, reason string) (models.WithdrawalRequest, error) {
	var req models.WithdrawalRequest

	if !actor.IsStaff() {
		return req, fmt.Errorf("staff role required: %w", apperrors.ErrAuthorization)
	}

	reason = strings.TrimSpace(reason)
	if n := utf8.RuneCountInString(reason); n < 3 || n > 1000 {
		return req, fmt.Errorf("rejection reason must be 3 to 1000 characters: %w", apperrors.ErrValidation)
	}

	req, err := s.storage.Withdrawal().Reject(ctx, id, actor.ID, time.Now(), reason)
	if err != nil {
		return req, err
	}

	s.audit(ctx, actor.ID, models.AuditActionWithdrawalRejected, req.ID, map[string]any{"reason": reason})
	return req, nil
}

type MarkPaidOptions struct {
	PaymentReference *string
	ReceiptURL       *string
}

// MarkPaid settles an APPROVED request in a single db transaction: the
// wallet row is locked, the balance re-checked, debited, exactly one ledger
// entry inserted and the request transitioned to PAID. Any failure rolls the
// whole transaction back, leaving the request APPROVED and the wallet
// untouched.
func (s *Service) MarkPaid(ctx context.Context, actor models.Actor, id uuid.UUID, opts MarkPaidOptions) (models.WithdrawalRequest, error) {
	var req models.WithdrawalRequest

	if !actor.IsStaff() {
		return req, fmt.Errorf("staff role required: %w", apperrors.ErrAuthorization)
	}

	// Cheap state check before opening the transaction
	current, err := s.storage.Withdrawal().GetWithdrawal(ctx, id, false)
	if err != nil {
		return req, err
	}
	if current.Status != models.WithdrawalStatusApproved {
		return req, fmt.Errorf("request is %s: %w", current.Status, apperrors.ErrStateConflict)
	}

	err = s.storage.InTx(ctx, func(tx repository.Storage) error {
		w, err := tx.Withdrawal().GetWithdrawal(ctx, id, true)
		if err != nil {
			return err
		}
		if w.Status != models.WithdrawalStatusApproved {
			return fmt.Errorf("request is %s: %w", w.Status, apperrors.ErrStateConflict)
		}

		wallet, err := tx.Wallet().GetWallet(ctx, w.AllyID, true)
		if err != nil {
			return err
		}
		if wallet.BalanceAvailableCents < w.AmountCents {
			return fmt.Errorf("wallet has %d of %d required: %w", wallet.BalanceAvailableCents, w.AmountCents, apperrors.ErrInsufficientBalance)
		}

		_, err = tx.Wallet().ApplyTransaction(ctx, models.WalletTransaction{
			WalletID:      wallet.ID,
			Type:          models.TransactionTypeWithdrawal,
			AmountCents:   -w.AmountCents,
			Currency:      w.Currency,
			ReferenceType: models.ReferenceTypeWithdrawal,
			ReferenceID:   w.ID,
			Note:          "withdrawal payout",
		})
		if err != nil {
			return err
		}

		req, err = tx.Withdrawal().MarkPaid(ctx, id, repository.MarkPaidParams{
			ReviewerID:       actor.ID,
			ReviewedAt:       time.Now(),
			PaymentReference: opts.PaymentReference,
			ReceiptURL:       opts.ReceiptURL,
		})
		return err
	})
	if err != nil {
		return models.WithdrawalRequest{}, err
	}

	s.audit(ctx, actor.ID, models.AuditActionWithdrawalPaid, req.ID, map[string]any{
		"amount_cents": req.AmountCents,
		"currency":     req.Currency,
	})

	return req, nil
}

func requireAlly(actor models.Actor) (uuid.UUID, error) {
	if !actor.HasRole(models.RoleAliado) || actor.AllyID == nil {
		return uuid.Nil, fmt.Errorf("ally role required: %w", apperrors.ErrAuthorization)
	}
	return *actor.AllyID, nil
}

func (s *Service) notifyFinance(ctx context.Context, req models.WithdrawalRequest) {
	if s.notifier == nil || s.cfg.FinanceEmail == "" {
		return
	}

	subject := "New withdrawal request"
	text := fmt.Sprintf(
		"Withdrawal %s: %d %s cents requested by ally %s (account %s).",
		req.ID, req.AmountCents, req.Currency, req.AllyID, req.Bank.AccountMasked,
	)

	if err := s.notifier.Send(ctx, s.cfg.FinanceEmail, subject, text); err != nil {
		s.logger.Warn("Failed to notify finance about withdrawal", "error", err, "withdrawal_id", req.ID)
	}
}

func (s *Service) audit(ctx context.Context, actorID uuid.UUID, action string, entityID uuid.UUID, metadata map[string]any) {
	err := s.storage.Audit().Record(ctx, models.AuditEntry{
		ActorUserID: actorID,
		Action:      action,
		EntityType:  "WITHDRAWAL_REQUEST",
		EntityID:    entityID,
		Metadata:    metadata,
	})
	if err != nil {
		s.logger.Error("Failed to record audit entry", "error", err, "action", action, "entity_id", entityID)
	}
}
