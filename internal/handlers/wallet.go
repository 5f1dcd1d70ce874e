package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/alamarhq/alamar/internal/apperrors"
	"github.com/alamarhq/alamar/internal/handlers/actorctx"
	"github.com/alamarhq/alamar/internal/handlers/render"
	"github.com/alamarhq/alamar/internal/logger"
	"github.com/alamarhq/alamar/internal/models"
)

const recentTransactionsLimit = 50

type transactionResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type withdrawalResponse struct {
	ID               string     `json:"id"`
	AmountCents      int64      `json:"amount_cents"`
	Currency         string     `json:"currency"`
	Status           string     `json:"status"`
	BankName         string     `json:"bank_name"`
	AccountMasked    string     `json:"bank_account_masked"`
	HolderName       string     `json:"account_holder_name"`
	PaymentReference *string    `json:"payment_reference,omitempty"`
	ReceiptURL       *string    `json:"receipt_url,omitempty"`
	RejectionReason  *string    `json:"rejection_reason,omitempty"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func toWithdrawalResponse(w models.WithdrawalRequest) withdrawalResponse {
	return withdrawalResponse{
		ID:               w.ID.String(),
		AmountCents:      w.AmountCents,
		Currency:         w.Currency,
		Status:           w.Status,
		BankName:         w.Bank.BankName,
		AccountMasked:    w.Bank.AccountMasked,
		HolderName:       w.Bank.AccountHolderName,
		PaymentReference: w.PaymentReference,
		ReceiptURL:       w.ReceiptURL,
		RejectionReason:  w.RejectionReason,
		ReviewedAt:       w.ReviewedAt,
		CreatedAt:        w.CreatedAt,
	}
}

func handleGetWallet(walletService walletService, l logger.Logger) http.Handler {
	type response struct {
		BalanceAvailableCents int64                 `json:"balance_available_cents"`
		BalancePendingCents   int64                 `json:"balance_pending_cents"`
		Transactions          []transactionResponse `json:"transactions"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		wallet, err := walletService.GetWallet(r.Context(), actor)
		if err != nil {
			renderWalletError(w, l, err, "Failed to get wallet")
			return
		}

		transactions, err := walletService.ListTransactions(r.Context(), actor, recentTransactionsLimit)
		if err != nil {
			renderWalletError(w, l, err, "Failed to list transactions")
			return
		}

		resp := response{
			BalanceAvailableCents: wallet.BalanceAvailableCents,
			BalancePendingCents:   wallet.BalancePendingCents,
			Transactions:          make([]transactionResponse, 0, len(transactions)),
		}
		for _, t := range transactions {
			resp.Transactions = append(resp.Transactions, transactionResponse{
				ID:          t.ID.String(),
				Type:        t.Type,
				AmountCents: t.AmountCents,
				Currency:    t.Currency,
				Note:        t.Note,
				CreatedAt:   t.CreatedAt,
			})
		}

		render.JSON(w, resp)
	})
}

func handleRequestWithdrawal(walletService walletService, l logger.Logger) http.Handler {
	type request struct {
		AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
		Currency    string `json:"currency" validate:"required,currency"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		withdrawal, err := walletService.RequestWithdrawal(r.Context(), actor, req.AmountCents, req.Currency)
		if err != nil {
			renderWalletError(w, l, err, "Failed to create withdrawal request")
			return
		}

		render.JSONWithStatus(w, toWithdrawalResponse(withdrawal), http.StatusCreated)
	})
}

func handleListOwnWithdrawals(walletService walletService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		withdrawals, err := walletService.ListOwnWithdrawals(r.Context(), actor)
		if err != nil {
			renderWalletError(w, l, err, "Failed to list withdrawals")
			return
		}

		resp := make([]withdrawalResponse, 0, len(withdrawals))
		for _, withdrawal := range withdrawals {
			resp = append(resp, toWithdrawalResponse(withdrawal))
		}

		render.JSON(w, resp)
	})
}

// renderWalletError maps the ledger failure kinds to HTTP statuses. Internal
// errors are logged and never rendered raw.
func renderWalletError(w http.ResponseWriter, l logger.Logger, err error, logMsg string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		render.ServiceError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, apperrors.ErrInsufficientBalance):
		render.ServiceError(w, "Insufficient balance", http.StatusPaymentRequired)
	case errors.Is(err, apperrors.ErrAuthorization):
		render.ServiceError(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, apperrors.ErrStateConflict):
		render.ServiceError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, apperrors.ErrWithdrawalNotFound), errors.Is(err, apperrors.ErrAllyNotFound), errors.Is(err, apperrors.ErrWalletNotFound):
		render.ServiceError(w, "Not found", http.StatusNotFound)
	default:
		l.Error(logMsg, "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
