package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/alamarhq/alamar/internal/blobstore"
	"github.com/alamarhq/alamar/internal/handlers/actorctx"
	"github.com/alamarhq/alamar/internal/handlers/render"
	"github.com/alamarhq/alamar/internal/logger"
	"github.com/alamarhq/alamar/internal/models"
	"github.com/alamarhq/alamar/internal/service/wallet"
)

const maxReceiptBytes = 10 << 20

func handleListWithdrawals(walletService walletService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		status := strings.ToUpper(r.URL.Query().Get("status"))
		if status == "" {
			status = models.WithdrawalStatusPending
		}

		withdrawals, err := walletService.ListWithdrawals(r.Context(), actor, status, 0)
		if err != nil {
			renderWalletError(w, l, err, "Failed to list withdrawals for review")
			return
		}

		resp := make([]withdrawalResponse, 0, len(withdrawals))
		for _, withdrawal := range withdrawals {
			resp = append(resp, toWithdrawalResponse(withdrawal))
		}

		render.JSON(w, resp)
	})
}

func handleApproveWithdrawal(walletService walletService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, id, ok := actorAndID(w, r)
		if !ok {
			return
		}

		withdrawal, err := walletService.Approve(r.Context(), actor, id)
		if err != nil {
			renderWalletError(w, l, err, "Failed to approve withdrawal")
			return
		}

		render.JSON(w, toWithdrawalResponse(withdrawal))
	})
}

func handleRejectWithdrawal(walletService walletService, l logger.Logger) http.Handler {
	type request struct {
		Reason string `json:"reason" validate:"required,min=3,max=1000"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, id, ok := actorAndID(w, r)
		if !ok {
			return
		}

		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		withdrawal, err := walletService.Reject(r.Context(), actor, id, req.Reason)
		if err != nil {
			renderWalletError(w, l, err, "Failed to reject withdrawal")
			return
		}

		render.JSON(w, toWithdrawalResponse(withdrawal))
	})
}

// handlePayWithdrawal settles an approved request. The body is multipart:
// an optional payment_reference field and an optional receipt file, which is
// uploaded to the blob store before the ledger transaction starts. Upload
// failures surface as errors; nothing is debited when the upload fails.
func handlePayWithdrawal(walletService walletService, receipts blobstore.Store, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, id, ok := actorAndID(w, r)
		if !ok {
			return
		}

		opts := wallet.MarkPaidOptions{}
		uploadedPath := ""

		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if strings.HasPrefix(mediaType, "multipart/") {
			if err := r.ParseMultipartForm(maxReceiptBytes); err != nil {
				render.ServiceError(w, "Failed to parse form", http.StatusBadRequest)
				return
			}

			if ref := strings.TrimSpace(r.FormValue("payment_reference")); ref != "" {
				opts.PaymentReference = &ref
			}

			file, header, err := r.FormFile("receipt")
			switch err {
			case nil:
				defer file.Close() // nolint:errcheck

				result, err := receipts.Put(r.Context(), receiptPath(id, header.Filename), file)
				if err != nil {
					l.Error("Failed to upload receipt", "error", err, "withdrawal_id", id)
					render.ServiceError(w, "Receipt upload failed", http.StatusBadGateway)
					return
				}
				opts.ReceiptURL = &result.URL
				uploadedPath = result.Pathname
			case http.ErrMissingFile:
				// receipt is optional
			default:
				render.ServiceError(w, "Failed to read receipt file", http.StatusBadRequest)
				return
			}
		}

		withdrawal, err := walletService.MarkPaid(r.Context(), actor, id, opts)
		if err != nil {
			// The receipt was stored but the request was not paid; drop the blob
			if uploadedPath != "" {
				if delErr := receipts.Delete(r.Context(), uploadedPath); delErr != nil {
					l.Warn("Failed to delete receipt of unpaid withdrawal", "error", delErr, "pathname", uploadedPath)
				}
			}
			renderWalletError(w, l, err, "Failed to mark withdrawal paid")
			return
		}

		render.JSON(w, toWithdrawalResponse(withdrawal))
	})
}

func actorAndID(w http.ResponseWriter, r *http.Request) (models.Actor, uuid.UUID, bool) {
	actor, ok := actorctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return actor, uuid.Nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Invalid withdrawal id", http.StatusBadRequest)
		return actor, uuid.Nil, false
	}

	return actor, id, true
}

func receiptPath(id uuid.UUID, filename string) string {
	ext := ""
	if dot := strings.LastIndex(filename, "."); dot >= 0 {
		ext = filename[dot:]
	}
	return fmt.Sprintf("receipts/%s%s", id, ext)
}
