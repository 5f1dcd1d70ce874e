package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/alamarhq/alamar/internal/blobstore"
	"github.com/alamarhq/alamar/internal/handlers/middleware"
	"github.com/alamarhq/alamar/internal/logger"
	"github.com/alamarhq/alamar/internal/models"
	"github.com/alamarhq/alamar/internal/service/pricing"
	"github.com/alamarhq/alamar/internal/service/wallet"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

type tokenParser interface {
	Parse(tokenString string) (models.Actor, error)
}

func NewRouter(
	pricingService pricingService,
	walletService walletService,
	receipts blobstore.Store,
	parser tokenParser,
	logger logger.Logger,
) http.Handler {
	withAuth := middleware.AuthMiddleware(parser)
	asAlly := middleware.RequireRoles(models.RoleAliado)
	asStaff := middleware.RequireRoles(models.RoleAdmin, models.RoleRoot)

	ally := http.NewServeMux()
	ally.Handle("GET /wallet", handleGetWallet(walletService, logger))
	ally.Handle("POST /withdrawals", handleRequestWithdrawal(walletService, logger))
	ally.Handle("GET /withdrawals", handleListOwnWithdrawals(walletService, logger))

	staff := http.NewServeMux()
	staff.Handle("GET /withdrawals", handleListWithdrawals(walletService, logger))
	staff.Handle("POST /withdrawals/{id}/approve", handleApproveWithdrawal(walletService, logger))
	staff.Handle("POST /withdrawals/{id}/reject", handleRejectWithdrawal(walletService, logger))
	staff.Handle("POST /withdrawals/{id}/pay", handlePayWithdrawal(walletService, receipts, logger))

	root := http.NewServeMux()
	root.Handle("POST /api/quotes", handleQuote(pricingService, logger))
	root.Handle("/api/ally/", http.StripPrefix("/api/ally", chain(ally, withAuth, asAlly)))
	root.Handle("/api/staff/", http.StripPrefix("/api/staff", chain(staff, withAuth, asStaff)))

	return chain(root,
		middleware.LoggerMiddleware(logger),
	)
}

func quoteParams(priceCents int64, currency string, checkIn, checkOut time.Time, guests int) pricing.QuoteParams {
	return pricing.QuoteParams{
		PricePerNightCents: priceCents,
		Currency:           currency,
		CheckIn:            checkIn,
		CheckOut:           checkOut,
		Guests:             guests,
	}
}

type pricingService interface {
	Quote(ctx context.Context, params pricing.QuoteParams) (models.Quote, error)
}

type walletService interface {
	GetWallet(ctx context.Context, actor models.Actor) (models.Wallet, error)
	ListTransactions(ctx context.Context, actor models.Actor, limit int) ([]models.WalletTransaction, error)

	RequestWithdrawal(ctx context.Context, actor models.Actor, amountCents int64, currency string) (models.WithdrawalRequest, error)
	ListOwnWithdrawals(ctx context.Context, actor models.Actor) ([]models.WithdrawalRequest, error)

	ListWithdrawals(ctx context.Context, actor models.Actor, status string, limit int) ([]models.WithdrawalRequest, error)
	Approve(ctx context.Context, actor models.Actor, id uuid.UUID) (models.WithdrawalRequest, error)
	Reject(ctx context.Context, actor models.Actor, id uuid.UUID, reason string) (models.WithdrawalRequest, error)
	MarkPaid(ctx context.Context, actor models.Actor, id uuid.UUID, opts wallet.MarkPaidOptions) (models.WithdrawalRequest, error)
}
