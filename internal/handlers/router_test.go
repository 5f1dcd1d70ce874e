package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/alamarhq/alamar/internal/apperrors"
	"github.com/alamarhq/alamar/internal/blobstore"
	"github.com/alamarhq/alamar/internal/logger"
	"github.com/alamarhq/alamar/internal/models"
	"github.com/alamarhq/alamar/internal/service/auth"
	"github.com/alamarhq/alamar/internal/service/pricing"
	"github.com/alamarhq/alamar/internal/service/wallet"
)

type stubPricing struct {
	quote     models.Quote
	err       error
	gotParams pricing.QuoteParams
}

func (s *stubPricing) Quote(ctx context.Context, params pricing.QuoteParams) (models.Quote, error) {
	s.gotParams = params
	return s.quote, s.err
}

// stubWallet routes every interface method through an optional func field;
// unset methods return zero values
type stubWallet struct {
	getWallet          func(actor models.Actor) (models.Wallet, error)
	listTransactions   func(actor models.Actor, limit int) ([]models.WalletTransaction, error)
	requestWithdrawal  func(actor models.Actor, amountCents int64, currency string) (models.WithdrawalRequest, error)
	listOwnWithdrawals func(actor models.Actor) ([]models.WithdrawalRequest, error)
	listWithdrawals    func(actor models.Actor, status string, limit int) ([]models.WithdrawalRequest, error)
	approve            func(actor models.Actor, id uuid.UUID) (models.WithdrawalRequest, error)
	reject             func(actor models.Actor, id uuid.UUID, reason string) (models.WithdrawalRequest, error)
	markPaid           func(actor models.Actor, id uuid.UUID, opts wallet.MarkPaidOptions) (models.WithdrawalRequest, error)
}

func (s *stubWallet) GetWallet(_ context.Context, actor models.Actor) (models.Wallet, error) {
	if s.getWallet == nil {
		return models.Wallet{}, nil
	}
	return s.getWallet(actor)
}

func (s *stubWallet) ListTransactions(_ context.Context, actor models.Actor, limit int) ([]models.WalletTransaction, error) {
	if s.listTransactions == nil {
		return nil, nil
	}
	return s.listTransactions(actor, limit)
}

func (s *stubWallet) RequestWithdrawal(_ context.Context, actor models.Actor, amountCents int64, currency string) (models.WithdrawalRequest, error) {
	if s.requestWithdrawal == nil {
		return models.WithdrawalRequest{}, nil
	}
	return s.requestWithdrawal(actor, amountCents, currency)
}

func (s *stubWallet) ListOwnWithdrawals(_ context.Context, actor models.Actor) ([]models.WithdrawalRequest, error) {
	if s.listOwnWithdrawals == nil {
		return nil, nil
	}
	return s.listOwnWithdrawals(actor)
}

func (s *stubWallet) ListWithdrawals(_ context.Context, actor models.Actor, status string, limit int) ([]models.WithdrawalRequest, error) {
	if s.listWithdrawals == nil {
		return nil, nil
	}
	return s.listWithdrawals(actor, status, limit)
}

func (s *stubWallet) Approve(_ context.Context, actor models.Actor, id uuid.UUID) (models.WithdrawalRequest, error) {
	if s.approve == nil {
		return models.WithdrawalRequest{}, nil
	}
	return s.approve(actor, id)
}

func (s *stubWallet) Reject(_ context.Context, actor models.Actor, id uuid.UUID, reason string) (models.WithdrawalRequest, error) {
	if s.reject == nil {
		return models.WithdrawalRequest{}, nil
	}
	return s.reject(actor, id, reason)
}

func (s *stubWallet) MarkPaid(_ context.Context, actor models.Actor, id uuid.UUID, opts wallet.MarkPaidOptions) (models.WithdrawalRequest, error) {
	if s.markPaid == nil {
		return models.WithdrawalRequest{}, nil
	}
	return s.markPaid(actor, id, opts)
}

type stubBlobStore struct {
	err     error
	gotPath string
	deleted []string
}

func (s *stubBlobStore) Put(_ context.Context, path string, r io.Reader) (blobstore.PutResult, error) {
	s.gotPath = path
	if s.err != nil {
		return blobstore.PutResult{}, s.err
	}
	return blobstore.PutResult{URL: "https://blobs.test/" + path, Pathname: path}, nil
}

func (s *stubBlobStore) Delete(_ context.Context, pathname string) error {
	s.deleted = append(s.deleted, pathname)
	return s.err
}

type testEnv struct {
	srv     *httptest.Server
	tokens  *auth.TokenManager
	pricing *stubPricing
	wallet  *stubWallet
	blobs   *stubBlobStore
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	tokens, err := auth.NewTokenManager("test-secret")
	require.NoError(t, err)

	env := testEnv{
		tokens:  tokens,
		pricing: &stubPricing{},
		wallet:  &stubWallet{},
		blobs:   &stubBlobStore{},
	}

	env.srv = httptest.NewServer(NewRouter(env.pricing, env.wallet, env.blobs, tokens, logger.NewNoOpLogger()))
	t.Cleanup(env.srv.Close)

	return env
}

func (e testEnv) bearer(t *testing.T, actor models.Actor) string {
	t.Helper()

	token, err := e.tokens.Issue(actor, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func (e testEnv) do(t *testing.T, method, path, authHeader, body string) (*http.Response, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	require.NoError(t, err)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	return resp, string(respBody)
}

func allyActor() models.Actor {
	allyID := uuid.New()
	return models.Actor{ID: uuid.New(), Roles: []string{models.RoleAliado}, AllyID: &allyID}
}

func adminActor() models.Actor {
	return models.Actor{ID: uuid.New(), Roles: []string{models.RoleAdmin}}
}

func Test_QuoteHandler(t *testing.T) {
	t.Parallel()

	t.Run("quote ok", func(t *testing.T) {
		env := newTestEnv(t)
		env.pricing.quote = models.Quote{
			Nights:            3,
			Currency:          "USD",
			SubtotalCents:     36000,
			PlatformFeeCents:  4320,
			AllyEarningsCents: 31680,
			TotalCents:        36000,
			FeeRate:           decimal.RequireFromString("0.12"),
			Snapshot: models.QuoteSnapshot{
				CheckIn:            "2026-03-01T15:00:00Z",
				CheckOut:           "2026-03-04T11:00:00Z",
				Guests:             2,
				Nights:             3,
				Currency:           "USD",
				PricePerNightCents: 12000,
				FeeRate:            decimal.RequireFromString("0.12"),
				SubtotalCents:      36000,
				PlatformFeeCents:   4320,
				AllyEarningsCents:  31680,
				TotalCents:         36000,
			},
		}

		data := `{
			"price_per_night_cents": 12000,
			"currency": "USD",
			"check_in": "2026-03-01T15:00:00Z",
			"check_out": "2026-03-04T11:00:00Z",
			"guests": 2
		}`
		resp, body := env.do(t, http.MethodPost, "/api/quotes", "", data)

		require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
		require.JSONEq(t, `
			{
				"nights": 3,
				"currency": "USD",
				"subtotal_cents": 36000,
				"platform_fee_cents": 4320,
				"ally_earnings_cents": 31680,
				"total_cents": 36000,
				"snapshot": {
					"check_in": "2026-03-01T15:00:00Z",
					"check_out": "2026-03-04T11:00:00Z",
					"guests": 2,
					"nights": 3,
					"currency": "USD",
					"price_per_night_cents": 12000,
					"fee_rate": "0.12",
					"subtotal_cents": 36000,
					"platform_fee_cents": 4320,
					"ally_earnings_cents": 31680,
					"total_cents": 36000
				}
			}`, body)

		require.EqualValues(t, 12000, env.pricing.gotParams.PricePerNightCents)
		require.Equal(t, 2, env.pricing.gotParams.Guests)
	})

	t.Run("no auth required", func(t *testing.T) {
		env := newTestEnv(t)

		data := `{"price_per_night_cents": 12000, "currency": "USD", "check_in": "2026-03-01T15:00:00Z", "check_out": "2026-03-02T11:00:00Z", "guests": 1}`
		resp, _ := env.do(t, http.MethodPost, "/api/quotes", "", data)

		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("zero nights is 422", func(t *testing.T) {
		env := newTestEnv(t)
		env.pricing.err = fmt.Errorf("checkout before checkin: %w", apperrors.ErrNoNights)

		data := `{"price_per_night_cents": 12000, "currency": "USD", "check_in": "2026-03-04T15:00:00Z", "check_out": "2026-03-01T11:00:00Z", "guests": 1}`
		resp, body := env.do(t, http.MethodPost, "/api/quotes", "", data)

		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		require.JSONEq(t, `
			{
				"error": "service_error",
				"message": "Check-out must be after check-in"
			}`, body)
	})

	t.Run("field validation is 400", func(t *testing.T) {
		env := newTestEnv(t)

		data := `{"price_per_night_cents": 12000, "currency": "us dollars", "check_in": "2026-03-01T15:00:00Z", "check_out": "2026-03-02T11:00:00Z", "guests": 1}`
		resp, body := env.do(t, http.MethodPost, "/api/quotes", "", data)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Contains(t, body, "validation_failed")
		require.Contains(t, body, "currency")
	})
}

func Test_AllyWalletHandlers(t *testing.T) {
	t.Parallel()

	t.Run("get wallet ok", func(t *testing.T) {
		env := newTestEnv(t)
		env.wallet.getWallet = func(actor models.Actor) (models.Wallet, error) {
			return models.Wallet{BalanceAvailableCents: 50000}, nil
		}

		resp, body := env.do(t, http.MethodGet, "/api/ally/wallet", env.bearer(t, allyActor()), "")

		require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
		require.JSONEq(t, `
			{
				"balance_available_cents": 50000,
				"balance_pending_cents": 0,
				"transactions": []
			}`, body)
	})

	t.Run("no token is 401", func(t *testing.T) {
		env := newTestEnv(t)

		resp, _ := env.do(t, http.MethodGet, "/api/ally/wallet", "", "")

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("staff token on ally surface is 403", func(t *testing.T) {
		env := newTestEnv(t)

		resp, _ := env.do(t, http.MethodGet, "/api/ally/wallet", env.bearer(t, adminActor()), "")

		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("request withdrawal created", func(t *testing.T) {
		env := newTestEnv(t)
		id := uuid.New()
		env.wallet.requestWithdrawal = func(actor models.Actor, amountCents int64, currency string) (models.WithdrawalRequest, error) {
			return models.WithdrawalRequest{
				ID:          id,
				AmountCents: amountCents,
				Currency:    currency,
				Status:      models.WithdrawalStatusPending,
				Bank: models.BankDetailsSnapshot{
					BankName:      "Banco Central",
					AccountMasked: "********6789",
				},
			}, nil
		}

		data := `{"amount_cents": 15000, "currency": "USD"}`
		resp, body := env.do(t, http.MethodPost, "/api/ally/withdrawals", env.bearer(t, allyActor()), data)

		require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)
		require.Contains(t, body, id.String())
		require.Contains(t, body, `"status":"PENDING"`)
		require.Contains(t, body, `"bank_account_masked":"********6789"`)
	})

	t.Run("insufficient balance is 402", func(t *testing.T) {
		env := newTestEnv(t)
		env.wallet.requestWithdrawal = func(actor models.Actor, amountCents int64, currency string) (models.WithdrawalRequest, error) {
			return models.WithdrawalRequest{}, fmt.Errorf("requested 15000 with 100 available: %w", apperrors.ErrInsufficientBalance)
		}

		data := `{"amount_cents": 15000, "currency": "USD"}`
		resp, body := env.do(t, http.MethodPost, "/api/ally/withdrawals", env.bearer(t, allyActor()), data)

		require.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
		require.JSONEq(t, `
			{
				"error": "service_error",
				"message": "Insufficient balance"
			}`, body)
	})

	t.Run("precondition failure is 422", func(t *testing.T) {
		env := newTestEnv(t)
		env.wallet.requestWithdrawal = func(actor models.Actor, amountCents int64, currency string) (models.WithdrawalRequest, error) {
			return models.WithdrawalRequest{}, fmt.Errorf("KYC is not approved: %w", apperrors.ErrValidation)
		}

		data := `{"amount_cents": 15000, "currency": "USD"}`
		resp, _ := env.do(t, http.MethodPost, "/api/ally/withdrawals", env.bearer(t, allyActor()), data)

		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func Test_StaffWithdrawalHandlers(t *testing.T) {
	t.Parallel()

	t.Run("list defaults to pending", func(t *testing.T) {
		env := newTestEnv(t)
		var gotStatus string
		env.wallet.listWithdrawals = func(actor models.Actor, status string, limit int) ([]models.WithdrawalRequest, error) {
			gotStatus = status
			return nil, nil
		}

		resp, _ := env.do(t, http.MethodGet, "/api/staff/withdrawals", env.bearer(t, adminActor()), "")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, models.WithdrawalStatusPending, gotStatus)
	})

	t.Run("list passes status filter uppercased", func(t *testing.T) {
		env := newTestEnv(t)
		var gotStatus string
		env.wallet.listWithdrawals = func(actor models.Actor, status string, limit int) ([]models.WithdrawalRequest, error) {
			gotStatus = status
			return nil, nil
		}

		resp, _ := env.do(t, http.MethodGet, "/api/staff/withdrawals?status=approved", env.bearer(t, adminActor()), "")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, models.WithdrawalStatusApproved, gotStatus)
	})

	t.Run("ally token on staff surface is 403", func(t *testing.T) {
		env := newTestEnv(t)

		resp, _ := env.do(t, http.MethodGet, "/api/staff/withdrawals", env.bearer(t, allyActor()), "")

		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("approve ok", func(t *testing.T) {
		env := newTestEnv(t)
		id := uuid.New()
		env.wallet.approve = func(actor models.Actor, gotID uuid.UUID) (models.WithdrawalRequest, error) {
			require.Equal(t, id, gotID)
			return models.WithdrawalRequest{ID: gotID, Status: models.WithdrawalStatusApproved}, nil
		}

		resp, body := env.do(t, http.MethodPost, "/api/staff/withdrawals/"+id.String()+"/approve", env.bearer(t, adminActor()), "")

		require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
		require.Contains(t, body, `"status":"APPROVED"`)
	})

	t.Run("approve conflict is 409", func(t *testing.T) {
		env := newTestEnv(t)
		env.wallet.approve = func(actor models.Actor, id uuid.UUID) (models.WithdrawalRequest, error) {
			return models.WithdrawalRequest{}, fmt.Errorf("request is PAID: %w", apperrors.ErrStateConflict)
		}

		resp, _ := env.do(t, http.MethodPost, "/api/staff/withdrawals/"+uuid.NewString()+"/approve", env.bearer(t, adminActor()), "")

		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("approve unknown id is 404", func(t *testing.T) {
		env := newTestEnv(t)
		env.wallet.approve = func(actor models.Actor, id uuid.UUID) (models.WithdrawalRequest, error) {
			return models.WithdrawalRequest{}, apperrors.ErrWithdrawalNotFound
		}

		resp, _ := env.do(t, http.MethodPost, "/api/staff/withdrawals/"+uuid.NewString()+"/approve", env.bearer(t, adminActor()), "")

		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("approve bad id is 400", func(t *testing.T) {
		env := newTestEnv(t)

		resp, _ := env.do(t, http.MethodPost, "/api/staff/withdrawals/not-a-uuid/approve", env.bearer(t, adminActor()), "")

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		env := newTestEnv(t)

		data := `{"reason": "no"}`
		resp, body := env.do(t, http.MethodPost, "/api/staff/withdrawals/"+uuid.NewString()+"/reject", env.bearer(t, adminActor()), data)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Contains(t, body, "validation_failed")
	})

	t.Run("reject ok", func(t *testing.T) {
		env := newTestEnv(t)
		env.wallet.reject = func(actor models.Actor, id uuid.UUID, reason string) (models.WithdrawalRequest, error) {
			rejected := models.WithdrawalRequest{ID: id, Status: models.WithdrawalStatusRejected}
			rejected.RejectionReason = &reason
			return rejected, nil
		}

		data := `{"reason": "bank details mismatch"}`
		resp, body := env.do(t, http.MethodPost, "/api/staff/withdrawals/"+uuid.NewString()+"/reject", env.bearer(t, adminActor()), data)

		require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
		require.Contains(t, body, `"rejection_reason":"bank details mismatch"`)
	})
}

func Test_PayWithdrawalHandler(t *testing.T) {
	t.Parallel()

	payURL := func(id uuid.UUID) string {
		return "/api/staff/withdrawals/" + id.String() + "/pay"
	}

	multipartBody := func(t *testing.T, reference string, receipt []byte) (string, io.Reader) {
		t.Helper()

		buf := &bytes.Buffer{}
		mw := multipart.NewWriter(buf)
		if reference != "" {
			require.NoError(t, mw.WriteField("payment_reference", reference))
		}
		if receipt != nil {
			fw, err := mw.CreateFormFile("receipt", "receipt.pdf")
			require.NoError(t, err)
			_, err = fw.Write(receipt)
			require.NoError(t, err)
		}
		require.NoError(t, mw.Close())

		return mw.FormDataContentType(), buf
	}

	doMultipart := func(t *testing.T, env testEnv, id uuid.UUID, contentType string, body io.Reader) (*http.Response, string) {
		t.Helper()

		req, err := http.NewRequest(http.MethodPost, env.srv.URL+payURL(id), body)
		require.NoError(t, err)
		req.Header.Set("Authorization", env.bearer(t, adminActor()))
		req.Header.Set("Content-Type", contentType)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		respBody, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		return resp, string(respBody)
	}

	t.Run("pay without body", func(t *testing.T) {
		env := newTestEnv(t)
		id := uuid.New()
		env.wallet.markPaid = func(actor models.Actor, gotID uuid.UUID, opts wallet.MarkPaidOptions) (models.WithdrawalRequest, error) {
			require.Nil(t, opts.PaymentReference)
			require.Nil(t, opts.ReceiptURL)
			return models.WithdrawalRequest{ID: gotID, Status: models.WithdrawalStatusPaid}, nil
		}

		resp, body := env.do(t, http.MethodPost, payURL(id), env.bearer(t, adminActor()), "")

		require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
		require.Contains(t, body, `"status":"PAID"`)
	})

	t.Run("pay with reference and receipt", func(t *testing.T) {
		env := newTestEnv(t)
		id := uuid.New()
		var gotOpts wallet.MarkPaidOptions
		env.wallet.markPaid = func(actor models.Actor, gotID uuid.UUID, opts wallet.MarkPaidOptions) (models.WithdrawalRequest, error) {
			gotOpts = opts
			paid := models.WithdrawalRequest{ID: gotID, Status: models.WithdrawalStatusPaid}
			paid.PaymentReference = opts.PaymentReference
			paid.ReceiptURL = opts.ReceiptURL
			return paid, nil
		}

		contentType, body := multipartBody(t, "TRX-2024-00017", []byte("%PDF-1.4 receipt"))
		resp, respBody := doMultipart(t, env, id, contentType, body)

		require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", respBody)
		require.NotNil(t, gotOpts.PaymentReference)
		require.Equal(t, "TRX-2024-00017", *gotOpts.PaymentReference)
		require.NotNil(t, gotOpts.ReceiptURL)
		require.Equal(t, "https://blobs.test/receipts/"+id.String()+".pdf", *gotOpts.ReceiptURL)
		require.Equal(t, "receipts/"+id.String()+".pdf", env.blobs.gotPath)
	})

	t.Run("upload failure is 502 and nothing is paid", func(t *testing.T) {
		env := newTestEnv(t)
		env.blobs.err = fmt.Errorf("cloud is unreachable")
		paidCalled := false
		env.wallet.markPaid = func(actor models.Actor, id uuid.UUID, opts wallet.MarkPaidOptions) (models.WithdrawalRequest, error) {
			paidCalled = true
			return models.WithdrawalRequest{}, nil
		}

		contentType, body := multipartBody(t, "", []byte("%PDF-1.4 receipt"))
		resp, _ := doMultipart(t, env, uuid.New(), contentType, body)

		require.Equal(t, http.StatusBadGateway, resp.StatusCode)
		require.False(t, paidCalled, "ledger must not move when the upload fails")
	})

	t.Run("failed pay deletes the uploaded receipt", func(t *testing.T) {
		env := newTestEnv(t)
		id := uuid.New()
		env.wallet.markPaid = func(actor models.Actor, gotID uuid.UUID, opts wallet.MarkPaidOptions) (models.WithdrawalRequest, error) {
			return models.WithdrawalRequest{}, fmt.Errorf("request is REJECTED: %w", apperrors.ErrStateConflict)
		}

		contentType, body := multipartBody(t, "", []byte("%PDF-1.4 receipt"))
		resp, _ := doMultipart(t, env, id, contentType, body)

		require.Equal(t, http.StatusConflict, resp.StatusCode)
		require.Equal(t, []string{"receipts/" + id.String() + ".pdf"}, env.blobs.deleted, "orphaned receipt must be dropped")
	})

	t.Run("successful pay keeps the receipt", func(t *testing.T) {
		env := newTestEnv(t)
		env.wallet.markPaid = func(actor models.Actor, gotID uuid.UUID, opts wallet.MarkPaidOptions) (models.WithdrawalRequest, error) {
			return models.WithdrawalRequest{ID: gotID, Status: models.WithdrawalStatusPaid}, nil
		}

		contentType, body := multipartBody(t, "", []byte("%PDF-1.4 receipt"))
		resp, _ := doMultipart(t, env, uuid.New(), contentType, body)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Empty(t, env.blobs.deleted)
	})

	t.Run("insufficient balance at pay time is 402", func(t *testing.T) {
		env := newTestEnv(t)
		env.wallet.markPaid = func(actor models.Actor, id uuid.UUID, opts wallet.MarkPaidOptions) (models.WithdrawalRequest, error) {
			return models.WithdrawalRequest{}, fmt.Errorf("wallet has 100 of 15000 required: %w", apperrors.ErrInsufficientBalance)
		}

		resp, _ := env.do(t, http.MethodPost, payURL(uuid.New()), env.bearer(t, adminActor()), "")

		require.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	})
}
