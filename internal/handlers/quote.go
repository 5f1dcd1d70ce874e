package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/alamarhq/alamar/internal/apperrors"
	"github.com/alamarhq/alamar/internal/handlers/render"
	"github.com/alamarhq/alamar/internal/logger"
	"github.com/alamarhq/alamar/internal/models"
)

func handleQuote(pricingService pricingService, l logger.Logger) http.Handler {
	type request struct {
		PricePerNightCents int64     `json:"price_per_night_cents" validate:"required,gt=0"`
		Currency           string    `json:"currency" validate:"required,currency"`
		CheckIn            time.Time `json:"check_in" validate:"required"`
		CheckOut           time.Time `json:"check_out" validate:"required"`
		Guests             int       `json:"guests" validate:"required,gt=0"`
	}

	type response struct {
		Nights            int64                `json:"nights"`
		Currency          string               `json:"currency"`
		SubtotalCents     int64                `json:"subtotal_cents"`
		PlatformFeeCents  int64                `json:"platform_fee_cents"`
		AllyEarningsCents int64                `json:"ally_earnings_cents"`
		TotalCents        int64                `json:"total_cents"`
		Snapshot          models.QuoteSnapshot `json:"snapshot"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		quote, err := pricingService.Quote(r.Context(), quoteParams(req.PricePerNightCents, req.Currency, req.CheckIn, req.CheckOut, req.Guests))

		switch {
		case err == nil:
			render.JSON(w, response{
				Nights:            quote.Nights,
				Currency:          quote.Currency,
				SubtotalCents:     quote.SubtotalCents,
				PlatformFeeCents:  quote.PlatformFeeCents,
				AllyEarningsCents: quote.AllyEarningsCents,
				TotalCents:        quote.TotalCents,
				Snapshot:          quote.Snapshot,
			})
		case errors.Is(err, apperrors.ErrNoNights):
			render.ServiceError(w, "Check-out must be after check-in", http.StatusUnprocessableEntity)
		case errors.Is(err, apperrors.ErrValidation):
			render.ServiceError(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			l.Error("Failed to compute quote", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}
