package pricing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alamarhq/alamar/internal/apperrors"
	"github.com/alamarhq/alamar/internal/logger"
	"github.com/alamarhq/alamar/internal/models"
	"github.com/alamarhq/alamar/internal/repository"
)

// FeeRateKey is the settings key holding the platform fee rate
const FeeRateKey = "platform_fee_rate"

var (
	// DefaultFeeRate applies when the setting is absent or unreadable
	DefaultFeeRate = decimal.NewFromFloat(0.12)

	// MaxFeeRate caps whatever is stored; stored values are never trusted blindly
	MaxFeeRate = decimal.NewFromFloat(0.5)
)

type QuoteParams struct {
	PricePerNightCents int64
	Currency           string
	CheckIn            time.Time
	CheckOut           time.Time
	Guests             int
}

// Nights counts billable nights as the ceiling of the stay length in days.
// A check-out only hours after check-in still counts as one night.
func Nights(checkIn, checkOut time.Time) int64 {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}

	nights := int64(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		nights++
	}
	return nights
}

// Compute prices a stay with an explicitly provided fee rate. Pure.
//
// The platform fee is rounded half away from zero; ally earnings are derived
// by subtraction and never rounded on their own, so fee + earnings equals the
// subtotal exactly. The guest total is the subtotal: the fee is a split of
// the nightly price, not an add-on.
func Compute(params QuoteParams, feeRate decimal.Decimal) (models.Quote, error) {
	var quote models.Quote

	switch {
	case params.PricePerNightCents <= 0:
		return quote, fmt.Errorf("price per night must be positive: %w", apperrors.ErrValidation)
	case params.Guests <= 0:
		return quote, fmt.Errorf("guest count must be positive: %w", apperrors.ErrValidation)
	}

	nights := Nights(params.CheckIn, params.CheckOut)
	if nights <= 0 {
		return quote, apperrors.ErrNoNights
	}

	subtotal := params.PricePerNightCents * nights
	fee := decimal.NewFromInt(subtotal).Mul(feeRate).Round(0).IntPart()
	earnings := subtotal - fee

	quote = models.Quote{
		Nights:            nights,
		Currency:          params.Currency,
		PricePerNight:     params.PricePerNightCents,
		SubtotalCents:     subtotal,
		PlatformFeeCents:  fee,
		AllyEarningsCents: earnings,
		TotalCents:        subtotal,
		FeeRate:           feeRate,
		Snapshot: models.QuoteSnapshot{
			CheckIn:            params.CheckIn.UTC().Format(time.RFC3339),
			CheckOut:           params.CheckOut.UTC().Format(time.RFC3339),
			Guests:             params.Guests,
			Nights:             nights,
			Currency:           params.Currency,
			PricePerNightCents: params.PricePerNightCents,
			FeeRate:            feeRate,
			SubtotalCents:      subtotal,
			PlatformFeeCents:   fee,
			AllyEarningsCents:  earnings,
			TotalCents:         subtotal,
		},
	}

	return quote, nil
}

// ClampRate forces a rate into the [0, MaxFeeRate] range
func ClampRate(rate decimal.Decimal) decimal.Decimal {
	switch {
	case rate.IsNegative():
		return decimal.Zero
	case rate.GreaterThan(MaxFeeRate):
		return MaxFeeRate
	default:
		return rate
	}
}

type Service struct {
	settings repository.SettingsRepo
	logger   logger.Logger
}

func NewService(settings repository.SettingsRepo, l logger.Logger) *Service {
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &Service{
		settings: settings,
		logger:   l,
	}
}

// Quote prices a stay with the currently configured platform fee rate.
// The only side effect is one read of the settings store.
func (s *Service) Quote(ctx context.Context, params QuoteParams) (models.Quote, error) {
	return Compute(params, s.FeeRate(ctx))
}

// FeeRate reads the configured platform fee rate, falling back to
// DefaultFeeRate and clamping whatever is stored.
func (s *Service) FeeRate(ctx context.Context) decimal.Decimal {
	raw, err := s.settings.Get(ctx, FeeRateKey)
	if err != nil {
		s.logger.Debug("Fee rate setting not readable, using default", "error", err)
		return DefaultFeeRate
	}

	// The value is stored as JSON: either a number or a quoted string
	rate, err := decimal.NewFromString(strings.Trim(strings.TrimSpace(raw), `"`))
	if err != nil {
		s.logger.Warn("Fee rate setting is not a number, using default", "value", raw)
		return DefaultFeeRate
	}

	return ClampRate(rate)
}
