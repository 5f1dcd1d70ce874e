package models

import (
	"github.com/shopspring/decimal"
)

// Quote is the priced result of a booking request. The platform fee is a
// split of the subtotal, never an add-on: the guest pays total == subtotal
// and the ally earns subtotal minus the fee.
type Quote struct {
	Nights            int64
	Currency          string
	PricePerNight     int64
	SubtotalCents     int64
	PlatformFeeCents  int64
	AllyEarningsCents int64
	TotalCents        int64
	FeeRate           decimal.Decimal
	Snapshot          QuoteSnapshot
}

// QuoteSnapshot is the serializable record persisted on a booking at
// creation time. It captures every input and output, so later price or
// fee-rate changes never alter historical bookings.
type QuoteSnapshot struct {
	CheckIn            string          `json:"check_in"`
	CheckOut           string          `json:"check_out"`
	Guests             int             `json:"guests"`
	Nights             int64           `json:"nights"`
	Currency           string          `json:"currency"`
	PricePerNightCents int64           `json:"price_per_night_cents"`
	FeeRate            decimal.Decimal `json:"fee_rate"`
	SubtotalCents      int64           `json:"subtotal_cents"`
	PlatformFeeCents   int64           `json:"platform_fee_cents"`
	AllyEarningsCents  int64           `json:"ally_earnings_cents"`
	TotalCents         int64           `json:"total_cents"`
}
