package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pkordes/caravan-share/internal/domain"
)

// RateSource supplies the per-day rate for a caravan.
type RateSource interface {
	DailyRate(c domain.Caravan) decimal.Decimal
}

// FlatRate charges Rate per day unless the caravan sets its own positive
// DailyRate.
type FlatRate struct {
	Rate decimal.Decimal
}

func (f FlatRate) DailyRate(c domain.Caravan) decimal.Decimal {
	if c.DailyRate.IsPositive() {
		return c.DailyRate
	}
	return f.Rate
}

// BasePrice is the undiscounted price of [start, end): rate times days.
// Empty or reversed ranges cost zero.
func BasePrice(rates RateSource, c domain.Caravan, start, end time.Time) decimal.Decimal {
	days := domain.Days(start, end)
	if days <= 0 {
		return decimal.Zero
	}
	return rates.DailyRate(c).Mul(decimal.NewFromInt(int64(days)))
}

// Quote is a priced stay.
type Quote struct {
	Base     decimal.Decimal
	Discount decimal.Decimal
	Final    decimal.Decimal
}

// Apply runs s over base and returns the resulting quote.
func Apply(s Strategy, base decimal.Decimal, start, end time.Time) Quote {
	discount := s.Discount(base, start, end)
	return Quote{Base: base, Discount: discount, Final: base.Sub(discount)}
}
