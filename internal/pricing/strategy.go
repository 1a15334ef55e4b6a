// Package pricing computes booking prices: a base price from a daily rate and
// a discount from a pluggable Strategy chosen when the service is wired.
package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pkordes/caravan-share/internal/domain"
)

// Strategy computes the discount on base for a stay over [start, end).
// Implementations are pure. The final price is base minus the discount and is
// not clamped here, so a Strategy must never discount more than 100%.
type Strategy interface {
	Discount(base decimal.Decimal, start, end time.Time) decimal.Decimal
}

// LongStayMinDays is the stay length from which LongStayDiscount applies.
const LongStayMinDays = 7

var (
	weekendRate  = decimal.RequireFromString("0.10")
	longStayRate = decimal.RequireFromString("0.05")
)

// NoDiscount never discounts.
type NoDiscount struct{}

func (NoDiscount) Discount(decimal.Decimal, time.Time, time.Time) decimal.Decimal {
	return decimal.Zero
}

func (NoDiscount) String() string { return "none" }

// WeekendDiscount takes 10% off the per-day share of every Friday and
// Saturday in the stay. The per-day share is base divided evenly over all
// days of the stay.
type WeekendDiscount struct{}

func (WeekendDiscount) Discount(base decimal.Decimal, start, end time.Time) decimal.Decimal {
	days := domain.Days(start, end)
	if days <= 0 {
		return decimal.Zero
	}
	perDay := base.Div(decimal.NewFromInt(int64(days)))

	discount := decimal.Zero
	last := domain.Day(end)
	for d := domain.Day(start); d.Before(last); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Friday || wd == time.Saturday {
			discount = discount.Add(perDay.Mul(weekendRate))
		}
	}
	return discount
}

func (WeekendDiscount) String() string { return "weekend" }

// LongStayDiscount takes 5% off the whole stay from LongStayMinDays days on.
type LongStayDiscount struct{}

func (LongStayDiscount) Discount(base decimal.Decimal, start, end time.Time) decimal.Decimal {
	if domain.Days(start, end) >= LongStayMinDays {
		return base.Mul(longStayRate)
	}
	return decimal.Zero
}

func (LongStayDiscount) String() string { return "longstay" }

// Parse maps a configuration name to a Strategy.
// Accepted names: "none" (or empty), "weekend", "longstay".
func Parse(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return NoDiscount{}, nil
	case "weekend":
		return WeekendDiscount{}, nil
	case "longstay", "long_stay", "long-stay":
		return LongStayDiscount{}, nil
	default:
		return nil, fmt.Errorf("pricing.Parse: unknown discount strategy %q", name)
	}
}
