package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Caravan is the bookable resource. Category is used for display and
// recommendations only; it never affects conflicts or pricing.
// DailyRate overrides the service-wide flat rate when positive.
type Caravan struct {
	ID            int64
	OwnerID       int64
	Name          string
	Category      string
	DailyRate     decimal.Decimal
	AverageRating float64
	ReviewCount   int
}

func (c Caravan) EntityID() int64 { return c.ID }

func (c Caravan) WithID(id int64) Caravan {
	c.ID = id
	return c
}

func (c Caravan) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: caravan name is required", ErrValidation)
	}
	if c.DailyRate.IsNegative() {
		return fmt.Errorf("%w: daily rate must not be negative", ErrValidation)
	}
	return nil
}

// WithRating folds one more rating into the running mean.
func (c Caravan) WithRating(rating int) Caravan {
	total := c.AverageRating * float64(c.ReviewCount)
	c.ReviewCount++
	c.AverageRating = (total + float64(rating)) / float64(c.ReviewCount)
	return c
}
