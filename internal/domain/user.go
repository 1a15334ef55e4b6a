// Package domain contains the core data types for the CaravanShare reservation
// engine. It is imported by every other internal package (store, service,
// handler) and depends on nothing inside this module.
package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// User is a person who books caravans or hosts them.
// Balance is never negative; the only writers are the booking debit and the
// cancellation refund.
type User struct {
	ID      int64
	Name    string
	Email   string
	Balance decimal.Decimal
}

// EntityID returns the store identity. Zero means "not yet saved".
func (u User) EntityID() int64 { return u.ID }

// WithID returns a copy of u carrying id.
func (u User) WithID(id int64) User {
	u.ID = id
	return u
}

// Validate enforces the invariants every stored user must satisfy.
func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if u.Balance.IsNegative() {
		return fmt.Errorf("%w: balance must not be negative", ErrValidation)
	}
	return nil
}

// HasSufficientBalance reports whether u can pay amount.
func (u User) HasSufficientBalance(amount decimal.Decimal) bool {
	return u.Balance.GreaterThanOrEqual(amount)
}
