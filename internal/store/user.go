package store

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pkordes/caravan-share/internal/domain"
)

// UserStore is a Store of users with a unique email index.
type UserStore struct {
	*Store[domain.User]
	byEmail map[string]int64
}

// NewUserStore constructs an empty UserStore.
func NewUserStore() *UserStore {
	us := &UserStore{
		Store:   New[domain.User](),
		byEmail: make(map[string]int64),
	}
	us.idx = us
	return us
}

// FindByEmail looks a user up by email, case-insensitively. O(1).
func (us *UserStore) FindByEmail(email string) (domain.User, bool) {
	us.mu.RLock()
	defer us.mu.RUnlock()
	id, ok := us.byEmail[emailKey(email)]
	if !ok {
		return domain.User{}, false
	}
	u, ok := us.items[id]
	return u, ok
}

// Debit subtracts amount from the user's balance atomically.
// Returns *domain.InsufficientFundsError if the balance cannot cover it;
// the balance is then unchanged.
func (us *UserStore) Debit(userID int64, amount decimal.Decimal) (domain.User, error) {
	if amount.IsNegative() {
		return domain.User{}, fmt.Errorf("store.UserStore.Debit: %w: negative amount %s", domain.ErrValidation, amount)
	}
	u, err := us.Update(userID, func(u domain.User) (domain.User, error) {
		if !u.HasSufficientBalance(amount) {
			return u, &domain.InsufficientFundsError{UserID: u.ID, Required: amount, Available: u.Balance}
		}
		u.Balance = u.Balance.Sub(amount)
		return u, nil
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("store.UserStore.Debit: %w", err)
	}
	return u, nil
}

// Credit adds amount to the user's balance atomically.
func (us *UserStore) Credit(userID int64, amount decimal.Decimal) (domain.User, error) {
	if amount.IsNegative() {
		return domain.User{}, fmt.Errorf("store.UserStore.Credit: %w: negative amount %s", domain.ErrValidation, amount)
	}
	u, err := us.Update(userID, func(u domain.User) (domain.User, error) {
		u.Balance = u.Balance.Add(amount)
		return u, nil
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("store.UserStore.Credit: %w", err)
	}
	return u, nil
}

// check rejects an email already mapped to a different user.
func (us *UserStore) check(_ domain.User, _ bool, next domain.User) error {
	key := emailKey(next.Email)
	if key == "" {
		return nil
	}
	if owner, ok := us.byEmail[key]; ok && owner != next.ID {
		return fmt.Errorf("%w: email %q is already registered", domain.ErrValidation, next.Email)
	}
	return nil
}

func (us *UserStore) add(prev domain.User, existed bool, next domain.User) {
	if existed && emailKey(prev.Email) != emailKey(next.Email) {
		delete(us.byEmail, emailKey(prev.Email))
	}
	if key := emailKey(next.Email); key != "" {
		us.byEmail[key] = next.ID
	}
}

func (us *UserStore) remove(old domain.User) {
	delete(us.byEmail, emailKey(old.Email))
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
