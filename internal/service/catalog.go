package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pkordes/caravan-share/internal/domain"
)

// CaravanLister is the read side of the caravan store.
type CaravanLister interface {
	FindByID(id int64) (domain.Caravan, bool)
	FindAll() []domain.Caravan
}

// CaravanService serves the caravan catalogue.
type CaravanService struct {
	caravans CaravanLister
}

// NewCaravanService constructs a CaravanService.
func NewCaravanService(caravans CaravanLister) *CaravanService {
	return &CaravanService{caravans: caravans}
}

// GetByID returns a caravan or *domain.CaravanNotFoundError.
func (s *CaravanService) GetByID(_ context.Context, id int64) (domain.Caravan, error) {
	c, ok := s.caravans.FindByID(id)
	if !ok {
		return domain.Caravan{}, fmt.Errorf("service.CaravanService.GetByID: %w", &domain.CaravanNotFoundError{CaravanID: id})
	}
	return c, nil
}

// List returns one page of caravans in insertion order plus the total count.
func (s *CaravanService) List(_ context.Context, p domain.PaginationParams) ([]domain.Caravan, int) {
	all := s.caravans.FindAll()
	lo, hi := p.Window(len(all))
	return all[lo:hi], len(all)
}

// UserRegistry is the slice of the user store registration needs.
type UserRegistry interface {
	Save(u domain.User) (domain.User, error)
	FindByID(id int64) (domain.User, bool)
	FindByEmail(email string) (domain.User, bool)
}

// UserService registers users and resolves them for token issuance.
type UserService struct {
	users UserRegistry
}

// NewUserService constructs a UserService.
func NewUserService(users UserRegistry) *UserService {
	return &UserService{users: users}
}

// Register creates a user with an opening balance. The store rejects
// duplicate emails with domain.ErrValidation.
func (s *UserService) Register(_ context.Context, name, email string, balance decimal.Decimal) (domain.User, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Register: %w: invalid email %q", domain.ErrValidation, email)
	}
	u, err := s.users.Save(domain.User{
		Name:    strings.TrimSpace(name),
		Email:   email,
		Balance: balance,
	})
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Register: %w", err)
	}
	return u, nil
}

// GetByID returns a user or *domain.UserNotFoundError.
func (s *UserService) GetByID(_ context.Context, id int64) (domain.User, error) {
	u, ok := s.users.FindByID(id)
	if !ok {
		return domain.User{}, fmt.Errorf("service.UserService.GetByID: %w", &domain.UserNotFoundError{UserID: id})
	}
	return u, nil
}

// GetByEmail resolves a user by email, case-insensitively.
func (s *UserService) GetByEmail(_ context.Context, email string) (domain.User, error) {
	u, ok := s.users.FindByEmail(email)
	if !ok {
		return domain.User{}, fmt.Errorf("service.UserService.GetByEmail: no user with email %q: %w", email, domain.ErrNotFound)
	}
	return u, nil
}
