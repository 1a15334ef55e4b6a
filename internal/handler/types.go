package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"github.com/pkordes/caravan-share/internal/domain"
)

// The request and response bodies below mirror the schemas in
// spec/openapi.yaml. Money is always a decimal string with two places.

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type RegisterUserRequest struct {
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Balance decimal.Decimal `json:"balance"`
}

type User struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Balance string `json:"balance"`
}

type TokenRequest struct {
	Email string `json:"email"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Caravan struct {
	ID            int64   `json:"id"`
	OwnerID       int64   `json:"owner_id"`
	Name          string  `json:"name"`
	Category      string  `json:"category,omitempty"`
	DailyRate     *string `json:"daily_rate,omitempty"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

type CaravanList struct {
	Data       []Caravan  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Recommendations struct {
	Data []Caravan `json:"data"`
}

type Availability struct {
	CaravanID int64              `json:"caravan_id"`
	StartDate openapi_types.Date `json:"start_date"`
	EndDate   openapi_types.Date `json:"end_date"`
	Available bool               `json:"available"`
}

type CreateReservationRequest struct {
	CaravanID int64              `json:"caravan_id"`
	StartDate openapi_types.Date `json:"start_date"`
	EndDate   openapi_types.Date `json:"end_date"`
}

type Reservation struct {
	ID         int64              `json:"id"`
	UserID     int64              `json:"user_id"`
	CaravanID  int64              `json:"caravan_id"`
	StartDate  openapi_types.Date `json:"start_date"`
	EndDate    openapi_types.Date `json:"end_date"`
	TotalPrice string             `json:"total_price"`
	Status     string             `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
}

type ReservationList struct {
	Data []Reservation `json:"data"`
}

type ReservationHistory struct {
	Reservation Reservation `json:"reservation"`
	Events      []string    `json:"events"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type Review struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	CaravanID int64     `json:"caravan_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ---- domain -> response ----------------------------------------------------

func userToResponse(u domain.User) User {
	return User{ID: u.ID, Name: u.Name, Email: u.Email, Balance: u.Balance.StringFixed(2)}
}

func caravanToResponse(c domain.Caravan) Caravan {
	out := Caravan{
		ID:            c.ID,
		OwnerID:       c.OwnerID,
		Name:          c.Name,
		Category:      c.Category,
		AverageRating: c.AverageRating,
		ReviewCount:   c.ReviewCount,
	}
	if c.DailyRate.IsPositive() {
		rate := c.DailyRate.StringFixed(2)
		out.DailyRate = &rate
	}
	return out
}

func caravansToResponse(cs []domain.Caravan) []Caravan {
	out := make([]Caravan, len(cs))
	for i, c := range cs {
		out[i] = caravanToResponse(c)
	}
	return out
}

func reservationToResponse(r domain.Reservation) Reservation {
	return Reservation{
		ID:         r.ID,
		UserID:     r.UserID,
		CaravanID:  r.CaravanID,
		StartDate:  openapi_types.Date{Time: r.StartDate},
		EndDate:    openapi_types.Date{Time: r.EndDate},
		TotalPrice: r.TotalPrice.StringFixed(2),
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt,
	}
}

func reviewToResponse(r domain.Review) Review {
	return Review{
		ID:        r.ID,
		UserID:    r.UserID,
		CaravanID: r.CaravanID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}
