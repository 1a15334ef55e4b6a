package domain

import (
	"fmt"
	"time"
)

// Review is a rating a user leaves after a confirmed stay.
type Review struct {
	ID        int64
	UserID    int64
	CaravanID int64
	Rating    int
	Comment   string
	CreatedAt time.Time
}

func (r Review) EntityID() int64 { return r.ID }

func (r Review) WithID(id int64) Review {
	r.ID = id
	return r
}

func (r Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	return nil
}
