package model

import (
	"time"

	"github.com/nazmul-karim/slotbook/services/booking-service/internal/lifecycle"
)

// Booking is a persisted appointment. DurationMin is denormalized from the
// service at creation time so later catalog edits never shift existing
// bookings. Date is the company-local calendar day (YYYY-MM-DD) and StartMin
// is minutes since midnight on that day.
type Booking struct {
	ID             string
	CompanyID      string
	ProfessionalID string
	ServiceID      string
	Date           string
	StartMin       int
	DurationMin    int
	Status         lifecycle.Status
	CustomerName   string
	CustomerPhone  string
	CustomerID     string
	StaffEntered   bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CancelledAt    *time.Time
}

func (b Booking) EndMin() int {
	return b.StartMin + b.DurationMin
}

// Service is a bookable catalog entry with a fixed duration.
type Service struct {
	ID          string
	CompanyID   string
	Name        string
	DurationMin int
	Price       string
	CreatedAt   time.Time
}

// Professional belongs to exactly one company; bookings are scoped per
// professional, so two professionals never conflict with each other.
type Professional struct {
	ID        string
	CompanyID string
	Name      string
	IsActive  bool
	CreatedAt time.Time
}
