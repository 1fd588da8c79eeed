package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookingpro-backend/scheduling"
)

const (
	SourcePublic = "public"
	SourceStaff  = "staff"
)

// Appointment is a booked interval of a resource. Times are stored in UTC.
type Appointment struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organizationId"`
	ResourceID     uuid.UUID `gorm:"type:uuid;not null;index:idx_resource_starts,priority:1" json:"resourceId"`
	ServiceID      uuid.UUID `gorm:"type:uuid;index;not null" json:"serviceId"`
	CustomerID     uuid.UUID `gorm:"type:uuid;index;not null" json:"customerId"`

	StartsAt        time.Time `gorm:"not null;index:idx_resource_starts,priority:2" json:"startsAt"`
	EndsAt          time.Time `gorm:"not null" json:"endsAt"`
	DurationMinutes int       `gorm:"not null" json:"durationMinutes"`
	Status          string    `gorm:"type:varchar(16);not null;index" json:"status"`

	ClientName  string `gorm:"not null" json:"clientName"`
	ClientPhone string `gorm:"not null" json:"clientPhone"`
	ClientEmail string `json:"clientEmail,omitempty"`
	Notes       string `gorm:"type:text" json:"notes,omitempty"`

	Source          string     `gorm:"type:varchar(16);not null" json:"source"`
	CreatedByUserID *uuid.UUID `gorm:"type:uuid" json:"createdByUserId,omitempty"`

	CancelledAt    *time.Time `json:"cancelledAt,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	ReminderSentAt *time.Time `json:"reminderSentAt,omitempty"`

	Resource Resource `gorm:"foreignKey:ResourceID" json:"-"`
	Service  Service  `gorm:"foreignKey:ServiceID" json:"-"`
	Customer Customer `gorm:"foreignKey:CustomerID" json:"-"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = string(scheduling.StatusScheduled)
	}
	return
}

// Booking returns the appointment as an occupied interval.
func (a *Appointment) Booking() scheduling.Booking {
	return scheduling.Booking{ResourceID: a.ResourceID, Start: a.StartsAt, End: a.EndsAt}
}

// Bookings converts appointments for the availability calculator.
func Bookings(appointments []Appointment) []scheduling.Booking {
	out := make([]scheduling.Booking, 0, len(appointments))
	for i := range appointments {
		out = append(out, appointments[i].Booking())
	}
	return out
}
