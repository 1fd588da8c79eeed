package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReminderAppointment  = "appointment_reminder"
	ReminderConfirmation = "booking_confirmation"
)

type ReminderTemplate struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organizationId"`
	Type           string    `gorm:"type:varchar(32);not null" json:"type"`
	Message        string    `gorm:"type:text;not null" json:"message"`
	IsActive       bool      `gorm:"not null" json:"isActive"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *ReminderTemplate) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}

// DefaultReminderTemplates are created for every new organization.
func DefaultReminderTemplates(organizationID uuid.UUID) []ReminderTemplate {
	return []ReminderTemplate{
		{
			OrganizationID: organizationID,
			Type:           ReminderAppointment,
			Message:        "Hi [CustomerName], this is a reminder of your appointment at [Organization] on [Date] at [Time].",
			IsActive:       true,
		},
		{
			OrganizationID: organizationID,
			Type:           ReminderConfirmation,
			Message:        "Hi [CustomerName], your appointment at [Organization] on [Date] at [Time] is confirmed.",
			IsActive:       true,
		},
	}
}
