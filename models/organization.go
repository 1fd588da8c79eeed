package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookingpro-backend/scheduling"
)

// Organization is a tenant: a salon, clinic or center with its own booking
// page, business rules and subscription.
type Organization struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Slug         string    `gorm:"uniqueIndex;not null" json:"slug"`
	Address      string    `json:"address"`
	Phone        string    `json:"phone"`
	TemplateType string    `gorm:"type:varchar(32);not null" json:"templateType"`

	Timezone               string                          `gorm:"type:varchar(64);not null" json:"timezone"`
	BusinessHours          JSONB[scheduling.BusinessHours] `json:"businessHours"`
	BufferMinutes          int                             `gorm:"not null" json:"bufferMinutes"`
	BufferPolicy           string                          `gorm:"type:varchar(16);not null" json:"bufferPolicy"`
	SlotGranularityMinutes int                             `gorm:"not null" json:"slotGranularityMinutes"`

	AppointmentReminders  bool `json:"appointmentReminders"`
	WhatsAppNotifications bool `json:"whatsAppNotifications"`
	SMSNotifications      bool `json:"smsNotifications"`

	Plan                    string `gorm:"type:varchar(16);not null" json:"plan"`
	MaxResources            int    `gorm:"not null" json:"maxResources"`
	MaxAppointmentsPerMonth int    `gorm:"not null" json:"maxAppointmentsPerMonth"`
	MaxUsers                int    `gorm:"not null" json:"maxUsers"`

	Users             []User             `gorm:"foreignKey:OrganizationID" json:"-"`
	Resources         []Resource         `gorm:"foreignKey:OrganizationID" json:"-"`
	Services          []Service          `gorm:"foreignKey:OrganizationID" json:"-"`
	ReminderTemplates []ReminderTemplate `gorm:"foreignKey:OrganizationID" json:"-"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return
}

// Location returns the organization's timezone, UTC when unset or unknown.
func (o *Organization) Location() *time.Location {
	if o.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Schedule validates and normalizes the stored business hours.
func (o *Organization) Schedule() (scheduling.WeeklySchedule, error) {
	return scheduling.Validate(o.BusinessHours.Data)
}

// ApplyPlan switches the organization to a plan and derives its limits
// from the table.
func (o *Organization) ApplyPlan(table scheduling.PlanTable, plan scheduling.Plan) error {
	limits, err := table.Limits(plan)
	if err != nil {
		return err
	}
	o.Plan = string(plan)
	o.MaxResources = limits.MaxResources
	o.MaxAppointmentsPerMonth = limits.MaxAppointmentsPerMonth
	o.MaxUsers = limits.MaxUsers
	return nil
}

// Limits returns the stored plan limits.
func (o *Organization) Limits() scheduling.ResourceLimits {
	return scheduling.ResourceLimits{
		MaxResources:            o.MaxResources,
		MaxAppointmentsPerMonth: o.MaxAppointmentsPerMonth,
		MaxUsers:                o.MaxUsers,
	}
}

// Tenant projects the organization for the booking validator.
func (o *Organization) Tenant(resourceIDs []uuid.UUID) scheduling.Tenant {
	return scheduling.Tenant{ID: o.ID, Plan: scheduling.Plan(o.Plan), ResourceIDs: resourceIDs}
}

// MonthBounds returns the start of the current month and of the next one
// in the organization's timezone.
func (o *Organization) MonthBounds(now time.Time) (time.Time, time.Time) {
	local := now.In(o.Location())
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, local.Location())
	return start, start.AddDate(0, 1, 0)
}
