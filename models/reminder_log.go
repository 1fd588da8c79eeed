// models/reminder_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReminderLog struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organizationId"`
	AppointmentID  uuid.UUID `gorm:"type:uuid;index;not null" json:"appointmentId"`
	TemplateID     uuid.UUID `gorm:"type:uuid;index;not null" json:"templateId"`
	Type           string    `gorm:"type:varchar(32)" json:"type"`
	Message        string    `gorm:"type:text" json:"message"`
	Status         string    `gorm:"type:varchar(20)" json:"status"` // sent, failed
	ErrorMessage   string    `gorm:"type:text" json:"errorMessage,omitempty"`
	Channel        string    `gorm:"type:varchar(20)" json:"channel"` // whatsapp, sms
	SentAt         time.Time `json:"sentAt"`

	CreatedAt time.Time `json:"createdAt"`
}

func (r *ReminderLog) BeforeCreate(tx *gorm.DB) (err error) {
	r.ID = uuid.New()
	return
}
