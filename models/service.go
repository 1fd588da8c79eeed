package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organizationId"`
	Name           string    `gorm:"not null" json:"name"`
	Description    string    `json:"description"`
	Price          float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Duration       int       `gorm:"not null" json:"duration"` // in minutes
	Category       string    `gorm:"default:'General'" json:"category"`
	IsActive       bool      `gorm:"not null" json:"isActive"`

	Appointments []Appointment `gorm:"foreignKey:ServiceID" json:"-"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
