package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_org_phone,priority:1" json:"organizationId"`

	Name        string     `gorm:"not null" json:"name"`
	Phone       string     `gorm:"not null;uniqueIndex:idx_org_phone,priority:2" json:"phone"`
	Email       string     `json:"email"`
	Notes       string     `json:"notes"`
	TotalVisits int        `gorm:"default:0" json:"totalVisits"`
	LastVisit   *time.Time `json:"lastVisit,omitempty"`
	IsActive    bool       `gorm:"not null" json:"isActive"`

	Appointments []Appointment `gorm:"foreignKey:CustomerID" json:"-"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
