package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ResourceProfessional = "professional"
	ResourceEquipment    = "equipment"
	ResourceRoom         = "room"
)

// Resource is anything a client books time with: a professional, a chamber,
// a room.
type Resource struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;index;not null" json:"organizationId"`
	Name           string    `gorm:"not null" json:"name"`
	Kind           string    `gorm:"type:varchar(20);not null" json:"kind"`
	Description    string    `json:"description"`
	IsActive       bool      `gorm:"not null" json:"isActive"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *Resource) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
