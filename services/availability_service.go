package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookingpro-backend/apperror"
	"bookingpro-backend/models"
	"bookingpro-backend/scheduling"
)

const (
	DefaultAvailabilityDays = 7
	MaxAvailabilityDays     = 31
)

type AvailabilityRequest struct {
	ServiceID uuid.UUID
	// ResourceID narrows the result to one resource. uuid.Nil means all.
	ResourceID  uuid.UUID
	From        scheduling.Date
	Days        int
	IncludePast bool
}

type AvailabilityService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{db: db, now: time.Now}
}

// Slots lists the bookable slots of an organization for a service.
func (s *AvailabilityService) Slots(ctx context.Context, orgID uuid.UUID, req AvailabilityRequest) ([]scheduling.Slot, error) {
	db := s.db.WithContext(ctx)

	org, err := loadOrganization(db, orgID)
	if err != nil {
		return nil, err
	}
	svc, err := loadActiveService(db, org.ID, req.ServiceID)
	if err != nil {
		return nil, err
	}

	days := req.Days
	if days == 0 {
		days = DefaultAvailabilityDays
	}
	if days < 0 || days > MaxAvailabilityDays {
		return nil, apperror.NewValidationError("days must be between 1 and 31")
	}

	resourceIDs, err := activeResourceIDs(db, org.ID)
	if err != nil {
		return nil, err
	}
	if req.ResourceID != uuid.Nil {
		if !containsID(resourceIDs, req.ResourceID) {
			return nil, apperror.NewNotFoundError("resource not found", req.ResourceID.String())
		}
		resourceIDs = []uuid.UUID{req.ResourceID}
	}

	from := req.From
	if from.IsZero() {
		from = scheduling.DateOf(s.now(), org.Location())
	}

	return computeSlots(db, org, svc, resourceIDs, scheduling.NewDateRange(from, days), req.IncludePast, s.now())
}

func computeSlots(db *gorm.DB, org *models.Organization, svc *models.Service, resourceIDs []uuid.UUID,
	rng scheduling.DateRange, includePast bool, now time.Time) ([]scheduling.Slot, error) {
	schedule, err := org.Schedule()
	if err != nil {
		return nil, err
	}
	loc := org.Location()

	// Bookings just outside the range still block its edges through the buffer.
	margin := time.Duration(org.BufferMinutes) * time.Minute
	bookings, err := bookingsBetween(db, resourceIDs, rng.Start.Midnight(loc).Add(-margin), rng.End.Midnight(loc).Add(margin))
	if err != nil {
		return nil, err
	}

	return scheduling.ComputeSlots(scheduling.SlotQuery{
		Schedule:           schedule,
		Resources:          resourceIDs,
		DurationMinutes:    svc.Duration,
		BufferMinutes:      org.BufferMinutes,
		BufferPolicy:       scheduling.BufferPolicy(org.BufferPolicy),
		GranularityMinutes: org.SlotGranularityMinutes,
		Bookings:           bookings,
		Range:              rng,
		Location:           loc,
		Now:                now,
		IncludePast:        includePast,
	})
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
