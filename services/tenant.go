package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookingpro-backend/apperror"
	"bookingpro-backend/models"
	"bookingpro-backend/scheduling"
)

func loadOrganization(db *gorm.DB, id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := db.First(&org, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("organization not found")
		}
		return nil, fmt.Errorf("load organization: %w", err)
	}
	return &org, nil
}

// LoadOrganizationBySlug resolves a public booking page.
func LoadOrganizationBySlug(db *gorm.DB, slug string) (*models.Organization, error) {
	var org models.Organization
	if err := db.First(&org, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("organization not found", slug)
		}
		return nil, fmt.Errorf("load organization: %w", err)
	}
	return &org, nil
}

func loadActiveService(db *gorm.DB, orgID, serviceID uuid.UUID) (*models.Service, error) {
	var svc models.Service
	err := db.Where("organization_id = ? AND id = ? AND is_active = ?", orgID, serviceID, true).First(&svc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("service not found", serviceID.String())
		}
		return nil, fmt.Errorf("load service: %w", err)
	}
	return &svc, nil
}

func activeResourceIDs(db *gorm.DB, orgID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.Model(&models.Resource{}).
		Where("organization_id = ? AND is_active = ?", orgID, true).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load resources: %w", err)
	}
	return ids, nil
}

// bookingsBetween returns scheduled appointments of the resources that
// overlap [from, to).
func bookingsBetween(db *gorm.DB, resourceIDs []uuid.UUID, from, to time.Time) ([]scheduling.Booking, error) {
	if len(resourceIDs) == 0 {
		return nil, nil
	}
	var appointments []models.Appointment
	err := db.Where("resource_id IN ? AND status = ? AND starts_at < ? AND ends_at > ?",
		resourceIDs, string(scheduling.StatusScheduled), to.UTC(), from.UTC()).
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}
	return models.Bookings(appointments), nil
}

// monthCount counts the appointments that use the quota of the month
// containing t. Cancelled appointments do not count.
func monthCount(db *gorm.DB, org *models.Organization, t time.Time) (int, error) {
	start, end := org.MonthBounds(t)
	var n int64
	err := db.Model(&models.Appointment{}).
		Where("organization_id = ? AND status <> ? AND starts_at >= ? AND starts_at < ?",
			org.ID, string(scheduling.StatusCancelled), start.UTC(), end.UTC()).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return int(n), nil
}

// lockOrganization serializes writers that depend on organization wide
// counts, such as the monthly appointment quota.
func lockOrganization(tx *gorm.DB, id uuid.UUID) error {
	var org models.Organization
	if err := lockRow(tx).Select("id").First(&org, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NewNotFoundError("organization not found")
		}
		return fmt.Errorf("lock organization: %w", err)
	}
	return nil
}

// CheckPlanChange refuses a plan whose limits are below the organization's
// current resources or users. Existing appointments never block a change.
func CheckPlanChange(db *gorm.DB, org *models.Organization, plans scheduling.PlanTable, plan scheduling.Plan) error {
	limits, err := plans.Limits(plan)
	if err != nil {
		return err
	}

	var resources, users int64
	if err := db.Model(&models.Resource{}).Where("organization_id = ?", org.ID).Count(&resources).Error; err != nil {
		return fmt.Errorf("count resources: %w", err)
	}
	if err := db.Model(&models.User{}).Where("organization_id = ?", org.ID).Count(&users).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if int(resources) > limits.MaxResources || int(users) > limits.MaxUsers {
		return apperror.NewQuotaExceededError("current usage exceeds the limits of plan "+string(plan),
			fmt.Sprintf("%d resources, %d users", resources, users))
	}
	return nil
}

// lockRow takes a row lock on postgres. Other dialects rely on the
// transaction alone.
func lockRow(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
