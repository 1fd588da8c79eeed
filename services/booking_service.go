package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookingpro-backend/apperror"
	"bookingpro-backend/models"
	"bookingpro-backend/scheduling"
	"bookingpro-backend/utils"
)

type BookingRequest struct {
	ServiceID   uuid.UUID         `json:"serviceId"`
	ResourceID  uuid.UUID         `json:"resourceId"`
	Date        scheduling.Date   `json:"date"`
	StartTime   scheduling.Minute `json:"startTime"`
	ClientName  string            `json:"clientName"`
	ClientPhone string            `json:"clientPhone"`
	ClientEmail string            `json:"clientEmail"`
	Notes       string            `json:"notes"`

	Source          string     `json:"-"`
	CreatedByUserID *uuid.UUID `json:"-"`
	// IncludePast accepts slots that already started today. Staff set it
	// to record walk-ins; public bookings never do.
	IncludePast bool `json:"-"`
}

type AppointmentFilter struct {
	From       *time.Time
	To         *time.Time
	ResourceID uuid.UUID
	Status     scheduling.AppointmentStatus
}

type BookingService struct {
	db        *gorm.DB
	validator *scheduling.BookingValidator
	now       func() time.Time
}

func NewBookingService(db *gorm.DB, plans scheduling.PlanTable) *BookingService {
	return &BookingService{
		db:        db,
		validator: scheduling.NewBookingValidator(plans),
		now:       time.Now,
	}
}

func (s *BookingService) Validator() *scheduling.BookingValidator {
	return s.validator
}

// Book validates the request against freshly computed availability and
// stores the appointment. The conflict and quota checks are repeated inside
// the write transaction so that concurrent requests for the same slot
// cannot both succeed.
func (s *BookingService) Book(ctx context.Context, orgID uuid.UUID, req BookingRequest) (*models.Appointment, error) {
	req.ClientName = strings.TrimSpace(req.ClientName)
	req.ClientPhone = utils.CleanPhone(req.ClientPhone)
	if req.ClientName == "" {
		return nil, apperror.NewValidationError("client name is required")
	}
	if !utils.ValidatePhone(req.ClientPhone) {
		return nil, apperror.NewValidationError("invalid phone number format", req.ClientPhone)
	}
	if req.Date.IsZero() {
		return nil, apperror.NewValidationError("date is required")
	}
	if req.Source == "" {
		req.Source = models.SourcePublic
	}

	db := s.db.WithContext(ctx)
	now := s.now()

	org, err := loadOrganization(db, orgID)
	if err != nil {
		return nil, err
	}
	svc, err := loadActiveService(db, org.ID, req.ServiceID)
	if err != nil {
		return nil, err
	}
	resourceIDs, err := activeResourceIDs(db, org.ID)
	if err != nil {
		return nil, err
	}

	candidate := scheduling.Slot{
		ResourceID: req.ResourceID,
		Date:       req.Date,
		Start:      req.StartTime,
		End:        req.StartTime + scheduling.Minute(svc.Duration),
	}

	var computed []scheduling.Slot
	if containsID(resourceIDs, req.ResourceID) {
		computed, err = computeSlots(db, org, svc, []uuid.UUID{req.ResourceID},
			scheduling.NewDateRange(req.Date, 1), req.IncludePast, now)
		if err != nil {
			return nil, err
		}
	}

	loc := org.Location()
	startsAt := candidate.StartTime(loc).UTC()
	endsAt := candidate.EndTime(loc).UTC()

	count, err := monthCount(db, org, startsAt)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(candidate, computed, org.Tenant(resourceIDs), count); err != nil {
		return nil, err
	}

	var appointment models.Appointment
	err = db.Transaction(func(tx *gorm.DB) error {
		// The organization lock covers the quota across resources, the
		// resource lock covers the slot.
		if err := lockOrganization(tx, org.ID); err != nil {
			return err
		}
		var resource models.Resource
		if err := lockRow(tx).First(&resource, "id = ? AND organization_id = ?", req.ResourceID, org.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NewNotFoundError("resource not found", req.ResourceID.String())
			}
			return fmt.Errorf("lock resource: %w", err)
		}

		margin := time.Duration(org.BufferMinutes) * time.Minute
		bookings, err := bookingsBetween(tx, []uuid.UUID{req.ResourceID}, startsAt.Add(-margin), endsAt.Add(margin))
		if err != nil {
			return err
		}
		if scheduling.ConflictsWithBookings(req.ResourceID, startsAt, endsAt, bookings,
			org.BufferMinutes, scheduling.BufferPolicy(org.BufferPolicy)) {
			return apperror.NewSlotUnavailableError("requested time was just booked",
				fmt.Sprintf("%s %s-%s", candidate.Date, candidate.Start, candidate.End))
		}

		count, err := monthCount(tx, org, startsAt)
		if err != nil {
			return err
		}
		if err := s.validator.CheckAppointmentQuota(org.Tenant(resourceIDs), count); err != nil {
			return err
		}

		customer, err := upsertCustomer(tx, org.ID, req.ClientName, req.ClientPhone, req.ClientEmail)
		if err != nil {
			return err
		}

		appointment = models.Appointment{
			OrganizationID:  org.ID,
			ResourceID:      req.ResourceID,
			ServiceID:       svc.ID,
			CustomerID:      customer.ID,
			StartsAt:        startsAt,
			EndsAt:          endsAt,
			DurationMinutes: svc.Duration,
			Status:          string(scheduling.StatusScheduled),
			ClientName:      req.ClientName,
			ClientPhone:     req.ClientPhone,
			ClientEmail:     req.ClientEmail,
			Notes:           req.Notes,
			Source:          req.Source,
			CreatedByUserID: req.CreatedByUserID,
		}
		if err := tx.Omit(clause.Associations).Create(&appointment).Error; err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

// upsertCustomer finds the organization's customer by phone or creates one.
func upsertCustomer(tx *gorm.DB, orgID uuid.UUID, name, phone, email string) (*models.Customer, error) {
	var customer models.Customer
	err := tx.Where("organization_id = ? AND phone = ?", orgID, phone).First(&customer).Error
	if err == nil {
		return &customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load customer: %w", err)
	}

	customer = models.Customer{OrganizationID: orgID, Name: name, Phone: phone, Email: email, IsActive: true}
	if err := tx.Omit(clause.Associations).Create(&customer).Error; err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return &customer, nil
}

func (s *BookingService) Get(ctx context.Context, orgID, id uuid.UUID) (*models.Appointment, error) {
	var appointment models.Appointment
	err := s.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("appointment not found", id.String())
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	return &appointment, nil
}

// List returns the organization's appointments ordered by start time.
func (s *BookingService) List(ctx context.Context, orgID uuid.UUID, f AppointmentFilter) ([]models.Appointment, error) {
	query := s.db.WithContext(ctx).Where("organization_id = ?", orgID)
	if f.From != nil {
		query = query.Where("starts_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		query = query.Where("starts_at < ?", f.To.UTC())
	}
	if f.ResourceID != uuid.Nil {
		query = query.Where("resource_id = ?", f.ResourceID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", string(f.Status))
	}

	appointments := make([]models.Appointment, 0)
	if err := query.Order("starts_at ASC").Find(&appointments).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appointments, nil
}

func (s *BookingService) Cancel(ctx context.Context, orgID, id uuid.UUID) (*models.Appointment, error) {
	return s.transition(ctx, orgID, id, scheduling.StatusCancelled)
}

// Complete closes an appointment and records the visit on the customer.
func (s *BookingService) Complete(ctx context.Context, orgID, id uuid.UUID) (*models.Appointment, error) {
	return s.transition(ctx, orgID, id, scheduling.StatusCompleted)
}

func (s *BookingService) transition(ctx context.Context, orgID, id uuid.UUID, to scheduling.AppointmentStatus) (*models.Appointment, error) {
	var appointment models.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := lockRow(tx).Where("organization_id = ? AND id = ?", orgID, id).First(&appointment).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NewNotFoundError("appointment not found", id.String())
			}
			return fmt.Errorf("load appointment: %w", err)
		}
		if err := scheduling.Transition(scheduling.AppointmentStatus(appointment.Status), to); err != nil {
			return err
		}

		now := s.now().UTC()
		appointment.Status = string(to)
		updates := map[string]interface{}{"status": string(to)}
		if to == scheduling.StatusCancelled {
			appointment.CancelledAt = &now
			updates["cancelled_at"] = now
		} else {
			appointment.CompletedAt = &now
			updates["completed_at"] = now
		}
		if err := tx.Model(&appointment).Updates(updates).Error; err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}

		if to == scheduling.StatusCompleted {
			err := tx.Model(&models.Customer{}).Where("id = ?", appointment.CustomerID).
				Updates(map[string]interface{}{
					"total_visits": gorm.Expr("total_visits + ?", 1),
					"last_visit":   appointment.StartsAt,
				}).Error
			if err != nil {
				return fmt.Errorf("update customer: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}
