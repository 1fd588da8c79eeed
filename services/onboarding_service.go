package services

import (
	"context"
	"encoding/json"
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

// OnboardingService stores a user's onboarding progress and applies each
// step's payload to the user's organization.
type OnboardingService struct {
	db    *gorm.DB
	plans scheduling.PlanTable
	now   func() time.Time
}

func NewOnboardingService(db *gorm.DB, plans scheduling.PlanTable) *OnboardingService {
	return &OnboardingService{db: db, plans: plans, now: time.Now}
}

func (s *OnboardingService) Get(ctx context.Context, userID uuid.UUID) (scheduling.OnboardingStatus, error) {
	user, err := loadUser(s.db.WithContext(ctx), userID)
	if err != nil {
		return scheduling.OnboardingStatus{}, err
	}
	return user.Onboarding.Data, nil
}

// IsCompleted reports whether the user has finished onboarding.
func (s *OnboardingService) IsCompleted(ctx context.Context, userID uuid.UUID) (bool, error) {
	status, err := s.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return status.IsCompleted, nil
}

// SubmitStep decodes raw as the payload of stepNumber, advances the
// onboarding status and applies the payload to the organization in the
// same transaction.
func (s *OnboardingService) SubmitStep(ctx context.Context, userID uuid.UUID, stepNumber int, raw json.RawMessage) (scheduling.OnboardingStatus, error) {
	name, ok := scheduling.StepNameOf(stepNumber)
	if !ok {
		return scheduling.OnboardingStatus{}, apperror.NewValidationError("unknown onboarding step", fmt.Sprintf("step %d", stepNumber))
	}
	data, err := scheduling.DecodeStepData(name, raw)
	if err != nil {
		return scheduling.OnboardingStatus{}, apperror.NewValidationError("invalid step data", err.Error())
	}

	var status scheduling.OnboardingStatus
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := loadUser(lockRow(tx), userID)
		if err != nil {
			return err
		}

		next, err := scheduling.CompleteStep(user.Onboarding.Data, stepNumber, data, s.now())
		if err != nil {
			return err
		}
		status = next
		if scheduling.SameStatus(next, user.Onboarding.Data) {
			return nil
		}

		org, err := loadOrganization(tx, user.OrganizationID)
		if err != nil {
			return err
		}
		if err := s.apply(tx, org, data); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(org).Error; err != nil {
			return fmt.Errorf("save organization: %w", err)
		}

		err = tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("onboarding", models.NewJSONB(next)).Error
		if err != nil {
			return fmt.Errorf("save onboarding: %w", err)
		}
		return nil
	})
	if err != nil {
		return scheduling.OnboardingStatus{}, err
	}
	return status, nil
}

// Reset discards the user's progress. Settings already applied to the
// organization are kept.
func (s *OnboardingService) Reset(ctx context.Context, userID uuid.UUID) (scheduling.OnboardingStatus, error) {
	status := scheduling.Reset(s.now())
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Update("onboarding", models.NewJSONB(status))
	if res.Error != nil {
		return scheduling.OnboardingStatus{}, fmt.Errorf("reset onboarding: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return scheduling.OnboardingStatus{}, apperror.NewNotFoundError("user not found")
	}
	return status, nil
}

func (s *OnboardingService) apply(tx *gorm.DB, org *models.Organization, data scheduling.StepData) error {
	switch d := data.(type) {
	case scheduling.IndustrySelection:
		org.TemplateType = string(d.Industry)
	case scheduling.OrganizationSetup:
		org.Name = d.Name
		org.Address = d.Address
		org.Phone = d.Phone
		org.Timezone = d.Timezone
	case scheduling.BusinessConfiguration:
		org.BusinessHours = models.NewJSONB(d.BusinessHours)
		org.BufferMinutes = d.BufferMinutes
		org.SlotGranularityMinutes = d.SlotGranularityMinutes
		if d.BufferPolicy != "" {
			org.BufferPolicy = string(d.BufferPolicy)
		}
	case scheduling.PlanSelection:
		if err := CheckPlanChange(tx, org, s.plans, d.Plan); err != nil {
			return err
		}
		return org.ApplyPlan(s.plans, d.Plan)
	}
	return nil
}

func loadUser(db *gorm.DB, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("user not found")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}
