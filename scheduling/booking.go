package scheduling

import (
	"fmt"

	"github.com/google/uuid"

	"bookingpro-backend/apperror"
)

// Tenant is the slice of an organization the validator needs.
type Tenant struct {
	ID          uuid.UUID
	Plan        Plan
	ResourceIDs []uuid.UUID
}

func (t Tenant) ownsResource(id uuid.UUID) bool {
	for _, r := range t.ResourceIDs {
		if r == id {
			return true
		}
	}
	return false
}

// BookingValidator decides whether a candidate appointment may be accepted.
type BookingValidator struct {
	plans PlanTable
}

func NewBookingValidator(plans PlanTable) *BookingValidator {
	return &BookingValidator{plans: plans}
}

// Validate runs the booking checks in order and returns the first failure:
// unknown resource (NotFound), candidate not among the computed slots
// (SlotUnavailable), monthly appointment quota reached (QuotaExceeded).
// A nil error means the candidate is accepted for the given inputs.
func (v *BookingValidator) Validate(candidate Slot, computed []Slot, tenant Tenant, monthCount int) error {
	if !tenant.ownsResource(candidate.ResourceID) {
		return apperror.NewNotFoundError("resource not found", candidate.ResourceID.String())
	}

	if !containsSlot(computed, candidate) {
		return apperror.NewSlotUnavailableError("requested time is not available",
			fmt.Sprintf("%s %s-%s", candidate.Date, candidate.Start, candidate.End))
	}

	return v.CheckAppointmentQuota(tenant, monthCount)
}

// CheckAppointmentQuota fails when the month already holds the plan's
// maximum number of appointments.
func (v *BookingValidator) CheckAppointmentQuota(tenant Tenant, monthCount int) error {
	limits, err := v.plans.Limits(tenant.Plan)
	if err != nil {
		return err
	}
	if monthCount >= limits.MaxAppointmentsPerMonth {
		return apperror.NewQuotaExceededError("monthly appointment limit reached",
			fmt.Sprintf("%d of %d used on plan %s", monthCount, limits.MaxAppointmentsPerMonth, tenant.Plan))
	}
	return nil
}

// CheckResourceQuota fails when the tenant cannot add another resource.
func (v *BookingValidator) CheckResourceQuota(tenant Tenant, current int) error {
	limits, err := v.plans.Limits(tenant.Plan)
	if err != nil {
		return err
	}
	if current >= limits.MaxResources {
		return apperror.NewQuotaExceededError("resource limit reached",
			fmt.Sprintf("%d of %d used on plan %s", current, limits.MaxResources, tenant.Plan))
	}
	return nil
}

// CheckUserQuota fails when the tenant cannot add another user.
func (v *BookingValidator) CheckUserQuota(tenant Tenant, current int) error {
	limits, err := v.plans.Limits(tenant.Plan)
	if err != nil {
		return err
	}
	if current >= limits.MaxUsers {
		return apperror.NewQuotaExceededError("user limit reached",
			fmt.Sprintf("%d of %d used on plan %s", current, limits.MaxUsers, tenant.Plan))
	}
	return nil
}

func containsSlot(slots []Slot, s Slot) bool {
	for _, c := range slots {
		if c == s {
			return true
		}
	}
	return false
}
