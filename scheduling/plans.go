package scheduling

import (
	"fmt"

	"bookingpro-backend/apperror"
)

// Plan is a subscription tier.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanBasic   Plan = "basic"
	PlanPremium Plan = "premium"
)

var knownPlans = []Plan{PlanFree, PlanBasic, PlanPremium}

// Plans lists every known plan.
func Plans() []Plan {
	out := make([]Plan, len(knownPlans))
	copy(out, knownPlans)
	return out
}

func (p Plan) Valid() bool {
	for _, k := range knownPlans {
		if p == k {
			return true
		}
	}
	return false
}

// ResourceLimits are the caps a plan grants. They are always derived from
// a PlanTable and never edited on their own.
type ResourceLimits struct {
	MaxResources            int `json:"maxResources"`
	MaxAppointmentsPerMonth int `json:"maxAppointmentsPerMonth"`
	MaxUsers                int `json:"maxUsers"`
}

// PlanTable maps every plan to its limits. The zero value is empty; build
// one with NewPlanTable or DefaultPlanTable. It is never mutated after
// construction.
type PlanTable struct {
	limits map[Plan]ResourceLimits
}

// DefaultPlanTable returns the standard tiers.
func DefaultPlanTable() PlanTable {
	table, _ := NewPlanTable(map[Plan]ResourceLimits{
		PlanFree:    {MaxResources: 1, MaxAppointmentsPerMonth: 100, MaxUsers: 1},
		PlanBasic:   {MaxResources: 5, MaxAppointmentsPerMonth: 1000, MaxUsers: 2},
		PlanPremium: {MaxResources: 10, MaxAppointmentsPerMonth: 2500, MaxUsers: 10},
	})
	return table
}

// NewPlanTable copies limits into a table. Every known plan must be present
// with positive limits.
func NewPlanTable(limits map[Plan]ResourceLimits) (PlanTable, error) {
	copied := make(map[Plan]ResourceLimits, len(knownPlans))
	for _, p := range knownPlans {
		l, ok := limits[p]
		if !ok {
			return PlanTable{}, fmt.Errorf("plan table: missing plan %q", p)
		}
		if l.MaxResources <= 0 || l.MaxAppointmentsPerMonth <= 0 || l.MaxUsers <= 0 {
			return PlanTable{}, fmt.Errorf("plan table: limits of plan %q must be positive", p)
		}
		copied[p] = l
	}
	return PlanTable{limits: copied}, nil
}

// Limits returns the limits of a plan.
func (t PlanTable) Limits(p Plan) (ResourceLimits, error) {
	l, ok := t.limits[p]
	if !ok {
		return ResourceLimits{}, apperror.NewValidationError("unknown plan", string(p))
	}
	return l, nil
}
