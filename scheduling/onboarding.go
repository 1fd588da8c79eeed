package scheduling

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"bookingpro-backend/apperror"
)

// TemplateType is the kind of business an organization runs. It selects
// default services and wording on the booking page.
type TemplateType string

const (
	TemplateBeautySalon      TemplateType = "beauty_salon"
	TemplateHyperbaricCenter TemplateType = "hyperbaric_center"
)

func (t TemplateType) Valid() bool {
	return t == TemplateBeautySalon || t == TemplateHyperbaricCenter
}

// StepName identifies an onboarding step.
type StepName string

const (
	StepIndustrySelection     StepName = "industry_selection"
	StepOrganizationSetup     StepName = "organization_setup"
	StepBusinessConfiguration StepName = "business_configuration"
	StepPlanSelection         StepName = "plan_selection"
)

// onboardingSteps lists steps in order; step N is onboardingSteps[N-1].
var onboardingSteps = []StepName{
	StepIndustrySelection,
	StepOrganizationSetup,
	StepBusinessConfiguration,
	StepPlanSelection,
}

// TotalOnboardingSteps is the number of steps to complete onboarding.
var TotalOnboardingSteps = len(onboardingSteps)

// StepNameOf returns the name of a 1-based step number.
func StepNameOf(stepNumber int) (StepName, bool) {
	if stepNumber < 1 || stepNumber > len(onboardingSteps) {
		return "", false
	}
	return onboardingSteps[stepNumber-1], true
}

// StepData is the payload of one onboarding step. Each step has exactly
// one payload type.
type StepData interface {
	Step() StepName
	Validate() error
}

type IndustrySelection struct {
	Industry TemplateType `json:"industry"`
}

func (IndustrySelection) Step() StepName { return StepIndustrySelection }

func (d IndustrySelection) Validate() error {
	if !d.Industry.Valid() {
		return fmt.Errorf("unknown industry %q", d.Industry)
	}
	return nil
}

type OrganizationSetup struct {
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Timezone string `json:"timezone"`
}

func (OrganizationSetup) Step() StepName { return StepOrganizationSetup }

func (d OrganizationSetup) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if d.Timezone == "" {
		return fmt.Errorf("timezone is required")
	}
	if _, err := time.LoadLocation(d.Timezone); err != nil {
		return fmt.Errorf("unknown timezone %q", d.Timezone)
	}
	return nil
}

type BusinessConfiguration struct {
	BusinessHours          BusinessHours `json:"businessHours"`
	BufferMinutes          int           `json:"bufferMinutes"`
	SlotGranularityMinutes int           `json:"slotGranularityMinutes"`
	BufferPolicy           BufferPolicy  `json:"bufferPolicy,omitempty"`
}

func (BusinessConfiguration) Step() StepName { return StepBusinessConfiguration }

func (d BusinessConfiguration) Validate() error {
	if _, err := Validate(d.BusinessHours); err != nil {
		return err
	}
	return ValidateBookingRules(d.BufferMinutes, d.SlotGranularityMinutes, d.BufferPolicy)
}

type PlanSelection struct {
	Plan Plan `json:"plan"`
}

func (PlanSelection) Step() StepName { return StepPlanSelection }

func (d PlanSelection) Validate() error {
	if !d.Plan.Valid() {
		return fmt.Errorf("unknown plan %q", d.Plan)
	}
	return nil
}

// ValidateBookingRules checks the buffer and granularity of an organization.
func ValidateBookingRules(bufferMinutes, granularityMinutes int, policy BufferPolicy) error {
	if bufferMinutes < 0 || Minute(bufferMinutes) > MinutesPerDay {
		return apperror.NewValidationError("buffer must be between 0 and 1440 minutes")
	}
	if granularityMinutes <= 0 || Minute(granularityMinutes) > MinutesPerDay {
		return apperror.NewValidationError("slot granularity must be between 1 and 1440 minutes")
	}
	if policy != "" && !policy.Valid() {
		return apperror.NewValidationError("unknown buffer policy", string(policy))
	}
	return nil
}

// DecodeStepData decodes the JSON payload of the named step into its
// concrete type.
func DecodeStepData(name StepName, raw []byte) (StepData, error) {
	var data StepData
	switch name {
	case StepIndustrySelection:
		var d IndustrySelection
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		data = d
	case StepOrganizationSetup:
		var d OrganizationSetup
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		data = d
	case StepBusinessConfiguration:
		var d BusinessConfiguration
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		data = d
	case StepPlanSelection:
		var d PlanSelection
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		data = d
	default:
		return nil, fmt.Errorf("unknown onboarding step %q", name)
	}
	return data, nil
}

// OnboardingStep is the record of one completed step.
type OnboardingStep struct {
	StepNumber  int      `json:"stepNumber"`
	StepName    StepName `json:"stepName"`
	IsCompleted bool     `json:"isCompleted"`
	Data        StepData `json:"data,omitempty"`
}

func (s *OnboardingStep) UnmarshalJSON(b []byte) error {
	var raw struct {
		StepNumber  int             `json:"stepNumber"`
		StepName    StepName        `json:"stepName"`
		IsCompleted bool            `json:"isCompleted"`
		Data        json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	s.StepNumber = raw.StepNumber
	s.StepName = raw.StepName
	s.IsCompleted = raw.IsCompleted
	s.Data = nil
	if len(raw.Data) > 0 && string(raw.Data) != "null" {
		data, err := DecodeStepData(raw.StepName, raw.Data)
		if err != nil {
			return err
		}
		s.Data = data
	}
	return nil
}

// OnboardingStatus tracks a tenant's progress through the setup steps.
type OnboardingStatus struct {
	IsCompleted    bool             `json:"isCompleted"`
	CurrentStep    int              `json:"currentStep"`
	CompletedSteps []OnboardingStep `json:"completedSteps"`
	Industry       TemplateType     `json:"industry,omitempty"`
	StartedAt      time.Time        `json:"startedAt"`
	CompletedAt    *time.Time       `json:"completedAt,omitempty"`
}

// NewOnboardingStatus returns a status positioned on the first step.
func NewOnboardingStatus(now time.Time) OnboardingStatus {
	return OnboardingStatus{
		CurrentStep:    1,
		CompletedSteps: []OnboardingStep{},
		StartedAt:      now,
	}
}

// Reset discards all progress. Administrative only.
func Reset(now time.Time) OnboardingStatus {
	return NewOnboardingStatus(now)
}

// Step returns the record of a completed step.
func (s OnboardingStatus) Step(stepNumber int) (OnboardingStep, bool) {
	for _, st := range s.CompletedSteps {
		if st.StepNumber == stepNumber {
			return st, true
		}
	}
	return OnboardingStep{}, false
}

// CompleteStep records data for a step. The step must be the current one
// or one that was already completed, in which case its data is replaced.
// Once every step is done the status is terminal: only an identical
// re-submission is accepted, and it changes nothing.
func CompleteStep(status OnboardingStatus, stepNumber int, data StepData, now time.Time) (OnboardingStatus, error) {
	name, ok := StepNameOf(stepNumber)
	if !ok {
		return status, apperror.NewValidationError("unknown onboarding step", fmt.Sprintf("step %d", stepNumber))
	}
	if data == nil || reflect.ValueOf(data).Kind() == reflect.Ptr {
		return status, apperror.NewValidationError("step data is required", string(name))
	}
	if data.Step() != name {
		return status, apperror.NewValidationError("step data does not match step",
			fmt.Sprintf("step %d expects %s, got %s", stepNumber, name, data.Step()))
	}
	if err := data.Validate(); err != nil {
		if appErr, ok := apperror.As(err); ok {
			return status, appErr
		}
		return status, apperror.NewValidationError("invalid step data", err.Error())
	}

	idx := -1
	for i, st := range status.CompletedSteps {
		if st.StepNumber == stepNumber {
			idx = i
			break
		}
	}

	if status.IsCompleted {
		if idx >= 0 && sameJSON(status.CompletedSteps[idx].Data, data) {
			return status, nil
		}
		return status, apperror.NewValidationError("onboarding is already completed")
	}

	next := status
	next.CompletedSteps = make([]OnboardingStep, len(status.CompletedSteps), len(status.CompletedSteps)+1)
	copy(next.CompletedSteps, status.CompletedSteps)

	switch {
	case idx >= 0:
		next.CompletedSteps[idx].Data = data
	case stepNumber == status.CurrentStep:
		next.CompletedSteps = append(next.CompletedSteps, OnboardingStep{
			StepNumber:  stepNumber,
			StepName:    name,
			IsCompleted: true,
			Data:        data,
		})
		next.CurrentStep = stepNumber + 1
	default:
		return status, apperror.NewValidationError("onboarding steps must be completed in order",
			fmt.Sprintf("current step is %d, got %d", status.CurrentStep, stepNumber))
	}

	if d, ok := data.(IndustrySelection); ok {
		next.Industry = d.Industry
	}
	if next.CurrentStep > TotalOnboardingSteps {
		next.IsCompleted = true
		completedAt := now
		next.CompletedAt = &completedAt
	}
	return next, nil
}

// SameStatus reports whether two statuses are equal once stored. Stored
// statuses have been through JSON, so a nil and an empty break list are
// the same thing.
func SameStatus(a, b OnboardingStatus) bool {
	return sameJSON(a, b)
}

func sameJSON(a, b interface{}) bool {
	x, err := json.Marshal(a)
	if err != nil {
		return false
	}
	y, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(x) == string(y)
}
