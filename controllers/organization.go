package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookingpro-backend/apperror"
	"bookingpro-backend/config"
	"bookingpro-backend/models"
	"bookingpro-backend/scheduling"
	"bookingpro-backend/services"
	"bookingpro-backend/utils"
)

type UpdateOrganizationInput struct {
	Name         *string `json:"name"`
	Address      *string `json:"address"`
	Phone        *string `json:"phone"`
	Timezone     *string `json:"timezone"`
	TemplateType *string `json:"templateType"`
}

type BookingRulesInput struct {
	BufferMinutes          int    `json:"bufferMinutes"`
	SlotGranularityMinutes int    `json:"slotGranularityMinutes"`
	BufferPolicy           string `json:"bufferPolicy"`
}

type NotificationSettingsInput struct {
	AppointmentReminders  bool `json:"appointmentReminders"`
	WhatsAppNotifications bool `json:"whatsAppNotifications"`
	SMSNotifications      bool `json:"smsNotifications"`
}

type OrganizationController struct {
	Plans scheduling.PlanTable
}

// currentOrganization loads the caller's organization or writes the error.
func currentOrganization(c *gin.Context) (*models.Organization, bool) {
	orgID, ok := organizationID(c)
	if !ok {
		return nil, false
	}
	var org models.Organization
	if err := config.DB.WithContext(c.Request.Context()).First(&org, "id = ?", orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Organization not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &org, true
}

func saveOrganization(c *gin.Context, org *models.Organization, message string) {
	if err := config.DB.WithContext(c.Request.Context()).Omit(clause.Associations).Save(org).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update organization")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, org, message)
}

func (oc *OrganizationController) GetOrganization(c *gin.Context) {
	org, ok := currentOrganization(c)
	if !ok {
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, org)
}

func (oc *OrganizationController) UpdateOrganization(c *gin.Context) {
	var input UpdateOrganizationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}
	org, ok := currentOrganization(c)
	if !ok {
		return
	}

	if input.Name != nil {
		org.Name = *input.Name
	}
	if input.Address != nil {
		org.Address = *input.Address
	}
	if input.Phone != nil {
		phone := utils.CleanPhone(*input.Phone)
		if phone != "" && !utils.ValidatePhone(phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		org.Phone = phone
	}
	if input.Timezone != nil {
		if _, err := time.LoadLocation(*input.Timezone); err != nil || *input.Timezone == "" {
			utils.RespondWithAppError(c, apperror.NewValidationError("unknown timezone", *input.Timezone))
			return
		}
		org.Timezone = *input.Timezone
	}
	if input.TemplateType != nil {
		if !scheduling.TemplateType(*input.TemplateType).Valid() {
			utils.RespondWithAppError(c, apperror.NewValidationError("unknown template type", *input.TemplateType))
			return
		}
		org.TemplateType = *input.TemplateType
	}

	saveOrganization(c, org, "Organization updated")
}

func (oc *OrganizationController) UpdateBusinessHours(c *gin.Context) {
	var input struct {
		BusinessHours scheduling.BusinessHours `json:"businessHours"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}
	if _, err := scheduling.Validate(input.BusinessHours); err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	org, ok := currentOrganization(c)
	if !ok {
		return
	}

	org.BusinessHours = models.NewJSONB(input.BusinessHours)
	saveOrganization(c, org, "Business hours updated")
}

func (oc *OrganizationController) UpdateBookingRules(c *gin.Context) {
	var input BookingRulesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}
	policy := scheduling.BufferPolicy(input.BufferPolicy)
	if err := scheduling.ValidateBookingRules(input.BufferMinutes, input.SlotGranularityMinutes, policy); err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	org, ok := currentOrganization(c)
	if !ok {
		return
	}

	org.BufferMinutes = input.BufferMinutes
	org.SlotGranularityMinutes = input.SlotGranularityMinutes
	if policy != "" {
		org.BufferPolicy = string(policy)
	}
	saveOrganization(c, org, "Booking rules updated")
}

func (oc *OrganizationController) UpdateNotifications(c *gin.Context) {
	var input NotificationSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}
	org, ok := currentOrganization(c)
	if !ok {
		return
	}

	org.AppointmentReminders = input.AppointmentReminders
	org.WhatsAppNotifications = input.WhatsAppNotifications
	org.SMSNotifications = input.SMSNotifications
	saveOrganization(c, org, "Notification settings updated")
}

// UpdatePlan switches plans and re-derives the limits. A downgrade below the
// organization's current resources or users is refused.
func (oc *OrganizationController) UpdatePlan(c *gin.Context) {
	var input struct {
		Plan string `json:"plan" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}
	org, ok := currentOrganization(c)
	if !ok {
		return
	}

	plan := scheduling.Plan(input.Plan)
	if err := services.CheckPlanChange(config.DB.WithContext(c.Request.Context()), org, oc.Plans, plan); err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	if err := org.ApplyPlan(oc.Plans, plan); err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	saveOrganization(c, org, "Plan updated")
}

// ArchiveOrganization soft-deletes the organization. Its public page and
// reminders stop; the data is kept.
func (oc *OrganizationController) ArchiveOrganization(c *gin.Context) {
	org, ok := currentOrganization(c)
	if !ok {
		return
	}
	if err := config.DB.WithContext(c.Request.Context()).Delete(org).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to archive organization")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, nil, "Organization archived")
}
