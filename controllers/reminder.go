// controllers/reminder.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bookingpro-backend/config"
	"bookingpro-backend/models"
	"bookingpro-backend/utils"
)

// CreateReminderTemplateInput defines the expected JSON structure
type CreateReminderTemplateInput struct {
	Type    string `json:"type" binding:"required,oneof=appointment_reminder booking_confirmation"`
	Message string `json:"message" binding:"required"`
}

// UpdateReminderTemplateInput defines the expected JSON structure
type UpdateReminderTemplateInput struct {
	Message  *string `json:"message"`
	IsActive *bool   `json:"isActive"`
}

// CreateReminderTemplate creates a template for a type the organization
// does not have yet, e.g. after deleting the default one.
func CreateReminderTemplate(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}

	var input CreateReminderTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	db := config.DB.WithContext(c.Request.Context())

	// Check if template type already exists for this organization
	var existing models.ReminderTemplate
	if err := db.Where("organization_id = ? AND type = ?", orgID, input.Type).
		First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Template for this type already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	template := models.ReminderTemplate{
		OrganizationID: orgID,
		Type:           input.Type,
		Message:        input.Message,
		IsActive:       true,
	}
	if err := db.Create(&template).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create template")
		return
	}

	utils.RespondWithSuccess(c, http.StatusCreated, template)
}

// GetReminderTemplates retrieves all reminder templates of the organization
func GetReminderTemplates(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}

	templates := make([]models.ReminderTemplate, 0)
	if err := config.DB.WithContext(c.Request.Context()).
		Where("organization_id = ?", orgID).Order("type").Find(&templates).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve templates")
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, templates)
}

func findReminderTemplate(c *gin.Context) (*models.ReminderTemplate, bool) {
	orgID, ok := organizationID(c)
	if !ok {
		return nil, false
	}
	id, ok := paramID(c, "template")
	if !ok {
		return nil, false
	}

	var template models.ReminderTemplate
	if err := config.DB.WithContext(c.Request.Context()).
		Where("organization_id = ? AND id = ?", orgID, id).First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Template not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &template, true
}

// GetReminderTemplate retrieves a specific template by ID
func GetReminderTemplate(c *gin.Context) {
	template, ok := findReminderTemplate(c)
	if !ok {
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, template)
}

// UpdateReminderTemplate changes the message or switches the template off.
// The message may use [CustomerName], [Organization], [Date] and [Time].
func UpdateReminderTemplate(c *gin.Context) {
	var input UpdateReminderTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	template, ok := findReminderTemplate(c)
	if !ok {
		return
	}

	if input.Message != nil {
		if *input.Message == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Message cannot be empty")
			return
		}
		template.Message = *input.Message
	}
	if input.IsActive != nil {
		template.IsActive = *input.IsActive
	}

	if err := config.DB.WithContext(c.Request.Context()).Save(template).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update template")
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, template)
}

// DeleteReminderTemplate deletes a template. Messages of its type stop
// being sent.
func DeleteReminderTemplate(c *gin.Context) {
	template, ok := findReminderTemplate(c)
	if !ok {
		return
	}
	if err := config.DB.WithContext(c.Request.Context()).Delete(template).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete template")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, nil, "Template deleted successfully")
}
