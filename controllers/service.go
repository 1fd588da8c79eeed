// controllers/service.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookingpro-backend/config"
	"bookingpro-backend/models"
	"bookingpro-backend/utils"
)

// CreateServiceInput defines the expected JSON structure for creating a service
type CreateServiceInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"min=0"`
	Duration    int     `json:"duration" binding:"required,min=1,max=1440"` // in minutes
	Category    string  `json:"category"`
}

// UpdateServiceInput defines the expected JSON structure for updating a service
type UpdateServiceInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,min=0"`
	Duration    *int     `json:"duration" binding:"omitempty,min=1,max=1440"`
	Category    *string  `json:"category"`
	IsActive    *bool    `json:"isActive"`
}

// CreateService adds a bookable service to the organization
func CreateService(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}

	var input CreateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	service := models.Service{
		OrganizationID: orgID,
		Name:           input.Name,
		Description:    input.Description,
		Price:          input.Price,
		Duration:       input.Duration,
		Category:       input.Category,
		IsActive:       true,
	}
	if service.Category == "" {
		service.Category = "General"
	}

	if err := config.DB.WithContext(c.Request.Context()).Omit(clause.Associations).Create(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create service")
		return
	}

	utils.RespondWithSuccess(c, http.StatusCreated, service)
}

// GetServices lists the organization's services
func GetServices(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}

	services := make([]models.Service, 0)
	if err := config.DB.WithContext(c.Request.Context()).
		Where("organization_id = ?", orgID).Order("name").Find(&services).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, services)
}

func findService(c *gin.Context) (*models.Service, bool) {
	orgID, ok := organizationID(c)
	if !ok {
		return nil, false
	}
	id, ok := paramID(c, "service")
	if !ok {
		return nil, false
	}

	var service models.Service
	if err := config.DB.WithContext(c.Request.Context()).
		Where("organization_id = ? AND id = ?", orgID, id).First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &service, true
}

// GetService retrieves a specific service by ID
func GetService(c *gin.Context) {
	service, ok := findService(c)
	if !ok {
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, service)
}

// UpdateService updates an existing service. A new duration applies to
// future bookings only.
func UpdateService(c *gin.Context) {
	var input UpdateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	service, ok := findService(c)
	if !ok {
		return
	}

	if input.Name != nil {
		service.Name = *input.Name
	}
	if input.Description != nil {
		service.Description = *input.Description
	}
	if input.Price != nil {
		service.Price = *input.Price
	}
	if input.Duration != nil {
		service.Duration = *input.Duration
	}
	if input.Category != nil {
		service.Category = *input.Category
	}
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}

	if err := config.DB.WithContext(c.Request.Context()).Omit(clause.Associations).Save(service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update service")
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, service)
}

// DeleteService soft deletes a service
func DeleteService(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "service")
	if !ok {
		return
	}

	result := config.DB.WithContext(c.Request.Context()).
		Where("organization_id = ? AND id = ?", orgID, id).Delete(&models.Service{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete service")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, nil, "Service deleted successfully")
}
