package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bookingpro-backend/config"
	"bookingpro-backend/models"
	"bookingpro-backend/scheduling"
	"bookingpro-backend/utils"
)

type CreateResourceInput struct {
	Name        string `json:"name" binding:"required"`
	Kind        string `json:"kind" binding:"required,oneof=professional equipment room"`
	Description string `json:"description"`
}

type UpdateResourceInput struct {
	Name        *string `json:"name"`
	Kind        *string `json:"kind" binding:"omitempty,oneof=professional equipment room"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

type ResourceController struct {
	Validator *scheduling.BookingValidator
}

// CreateResource adds a bookable resource within the plan's limit.
func (rc *ResourceController) CreateResource(c *gin.Context) {
	var input CreateResourceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	org, ok := currentOrganization(c)
	if !ok {
		return
	}
	db := config.DB.WithContext(c.Request.Context())

	var count int64
	if err := db.Model(&models.Resource{}).Where("organization_id = ?", org.ID).Count(&count).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if err := rc.Validator.CheckResourceQuota(org.Tenant(nil), int(count)); err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	resource := models.Resource{
		OrganizationID: org.ID,
		Name:           input.Name,
		Kind:           input.Kind,
		Description:    input.Description,
		IsActive:       true,
	}
	if err := db.Create(&resource).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create resource")
		return
	}

	utils.RespondWithSuccess(c, http.StatusCreated, resource)
}

func (rc *ResourceController) GetResources(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}

	resources := make([]models.Resource, 0)
	if err := config.DB.WithContext(c.Request.Context()).
		Where("organization_id = ?", orgID).Order("name").Find(&resources).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve resources")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, resources)
}

func findResource(c *gin.Context) (*models.Resource, bool) {
	orgID, ok := organizationID(c)
	if !ok {
		return nil, false
	}
	id, ok := paramID(c, "resource")
	if !ok {
		return nil, false
	}

	var resource models.Resource
	if err := config.DB.WithContext(c.Request.Context()).
		Where("organization_id = ? AND id = ?", orgID, id).First(&resource).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Resource not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &resource, true
}

func (rc *ResourceController) GetResource(c *gin.Context) {
	resource, ok := findResource(c)
	if !ok {
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, resource)
}

func (rc *ResourceController) UpdateResource(c *gin.Context) {
	var input UpdateResourceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	resource, ok := findResource(c)
	if !ok {
		return
	}

	if input.Name != nil {
		resource.Name = *input.Name
	}
	if input.Kind != nil {
		resource.Kind = *input.Kind
	}
	if input.Description != nil {
		resource.Description = *input.Description
	}
	if input.IsActive != nil {
		resource.IsActive = *input.IsActive
	}
	if err := config.DB.WithContext(c.Request.Context()).Save(resource).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update resource")
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, resource)
}

// DeleteResource soft deletes a resource. Its existing appointments stay.
func (rc *ResourceController) DeleteResource(c *gin.Context) {
	resource, ok := findResource(c)
	if !ok {
		return
	}
	if err := config.DB.WithContext(c.Request.Context()).Delete(resource).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete resource")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, nil, "Resource deleted successfully")
}
