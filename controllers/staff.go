package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookingpro-backend/config"
	"bookingpro-backend/models"
	"bookingpro-backend/scheduling"
	"bookingpro-backend/utils"
)

type AddStaffInput struct {
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type UpdateStaffInput struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"isActive"`
}

// StaffController manages the users of an organization. Only owners may
// call it; the routes enforce that.
type StaffController struct {
	Validator *scheduling.BookingValidator
}

func (sc *StaffController) GetStaff(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}

	users := make([]models.User, 0)
	if err := config.DB.WithContext(c.Request.Context()).
		Where("organization_id = ?", orgID).Order("created_at").Find(&users).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve staff")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, users)
}

// AddStaff creates a staff user within the plan's user limit.
func (sc *StaffController) AddStaff(c *gin.Context) {
	var input AddStaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	input.Phone = utils.CleanPhone(input.Phone)
	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}
	org, ok := currentOrganization(c)
	if !ok {
		return
	}
	db := config.DB.WithContext(c.Request.Context())

	var count int64
	if err := db.Model(&models.User{}).Where("organization_id = ?", org.ID).Count(&count).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if err := sc.Validator.CheckUserQuota(org.Tenant(nil), int(count)); err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	var existing models.User
	if err := db.Unscoped().Where("email = ?", input.Email).First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email already registered")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	// Staff join an organization that is already set up.
	now := time.Now().UTC()
	onboarding := scheduling.NewOnboardingStatus(now)
	onboarding.IsCompleted = true
	onboarding.CurrentStep = scheduling.TotalOnboardingSteps + 1
	onboarding.CompletedAt = &now

	user := models.User{
		Email:          input.Email,
		Phone:          input.Phone,
		Name:           input.Name,
		Password:       input.Password,
		Role:           models.RoleStaff,
		OrganizationID: org.ID,
		Onboarding:     models.NewJSONB(onboarding),
		IsActive:       true,
	}
	if err := db.Omit(clause.Associations).Create(&user).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to add staff member")
		return
	}

	utils.RespondWithSuccess(c, http.StatusCreated, user)
}

func findStaff(c *gin.Context) (*models.User, bool) {
	orgID, ok := organizationID(c)
	if !ok {
		return nil, false
	}
	id, ok := paramID(c, "staff")
	if !ok {
		return nil, false
	}

	var user models.User
	if err := config.DB.WithContext(c.Request.Context()).
		Where("organization_id = ? AND id = ?", orgID, id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Staff member not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &user, true
}

func (sc *StaffController) UpdateStaff(c *gin.Context) {
	var input UpdateStaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}
	user, ok := findStaff(c)
	if !ok {
		return
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Phone != nil {
		phone := utils.CleanPhone(*input.Phone)
		if phone != "" && !utils.ValidatePhone(phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		user.Phone = phone
	}
	if input.IsActive != nil {
		if user.Role == models.RoleOwner && !*input.IsActive {
			utils.RespondWithError(c, http.StatusBadRequest, "The owner cannot be deactivated")
			return
		}
		user.IsActive = *input.IsActive
	}

	if err := config.DB.WithContext(c.Request.Context()).Omit(clause.Associations).Save(user).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update staff member")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, user)
}

func (sc *StaffController) DeleteStaff(c *gin.Context) {
	user, ok := findStaff(c)
	if !ok {
		return
	}
	if user.Role == models.RoleOwner {
		utils.RespondWithError(c, http.StatusBadRequest, "The owner cannot be removed")
		return
	}
	if err := config.DB.WithContext(c.Request.Context()).Delete(user).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to remove staff member")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, nil, "Staff member removed")
}
