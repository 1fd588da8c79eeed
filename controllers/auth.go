package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookingpro-backend/config"
	"bookingpro-backend/models"
	"bookingpro-backend/scheduling"
	"bookingpro-backend/utils"
)

type RegisterInput struct {
	Email            string `json:"email" binding:"required,email"`
	Phone            string `json:"phone" binding:"required"`
	Name             string `json:"name" binding:"required"`
	Password         string `json:"password" binding:"required,min=8"`
	OrganizationName string `json:"organizationName" binding:"required"`
	Timezone         string `json:"timezone"`
}

type LoginInput struct {
	Identifier string `json:"identifier" binding:"required"` // Can be email or phone
	Password   string `json:"password" binding:"required"`
}

type AuthController struct {
	Plans scheduling.PlanTable
}

// Register creates an organization on the free plan together with its
// owner, a fresh onboarding status and the default reminder templates.
func (ac *AuthController) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	input.Phone = utils.CleanPhone(input.Phone)
	if !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return
	}
	if input.Timezone == "" {
		input.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(input.Timezone); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Unknown timezone")
		return
	}

	db := config.DB.WithContext(c.Request.Context())

	// Check if email or phone already exists
	var existing models.User
	result := db.Where("email = ? OR phone = ?", input.Email, input.Phone).First(&existing)
	if result.Error == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email or phone already registered")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	org := models.Organization{
		Name:                   input.OrganizationName,
		Phone:                  input.Phone,
		TemplateType:           string(scheduling.TemplateBeautySalon),
		Timezone:               input.Timezone,
		BusinessHours:          models.NewJSONB(scheduling.DefaultBusinessHours()),
		BufferMinutes:          0,
		BufferPolicy:           string(scheduling.BufferAfter),
		SlotGranularityMinutes: 30,
		AppointmentReminders:   true,
		SMSNotifications:       true,
	}
	if err := org.ApplyPlan(ac.Plans, scheduling.PlanFree); err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	user := models.User{
		Email:      input.Email,
		Phone:      input.Phone,
		Name:       input.Name,
		Password:   input.Password, // Will be hashed in BeforeCreate hook
		Role:       models.RoleOwner,
		Onboarding: models.NewJSONB(scheduling.NewOnboardingStatus(time.Now().UTC())),
		IsActive:   true,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		slug, err := uniqueSlug(tx, input.OrganizationName)
		if err != nil {
			return err
		}
		org.Slug = slug
		if err := tx.Omit(clause.Associations).Create(&org).Error; err != nil {
			return err
		}
		user.OrganizationID = org.ID
		if err := tx.Omit(clause.Associations).Create(&user).Error; err != nil {
			return err
		}
		templates := models.DefaultReminderTemplates(org.ID)
		return tx.Create(&templates).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create account")
		return
	}

	token, err := issueToken(c, &user)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	utils.RespondWithSuccess(c, http.StatusCreated, gin.H{
		"token":        token,
		"user":         user,
		"organization": org,
	}, "Registration successful")
}

func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	identifier := strings.TrimSpace(input.Identifier)
	db := config.DB.WithContext(c.Request.Context())

	var user models.User
	result := db.Where("(email = ? OR phone = ?) AND is_active = ?", identifier, utils.CleanPhone(identifier), true).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := issueToken(c, &user)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	now := time.Now()
	db.Model(&user).Update("last_login", &now)

	utils.RespondWithSuccess(c, http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

func (ac *AuthController) Me(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	var user models.User
	if err := config.DB.WithContext(c.Request.Context()).Preload("Organization").First(&user, "id = ?", id).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, gin.H{
		"user":         user,
		"organization": user.Organization,
	})
}

// issueToken signs a token for the user and sets it as the auth cookie.
func issueToken(c *gin.Context, user *models.User) (string, error) {
	token, err := utils.GenerateToken(user.ID.String(), user.OrganizationID.String(), user.Role)
	if err != nil {
		return "", err
	}
	c.SetCookie("token", token, utils.TokenMaxAge(), "/", "", true, true)
	return token, nil
}

// uniqueSlug derives a public page slug from the organization name,
// suffixing it when the plain form is taken.
func uniqueSlug(tx *gorm.DB, name string) (string, error) {
	base := utils.Slugify(name)
	if base == "" {
		base = "organization"
	}
	slug := base
	for i := 0; i < 5; i++ {
		var count int64
		if err := tx.Unscoped().Model(&models.Organization{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%s", base, uuid.NewString()[:6])
	}
	return "", errors.New("could not allocate a unique slug")
}
