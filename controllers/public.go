package controllers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookingpro-backend/config"
	"bookingpro-backend/models"
	"bookingpro-backend/scheduling"
	"bookingpro-backend/services"
	"bookingpro-backend/utils"
)

// PublicPage is what an anonymous visitor of /public/:slug sees.
type PublicPage struct {
	Name          string                   `json:"name"`
	Slug          string                   `json:"slug"`
	Address       string                   `json:"address"`
	Phone         string                   `json:"phone"`
	TemplateType  string                   `json:"templateType"`
	Timezone      string                   `json:"timezone"`
	BusinessHours scheduling.BusinessHours `json:"businessHours"`
	Services      []models.Service         `json:"services"`
	Resources     []models.Resource        `json:"resources"`
}

// PublicController serves the unauthenticated booking page of an
// organization, addressed by its slug.
type PublicController struct {
	Availability *services.AvailabilityService
	Booking      *services.BookingService
	Reminders    *services.ReminderService
	Log          *slog.Logger
}

func publicOrganization(c *gin.Context) (*models.Organization, bool) {
	org, err := services.LoadOrganizationBySlug(config.DB.WithContext(c.Request.Context()), c.Param("slug"))
	if err != nil {
		utils.RespondWithAppError(c, err)
		return nil, false
	}
	return org, true
}

func (pc *PublicController) GetPage(c *gin.Context) {
	org, ok := publicOrganization(c)
	if !ok {
		return
	}
	db := config.DB.WithContext(c.Request.Context())

	page := PublicPage{
		Name:          org.Name,
		Slug:          org.Slug,
		Address:       org.Address,
		Phone:         org.Phone,
		TemplateType:  org.TemplateType,
		Timezone:      org.Timezone,
		BusinessHours: org.BusinessHours.Data,
		Services:      make([]models.Service, 0),
		Resources:     make([]models.Resource, 0),
	}
	if err := db.Where("organization_id = ? AND is_active = ?", org.ID, true).Order("name").Find(&page.Services).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load services")
		return
	}
	if err := db.Where("organization_id = ? AND is_active = ?", org.ID, true).Order("name").Find(&page.Resources).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load resources")
		return
	}

	utils.RespondWithSuccess(c, http.StatusOK, page)
}

// GetAvailability lists the slots a visitor can still book.
func (pc *PublicController) GetAvailability(c *gin.Context) {
	org, ok := publicOrganization(c)
	if !ok {
		return
	}
	req, ok := parseAvailabilityQuery(c)
	if !ok {
		return
	}
	req.IncludePast = false

	slots, err := pc.Availability.Slots(c.Request.Context(), org.ID, req)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, slots)
}

func (pc *PublicController) CreateAppointment(c *gin.Context) {
	org, ok := publicOrganization(c)
	if !ok {
		return
	}

	var req services.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	req.Source = models.SourcePublic
	req.CreatedByUserID = nil
	req.IncludePast = false

	appointment, err := pc.Booking.Book(c.Request.Context(), org.ID, req)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	sendConfirmation(c, pc.Reminders, pc.Log, appointment)

	utils.RespondWithSuccess(c, http.StatusCreated, appointment, "Appointment booked")
}
