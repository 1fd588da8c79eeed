package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookingpro-backend/models"
	"bookingpro-backend/scheduling"
	"bookingpro-backend/services"
	"bookingpro-backend/utils"
)

// BookingController serves the staff side of the calendar: availability,
// booking on behalf of a client and the appointment lifecycle.
type BookingController struct {
	Availability *services.AvailabilityService
	Booking      *services.BookingService
	Reminders    *services.ReminderService
	Log          *slog.Logger
}

// parseAvailabilityQuery reads serviceId, resourceId, from and days.
func parseAvailabilityQuery(c *gin.Context) (services.AvailabilityRequest, bool) {
	var req services.AvailabilityRequest

	serviceID, err := uuid.Parse(c.Query("serviceId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "serviceId is required")
		return req, false
	}
	req.ServiceID = serviceID

	if v := c.Query("resourceId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid resource ID format")
			return req, false
		}
		req.ResourceID = id
	}
	if v := c.Query("from"); v != "" {
		from, err := scheduling.ParseDate(v)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD")
			return req, false
		}
		req.From = from
	}
	if v := c.Query("days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid days")
			return req, false
		}
		req.Days = days
	}
	return req, true
}

// GetAvailability lists open slots for staff. Past slots of today are
// included so walk-ins can be recorded.
func (bc *BookingController) GetAvailability(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}
	req, ok := parseAvailabilityQuery(c)
	if !ok {
		return
	}
	req.IncludePast = true

	slots, err := bc.Availability.Slots(c.Request.Context(), orgID, req)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, slots)
}

func (bc *BookingController) GetAppointments(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}

	var filter services.AppointmentFilter
	if v := c.Query("from"); v != "" || c.Query("to") != "" {
		org, ok := currentOrganization(c)
		if !ok {
			return
		}
		loc := org.Location()
		if v != "" {
			d, err := scheduling.ParseDate(v)
			if err != nil {
				utils.RespondWithError(c, http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD")
				return
			}
			from := d.Midnight(loc)
			filter.From = &from
		}
		if v := c.Query("to"); v != "" {
			d, err := scheduling.ParseDate(v)
			if err != nil {
				utils.RespondWithError(c, http.StatusBadRequest, "Invalid to date, expected YYYY-MM-DD")
				return
			}
			// to is inclusive
			to := d.AddDays(1).Midnight(loc)
			filter.To = &to
		}
	}
	if v := c.Query("resourceId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid resource ID format")
			return
		}
		filter.ResourceID = id
	}
	if v := c.Query("status"); v != "" {
		status := scheduling.AppointmentStatus(v)
		if status != scheduling.StatusScheduled && status != scheduling.StatusCancelled && status != scheduling.StatusCompleted {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid status")
			return
		}
		filter.Status = status
	}

	appointments, err := bc.Booking.List(c.Request.Context(), orgID, filter)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, appointments)
}

func (bc *BookingController) GetAppointment(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "appointment")
	if !ok {
		return
	}

	appointment, err := bc.Booking.Get(c.Request.Context(), orgID, id)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, appointment)
}

// CreateAppointment books on behalf of a client.
func (bc *BookingController) CreateAppointment(c *gin.Context) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req services.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	req.Source = models.SourceStaff
	req.CreatedByUserID = &uid
	req.IncludePast = true

	appointment, err := bc.Booking.Book(c.Request.Context(), orgID, req)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	sendConfirmation(c, bc.Reminders, bc.Log, appointment)

	utils.RespondWithSuccess(c, http.StatusCreated, appointment, "Appointment booked")
}

func (bc *BookingController) CancelAppointment(c *gin.Context) {
	bc.transition(c, bc.Booking.Cancel, "Appointment cancelled")
}

func (bc *BookingController) CompleteAppointment(c *gin.Context) {
	bc.transition(c, bc.Booking.Complete, "Appointment completed")
}

type transitionFunc func(ctx context.Context, orgID, id uuid.UUID) (*models.Appointment, error)

func (bc *BookingController) transition(c *gin.Context, fn transitionFunc, message string) {
	orgID, ok := organizationID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "appointment")
	if !ok {
		return
	}

	appointment, err := fn(c.Request.Context(), orgID, id)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, appointment, message)
}

// sendConfirmation notifies the client of a new booking. The booking stands
// even if the message cannot be sent.
func sendConfirmation(c *gin.Context, reminders *services.ReminderService, log *slog.Logger, appointment *models.Appointment) {
	if reminders == nil {
		return
	}
	if err := reminders.SendConfirmation(c.Request.Context(), appointment); err != nil {
		if log == nil {
			log = slog.Default()
		}
		log.Warn("booking confirmation not sent",
			"appointment_id", appointment.ID,
			"organization_id", appointment.OrganizationID,
			"error", err)
	}
}
