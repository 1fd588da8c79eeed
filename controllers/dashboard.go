package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bookingpro-backend/config"
	"bookingpro-backend/models"
	"bookingpro-backend/scheduling"
	"bookingpro-backend/utils"
)

const upcomingLimit = 5

type DashboardOverview struct {
	TodayAppointments    int                   `json:"todayAppointments"`
	MonthAppointments    int                   `json:"monthAppointments"`
	TotalCustomers       int                   `json:"totalCustomers"`
	Usage                PlanUsage             `json:"usage"`
	UpcomingAppointments []UpcomingAppointment `json:"upcomingAppointments"`
	RecentCustomers      []RecentCustomer      `json:"recentCustomers"`
}

// PlanUsage compares current consumption against the plan limits.
type PlanUsage struct {
	Plan                    string `json:"plan"`
	Appointments            int    `json:"appointments"`
	MaxAppointmentsPerMonth int    `json:"maxAppointmentsPerMonth"`
	Resources               int    `json:"resources"`
	MaxResources            int    `json:"maxResources"`
	Users                   int    `json:"users"`
	MaxUsers                int    `json:"maxUsers"`
}

type UpcomingAppointment struct {
	ID         string `json:"id"`
	ClientName string `json:"clientName"`
	Service    string `json:"service"`
	Resource   string `json:"resource"`
	Day        string `json:"day"`  // e.g. "Today", "Tomorrow", "In 3 days"
	Time       string `json:"time"` // local wall clock
}

type RecentCustomer struct {
	Name      string `json:"name"`
	VisitDate string `json:"visitDate"` // e.g. "Today", "Yesterday"
}

func GetDashboardOverview(c *gin.Context) {
	org, ok := currentOrganization(c)
	if !ok {
		return
	}
	db := config.DB.WithContext(c.Request.Context())
	loc := org.Location()
	now := time.Now().UTC()

	today := scheduling.DateOf(now, loc)
	dayStart := today.Midnight(loc).UTC()
	dayEnd := today.AddDays(1).Midnight(loc).UTC()
	monthStart, monthEnd := org.MonthBounds(now)

	var todayCount, monthCount, customers, resources, users int64
	db.Model(&models.Appointment{}).
		Where("organization_id = ? AND status <> ? AND starts_at >= ? AND starts_at < ?",
			org.ID, scheduling.StatusCancelled, dayStart, dayEnd).
		Count(&todayCount)
	db.Model(&models.Appointment{}).
		Where("organization_id = ? AND status <> ? AND starts_at >= ? AND starts_at < ?",
			org.ID, scheduling.StatusCancelled, monthStart.UTC(), monthEnd.UTC()).
		Count(&monthCount)
	db.Model(&models.Customer{}).Where("organization_id = ?", org.ID).Count(&customers)
	db.Model(&models.Resource{}).Where("organization_id = ?", org.ID).Count(&resources)
	db.Model(&models.User{}).Where("organization_id = ?", org.ID).Count(&users)

	var upcoming []models.Appointment
	if err := db.Preload("Service").Preload("Resource").
		Where("organization_id = ? AND status = ? AND starts_at >= ?", org.ID, scheduling.StatusScheduled, now).
		Order("starts_at").Limit(upcomingLimit).Find(&upcoming).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load appointments")
		return
	}

	upcomingList := make([]UpcomingAppointment, 0, len(upcoming))
	for _, a := range upcoming {
		local := a.StartsAt.In(loc)
		upcomingList = append(upcomingList, UpcomingAppointment{
			ID:         a.ID.String(),
			ClientName: a.ClientName,
			Service:    a.Service.Name,
			Resource:   a.Resource.Name,
			Day:        utils.RelativeDay(now, local),
			Time:       local.Format("15:04"),
		})
	}

	// Recent customers (last 3 visits)
	var recent []models.Customer
	db.Where("organization_id = ? AND last_visit IS NOT NULL", org.ID).
		Order("last_visit DESC").Limit(3).Find(&recent)
	recentList := make([]RecentCustomer, 0, len(recent))
	for _, r := range recent {
		recentList = append(recentList, RecentCustomer{
			Name:      r.Name,
			VisitDate: utils.RelativeDay(now, r.LastVisit.In(loc)),
		})
	}

	utils.RespondWithSuccess(c, http.StatusOK, DashboardOverview{
		TodayAppointments: int(todayCount),
		MonthAppointments: int(monthCount),
		TotalCustomers:    int(customers),
		Usage: PlanUsage{
			Plan:                    org.Plan,
			Appointments:            int(monthCount),
			MaxAppointmentsPerMonth: org.MaxAppointmentsPerMonth,
			Resources:               int(resources),
			MaxResources:            org.MaxResources,
			Users:                   int(users),
			MaxUsers:                org.MaxUsers,
		},
		UpcomingAppointments: upcomingList,
		RecentCustomers:      recentList,
	})
}
