package services

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"bookingpro-backend/models"
	"bookingpro-backend/scheduling"
	"bookingpro-backend/utils"
)

func init() {
	utils.BcryptCost = 4
}

// monday is in the future relative to fixedNow.
var (
	fixedNow = time.Date(2026, time.October, 15, 8, 0, 0, 0, time.UTC)
	monday   = scheduling.Date{Year: 2026, Month: time.October, Day: 19}
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type fixture struct {
	db        *gorm.DB
	org       *models.Organization
	service   *models.Service
	resources []models.Resource
}

// newFixture creates an organization on plan with n resources and one
// 60-minute service. Buffer 15 minutes after bookings, 15-minute grid.
func newFixture(t *testing.T, plans scheduling.PlanTable, plan scheduling.Plan, n int) fixture {
	db := setupTestDB(t)

	org := &models.Organization{
		Name:                   "Studio Nova",
		Slug:                   "studio-nova-" + uuid.NewString()[:8],
		TemplateType:           string(scheduling.TemplateBeautySalon),
		Timezone:               "UTC",
		BusinessHours:          models.NewJSONB(scheduling.DefaultBusinessHours()),
		BufferMinutes:          15,
		BufferPolicy:           string(scheduling.BufferAfter),
		SlotGranularityMinutes: 15,
		AppointmentReminders:   true,
		SMSNotifications:       true,
	}
	require.NoError(t, org.ApplyPlan(plans, plan))
	require.NoError(t, db.Omit(clause.Associations).Create(org).Error)

	service := &models.Service{OrganizationID: org.ID, Name: "Haircut", Price: 30, Duration: 60, IsActive: true}
	require.NoError(t, db.Omit(clause.Associations).Create(service).Error)

	resources := make([]models.Resource, n)
	for i := range resources {
		resources[i] = models.Resource{OrganizationID: org.ID, Name: "Chair", Kind: models.ResourceProfessional, IsActive: true}
		require.NoError(t, db.Create(&resources[i]).Error)
	}

	return fixture{db: db, org: org, service: service, resources: resources}
}

func (f fixture) bookingService(plans scheduling.PlanTable) *BookingService {
	s := NewBookingService(f.db, plans)
	s.now = func() time.Time { return fixedNow }
	return s
}

func (f fixture) availabilityService() *AvailabilityService {
	s := NewAvailabilityService(f.db)
	s.now = func() time.Time { return fixedNow }
	return s
}

func (f fixture) request(start string) BookingRequest {
	m, err := scheduling.ParseClock(start)
	if err != nil {
		panic(err)
	}
	return BookingRequest{
		ServiceID:   f.service.ID,
		ResourceID:  f.resources[0].ID,
		Date:        monday,
		StartTime:   m,
		ClientName:  "Ana Souza",
		ClientPhone: "+351 912 345 678",
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
