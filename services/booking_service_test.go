package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingpro-backend/apperror"
	"bookingpro-backend/models"
	"bookingpro-backend/scheduling"
)

func TestBookingService_Book(t *testing.T) {
	f := newFixture(t, scheduling.DefaultPlanTable(), scheduling.PlanBasic, 1)
	svc := f.bookingService(scheduling.DefaultPlanTable())

	appt, err := svc.Book(context.Background(), f.org.ID, f.request("10:00"))
	require.NoError(t, err)

	assert.Equal(t, string(scheduling.StatusScheduled), appt.Status)
	assert.Equal(t, models.SourcePublic, appt.Source)
	assert.Equal(t, "+351912345678", appt.ClientPhone)
	assert.True(t, appt.StartsAt.Equal(monday.At(600, time.UTC)))
	assert.Equal(t, 60, appt.DurationMinutes)

	var customer models.Customer
	require.NoError(t, f.db.First(&customer, "id = ?", appt.CustomerID).Error)
	assert.Equal(t, "Ana Souza", customer.Name)
}

func TestBookingService_RejectsTakenSlot(t *testing.T) {
	f := newFixture(t, scheduling.DefaultPlanTable(), scheduling.PlanBasic, 1)
	svc := f.bookingService(scheduling.DefaultPlanTable())
	ctx := context.Background()

	_, err := svc.Book(ctx, f.org.ID, f.request("10:00"))
	require.NoError(t, err)

	_, err = svc.Book(ctx, f.org.ID, f.request("10:00"))
	assert.True(t, apperror.IsSlotUnavailable(err))

	// Inside the 15-minute buffer after the first booking.
	_, err = svc.Book(ctx, f.org.ID, f.request("11:00"))
	assert.True(t, apperror.IsSlotUnavailable(err))

	_, err = svc.Book(ctx, f.org.ID, f.request("11:15"))
	assert.NoError(t, err)
}

func TestBookingService_RejectsOffGridAndClosedTimes(t *testing.T) {
	f := newFixture(t, scheduling.DefaultPlanTable(), scheduling.PlanBasic, 1)
	svc := f.bookingService(scheduling.DefaultPlanTable())
	ctx := context.Background()

	_, err := svc.Book(ctx, f.org.ID, f.request("10:05"))
	assert.True(t, apperror.IsSlotUnavailable(err))

	_, err = svc.Book(ctx, f.org.ID, f.request("19:30"))
	assert.True(t, apperror.IsSlotUnavailable(err), "would end after closing")
}

func TestBookingService_PastSlotsOnlyWhenIncluded(t *testing.T) {
	f := newFixture(t, scheduling.DefaultPlanTable(), scheduling.PlanBasic, 1)
	svc := f.bookingService(scheduling.DefaultPlanTable())
	ctx := context.Background()

	req := f.request("09:00")
	req.Date = monday.AddDays(-7)

	_, err := svc.Book(ctx, f.org.ID, req)
	assert.True(t, apperror.IsSlotUnavailable(err))

	req.IncludePast = true
	req.Source = models.SourceStaff
	appt, err := svc.Book(ctx, f.org.ID, req)
	require.NoError(t, err)
	assert.True(t, appt.StartsAt.Before(fixedNow))
}

func TestBookingService_ReusesCustomerByPhone(t *testing.T) {
	f := newFixture(t, scheduling.DefaultPlanTable(), scheduling.PlanBasic, 1)
	svc := f.bookingService(scheduling.DefaultPlanTable())
	ctx := context.Background()

	first, err := svc.Book(ctx, f.org.ID, f.request("09:00"))
	require.NoError(t, err)
	second, err := svc.Book(ctx, f.org.ID, f.request("14:00"))
	require.NoError(t, err)

	assert.Equal(t, first.CustomerID, second.CustomerID)
}

func TestBookingService_ValidatesClient(t *testing.T) {
	f := newFixture(t, scheduling.DefaultPlanTable(), scheduling.PlanBasic, 1)
	svc := f.bookingService(scheduling.DefaultPlanTable())

	req := f.request("10:00")
	req.ClientPhone = "not-a-phone"
	_, err := svc.Book(context.Background(), f.org.ID, req)
	assert.True(t, apperror.IsValidation(err))

	req = f.request("10:00")
	req.ClientName = "  "
	_, err = svc.Book(context.Background(), f.org.ID, req)
	assert.True(t, apperror.IsValidation(err))
}

func TestBookingService_UnknownResource(t *testing.T) {
	f := newFixture(t, scheduling.DefaultPlanTable(), scheduling.PlanBasic, 1)
	req := f.request("10:00")
	req.ResourceID = uuid.New()

	_, err := f.bookingService(scheduling.DefaultPlanTable()).Book(context.Background(), f.org.ID, req)
	assert.True(t, apperror.IsNotFound(err))
}

func TestBookingService_MonthlyQuota(t *testing.T) {
	plans, err := scheduling.NewPlanTable(map[scheduling.Plan]scheduling.ResourceLimits{
		scheduling.PlanFree:    {MaxResources: 1, MaxAppointmentsPerMonth: 1, MaxUsers: 1},
		scheduling.PlanBasic:   {MaxResources: 5, MaxAppointmentsPerMonth: 1000, MaxUsers: 2},
		scheduling.PlanPremium: {MaxResources: 10, MaxAppointmentsPerMonth: 2500, MaxUsers: 10},
	})
	require.NoError(t, err)

	f := newFixture(t, plans, scheduling.PlanFree, 1)
	svc := f.bookingService(plans)
	ctx := context.Background()

	first, err := svc.Book(ctx, f.org.ID, f.request("09:00"))
	require.NoError(t, err)

	_, err = svc.Book(ctx, f.org.ID, f.request("14:00"))
	assert.True(t, apperror.IsQuotaExceeded(err))

	// Cancelled appointments give their quota back.
	_, err = svc.Cancel(ctx, f.org.ID, first.ID)
	require.NoError(t, err)
	_, err = svc.Book(ctx, f.org.ID, f.request("14:00"))
	assert.NoError(t, err)
}

func TestBookingService_CancelFreesSlot(t *testing.T) {
	f := newFixture(t, scheduling.DefaultPlanTable(), scheduling.PlanBasic, 1)
	svc := f.bookingService(scheduling.DefaultPlanTable())
	ctx := context.Background()

	appt, err := svc.Book(ctx, f.org.ID, f.request("10:00"))
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, f.org.ID, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, string(scheduling.StatusCancelled), cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	_, err = svc.Cancel(ctx, f.org.ID, appt.ID)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Book(ctx, f.org.ID, f.request("10:00"))
	assert.NoError(t, err)
}

func TestBookingService_CompleteCountsVisit(t *testing.T) {
	f := newFixture(t, scheduling.DefaultPlanTable(), scheduling.PlanBasic, 1)
	svc := f.bookingService(scheduling.DefaultPlanTable())
	ctx := context.Background()

	appt, err := svc.Book(ctx, f.org.ID, f.request("10:00"))
	require.NoError(t, err)

	done, err := svc.Complete(ctx, f.org.ID, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, string(scheduling.StatusCompleted), done.Status)

	var customer models.Customer
	require.NoError(t, f.db.First(&customer, "id = ?", appt.CustomerID).Error)
	assert.Equal(t, 1, customer.TotalVisits)
	require.NotNil(t, customer.LastVisit)

	_, err = svc.Cancel(ctx, f.org.ID, appt.ID)
	assert.True(t, apperror.IsValidation(err), "completed appointments cannot be cancelled")
}

func TestBookingService_GetAndList(t *testing.T) {
	f := newFixture(t, scheduling.DefaultPlanTable(), scheduling.PlanBasic, 1)
	svc := f.bookingService(scheduling.DefaultPlanTable())
	ctx := context.Background()

	late, err := svc.Book(ctx, f.org.ID, f.request("15:00"))
	require.NoError(t, err)
	early, err := svc.Book(ctx, f.org.ID, f.request("09:00"))
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, f.org.ID, late.ID)
	require.NoError(t, err)

	all, err := svc.List(ctx, f.org.ID, AppointmentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, early.ID, all[0].ID)

	scheduled, err := svc.List(ctx, f.org.ID, AppointmentFilter{Status: scheduling.StatusScheduled})
	require.NoError(t, err)
	require.Len(t, scheduled, 1)
	assert.Equal(t, early.ID, scheduled[0].ID)

	got, err := svc.Get(ctx, f.org.ID, early.ID)
	require.NoError(t, err)
	assert.Equal(t, early.ID, got.ID)

	_, err = svc.Get(ctx, uuid.New(), early.ID)
	assert.True(t, apperror.IsNotFound(err), "appointments are scoped to their organization")
}
