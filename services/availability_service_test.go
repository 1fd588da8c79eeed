package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingpro-backend/apperror"
	"bookingpro-backend/scheduling"
)

func TestAvailabilityService_Slots(t *testing.T) {
	f := newFixture(t, scheduling.DefaultPlanTable(), scheduling.PlanBasic, 1)
	svc := f.availabilityService()

	slots, err := svc.Slots(context.Background(), f.org.ID, AvailabilityRequest{
		ServiceID: f.service.ID,
		From:      monday,
		Days:      1,
	})
	require.NoError(t, err)

	// 09:00 to 20:00 on a 15-minute grid for a 60-minute service.
	require.Len(t, slots, 41)
	assert.Equal(t, scheduling.Minute(9*60), slots[0].Start)
	assert.Equal(t, scheduling.Minute(10*60), slots[0].End)
	assert.Equal(t, scheduling.Minute(20*60), slots[len(slots)-1].End)
}

func TestAvailabilityService_BookingBlocksWithBuffer(t *testing.T) {
	f := newFixture(t, scheduling.DefaultPlanTable(), scheduling.PlanBasic, 1)
	_, err := f.bookingService(scheduling.DefaultPlanTable()).Book(context.Background(), f.org.ID, f.request("10:00"))
	require.NoError(t, err)

	slots, err := f.availabilityService().Slots(context.Background(), f.org.ID, AvailabilityRequest{
		ServiceID: f.service.ID,
		From:      monday,
		Days:      1,
	})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(slots), 2)
	assert.Equal(t, scheduling.Minute(9*60), slots[0].Start, "slot ending at the booking start stays open")
	assert.Equal(t, scheduling.Minute(11*60+15), slots[1].Start, "next slot waits for the buffer")
}

func TestAvailabilityService_PastSlots(t *testing.T) {
	f := newFixture(t, scheduling.DefaultPlanTable(), scheduling.PlanBasic, 1)
	svc := f.availabilityService()
	svc.now = func() time.Time { return time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC) }

	public, err := svc.Slots(context.Background(), f.org.ID, AvailabilityRequest{ServiceID: f.service.ID, From: monday, Days: 1})
	require.NoError(t, err)
	require.NotEmpty(t, public)
	assert.Equal(t, scheduling.Minute(12*60), public[0].Start)

	admin, err := svc.Slots(context.Background(), f.org.ID, AvailabilityRequest{ServiceID: f.service.ID, From: monday, Days: 1, IncludePast: true})
	require.NoError(t, err)
	assert.Equal(t, scheduling.Minute(9*60), admin[0].Start)
}

func TestAvailabilityService_ClosedDayAndDefaults(t *testing.T) {
	f := newFixture(t, scheduling.DefaultPlanTable(), scheduling.PlanBasic, 1)
	sunday := scheduling.Date{Year: 2026, Month: time.October, Day: 18}

	slots, err := f.availabilityService().Slots(context.Background(), f.org.ID, AvailabilityRequest{ServiceID: f.service.ID, From: sunday, Days: 1})
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.NotNil(t, slots)

	// Without From the range starts today (Thursday) and spans a week.
	week, err := f.availabilityService().Slots(context.Background(), f.org.ID, AvailabilityRequest{ServiceID: f.service.ID})
	require.NoError(t, err)
	assert.Equal(t, scheduling.Date{Year: 2026, Month: time.October, Day: 15}, week[0].Date)
}

func TestAvailabilityService_Errors(t *testing.T) {
	f := newFixture(t, scheduling.DefaultPlanTable(), scheduling.PlanBasic, 1)
	svc := f.availabilityService()
	ctx := context.Background()

	_, err := svc.Slots(ctx, uuid.New(), AvailabilityRequest{ServiceID: f.service.ID})
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.Slots(ctx, f.org.ID, AvailabilityRequest{ServiceID: uuid.New()})
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.Slots(ctx, f.org.ID, AvailabilityRequest{ServiceID: f.service.ID, ResourceID: uuid.New()})
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.Slots(ctx, f.org.ID, AvailabilityRequest{ServiceID: f.service.ID, Days: 40})
	assert.True(t, apperror.IsValidation(err))
}

func TestAvailabilityService_FiltersByResource(t *testing.T) {
	f := newFixture(t, scheduling.DefaultPlanTable(), scheduling.PlanBasic, 2)
	target := f.resources[1].ID

	slots, err := f.availabilityService().Slots(context.Background(), f.org.ID, AvailabilityRequest{
		ServiceID:  f.service.ID,
		ResourceID: target,
		From:       monday,
		Days:       1,
	})
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	for _, s := range slots {
		assert.Equal(t, target, s.ResourceID)
	}
}
