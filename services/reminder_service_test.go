package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"

	"bookingpro-backend/models"
	"bookingpro-backend/scheduling"
)

type sentMessage struct {
	to, from, body string
}

type fakeSender struct {
	sent []sentMessage
	err  error
}

func (f *fakeSender) Send(to, from, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentMessage{to: to, from: from, body: body})
	return "SM123", nil
}

func newReminderFixture(t *testing.T, startsIn time.Duration) (fixture, *models.Appointment) {
	f := newFixture(t, scheduling.DefaultPlanTable(), scheduling.PlanBasic, 1)
	templates := models.DefaultReminderTemplates(f.org.ID)
	require.NoError(t, f.db.Create(&templates).Error)

	start := fixedNow.Add(startsIn)
	appt := &models.Appointment{
		OrganizationID:  f.org.ID,
		ResourceID:      f.resources[0].ID,
		ServiceID:       f.service.ID,
		StartsAt:        start,
		EndsAt:          start.Add(time.Hour),
		DurationMinutes: 60,
		ClientName:      "Ana",
		ClientPhone:     "+351912345678",
		Source:          models.SourceStaff,
	}
	require.NoError(t, f.db.Omit(clause.Associations).Create(appt).Error)
	return f, appt
}

func newTestReminderService(f fixture, sender MessageSender) *ReminderService {
	s := NewReminderService(f.db, sender, ReminderOptions{
		PhoneNumber:    "+15550001111",
		WhatsAppNumber: "+15550002222",
		LeadTime:       24 * time.Hour,
	}, discardLogger())
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestReminderService_SendDueReminders(t *testing.T) {
	f, appt := newReminderFixture(t, 2*time.Hour)
	sender := &fakeSender{}
	svc := newTestReminderService(f, sender)

	sent, err := svc.SendDueReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "+351912345678", sender.sent[0].to)
	assert.Equal(t, "+15550001111", sender.sent[0].from)
	assert.Equal(t, "Hi Ana, this is a reminder of your appointment at Studio Nova on Thu, Oct 15 at 10:00.", sender.sent[0].body)

	var logs []models.ReminderLog
	require.NoError(t, f.db.Find(&logs, "appointment_id = ?", appt.ID).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "sent", logs[0].Status)
	assert.Equal(t, ChannelSMS, logs[0].Channel)

	// Already reminded.
	sent, err = svc.SendDueReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}

func TestReminderService_SkipsOutsideWindow(t *testing.T) {
	f, _ := newReminderFixture(t, 48*time.Hour)
	sender := &fakeSender{}

	sent, err := newTestReminderService(f, sender).SendDueReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Empty(t, sender.sent)
}

func TestReminderService_SkipsDisabledOrganizations(t *testing.T) {
	f, _ := newReminderFixture(t, 2*time.Hour)
	require.NoError(t, f.db.Model(f.org).Update("appointment_reminders", false).Error)
	sender := &fakeSender{}

	sent, err := newTestReminderService(f, sender).SendDueReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}

func TestReminderService_PrefersWhatsApp(t *testing.T) {
	f, _ := newReminderFixture(t, 2*time.Hour)
	require.NoError(t, f.db.Model(f.org).Update("whats_app_notifications", true).Error)
	sender := &fakeSender{}

	_, err := newTestReminderService(f, sender).SendDueReminders(context.Background())
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "whatsapp:+351912345678", sender.sent[0].to)
	assert.Equal(t, "whatsapp:+15550002222", sender.sent[0].from)
}

func TestReminderService_FailedSendIsRetried(t *testing.T) {
	f, appt := newReminderFixture(t, 2*time.Hour)
	sender := &fakeSender{err: errors.New("twilio unavailable")}
	svc := newTestReminderService(f, sender)

	sent, err := svc.SendDueReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	var entry models.ReminderLog
	require.NoError(t, f.db.First(&entry, "appointment_id = ?", appt.ID).Error)
	assert.Equal(t, "failed", entry.Status)
	assert.Equal(t, "twilio unavailable", entry.ErrorMessage)

	sender.err = nil
	sent, err = svc.SendDueReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestReminderService_GivesUpAfterMaxAttempts(t *testing.T) {
	f, appt := newReminderFixture(t, 2*time.Hour)
	sender := &fakeSender{err: errors.New("invalid number")}
	svc := newTestReminderService(f, sender)

	for i := 0; i < MaxReminderAttempts+2; i++ {
		sent, err := svc.SendDueReminders(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, sent)
	}

	var failed int64
	require.NoError(t, f.db.Model(&models.ReminderLog{}).
		Where("appointment_id = ? AND status = ?", appt.ID, "failed").Count(&failed).Error)
	assert.Equal(t, int64(MaxReminderAttempts), failed)

	// A working sender does not revive the abandoned reminder.
	sender.err = nil
	sent, err := svc.SendDueReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}

func TestReminderService_SendConfirmation(t *testing.T) {
	f, appt := newReminderFixture(t, 72*time.Hour)
	sender := &fakeSender{}

	require.NoError(t, newTestReminderService(f, sender).SendConfirmation(context.Background(), appt))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].body, "is confirmed")
}

func TestReminderService_WithoutSender(t *testing.T) {
	f, _ := newReminderFixture(t, 2*time.Hour)

	sent, err := newTestReminderService(f, nil).SendDueReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}

func TestReminderService_StartSchedulerRejectsBadSpec(t *testing.T) {
	f, _ := newReminderFixture(t, 2*time.Hour)
	svc := newTestReminderService(f, &fakeSender{})

	_, err := svc.StartScheduler("every now and then")
	assert.Error(t, err)

	c, err := svc.StartScheduler("*/15 * * * *")
	require.NoError(t, err)
	c.Stop()
}

func TestRenderTemplate(t *testing.T) {
	org := &models.Organization{Name: "O2 Center", Timezone: "America/Sao_Paulo"}
	appt := &models.Appointment{
		ClientName: "Bruno",
		StartsAt:   time.Date(2026, time.October, 19, 13, 30, 0, 0, time.UTC),
	}

	out := RenderTemplate("[CustomerName] @ [Organization], [Date] [Time]", org, appt)
	assert.Equal(t, "Bruno @ O2 Center, Mon, Oct 19 10:30", out)
}
