// services/reminder_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bookingpro-backend/models"
	"bookingpro-backend/scheduling"
)

const (
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"
)

// MaxReminderAttempts bounds failed sends per appointment. After that the
// reminder is given up.
const MaxReminderAttempts = 3

// MessageSender delivers a text message and returns the provider's id.
type MessageSender interface {
	Send(to, from, body string) (string, error)
}

type TwilioSender struct {
	client *twilio.RestClient
}

func NewTwilioSender(accountSid, authToken string) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

func (t *TwilioSender) Send(to, from, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}

type ReminderOptions struct {
	PhoneNumber    string
	WhatsAppNumber string
	// LeadTime is how long before an appointment its reminder goes out.
	LeadTime time.Duration
}

type ReminderService struct {
	db     *gorm.DB
	sender MessageSender
	opts   ReminderOptions
	log    *slog.Logger
	now    func() time.Time
}

// NewReminderService returns a service that only logs when sender is nil.
func NewReminderService(db *gorm.DB, sender MessageSender, opts ReminderOptions, log *slog.Logger) *ReminderService {
	if opts.LeadTime <= 0 {
		opts.LeadTime = 24 * time.Hour
	}
	return &ReminderService{db: db, sender: sender, opts: opts, log: log, now: time.Now}
}

// StartScheduler runs SendDueReminders on the cron spec until the returned
// scheduler is stopped.
func (s *ReminderService) StartScheduler(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		sent, err := s.SendDueReminders(context.Background())
		if err != nil {
			s.log.Error("reminder run failed", "error", err)
			return
		}
		s.log.Info("reminder run completed", "sent", sent)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	c.Start()
	s.log.Info("Reminder scheduler started", "schedule", spec, "lead", s.opts.LeadTime)
	return c, nil
}

// SendDueReminders messages every scheduled appointment starting within the
// lead time that has not been reminded yet, for organizations with
// reminders enabled. It returns the number of messages sent.
func (s *ReminderService) SendDueReminders(ctx context.Context) (int, error) {
	now := s.now().UTC()
	db := s.db.WithContext(ctx)

	var appointments []models.Appointment
	err := db.Joins("JOIN organizations ON organizations.id = appointments.organization_id").
		Where("organizations.appointment_reminders = ? AND organizations.deleted_at IS NULL", true).
		Where("appointments.status = ? AND appointments.reminder_sent_at IS NULL", string(scheduling.StatusScheduled)).
		Where("appointments.starts_at > ? AND appointments.starts_at <= ?", now, now.Add(s.opts.LeadTime)).
		Where("(SELECT COUNT(*) FROM reminder_logs WHERE reminder_logs.appointment_id = appointments.id AND reminder_logs.type = ? AND reminder_logs.status = ?) < ?",
			models.ReminderAppointment, "failed", MaxReminderAttempts).
		Order("appointments.starts_at").
		Find(&appointments).Error
	if err != nil {
		return 0, fmt.Errorf("load due appointments: %w", err)
	}

	orgs := make(map[uuid.UUID]*models.Organization)
	sent := 0
	for i := range appointments {
		a := &appointments[i]
		org, ok := orgs[a.OrganizationID]
		if !ok {
			org, err = loadOrganization(db, a.OrganizationID)
			if err != nil {
				s.log.Error("Failed to load organization", "organization", a.OrganizationID, "error", err)
				continue
			}
			orgs[a.OrganizationID] = org
		}

		delivered, err := s.notify(db, org, a, models.ReminderAppointment)
		if err != nil {
			s.log.Error("Failed to send reminder", "appointment", a.ID, "error", err)
			continue
		}
		if !delivered {
			continue
		}
		if err := db.Model(a).Update("reminder_sent_at", now).Error; err != nil {
			return sent, fmt.Errorf("mark reminder sent: %w", err)
		}
		sent++
	}
	return sent, nil
}

// SendConfirmation messages the client of a freshly booked appointment.
func (s *ReminderService) SendConfirmation(ctx context.Context, appointment *models.Appointment) error {
	db := s.db.WithContext(ctx)
	org, err := loadOrganization(db, appointment.OrganizationID)
	if err != nil {
		return err
	}
	_, err = s.notify(db, org, appointment, models.ReminderConfirmation)
	return err
}

// notify renders the organization's template and sends it. It reports
// false without error when nothing had to be sent.
func (s *ReminderService) notify(db *gorm.DB, org *models.Organization, a *models.Appointment, kind string) (bool, error) {
	channel, to, from, ok := s.route(org, a.ClientPhone)
	if !ok {
		return false, nil
	}

	var template models.ReminderTemplate
	err := db.Where("organization_id = ? AND type = ? AND is_active = ?", org.ID, kind, true).First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Debug("No active template", "organization", org.ID, "type", kind)
			return false, nil
		}
		return false, fmt.Errorf("load template: %w", err)
	}

	message := RenderTemplate(template.Message, org, a)
	if s.sender == nil {
		s.log.Info("Messaging disabled, skipping", "appointment", a.ID, "type", kind)
		return false, nil
	}

	sid, sendErr := s.sender.Send(to, from, message)
	entry := models.ReminderLog{
		OrganizationID: org.ID,
		AppointmentID:  a.ID,
		TemplateID:     template.ID,
		Type:           kind,
		Message:        message,
		Status:         "sent",
		Channel:        channel,
		SentAt:         s.now().UTC(),
	}
	if sendErr != nil {
		entry.Status = "failed"
		entry.ErrorMessage = sendErr.Error()
	} else {
		s.log.Info("Message sent", "appointment", a.ID, "channel", channel, "sid", sid)
	}
	if err := db.Omit(clause.Associations).Create(&entry).Error; err != nil {
		s.log.Error("Failed to log reminder", "appointment", a.ID, "error", err)
	}
	if sendErr != nil {
		return false, sendErr
	}
	return true, nil
}

// route picks WhatsApp for E.164 numbers when enabled, SMS otherwise.
func (s *ReminderService) route(org *models.Organization, phone string) (channel, to, from string, ok bool) {
	if org.WhatsAppNotifications && strings.HasPrefix(phone, "+") && s.opts.WhatsAppNumber != "" {
		return ChannelWhatsApp, "whatsapp:" + phone, "whatsapp:" + s.opts.WhatsAppNumber, true
	}
	if org.SMSNotifications && s.opts.PhoneNumber != "" {
		return ChannelSMS, phone, s.opts.PhoneNumber, true
	}
	return "", "", "", false
}

// RenderTemplate fills the placeholders of a reminder template with the
// appointment's details in the organization's timezone.
func RenderTemplate(message string, org *models.Organization, a *models.Appointment) string {
	local := a.StartsAt.In(org.Location())
	return strings.NewReplacer(
		"[CustomerName]", a.ClientName,
		"[Organization]", org.Name,
		"[Date]", local.Format("Mon, Jan 2"),
		"[Time]", local.Format("15:04"),
	).Replace(message)
}
