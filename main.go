package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"bookingpro-backend/config"
	"bookingpro-backend/logger"
	"bookingpro-backend/routes"
	"bookingpro-backend/services"
	"bookingpro-backend/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.LogLevel, cfg.LogFormat)
	utils.ConfigureJWT(cfg.JWTSecret, cfg.JWTExpiryHours)
	gin.SetMode(cfg.GinMode)

	db, err := config.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	config.DB = db
	if err := config.Migrate(db); err != nil {
		log.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	redisClient, err := config.ConnectRedis(context.Background(), cfg)
	if err != nil {
		log.Warn("redis unavailable, public rate limiting disabled", "error", err)
		redisClient = nil
	}
	limiter := config.NewRateLimiter(redisClient, cfg.RateLimitPerMinute, time.Minute, log)

	var sender services.MessageSender
	if cfg.Twilio.Enabled() {
		sender = services.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken)
	} else {
		log.Info("twilio not configured, reminders disabled")
	}
	reminders := services.NewReminderService(db, sender, services.ReminderOptions{
		PhoneNumber:    cfg.Twilio.PhoneNumber,
		WhatsAppNumber: cfg.Twilio.WhatsAppNumber,
		LeadTime:       time.Duration(cfg.ReminderLeadHours) * time.Hour,
	}, log)
	scheduler, err := reminders.StartScheduler(cfg.ReminderSchedule)
	if err != nil {
		log.Error("failed to start reminder scheduler", "error", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	r := routes.SetupRouter(routes.Dependencies{
		CORSOrigins:  cfg.CORSOrigins,
		Plans:        cfg.Plans,
		Log:          log,
		RateLimiter:  limiter,
		Availability: services.NewAvailabilityService(db),
		Booking:      services.NewBookingService(db, cfg.Plans),
		Onboarding:   services.NewOnboardingService(db, cfg.Plans),
		Reminders:    reminders,
	})
	printRoutes(log, r)

	log.Info("server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func printRoutes(log *slog.Logger, r *gin.Engine) {
	for _, route := range r.Routes() {
		log.Debug("route", "method", route.Method, "path", route.Path)
	}
}
