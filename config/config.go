package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"bookingpro-backend/scheduling"
)

type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	PhoneNumber    string
	WhatsAppNumber string
}

func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != ""
}

type Config struct {
	Port    string
	GinMode string

	DatabaseURL string

	JWTSecret      string
	JWTExpiryHours int

	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RateLimitPerMinute int

	LogLevel  string
	LogFormat string

	CORSOrigins []string

	Twilio            TwilioConfig
	ReminderSchedule  string
	ReminderLeadHours int

	Plans scheduling.PlanTable
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("REMINDER_SCHEDULE", "*/15 * * * *")
	v.SetDefault("REMINDER_LEAD_HOURS", 24)

	defaults := scheduling.DefaultPlanTable()
	for _, p := range scheduling.Plans() {
		limits, _ := defaults.Limits(p)
		prefix := "PLANS_" + strings.ToUpper(string(p))
		v.SetDefault(prefix+"_MAX_RESOURCES", limits.MaxResources)
		v.SetDefault(prefix+"_MAX_APPOINTMENTS", limits.MaxAppointmentsPerMonth)
		v.SetDefault(prefix+"_MAX_USERS", limits.MaxUsers)
	}
	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:               v.GetString("PORT"),
		GinMode:            v.GetString("GIN_MODE"),
		DatabaseURL:        v.GetString("DB_URL"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTExpiryHours:     v.GetInt("JWT_EXPIRY_HOURS"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		RedisDB:            v.GetInt("REDIS_DB"),
		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
		Twilio: TwilioConfig{
			AccountSID:     v.GetString("TWILIO_ACCOUNT_SID"),
			AuthToken:      v.GetString("TWILIO_AUTH_TOKEN"),
			PhoneNumber:    v.GetString("TWILIO_PHONE_NUMBER"),
			WhatsAppNumber: v.GetString("TWILIO_WHATSAPP_NUMBER"),
		},
		ReminderSchedule:  v.GetString("REMINDER_SCHEDULE"),
		ReminderLeadHours: v.GetInt("REMINDER_LEAD_HOURS"),
	}

	for _, origin := range strings.Split(v.GetString("CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	limits := make(map[scheduling.Plan]scheduling.ResourceLimits)
	for _, p := range scheduling.Plans() {
		prefix := "PLANS_" + strings.ToUpper(string(p))
		limits[p] = scheduling.ResourceLimits{
			MaxResources:            v.GetInt(prefix + "_MAX_RESOURCES"),
			MaxAppointmentsPerMonth: v.GetInt(prefix + "_MAX_APPOINTMENTS"),
			MaxUsers:                v.GetInt(prefix + "_MAX_USERS"),
		}
	}
	plans, err := scheduling.NewPlanTable(limits)
	if err != nil {
		return nil, err
	}
	cfg.Plans = plans

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DB_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}
