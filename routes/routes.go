package routes

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"bookingpro-backend/config"
	"bookingpro-backend/controllers"
	"bookingpro-backend/models"
	"bookingpro-backend/scheduling"
	"bookingpro-backend/services"
	"bookingpro-backend/utils"
)

// Dependencies carries everything the handlers need. RateLimiter and
// Reminders may be nil.
type Dependencies struct {
	CORSOrigins  []string
	Plans        scheduling.PlanTable
	Log          *slog.Logger
	RateLimiter  *config.RateLimiter
	Availability *services.AvailabilityService
	Booking      *services.BookingService
	Onboarding   *services.OnboardingService
	Reminders    *services.ReminderService
}

func SetupRouter(deps Dependencies) *gin.Engine {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())

	if len(deps.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
		}))
	}

	r.Use(config.PerformanceLogger(deps.Log))

	authController := &controllers.AuthController{Plans: deps.Plans}
	orgController := &controllers.OrganizationController{Plans: deps.Plans}
	resourceController := &controllers.ResourceController{Validator: deps.Booking.Validator()}
	staffController := &controllers.StaffController{Validator: deps.Booking.Validator()}
	onboardingController := &controllers.OnboardingController{Onboarding: deps.Onboarding}
	bookingController := &controllers.BookingController{
		Availability: deps.Availability,
		Booking:      deps.Booking,
		Reminders:    deps.Reminders,
		Log:          deps.Log,
	}
	publicController := &controllers.PublicController{
		Availability: deps.Availability,
		Booking:      deps.Booking,
		Reminders:    deps.Reminders,
		Log:          deps.Log,
	}
	ownerOnly := utils.RequireRole(models.RoleOwner)

	auth := r.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", authController.Me)
	}

	// Public booking page, no authentication
	public := r.Group("/public/:slug")
	public.Use(deps.RateLimiter.Limit())
	{
		public.GET("", publicController.GetPage)
		public.GET("/availability", publicController.GetAvailability)
		public.POST("/appointments", publicController.CreateAppointment)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		onboarding := api.Group("/onboarding")
		{
			onboarding.GET("", onboardingController.GetStatus)
			onboarding.POST("/steps/:step", onboardingController.SubmitStep)
			onboarding.POST("/reset", ownerOnly, onboardingController.Reset)
		}

		// Organization settings
		org := api.Group("/organization")
		{
			org.GET("", orgController.GetOrganization)
			org.PUT("", ownerOnly, orgController.UpdateOrganization)
			org.PUT("/hours", ownerOnly, orgController.UpdateBusinessHours)
			org.PUT("/booking-rules", ownerOnly, orgController.UpdateBookingRules)
			org.PUT("/notifications", ownerOnly, orgController.UpdateNotifications)
			org.PUT("/plan", ownerOnly, orgController.UpdatePlan)
			org.DELETE("", ownerOnly, orgController.ArchiveOrganization)
		}

		// Everything below needs a completed onboarding.
		features := api.Group("", utils.RequireOnboardingCompleted(deps.Onboarding.IsCompleted))

		resources := features.Group("/resources")
		{
			resources.POST("", ownerOnly, resourceController.CreateResource)
			resources.GET("", resourceController.GetResources)
			resources.GET("/:id", resourceController.GetResource)
			resources.PUT("/:id", ownerOnly, resourceController.UpdateResource)
			resources.DELETE("/:id", ownerOnly, resourceController.DeleteResource)
		}

		// Service routes
		catalog := features.Group("/services")
		{
			catalog.POST("", controllers.CreateService)
			catalog.GET("", controllers.GetServices)
			catalog.GET("/:id", controllers.GetService)
			catalog.PUT("/:id", controllers.UpdateService)
			catalog.DELETE("/:id", controllers.DeleteService)
		}

		// Customer routes
		customers := features.Group("/customers")
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.GetCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", controllers.DeleteCustomer)
		}

		features.GET("/availability", bookingController.GetAvailability)

		appointments := features.Group("/appointments")
		{
			appointments.POST("", bookingController.CreateAppointment)
			appointments.GET("", bookingController.GetAppointments)
			appointments.GET("/:id", bookingController.GetAppointment)
			appointments.POST("/:id/cancel", bookingController.CancelAppointment)
			appointments.POST("/:id/complete", bookingController.CompleteAppointment)
		}

		templates := features.Group("/reminder-templates")
		{
			templates.POST("", controllers.CreateReminderTemplate)
			templates.GET("", controllers.GetReminderTemplates)
			templates.GET("/:id", controllers.GetReminderTemplate)
			templates.PUT("/:id", controllers.UpdateReminderTemplate)
			templates.DELETE("/:id", controllers.DeleteReminderTemplate)
		}

		features.GET("/dashboard", controllers.GetDashboardOverview)

		staff := features.Group("/staff", ownerOnly)
		{
			staff.GET("", staffController.GetStaff)
			staff.POST("", staffController.AddStaff)
			staff.PUT("/:id", staffController.UpdateStaff)
			staff.DELETE("/:id", staffController.DeleteStaff)
		}
	}

	return r
}
