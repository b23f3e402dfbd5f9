package routes

import (
	"context"
	"net/http"
	"time"

	"busline/internal/analytics"
	"busline/internal/auth"
	"busline/internal/bookings"
	"busline/internal/fleet"
	"busline/internal/payments"
	"busline/internal/realtime"
	"busline/internal/shared/config"
	"busline/internal/shared/database"
	"busline/internal/tickets"
	"busline/internal/trips"
	"busline/pkg/cache"
	"busline/pkg/logger"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	notifier realtime.Notifier
	log      *logger.Logger

	// Background jobs, started by the caller after routes are wired
	expiryReaper    *bookings.ExpiryReaper
	statusScheduler *trips.StatusScheduler
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, notifier realtime.Notifier) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		notifier: notifier,
		log:      logger.GetDefault().WithComponent("router"),
	}
}

// SetupRoutes configures all application routes and wires the feature
// services together
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	pg := r.db.GetPostgreSQL()
	cacheService := cache.NewService(r.db.GetRedisClient())

	// Repositories
	authRepo := auth.NewRepository(pg)
	fleetRepo := fleet.NewRepository(pg)
	tripRepo := trips.NewRepository(pg)
	bookingRepo := bookings.NewRepository(pg)
	ticketRepo := tickets.NewRepository(pg)
	paymentRepo := payments.NewRepository(pg)
	analyticsRepo := analytics.NewRepository(pg)

	// Services; tickets before bookings because confirmation issues tickets
	authService := auth.NewService(authRepo, r.config.JWT)
	fleetService := fleet.NewService(fleetRepo)
	tripService := trips.NewService(tripRepo, fleetRepo)
	ticketService := tickets.NewService(ticketRepo, bookingRepo, tripRepo, fleetRepo)
	bookingService := bookings.NewService(bookingRepo, tripRepo, cacheService, r.notifier, ticketService, r.config.Booking, r.config.Redis.SeatMapTTL)
	paymentService := payments.NewService(paymentRepo, bookingRepo, bookingService)
	analyticsService := analytics.NewService(analyticsRepo, cacheService, r.config.Redis.AnalyticsTTL)

	// Background jobs
	r.expiryReaper = bookings.NewExpiryReaper(bookingService, r.config.Booking.ExpirySweepInterval)
	r.statusScheduler = trips.NewStatusScheduler(tripService, r.config.Booking.TripStatusInterval)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		auth.SetupAuthRoutes(api, auth.NewController(authService), r.config)
		fleet.SetupFleetRoutes(api, fleet.NewController(fleetService), r.config)
		trips.SetupTripRoutes(api, trips.NewController(tripService), r.config)
		bookings.SetupBookingRoutes(api, bookings.NewController(bookingService), r.config)
		payments.SetupPaymentRoutes(api, payments.NewController(paymentService), r.config)
		tickets.SetupTicketRoutes(api, tickets.NewController(ticketService), r.config)
		analytics.SetupAnalyticsRoutes(api, analytics.NewController(analyticsService), r.config)
	}

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// StartJobs starts the expiry reaper and the trip status scheduler
func (r *Router) StartJobs(ctx context.Context) {
	r.log.Info("starting background jobs",
		"expiry_sweep_interval", r.config.Booking.ExpirySweepInterval.String(),
		"trip_status_interval", r.config.Booking.TripStatusInterval.String())
	r.expiryReaper.Start(ctx)
	r.statusScheduler.Start(ctx)
}

// StopJobs stops the background sweeps
func (r *Router) StopJobs() {
	if r.expiryReaper != nil {
		r.expiryReaper.Stop()
	}
	if r.statusScheduler != nil {
		r.statusScheduler.Stop()
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "busline-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "busline-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}
