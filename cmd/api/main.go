package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"supperclub/internal/config"
	"supperclub/internal/database"
	"supperclub/internal/middleware"
	"supperclub/internal/modules/auth"
	"supperclub/internal/modules/booking"
	"supperclub/internal/modules/dispute"
	"supperclub/internal/modules/notification"
	"supperclub/internal/modules/slot"
	"supperclub/internal/modules/wallet"
	"supperclub/internal/modules/withdrawal"
	jwtsvc "supperclub/internal/pkg/jwt"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	hub := notification.NewHub()
	defer hub.Close()
	notificationService := notification.NewService(db, hub)
	notificationHandler := notification.NewHandler(notificationService, hub)

	authService := auth.NewService(db, j)
	authHandler := auth.NewHandler(authService)

	slotService := slot.NewService(db)

	walletService := wallet.NewService(db)
	walletHandler := wallet.NewHandler(walletService)

	bookingService := booking.NewService(db, slotService, walletService, notificationService, cfg.CheckInWindow)
	bookingHandler := booking.NewHandler(bookingService)

	// slot cancellation runs through the booking cascade to refund live guests
	slotHandler := slot.NewHandler(slotService, bookingService)

	withdrawalService := withdrawal.NewService(db, walletService, notificationService)
	withdrawalHandler := withdrawal.NewHandler(withdrawalService)

	disputeService := dispute.NewService(db, bookingService, walletService, notificationService)
	disputeHandler := dispute.NewHandler(disputeService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "time": time.Now().UTC()})
	})

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)
		slotHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.RequireAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
			walletHandler.RegisterRoutes(protected)
			notificationHandler.RegisterRoutes(protected)
			disputeHandler.RegisterGuestRoutes(protected)

			host := protected.Group("/host")
			host.Use(middleware.HostOnly())
			{
				slotHandler.RegisterHostRoutes(host)
				withdrawalHandler.RegisterHostRoutes(host)
			}

			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				withdrawalHandler.RegisterAdminRoutes(admin)
				disputeHandler.RegisterAdminRoutes(admin)
			}
		}
	}

	log.Printf("listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}
