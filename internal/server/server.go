package server

import (
	"net/http"

	"dinein/internal/config"
	"dinein/internal/middleware"
	"dinein/internal/modules/auth"
	"dinein/internal/modules/billing"
	"dinein/internal/modules/catalog"
	"dinein/internal/modules/floor"
	"dinein/internal/modules/reservation"
	jwtsvc "dinein/internal/pkg/jwt"
	"dinein/internal/repository"

	"github.com/gin-gonic/gin"
)

type Deps struct {
	Config   *config.Config
	Store    *repository.Store
	Tokens   *jwtsvc.Service
	Notifier reservation.Notifier
	Hub      *floor.Hub
	Logf     func(format string, args ...interface{})
}

// Server is the wired HTTP surface plus the services background jobs need.
type Server struct {
	Engine       *gin.Engine
	Reservations *reservation.Service
}

func New(d Deps) *Server {
	cfg := d.Config

	reservationService := reservation.NewService(d.Store, cfg.Engine, d.Notifier, d.Hub, d.Logf)
	billingService := billing.NewService(d.Store, cfg.Engine, d.Hub, d.Logf)
	catalogService := catalog.NewService(d.Store, d.Logf)
	authService := auth.NewService(d.Store.Users, d.Tokens, d.Logf)

	reservationHandler := reservation.NewHandler(reservationService)
	billingHandler := billing.NewHandler(billingService)
	catalogHandler := catalog.NewHandler(catalogService)
	authHandler := auth.NewHandler(authService)
	floorHandler := floor.NewHandler(d.Hub, d.Tokens, cfg.CORSOrigins)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorLogger(), middleware.CORS(cfg.CORSOrigins))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)
		reservationHandler.RegisterPublicRoutes(v1)
		floorHandler.RegisterRoutes(v1)

		// staff
		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(d.Tokens))
		{
			authHandler.RegisterProtectedRoutes(protected)
			reservationHandler.RegisterProtectedRoutes(protected)
			billingHandler.RegisterRoutes(protected)
			catalogHandler.RegisterRoutes(protected)
		}
	}

	return &Server{
		Engine:       r,
		Reservations: reservationService,
	}
}
