package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thrivenig/travelbook/api"
	"github.com/thrivenig/travelbook/config"
	"github.com/thrivenig/travelbook/internal/domain"
	"github.com/thrivenig/travelbook/internal/report"
	"github.com/thrivenig/travelbook/internal/repository"
	"github.com/thrivenig/travelbook/internal/service/booking"
	"github.com/thrivenig/travelbook/internal/service/hotels"
	"github.com/thrivenig/travelbook/internal/service/identity"
	"github.com/thrivenig/travelbook/internal/service/search"
)

// Services carries everything the HTTP surface needs.
type Services struct {
	Identity identity.IdentityUseCase
	Search   search.SearchUseCase
	Booking  booking.BookingUseCase
	Hotels   hotels.HotelUseCase
	Pricing  repository.PricingRepository
	Report   *report.Service
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, services Services) error {
	server := newServer(cfg, services)

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func newServer(cfg *config.Config, services Services) *http.Server {
	router := NewRouter(services)
	return &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}
}

// NewRouter wires all route groups. Flight and profile routes need any valid
// session; admin routes need an administrator kind on top of that.
func NewRouter(services Services) *gin.Engine {
	router := gin.Default()

	authHandler := api.NewAuthHandler(services.Identity)
	flightHandler := api.NewFlightHandler(services.Search, services.Booking)
	hotelHandler := api.NewHotelHandler(services.Hotels)
	adminHandler := api.NewAdminHandler(services.Identity, services.Booking, services.Pricing)
	reportHandler := api.NewReportHandler(services.Report)

	authHandler.Register(router.Group("/auth"))

	authenticated := router.Group("/", api.Authenticate(services.Identity))
	authHandler.RegisterProfile(authenticated.Group("/account"))
	flightHandler.Register(authenticated.Group("/flights"))
	hotelHandler.Register(authenticated.Group("/hotels"))

	admins := authenticated.Group("/admin", api.RequireKind(domain.RoleAdmin, domain.RoleTopAdmin))
	adminHandler.Register(admins)
	reportHandler.Register(admins.Group("/reports"))

	return router
}
