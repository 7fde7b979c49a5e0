package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/huahuacuna/fundacion-api/docs"
	"github.com/huahuacuna/fundacion-api/internal/api/handler"
	"github.com/huahuacuna/fundacion-api/internal/api/middleware"
	"github.com/huahuacuna/fundacion-api/internal/core/policy"
	"github.com/huahuacuna/fundacion-api/internal/core/ports"
	"github.com/huahuacuna/fundacion-api/internal/infrastructure/http/handlers"
)

// Services are the core use cases the HTTP layer exposes.
type Services struct {
	Accounts     ports.AccountService
	Users        ports.UserService
	Children     ports.ChildService
	Sponsorships ports.SponsorshipService
	Donations    ports.DonationService
	Logbook      ports.LogbookService
	Events       ports.EventService
	Projects     ports.ProjectService
}

type Options struct {
	Log         zerolog.Logger
	CORSOrigins []string
	// Checks are the readiness probes, keyed by dependency name.
	Checks map[string]handlers.Check
	// Registerer receives the HTTP metrics. Nil means the default registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(opts.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: opts.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "fundacion",
		Registerer: opts.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health" || c.Path() == "/health/ready"
		},
	}))

	// --- Health, metrics, docs (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(opts.Checks)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	gatherer := prometheus.DefaultGatherer
	if g, ok := opts.Registerer.(prometheus.Gatherer); ok {
		gatherer = g
	}
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authn := middleware.Auth(svc.Accounts)
	can := middleware.Authorize

	// --- Accounts ---
	authHandler := handler.NewAuthHandler(svc.Accounts)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, authn)

	api := e.Group("/api")

	users := api.Group("/usuarios")
	userHandler := handler.NewUserHandler(svc.Users, opts.Log)
	users.POST("/recuperar", authHandler.StartRecovery)
	users.POST("/recuperar/verificar", authHandler.VerifyCode)
	users.POST("/recuperar/reset", authHandler.ResetPassword)
	users.POST("/cambiar", authHandler.ChangePassword, authn)
	users.GET("/perfil", userHandler.Profile, authn)
	users.PUT("/perfil", userHandler.UpdateProfile, authn)
	users.GET("", userHandler.List, authn, can(policy.UsersManage))
	users.POST("", userHandler.Create, authn, can(policy.UsersManage))
	users.PATCH("/:id", userHandler.SetAccess, authn, can(policy.UsersManage))

	// --- Children ---
	children := api.Group("/ninos")
	childHandler := handler.NewChildHandler(svc.Children)
	children.GET("/publico/:id", childHandler.PublicProfile)
	children.GET("", childHandler.List, authn, can(policy.ChildrenList))
	children.GET("/:id", childHandler.Get, authn, can(policy.ChildrenManage))
	children.POST("", childHandler.Create, authn, can(policy.ChildrenManage))
	children.PATCH("/:id", childHandler.Update, authn, can(policy.ChildrenManage))
	children.DELETE("/:id", childHandler.Delete, authn, can(policy.ChildrenManage))

	// --- Sponsorships ---
	sponsorships := api.Group("/apadrinamientos", authn)
	sponsorshipHandler := handler.NewSponsorshipHandler(svc.Sponsorships)
	sponsorships.POST("", sponsorshipHandler.Create, can(policy.SponsorshipsCreate))
	sponsorships.GET("/mis-ahijados", sponsorshipHandler.Mine, can(policy.SponsorshipsOwn))
	sponsorships.GET("", sponsorshipHandler.List, can(policy.SponsorshipsManage))
	sponsorships.GET("/:id", sponsorshipHandler.Get, can(policy.SponsorshipsManage))
	sponsorships.POST("/:id/finalizar", sponsorshipHandler.Finalize, can(policy.SponsorshipsManage))

	// --- Donations ---
	donations := api.Group("/donaciones")
	donationHandler := handler.NewDonationHandler(svc.Donations)
	donations.POST("", donationHandler.Create, middleware.OptionalAuth(svc.Accounts))
	donations.GET("", donationHandler.List, authn, can(policy.DonationsManage))
	donations.GET("/reporte", donationHandler.Report, authn, can(policy.DonationsManage))
	donations.GET("/:id", donationHandler.Get, authn, can(policy.DonationsManage))
	donations.PATCH("/:id/estado", donationHandler.UpdateState, authn, can(policy.DonationsManage))
	donations.DELETE("/:id", donationHandler.Delete, authn, can(policy.DonationsManage))

	// --- Bitácora ---
	logbook := api.Group("/bitacora", authn)
	logbookHandler := handler.NewLogbookHandler(svc.Logbook)
	logbook.GET("/nino/:ninoId", logbookHandler.ListByChild, can(policy.LogbookRead))
	logbook.POST("/nino/:ninoId", logbookHandler.Create, can(policy.LogbookManage))
	logbook.GET("/:id", logbookHandler.Get, can(policy.LogbookRead))
	logbook.PATCH("/:id", logbookHandler.Update, can(policy.LogbookManage))
	logbook.DELETE("/:id", logbookHandler.Delete, can(policy.LogbookManage))

	// --- Events ---
	events := api.Group("/eventos")
	eventHandler := handler.NewEventHandler(svc.Events)
	events.GET("", eventHandler.List)
	events.GET("/:id", eventHandler.Get)
	events.POST("", eventHandler.Create, authn, can(policy.EventsManage))
	events.PUT("/:id", eventHandler.Update, authn, can(policy.EventsManage))
	events.DELETE("/:id", eventHandler.Delete, authn, can(policy.EventsManage))
	events.POST("/:id/inscripciones", eventHandler.Register)
	events.GET("/:id/inscripciones", eventHandler.ListRegistrations, authn, can(policy.EventsManage))

	registrations := api.Group("/inscripciones", authn, can(policy.EventsManage))
	registrations.GET("", eventHandler.ListRegistrations)
	registrations.PATCH("/:id/estado", eventHandler.UpdateRegistrationState)

	// --- Projects ---
	projects := api.Group("/proyectos")
	projectHandler := handler.NewProjectHandler(svc.Projects)
	projects.GET("", projectHandler.List)
	projects.GET("/:id", projectHandler.Get)
	projects.POST("", projectHandler.Create, authn, can(policy.ProjectsManage))
	projects.PATCH("/:id", projectHandler.Update, authn, can(policy.ProjectsManage))
	projects.DELETE("/:id", projectHandler.Delete, authn, can(policy.ProjectsManage))
	projects.POST("/:id/voluntarios", projectHandler.Enroll, authn, can(policy.VolunteeringEnroll))
	projects.GET("/:id/voluntarios", projectHandler.ListVolunteers, authn, can(policy.ProjectsManage))

	return e
}
