package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/store"
)

// Deps is everything the routes need.
type Deps struct {
	Config       *config.Config
	Store        *store.Store
	Repositories *repository.Repositories
	AuthService  *services.AuthService
	Ping         func() error
}

func Setup(app *fiber.App, d Deps) {
	cfg := d.Config
	repos := d.Repositories
	tokens := d.AuthService.Tokens()

	authHandler := handlers.NewAuthHandler(d.AuthService)
	healthHandler := handlers.NewHealthHandler(d.Store, cfg.StoreBackend, d.Ping)
	userHandler := handlers.NewUserHandler(repos.Users, d.AuthService)
	consultationHandler := handlers.NewConsultationHandler(repos.Consultations)
	ordonnanceHandler := handlers.NewOrdonnanceHandler(repos.Ordonnances)
	certificatHandler := handlers.NewCertificatHandler(repos.Certificats)
	storeHandler := handlers.NewStoreHandler(d.Store)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// General API rate limit per IP
	api.Use(limiter.New(limiter.Config{
		Max:               cfg.RateLimitMax,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth (public), stricter limit
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		Next:              func(c *fiber.Ctx) bool { return c.Method() == fiber.MethodGet },
	}))
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/session", authHandler.Session)

	protected := middleware.SessionRequired(cfg, tokens)

	users := api.Group("/users", protected)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Get("/:id", userHandler.Get)
	users.Patch("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)

	consultations := api.Group("/consultations", protected)
	consultations.Get("/", consultationHandler.List)
	consultations.Post("/", consultationHandler.Create)
	consultations.Get("/:id", consultationHandler.Get)
	consultations.Patch("/:id", consultationHandler.Update)
	consultations.Delete("/:id", consultationHandler.Delete)

	ordonnances := api.Group("/ordonnances", protected)
	ordonnances.Get("/", ordonnanceHandler.List)
	ordonnances.Post("/", ordonnanceHandler.Create)
	ordonnances.Get("/:id", ordonnanceHandler.Get)
	ordonnances.Patch("/:id", ordonnanceHandler.Update)
	ordonnances.Delete("/:id", ordonnanceHandler.Delete)

	certificats := api.Group("/certificats", protected)
	certificats.Get("/", certificatHandler.List)
	certificats.Post("/", certificatHandler.Create)
	certificats.Get("/:id", certificatHandler.Get)
	certificats.Patch("/:id", certificatHandler.Update)
	certificats.Delete("/:id", certificatHandler.Delete)

	// Raw store (admin)
	admin := api.Group("/store", middleware.AdminRequired(cfg, tokens, repos.Users))
	admin.Get("/export", storeHandler.Export)
	admin.Post("/import", storeHandler.Import)
	admin.Delete("/", storeHandler.Clear)
	admin.Get("/keys", storeHandler.Keys)
	admin.Post("/get-many", storeHandler.GetMany)
	admin.Post("/delete-many", storeHandler.DeleteMany)
}
