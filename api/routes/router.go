package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/shopfront-backend/api/controllers"
	"github.com/angelmondragon/shopfront-backend/api/middleware"
	"github.com/angelmondragon/shopfront-backend/internal/auth"
	"github.com/angelmondragon/shopfront-backend/internal/orders"
	"github.com/angelmondragon/shopfront-backend/internal/products"
	"github.com/angelmondragon/shopfront-backend/internal/reviews"
	"github.com/angelmondragon/shopfront-backend/internal/users"
	"github.com/angelmondragon/shopfront-backend/pkg/config"
	"github.com/angelmondragon/shopfront-backend/pkg/logger"
	"github.com/angelmondragon/shopfront-backend/pkg/metrics"
	"github.com/angelmondragon/shopfront-backend/pkg/redis"
)

// Cache is the redis surface used by the router; *redis.Client satisfies it.
type Cache interface {
	controllers.Pinger
	redis.RateLimitStore
	redis.IdempotencyStore
}

// Dependencies carries everything the router wires into handlers. Redis,
// HTTPMetrics and MetricsHandler are optional; leave Redis nil (not a typed
// nil pointer) to disable rate limiting and idempotency.
type Dependencies struct {
	DB             controllers.Pinger
	Redis          Cache
	Verifier       middleware.TokenVerifier
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler

	AuthService     auth.Service
	RegisterService auth.RegisterService
	UserService     users.Service
	ProductService  products.Service
	OrderService    orders.Service
	ReviewService   reviews.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.HTTP.CORSAllowedOrigins),
	)

	// Interfaces stay nil when redis is disabled so the middlewares skip.
	var (
		rateStore        redis.RateLimitStore
		idempotencyStore redis.IdempotencyStore
		readiness        = map[string]controllers.Pinger{"db": deps.DB}
	)
	if deps.Redis != nil {
		rateStore = deps.Redis
		idempotencyStore = deps.Redis
		readiness["redis"] = deps.Redis
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUsernameLimit,
	)
	requireAuth := middleware.Auth(deps.Verifier, deps.UserService, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, readiness, logg))
	})

	if cfg.Metrics.Enabled && deps.MetricsHandler != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, deps.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, rateStore, logg)).Post("/register", controllers.AuthRegister(deps.RegisterService, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/token", controllers.AuthToken(deps.AuthService, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", controllers.UserMe(deps.UserService, logg))
			r.Patch("/{username}", controllers.UserUpdate(deps.UserService, logg))
			r.Delete("/{userId}", controllers.UserDelete(deps.UserService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.ProductService, logg))
			r.Post("/", controllers.ProductCreate(deps.ProductService, logg))
			r.Get("/{productId}", controllers.ProductGet(deps.ProductService, logg))
			r.Patch("/{productId}", controllers.ProductUpdate(deps.ProductService, logg))
			r.Delete("/{productId}", controllers.ProductDelete(deps.ProductService, logg))
			r.Get("/{productId}/reviews", controllers.ProductReviews(deps.ReviewService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", controllers.OrderList(deps.OrderService, logg))
			// Inline so the full route pattern is known when it runs.
			r.With(middleware.Idempotency(idempotencyStore, logg)).Post("/", controllers.OrderCreate(deps.OrderService, logg))
			r.Get("/{orderId}", controllers.OrderGet(deps.OrderService, logg))
			r.Patch("/{orderId}", controllers.OrderUpdate(deps.OrderService, logg))
			r.Delete("/{orderId}", controllers.OrderDelete(deps.OrderService, logg))
			r.Post("/{orderId}/products/{productId}", controllers.OrderAddProduct(deps.OrderService, logg))
			r.Delete("/{orderId}/products/{productId}", controllers.OrderRemoveProduct(deps.OrderService, logg))
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/{reviewId}", controllers.ReviewGet(deps.ReviewService, logg))
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", controllers.ReviewCreate(deps.ReviewService, logg))
				r.Patch("/{reviewId}", controllers.ReviewUpdate(deps.ReviewService, logg))
				r.Delete("/{reviewId}", controllers.ReviewDelete(deps.ReviewService, logg))
			})
		})
	})

	return r
}
