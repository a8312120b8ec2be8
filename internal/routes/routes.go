package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/clipstream/clipstream/internal/account"
	"github.com/clipstream/clipstream/internal/auth"
	"github.com/clipstream/clipstream/internal/config"
	"github.com/clipstream/clipstream/internal/media"
	"github.com/clipstream/clipstream/internal/middleware"
	"github.com/clipstream/clipstream/internal/notification"
	"github.com/clipstream/clipstream/internal/social"
)

// Deps aggregates shared dependencies required to wire routes. DB, Cache,
// and Media may be nil in development, in which case in-memory stand-ins
// are used.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Media  media.Store
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce backend presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	var users account.Repository
	if d.DB != nil {
		users = account.NewPostgresRepository(d.DB)
	} else {
		users = account.NewMemoryRepository()
	}

	var graph social.Graph
	if d.DB != nil {
		graph = social.NewPostgresGraph(d.DB)
	} else {
		graph = social.NewMemoryGraph()
	}

	store := d.Media
	if store == nil {
		store = media.NewMemoryStore()
	}

	hasher, err := auth.NewHasher(d.Cfg.BcryptCost, d.Cfg.HashConcurrency)
	if err != nil {
		return err
	}
	tokens := auth.NewIssuer(d.Cfg.AccessTokenSecret, d.Cfg.RefreshTokenSecret,
		d.Cfg.AccessTokenTTL, d.Cfg.RefreshTokenTTL)
	verifier := auth.NewTokenVerifier(tokens, users, d.Logger)

	accountSvc := account.NewService(users, hasher)
	sessionSvc := auth.NewSessionService(users, hasher, tokens)
	notifier := notification.NewLoggerNotifier(d.Logger)
	socialSvc := social.NewService(graph, accountSvc, notifier)

	accountHandler := account.NewHandler(accountSvc, store)
	authHandler := auth.NewHandler(sessionSvc, tokens)
	socialHandler := social.NewHandler(socialSvc)

	// API routes
	api := app.Group("/api/v1")

	authRequired := middleware.Auth(verifier)
	authOptional := middleware.OptionalAuth(verifier)
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)

	RegisterAccountRoutes(api, accountHandler, authRequired)
	RegisterAuthRoutes(api, authHandler, authRequired, rateLimiter)
	RegisterSocialRoutes(api, socialHandler, authRequired, authOptional)

	return nil
}
