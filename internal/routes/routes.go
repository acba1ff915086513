package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/atlas-bank/atlas_bank/internal/accounts"
	"github.com/atlas-bank/atlas_bank/internal/auth"
	"github.com/atlas-bank/atlas_bank/internal/config"
	"github.com/atlas-bank/atlas_bank/internal/identity"
	"github.com/atlas-bank/atlas_bank/internal/ledger"
	"github.com/atlas-bank/atlas_bank/internal/middleware"
	"github.com/atlas-bank/atlas_bank/internal/notification"
	"github.com/atlas-bank/atlas_bank/internal/transactions"
	"github.com/atlas-bank/atlas_bank/internal/transfers"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev; tests run without either.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
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

	// Backends
	var ledgerBackend ledger.Ledger
	if d.DB != nil {
		ledgerBackend = ledger.NewPostgresLedger(d.DB)
	} else {
		ledgerBackend = ledger.NewInMemory()
	}

	var identityRepo identity.Repository
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
	}

	// Services and handlers
	identitySvc := identity.NewService(identityRepo, ledgerBackend)
	tokenSvc := auth.NewService(d.Cfg)
	notifier := notification.NewLoggerNotifier(d.Logger)

	authHandler := auth.NewHandler(identitySvc, tokenSvc)
	accountHandler := accounts.NewHandler(accounts.NewService(ledgerBackend))
	transferHandler := transfers.NewHandler(transfers.NewService(ledgerBackend, notifier))
	transactionHandler := transactions.NewHandler(transactions.NewService(ledgerBackend))

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	// Protected routes
	jwtmw := middleware.JWTAuth(tokenSvc)
	protected := api.Group("", jwtmw)
	RegisterAccountRoutes(protected, accountHandler)
	RegisterTransferRoutes(protected, transferHandler)
	RegisterTransactionRoutes(protected, transactionHandler)

	return nil
}
