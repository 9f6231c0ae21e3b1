package app

import (
	"context"
	"math/rand"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"crash-platform/internal/account"
	"crash-platform/internal/audit"
	"crash-platform/internal/cache"
	"crash-platform/internal/config"
	"crash-platform/internal/db"
	"crash-platform/internal/event"
	"crash-platform/internal/game"
	"crash-platform/internal/jobs"
	"crash-platform/internal/ledger"
	"crash-platform/internal/logger"
	"crash-platform/internal/monitoring"
	"crash-platform/internal/referral"
	"crash-platform/internal/security"
	"crash-platform/internal/wallet"
	"crash-platform/internal/ws"
)

type Server struct {
	app  *fiber.App
	jobs *jobs.Manager
}

func NewServer() *Server {
	logger.Init()
	cfg := config.Load()
	monitoring.Init()
	cache.Init(cfg.RedisAddr)
	database := db.Init(cfg.DBPath)

	bus := event.NewBus()
	ledgerService := ledger.New(database)
	accountService := account.New(database, ledgerService)
	referralService := referral.New(database, accountService, ledgerService, bus)
	accountService.SetTurnoverSink(referralService)

	auditService := audit.New(database)
	walletService := wallet.New(database, accountService, ledgerService, referralService, auditService)

	board := game.NewLeaderboard()
	policy := game.NewPolicy(rand.New(rand.NewSource(time.Now().UnixNano())))
	scheduler := game.NewScheduler(cfg.Game, policy, cfg.FixedOutcomeUID,
		database, accountService, ledgerService, bus, board)

	hub := ws.NewHub()
	RegisterConsumers(bus, hub, auditService)

	manager := jobs.New()
	manager.Register(scheduler)

	app := fiber.New()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(hub.Handler))

	api := app.Group("/api", security.APIKeyGuard())
	account.RegisterRoutes(api, accountService)
	wallet.RegisterRoutes(api, walletService)
	referral.RegisterRoutes(api, referralService)
	game.RegisterRoutes(api, scheduler, board)

	admin := app.Group("/admin", security.AdminGuard())
	wallet.RegisterAdminRoutes(admin, walletService)

	return &Server{app: app, jobs: manager}
}

func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go s.jobs.Start(ctx)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return s.app.Listen(":" + port)
}
