package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/midori-pay/midori_pay/internal/balance"
	"github.com/midori-pay/midori_pay/internal/config"
	"github.com/midori-pay/midori_pay/internal/ecoimpact"
	"github.com/midori-pay/midori_pay/internal/journal"
	"github.com/midori-pay/midori_pay/internal/middleware"
	"github.com/midori-pay/midori_pay/internal/notification"
	"github.com/midori-pay/midori_pay/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. The wallet core
// (ledger, journal, aggregator) lives in memory for the process lifetime
// and is seeded from configuration.
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	ledger := seedLedger(d.Cfg)
	jnl := journal.NewJournal()
	eco := ecoimpact.NewAggregator()
	notifier := notification.NewLoggerNotifier(d.Logger)
	walletSvc := wallet.NewService(ledger, jnl, eco, notifier, d.Logger)

	walletHandler := wallet.NewHandler(walletSvc)
	journalHandler := journal.NewHandler(jnl)
	ecoHandler := ecoimpact.NewHandler(eco)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterWalletRoutes(api, walletHandler)
	RegisterJournalRoutes(api, journalHandler)
	RegisterEcoRoutes(api, ecoHandler)

	return nil
}

func seedLedger(cfg config.Config) *balance.Ledger {
	var campaigns []balance.Campaign
	if cfg.SeedCampaignBalance > 0 {
		campaigns = append(campaigns, balance.Campaign{
			ID:         "welcome",
			Amount:     cfg.SeedCampaignBalance,
			Label:      "新規登録キャンペーン",
			ExpiresAt:  time.Now().UTC().AddDate(0, 0, 90),
			Conditions: "お支払いにのみご利用いただけます",
		})
	}
	return balance.NewLedger(cfg.SeedBalance, campaigns...)
}
