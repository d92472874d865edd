package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/midori-pay/midori_pay/internal/wallet"
)

// RegisterWalletRoutes wires balance queries and the mutating entry points.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Get("/balance", h.Balance)
	r.Get("/balance/campaigns", h.Campaigns)

	r.Post("/charges", h.Charge)
	r.Post("/payments", h.Pay)
	r.Post("/donations", h.Donate)
	r.Post("/transfers", h.Transfer)
	r.Post("/receives", h.Receive)
	r.Post("/sweeps/expired", h.Sweep)
}
