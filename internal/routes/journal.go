package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/midori-pay/midori_pay/internal/journal"
)

// RegisterJournalRoutes wires transaction history queries.
func RegisterJournalRoutes(r fiber.Router, h *journal.Handler) {
	r.Get("/transactions", h.List)
	r.Get("/transactions/eco/total", h.EcoTotal)
	r.Get("/transactions/:txId", h.Get)
}
