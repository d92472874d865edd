package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/midori-pay/midori_pay/internal/ecoimpact"
)

// RegisterEcoRoutes wires eco-impact queries.
func RegisterEcoRoutes(r fiber.Router, h *ecoimpact.Handler) {
	r.Get("/eco/impact", h.Impact)
	r.Get("/eco/rank", h.Rank)
}
