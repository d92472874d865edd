package ecoimpact

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes eco-impact reads over HTTP.
type Handler struct {
	aggregator *Aggregator
}

// NewHandler builds an eco-impact HTTP handler.
func NewHandler(aggregator *Aggregator) *Handler {
	return &Handler{aggregator: aggregator}
}

// Impact handles GET /eco/impact.
func (h *Handler) Impact(c *fiber.Ctx) error {
	state := h.aggregator.Snapshot()
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"forest_area_m2":   state.ForestArea.String(),
		"water_saved_l":    state.WaterSaved.String(),
		"co2_reduction_kg": state.Co2Reduction.String(),
		"total_donation":   state.TotalDonation,
		"monthly_donation": state.MonthlyDonation,
		"progress_percent": state.ProgressPercent,
		"rank":             state.Rank,
	})
}

// Rank handles GET /eco/rank.
func (h *Handler) Rank(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"rank":           h.aggregator.Rank(),
		"total_donation": h.aggregator.TotalDonation(),
	})
}
