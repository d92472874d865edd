package journal

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes read-only journal queries over HTTP.
type Handler struct {
	journal *Journal
}

// NewHandler builds a journal HTTP handler.
func NewHandler(journal *Journal) *Handler {
	return &Handler{journal: journal}
}

type transactionResponse struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Amount      int64    `json:"amount"`
	EcoEnabled  bool     `json:"eco_enabled,omitempty"`
	EcoAmount   int64    `json:"eco_amount,omitempty"`
	Badges      []string `json:"badges,omitempty"`
	Style       string   `json:"style"`
}

// List handles GET /transactions with optional type, from/to (YYYY-MM-DD),
// eco and limit filters. Filters compose by narrowing in that order.
func (h *Handler) List(c *fiber.Ctx) error {
	txs := h.journal.All()

	if t := c.Query("type"); t != "" {
		txs = filter(txs, func(tx Transaction) bool { return tx.Type == Type(t) })
	}

	fromRaw, toRaw := c.Query("from"), c.Query("to")
	if fromRaw != "" || toRaw != "" {
		from, to, err := parseDateRange(fromRaw, toRaw)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		txs = filter(txs, func(tx Transaction) bool {
			d := calendarDate(tx.Date)
			return !d.Before(from) && !d.After(to)
		})
	}

	if c.Query("eco") == "true" {
		txs = filter(txs, func(tx Transaction) bool {
			return tx.EcoContribution != nil && tx.EcoContribution.Enabled
		})
	}

	if limitRaw := c.Query("limit"); limitRaw != "" {
		limit, err := strconv.Atoi(limitRaw)
		if err != nil || limit < 0 {
			return fiber.NewError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		if limit < len(txs) {
			txs = txs[:limit]
		}
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"transactions": out,
		"total":        len(out),
	})
}

// Get handles GET /transactions/:txId.
func (h *Handler) Get(c *fiber.Ctx) error {
	tx, ok := h.journal.ByID(c.Params("txId"))
	if !ok {
		return fiber.NewError(http.StatusNotFound, "transaction not found")
	}
	return c.Status(http.StatusOK).JSON(toTransactionResponse(tx))
}

// EcoTotal handles GET /transactions/eco/total.
func (h *Handler) EcoTotal(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"total_eco_contribution": h.journal.TotalEcoContribution(),
		"entries":                len(h.journal.WithEcoContribution()),
	})
}

func toTransactionResponse(tx Transaction) transactionResponse {
	resp := transactionResponse{
		ID:          tx.ID,
		Type:        string(tx.Type),
		Description: tx.Description,
		Date:        tx.Date.Format(time.RFC3339),
		Amount:      tx.Amount,
		Badges:      tx.Badges,
		Style:       string(Classify(tx)),
	}
	if tx.EcoContribution != nil {
		resp.EcoEnabled = tx.EcoContribution.Enabled
		resp.EcoAmount = tx.EcoContribution.Amount
	}
	return resp
}

func filter(txs []Transaction, keep func(Transaction) bool) []Transaction {
	out := txs[:0:0]
	for _, tx := range txs {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	return out
}

func parseDateRange(fromRaw, toRaw string) (time.Time, time.Time, error) {
	from := time.Time{}
	to := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	if fromRaw != "" {
		parsed, err := time.Parse("2006-01-02", fromRaw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if toRaw != "" {
		parsed, err := time.Parse("2006-01-02", toRaw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
	}
	return from, to, nil
}
