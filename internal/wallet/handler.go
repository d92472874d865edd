package wallet

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/midori-pay/midori_pay/internal/business"
)

// Handler exposes the wallet's mutating entry points and balance queries.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type chargeRequest struct {
	Amount int64  `json:"amount"`
	Method string `json:"method"`
}

type payRequest struct {
	Amount      int64  `json:"amount"`
	Method      string `json:"method"`
	Description string `json:"description"`
	CampaignID  string `json:"campaign_id"`
	EcoEnabled  bool   `json:"eco_enabled"`
	EcoAmount   int64  `json:"eco_amount"`
}

type donateRequest struct {
	Amount     int64  `json:"amount"`
	ProjectRef string `json:"project_ref"`
}

type transferRequest struct {
	Amount       int64  `json:"amount"`
	RecipientRef string `json:"recipient_ref"`
}

type receiveRequest struct {
	Amount    int64  `json:"amount"`
	SenderRef string `json:"sender_ref"`
}

type receiptResponse struct {
	TransactionID string `json:"transaction_id"`
	Balance       int64  `json:"balance"`
	Fee           int64  `json:"fee,omitempty"`
	CompletedAt   string `json:"completed_at"`
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	Field     string `json:"field,omitempty"`
	Limit     int64  `json:"limit,omitempty"`
	Attempted int64  `json:"attempted,omitempty"`
	LimitType string `json:"limit_type,omitempty"`
	Min       *int64 `json:"min,omitempty"`
	Max       *int64 `json:"max,omitempty"`
}

type campaignResponse struct {
	ID         string `json:"id"`
	Amount     int64  `json:"amount"`
	Label      string `json:"label"`
	ExpiresAt  string `json:"expires_at"`
	Conditions string `json:"conditions,omitempty"`
	DaysLeft   int    `json:"days_left"`
	Expired    bool   `json:"expired"`
}

// Charge handles POST /charges.
func (h *Handler) Charge(c *fiber.Ctx) error {
	var req chargeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	receipt, err := h.service.Charge(c.UserContext(), ChargeInput{Amount: req.Amount, Method: req.Method})
	if err != nil {
		return respondBusinessError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(toReceiptResponse(receipt))
}

// Pay handles POST /payments.
func (h *Handler) Pay(c *fiber.Ctx) error {
	var req payRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	receipt, err := h.service.Pay(c.UserContext(), PayInput{
		Amount:      req.Amount,
		Method:      req.Method,
		Description: req.Description,
		CampaignID:  req.CampaignID,
		Eco:         EcoOption{Enabled: req.EcoEnabled, Amount: req.EcoAmount},
	})
	if err != nil {
		return respondBusinessError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(toReceiptResponse(receipt))
}

// Donate handles POST /donations.
func (h *Handler) Donate(c *fiber.Ctx) error {
	var req donateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	receipt, err := h.service.Donate(c.UserContext(), DonateInput{Amount: req.Amount, ProjectRef: req.ProjectRef})
	if err != nil {
		return respondBusinessError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(toReceiptResponse(receipt))
}

// Transfer handles POST /transfers.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	receipt, err := h.service.Transfer(c.UserContext(), TransferInput{Amount: req.Amount, RecipientRef: req.RecipientRef})
	if err != nil {
		return respondBusinessError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(toReceiptResponse(receipt))
}

// Receive handles POST /receives.
func (h *Handler) Receive(c *fiber.Ctx) error {
	var req receiveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	receipt, err := h.service.Receive(c.UserContext(), ReceiveInput{Amount: req.Amount, SenderRef: req.SenderRef})
	if err != nil {
		return respondBusinessError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(toReceiptResponse(receipt))
}

// Sweep handles POST /sweeps/expired.
func (h *Handler) Sweep(c *fiber.Ctx) error {
	ids, err := h.service.SweepExpiredCampaigns(c.UserContext(), time.Now().UTC())
	if err != nil {
		return respondBusinessError(c, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"transaction_ids": ids,
		"balance":         h.service.TotalBalance(),
	})
}

// Balance handles GET /balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"regular":   h.service.RegularBalance(),
		"total":     h.service.TotalBalance(),
		"currency":  business.Currency,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Campaigns handles GET /balance/campaigns.
func (h *Handler) Campaigns(c *fiber.Ctx) error {
	now := time.Now().UTC()
	campaigns := h.service.CampaignBalances()
	out := make([]campaignResponse, 0, len(campaigns))
	for _, cb := range campaigns {
		out = append(out, campaignResponse{
			ID:         cb.ID,
			Amount:     cb.Amount,
			Label:      cb.Label,
			ExpiresAt:  cb.ExpiresAt.Format(time.RFC3339),
			Conditions: cb.Conditions,
			DaysLeft:   cb.DaysLeft(now),
			Expired:    cb.Expired(now),
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"campaigns": out})
}

func toReceiptResponse(r Receipt) receiptResponse {
	return receiptResponse{
		TransactionID: r.TransactionID,
		Balance:       r.Balance,
		Fee:           r.Fee,
		CompletedAt:   r.CompletedAt.Format(time.RFC3339),
	}
}

// respondBusinessError maps a typed business error to its HTTP shape.
// Unexpected errors are surfaced as retryable server errors.
func respondBusinessError(c *fiber.Ctx, err error) error {
	bizErr, ok := business.As(err)
	if !ok {
		bizErr = business.ServerError(err)
	}
	status := http.StatusUnprocessableEntity
	if bizErr.Code == business.CodeServerError {
		status = http.StatusInternalServerError
	}
	return c.Status(status).JSON(errorResponse{
		Code:      string(bizErr.Code),
		Message:   bizErr.Message,
		Retryable: bizErr.Retryable,
		Field:     bizErr.Field,
		Limit:     bizErr.Limit,
		Attempted: bizErr.Attempted,
		LimitType: bizErr.LimitType,
		Min:       bizErr.Min,
		Max:       bizErr.Max,
	})
}
