package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/midori-pay/midori_pay/internal/balance"
	"github.com/midori-pay/midori_pay/internal/business"
	"github.com/midori-pay/midori_pay/internal/ecoimpact"
	"github.com/midori-pay/midori_pay/internal/journal"
	"github.com/midori-pay/midori_pay/internal/notification"
)

// Service orchestrates the money-moving operations of a single wallet. Every
// mutating entry point validates first, then performs the journal append,
// the ledger mutation and the eco aggregation in that fixed order. The
// journal write is the commit point; a validation failure therefore
// guarantees zero side effects.
type Service struct {
	mu       sync.Mutex
	ledger   *balance.Ledger
	journal  *journal.Journal
	eco      *ecoimpact.Aggregator
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService wires the ledger, journal and aggregator into a wallet service.
// Dependencies are injected so tests can build isolated instances.
func NewService(ledger *balance.Ledger, jnl *journal.Journal, eco *ecoimpact.Aggregator, notifier notification.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{ledger: ledger, journal: jnl, eco: eco, notifier: notifier, logger: logger}
}

// Receipt is returned to the caller after a successful mutating operation.
type Receipt struct {
	TransactionID string
	Balance       int64
	Fee           int64
	CompletedAt   time.Time
}

// EcoOption flags the eco-contribution portion of a payment.
type EcoOption struct {
	Enabled bool
	Amount  int64
}

// ChargeInput captures a top-up request.
type ChargeInput struct {
	Amount int64
	Method string
}

// PayInput captures a payment request. CampaignID, when set, spends from
// that campaign pool instead of the regular balance.
type PayInput struct {
	Amount      int64
	Method      string
	Description string
	CampaignID  string
	Eco         EcoOption
}

// DonateInput captures an environmental donation.
type DonateInput struct {
	Amount     int64
	ProjectRef string
}

// TransferInput captures an outgoing transfer to another user.
type TransferInput struct {
	Amount       int64
	RecipientRef string
}

// ReceiveInput captures an incoming transfer credit.
type ReceiveInput struct {
	Amount    int64
	SenderRef string
}

// Charge credits the regular balance after validating amount and method.
// The fee is informational: the full amount is credited.
func (s *Service) Charge(ctx context.Context, input ChargeInput) (receipt Receipt, err error) {
	defer s.recoverGuard(&err)

	params, err := business.ValidatePaymentParams(business.PaymentParams{Amount: input.Amount, Method: input.Method})
	if err != nil {
		return Receipt{}, err
	}
	fee, err := business.CalculatePaymentFee(params.Amount, params.Method)
	if err != nil {
		return Receipt{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txID := s.journal.Add(journal.Entry{
		Type:        journal.TypeCharge,
		Description: fmt.Sprintf("チャージ（%s）", methodLabel(params.Method)),
		Amount:      params.Amount,
	})
	s.ledger.Credit(params.Amount)

	s.logger.Info("charge completed", "transaction_id", txID, "amount", params.Amount, "method", params.Method)
	return s.receipt(txID, fee), nil
}

// Pay debits the wallet after full parameter validation. The eco option,
// when enabled, earmarks part of the payment as an environmental
// contribution and feeds the aggregator.
func (s *Service) Pay(ctx context.Context, input PayInput) (receipt Receipt, err error) {
	defer s.recoverGuard(&err)

	params, err := business.ValidatePaymentParams(business.PaymentParams{
		Amount:      input.Amount,
		Method:      input.Method,
		Description: input.Description,
	})
	if err != nil {
		return Receipt{}, err
	}
	if input.Eco.Enabled {
		// The aggregator trusts its callers; a non-positive contribution
		// would walk the cumulative donation totals backwards.
		if input.Eco.Amount <= 0 {
			min := int64(1)
			return Receipt{}, business.InvalidAmount(&min, nil)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var badges []string
	if input.CampaignID != "" {
		if err := s.checkCampaignFunds(input.CampaignID, params.Amount); err != nil {
			return Receipt{}, err
		}
		badges = []string{journal.BadgeCampaign}
	} else if s.ledger.Regular() < params.Amount {
		return Receipt{}, business.PaymentFailed("残高が不足しています")
	}

	var eco *journal.EcoContribution
	if input.Eco.Enabled {
		eco = &journal.EcoContribution{Enabled: true, Amount: input.Eco.Amount}
	}

	description := input.Description
	if description == "" {
		description = "お支払い"
	}

	txID := s.journal.Add(journal.Entry{
		Type:            journal.TypePayment,
		Description:     description,
		Amount:          -params.Amount,
		EcoContribution: eco,
		Badges:          badges,
	})
	if input.CampaignID != "" {
		s.ledger.DebitCampaign(input.CampaignID, params.Amount)
	} else {
		s.ledger.Debit(params.Amount)
	}
	if eco != nil {
		s.eco.AddContribution(ecoimpact.Contribution{Amount: eco.Amount})
	}

	s.logger.Info("payment completed", "transaction_id", txID, "amount", params.Amount, "method", params.Method)
	return s.receipt(txID, 0), nil
}

// Donate debits the regular balance and records the full amount as an eco
// contribution.
func (s *Service) Donate(ctx context.Context, input DonateInput) (receipt Receipt, err error) {
	defer s.recoverGuard(&err)

	amount, err := business.ValidatePaymentAmount(input.Amount)
	if err != nil {
		return Receipt{}, err
	}
	project, err := business.RequireField("projectRef", input.ProjectRef)
	if err != nil {
		return Receipt{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ledger.Regular() < amount {
		return Receipt{}, business.PaymentFailed("残高が不足しています")
	}

	txID := s.journal.Add(journal.Entry{
		Type:            journal.TypeDonation,
		Description:     fmt.Sprintf("環境寄付（%s）", project),
		Amount:          -amount,
		EcoContribution: &journal.EcoContribution{Enabled: true, Amount: amount},
	})
	s.ledger.Debit(amount)
	s.eco.AddContribution(ecoimpact.Contribution{Amount: amount})

	s.notify(ctx, notification.Message{
		Kind:        notification.KindDonationReceipt,
		Destination: project,
		Body:        fmt.Sprintf("%d円の寄付を受け付けました", amount),
	})

	s.logger.Info("donation completed", "transaction_id", txID, "amount", amount, "project", project)
	return s.receipt(txID, 0), nil
}

// Transfer debits the regular balance and records an outgoing payment to
// another user.
func (s *Service) Transfer(ctx context.Context, input TransferInput) (receipt Receipt, err error) {
	defer s.recoverGuard(&err)

	amount, err := business.ValidatePaymentAmount(input.Amount)
	if err != nil {
		return Receipt{}, err
	}
	recipient, err := business.RequireField("recipientRef", input.RecipientRef)
	if err != nil {
		return Receipt{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ledger.Regular() < amount {
		return Receipt{}, business.PaymentFailed("残高が不足しています")
	}

	txID := s.journal.Add(journal.Entry{
		Type:        journal.TypePayment,
		Description: fmt.Sprintf("送金（%s宛）", recipient),
		Amount:      -amount,
	})
	s.ledger.Debit(amount)

	s.notify(ctx, notification.Message{
		Kind:        notification.KindTransferSent,
		Destination: recipient,
		Body:        fmt.Sprintf("%d円を送金しました", amount),
	})

	s.logger.Info("transfer completed", "transaction_id", txID, "amount", amount, "recipient", recipient)
	return s.receipt(txID, 0), nil
}

// Receive credits an incoming transfer.
func (s *Service) Receive(ctx context.Context, input ReceiveInput) (receipt Receipt, err error) {
	defer s.recoverGuard(&err)

	amount, err := business.ValidatePaymentAmount(input.Amount)
	if err != nil {
		return Receipt{}, err
	}
	sender, err := business.RequireField("senderRef", input.SenderRef)
	if err != nil {
		return Receipt{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txID := s.journal.Add(journal.Entry{
		Type:        journal.TypeReceive,
		Description: fmt.Sprintf("受け取り（%sから）", sender),
		Amount:      amount,
	})
	s.ledger.Credit(amount)

	s.notify(ctx, notification.Message{
		Kind:        notification.KindFundsReceived,
		Destination: sender,
		Body:        fmt.Sprintf("%d円を受け取りました", amount),
	})

	return s.receipt(txID, 0), nil
}

// SweepExpiredCampaigns zeroes every expired campaign pool that still holds
// funds and journals each as an expired transaction. Returns the ids of the
// recorded entries.
func (s *Service) SweepExpiredCampaigns(ctx context.Context, now time.Time) (ids []string, err error) {
	defer s.recoverGuard(&err)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.ledger.Expired(now) {
		taken := s.ledger.TakeExpired(c.ID, now)
		if taken == 0 {
			continue
		}
		txID := s.journal.Add(journal.Entry{
			Type:        journal.TypeExpired,
			Description: fmt.Sprintf("%sの残高が失効しました", c.Label),
			Amount:      -taken,
			Badges:      []string{journal.BadgeExpired},
		})
		ids = append(ids, txID)
		s.logger.Info("campaign balance expired", "transaction_id", txID, "campaign_id", c.ID, "amount", taken)
	}
	return ids, nil
}

// TotalBalance returns regular plus campaign funds.
func (s *Service) TotalBalance() int64 {
	return s.ledger.Total()
}

// RegularBalance returns the unrestricted portion of the balance.
func (s *Service) RegularBalance() int64 {
	return s.ledger.Regular()
}

// CampaignBalances returns a snapshot of all campaign pools.
func (s *Service) CampaignBalances() []balance.Campaign {
	return s.ledger.Campaigns()
}

// EcoState returns the cumulative eco-impact snapshot.
func (s *Service) EcoState() ecoimpact.State {
	return s.eco.Snapshot()
}

// EcoRank returns the contributor tier label.
func (s *Service) EcoRank() string {
	return s.eco.Rank()
}

// Journal exposes the transaction journal for read queries.
func (s *Service) Journal() *journal.Journal {
	return s.journal
}

// checkCampaignFunds verifies the named pool exists, has not expired and
// covers the amount. Called with s.mu held.
func (s *Service) checkCampaignFunds(id string, amount int64) error {
	for _, c := range s.ledger.Campaigns() {
		if c.ID != id {
			continue
		}
		if c.Expired(time.Now().UTC()) {
			return business.PaymentFailed("この特典残高は有効期限切れです")
		}
		if c.Amount < amount {
			return business.PaymentFailed("特典残高が不足しています")
		}
		return nil
	}
	return business.PaymentFailed("特典残高が見つかりません")
}

func (s *Service) receipt(txID string, fee int64) Receipt {
	return Receipt{
		TransactionID: txID,
		Balance:       s.ledger.Total(),
		Fee:           fee,
		CompletedAt:   time.Now().UTC(),
	}
}

func (s *Service) notify(ctx context.Context, msg notification.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn("notification failed", "kind", msg.Kind, "error", err)
	}
}

// recoverGuard converts a panic escaping an orchestrator into a typed
// server error so the caller always sees an error value.
func (s *Service) recoverGuard(err *error) {
	if r := recover(); r != nil {
		s.logger.Error("orchestrator panic", "panic", r)
		*err = business.ServerError(fmt.Errorf("panic: %v", r))
	}
}

func methodLabel(method string) string {
	switch method {
	case business.MethodBankTransfer:
		return "銀行振込"
	case business.MethodCreditCard:
		return "クレジットカード"
	case business.MethodConvenienceStore:
		return "コンビニ"
	case business.MethodATM:
		return "ATM"
	default:
		return method
	}
}
