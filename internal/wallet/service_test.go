package wallet

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midori-pay/midori_pay/internal/balance"
	"github.com/midori-pay/midori_pay/internal/business"
	"github.com/midori-pay/midori_pay/internal/ecoimpact"
	"github.com/midori-pay/midori_pay/internal/journal"
	"github.com/midori-pay/midori_pay/internal/logging"
	"github.com/midori-pay/midori_pay/internal/notification"
)

type testNotifier struct {
	messages []notification.Message
}

func (n *testNotifier) Send(_ context.Context, msg notification.Message) error {
	n.messages = append(n.messages, msg)
	return nil
}

func newTestService(regular int64, campaigns ...balance.Campaign) (*Service, *journal.Journal, *ecoimpact.Aggregator, *testNotifier) {
	jnl := journal.NewJournal()
	eco := ecoimpact.NewAggregator()
	notifier := &testNotifier{}
	svc := NewService(balance.NewLedger(regular, campaigns...), jnl, eco, notifier, logging.Discard())
	return svc, jnl, eco, notifier
}

func TestDonateScenario(t *testing.T) {
	svc, jnl, eco, notifier := newTestService(6000, balance.Campaign{
		ID: "1", Amount: 2000, Label: "紹介ボーナス", ExpiresAt: time.Now().Add(24 * time.Hour),
	})

	receipt, err := svc.Donate(context.Background(), DonateInput{Amount: 1000, ProjectRef: "forest"})
	require.NoError(t, err)
	require.NotEmpty(t, receipt.TransactionID)

	assert.Equal(t, int64(5000), svc.RegularBalance())
	assert.Equal(t, int64(2000), svc.CampaignBalances()[0].Amount, "campaign pools untouched")
	assert.Equal(t, int64(7000), receipt.Balance)

	donations := jnl.ByType(journal.TypeDonation)
	require.Len(t, donations, 1)
	assert.Equal(t, int64(-1000), donations[0].Amount)
	require.NotNil(t, donations[0].EcoContribution)
	assert.True(t, donations[0].EcoContribution.Enabled)

	state := eco.Snapshot()
	assert.Equal(t, int64(1000), state.TotalDonation)
	assert.True(t, decimal.RequireFromString("0.5").Equal(state.ForestArea), "forest %s", state.ForestArea)

	require.Len(t, notifier.messages, 1)
	assert.Equal(t, notification.KindDonationReceipt, notifier.messages[0].Kind)
}

func TestValidationFailureHasZeroSideEffects(t *testing.T) {
	svc, jnl, eco, _ := newTestService(6000)

	_, err := svc.Donate(context.Background(), DonateInput{Amount: -1, ProjectRef: "forest"})
	require.Error(t, err)

	_, err = svc.Pay(context.Background(), PayInput{Amount: 2_000_000, Method: business.MethodCreditCard})
	require.Error(t, err)
	bizErr, ok := business.As(err)
	require.True(t, ok)
	assert.Equal(t, business.CodeLimitExceeded, bizErr.Code)

	assert.Equal(t, int64(6000), svc.TotalBalance())
	assert.Zero(t, jnl.Len())
	assert.Zero(t, eco.TotalDonation())
}

func TestChargeCreditsAndReportsFee(t *testing.T) {
	svc, jnl, _, _ := newTestService(0)

	receipt, err := svc.Charge(context.Background(), ChargeInput{Amount: 10_000, Method: business.MethodCreditCard})
	require.NoError(t, err)

	assert.Equal(t, int64(10_000), svc.TotalBalance())
	assert.Equal(t, int64(330), receipt.Fee)

	charges := jnl.ByType(journal.TypeCharge)
	require.Len(t, charges, 1)
	assert.Equal(t, int64(10_000), charges[0].Amount)
}

func TestPayWithEcoContribution(t *testing.T) {
	svc, jnl, eco, _ := newTestService(5000)

	_, err := svc.Pay(context.Background(), PayInput{
		Amount:      2000,
		Method:      business.MethodConvenienceStore,
		Description: "コーヒー",
		Eco:         EcoOption{Enabled: true, Amount: 100},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3000), svc.TotalBalance())
	assert.Equal(t, int64(100), jnl.TotalEcoContribution())
	assert.Equal(t, int64(100), eco.TotalDonation())
}

func TestPayRejectsNonPositiveEcoAmount(t *testing.T) {
	svc, jnl, eco, _ := newTestService(5000)

	for _, amount := range []int64{-5000, 0} {
		_, err := svc.Pay(context.Background(), PayInput{
			Amount: 1000,
			Method: business.MethodCreditCard,
			Eco:    EcoOption{Enabled: true, Amount: amount},
		})
		require.Error(t, err, "eco amount %d", amount)
		bizErr, ok := business.As(err)
		require.True(t, ok)
		assert.Equal(t, business.CodeInvalidAmount, bizErr.Code)
	}

	assert.Equal(t, int64(5000), svc.TotalBalance())
	assert.Zero(t, jnl.Len())
	assert.Zero(t, eco.TotalDonation())
	assert.GreaterOrEqual(t, eco.TotalDonation(), int64(0))
}

func TestPayInsufficientBalance(t *testing.T) {
	svc, jnl, _, _ := newTestService(100)

	_, err := svc.Pay(context.Background(), PayInput{Amount: 500, Method: business.MethodATM})
	require.Error(t, err)
	bizErr, ok := business.As(err)
	require.True(t, ok)
	assert.Equal(t, business.CodePaymentFailed, bizErr.Code)

	assert.Equal(t, int64(100), svc.TotalBalance())
	assert.Zero(t, jnl.Len())
}

func TestPayFromCampaignPool(t *testing.T) {
	svc, jnl, _, _ := newTestService(100, balance.Campaign{
		ID: "promo", Amount: 2000, Label: "特典残高", ExpiresAt: time.Now().Add(24 * time.Hour),
	})

	_, err := svc.Pay(context.Background(), PayInput{
		Amount:     1500,
		Method:     business.MethodConvenienceStore,
		CampaignID: "promo",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(100), svc.RegularBalance(), "regular untouched")
	assert.Equal(t, int64(500), svc.CampaignBalances()[0].Amount)

	payments := jnl.ByType(journal.TypePayment)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].HasBadge(journal.BadgeCampaign))
}

func TestPayFromCampaignPoolRejections(t *testing.T) {
	svc, jnl, _, _ := newTestService(0,
		balance.Campaign{ID: "small", Amount: 100, ExpiresAt: time.Now().Add(time.Hour)},
		balance.Campaign{ID: "old", Amount: 5000, ExpiresAt: time.Now().Add(-time.Hour)},
	)

	_, err := svc.Pay(context.Background(), PayInput{Amount: 500, Method: business.MethodATM, CampaignID: "small"})
	require.Error(t, err)

	_, err = svc.Pay(context.Background(), PayInput{Amount: 500, Method: business.MethodATM, CampaignID: "old"})
	require.Error(t, err)

	_, err = svc.Pay(context.Background(), PayInput{Amount: 500, Method: business.MethodATM, CampaignID: "missing"})
	require.Error(t, err)

	assert.Zero(t, jnl.Len())
}

func TestTransferAndReceive(t *testing.T) {
	svc, jnl, _, notifier := newTestService(3000)

	_, err := svc.Transfer(context.Background(), TransferInput{Amount: 1000, RecipientRef: "taro"})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), svc.TotalBalance())

	_, err = svc.Receive(context.Background(), ReceiveInput{Amount: 500, SenderRef: "hanako"})
	require.NoError(t, err)
	assert.Equal(t, int64(2500), svc.TotalBalance())

	assert.Len(t, jnl.ByType(journal.TypePayment), 1)
	assert.Len(t, jnl.ByType(journal.TypeReceive), 1)

	require.Len(t, notifier.messages, 2)
	assert.Equal(t, notification.KindTransferSent, notifier.messages[0].Kind)
	assert.Equal(t, notification.KindFundsReceived, notifier.messages[1].Kind)
}

func TestTransferRequiresRecipient(t *testing.T) {
	svc, jnl, _, _ := newTestService(3000)

	_, err := svc.Transfer(context.Background(), TransferInput{Amount: 1000})
	bizErr, ok := business.As(err)
	require.True(t, ok)
	assert.Equal(t, business.CodeRequiredField, bizErr.Code)
	assert.Zero(t, jnl.Len())
}

func TestEverySuccessfulOperationAppendsOneUniqueEntry(t *testing.T) {
	svc, jnl, _, _ := newTestService(100_000)
	ctx := context.Background()

	seen := map[string]bool{}
	record := func(receipt Receipt, err error) {
		require.NoError(t, err)
		require.False(t, seen[receipt.TransactionID], "id reused: %s", receipt.TransactionID)
		seen[receipt.TransactionID] = true
	}

	record(svc.Charge(ctx, ChargeInput{Amount: 1000, Method: business.MethodBankTransfer}))
	record(svc.Pay(ctx, PayInput{Amount: 500, Method: business.MethodATM}))
	record(svc.Donate(ctx, DonateInput{Amount: 300, ProjectRef: "ocean"}))
	record(svc.Transfer(ctx, TransferInput{Amount: 200, RecipientRef: "taro"}))
	record(svc.Receive(ctx, ReceiveInput{Amount: 50, SenderRef: "hanako"}))

	assert.Equal(t, len(seen), jnl.Len())
}

func TestSweepExpiredCampaigns(t *testing.T) {
	now := time.Now().UTC()
	svc, jnl, _, _ := newTestService(1000,
		balance.Campaign{ID: "old", Amount: 800, Label: "夏の特典", ExpiresAt: now.Add(-time.Hour)},
		balance.Campaign{ID: "new", Amount: 500, Label: "秋の特典", ExpiresAt: now.Add(time.Hour)},
	)

	ids, err := svc.SweepExpiredCampaigns(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	assert.Equal(t, int64(1500), svc.TotalBalance(), "only the expired pool was removed")

	expired := jnl.ByType(journal.TypeExpired)
	require.Len(t, expired, 1)
	assert.Equal(t, int64(-800), expired[0].Amount)
	assert.True(t, expired[0].HasBadge(journal.BadgeExpired))

	// A second sweep finds nothing.
	ids, err = svc.SweepExpiredCampaigns(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestTotalBalanceInvariantAcrossOperations(t *testing.T) {
	svc, _, _, _ := newTestService(6000, balance.Campaign{
		ID: "1", Amount: 2000, ExpiresAt: time.Now().Add(time.Hour),
	})
	ctx := context.Background()

	check := func() {
		total := svc.RegularBalance()
		for _, c := range svc.CampaignBalances() {
			total += c.Amount
		}
		assert.Equal(t, total, svc.TotalBalance())
		assert.GreaterOrEqual(t, svc.TotalBalance(), int64(0))
	}

	check()
	svc.Charge(ctx, ChargeInput{Amount: 1000, Method: business.MethodBankTransfer})
	check()
	svc.Pay(ctx, PayInput{Amount: 6500, Method: business.MethodATM})
	check()
	svc.Donate(ctx, DonateInput{Amount: 400, ProjectRef: "forest"})
	check()
}
