package wallet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midori-pay/midori_pay/internal/business"
)

func TestFlowCompletes(t *testing.T) {
	svc, jnl, _, _ := newTestService(5000)

	flow, err := svc.BeginDonation(DonateInput{Amount: 1000, ProjectRef: "forest"})
	require.NoError(t, err)
	assert.Equal(t, StepConfirm, flow.Step())
	assert.Equal(t, KindDonate, flow.Kind())

	receipt, err := flow.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StepComplete, flow.Step())
	assert.Equal(t, receipt, flow.Receipt())
	assert.NotEmpty(t, receipt.TransactionID)
	assert.Equal(t, 1, jnl.Len())
}

func TestBeginRejectsInvalidInputWithoutSideEffects(t *testing.T) {
	svc, jnl, _, _ := newTestService(5000)

	flow, err := svc.BeginCharge(ChargeInput{Amount: 0, Method: business.MethodATM})
	require.Error(t, err)
	assert.Nil(t, flow)

	flow, err = svc.BeginTransfer(TransferInput{Amount: 100})
	require.Error(t, err)
	assert.Nil(t, flow)

	assert.Zero(t, jnl.Len())
}

func TestFailedConfirmStaysInConfirm(t *testing.T) {
	// Amount validates, but the balance cannot cover it.
	svc, jnl, _, _ := newTestService(100)

	flow, err := svc.BeginPay(PayInput{Amount: 500, Method: business.MethodATM})
	require.NoError(t, err)

	_, err = flow.Confirm(context.Background())
	require.Error(t, err)
	assert.Equal(t, StepConfirm, flow.Step(), "user input is not discarded")
	assert.Equal(t, err, flow.Err())
	assert.Zero(t, jnl.Len())

	// Top up out of band, then the same flow can be confirmed again.
	_, err = svc.Charge(context.Background(), ChargeInput{Amount: 1000, Method: business.MethodBankTransfer})
	require.NoError(t, err)

	_, err = flow.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StepComplete, flow.Step())
	assert.NoError(t, flow.Err())
}

func TestCancelBeforeConfirmHasNoEffect(t *testing.T) {
	svc, jnl, _, _ := newTestService(5000)

	flow, err := svc.BeginTransfer(TransferInput{Amount: 1000, RecipientRef: "taro"})
	require.NoError(t, err)

	flow.Cancel()
	assert.Equal(t, StepInput, flow.Step())
	assert.Zero(t, jnl.Len())
	assert.Equal(t, int64(5000), svc.TotalBalance())

	// A cancelled flow cannot be confirmed.
	_, err = flow.Confirm(context.Background())
	require.Error(t, err)
}

func TestCancelAfterCompleteIsIgnored(t *testing.T) {
	svc, _, _, _ := newTestService(5000)

	flow, err := svc.BeginCharge(ChargeInput{Amount: 1000, Method: business.MethodBankTransfer})
	require.NoError(t, err)

	_, err = flow.Confirm(context.Background())
	require.NoError(t, err)

	flow.Cancel()
	assert.Equal(t, StepComplete, flow.Step())
}
