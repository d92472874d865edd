package wallet

import (
	"context"

	"github.com/midori-pay/midori_pay/internal/business"
)

// Step is the position of an operation flow in its lifecycle.
type Step string

const (
	// StepInput means the flow is collecting or re-collecting user input.
	StepInput Step = "input"
	// StepConfirm means input validated and the flow awaits confirmation.
	StepConfirm Step = "confirm"
	// StepComplete means the mutation ran and a receipt is available.
	StepComplete Step = "complete"
)

// Kind names the operation a flow drives.
type Kind string

const (
	KindCharge   Kind = "charge"
	KindPay      Kind = "pay"
	KindDonate   Kind = "donate"
	KindTransfer Kind = "transfer"
)

// Flow is a two-phase wrapper around one mutating operation: validation at
// Begin time moves it to the confirm step, Confirm performs the mutation.
// A failed confirmation keeps the flow in the confirm step with the error
// attached, so user input is never silently discarded. Cancelling before
// confirmation has no effect on the ledger.
type Flow struct {
	kind    Kind
	step    Step
	lastErr error
	receipt Receipt
	execute func(ctx context.Context) (Receipt, error)
}

func newFlow(kind Kind, execute func(ctx context.Context) (Receipt, error)) *Flow {
	return &Flow{kind: kind, step: StepConfirm, execute: execute}
}

// Kind returns the operation this flow drives.
func (f *Flow) Kind() Kind { return f.kind }

// Step returns the flow's current lifecycle position.
func (f *Flow) Step() Step { return f.step }

// Err returns the error from the last failed confirmation, if any.
func (f *Flow) Err() error { return f.lastErr }

// Receipt returns the operation receipt once the flow is complete.
func (f *Flow) Receipt() Receipt { return f.receipt }

// Confirm executes the staged operation. On success the flow completes; on
// failure it stays at the confirm step and records the error.
func (f *Flow) Confirm(ctx context.Context) (Receipt, error) {
	if f.step != StepConfirm {
		return Receipt{}, business.PaymentFailed("確認できる状態ではありません")
	}
	receipt, err := f.execute(ctx)
	if err != nil {
		f.lastErr = err
		return Receipt{}, err
	}
	f.receipt = receipt
	f.lastErr = nil
	f.step = StepComplete
	return receipt, nil
}

// Cancel abandons a not-yet-confirmed flow, returning it to the input step.
// A completed flow cannot be cancelled.
func (f *Flow) Cancel() {
	if f.step == StepComplete {
		return
	}
	f.step = StepInput
	f.execute = nil
}

// BeginCharge validates a top-up request and stages it for confirmation.
// Validation failure returns the error with no flow and no side effects.
func (s *Service) BeginCharge(input ChargeInput) (*Flow, error) {
	if _, err := business.ValidatePaymentParams(business.PaymentParams{Amount: input.Amount, Method: input.Method}); err != nil {
		return nil, err
	}
	return newFlow(KindCharge, func(ctx context.Context) (Receipt, error) {
		return s.Charge(ctx, input)
	}), nil
}

// BeginPay validates a payment request and stages it for confirmation.
func (s *Service) BeginPay(input PayInput) (*Flow, error) {
	if _, err := business.ValidatePaymentParams(business.PaymentParams{
		Amount:      input.Amount,
		Method:      input.Method,
		Description: input.Description,
	}); err != nil {
		return nil, err
	}
	return newFlow(KindPay, func(ctx context.Context) (Receipt, error) {
		return s.Pay(ctx, input)
	}), nil
}

// BeginDonation validates a donation and stages it for confirmation.
func (s *Service) BeginDonation(input DonateInput) (*Flow, error) {
	if _, err := business.ValidatePaymentAmount(input.Amount); err != nil {
		return nil, err
	}
	if _, err := business.RequireField("projectRef", input.ProjectRef); err != nil {
		return nil, err
	}
	return newFlow(KindDonate, func(ctx context.Context) (Receipt, error) {
		return s.Donate(ctx, input)
	}), nil
}

// BeginTransfer validates a transfer and stages it for confirmation.
func (s *Service) BeginTransfer(input TransferInput) (*Flow, error) {
	if _, err := business.ValidatePaymentAmount(input.Amount); err != nil {
		return nil, err
	}
	if _, err := business.RequireField("recipientRef", input.RecipientRef); err != nil {
		return nil, err
	}
	return newFlow(KindTransfer, func(ctx context.Context) (Receipt, error) {
		return s.Transfer(ctx, input)
	}), nil
}
