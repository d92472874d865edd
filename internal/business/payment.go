package business

import (
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Supported payment methods. The set is closed: anything else fails
// validation rather than falling through to a default fee.
const (
	MethodBankTransfer     = "bank_transfer"
	MethodCreditCard       = "credit_card"
	MethodConvenienceStore = "convenience_store"
	MethodATM              = "atm"
)

const (
	// MaxTransactionAmount is the fixed per-transaction ceiling in yen.
	MaxTransactionAmount int64 = 1_000_000

	// Currency is the only currency the wallet operates in.
	Currency = "JPY"

	maxDescriptionLength = 100
)

var feeRates = map[string]decimal.Decimal{
	MethodCreditCard:       decimal.RequireFromString("0.033"),
	MethodBankTransfer:     decimal.Zero,
	MethodConvenienceStore: decimal.RequireFromString("0.01"),
	MethodATM:              decimal.RequireFromString("0.005"),
}

// PaymentParams is the raw user input for a payment-class operation.
type PaymentParams struct {
	Amount      int64
	Method      string
	Description string
}

// ValidatedPayment is the normalized result of a successful parameter check.
type ValidatedPayment struct {
	Amount   int64
	Method   string
	Currency string
}

// ValidatePaymentAmount checks a proposed transaction amount against the
// positivity rule and the per-transaction ceiling. On success the amount is
// returned unchanged.
func ValidatePaymentAmount(amount int64) (int64, error) {
	if amount <= 0 {
		return 0, PaymentFailed("金額は1円以上を指定してください")
	}
	if amount > MaxTransactionAmount {
		return 0, LimitExceeded(MaxTransactionAmount, amount, "transaction")
	}
	return amount, nil
}

// ValidatePaymentMethod accepts only the closed set of supported methods.
func ValidatePaymentMethod(method string) (string, error) {
	switch method {
	case MethodBankTransfer, MethodCreditCard, MethodConvenienceStore, MethodATM:
		return method, nil
	}
	return "", PaymentFailed("対応していないお支払い方法です")
}

// ValidatePaymentParams composes the amount, method and description checks,
// short-circuiting on the first failure in that order.
func ValidatePaymentParams(params PaymentParams) (ValidatedPayment, error) {
	amount, err := ValidatePaymentAmount(params.Amount)
	if err != nil {
		return ValidatedPayment{}, err
	}
	method, err := ValidatePaymentMethod(params.Method)
	if err != nil {
		return ValidatedPayment{}, err
	}
	if utf8.RuneCountInString(params.Description) > maxDescriptionLength {
		return ValidatedPayment{}, PaymentFailed("摘要は100文字以内で入力してください")
	}
	return ValidatedPayment{Amount: amount, Method: method, Currency: Currency}, nil
}

// CalculatePaymentFee re-validates both inputs and returns the method fee,
// floored to a whole yen. Rates are policy constants: credit card 3.3%,
// bank transfer free, convenience store 1%, ATM 0.5%.
func CalculatePaymentFee(amount int64, method string) (int64, error) {
	if _, err := ValidatePaymentAmount(amount); err != nil {
		return 0, err
	}
	if _, err := ValidatePaymentMethod(method); err != nil {
		return 0, err
	}
	rate, ok := feeRates[method]
	if !ok {
		return 0, PaymentFailed("手数料率が未設定のお支払い方法です")
	}
	fee := decimal.NewFromInt(amount).Mul(rate).Floor()
	return fee.IntPart(), nil
}
