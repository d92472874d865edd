package notification

import (
	"context"
	"log/slog"
)

const (
	// KindTransferSent indicates money left the wallet for another user.
	KindTransferSent = "transfer_sent"
	// KindFundsReceived indicates an incoming transfer was credited.
	KindFundsReceived = "funds_received"
	// KindDonationReceipt confirms a completed environmental donation.
	KindDonationReceipt = "donation_receipt"
)

// Message describes a notification payload.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes notifications to the
// structured logger instead of a real delivery channel.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "destination", message.Destination, "body", message.Body)
	return nil
}
