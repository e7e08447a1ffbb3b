package job

import (
	"context"
	"fmt"

	"holyfit-backend/internal/domains/checkout/model"
	"holyfit-backend/internal/infrastructure/email"
)

// MailNotifier emails every order to the shop inbox.
type MailNotifier struct {
	sender email.Sender
	to     []string
}

func NewMailNotifier(sender email.Sender, to ...string) *MailNotifier {
	return &MailNotifier{sender: sender, to: to}
}

func (n *MailNotifier) Notify(ctx context.Context, summary model.OrderSummary, message string) error {
	msg := email.Message{
		To:      n.to,
		Subject: fmt.Sprintf("New order %s - %s - $%s", summary.Reference, summary.Customer.Name, summary.Totals.Total.StringFixed(2)),
		Body:    message,
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("mail order %s: %w", summary.Reference, err)
	}
	return nil
}
