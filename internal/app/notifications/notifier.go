package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"coastalstay/internal/app/outbox"
	"coastalstay/internal/app/policies"
	domaininquiries "coastalstay/internal/domain/inquiries"
	domainproperties "coastalstay/internal/domain/properties"
)

const (
	inquirySubmitted = "inquiry.submitted"
	bookingsReplaced = "property.bookings_replaced"
)

var ErrRecipientMissing = errors.New("notifications: recipient is required")

// Notifier turns domain events into staff emails. Events it does not know are
// ignored.
type Notifier struct {
	Sender    policies.EmailSender
	Recipient string
	Logger    *slog.Logger
}

func (n *Notifier) HandleEvent(ctx context.Context, rec outbox.EventRecord) error {
	var (
		msg Email
		err error
	)
	switch rec.Name {
	case inquirySubmitted:
		var ev domaininquiries.InquirySubmitted
		if err := json.Unmarshal(rec.Payload, &ev); err != nil {
			return fmt.Errorf("notifications: decode %s: %w", rec.Name, err)
		}
		msg, err = inquiryTemplate.render(ev)
	case bookingsReplaced:
		var ev domainproperties.BookingsReplaced
		if err := json.Unmarshal(rec.Payload, &ev); err != nil {
			return fmt.Errorf("notifications: decode %s: %w", rec.Name, err)
		}
		msg, err = bookingsTemplate.render(ev)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	return n.send(ctx, rec, msg)
}

func (n *Notifier) send(ctx context.Context, rec outbox.EventRecord, msg Email) error {
	if n.Sender == nil {
		return nil
	}
	recipient := strings.TrimSpace(n.Recipient)
	if recipient == "" {
		return ErrRecipientMissing
	}
	if err := n.Sender.Send(ctx, recipient, msg.Subject, msg.Body); err != nil {
		return fmt.Errorf("notifications: send %s: %w", rec.Name, err)
	}
	if n.Logger != nil {
		n.Logger.InfoContext(ctx, "notification sent", "event", rec.Name, "event_id", rec.ID, "aggregate", rec.Aggregate)
	}
	return nil
}

var _ outbox.Handler = (*Notifier)(nil)
