package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dinein/internal/config"
	"dinein/internal/domain"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

var ErrNoPhone = errors.New("customer has no phone number")

const slotLayout = "Mon 2 Jan 15:04"

// messageSender is the slice of the Twilio REST API the notifier uses.
type messageSender interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSNotifier texts customers through Twilio.
type SMSNotifier struct {
	sender  messageSender
	from    string
	loc     *time.Location
	loggerf func(format string, args ...interface{})
}

func NewSMSNotifier(cfg config.TwilioConfig, loc *time.Location, loggerf func(format string, args ...interface{})) *SMSNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return newSMSNotifier(client.Api, cfg.FromNumber, loc, loggerf)
}

func newSMSNotifier(sender messageSender, from string, loc *time.Location, loggerf func(format string, args ...interface{})) *SMSNotifier {
	if loc == nil {
		loc = time.UTC
	}
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &SMSNotifier{sender: sender, from: from, loc: loc, loggerf: loggerf}
}

func (n *SMSNotifier) NotifyReservationConfirmed(ctx context.Context, customer domain.Customer, r domain.Reservation) error {
	return n.send(ctx, customer, r, confirmedText(customer, r, n.loc))
}

func (n *SMSNotifier) NotifyReservationCancelled(ctx context.Context, customer domain.Customer, r domain.Reservation) error {
	return n.send(ctx, customer, r, cancelledText(customer, r, n.loc))
}

func (n *SMSNotifier) send(ctx context.Context, customer domain.Customer, r domain.Reservation, body string) error {
	if customer.Phone == "" {
		return ErrNoPhone
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(customer.Phone)
	params.SetFrom(n.from)
	params.SetBody(body)

	resp, err := n.sender.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("send sms for reservation %d: %w", r.ID, err)
	}

	sid := ""
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	n.loggerf("level=info msg=sms sent reservation_id=%d sid=%s", r.ID, sid)
	return nil
}

// LogNotifier writes the message to the log instead of sending it. Used
// when Twilio is not configured.
type LogNotifier struct {
	loc     *time.Location
	loggerf func(format string, args ...interface{})
}

func NewLogNotifier(loc *time.Location, loggerf func(format string, args ...interface{})) *LogNotifier {
	if loc == nil {
		loc = time.UTC
	}
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &LogNotifier{loc: loc, loggerf: loggerf}
}

func (n *LogNotifier) NotifyReservationConfirmed(_ context.Context, customer domain.Customer, r domain.Reservation) error {
	n.loggerf("level=info msg=notify reservation_id=%d to=%s body=%q", r.ID, customer.Phone, confirmedText(customer, r, n.loc))
	return nil
}

func (n *LogNotifier) NotifyReservationCancelled(_ context.Context, customer domain.Customer, r domain.Reservation) error {
	n.loggerf("level=info msg=notify reservation_id=%d to=%s body=%q", r.ID, customer.Phone, cancelledText(customer, r, n.loc))
	return nil
}

func confirmedText(c domain.Customer, r domain.Reservation, loc *time.Location) string {
	return fmt.Sprintf("Hi %s, your table for %d on %s-%s is confirmed. Booking ref #%d.",
		c.Name, r.PartySize, r.TimeSlotStart.In(loc).Format(slotLayout), r.TimeSlotEnd.In(loc).Format("15:04"), r.ID)
}

func cancelledText(c domain.Customer, r domain.Reservation, loc *time.Location) string {
	return fmt.Sprintf("Hi %s, your booking #%d for %s has been cancelled.",
		c.Name, r.ID, r.TimeSlotStart.In(loc).Format(slotLayout))
}
