package notification

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"dinein/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeSender struct {
	sent []*twilioApi.CreateMessageParams
	err  error
}

func (f *fakeSender) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	sid := fmt.Sprintf("SM%d", len(f.sent))
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func booking() (domain.Customer, domain.Reservation) {
	day := time.Date(2030, 3, 14, 0, 0, 0, 0, time.UTC)
	return domain.Customer{Name: "Ada", Phone: "+15551234"},
		domain.Reservation{
			ID:            12,
			PartySize:     4,
			TimeSlotStart: day.Add(18 * time.Hour),
			TimeSlotEnd:   day.Add(19*time.Hour + 30*time.Minute),
		}
}

func TestSMSNotifierSendsConfirmation(t *testing.T) {
	sender := &fakeSender{}
	n := newSMSNotifier(sender, "+15550001", time.UTC, t.Logf)
	customer, r := booking()

	require.NoError(t, n.NotifyReservationConfirmed(context.Background(), customer, r))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "+15551234", *msg.To)
	assert.Equal(t, "+15550001", *msg.From)
	assert.Equal(t, "Hi Ada, your table for 4 on Thu 14 Mar 18:00-19:30 is confirmed. Booking ref #12.", *msg.Body)
}

func TestSMSNotifierUsesLocalTime(t *testing.T) {
	sender := &fakeSender{}
	loc := time.FixedZone("UTC+2", 2*60*60)
	n := newSMSNotifier(sender, "+15550001", loc, nil)
	customer, r := booking()

	require.NoError(t, n.NotifyReservationCancelled(context.Background(), customer, r))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Hi Ada, your booking #12 for Thu 14 Mar 20:00 has been cancelled.", *sender.sent[0].Body)
}

func TestSMSNotifierErrors(t *testing.T) {
	customer, r := booking()

	down := &fakeSender{err: errors.New("twilio unavailable")}
	err := newSMSNotifier(down, "+1", time.UTC, nil).NotifyReservationConfirmed(context.Background(), customer, r)
	assert.ErrorContains(t, err, "twilio unavailable")

	sender := &fakeSender{}
	n := newSMSNotifier(sender, "+1", time.UTC, nil)
	err = n.NotifyReservationConfirmed(context.Background(), domain.Customer{Name: "Ada"}, r)
	assert.ErrorIs(t, err, ErrNoPhone)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = n.NotifyReservationConfirmed(ctx, customer, r)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sender.sent)
}

func TestLogNotifier(t *testing.T) {
	var lines []string
	n := NewLogNotifier(nil, func(format string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, args...))
	})
	customer, r := booking()

	require.NoError(t, n.NotifyReservationConfirmed(context.Background(), customer, r))
	require.NoError(t, n.NotifyReservationCancelled(context.Background(), customer, r))
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "is confirmed")
	assert.Contains(t, lines[1], "has been cancelled")
}
