package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationConfirmed(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	obs := &stubObserver{id: "email", channels: []Channel{ChannelEmail}}
	require.NoError(t, d.Attach(obs))

	det := ReservationDetails{
		ReservationID: "res-1",
		CourtID:       "court-4",
		CourtName:     "Court 4",
		ClubID:        "club-1",
		StartsAt:      time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC),
		ActionURL:     "https://club.test/reservations/res-1",
	}

	alert, results, err := d.ReservationConfirmed(context.Background(), []Recipient{emailRecipient()}, det)
	require.NoError(t, err)

	assert.Equal(t, TypeReservationConfirmed, alert.Type)
	assert.Equal(t, SeveritySuccess, alert.Severity)
	assert.Equal(t, "res-1", alert.Metadata.ReservationID)
	assert.Contains(t, alert.Message, "Court 4")
	assert.ElementsMatch(t, []Channel{ChannelEmail, ChannelPush, ChannelInApp}, alert.Channels)
	assert.Len(t, results, 1)
}

func TestReservationReminder_Scheduled(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	obs := &stubObserver{id: "push", channels: []Channel{ChannelPush}}
	require.NoError(t, d.Attach(obs))

	startsAt := time.Now().Add(2 * time.Hour)
	det := ReservationDetails{ReservationID: "res-2", CourtName: "Court 1", StartsAt: startsAt}

	alert, results, err := d.ReservationReminder(context.Background(), []Recipient{{UserID: "u1", PushToken: "tok"}}, det, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, StatusScheduled, alert.Status)
	assert.Empty(t, results)
	require.NotNil(t, alert.ScheduledFor)
	assert.WithinDuration(t, startsAt.Add(-time.Hour), *alert.ScheduledFor, time.Second)
	assert.Equal(t, 0, obs.callCount())
}

func TestPaymentConfirmed(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	obs := &stubObserver{id: "email", channels: []Channel{ChannelEmail}}
	require.NoError(t, d.Attach(obs))

	alert, _, err := d.PaymentConfirmed(context.Background(), []Recipient{emailRecipient()}, "res-3", 24.50, "EUR")
	require.NoError(t, err)

	assert.Equal(t, TypePaymentConfirmed, alert.Type)
	require.NotNil(t, alert.Metadata.Amount)
	assert.InDelta(t, 24.50, *alert.Metadata.Amount, 0.001)
	assert.Equal(t, "EUR", alert.Metadata.Currency)
	assert.Contains(t, alert.Message, "24.50 EUR")
}

func TestSlotReleased(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	obs := &stubObserver{id: "push", channels: []Channel{ChannelPush}}
	require.NoError(t, d.Attach(obs))

	expires := time.Now().Add(15 * time.Minute)
	det := ReservationDetails{CourtID: "court-2", CourtName: "Court 2", StartsAt: time.Now().Add(time.Hour)}

	alert, _, err := d.SlotReleased(context.Background(), []Recipient{{UserID: "u1", PushToken: "tok"}}, det, expires)
	require.NoError(t, err)

	assert.Equal(t, TypeSlotReleased, alert.Type)
	require.NotNil(t, alert.Metadata.ExpiresAt)
	assert.WithinDuration(t, expires, *alert.Metadata.ExpiresAt, time.Second)
}

func TestChallengeCreated(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	obs := &stubObserver{id: "push", channels: []Channel{ChannelPush}}
	require.NoError(t, d.Attach(obs))

	alert, _, err := d.ChallengeCreated(context.Background(), []Recipient{{UserID: "u2", PushToken: "tok"}}, "ch-1", "Maria", "https://club.test/challenges/ch-1")
	require.NoError(t, err)

	assert.Equal(t, TypeChallengeCreated, alert.Type)
	assert.Equal(t, "ch-1", alert.Metadata.ChallengeID)
	assert.Contains(t, alert.Message, "Maria")
}
