package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_DispatchesDueAlerts(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	obs := &stubObserver{id: "email", channels: []Channel{ChannelEmail}}
	require.NoError(t, d.Attach(obs))

	// Scheduled just far enough ahead to be pending when the scheduler starts.
	soon := time.Now().Add(30 * time.Millisecond)
	alert, _, err := d.CreateAndNotify(context.Background(), CreateParams{
		Type:         TypeReservationReminder,
		Title:        "t",
		Message:      "m",
		Recipients:   []Recipient{emailRecipient()},
		Channels:     []Channel{ChannelEmail},
		ScheduledFor: &soon,
	})
	require.NoError(t, err)
	require.Equal(t, StatusScheduled, alert.Status)

	s := NewScheduler(d, WithPollInterval(20*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(ctx) }()

	require.Eventually(t, func() bool {
		got, err := d.Get(context.Background(), alert.ID)
		return err == nil && got.Status == StatusSent
	}, 400*time.Millisecond, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
	assert.Equal(t, 1, obs.callCount())
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	s := NewScheduler(d, WithPollInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(ctx) }()

	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}
