package alerts

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubObserver is a configurable observer for dispatcher tests.
type stubObserver struct {
	id       string
	channels []Channel

	mu      sync.Mutex
	fail    bool
	refuse  bool
	sleep   time.Duration
	panicky bool
	calls   int32
}

func (o *stubObserver) ID() string          { return o.id }
func (o *stubObserver) Channels() []Channel { return o.channels }

func (o *stubObserver) CanHandle(alert *Alert) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.refuse {
		return false
	}
	for _, ch := range o.channels {
		if alert.HasChannel(ch) {
			return true
		}
	}
	return false
}

func (o *stubObserver) Notify(ctx context.Context, alert *Alert) DeliveryResult {
	atomic.AddInt32(&o.calls, 1)

	o.mu.Lock()
	fail, sleep, panicky := o.fail, o.sleep, o.panicky
	o.mu.Unlock()

	if panicky {
		panic("stub observer exploded")
	}
	if sleep > 0 {
		time.Sleep(sleep)
	}
	if fail {
		return Failed(o.channels[0], "stub failure")
	}
	return Succeeded(o.channels[0], map[string]string{"message_id": "stub-1"})
}

func (o *stubObserver) setFail(fail bool) {
	o.mu.Lock()
	o.fail = fail
	o.mu.Unlock()
}

func (o *stubObserver) callCount() int {
	return int(atomic.LoadInt32(&o.calls))
}

func newTestDispatcher(t *testing.T, opts ...Option) *Dispatcher {
	t.Helper()
	d, err := New(NewMemoryStorage(), opts...)
	require.NoError(t, err)
	return d
}

func emailRecipient() Recipient {
	return Recipient{UserID: "u1", Email: "player@club.test"}
}

func TestNew_NilStorage(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilStorage)
}

func TestAttachDetach(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	obs := &stubObserver{id: "email", channels: []Channel{ChannelEmail}}

	require.NoError(t, d.Attach(obs))
	assert.ErrorIs(t, d.Attach(&stubObserver{id: "email", channels: []Channel{ChannelEmail}}), ErrDuplicateObserver)
	assert.ErrorIs(t, d.Attach(nil), ErrNilObserver)

	assert.True(t, d.Detach("email"))
	assert.False(t, d.Detach("email"))
	assert.False(t, d.Detach("never-registered"))
}

func TestObserversByChannels(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	email := &stubObserver{id: "email", channels: []Channel{ChannelEmail}}
	push := &stubObserver{id: "push", channels: []Channel{ChannelPush}}
	require.NoError(t, d.Attach(email))
	require.NoError(t, d.Attach(push))

	got := d.ObserversByChannels(ChannelEmail)
	require.Len(t, got, 1)
	assert.Equal(t, "email", got[0].ID())

	got = d.ObserversByChannels(ChannelEmail, ChannelPush)
	assert.Len(t, got, 2)

	assert.Empty(t, d.ObserversByChannels(ChannelBrowser))
}

// Scenario A: single email observer, one valid recipient, success.
func TestCreateAndNotify_SingleChannelSuccess(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	obs := &stubObserver{id: "email", channels: []Channel{ChannelEmail}}
	require.NoError(t, d.Attach(obs))

	alert, results, err := d.CreateAndNotify(context.Background(), CreateParams{
		Type:       TypeReservationConfirmed,
		Severity:   SeveritySuccess,
		Title:      "Reservation confirmed",
		Message:    "Court 4, Saturday 10:00",
		Recipients: []Recipient{emailRecipient()},
		Channels:   []Channel{ChannelEmail},
	})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.Equal(t, ChannelEmail, results[0].Channel)
	assert.Equal(t, StatusSent, alert.Status)
	require.NotNil(t, alert.SentAt)
	assert.Equal(t, 0, alert.RetryCount)

	history, err := d.History(context.Background(), alert.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

// Scenario B: push observer refuses via CanHandle, only email result produced.
func TestCreateAndNotify_ObserverRefusal(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	email := &stubObserver{id: "email", channels: []Channel{ChannelEmail}}
	push := &stubObserver{id: "push", channels: []Channel{ChannelPush}, refuse: true}
	require.NoError(t, d.Attach(email))
	require.NoError(t, d.Attach(push))

	_, results, err := d.CreateAndNotify(context.Background(), CreateParams{
		Type:       TypeSlotReleased,
		Title:      "Slot open",
		Message:    "Court 2 is free",
		Recipients: []Recipient{emailRecipient()},
		Channels:   []Channel{ChannelEmail, ChannelPush},
	})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, ChannelEmail, results[0].Channel)
	assert.Equal(t, 1, email.callCount())
	assert.Equal(t, 0, push.callCount(), "refusing observer must never be invoked")
}

func TestNotify_PartialFailureIsSent(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	ok := &stubObserver{id: "email", channels: []Channel{ChannelEmail}}
	bad := &stubObserver{id: "push", channels: []Channel{ChannelPush}, fail: true}
	require.NoError(t, d.Attach(ok))
	require.NoError(t, d.Attach(bad))

	alert, results, err := d.CreateAndNotify(context.Background(), CreateParams{
		Type:       TypeCustom,
		Title:      "t",
		Message:    "m",
		Recipients: []Recipient{emailRecipient()},
		Channels:   []Channel{ChannelEmail, ChannelPush},
	})
	require.NoError(t, err)

	require.Len(t, results, 2)
	// Best effort: one successful channel makes the alert sent.
	assert.Equal(t, StatusSent, alert.Status)
	require.NotNil(t, alert.SentAt)

	successes := 0
	for _, res := range results {
		if res.Success {
			successes++
		}
	}
	assert.Equal(t, 1, successes)
}

func TestNotify_AllFailedIsFailed(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	bad := &stubObserver{id: "email", channels: []Channel{ChannelEmail}, fail: true}
	require.NoError(t, d.Attach(bad))

	alert, results, err := d.CreateAndNotify(context.Background(), CreateParams{
		Type:       TypeCustom,
		Title:      "t",
		Message:    "m",
		Recipients: []Recipient{emailRecipient()},
		Channels:   []Channel{ChannelEmail},
	})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Equal(t, StatusFailed, alert.Status)
	assert.Nil(t, alert.SentAt)
}

func TestNotify_PanickingObserverIsIsolated(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	boom := &stubObserver{id: "push", channels: []Channel{ChannelPush}, panicky: true}
	ok := &stubObserver{id: "email", channels: []Channel{ChannelEmail}}
	require.NoError(t, d.Attach(boom))
	require.NoError(t, d.Attach(ok))

	alert, results, err := d.CreateAndNotify(context.Background(), CreateParams{
		Type:       TypeCustom,
		Title:      "t",
		Message:    "m",
		Recipients: []Recipient{emailRecipient()},
		Channels:   []Channel{ChannelEmail, ChannelPush},
	})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, StatusSent, alert.Status)

	var pushResult *DeliveryResult
	for i := range results {
		if results[i].Channel == ChannelPush {
			pushResult = &results[i]
		}
	}
	require.NotNil(t, pushResult)
	assert.False(t, pushResult.Success)
	assert.Contains(t, pushResult.Error, "panic")
}

func TestNotify_SlowObserverTimesOutAlone(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t, WithNotifyTimeout(50*time.Millisecond))
	slow := &stubObserver{id: "push", channels: []Channel{ChannelPush}, sleep: 2 * time.Second}
	fast := &stubObserver{id: "email", channels: []Channel{ChannelEmail}}
	require.NoError(t, d.Attach(slow))
	require.NoError(t, d.Attach(fast))

	start := time.Now()
	alert, results, err := d.CreateAndNotify(context.Background(), CreateParams{
		Type:       TypeCustom,
		Title:      "t",
		Message:    "m",
		Recipients: []Recipient{emailRecipient()},
		Channels:   []Channel{ChannelEmail, ChannelPush},
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second, "stalled transport must not block the fan-out")

	require.Len(t, results, 2)
	assert.Equal(t, StatusSent, alert.Status)
	for _, res := range results {
		if res.Channel == ChannelPush {
			assert.False(t, res.Success)
			assert.NotEmpty(t, res.Error)
		}
	}
}

func TestNotify_NoEligibleObservers(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)

	alert, results, err := d.CreateAndNotify(context.Background(), CreateParams{
		Type:       TypeCustom,
		Title:      "t",
		Message:    "m",
		Recipients: []Recipient{emailRecipient()},
		Channels:   []Channel{ChannelEmail},
	})
	require.NoError(t, err)

	assert.Empty(t, results)
	assert.Equal(t, StatusFailed, alert.Status)
}

func TestNotify_UnknownAlert(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	_, err := d.Notify(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

// Scenario D: strictly-future schedule defers fan-out entirely.
func TestCreateAndNotify_Scheduled(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	obs := &stubObserver{id: "email", channels: []Channel{ChannelEmail}}
	require.NoError(t, d.Attach(obs))

	future := time.Now().Add(time.Minute)
	alert, results, err := d.CreateAndNotify(context.Background(), CreateParams{
		Type:         TypeReservationReminder,
		Title:        "Reminder",
		Message:      "m",
		Recipients:   []Recipient{emailRecipient()},
		Channels:     []Channel{ChannelEmail},
		ScheduledFor: &future,
	})
	require.NoError(t, err)

	assert.Empty(t, results)
	assert.Equal(t, StatusScheduled, alert.Status)
	assert.Equal(t, 0, obs.callCount(), "no observer may be invoked at creation time")
}

func TestCreateAndNotify_PastScheduleSendsNow(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	obs := &stubObserver{id: "email", channels: []Channel{ChannelEmail}}
	require.NoError(t, d.Attach(obs))

	past := time.Now().Add(-time.Minute)
	alert, results, err := d.CreateAndNotify(context.Background(), CreateParams{
		Type:         TypeCustom,
		Title:        "t",
		Message:      "m",
		Recipients:   []Recipient{emailRecipient()},
		Channels:     []Channel{ChannelEmail},
		ScheduledFor: &past,
	})
	require.NoError(t, err)

	assert.Len(t, results, 1)
	assert.Equal(t, StatusSent, alert.Status)
}

// Scenario C: retry after reconfiguring the failing observer.
func TestRetry_FailedThenSucceeds(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	obs := &stubObserver{id: "email", channels: []Channel{ChannelEmail}, fail: true}
	require.NoError(t, d.Attach(obs))

	ctx := context.Background()
	alert, results, err := d.CreateAndNotify(ctx, CreateParams{
		Type:       TypeCustom,
		Title:      "t",
		Message:    "m",
		Recipients: []Recipient{emailRecipient()},
		Channels:   []Channel{ChannelEmail},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Equal(t, StatusFailed, alert.Status)
	assert.Equal(t, 0, alert.RetryCount)

	obs.setFail(false)

	retried, err := d.Retry(ctx, alert.ID)
	require.NoError(t, err)
	require.Len(t, retried, 1)
	assert.True(t, retried[0].Success)

	updated, err := d.Get(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, updated.Status)
	assert.Equal(t, 1, updated.RetryCount)

	// A retry appends a fresh attempt; it never edits old results.
	history, err := d.History(ctx, alert.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.False(t, history[0].Success)
	assert.True(t, history[1].Success)
}

func TestRetry_SentAlertFails(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	obs := &stubObserver{id: "email", channels: []Channel{ChannelEmail}}
	require.NoError(t, d.Attach(obs))

	ctx := context.Background()
	alert, _, err := d.CreateAndNotify(ctx, CreateParams{
		Type:       TypeCustom,
		Title:      "t",
		Message:    "m",
		Recipients: []Recipient{emailRecipient()},
		Channels:   []Channel{ChannelEmail},
	})
	require.NoError(t, err)
	require.Equal(t, StatusSent, alert.Status)

	_, err = d.Retry(ctx, alert.ID)
	assert.ErrorIs(t, err, ErrAlreadySent)

	// State must be untouched by the failed retry.
	updated, err := d.Get(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, updated.Status)
	assert.Equal(t, 0, updated.RetryCount)
}

func TestRetry_UnknownAlert(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	_, err := d.Retry(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

func TestRetry_ConcurrentCallsOneWinner(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	obs := &stubObserver{id: "email", channels: []Channel{ChannelEmail}, fail: true}
	require.NoError(t, d.Attach(obs))

	ctx := context.Background()
	alert, _, err := d.CreateAndNotify(ctx, CreateParams{
		Type:       TypeCustom,
		Title:      "t",
		Message:    "m",
		Recipients: []Recipient{emailRecipient()},
		Channels:   []Channel{ChannelEmail},
	})
	require.NoError(t, err)

	obs.setFail(false)
	obs.mu.Lock()
	obs.sleep = 50 * time.Millisecond
	obs.mu.Unlock()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = d.Retry(ctx, alert.ID)
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
		}
	}
	assert.Equal(t, 1, failures, "exactly one retry must win")

	updated, err := d.Get(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.RetryCount)
	assert.Equal(t, StatusSent, updated.Status)
}

func TestCancel(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	ctx := context.Background()

	future := time.Now().Add(time.Hour)
	scheduled, _, err := d.CreateAndNotify(ctx, CreateParams{
		Type:         TypeReservationReminder,
		Title:        "t",
		Message:      "m",
		Recipients:   []Recipient{emailRecipient()},
		Channels:     []Channel{ChannelEmail},
		ScheduledFor: &future,
	})
	require.NoError(t, err)

	ok, err := d.Cancel(ctx, scheduled.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	updated, err := d.Get(ctx, scheduled.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, updated.Status)

	// Cancelling again is an idempotent no-op.
	ok, err = d.Cancel(ctx, scheduled.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Unknown id is not an error, to allow racy cancel-by-id callers.
	ok, err = d.Cancel(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCancel_SentAlertFails(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	obs := &stubObserver{id: "email", channels: []Channel{ChannelEmail}}
	require.NoError(t, d.Attach(obs))

	ctx := context.Background()
	alert, _, err := d.CreateAndNotify(ctx, CreateParams{
		Type:       TypeCustom,
		Title:      "t",
		Message:    "m",
		Recipients: []Recipient{emailRecipient()},
		Channels:   []Channel{ChannelEmail},
	})
	require.NoError(t, err)
	require.Equal(t, StatusSent, alert.Status)

	ok, err := d.Cancel(ctx, alert.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.False(t, ok)

	updated, err := d.Get(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, updated.Status)
}

func TestCancelledAlertCannotRetry(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	ctx := context.Background()

	future := time.Now().Add(time.Hour)
	alert, _, err := d.CreateAndNotify(ctx, CreateParams{
		Type:         TypeCustom,
		Title:        "t",
		Message:      "m",
		Recipients:   []Recipient{emailRecipient()},
		Channels:     []Channel{ChannelEmail},
		ScheduledFor: &future,
	})
	require.NoError(t, err)

	ok, err := d.Cancel(ctx, alert.ID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = d.Retry(ctx, alert.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCleanHistory(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	d := newTestDispatcher(t, WithClock(func() time.Time { return current }))

	ctx := context.Background()
	old, _, err := d.CreateAndNotify(ctx, CreateParams{Type: TypeCustom, Title: "old", Message: "m"})
	require.NoError(t, err)

	current = base.Add(48 * time.Hour)
	fresh, _, err := d.CreateAndNotify(ctx, CreateParams{Type: TypeCustom, Title: "new", Message: "m"})
	require.NoError(t, err)

	removed, err := d.CleanHistory(ctx, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = d.Get(ctx, old.ID)
	assert.ErrorIs(t, err, ErrAlertNotFound)

	kept, err := d.Get(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, kept.ID)

	// Second pass with the same cutoff removes nothing.
	removed, err = d.CleanHistory(ctx, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestStats(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	obs := &stubObserver{id: "email", channels: []Channel{ChannelEmail}}
	require.NoError(t, d.Attach(obs))

	ctx := context.Background()
	_, _, err := d.CreateAndNotify(ctx, CreateParams{
		Type:       TypeReservationConfirmed,
		Severity:   SeveritySuccess,
		Title:      "t",
		Message:    "m",
		Recipients: []Recipient{emailRecipient()},
		Channels:   []Channel{ChannelEmail},
	})
	require.NoError(t, err)

	_, _, err = d.CreateAndNotify(ctx, CreateParams{
		Type:     TypePaymentFailed,
		Severity: SeverityError,
		Title:    "t",
		Message:  "m",
		Channels: []Channel{ChannelPush},
	})
	require.NoError(t, err)

	stats, err := d.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalAlerts)
	assert.Equal(t, 1, stats.TotalObservers)
	assert.Equal(t, 1, stats.ByStatus[StatusSent])
	assert.Equal(t, 1, stats.ByStatus[StatusFailed])
	assert.Equal(t, 1, stats.ByType[TypeReservationConfirmed])
	assert.Equal(t, 1, stats.ByType[TypePaymentFailed])
	assert.Equal(t, 1, stats.BySeverity[SeveritySuccess])
	assert.Equal(t, 1, stats.BySeverity[SeverityError])
}

func TestMarkDeliveredAndRead(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	obs := &stubObserver{id: "email", channels: []Channel{ChannelEmail}}
	require.NoError(t, d.Attach(obs))

	ctx := context.Background()
	alert, _, err := d.CreateAndNotify(ctx, CreateParams{
		Type:       TypeCustom,
		Title:      "t",
		Message:    "m",
		Recipients: []Recipient{emailRecipient()},
		Channels:   []Channel{ChannelEmail},
	})
	require.NoError(t, err)

	// Read tracking requires delivery confirmation first.
	assert.ErrorIs(t, d.MarkRead(ctx, alert.ID), ErrInvalidState)

	require.NoError(t, d.MarkDelivered(ctx, alert.ID))
	require.NoError(t, d.MarkRead(ctx, alert.ID))

	updated, err := d.Get(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRead, updated.Status)
	assert.NotNil(t, updated.DeliveredAt)
	assert.NotNil(t, updated.ReadAt)
}

func TestDispatchDue(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	d := newTestDispatcher(t, WithClock(func() time.Time { return current }))
	obs := &stubObserver{id: "email", channels: []Channel{ChannelEmail}}
	require.NoError(t, d.Attach(obs))

	ctx := context.Background()
	soon := base.Add(10 * time.Minute)
	later := base.Add(2 * time.Hour)

	due, _, err := d.CreateAndNotify(ctx, CreateParams{
		Type: TypeReservationReminder, Title: "due", Message: "m",
		Recipients: []Recipient{emailRecipient()}, Channels: []Channel{ChannelEmail},
		ScheduledFor: &soon,
	})
	require.NoError(t, err)

	notYet, _, err := d.CreateAndNotify(ctx, CreateParams{
		Type: TypeReservationReminder, Title: "later", Message: "m",
		Recipients: []Recipient{emailRecipient()}, Channels: []Channel{ChannelEmail},
		ScheduledFor: &later,
	})
	require.NoError(t, err)

	// Nothing due yet.
	dispatched, err := d.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, dispatched)

	current = base.Add(30 * time.Minute)
	dispatched, err = d.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, dispatched)

	sent, err := d.Get(ctx, due.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, sent.Status)

	pending, err := d.Get(ctx, notYet.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, pending.Status)
}
