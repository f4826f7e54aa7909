package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/courtflow/alertkit/pkg/async"
	"github.com/courtflow/alertkit/pkg/logger"
)

// Dispatcher is the orchestration core: it owns the observer registry, the
// alert store and delivery history, enforces the alert lifecycle, and fans
// alerts out to every eligible observer concurrently.
//
// Construct one Dispatcher at process start and pass it by reference to every
// caller; there is deliberately no package-level instance.
type Dispatcher struct {
	storage       Storage
	logger        *slog.Logger
	notifyTimeout time.Duration
	now           func() time.Time

	observers map[string]Observer
	order     []string // attach order, keeps fan-out deterministic
	obsMu     sync.RWMutex

	// alertLocks serializes lifecycle mutations per alert id so that racing
	// Retry/Cancel calls yield exactly one winner. Entries live as long as
	// the alert does.
	alertLocks map[string]*sync.Mutex
	lockMu     sync.Mutex
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger for the Dispatcher.
func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.logger = log
		}
	}
}

// WithNotifyTimeout bounds how long one fan-out waits for its observers.
// An observer still running past the deadline yields a failed result for its
// channels without delaying the others. Default is 15 seconds.
func WithNotifyTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.notifyTimeout = timeout
		}
	}
}

// WithClock overrides the time source, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// New creates a Dispatcher backed by the given storage.
func New(storage Storage, opts ...Option) (*Dispatcher, error) {
	if storage == nil {
		return nil, ErrNilStorage
	}

	d := &Dispatcher{
		storage:       storage,
		logger:        slog.Default(),
		notifyTimeout: 15 * time.Second,
		now:           time.Now,
		observers:     make(map[string]Observer),
		alertLocks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Attach registers an observer under its unique id, making it eligible for
// all future fan-outs. Returns ErrDuplicateObserver if the id is taken.
func (d *Dispatcher) Attach(o Observer) error {
	if o == nil {
		return ErrNilObserver
	}

	d.obsMu.Lock()
	defer d.obsMu.Unlock()

	if _, exists := d.observers[o.ID()]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateObserver, o.ID())
	}
	d.observers[o.ID()] = o
	d.order = append(d.order, o.ID())
	return nil
}

// Detach removes a registration and reports whether one existed. It has no
// effect on fan-outs already in flight.
func (d *Dispatcher) Detach(observerID string) bool {
	d.obsMu.Lock()
	defer d.obsMu.Unlock()

	if _, exists := d.observers[observerID]; !exists {
		return false
	}
	delete(d.observers, observerID)
	for i, id := range d.order {
		if id == observerID {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

// ObserversByChannels returns every attached observer whose declared channel
// set intersects the given set. Pure lookup, no side effects.
func (d *Dispatcher) ObserversByChannels(channels ...Channel) []Observer {
	d.obsMu.RLock()
	defer d.obsMu.RUnlock()

	var out []Observer
	for _, id := range d.order {
		o := d.observers[id]
		if channelsIntersect(o.Channels(), channels) {
			out = append(out, o)
		}
	}
	return out
}

// CreateParams describes a new alert.
type CreateParams struct {
	Type         Type
	Severity     Severity
	Title        string
	Message      string
	Metadata     Metadata
	Recipients   []Recipient
	Channels     []Channel
	ScheduledFor *time.Time
}

// CreateAndNotify builds a new alert from params and, unless it is scheduled
// for a strictly-future time, fans it out immediately. Scheduled alerts are
// stored and returned with an empty result list; a Scheduler (or an explicit
// Notify call) dispatches them later.
func (d *Dispatcher) CreateAndNotify(ctx context.Context, params CreateParams) (*Alert, []DeliveryResult, error) {
	now := d.now()

	alert := Alert{
		ID:           uuid.New().String(),
		Type:         params.Type,
		Severity:     params.Severity,
		Title:        params.Title,
		Message:      params.Message,
		Metadata:     params.Metadata,
		Recipients:   params.Recipients,
		Channels:     params.Channels,
		Status:       StatusPending,
		CreatedAt:    now,
		ScheduledFor: params.ScheduledFor,
	}
	if alert.Type == "" {
		alert.Type = TypeCustom
	}
	if alert.Severity == "" {
		alert.Severity = SeverityInfo
	}

	if params.ScheduledFor != nil && params.ScheduledFor.After(now) {
		alert.Status = StatusScheduled
		if err := d.storage.Save(ctx, alert); err != nil {
			return nil, nil, fmt.Errorf("failed to store scheduled alert: %w", err)
		}
		return &alert, nil, nil
	}

	if err := d.storage.Save(ctx, alert); err != nil {
		return nil, nil, fmt.Errorf("failed to store alert: %w", err)
	}

	results, err := d.Notify(ctx, alert.ID)
	if err != nil {
		return nil, nil, err
	}

	updated, err := d.storage.Find(ctx, alert.ID)
	if err != nil {
		return nil, nil, err
	}
	return updated, results, nil
}

// Notify runs the fan-out for the alert with the given id: marks it sending,
// invokes every eligible observer concurrently, waits for all of them,
// records their results as history, and derives the final status. The alert
// is sent if at least one channel succeeded and failed only when every
// attempt failed; per-channel truth lives in the returned results.
//
// Calling Notify on a scheduled alert dispatches it regardless of its
// scheduled time (a forced send).
func (d *Dispatcher) Notify(ctx context.Context, alertID string) ([]DeliveryResult, error) {
	unlock := d.lock(alertID)

	alert, err := d.storage.Find(ctx, alertID)
	if err != nil {
		unlock()
		return nil, err
	}
	if alert.Status.isPostSend() {
		unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadySent, alertID)
	}
	if !CanTransition(alert.Status, StatusSending) {
		unlock()
		return nil, fmt.Errorf("%w: cannot dispatch alert in status %q", ErrInvalidState, alert.Status)
	}

	alert.Status = StatusSending
	if err := d.storage.Save(ctx, *alert); err != nil {
		unlock()
		return nil, fmt.Errorf("failed to persist sending status: %w", err)
	}
	unlock()

	return d.finish(ctx, alert)
}

// Retry increments the retry count and re-runs the full fan-out across all
// eligible observers, not just previously-failed ones. Returns
// ErrAlertNotFound for unknown ids and ErrAlreadySent once the alert reached
// the sent stage. Racing a concurrent Retry or Cancel, exactly one call wins;
// the loser observes the resulting state and fails with ErrInvalidState.
func (d *Dispatcher) Retry(ctx context.Context, alertID string) ([]DeliveryResult, error) {
	unlock := d.lock(alertID)

	alert, err := d.storage.Find(ctx, alertID)
	if err != nil {
		unlock()
		return nil, err
	}
	if alert.Status.isPostSend() {
		unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadySent, alertID)
	}
	if !CanTransition(alert.Status, StatusSending) {
		unlock()
		return nil, fmt.Errorf("%w: cannot retry alert in status %q", ErrInvalidState, alert.Status)
	}

	alert.RetryCount++
	alert.Status = StatusSending
	if err := d.storage.Save(ctx, *alert); err != nil {
		unlock()
		return nil, fmt.Errorf("failed to persist retry: %w", err)
	}
	unlock()

	return d.finish(ctx, alert)
}

// Cancel moves a not-yet-sent alert to cancelled. Unknown ids return
// (false, nil) rather than an error so callers racing a cleanup can cancel
// idempotently; cancelling an already-cancelled alert is likewise a no-op
// success. Alerts at or past the sent stage, or currently sending, yield
// ErrInvalidState. In-flight fan-outs are not interrupted.
func (d *Dispatcher) Cancel(ctx context.Context, alertID string) (bool, error) {
	unlock := d.lock(alertID)
	defer unlock()

	alert, err := d.storage.Find(ctx, alertID)
	if err != nil {
		if errors.Is(err, ErrAlertNotFound) {
			return false, nil
		}
		return false, err
	}
	if alert.Status == StatusCancelled {
		return true, nil
	}
	if !CanTransition(alert.Status, StatusCancelled) {
		return false, fmt.Errorf("%w: cannot cancel alert in status %q", ErrInvalidState, alert.Status)
	}

	alert.Status = StatusCancelled
	if err := d.storage.Save(ctx, *alert); err != nil {
		return false, fmt.Errorf("failed to persist cancellation: %w", err)
	}
	return true, nil
}

// MarkDelivered records transport-level delivery confirmation for a sent alert.
func (d *Dispatcher) MarkDelivered(ctx context.Context, alertID string) error {
	return d.track(ctx, alertID, StatusDelivered)
}

// MarkRead records that the recipient saw the alert.
func (d *Dispatcher) MarkRead(ctx context.Context, alertID string) error {
	return d.track(ctx, alertID, StatusRead)
}

func (d *Dispatcher) track(ctx context.Context, alertID string, to Status) error {
	unlock := d.lock(alertID)
	defer unlock()

	alert, err := d.storage.Find(ctx, alertID)
	if err != nil {
		return err
	}
	if !CanTransition(alert.Status, to) {
		return fmt.Errorf("%w: cannot move alert from %q to %q", ErrInvalidState, alert.Status, to)
	}

	now := d.now()
	alert.Status = to
	switch to {
	case StatusDelivered:
		alert.DeliveredAt = &now
	case StatusRead:
		alert.ReadAt = &now
	}
	return d.storage.Save(ctx, *alert)
}

// Get returns the alert with the given id.
func (d *Dispatcher) Get(ctx context.Context, alertID string) (*Alert, error) {
	return d.storage.Find(ctx, alertID)
}

// List returns every stored alert.
func (d *Dispatcher) List(ctx context.Context) ([]Alert, error) {
	return d.storage.FindAll(ctx)
}

// History returns the append-only delivery history for an alert.
func (d *Dispatcher) History(ctx context.Context, alertID string) ([]DeliveryResult, error) {
	return d.storage.FindHistory(ctx, alertID)
}

// CleanHistory deletes every alert (and its history) created strictly before
// the cutoff, regardless of status, and returns the count removed.
func (d *Dispatcher) CleanHistory(ctx context.Context, olderThan time.Time) (int, error) {
	return d.storage.DeleteBefore(ctx, olderThan)
}

// DispatchDue fans out every scheduled alert whose time has come and returns
// how many were dispatched. Per-alert failures are logged and skipped so one
// bad alert cannot stall the rest; the Scheduler drives this on a ticker.
func (d *Dispatcher) DispatchDue(ctx context.Context) (int, error) {
	due, err := d.storage.FindDueScheduled(ctx, d.now())
	if err != nil {
		return 0, fmt.Errorf("failed to query due alerts: %w", err)
	}

	dispatched := 0
	for _, alert := range due {
		if _, err := d.Notify(ctx, alert.ID); err != nil {
			// Lost races (a concurrent cancel or forced send) land here.
			d.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to dispatch scheduled alert",
				logger.AlertID(alert.ID),
				logger.Error(err),
			)
			continue
		}
		dispatched++
	}
	return dispatched, nil
}

// finish runs the concurrent fan-out for an alert already marked sending,
// then records history and the final status.
func (d *Dispatcher) finish(ctx context.Context, alert *Alert) ([]DeliveryResult, error) {
	results := d.fanOut(ctx, alert)

	unlock := d.lock(alert.ID)
	defer unlock()

	if err := d.storage.AppendHistory(ctx, alert.ID, results); err != nil {
		d.logger.LogAttrs(ctx, slog.LevelError, "Failed to record delivery history",
			logger.AlertID(alert.ID),
			logger.Error(err),
		)
	}

	anySuccess := false
	for _, res := range results {
		if res.Success {
			anySuccess = true
			break
		}
	}

	if anySuccess {
		now := d.now()
		alert.Status = StatusSent
		alert.SentAt = &now
	} else {
		alert.Status = StatusFailed
	}

	if err := d.storage.Save(ctx, *alert); err != nil {
		d.logger.LogAttrs(ctx, slog.LevelError, "Failed to persist final alert status",
			logger.AlertID(alert.ID),
			logger.Error(err),
		)
	}

	d.logger.LogAttrs(ctx, slog.LevelInfo, "Alert fan-out complete",
		logger.AlertID(alert.ID),
		slog.String("status", string(alert.Status)),
		slog.Int("results", len(results)),
	)

	return results, nil
}

// fanOut invokes every eligible observer concurrently and waits for all of
// them. Each call is isolated: a panic or timeout in one observer becomes a
// failed result for the channels it owns and never affects the others.
func (d *Dispatcher) fanOut(ctx context.Context, alert *Alert) []DeliveryResult {
	candidates := d.eligibleObservers(alert)
	if len(candidates) == 0 {
		return []DeliveryResult{}
	}

	futures := make([]*async.Future[DeliveryResult], 0, len(candidates))
	for _, o := range candidates {
		futures = append(futures, async.Async(ctx, o, func(ctx context.Context, o Observer) (res DeliveryResult, err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("observer panic: %v", r)
				}
			}()
			return o.Notify(ctx, alert), nil
		}))
	}

	settled, errs := async.SettleAll(d.notifyTimeout, futures...)

	results := make([]DeliveryResult, 0, len(candidates))
	for i, o := range candidates {
		if errs[i] != nil {
			// Timed out, panicked, or the context died: one failed result
			// per channel this observer owns that the alert requested.
			for _, ch := range o.Channels() {
				if alert.HasChannel(ch) {
					results = append(results, Failed(ch, errs[i].Error()))
				}
			}
			d.logger.LogAttrs(ctx, slog.LevelWarn, "Observer attempt failed outside its own error handling",
				logger.AlertID(alert.ID),
				logger.Observer(o.ID()),
				logger.Error(errs[i]),
			)
			continue
		}
		results = append(results, settled[i])
	}
	return results
}

// eligibleObservers scopes fan-out to observers whose channel set intersects
// the alert's requested channels and that declare they can handle it.
func (d *Dispatcher) eligibleObservers(alert *Alert) []Observer {
	var out []Observer
	for _, o := range d.ObserversByChannels(alert.Channels...) {
		if o.CanHandle(alert) {
			out = append(out, o)
		}
	}
	return out
}

func (d *Dispatcher) lock(alertID string) func() {
	d.lockMu.Lock()
	m, ok := d.alertLocks[alertID]
	if !ok {
		m = &sync.Mutex{}
		d.alertLocks[alertID] = m
	}
	d.lockMu.Unlock()

	m.Lock()
	return m.Unlock
}

func channelsIntersect(a, b []Channel) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
