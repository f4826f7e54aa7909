// Package alerts implements a multi-channel alert dispatch engine.
//
// A Dispatcher accepts a domain event as a typed Alert, fans it out
// concurrently to every registered Observer that can handle it, collects one
// delivery result per channel, and tracks the alert through its lifecycle
// (pending/scheduled → sending → sent/failed → delivered/read, with cancel
// and retry). Delivery is best effort: one channel's failure never fails the
// alert as a whole, and per-channel truth is recorded in an append-only
// delivery history.
//
// # Architecture
//
//   - Alert: one notification occurrence and its delivery state.
//   - Observer: a channel strategy (email, push, in-app, browser) behind a
//     two-operation contract, CanHandle and Notify. New channels implement
//     the interface and register an instance; the Dispatcher never changes.
//   - Storage: a small repository interface; MemoryStorage holds everything
//     in process, RedisStorage survives restarts.
//   - Scheduler: a poller dispatching alerts whose scheduled time has come.
//
// # Usage
//
//	store := alerts.NewMemoryStorage()
//	dispatcher, err := alerts.New(store, alerts.WithNotifyTimeout(10*time.Second))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := dispatcher.Attach(emailObserver); err != nil {
//	    log.Fatal(err)
//	}
//
//	alert, results, err := dispatcher.CreateAndNotify(ctx, alerts.CreateParams{
//	    Type:       alerts.TypeReservationConfirmed,
//	    Severity:   alerts.SeveritySuccess,
//	    Title:      "Reservation confirmed",
//	    Message:    "Court 4, Saturday 10:00",
//	    Recipients: []alerts.Recipient{{UserID: "u1", Email: "player@club.test"}},
//	    Channels:   []alerts.Channel{alerts.ChannelEmail},
//	})
//
// Transport failures surface as data (DeliveryResult.Success=false), never as
// errors from the fan-out. Only caller mistakes (unknown ids, retrying a
// sent alert, duplicate observer ids) are returned as the typed sentinel
// errors in errors.go.
package alerts
