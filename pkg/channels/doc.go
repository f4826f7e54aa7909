// Package channels provides the Observer implementations the dispatcher
// fans alerts out to, one per delivery channel.
//
// Each observer owns a single channel: email (templated HTML mail through
// pkg/email), push (mobile notifications through pkg/push), in-app (toasts
// through pkg/inapp), and browser (native notifications through a Surface
// bridge). Observers filter recipients by address presence and delivery
// preferences, convert every transport fault into a failed DeliveryResult,
// and never propagate errors or panics to the dispatcher.
//
//	dispatcher.Attach(channels.NewEmailObserver(sender))
//	dispatcher.Attach(channels.NewPushObserver(provider))
//	dispatcher.Attach(channels.NewInAppObserver(center))
package channels
