// Package inapp delivers transient toast notifications to connected
// clients.
//
// The Center tracks live subscriptions per user, typically one per open
// browser tab or SSE stream. Publishing fans out to every subscription the
// user holds; slow consumers have toasts dropped rather than blocking the
// publisher.
//
//	center := inapp.NewCenter()
//	defer center.Close()
//
//	sub := center.Subscribe(ctx, "user_123")
//	go func() {
//		for toast := range sub.Receive() {
//			render(toast)
//		}
//	}()
//
//	center.Publish(ctx, inapp.Toast{
//		UserID:  "user_123",
//		Title:   "Reservation confirmed",
//		Message: "Court 4, today at 18:00",
//		Style:   "success",
//	})
package inapp
