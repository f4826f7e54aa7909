// Package admin exposes the alert dispatcher's operational surface over
// HTTP for inspection and intervention: listing alerts, reading delivery
// history, retrying failed deliveries, cancelling pending alerts, pruning
// old history, and reading dispatch statistics.
//
//	handler := admin.NewHandler(dispatcher)
//	mux.Mount("/admin", handler.Router())
//
// The router carries no authentication of its own; mount it behind whatever
// auth middleware guards the rest of the operational endpoints.
package admin
