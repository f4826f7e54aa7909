// Package push delivers mobile push notifications through pluggable
// provider backends.
//
// Three providers are included: Firebase Cloud Messaging (legacy HTTP API),
// the Expo push service, and AWS SNS mobile push. All implement the Provider
// interface, so callers depend only on the abstraction:
//
//	provider, err := push.NewFromConfig(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	receipt, err := provider.Send(ctx, token, push.Payload{
//		Title: "Court reserved",
//		Body:  "Court 4, today at 18:00",
//		Data:  map[string]string{"reservation_id": "res_123"},
//	})
//
// Provider selection is driven by Config, loaded from the environment with
// the config package.
package push
