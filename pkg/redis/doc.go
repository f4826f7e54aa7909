// Package redis connects to the Redis server backing durable alert storage.
//
// Connect retries until the server answers PING or the configured timeout
// expires, so the dispatcher does not start against a cold store:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	storage := alerts.NewRedisStorage(client)
//
// Healthcheck wraps the same PING for liveness and readiness probes.
// Config fields are populated from the environment with the config package.
package redis
