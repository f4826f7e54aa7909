// Package logger provides a thin factory over log/slog plus attribute
// helpers for the identifiers that show up throughout alert dispatch
// (alert id, user id, channel, provider).
//
// The helpers return empty attributes for zero values so call sites can pass
// whatever they have without nil-guarding:
//
//	log := logger.New(logger.WithFormat(logger.FormatText))
//	log.LogAttrs(ctx, slog.LevelInfo, "alert dispatched",
//	    logger.AlertID(alert.ID),
//	    logger.Channel(result.Channel),
//	    logger.Error(err),
//	)
package logger
