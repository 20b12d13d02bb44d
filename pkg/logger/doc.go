// Package logger builds the service's *slog.Logger and provides attribute
// helpers that keep key names consistent across components.
//
//	log := logger.New(logger.WithEnvironment(cfg.Env, "notifyd"))
//	log.InfoContext(ctx, "notification deferred",
//	    logger.NotificationID(n.ID),
//	    logger.Category(n.Category),
//	    logger.Reason("quiet_hours"),
//	)
//
// Error and Errors return an empty attribute for nil errors, so they can be
// passed unconditionally.
package logger
