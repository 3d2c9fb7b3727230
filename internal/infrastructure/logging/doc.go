// Package logging builds the zap loggers used across pagehook.
//
// Production mode writes JSON; development mode writes coloured console
// lines with stack traces on errors. Components receive a *zap.Logger and
// derive named children with logger.Named.
//
//	logger, err := logging.New(logging.Config{Level: "debug"})
//	if err != nil {
//		return err
//	}
//	defer logger.Sync()
//	logger.Info("Server starting", zap.String("addr", ":8000"))
package logging
