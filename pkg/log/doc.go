/*
Package log provides structured logging for cybershield using zerolog.

Logger is a package-level zerolog.Logger. It discards everything until Init
is called, so library users of the store get no output unless they ask for
it. shieldctl calls Init from its configuration.

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})
	logger := log.WithComponent("storage")
	logger.Warn().Str("stage", "entry").Msg("Storage full, dropped screen-time evidence")

Console output is used unless JSONOutput is set.
*/
package log
