// Package logging configures the process-wide zerolog logger.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup builds the root logger. Debug wins over verbose; the default level
// is warn. When running as a service the timestamp is suppressed because the
// service manager's journal adds its own.
func Setup(debug, verbose, isService bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	if isService {
		output.FormatTimestamp = func(interface{}) string {
			return ""
		}
	}

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.InfoLevel
	}
	if debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// IsService reports whether the daemon appears to be running under a service
// manager rather than an interactive shell.
func IsService() bool {
	if os.Getenv("INVOCATION_ID") != "" || os.Getenv("SERVICE_NAME") != "" {
		return true
	}
	return os.Getppid() == 1
}
