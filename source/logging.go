package source

import (
	"log/slog"
	"os"
)

// logger is the package-level debug logger gated by PSH_DEBUG, mirroring
// the teacher's (opal-lang-opal runtime/lexer) DEVCMD_DEBUG_LEXER-gated
// *slog.Logger field: a plain-text handler with timestamp/level stripped
// for terse debug output.
var logger = newLogger()

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("PSH_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}
