package cmdlogger

import (
	"fmt"
	"log/slog"
	"strings"
)

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Levels returns the accepted verbosity names, most verbose first.
func Levels() []string {
	return []string{"debug", "info", "warn", "error"}
}

func ParseLevel(text string) (slog.Level, error) {
	if lvl, ok := levels[strings.ToLower(text)]; ok {
		return lvl, nil
	}

	return slog.LevelInfo, fmt.Errorf("invalid verbosity level \"%s\" - must be one of: %s", text, strings.Join(Levels(), ", "))
}
