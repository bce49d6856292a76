package logs

import (
	"encoding/json"
	"log/slog"
	"strings"

	"wpp/internal/logging"
)

// Filter selects log lines. The zero value keeps everything.
type Filter struct {
	TxnReference string
	MinLevel     string
}

func (f Filter) empty() bool {
	return strings.TrimSpace(f.TxnReference) == "" && strings.TrimSpace(f.MinLevel) == ""
}

// Match reports whether a raw log line passes the filter.
func (f Filter) Match(line string) bool {
	if f.empty() {
		return true
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return false
	}
	if ref := strings.TrimSpace(f.TxnReference); ref != "" {
		value, _ := record[logging.FieldReference].(string)
		if value != ref {
			return false
		}
	}
	if min := strings.TrimSpace(f.MinLevel); min != "" {
		level, _ := record[slog.LevelKey].(string)
		if levelRank(level) < levelRank(min) {
			return false
		}
	}
	return true
}

func levelRank(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(level)))); err != nil {
		return slog.LevelInfo
	}
	return l
}
