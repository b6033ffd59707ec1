package logger

import "strings"

// Level is the severity of a log message. A subsystem configured at a given
// level drops every message below it.
type Level uint32

// Severity levels, lowest to highest. LevelOff silences a subsystem
// entirely.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

// levelTags are the three-letter tags written into each log line, indexed by
// level.
var levelTags = [...]string{"TRC", "DBG", "INF", "WRN", "ERR", "CRT", "OFF"}

var levelNames = map[string]Level{
	"trace":    LevelTrace,
	"debug":    LevelDebug,
	"info":     LevelInfo,
	"warn":     LevelWarn,
	"error":    LevelError,
	"critical": LevelCritical,
	"off":      LevelOff,
}

// LevelFromString parses a level from its name or its three-letter tag,
// case-insensitively. Unrecognized input yields LevelInfo and false.
func LevelFromString(s string) (l Level, ok bool) {
	s = strings.ToLower(s)
	if level, ok := levelNames[s]; ok {
		return level, true
	}
	for i, tag := range levelTags {
		if strings.ToLower(tag) == s {
			return Level(i), true
		}
	}
	return LevelInfo, false
}

// String returns the level's log line tag.
func (l Level) String() string {
	if l >= LevelOff {
		return "OFF"
	}
	return levelTags[l]
}
