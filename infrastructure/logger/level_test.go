package logger

import "testing"

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		ok       bool
	}{
		{"trace", LevelTrace, true},
		{"TRC", LevelTrace, true},
		{"Debug", LevelDebug, true},
		{"info", LevelInfo, true},
		{"wrn", LevelWarn, true},
		{"error", LevelError, true},
		{"critical", LevelCritical, true},
		{"off", LevelOff, true},
		{"verbose", LevelInfo, false},
		{"", LevelInfo, false},
	}

	for _, test := range tests {
		level, ok := LevelFromString(test.input)
		if level != test.expected || ok != test.ok {
			t.Errorf("LevelFromString(%q): got (%s, %t), want (%s, %t)",
				test.input, level, ok, test.expected, test.ok)
		}
	}
}

func TestLevelString(t *testing.T) {
	if got := LevelWarn.String(); got != "WRN" {
		t.Errorf("LevelWarn.String(): got %s, want WRN", got)
	}
	if got := Level(99).String(); got != "OFF" {
		t.Errorf("out-of-range level: got %s, want OFF", got)
	}
}
