package assets

import (
	"strings"
	"testing"
)

func TestParseIssueMode(t *testing.T) {
	tests := []struct {
		input    string
		expected IssueMode
		wantErr  bool
	}{
		{"", IssueModeNone, false},
		{"ONCE", IssueModeOnce, false},
		{"once", IssueModeOnce, false},
		{"ONCE,MONO", IssueModeSinglet, false},
		{" multi , unflushable ", IssueModeMulti | IssueModeUnflushable, false},
		{"BOGUS", IssueModeNone, true},
		{"ONCE,BOGUS", IssueModeNone, true},
	}

	for _, test := range tests {
		mode, err := ParseIssueMode(test.input)
		if test.wantErr {
			if err == nil {
				t.Errorf("ParseIssueMode(%q): expected an error", test.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseIssueMode(%q): unexpected error: %s", test.input, err)
			continue
		}
		if mode != test.expected {
			t.Errorf("ParseIssueMode(%q): expected %d, got %d", test.input, test.expected, mode)
		}
	}
}

func TestIssueModeNames(t *testing.T) {
	names := IssueModeSinglet.Names()
	if got := strings.Join(names, ","); got != "ONCE,MONO" {
		t.Errorf("Names: expected ONCE,MONO, got %s", got)
	}
	if names := IssueModeNone.Names(); names != nil {
		t.Errorf("Names: expected no names for the zero mode, got %v", names)
	}
}
