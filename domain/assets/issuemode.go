package assets

import (
	"strings"

	"github.com/pkg/errors"
)

// IssueMode is the bitmask governing how cards of a deck may be issued.
type IssueMode uint32

// Issue mode flags. The named combinations SUBSCRIPTION and SINGLET are
// composed of the base flags and decode back into their components.
const (
	IssueModeNone         IssueMode = 0x00
	IssueModeCustom       IssueMode = 0x01
	IssueModeOnce         IssueMode = 0x02
	IssueModeMulti        IssueMode = 0x04
	IssueModeMono         IssueMode = 0x08
	IssueModeUnflushable  IssueMode = 0x10
	IssueModeSubscription IssueMode = 0x34
	IssueModeSinglet      IssueMode = IssueModeOnce | IssueModeMono
)

var issueModeNames = []struct {
	mode IssueMode
	name string
}{
	{IssueModeCustom, "CUSTOM"},
	{IssueModeOnce, "ONCE"},
	{IssueModeMulti, "MULTI"},
	{IssueModeMono, "MONO"},
	{IssueModeUnflushable, "UNFLUSHABLE"},
}

// Names returns the names of the base flags set in the mode, in canonical
// order.
func (m IssueMode) Names() []string {
	var names []string
	for _, entry := range issueModeNames {
		if m&entry.mode != 0 {
			names = append(names, entry.name)
		}
	}
	return names
}

// ParseIssueMode parses a comma-separated list of base flag names, e.g.
// "ONCE" or "ONCE,MONO", into a combined mode.
func ParseIssueMode(s string) (IssueMode, error) {
	if s == "" {
		return IssueModeNone, nil
	}
	var combined IssueMode
	for _, name := range strings.Split(s, ",") {
		name = strings.ToUpper(strings.TrimSpace(name))
		mode := IssueModeNone
		for _, entry := range issueModeNames {
			if entry.name == name {
				mode = entry.mode
				break
			}
		}
		if mode == IssueModeNone {
			return IssueModeNone, errors.Errorf("unknown issue mode '%s'", name)
		}
		combined |= mode
	}
	return combined, nil
}

// Combine xors the given flags into a single mode, matching how multiple
// selected flags are folded when a deck is spawned.
func Combine(modes ...IssueMode) IssueMode {
	var combined IssueMode
	for _, mode := range modes {
		combined ^= mode
	}
	return combined
}
