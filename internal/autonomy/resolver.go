// Package autonomy resolves whether autonomous execution is currently
// permitted at all. Shadow mode always wins over the autonomy flag, and
// unset or malformed flags default to off: autonomy is strictly opt-in.
package autonomy

import "strings"

// #region truthy

// truthy parses an operator-supplied flag value. Anything outside the
// accepted set (including empty) is false.
func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// #endregion truthy

// #region enabled

// Enabled implements the two-flag truth table:
//
//	autonomy  shadow  -> enabled
//	false     false      false
//	false     true       false
//	true      false      true
//	true      true       false
//
// A gate "allow" executes only when this returns true; otherwise it is
// recorded for review and not acted on.
func Enabled(autonomyFlag, shadowFlag string) bool {
	return truthy(autonomyFlag) && !truthy(shadowFlag)
}

// #endregion enabled
