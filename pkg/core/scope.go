package core

import "strings"

// SplitScopes splits a space-delimited scope string into individual scope
// names. Runs of whitespace collapse; an empty string yields no scopes.
func SplitScopes(s string) []string {
	return strings.Fields(s)
}

// ScopeSet is a set of scope names. Membership is case-sensitive and
// exact-match; duplicates collapse on construction.
type ScopeSet map[string]struct{}

// NewScopeSet builds a ScopeSet from a space-delimited scope string.
func NewScopeSet(s string) ScopeSet {
	set := make(ScopeSet)
	for _, scope := range SplitScopes(s) {
		set[scope] = struct{}{}
	}
	return set
}

// Contains reports whether the set holds the given scope.
func (s ScopeSet) Contains(scope string) bool {
	_, ok := s[scope]
	return ok
}

// MissingScopes returns the required scopes absent from granted, preserving
// the order in which they appear in required. Duplicate required entries are
// reported once. An empty required string yields nil.
func MissingScopes(required string, granted ScopeSet) []string {
	var missing []string
	seen := make(ScopeSet)
	for _, scope := range SplitScopes(required) {
		if seen.Contains(scope) {
			continue
		}
		seen[scope] = struct{}{}
		if !granted.Contains(scope) {
			missing = append(missing, scope)
		}
	}
	return missing
}
