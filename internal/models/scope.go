package models

// AccessScope is the set of child identifiers a caller may act upon.
// All is the sentinel for roles with unconditional access.
type AccessScope struct {
	All      bool     `json:"all"`
	ChildIDs []string `json:"child_ids,omitempty"`
}

// ScopeAll returns the unrestricted scope.
func ScopeAll() AccessScope {
	return AccessScope{All: true}
}

// ScopeOf returns a scope restricted to the given child IDs.
func ScopeOf(childIDs ...string) AccessScope {
	return AccessScope{ChildIDs: childIDs}
}

// Contains reports whether the scope covers the given child.
func (s AccessScope) Contains(childID string) bool {
	if s.All {
		return true
	}
	for _, id := range s.ChildIDs {
		if id == childID {
			return true
		}
	}
	return false
}

// Empty reports whether the scope covers no children at all.
func (s AccessScope) Empty() bool {
	return !s.All && len(s.ChildIDs) == 0
}
