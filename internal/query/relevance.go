package query

import "strings"

// RelevanceSet is a set of lower-cased name fragments. A nil set means "no
// relevance constraint"; a non-nil empty set matches nothing.
type RelevanceSet map[string]struct{}

// NewRelevanceSet normalizes identifiers into a set. Blank fragments are
// dropped, so the result may be empty but is never nil.
func NewRelevanceSet(identifiers []string) RelevanceSet {
	set := make(RelevanceSet, len(identifiers))
	for _, id := range identifiers {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

// Matches reports whether any of the names contains at least one token,
// case-insensitively.
func (s RelevanceSet) Matches(names ...string) bool {
	for _, name := range names {
		name = strings.ToLower(name)
		for token := range s {
			if strings.Contains(name, token) {
				return true
			}
		}
	}
	return false
}

// Tokens returns the set members in no particular order.
func (s RelevanceSet) Tokens() []string {
	out := make([]string, 0, len(s))
	for token := range s {
		out = append(out, token)
	}
	return out
}
