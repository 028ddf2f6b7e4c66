package anchor

// Target is an ordered list of candidate anchor ids for a scroll attempt,
// ranked from most to least specific: an exact anchor known to exist in
// the document, the anchor derived from the normalized query code, then
// digit-prefix guesses. Equality is structural so that recomputing an
// unchanged target never re-triggers a scroll.
type Target struct {
	candidates []string
}

// NewTarget builds a target from candidate ids in priority order.
// Empty strings and duplicates are dropped, preserving first occurrence.
func NewTarget(candidates ...string) Target {
	seen := make(map[string]bool, len(candidates))
	kept := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate == "" || seen[candidate] {
			continue
		}
		seen[candidate] = true
		kept = append(kept, candidate)
	}
	return Target{candidates: kept}
}

// Candidates returns the candidate ids from most to least specific.
func (target Target) Candidates() []string {
	return target.candidates
}

// Empty reports whether the target has no candidates.
func (target Target) Empty() bool {
	return len(target.candidates) == 0
}

// Equal reports structural equality: the same candidates in the same order.
func (target Target) Equal(other Target) bool {
	if len(target.candidates) != len(other.candidates) {
		return false
	}
	for index, candidate := range target.candidates {
		if other.candidates[index] != candidate {
			return false
		}
	}
	return true
}
