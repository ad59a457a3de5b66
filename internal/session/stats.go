package session

import "sort"

// Statistics summarizes a session. It is computed on demand and never cached.
type Statistics struct {
	Total    int            `json:"total"`
	Messages int            `json:"messages"`
	Selected int            `json:"selected"`
	ByKind   map[string]int `json:"by_kind"`
}

// Removed returns how many lines a save would drop.
func (st Statistics) Removed() int {
	return st.Total - st.Selected
}

// Stats counts lines, message lines, selected lines and lines per kind.
// Kinds are counted across all lines; lines without a kind are not counted.
func (s *Session) Stats() Statistics {
	st := Statistics{
		Total:  len(s.Lines),
		ByKind: make(map[string]int),
	}
	for _, l := range s.Lines {
		if l.IsMessage {
			st.Messages++
		}
		if l.Selected {
			st.Selected++
		}
		if l.Kind != "" {
			st.ByKind[l.Kind]++
		}
	}
	return st
}

// Kinds returns the distinct record kinds present in the session, sorted.
func (s *Session) Kinds() []string {
	seen := make(map[string]bool)
	var kinds []string
	for _, l := range s.Lines {
		if l.Kind != "" && !seen[l.Kind] {
			seen[l.Kind] = true
			kinds = append(kinds, l.Kind)
		}
	}
	sort.Strings(kinds)
	return kinds
}
