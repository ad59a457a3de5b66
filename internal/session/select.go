package session

// SetAll sets the selection of every line, message or not.
func (s *Session) SetAll(selected bool) {
	for i := range s.Lines {
		s.Lines[i].Selected = selected
	}
}

// SetKind sets the selection of every line whose kind equals kind and
// returns how many lines matched. Lines without a kind never match.
func (s *Session) SetKind(kind string, selected bool) int {
	if kind == "" {
		return 0
	}
	count := 0
	for i := range s.Lines {
		if s.Lines[i].Kind == kind {
			s.Lines[i].Selected = selected
			count++
		}
	}
	return count
}

// SetMessages selects exactly the message lines listed in indices and
// deselects every other message line. Non-message lines are left as they are.
func (s *Session) SetMessages(indices []int) {
	keep := make(map[int]bool, len(indices))
	for _, i := range indices {
		keep[i] = true
	}
	for i := range s.Lines {
		if s.Lines[i].IsMessage {
			s.Lines[i].Selected = keep[s.Lines[i].Index]
		}
	}
}

// MessageIndices returns the indices of all message lines, in file order.
func (s *Session) MessageIndices() []int {
	var out []int
	for _, l := range s.Lines {
		if l.IsMessage {
			out = append(out, l.Index)
		}
	}
	return out
}

// SelectedMessageIndices returns the indices of selected message lines.
func (s *Session) SelectedMessageIndices() []int {
	var out []int
	for _, l := range s.Lines {
		if l.IsMessage && l.Selected {
			out = append(out, l.Index)
		}
	}
	return out
}
