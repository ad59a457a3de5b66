package session

import "strings"

// ComplexContentPlaceholder is the preview for a content array with no text blocks.
const ComplexContentPlaceholder = "[Complex content]"

// KindUnknown is the record kind of a JSON line with no type or role.
const KindUnknown = "unknown"

// messageKinds is the fixed set of record kinds treated as conversation messages.
var messageKinds = map[string]bool{
	"user":      true,
	"assistant": true,
	"message":   true,
	"system":    true,
}

// IsMessageKind reports whether kind is one of the recognized message kinds.
func IsMessageKind(kind string) bool {
	return messageKinds[kind]
}

// Line is one line of a session file, JSON or not.
type Line struct {
	// Index is the zero-based position in the file. It is never reassigned.
	Index int `json:"index"`

	// Raw is the original text of the line without its terminator.
	// Save writes Raw back, never a re-encoding of the parsed value.
	Raw string `json:"raw"`

	// Kind is the record kind; empty for blank and non-JSON lines.
	Kind string `json:"kind,omitempty"`

	// Preview is the extracted text content; nil when there is none.
	Preview *string `json:"preview,omitempty"`

	IsMessage bool `json:"is_message"`
	Selected  bool `json:"selected"`

	// ParseErr describes why a non-blank line could not be decoded.
	ParseErr string `json:"parse_error,omitempty"`
}

// Blank reports whether the line is empty or whitespace only.
func (l Line) Blank() bool {
	return strings.TrimSpace(l.Raw) == ""
}

// PreviewText returns the preview, or "" when absent.
func (l Line) PreviewText() string {
	if l.Preview == nil {
		return ""
	}
	return *l.Preview
}

// Session is one loaded session file with per-line selection state.
//
// A Session has a single owner. None of its methods are safe for concurrent
// use; front-ends that dispatch concurrently must serialize access.
type Session struct {
	ID   string
	Path string

	Lines []Line

	// Original is the content last known to be on disk. Save backs it up
	// before overwriting the live file and replaces it afterwards.
	Original string
}

// New parses content into a Session with every line selected.
func New(id, path, content string) *Session {
	return &Session{
		ID:       id,
		Path:     path,
		Lines:    Parse(content),
		Original: content,
	}
}

// Output returns the text a save would write now: the raw text of every
// selected line joined by "\n".
func (s *Session) Output() string {
	var b strings.Builder
	first := true
	for _, l := range s.Lines {
		if !l.Selected {
			continue
		}
		if !first {
			b.WriteByte('\n')
		}
		b.WriteString(l.Raw)
		first = false
	}
	return b.String()
}

// Line returns the line at index, or false if index is out of range.
func (s *Session) Line(index int) (Line, bool) {
	if index < 0 || index >= len(s.Lines) {
		return Line{}, false
	}
	return s.Lines[index], true
}
