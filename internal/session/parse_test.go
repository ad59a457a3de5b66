package session

import (
	"strings"
	"testing"
)

func strPtr(s string) *string {
	return &s
}

func TestParse_Scenario(t *testing.T) {
	content := strings.Join([]string{
		`{"type":"user","content":"hi"}`,
		``,
		`not json`,
		`{"message":{"role":"assistant","content":[{"type":"text","text":"hello"}]}}`,
	}, "\n")

	lines := Parse(content)
	if len(lines) != 4 {
		t.Fatalf("len(lines) = %d, want 4", len(lines))
	}

	if !lines[0].IsMessage || lines[0].Kind != "user" || lines[0].PreviewText() != "hi" {
		t.Errorf("line 0 = %+v, want user message with preview %q", lines[0], "hi")
	}
	if lines[1].IsMessage || lines[1].Kind != "" || lines[1].Preview != nil {
		t.Errorf("line 1 = %+v, want blank non-message", lines[1])
	}
	if lines[2].IsMessage || lines[2].Raw != "not json" || lines[2].Kind != "" {
		t.Errorf("line 2 = %+v, want raw non-message", lines[2])
	}
	if lines[2].ParseErr == "" {
		t.Error("line 2 ParseErr should be set")
	}
	if !lines[3].IsMessage || lines[3].Kind != "assistant" || lines[3].PreviewText() != "hello" {
		t.Errorf("line 3 = %+v, want assistant message with preview %q", lines[3], "hello")
	}
}

func TestParse_IndexStableAndSelected(t *testing.T) {
	content := "{\"type\":\"user\"}\n\ngarbage\n{\"type\":\"summary\"}\n"
	lines := Parse(content)

	for i, l := range lines {
		if l.Index != i {
			t.Errorf("lines[%d].Index = %d", i, l.Index)
		}
		if !l.Selected {
			t.Errorf("lines[%d].Selected = false, want true", i)
		}
	}
}

func TestParse_TrailingNewlineKeepsEmptyLine(t *testing.T) {
	lines := Parse("{\"type\":\"user\"}\n")
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if lines[1].Raw != "" || lines[1].IsMessage {
		t.Errorf("trailing line = %+v, want empty non-message", lines[1])
	}
}

func TestParse_CRLF(t *testing.T) {
	lines := Parse("{\"type\":\"user\",\"content\":\"a\"}\r\nplain\r\n")
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	if lines[0].Raw != `{"type":"user","content":"a"}` {
		t.Errorf("Raw = %q, want CR stripped", lines[0].Raw)
	}
	if lines[1].Raw != "plain" {
		t.Errorf("Raw = %q, want %q", lines[1].Raw, "plain")
	}
}

func TestParse_Empty(t *testing.T) {
	lines := Parse("")
	if len(lines) != 1 {
		t.Fatalf("len(lines) = %d, want 1", len(lines))
	}
	if lines[0].Raw != "" || lines[0].Kind != "" {
		t.Errorf("line = %+v, want empty", lines[0])
	}
}

func TestParse_WhitespaceOnlyIsBlank(t *testing.T) {
	lines := Parse("   \t")
	if lines[0].ParseErr != "" {
		t.Errorf("ParseErr = %q, blank lines are not parse errors", lines[0].ParseErr)
	}
	if !lines[0].Blank() {
		t.Error("Blank() = false, want true")
	}
	if lines[0].Raw != "   \t" {
		t.Errorf("Raw = %q, want verbatim", lines[0].Raw)
	}
}

func TestParse_Kind(t *testing.T) {
	tests := []struct {
		name string
		line string
		kind string
		msg  bool
	}{
		{"top-level type", `{"type":"assistant","message":{"role":"user"}}`, "assistant", true},
		{"message type", `{"message":{"type":"message","role":"assistant"}}`, "message", true},
		{"message role", `{"message":{"role":"system"}}`, "system", true},
		{"nothing", `{"foo":1}`, KindUnknown, false},
		{"non-message type", `{"type":"summary"}`, "summary", false},
		{"empty type falls through", `{"type":"","message":{"role":"user"}}`, "user", true},
		{"non-string type falls through", `{"type":7,"message":{"role":"user"}}`, "user", true},
		{"array value", `[1,2,3]`, KindUnknown, false},
		{"string value", `"just a string"`, KindUnknown, false},
		{"null value", `null`, KindUnknown, false},
		{"message not object", `{"message":"hello"}`, KindUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Parse(tt.line)[0]
			if l.Kind != tt.kind {
				t.Errorf("Kind = %q, want %q", l.Kind, tt.kind)
			}
			if l.IsMessage != tt.msg {
				t.Errorf("IsMessage = %v, want %v", l.IsMessage, tt.msg)
			}
			if l.ParseErr != "" {
				t.Errorf("ParseErr = %q, want empty", l.ParseErr)
			}
		})
	}
}

func TestParse_Preview(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		preview *string
	}{
		{"top-level string", `{"type":"user","content":"hi"}`, strPtr("hi")},
		{"top-level empty string is present", `{"type":"user","content":""}`, strPtr("")},
		{"top-level wins over message", `{"content":"top","message":{"content":"nested"}}`, strPtr("top")},
		{"message string", `{"message":{"role":"user","content":"nested"}}`, strPtr("nested")},
		{"top-level non-string skipped", `{"content":[1],"message":{"content":"nested"}}`, strPtr("nested")},
		{
			"text blocks joined",
			`{"message":{"content":[{"type":"text","text":"a"},{"type":"tool_use","id":"x"},{"type":"text","text":"b"}]}}`,
			strPtr("a\nb"),
		},
		{
			"empty text blocks skipped",
			`{"message":{"content":[{"type":"text","text":""},{"type":"text","text":"b"}]}}`,
			strPtr("b"),
		},
		{
			"no text blocks",
			`{"message":{"content":[{"type":"tool_result","content":"ok"}]}}`,
			strPtr(ComplexContentPlaceholder),
		},
		{"empty array", `{"message":{"content":[]}}`, strPtr(ComplexContentPlaceholder)},
		{"object content serialized", `{"message":{"content":{"a": 1, "b": [true]}}}`, strPtr(`{"a":1,"b":[true]}`)},
		{"number content serialized", `{"message":{"content":42}}`, strPtr("42")},
		{"null content absent", `{"message":{"content":null}}`, nil},
		{"no content absent", `{"type":"user"}`, nil},
		{"no message absent", `{"type":"summary","summary":"x"}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Parse(tt.line)[0]
			switch {
			case tt.preview == nil && l.Preview != nil:
				t.Errorf("Preview = %q, want absent", *l.Preview)
			case tt.preview != nil && l.Preview == nil:
				t.Errorf("Preview absent, want %q", *tt.preview)
			case tt.preview != nil && *l.Preview != *tt.preview:
				t.Errorf("Preview = %q, want %q", *l.Preview, *tt.preview)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, raw := range []string{`{"type":"user"`, `{"a":1} trailing`, `not json`, `{'single':'quotes'}`} {
		l := Parse(raw)[0]
		if l.IsMessage || l.Kind != "" || l.Preview != nil {
			t.Errorf("Parse(%q) = %+v, want opaque line", raw, l)
		}
		if l.Raw != raw {
			t.Errorf("Raw = %q, want %q", l.Raw, raw)
		}
		if !l.Selected {
			t.Errorf("Parse(%q).Selected = false", raw)
		}
	}
}

func TestParse_Deterministic(t *testing.T) {
	content := "{\"type\":\"user\",\"content\":\"x\"}\nbad\n\n{\"message\":{\"content\":{\"k\":1}}}"
	a := Parse(content)
	b := Parse(content)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Raw != b[i].Raw || a[i].Kind != b[i].Kind || a[i].PreviewText() != b[i].PreviewText() {
			t.Errorf("line %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
