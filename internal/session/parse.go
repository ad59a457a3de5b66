package session

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/hpungsan/sessman/internal/errors"
)

// Parse splits content into lines and classifies each one.
//
// Lines are split on "\n" with an optional preceding "\r". A trailing newline
// yields a final empty line, so joining every Raw with "\n" reproduces the
// input (modulo CRLF). Malformed JSON never fails the parse.
func Parse(content string) []Line {
	rawLines := strings.Split(content, "\n")
	lines := make([]Line, len(rawLines))
	for i, raw := range rawLines {
		lines[i] = parseLine(i, strings.TrimSuffix(raw, "\r"))
	}
	return lines
}

func parseLine(index int, raw string) Line {
	line := Line{Index: index, Raw: raw, Selected: true}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return line
	}

	var value json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
		line.ParseErr = errors.NewParse(index, err).Message
		return line
	}

	rec := decodeRecord(value)
	line.Kind = rec.kind()
	line.Preview = rec.preview()
	line.IsMessage = IsMessageKind(line.Kind)
	return line
}

// record holds the fields probed for kind and preview. Every field is
// optional; nil means the key was absent or the value was not an object.
type record struct {
	typ     json.RawMessage
	content json.RawMessage
	message map[string]json.RawMessage
}

func decodeRecord(value json.RawMessage) record {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(value, &top); err != nil || top == nil {
		// Arrays, strings, numbers and null carry no fields.
		return record{}
	}

	rec := record{typ: top["type"], content: top["content"]}
	if raw, ok := top["message"]; ok {
		var msg map[string]json.RawMessage
		if err := json.Unmarshal(raw, &msg); err == nil {
			rec.message = msg
		}
	}
	return rec
}

// kind probes type, message.type, message.role in order.
func (r record) kind() string {
	for _, raw := range []json.RawMessage{r.typ, r.message["type"], r.message["role"]} {
		if s, ok := asString(raw); ok && s != "" {
			return s
		}
	}
	return KindUnknown
}

// preview probes content, then message.content as string, block list, or
// any other non-null value. It returns nil when nothing applies.
func (r record) preview() *string {
	if s, ok := asString(r.content); ok {
		return &s
	}

	raw := r.message["content"]
	if isNull(raw) {
		return nil
	}
	if s, ok := asString(raw); ok {
		return &s
	}

	var blocks []json.RawMessage
	if err := json.Unmarshal(raw, &blocks); err == nil {
		text := joinTextBlocks(blocks)
		if text == "" {
			text = ComplexContentPlaceholder
		}
		return &text
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil
	}
	text := buf.String()
	return &text
}

// joinTextBlocks concatenates the text of {"type":"text"} blocks with newlines.
func joinTextBlocks(blocks []json.RawMessage) string {
	var parts []string
	for _, raw := range blocks {
		var block struct {
			Type string          `json:"type"`
			Text json.RawMessage `json:"text"`
		}
		if err := json.Unmarshal(raw, &block); err != nil {
			continue
		}
		if block.Type != "text" {
			continue
		}
		if text, ok := asString(block.Text); ok && text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

func asString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
