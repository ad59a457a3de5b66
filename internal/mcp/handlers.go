package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/sessman/internal/errors"
	"github.com/hpungsan/sessman/internal/ops"
	"github.com/hpungsan/sessman/internal/session"
	"github.com/hpungsan/sessman/internal/store"
)

// Limits for session_lines.
const (
	defaultLinesLimit = 50
	maxLinesLimit     = 500
)

// Handlers holds dependencies for MCP tool handlers.
//
// The transport may dispatch tool calls concurrently while a Session has a
// single owner, so every handler runs under mu.
type Handlers struct {
	st  store.Storage
	db  *sql.DB
	loc *ops.Location

	mu   sync.Mutex
	sess *session.Session
}

// NewHandlers creates handlers for the session at loc. db may be nil to
// disable the history journal.
func NewHandlers(st store.Storage, db *sql.DB, loc *ops.Location) *Handlers {
	return &Handlers{st: st, db: db, loc: loc}
}

// session returns the open session, loading it on first use.
// Callers must hold h.mu.
func (h *Handlers) session() (*session.Session, error) {
	if h.sess == nil {
		s, err := ops.Load(h.st, h.loc)
		if err != nil {
			return nil, err
		}
		h.sess = s
	}
	return h.sess, nil
}

// Request types for each tool

// LinesRequest represents the arguments for session_lines.
type LinesRequest struct {
	Offset       int  `json:"offset,omitempty"`
	Limit        int  `json:"limit,omitempty"`
	MessagesOnly bool `json:"messages_only,omitempty"`
	IncludeRaw   bool `json:"include_raw,omitempty"`
}

// SelectAllRequest represents the arguments for session_select_all.
type SelectAllRequest struct {
	Selected *bool `json:"selected"`
}

// SelectTypeRequest represents the arguments for session_select_type.
type SelectTypeRequest struct {
	Type     string `json:"type"`
	Selected *bool  `json:"selected"`
}

// SelectMessagesRequest represents the arguments for session_select_messages.
type SelectMessagesRequest struct {
	Indices []int `json:"indices"`
}

// SaveRequest represents the arguments for session_save.
type SaveRequest struct {
	Confirm bool `json:"confirm"`
}

// RestoreRequest represents the arguments for session_restore.
type RestoreRequest struct {
	BackupID string `json:"backup_id,omitempty"`
}

// Response types

// StatsResponse is returned by session_stats and the selection tools.
type StatsResponse struct {
	SessionID string             `json:"session_id"`
	Stats     session.Statistics `json:"stats"`
	Kinds     []string           `json:"kinds,omitempty"`
	Matched   *int               `json:"matched,omitempty"`
}

// LinesResponse is returned by session_lines.
type LinesResponse struct {
	Total  int            `json:"total"`
	Offset int            `json:"offset"`
	Lines  []session.Line `json:"lines"`
}

// Handler implementations

// HandleStats handles the session_stats tool call.
func (h *Handlers) HandleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := decode[struct{}](req); err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.session()
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(StatsResponse{SessionID: s.ID, Stats: s.Stats(), Kinds: s.Kinds()})
}

// HandleLines handles the session_lines tool call.
func (h *Handlers) HandleLines(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LinesRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Offset < 0 {
		return errorResult(errors.NewInvalidRequest("offset must not be negative")), nil
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultLinesLimit
	}
	if limit > maxLinesLimit {
		limit = maxLinesLimit
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.session()
	if err != nil {
		return errorResult(err), nil
	}

	candidates := s.Lines
	if input.MessagesOnly {
		indices := s.MessageIndices()
		candidates = make([]session.Line, 0, len(indices))
		for _, i := range indices {
			candidates = append(candidates, s.Lines[i])
		}
	}

	out := LinesResponse{Total: len(candidates), Offset: input.Offset, Lines: []session.Line{}}
	if input.Offset < len(candidates) {
		end := input.Offset + limit
		if end > len(candidates) {
			end = len(candidates)
		}
		for _, l := range candidates[input.Offset:end] {
			if !input.IncludeRaw {
				l.Raw = ""
			}
			out.Lines = append(out.Lines, l)
		}
	}
	return successResult(out)
}

// HandleSelectAll handles the session_select_all tool call.
func (h *Handlers) HandleSelectAll(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SelectAllRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Selected == nil {
		return errorResult(errors.NewInvalidRequest("selected is required")), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.session()
	if err != nil {
		return errorResult(err), nil
	}
	s.SetAll(*input.Selected)
	return successResult(StatsResponse{SessionID: s.ID, Stats: s.Stats()})
}

// HandleSelectType handles the session_select_type tool call.
func (h *Handlers) HandleSelectType(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SelectTypeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Type == "" {
		return errorResult(errors.NewInvalidRequest("type is required")), nil
	}
	if input.Selected == nil {
		return errorResult(errors.NewInvalidRequest("selected is required")), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.session()
	if err != nil {
		return errorResult(err), nil
	}
	matched := s.SetKind(input.Type, *input.Selected)
	return successResult(StatsResponse{SessionID: s.ID, Stats: s.Stats(), Matched: &matched})
}

// HandleSelectMessages handles the session_select_messages tool call.
func (h *Handlers) HandleSelectMessages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SelectMessagesRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Indices == nil {
		return errorResult(errors.NewInvalidRequest("indices is required")), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.session()
	if err != nil {
		return errorResult(err), nil
	}
	for _, i := range input.Indices {
		if _, ok := s.Line(i); !ok {
			return errorResult(errors.NewInvalidRequest(fmt.Sprintf("line index %d out of range [0, %d)", i, len(s.Lines)))), nil
		}
	}
	s.SetMessages(input.Indices)
	return successResult(StatsResponse{SessionID: s.ID, Stats: s.Stats()})
}

// HandleSave handles the session_save tool call.
func (h *Handlers) HandleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.session()
	if err != nil {
		return errorResult(err), nil
	}
	result, err := ops.Save(h.st, h.db, s, ops.SaveInput{Confirmed: input.Confirm})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleBackups handles the session_backups tool call.
func (h *Handlers) HandleBackups(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := decode[struct{}](req); err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := ops.ListBackups(h.st, h.loc)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRestore handles the session_restore tool call.
func (h *Handlers) HandleRestore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RestoreRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := ops.Restore(h.st, h.db, h.loc, ops.RestoreInput{BackupID: input.BackupID})
	if err != nil {
		return errorResult(err), nil
	}
	h.sess = result.Session
	return successResult(result)
}

// HandleDiagnose handles the session_diagnose tool call.
func (h *Handlers) HandleDiagnose(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := decode[struct{}](req); err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := ops.Diagnose(h.st, h.loc, h.sess)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var sErr *errors.Error
	if stderrors.As(err, &sErr) {
		msg := sErr.Message
		if err != error(sErr) {
			// Keep the wrapper context.
			msg = err.Error()
		}
		errorObj := map[string]any{
			"code":    sErr.Code,
			"message": msg,
		}
		if sErr.Code != errors.ErrInternal && sErr.Details != nil {
			errorObj["details"] = sErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
