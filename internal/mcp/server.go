package mcp

import (
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/sessman/internal/config"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"session_stats": {
		def:     statsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStats },
	},
	"session_lines": {
		def:     linesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLines },
	},
	"session_select_all": {
		def:     selectAllToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSelectAll },
	},
	"session_select_type": {
		def:     selectTypeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSelectType },
	},
	"session_select_messages": {
		def:     selectMessagesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSelectMessages },
	},
	"session_save": {
		def:     saveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSave },
	},
	"session_backups": {
		def:     backupsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBackups },
	},
	"session_restore": {
		def:     restoreToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRestore },
	},
	"session_diagnose": {
		def:     diagnoseToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDiagnose },
	},
}

// AllToolNames returns all valid tool names, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates an MCP server exposing the session behind h.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(h *Handlers, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"sessman",
		version,
		server.WithToolCapabilities(true),
	)

	disabled := make(map[string]bool)
	if cfg != nil {
		for _, name := range cfg.DisabledTools {
			disabled[name] = true
		}
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(h *Handlers, cfg *config.Config, version string) error {
	return server.ServeStdio(NewServer(h, cfg, version))
}
