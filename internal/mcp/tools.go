package mcp

import "github.com/mark3labs/mcp-go/mcp"

var statsToolDef = mcp.NewTool("session_stats",
	mcp.WithDescription("Line, message and selection counts for the open session, plus the record kinds present."),
)

var linesToolDef = mcp.NewTool("session_lines",
	mcp.WithDescription("Page through the lines of the session with kind, preview and selection state."),
	mcp.WithNumber("offset", mcp.Description("First line index to return (default 0)")),
	mcp.WithNumber("limit", mcp.Description("Maximum lines to return (default 50, max 500)")),
	mcp.WithBoolean("messages_only", mcp.Description("Only return message lines")),
	mcp.WithBoolean("include_raw", mcp.Description("Include the raw line text")),
)

var selectAllToolDef = mcp.NewTool("session_select_all",
	mcp.WithDescription("Select or deselect every line, including non-message lines."),
	mcp.WithBoolean("selected", mcp.Required(), mcp.Description("New selection state")),
)

var selectTypeToolDef = mcp.NewTool("session_select_type",
	mcp.WithDescription("Select or deselect every line of one record kind (e.g. user, assistant, summary)."),
	mcp.WithString("type", mcp.Required(), mcp.Description("Record kind to match exactly")),
	mcp.WithBoolean("selected", mcp.Required(), mcp.Description("New selection state")),
)

var selectMessagesToolDef = mcp.NewTool("session_select_messages",
	mcp.WithDescription("Keep exactly the listed message lines selected. Non-message lines are unaffected."),
	mcp.WithArray("indices", mcp.Required(),
		mcp.Description("Line indices of the message lines to keep"),
		mcp.Items(map[string]any{"type": "integer"}),
	),
)

var saveToolDef = mcp.NewTool("session_save",
	mcp.WithDescription("Back up the session file, then rewrite it with only the selected lines."),
	mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true to write")),
)

var backupsToolDef = mcp.NewTool("session_backups",
	mcp.WithDescription("List backups of the session, newest first."),
)

var restoreToolDef = mcp.NewTool("session_restore",
	mcp.WithDescription("Overwrite the session file with a backup and reload it. Unsaved selections are discarded."),
	mcp.WithString("backup_id", mcp.Description("Backup to restore (default: newest)")),
)

var diagnoseToolDef = mcp.NewTool("session_diagnose",
	mcp.WithDescription("Health report: paths, malformed lines, unknown kinds, backups and pending changes."),
)
