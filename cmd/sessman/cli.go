package main

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/sessman/internal/config"
	"github.com/hpungsan/sessman/internal/errors"
	"github.com/hpungsan/sessman/internal/mcp"
	"github.com/hpungsan/sessman/internal/ops"
	"github.com/hpungsan/sessman/internal/render"
	"github.com/hpungsan/sessman/internal/session"
	"github.com/hpungsan/sessman/internal/store"
)

// env carries what every command needs.
type env struct {
	cfg       *config.Config
	baseDir   string
	claudeDir string
	cwd       string
	db        *sql.DB
	st        store.Storage
	in        io.Reader
	term      *render.Terminal
}

func (e *env) close() {
	if e != nil && e.db != nil {
		e.db.Close()
	}
}

// locate resolves the session named by the first argument. --cwd overrides
// the working directory used to find the project.
func (e *env) locate(c *cli.Context) (*ops.Location, error) {
	if c.NArg() == 0 {
		return nil, errors.NewInvalidRequest("session id is required")
	}
	cwd := e.cwd
	if dir := c.String("cwd"); dir != "" {
		cwd = dir
	}
	return ops.Locate(e.claudeDir, cwd, c.Args().First())
}

// load locates and parses the session named by the first argument.
func (e *env) load(c *cli.Context) (*ops.Location, *session.Session, error) {
	loc, err := e.locate(c)
	if err != nil {
		return nil, nil, err
	}
	s, err := ops.Load(e.st, loc)
	if err != nil {
		return nil, nil, err
	}
	return loc, s, nil
}

func cwdFlag() cli.Flag {
	return &cli.StringFlag{Name: "cwd", Usage: "Project directory the session was started in (default: current directory)"}
}

func tableFlag() cli.Flag {
	return &cli.BoolFlag{Name: "table", Usage: "Print a table instead of JSON"}
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(e *env) *cli.App {
	app := &cli.App{
		Name:      "sessman",
		Usage:     "Inspect, prune, back up and restore Claude Code session logs",
		Version:   Version,
		ArgsUsage: "<session-id>",
		Flags:     []cli.Flag{cwdFlag()},
		Action: func(c *cli.Context) error {
			loc, s, err := e.load(c)
			if err != nil {
				return outputError(err)
			}
			m := newMenu(e, loc, s, c.App.Writer)
			if err := m.run(); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
		Commands: []*cli.Command{
			statsCmd(e),
			backupsCmd(e),
			restoreCmd(e),
			historyCmd(e),
			exportCmd(e),
			diagnoseCmd(e),
			mcpCmd(e),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// statsCmd creates the stats command.
func statsCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "Show line, message and per-kind counts",
		ArgsUsage: "<session-id>",
		Flags:     []cli.Flag{cwdFlag(), tableFlag()},
		Action: func(c *cli.Context) error {
			_, s, err := e.load(c)
			if err != nil {
				return outputError(err)
			}
			stats := s.Stats()
			if c.Bool("table") {
				writeStatsTable(c.App.Writer, stats)
				return nil
			}
			return outputJSON(c.App.Writer, stats)
		},
	}
}

// backupsCmd creates the backups command.
func backupsCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "backups",
		Usage:     "List backups of a session, newest first",
		ArgsUsage: "<session-id>",
		Flags:     []cli.Flag{cwdFlag(), tableFlag()},
		Action: func(c *cli.Context) error {
			loc, err := e.locate(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.ListBackups(e.st, loc)
			if err != nil {
				return outputError(err)
			}
			if c.Bool("table") {
				writeBackupsTable(c.App.Writer, output.Backups)
				return nil
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// restoreCmd creates the restore command.
func restoreCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "Overwrite a session file with one of its backups",
		ArgsUsage: "<session-id>",
		Flags: []cli.Flag{
			cwdFlag(),
			&cli.StringFlag{Name: "backup", Aliases: []string{"b"}, Usage: "Backup id (default: newest)"},
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm overwriting the session file"},
		},
		Action: func(c *cli.Context) error {
			loc, err := e.locate(c)
			if err != nil {
				return outputError(err)
			}
			if !c.Bool("yes") {
				return outputError(errors.NewAborted("restore"))
			}
			output, err := ops.Restore(e.st, e.db, loc, ops.RestoreInput{BackupID: c.String("backup")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// historyCmd creates the history command.
func historyCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "Show recorded saves and restores of a session",
		ArgsUsage: "<session-id>",
		Flags: []cli.Flag{
			tableFlag(),
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultHistoryLimit, Usage: "Maximum events to return"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("session id is required"))
			}
			output, err := ops.History(e.db, ops.HistoryInput{
				SessionID: c.Args().First(),
				Limit:     c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			if c.Bool("table") {
				writeHistoryTable(c.App.Writer, output.Events)
				return nil
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Write the session's messages as a Markdown or HTML transcript",
		ArgsUsage: "<session-id>",
		Flags: []cli.Flag{
			cwdFlag(),
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file, .md or .html (default: <base>/exports/<id>-<timestamp>.md)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "markdown|html (default: from the extension)"},
			&cli.StringSliceFlag{Name: "exclude-type", Aliases: []string{"x"}, Usage: "Record kinds to leave out (repeatable)"},
		},
		Action: func(c *cli.Context) error {
			_, s, err := e.load(c)
			if err != nil {
				return outputError(err)
			}
			for _, kind := range c.StringSlice("exclude-type") {
				s.SetKind(kind, false)
			}
			output, err := ops.Export(e.st, s, ops.ExportInput{
				Path:    c.String("path"),
				Format:  c.String("format"),
				BaseDir: e.baseDir,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// diagnoseCmd creates the diagnose command.
func diagnoseCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "diagnose",
		Usage:     "Report malformed lines, unknown kinds and backups",
		ArgsUsage: "<session-id>",
		Flags:     []cli.Flag{cwdFlag()},
		Action: func(c *cli.Context) error {
			loc, err := e.locate(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Diagnose(e.st, loc, nil)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "mcp",
		Usage:     "Serve one session over MCP on stdio",
		ArgsUsage: "<session-id>",
		Flags:     []cli.Flag{cwdFlag()},
		Action: func(c *cli.Context) error {
			loc, err := e.locate(c)
			if err != nil {
				return outputError(err)
			}
			if !e.st.Exists(loc.SessionPath) {
				return outputError(errors.NewSessionNotFound(loc.SessionPath))
			}
			h := mcp.NewHandlers(e.st, e.db, loc)
			if err := mcp.Run(h, e.cfg, Version); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON marshals result to w as JSON.
func outputJSON(w io.Writer, v any) error {
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	return cli.Exit(formatError(err), 1)
}

// formatError renders err as "[CODE] message" when it carries a code.
func formatError(err error) string {
	var sErr *errors.Error
	if stderrors.As(err, &sErr) {
		return fmt.Sprintf("[%s] %s", sErr.Code, sErr.Message)
	}
	return err.Error()
}
