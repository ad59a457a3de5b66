package main

import (
	"fmt"
	"log"
	"os"

	"github.com/hpungsan/sessman/internal/config"
	"github.com/hpungsan/sessman/internal/db"
	"github.com/hpungsan/sessman/internal/mcp"
	"github.com/hpungsan/sessman/internal/render"
	"github.com/hpungsan/sessman/internal/store"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// setup loads config and opens the history journal. A journal that cannot be
// opened only disables history.
func setup() (*env, error) {
	baseDir, err := config.BaseDir()
	if err != nil {
		return nil, fmt.Errorf("could not determine home directory: %w", err)
	}

	cfg, err := config.Load(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	claudeDir, err := cfg.ResolveClaudeDir()
	if err != nil {
		return nil, fmt.Errorf("could not resolve claude directory: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("could not determine working directory: %w", err)
	}

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		log.Printf("warning: unknown tools in disabled_tools: %v", unknown)
	}

	e := &env{
		cfg:       cfg,
		baseDir:   baseDir,
		claudeDir: claudeDir,
		cwd:       cwd,
		st:        store.OS(),
		in:        os.Stdin,
		term:      render.NewTerminal(os.Stdout),
	}

	if !cfg.HistoryDisabled {
		database, err := db.Init(baseDir)
		if err != nil {
			log.Printf("warning: history disabled: %v", err)
		} else {
			e.db = database
		}
	}
	return e, nil
}

func main() {
	// Handle --help/--version before any setup
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	e, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	app := newCLIApp(e)
	err = app.Run(os.Args)
	e.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
