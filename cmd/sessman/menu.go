package main

import (
	"bufio"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hpungsan/sessman/internal/config"
	"github.com/hpungsan/sessman/internal/errors"
	"github.com/hpungsan/sessman/internal/ops"
	"github.com/hpungsan/sessman/internal/render"
	"github.com/hpungsan/sessman/internal/session"
	"github.com/hpungsan/sessman/internal/store"
)

// action is one entry of the main menu.
type action string

const (
	actionView     action = "view"
	actionSelect   action = "select"
	actionSave     action = "save"
	actionRestore  action = "restore"
	actionStats    action = "stats"
	actionDiagnose action = "diagnose"
	actionExit     action = "exit"
)

// menuItems is the fixed main menu, in display order.
var menuItems = []struct {
	key    string
	action action
	label  string
}{
	{"1", actionView, "View lines"},
	{"2", actionSelect, "Select lines"},
	{"3", actionSave, "Save"},
	{"4", actionRestore, "Restore from backup"},
	{"5", actionStats, "Statistics"},
	{"6", actionDiagnose, "Diagnostics"},
	{"0", actionExit, "Exit"},
}

// parseAction maps a menu key or action name to an action.
func parseAction(input string) (action, bool) {
	input = strings.ToLower(strings.TrimSpace(input))
	for _, item := range menuItems {
		if input == item.key || input == string(item.action) {
			return item.action, true
		}
	}
	if input == "q" || input == "quit" {
		return actionExit, true
	}
	return "", false
}

// menu is the interactive front-end. It owns the session; every action runs
// one core operation and prints its result.
type menu struct {
	in   *bufio.Scanner
	out  io.Writer
	term *render.Terminal
	cfg  *config.Config

	st  store.Storage
	db  *sql.DB
	loc *ops.Location

	sess *session.Session
	page int
}

func newMenu(e *env, loc *ops.Location, s *session.Session, out io.Writer) *menu {
	if out == nil {
		out = os.Stdout
	}
	cfg := e.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	term := e.term
	if term == nil {
		term = render.NewPlainTerminal(cfg.PreviewWidth)
	}
	in := e.in
	if in == nil {
		in = os.Stdin
	}
	return &menu{
		in:   bufio.NewScanner(in),
		out:  out,
		term: term,
		cfg:  cfg,
		st:   e.st,
		db:   e.db,
		loc:  loc,
		sess: s,
	}
}

// run shows the main menu until the user exits or input ends.
func (m *menu) run() error {
	m.printHeader()
	for {
		m.printMenu()
		input, ok := m.prompt("> ")
		if !ok {
			return m.in.Err()
		}
		a, known := parseAction(input)
		if !known {
			m.warn(fmt.Sprintf("unknown choice %q", input))
			continue
		}
		if m.dispatch(a) {
			return nil
		}
	}
}

// dispatch runs a and reports whether the menu should exit.
func (m *menu) dispatch(a action) bool {
	switch a {
	case actionView:
		m.view()
	case actionSelect:
		m.selectLines()
	case actionSave:
		m.save()
	case actionRestore:
		m.restore()
	case actionStats:
		m.stats()
	case actionDiagnose:
		m.diagnose()
	case actionExit:
		return m.confirmExit()
	}
	return false
}

func (m *menu) printHeader() {
	fmt.Fprintln(m.out, render.TitleStyle.Render("Session "+m.sess.ID))
	fmt.Fprintln(m.out, render.DimStyle.Render(m.loc.SessionPath))
}

func (m *menu) printMenu() {
	st := m.sess.Stats()
	fmt.Fprintf(m.out, "\n%d lines, %d messages, %d selected\n", st.Total, st.Messages, st.Selected)
	for _, item := range menuItems {
		fmt.Fprintf(m.out, "  %s) %s\n", item.key, item.label)
	}
}

// prompt prints p and reads one line. ok is false at end of input.
func (m *menu) prompt(p string) (string, bool) {
	fmt.Fprint(m.out, p)
	if !m.in.Scan() {
		fmt.Fprintln(m.out)
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

// confirm asks a yes/no question; anything but y/yes is no.
func (m *menu) confirm(question string) bool {
	answer, ok := m.prompt(question + " [y/N] ")
	if !ok {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

func (m *menu) warn(msg string) {
	fmt.Fprintln(m.out, render.WarnStyle.Render(msg))
}

func (m *menu) fail(err error) {
	fmt.Fprintln(m.out, render.ErrorStyle.Render(formatError(err)))
}

func (m *menu) success(msg string) {
	fmt.Fprintln(m.out, render.SuccessStyle.Render(msg))
}

// view pages through the lines. A line number shows that line in full.
func (m *menu) view() {
	pageSize := m.cfg.PageSize
	if pageSize <= 0 {
		pageSize = config.DefaultConfig().PageSize
	}
	pages := (len(m.sess.Lines) + pageSize - 1) / pageSize

	for {
		if m.page >= pages {
			m.page = pages - 1
		}
		if m.page < 0 {
			m.page = 0
		}
		start := m.page * pageSize
		end := start + pageSize
		if end > len(m.sess.Lines) {
			end = len(m.sess.Lines)
		}

		fmt.Fprintf(m.out, "\nPage %d/%d\n", m.page+1, pages)
		writeLinesTable(m.out, m.sess.Lines[start:end], m.cfg.PreviewWidth)

		input, ok := m.prompt("[n]ext [p]rev <line> [q]back: ")
		if !ok {
			return
		}
		switch strings.ToLower(input) {
		case "", "q", "b", "back":
			return
		case "n", "next":
			m.page++
		case "p", "prev":
			m.page--
		default:
			index, err := strconv.Atoi(input)
			if err != nil {
				m.warn(fmt.Sprintf("not a line number: %q", input))
				continue
			}
			m.showLine(index)
		}
	}
}

// showLine renders one line in full through the terminal renderer.
func (m *menu) showLine(index int) {
	l, ok := m.sess.Line(index)
	if !ok {
		m.fail(errors.NewInvalidRequest(fmt.Sprintf("line index %d out of range [0, %d)", index, len(m.sess.Lines))))
		return
	}
	fmt.Fprint(m.out, m.term.Markdown(lineMarkdown(l)))
}

// lineMarkdown describes a line for display.
func lineMarkdown(l session.Line) string {
	var b strings.Builder
	state := "selected"
	if !l.Selected {
		state = "not selected"
	}
	switch {
	case l.Blank():
		fmt.Fprintf(&b, "### Line %d: blank (%s)\n", l.Index, state)
	case l.ParseErr != "":
		fmt.Fprintf(&b, "### Line %d: not JSON (%s)\n\n%s\n\n```\n%s\n```\n", l.Index, state, l.ParseErr, l.Raw)
	default:
		fmt.Fprintf(&b, "### Line %d: %s (%s)\n\n", l.Index, l.Kind, state)
		if text := l.PreviewText(); text != "" {
			b.WriteString(text)
			b.WriteString("\n")
		} else {
			fmt.Fprintf(&b, "```json\n%s\n```\n", l.Raw)
		}
	}
	return b.String()
}

const selectHelp = `  a              select all lines
  d              deselect all lines
  +<kind>        select every line of a kind (e.g. +user)
  -<kind>        deselect every line of a kind
  m <lines>      keep only these message lines, e.g. m 0,3,7-9
  t <line>       toggle one message line
  q              back`

// selectLines is the selection sub-menu.
func (m *menu) selectLines() {
	fmt.Fprintln(m.out, selectHelp)
	if kinds := m.sess.Kinds(); len(kinds) > 0 {
		fmt.Fprintln(m.out, render.DimStyle.Render("  kinds: "+strings.Join(kinds, ", ")))
	}

	for {
		input, ok := m.prompt("select> ")
		if !ok {
			return
		}
		if done := m.applySelection(input); done {
			return
		}
		st := m.sess.Stats()
		fmt.Fprintf(m.out, "%d of %d lines selected\n", st.Selected, st.Total)
	}
}

// applySelection runs one selection command and reports whether to leave
// the sub-menu.
func (m *menu) applySelection(input string) bool {
	switch {
	case input == "" || input == "q":
		return true
	case input == "a":
		m.sess.SetAll(true)
	case input == "d":
		m.sess.SetAll(false)
	case strings.HasPrefix(input, "+") || strings.HasPrefix(input, "-"):
		kind := strings.TrimSpace(input[1:])
		n := m.sess.SetKind(kind, input[0] == '+')
		if n == 0 {
			m.warn(fmt.Sprintf("no lines of kind %q", kind))
		}
	case strings.HasPrefix(input, "m "):
		indices, err := parseIndices(strings.TrimSpace(input[2:]), len(m.sess.Lines))
		if err != nil {
			m.fail(errors.NewInvalidRequest(err.Error()))
			return false
		}
		m.sess.SetMessages(indices)
	case strings.HasPrefix(input, "t "):
		index, err := strconv.Atoi(strings.TrimSpace(input[2:]))
		if err != nil {
			m.fail(errors.NewInvalidRequest(fmt.Sprintf("not a line number: %q", input[2:])))
			return false
		}
		m.toggle(index)
	default:
		m.warn(fmt.Sprintf("unknown selection command %q", input))
	}
	return false
}

// toggle flips one message line, leaving the other message lines as they are.
func (m *menu) toggle(index int) {
	l, ok := m.sess.Line(index)
	if !ok {
		m.fail(errors.NewInvalidRequest(fmt.Sprintf("line index %d out of range [0, %d)", index, len(m.sess.Lines))))
		return
	}
	if !l.IsMessage {
		m.warn(fmt.Sprintf("line %d is not a message", index))
		return
	}

	keep := make([]int, 0, len(m.sess.Lines))
	for _, i := range m.sess.SelectedMessageIndices() {
		if i != index {
			keep = append(keep, i)
		}
	}
	if !l.Selected {
		keep = append(keep, index)
	}
	m.sess.SetMessages(keep)
}

// parseIndices parses "0,3 7-9" into line indices below n.
func parseIndices(s string, n int) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		if lo, hi, isRange := strings.Cut(f, "-"); isRange {
			a, errA := strconv.Atoi(lo)
			b, errB := strconv.Atoi(hi)
			if errA != nil || errB != nil || a < 0 || a > b {
				return nil, fmt.Errorf("invalid range %q", f)
			}
			if b >= n {
				return nil, fmt.Errorf("range %q out of range [0, %d)", f, n)
			}
			for i := a; i <= b; i++ {
				out = append(out, i)
			}
			continue
		}
		i, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid line number %q", f)
		}
		if i < 0 || i >= n {
			return nil, fmt.Errorf("line index %d out of range [0, %d)", i, n)
		}
		out = append(out, i)
	}
	return out, nil
}

func (m *menu) save() {
	st := m.sess.Stats()
	question := fmt.Sprintf("Write %d lines and remove %d from %s?", st.Selected, st.Removed(), m.loc.SessionPath)
	out, err := ops.Save(m.st, m.db, m.sess, ops.SaveInput{Confirmed: m.confirm(question)})
	if err != nil {
		if errors.Is(err, errors.ErrAborted) {
			m.warn("Save cancelled.")
			return
		}
		m.fail(err)
		return
	}
	m.success(fmt.Sprintf("Saved %d lines (%d removed). Backup: %s", out.Written, out.Removed, out.BackupPath))
	if out.HistoryWarning != "" {
		m.warn(out.HistoryWarning)
	}
}

func (m *menu) restore() {
	list, err := ops.ListBackups(m.st, m.loc)
	if err != nil {
		m.fail(err)
		return
	}
	if len(list.Backups) == 0 {
		m.fail(errors.NewNoBackups(m.loc.SessionID))
		return
	}

	writeBackupsTable(m.out, list.Backups)
	input, ok := m.prompt("Backup # (Enter for newest, q to cancel): ")
	if !ok || input == "q" {
		return
	}
	backup := list.Backups[0]
	if input != "" {
		n, err := strconv.Atoi(input)
		if err != nil || n < 1 || n > len(list.Backups) {
			m.fail(errors.NewInvalidRequest(fmt.Sprintf("choose 1-%d", len(list.Backups))))
			return
		}
		backup = list.Backups[n-1]
	}

	if !m.confirm(fmt.Sprintf("Overwrite %s with %s? Unsaved selections are lost.", m.loc.SessionPath, backup.ID)) {
		m.warn("Restore cancelled.")
		return
	}

	out, err := ops.Restore(m.st, m.db, m.loc, ops.RestoreInput{BackupID: backup.ID})
	if err != nil {
		m.fail(err)
		return
	}
	m.sess = out.Session
	m.page = 0
	m.success(fmt.Sprintf("Restored %s: %d lines, %d messages.", backup.ID, out.Stats.Total, out.Stats.Messages))
	if out.HistoryWarning != "" {
		m.warn(out.HistoryWarning)
	}
}

func (m *menu) stats() {
	writeStatsTable(m.out, m.sess.Stats())
}

func (m *menu) diagnose() {
	d, err := ops.Diagnose(m.st, m.loc, m.sess)
	if err != nil {
		m.fail(err)
		return
	}

	fmt.Fprintf(m.out, "File:        %s (%d bytes)\n", d.SessionPath, d.Bytes)
	fmt.Fprintf(m.out, "Session id:  %s", d.SessionID)
	if !d.ValidUUID {
		fmt.Fprint(m.out, render.WarnStyle.Render(" (not a UUID)"))
	}
	fmt.Fprintln(m.out)
	fmt.Fprintf(m.out, "Lines:       %d (%d blank, %d messages, %d unknown kind)\n", d.Lines, d.Blank, d.Messages, d.UnknownKinds)
	fmt.Fprintf(m.out, "Backups:     %d in %s\n", d.Backups, d.BackupDir)
	if d.LatestBackup != "" {
		fmt.Fprintf(m.out, "Latest:      %s\n", d.LatestBackup)
	}
	if d.PendingChanges {
		m.warn("Unsaved selection changes.")
	}
	if len(d.Malformed) == 0 {
		m.success("No malformed lines.")
		return
	}
	m.warn(fmt.Sprintf("%d malformed lines:", len(d.Malformed)))
	for _, bad := range d.Malformed {
		fmt.Fprintf(m.out, "  line %d: %s\n    %s\n", bad.Index, bad.Error, bad.Raw)
	}
}

// confirmExit asks before discarding unsaved changes.
func (m *menu) confirmExit() bool {
	if m.sess.Output() == m.sess.Original {
		return true
	}
	return m.confirm("Discard unsaved selection changes?")
}
