package main

import (
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/hpungsan/sessman/internal/db"
	"github.com/hpungsan/sessman/internal/ops"
	"github.com/hpungsan/sessman/internal/render"
	"github.com/hpungsan/sessman/internal/session"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func writeStatsTable(w io.Writer, stats session.Statistics) {
	table := newTable(w, "KIND", "LINES")
	kinds := make([]string, 0, len(stats.ByKind))
	for k := range stats.ByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		table.Append([]string{k, strconv.Itoa(stats.ByKind[k])})
	}
	table.SetFooter([]string{"total", strconv.Itoa(stats.Total)})
	table.Render()

	summary := newTable(w, "MESSAGES", "SELECTED", "REMOVED ON SAVE")
	summary.Append([]string{
		strconv.Itoa(stats.Messages),
		strconv.Itoa(stats.Selected),
		strconv.Itoa(stats.Removed()),
	})
	summary.Render()
}

func writeBackupsTable(w io.Writer, backups []ops.Backup) {
	table := newTable(w, "#", "BACKUP", "CREATED")
	for i, b := range backups {
		created := "-"
		if b.CreatedAt > 0 {
			created = time.UnixMilli(b.CreatedAt).Local().Format("2006-01-02 15:04:05")
		}
		table.Append([]string{strconv.Itoa(i + 1), b.ID, created})
	}
	table.Render()
}

func writeHistoryTable(w io.Writer, events []db.Event) {
	table := newTable(w, "WHEN", "ACTION", "BACKUP", "WRITTEN", "REMOVED")
	for _, e := range events {
		table.Append([]string{
			time.Unix(e.CreatedAt, 0).Local().Format("2006-01-02 15:04:05"),
			e.Action,
			e.BackupID,
			strconv.Itoa(e.LinesWritten),
			strconv.Itoa(e.LinesRemoved),
		})
	}
	table.Render()
}

// writeLinesTable lists lines with their selection marker and a one-line
// preview cut to width runes.
func writeLinesTable(w io.Writer, lines []session.Line, width int) {
	table := newTable(w, "", "LINE", "KIND", "PREVIEW")
	for _, l := range lines {
		kind, preview := l.Kind, l.PreviewText()
		switch {
		case l.Blank():
			kind, preview = "-", "(blank)"
		case l.ParseErr != "":
			kind, preview = "-", l.Raw
		case preview == "":
			preview = l.Raw
		}
		table.Append([]string{
			render.Marker(l.Selected),
			strconv.Itoa(l.Index),
			kind,
			render.Truncate(preview, width),
		})
	}
	table.Render()
}
