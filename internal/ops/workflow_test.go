package ops

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/sessman/internal/db"
	"github.com/hpungsan/sessman/internal/errors"
	"github.com/hpungsan/sessman/internal/store"
)

// TestFullWorkflow exercises the session lifecycle:
// load → select → save → list backups → restore → history
func TestFullWorkflow(t *testing.T) {
	loc := setupSession(t, scenarioContent)
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	defer database.Close()

	st := store.OS()

	// 1. Load
	s, err := Load(st, loc)
	require.NoError(t, err)
	require.Equal(t, []int{0, 3}, s.MessageIndices())

	// 2. Keep only the assistant reply and drop the raw line
	s.SetMessages([]int{3})
	s.Lines[2].Selected = false
	stats := s.Stats()
	require.Equal(t, 4, stats.Total)
	require.Equal(t, 2, stats.Selected)

	// 3. Save
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	saveOut, err := Save(st, database, s, SaveInput{Confirmed: true, Now: base})
	require.NoError(t, err)
	require.Equal(t, 2, saveOut.Written)
	require.Equal(t, 2, saveOut.Removed)
	require.Equal(t, "\n"+`{"message":{"role":"assistant","content":[{"type":"text","text":"hello"}]}}`, readFile(t, loc.SessionPath))

	// 4. Reload reflects the saved file
	s, err = Load(st, loc)
	require.NoError(t, err)
	require.Len(t, s.Lines, 2)

	// 5. Backups list the pre-save content
	list, err := ListBackups(st, loc)
	require.NoError(t, err)
	require.Len(t, list.Backups, 1)
	require.Equal(t, saveOut.BackupID, list.Backups[0].ID)

	// 6. Restore brings back all four lines, fully selected
	restoreOut, err := Restore(st, database, loc, RestoreInput{BackupID: saveOut.BackupID})
	require.NoError(t, err)
	require.Equal(t, scenarioContent, readFile(t, loc.SessionPath))
	require.Equal(t, 4, restoreOut.Stats.Total)
	require.Equal(t, 4, restoreOut.Stats.Selected)

	// 7. History has both events, newest first
	histOut, err := History(database, HistoryInput{SessionID: testSessionID})
	require.NoError(t, err)
	require.Len(t, histOut.Events, 2)
	require.Equal(t, db.ActionRestore, histOut.Events[0].Action)
	require.Equal(t, db.ActionSave, histOut.Events[1].Action)
}

func TestHistory_Validation(t *testing.T) {
	_, err := History(nil, HistoryInput{SessionID: "abc"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	defer database.Close()

	_, err = History(database, HistoryInput{SessionID: "../x"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	out, err := History(database, HistoryInput{SessionID: "abc", Limit: 10_000})
	require.NoError(t, err)
	require.NotNil(t, out.Events)
	require.Empty(t, out.Events)
}
