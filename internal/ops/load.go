package ops

import (
	"github.com/hpungsan/sessman/internal/errors"
	"github.com/hpungsan/sessman/internal/session"
	"github.com/hpungsan/sessman/internal/store"
)

// Load reads the session file at loc and parses it into a fresh Session
// with every line selected.
func Load(st store.Storage, loc *Location) (*session.Session, error) {
	if loc == nil {
		return nil, errors.NewInvalidRequest("location is required")
	}
	if !st.Exists(loc.SessionPath) {
		return nil, errors.NewSessionNotFound(loc.SessionPath)
	}

	content, err := st.ReadFile(loc.SessionPath)
	if err != nil {
		return nil, errors.NewPersistence(errors.StageRead, loc.SessionPath, err)
	}

	return session.New(loc.SessionID, loc.SessionPath, content), nil
}
