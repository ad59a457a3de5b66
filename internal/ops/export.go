package ops

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/hpungsan/sessman/internal/errors"
	"github.com/hpungsan/sessman/internal/render"
	"github.com/hpungsan/sessman/internal/session"
	"github.com/hpungsan/sessman/internal/store"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	// Path is optional; default: <BaseDir>/exports/<id>-<timestamp>.<ext>.
	Path string

	// Format is "markdown" or "html". With Path set it must agree with the
	// extension; empty means the extension decides.
	Format string

	// BaseDir is the manager's base directory, used for the default path.
	BaseDir string

	Now time.Time
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path     string `json:"path"`
	Format   string `json:"format"`
	Messages int    `json:"messages"`
}

// Export writes the selected messages of s as a Markdown or HTML transcript.
// The session file itself is never touched.
func Export(st store.Storage, s *session.Session, input ExportInput) (*ExportOutput, error) {
	if s == nil {
		return nil, errors.NewInvalidRequest("session is required")
	}

	format := input.Format
	if format != "" && format != FormatMarkdown && format != FormatHTML {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown format %q (want markdown or html)", format))
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	path := input.Path
	if path == "" {
		if input.BaseDir == "" {
			return nil, errors.NewInvalidRequest("path is required")
		}
		if format == "" {
			format = FormatMarkdown
		}
		path = DefaultExportPath(input.BaseDir, s.ID, format, now)
		if err := st.MkdirAll(filepath.Dir(path)); err != nil {
			return nil, errors.NewPersistence(errors.StageWrite, filepath.Dir(path), err)
		}
	}

	pathFormat, err := ValidateExportPath(path)
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = pathFormat
	}
	if format != pathFormat {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("format %s does not match extension %s", format, filepath.Ext(path)))
	}

	body := render.Transcript(s)
	if format == FormatHTML {
		body, err = render.HTML("Session "+s.ID, body)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	if err := st.WriteFile(path, body); err != nil {
		return nil, errors.NewPersistence(errors.StageWrite, path, err)
	}

	return &ExportOutput{
		Path:     path,
		Format:   format,
		Messages: len(s.SelectedMessageIndices()),
	}, nil
}
