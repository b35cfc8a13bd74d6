package report

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/pable/wintracker/internal/aggregator"
	"github.com/pable/wintracker/internal/model"
	"github.com/pable/wintracker/internal/render"
)

var (
	// ErrEmptyInput means the user has no matches at all.
	ErrEmptyInput = errors.New("no matches found")
	// ErrInsufficientData means neither column has enough ranked opponents.
	ErrInsufficientData = errors.New("insufficient data for report: need at least 3 opponents with 3+ matches")
)

// Artifact is one rendered report.
type Artifact struct {
	ID        string           `json:"id"`
	UserName  string           `json:"user_name"`
	Data      model.ReportData `json:"data"`
	PNG       []byte           `json:"-"`
	CreatedAt time.Time        `json:"created_at"`
}

// Filename is the download name, dated by the artifact's UTC creation day.
func (a *Artifact) Filename() string {
	return fmt.Sprintf("wintracker-report-%s.png", a.CreatedAt.UTC().Format("2006-01-02"))
}

// DataURI returns the PNG as a data: URI.
func (a *Artifact) DataURI() string {
	return render.DataURI(a.PNG)
}

// Build ranks matches into report data, refusing the same inputs Generate
// refuses.
func Build(matches []model.Match, userName string) (model.ReportData, error) {
	if len(matches) == 0 {
		return model.ReportData{}, ErrEmptyInput
	}
	data := aggregator.BuildReport(matches, userName)
	if !data.HasEnoughDataForWins && !data.HasEnoughDataForLosses {
		return model.ReportData{}, ErrInsufficientData
	}
	return data, nil
}

// Generator turns a user's matches into a report image.
type Generator struct {
	// Template is the background image. Nil selects the embedded default.
	Template image.Image
	// Now stamps the header date and CreatedAt. Nil means time.Now.
	Now func() time.Time
}

// Generate aggregates matches and renders them. It refuses with
// ErrEmptyInput or ErrInsufficientData before any drawing happens.
func (g *Generator) Generate(matches []model.Match, userName string) (*Artifact, error) {
	data, err := Build(matches, userName)
	if err != nil {
		return nil, err
	}

	tmpl := g.Template
	if tmpl == nil {
		if tmpl, err = render.DefaultTemplate(); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	if g.Now != nil {
		now = g.Now()
	}

	png, err := render.Render(tmpl, data, now)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	return &Artifact{
		ID:        uuid.NewString(),
		UserName:  userName,
		Data:      data,
		PNG:       png,
		CreatedAt: now,
	}, nil
}

var viewerTmpl = template.Must(template.New("viewer").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>WinTracker Report</title>
<style>
body { margin: 0; min-height: 100vh; display: flex; align-items: center; justify-content: center; background: #1a1b1e; }
img { max-width: 100%; height: auto; box-shadow: 0 4px 24px rgba(0, 0, 0, 0.5); }
</style>
</head>
<body>
<img src="{{.}}" alt="WinTracker Report">
</body>
</html>
`))

// ViewerHTML returns a standalone page that displays the image at dataURI.
func ViewerHTML(dataURI string) ([]byte, error) {
	var buf bytes.Buffer
	// template.URL keeps the data: scheme from being filtered.
	if err := viewerTmpl.Execute(&buf, template.URL(dataURI)); err != nil {
		return nil, fmt.Errorf("render viewer: %w", err)
	}
	return buf.Bytes(), nil
}
