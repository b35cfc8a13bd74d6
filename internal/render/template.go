package render

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"sync"

	"github.com/disintegration/imaging"
)

// ErrTemplateLoad marks a template asset that could not be read or decoded.
var ErrTemplateLoad = errors.New("failed to load report template image")

//go:embed assets/report_template.png
var templatePNG []byte

var defaultTemplate = sync.OnceValues(func() (image.Image, error) {
	return LoadTemplate(bytes.NewReader(templatePNG))
})

// DefaultTemplate returns the bundled template, decoded once. Callers must
// not modify the returned image.
func DefaultTemplate() (image.Image, error) {
	return defaultTemplate()
}

// LoadTemplate decodes a template image.
func LoadTemplate(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateLoad, err)
	}
	return img, nil
}

// LoadTemplateFile decodes the template at path. An empty path selects the
// bundled template.
func LoadTemplateFile(path string) (image.Image, error) {
	if path == "" {
		return DefaultTemplate()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateLoad, err)
	}
	defer f.Close()
	return LoadTemplate(f)
}
