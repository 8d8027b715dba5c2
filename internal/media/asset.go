// Package media stages user uploads locally and waits for the provider to
// finish processing them.
package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType is returned for uploads outside the accepted kinds.
var ErrUnsupportedType = errors.New("unsupported media type")

var extMIME = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Extensions lists the accepted upload extensions, for form hints.
var Extensions = []string{"mp4", "mov", "jpg", "jpeg", "png"}

// Asset is a locally staged copy of an upload.
type Asset struct {
	Name     string
	MIMEType string
	Path     string
}

// IsVideo reports whether the asset must be polled before use.
func (a *Asset) IsVideo() bool {
	return strings.Contains(a.MIMEType, "video")
}

// Cleanup removes the staged file. It is safe to call more than once.
func (a *Asset) Cleanup() error {
	if a == nil || a.Path == "" {
		return nil
	}
	err := os.Remove(a.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove staged media %s: %w", a.Path, err)
	}
	return nil
}

// DetectMIME returns the MIME type for an accepted file name.
func DetectMIME(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	mime, ok := extMIME[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q (accepted: %s)", ErrUnsupportedType, name, strings.Join(Extensions, ", "))
	}
	return mime, nil
}

// Stage copies r into a temp file that keeps the original extension. An
// empty mimeType is derived from the name.
func Stage(name, mimeType string, r io.Reader) (*Asset, error) {
	detected, err := DetectMIME(name)
	if err != nil {
		return nil, err
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = detected
	}

	f, err := os.CreateTemp("", "socialai-*"+strings.ToLower(filepath.Ext(name)))
	if err != nil {
		return nil, fmt.Errorf("create staging file: %w", err)
	}
	asset := &Asset{Name: filepath.Base(name), MIMEType: mimeType, Path: f.Name()}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		asset.Cleanup()
		return nil, fmt.Errorf("stage %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		asset.Cleanup()
		return nil, fmt.Errorf("stage %s: %w", name, err)
	}
	return asset, nil
}

// StageFile stages a file already on disk, as the CLI does for --media.
func StageFile(path string) (*Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open media: %w", err)
	}
	defer f.Close()
	return Stage(filepath.Base(path), "", f)
}
