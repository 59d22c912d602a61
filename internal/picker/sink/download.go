package sink

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Downloader writes results as plain UTF-8 text files into a directory.
type Downloader struct {
	dir    string
	logger *zap.Logger
}

// NewDownloader creates a Downloader rooted at dir.
//
// Precondition: logger must be non-nil.
func NewDownloader(dir string, logger *zap.Logger) *Downloader {
	return &Downloader{dir: dir, logger: logger}
}

// Dir returns the export directory.
func (d *Downloader) Dir() string { return d.dir }

// Deliver writes <tool>-result.txt for r's current result.
//
// Postcondition: Returns the written path and true on success. Returns false
// without touching the filesystem when r has no result; write failures are
// logged and also return false.
func (d *Downloader) Deliver(tool string, r Resulter) (string, bool) {
	value, ok := r.ResultText()
	if !ok {
		return "", false
	}
	tmpl, ok := TemplateFor(tool)
	if !ok {
		d.logger.Warn("download skipped: unknown tool", zap.String("tool", tool))
		return "", false
	}
	path, err := d.WriteFile(FileName(tool), func(w io.Writer) error {
		_, err := io.WriteString(w, tmpl.DownloadContent(value))
		return err
	})
	if err != nil {
		d.logger.Warn("download failed", zap.String("tool", tool), zap.Error(err))
		return "", false
	}
	d.logger.Info("result downloaded", zap.String("tool", tool), zap.String("path", path))
	return path, true
}

// WriteFile creates name inside the export directory and fills it with render.
//
// Precondition: name must be a bare file name.
// Postcondition: Returns the full path on success; on error no partial file is left.
func (d *Downloader) WriteFile(name string, render func(io.Writer) error) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid export file name %q", name)
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}
	path := filepath.Join(d.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", name, err)
	}
	if err := render(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", errors.Join(fmt.Errorf("closing %s", name), err)
	}
	return path, nil
}
