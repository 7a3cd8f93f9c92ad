// Package fs provides file-based archiving of price reports.
package fs

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/pricewatch"
)

// Ensure ReportWriter implements pricewatch.Notifier at compile time.
var _ pricewatch.Notifier = (*ReportWriter)(nil)

// ReportWriter archives each report as a markdown file named after the
// UTC date of delivery. A second report on the same day replaces the first.
type ReportWriter struct {
	dir string

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewReportWriter creates a ReportWriter that writes into dir.
func NewReportWriter(dir string) *ReportWriter {
	return &ReportWriter{dir: dir, Now: time.Now}
}

// Path returns the file a report delivered at t is written to.
func (w *ReportWriter) Path(t time.Time) string {
	return filepath.Join(w.dir, "price-report-"+t.UTC().Format("2006-01-02")+".md")
}

// Notify writes text to a temporary file and renames it into place.
func (w *ReportWriter) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return pricewatch.Errorf(pricewatch.EINTERNAL, "create report directory: %v", err)
	}

	tmp, err := os.CreateTemp(w.dir, ".price-report-*.tmp")
	if err != nil {
		return pricewatch.Errorf(pricewatch.EINTERNAL, "create report file: %v", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return pricewatch.Errorf(pricewatch.EINTERNAL, "write report: %v", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return pricewatch.Errorf(pricewatch.EINTERNAL, "write report: %v", err)
	}

	if err := os.Rename(tmpName, w.Path(w.Now())); err != nil {
		_ = os.Remove(tmpName)
		return pricewatch.Errorf(pricewatch.EINTERNAL, "save report: %v", err)
	}
	return nil
}
