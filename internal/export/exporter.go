package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"controle_vendas/internal/sales"

	"go.uber.org/zap"
)

// DefaultFileName is the name of the exported file.
const DefaultFileName = "vendas.csv"

// Ledger is the part of the sales service the exporter reads.
type Ledger interface {
	All() []sales.Sale
}

// FileWriter stores exported content and returns a reference to it.
type FileWriter interface {
	WriteFile(ctx context.Context, name string, data []byte) (string, error)
}

// Sharer offers a file to the platform share mechanism. The outcome of the
// share itself is not tracked.
type Sharer interface {
	Share(ctx context.Context, path, caption string) error
}

// Exporter writes the ledger as CSV and offers the file for sharing.
type Exporter struct {
	ledger   Ledger
	writer   FileWriter
	sharer   Sharer
	logger   *zap.Logger
	fileName string
	caption  string
}

// NewExporter creates a new Exporter. Empty fileName and caption fall back to
// DefaultFileName and sales.ShareCaption.
func NewExporter(ledger Ledger, writer FileWriter, sharer Sharer, logger *zap.Logger, fileName, caption string) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fileName == "" {
		fileName = DefaultFileName
	}
	if caption == "" {
		caption = sales.ShareCaption
	}
	return &Exporter{
		ledger:   ledger,
		writer:   writer,
		sharer:   sharer,
		logger:   logger,
		fileName: fileName,
		caption:  caption,
	}
}

// Render returns the CSV text for the current ledger.
func (e *Exporter) Render() (string, error) {
	return EncodeCSV(e.ledger.All())
}

// Export writes the CSV file and returns its path.
// Returns ErrNothingToExport for an empty ledger.
func (e *Exporter) Export(ctx context.Context) (string, error) {
	content, err := e.Render()
	if err != nil {
		return "", err
	}
	path, err := e.writer.WriteFile(ctx, e.fileName, []byte(content))
	if err != nil {
		e.logger.Error("failed to write export", zap.String("file_name", e.fileName), zap.Error(err))
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	e.logger.Info("sales exported", zap.String("path", path), zap.Int("bytes", len(content)))
	return path, nil
}

// Share hands an exported file to the sharer with the configured caption.
func (e *Exporter) Share(ctx context.Context, path string) error {
	if err := e.sharer.Share(ctx, path, e.caption); err != nil {
		e.logger.Warn("share failed", zap.String("path", path), zap.Error(err))
		return err
	}
	return nil
}

// DirWriter writes exports into a directory, replacing existing files.
type DirWriter struct {
	Dir string
}

func (d DirWriter) WriteFile(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory %s: %w", d.Dir, err)
	}
	path := filepath.Join(d.Dir, filepath.Base(name))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return path, nil
}

// LogSharer records the share handoff in the log. It stands in for a
// platform share sheet.
type LogSharer struct {
	Logger *zap.Logger
}

func (l LogSharer) Share(ctx context.Context, path, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("export shared", zap.String("path", path), zap.String("caption", caption))
	return nil
}
