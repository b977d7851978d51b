package artifact

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Store is the filesystem layout for everything the pipeline persists
// outside the database: raw audio uploads and generated PDF artifacts.
type Store struct {
	audioDir  string
	reportDir string
}

func NewStore(baseDir string) (*Store, error) {
	s := &Store{
		audioDir:  filepath.Join(baseDir, "audio"),
		reportDir: filepath.Join(baseDir, "reports"),
	}
	for _, dir := range []string{s.audioDir, s.reportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
		}
	}
	return s, nil
}

// SaveAudio writes an uploaded audio stream under a timestamp-prefixed name
// derived from the original filename.
func (s *Store) SaveAudio(src io.Reader, originalName string) (string, error) {
	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(originalName))
	dest := filepath.Join(s.audioDir, name)

	if err := s.writeAtomic(dest, src); err != nil {
		return "", fmt.Errorf("failed to store audio: %w", err)
	}
	return dest, nil
}

// PDFPath returns the deterministic artifact path for a report. The same
// report always maps to the same path, which is what makes regeneration
// idempotent.
func (s *Store) PDFPath(reportID uuid.UUID) string {
	return filepath.Join(s.reportDir, fmt.Sprintf("report_%s.pdf", reportID))
}

// PublishPDF atomically replaces the artifact at the report's path with the
// given content. Readers either see the previous complete file or the new
// one, never a partial write.
func (s *Store) PublishPDF(reportID uuid.UUID, content io.Reader) (string, error) {
	dest := s.PDFPath(reportID)
	if err := s.writeAtomic(dest, content); err != nil {
		return "", fmt.Errorf("failed to publish pdf: %w", err)
	}
	return dest, nil
}

// VerifyPDF reports whether the artifact at path exists, is readable and is
// non-empty.
func (s *Store) VerifyPDF(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// Open opens a stored artifact for streaming.
func (s *Store) Open(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open artifact: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("failed to stat artifact: %w", err)
	}
	return f, info.Size(), nil
}

// writeAtomic writes to a temp file in the destination directory, then
// renames into place.
func (s *Store) writeAtomic(dest string, src io.Reader) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to publish file: %w", err)
	}
	return nil
}
