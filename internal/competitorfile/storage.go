package competitorfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/liuqy/experiment-management/internal"
)

// Storage keeps uploaded files on local disk under BaseDir. Paths handed
// back (and persisted) are relative to BaseDir so the upload directory can
// be relocated without rewriting rows.
type Storage struct {
	BaseDir string
}

func NewStorage(baseDir string) *Storage {
	return &Storage{BaseDir: baseDir}
}

// ownerDir isolates files per (batch, person) so equal filenames under
// different owners never collide on disk.
func ownerDir(batchID, personID int64) string {
	return filepath.Join("competitor_files", fmt.Sprintf("%d_%d", batchID, personID))
}

func (s *Storage) abs(relPath string) string {
	return filepath.Join(s.BaseDir, relPath)
}

// Save writes src to the owner directory, overwriting any existing file
// with the same name, and returns the relative path.
func (s *Storage) Save(batchID, personID int64, fileName string, src io.Reader) (string, error) {
	dir := ownerDir(batchID, personID)
	if err := os.MkdirAll(s.abs(dir), 0o755); err != nil {
		return "", internal.NewIOError("failed to create upload directory", err)
	}

	relPath := filepath.Join(dir, fileName)
	dst, err := os.Create(s.abs(relPath))
	if err != nil {
		return "", internal.NewIOError("failed to create file", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(s.abs(relPath))
		return "", internal.NewIOError("failed to write file", err)
	}
	return relPath, nil
}

// Rename moves relPath to newName inside the same directory and returns
// the new relative path. The destination must not already exist.
func (s *Storage) Rename(relPath, newName string) (string, error) {
	newRel := filepath.Join(filepath.Dir(relPath), newName)
	if _, err := os.Stat(s.abs(newRel)); err == nil {
		return "", internal.NewConflictError("A file with that name already exists", internal.ErrCodeDuplicateFileName)
	}
	if err := os.Rename(s.abs(relPath), s.abs(newRel)); err != nil {
		return "", internal.NewIOError("failed to rename file", err)
	}
	return newRel, nil
}

// Remove deletes the file. A missing file is not an error.
func (s *Storage) Remove(relPath string) error {
	if err := os.Remove(s.abs(relPath)); err != nil && !os.IsNotExist(err) {
		return internal.NewIOError("failed to remove file", err)
	}
	return nil
}

// Open returns a reader for the stored file.
func (s *Storage) Open(relPath string) (io.ReadCloser, error) {
	f, err := os.Open(s.abs(relPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, internal.ErrFileNotFound
		}
		return nil, internal.NewIOError("failed to open file", err)
	}
	return f, nil
}

// Size reports the stored file size in bytes, or 0 when the file is gone.
func (s *Storage) Size(relPath string) int64 {
	info, err := os.Stat(s.abs(relPath))
	if err != nil {
		return 0
	}
	return info.Size()
}
