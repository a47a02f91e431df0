package backup

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/photoxport/photoxport/internal/sqlitedb"
	"github.com/photoxport/photoxport/internal/utils"
)

// photosDBRelativePath is where iOS registers the Photos catalog inside
// the backup's logical file tree.
const photosDBRelativePath = "Media/PhotoData/Photos.sqlite"

// ManifestMissError indicates a logical path has no entry in Manifest.db.
// Asset rows hitting this during a model build are skipped, not fatal.
type ManifestMissError struct {
	RelativePath string
}

func (e *ManifestMissError) Error() string {
	return fmt.Sprintf("no file found in Manifest.db for path: %s", e.RelativePath)
}

// MissingFile marks the error as a benign miss for the photos reader
func (e *ManifestMissError) MissingFile() bool {
	return true
}

// ManifestDB resolves logical backup-relative paths to the 40-hex
// content-addressed files on disk via the Files table of Manifest.db.
type ManifestDB struct {
	db    *sqlitedb.DB
	paths *utils.BackupPaths
}

// OpenManifestDB opens the Manifest.db of the backup rooted at backupRoot
func OpenManifestDB(backupRoot string) (*ManifestDB, error) {
	paths := utils.NewBackupPaths(backupRoot)
	if _, err := os.Stat(paths.ManifestDB()); err != nil {
		return nil, fmt.Errorf("Manifest.db not found at %s: %w", paths.ManifestDB(), err)
	}

	db, err := sqlitedb.Open(paths.ManifestDB())
	if err != nil {
		return nil, fmt.Errorf("failed to open Manifest.db: %w", err)
	}

	return &ManifestDB{db: db, paths: paths}, nil
}

// Close closes the Manifest.db connection
func (m *ManifestDB) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// ResolveFileID returns the hashed fileID registered for the given
// logical relative path, or a ManifestMissError when absent.
func (m *ManifestDB) ResolveFileID(relativePath string) (string, error) {
	var fileID string
	err := m.db.QueryRow(
		"SELECT fileID FROM Files WHERE relativePath = ?", relativePath,
	).Scan(&fileID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", &ManifestMissError{RelativePath: relativePath}
	}
	if err != nil {
		return "", fmt.Errorf("failed to query Files table: %w", err)
	}
	return fileID, nil
}

// HashedPath converts a fileID to the content-addressed location on disk
func (m *ManifestDB) HashedPath(fileID string) string {
	return m.paths.HashedFile(fileID)
}

// PhotosDBPath locates the Photos catalog inside the backup and verifies
// the hashed file exists on disk.
func (m *ManifestDB) PhotosDBPath() (string, error) {
	fileID, err := m.ResolveFileID(photosDBRelativePath)
	if err != nil {
		var miss *ManifestMissError
		if errors.As(err, &miss) {
			return "", fmt.Errorf("Photos.sqlite not found in Manifest.db; the backup may be unsupported or corrupted")
		}
		return "", err
	}

	path := m.HashedPath(fileID)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("Photos.sqlite not found at computed path %s: %w", path, err)
	}
	return path, nil
}
