// Package backup locates and validates an iOS device backup and builds
// the consolidated BackupModel from its plists and databases.
package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/photoxport/photoxport/internal/logger"
	"github.com/photoxport/photoxport/internal/photos"
	"github.com/photoxport/photoxport/internal/plist"
	"github.com/photoxport/photoxport/internal/sqlitedb"
	"github.com/photoxport/photoxport/internal/types"
	"github.com/photoxport/photoxport/internal/utils"
)

// ErrEncrypted indicates the backup is encrypted and cannot be read
var ErrEncrypted = errors.New("backup is encrypted; only unencrypted backups are supported")

// BuildModel assembles the BackupModel for the backup rooted at
// backupRoot. Every failure is reported through the result; no error
// escapes to the caller.
func BuildModel(backupRoot string, log *logger.Logger) types.BackupModelResult {
	model, err := buildModel(backupRoot, log)
	if err != nil {
		return types.BackupModelResult{Success: false, Error: err.Error()}
	}
	return types.BackupModelResult{Success: true, BackupModel: model}
}

func buildModel(backupRoot string, log *logger.Logger) (*types.BackupModel, error) {
	if err := validateBackupDirectory(backupRoot); err != nil {
		return nil, fmt.Errorf("invalid backup directory: %w", err)
	}
	paths := utils.NewBackupPaths(backupRoot)

	info, err := plist.ReadInfo(paths.InfoPlist())
	if err != nil {
		return nil, fmt.Errorf("failed loading device info: %w", err)
	}

	manifest, err := plist.ReadManifest(paths.ManifestPlist())
	if err != nil {
		return nil, fmt.Errorf("failed loading backup manifest: %w", err)
	}
	if manifest.IsEncrypted {
		return nil, ErrEncrypted
	}

	device := types.SourceDevice{
		Name:       info.DeviceName,
		Model:      info.ProductType,
		IOSVersion: info.ProductVersion,
	}

	// Locate the Photos catalog in a scoped manifest session, closed
	// before the asset-resolution phase opens its own.
	photosPath, err := locatePhotosDB(backupRoot)
	if err != nil {
		return nil, err
	}

	photosDB, err := sqlitedb.Open(photosPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Photos.sqlite: %w", err)
	}
	defer photosDB.Close()

	manifestDB, err := OpenManifestDB(backupRoot)
	if err != nil {
		return nil, err
	}
	defer manifestDB.Close()

	albums, err := photos.ReadAlbums(photosDB)
	if err != nil {
		return nil, err
	}

	assets, skipped, err := photos.ReadAssets(photosDB, manifestDB, log)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		log.Infof("%d asset rows skipped (unresolvable in Manifest.db)", skipped)
	}

	return &types.BackupModel{
		BackupMetadata: types.BackupMetadata{
			BackupUUID:   info.GUID,
			BackupDate:   info.BackupDateISO(),
			IsEncrypted:  false,
			SourceDevice: device,
		},
		Assets: assets,
		Albums: albums,
	}, nil
}

func locatePhotosDB(backupRoot string) (string, error) {
	manifestDB, err := OpenManifestDB(backupRoot)
	if err != nil {
		return "", err
	}
	defer manifestDB.Close()
	return manifestDB.PhotosDBPath()
}

// validateBackupDirectory checks that the directory looks like an
// unextracted iOS backup
func validateBackupDirectory(backupRoot string) error {
	stat, err := os.Stat(backupRoot)
	if err != nil {
		return fmt.Errorf("backup path does not exist: %w", err)
	}
	if !stat.IsDir() {
		return fmt.Errorf("backup path is not a directory")
	}
	if _, err := os.Stat(filepath.Join(backupRoot, "Info.plist")); err != nil {
		return fmt.Errorf("Info.plist not found - this doesn't appear to be an iOS device backup")
	}
	if _, err := os.Stat(filepath.Join(backupRoot, "Manifest.plist")); err != nil {
		return fmt.Errorf("Manifest.plist not found - this doesn't appear to be an iOS device backup")
	}
	return nil
}
