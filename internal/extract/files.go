package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/photoxport/photoxport/internal/types"
)

// placementRegistry records the on-disk location of assets and burst
// folders materialised under non_exclusive_assets/ so that later
// collections can symlink to them instead of duplicating bytes. It is
// the only shared mutable state of an extraction run.
type placementRegistry struct {
	mu    sync.RWMutex
	paths map[string]string
}

func newPlacementRegistry() *placementRegistry {
	return &placementRegistry{paths: make(map[string]string)}
}

func (r *placementRegistry) lookup(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	path, ok := r.paths[key]
	return path, ok
}

func (r *placementRegistry) record(key, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths[key] = path
}

// ensureFolderExists is an idempotent mkdir-p
func ensureFolderExists(path string) (string, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return path, nil
}

// resolveFreeName returns name, or name with a _1, _2, ... suffix before
// the extension, such that the result does not yet exist in folder.
func resolveFreeName(folder, name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	candidate := name
	for counter := 1; ; counter++ {
		if _, err := os.Lstat(filepath.Join(folder, candidate)); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d%s", base, counter, ext)
	}
}

// copyFile copies srcPath into folder under destName (suffixed if taken)
// and restores the asset's modification time on the copy.
func copyFile(srcPath, folder, destName string, asset types.Asset) (string, error) {
	folder, err := ensureFolderExists(folder)
	if err != nil {
		return "", err
	}

	destPath := filepath.Join(folder, resolveFreeName(folder, destName))

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", srcPath, err)
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("failed to copy to %s: %w", destPath, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", destPath, err)
	}

	setFileTimes(destPath, asset.ModificationDate)
	return destPath, nil
}

// setFileTimes sets the file's atime/mtime from an ISO-8601 timestamp.
// Unparseable timestamps fall back to the Unix epoch.
func setFileTimes(path, modificationDate string) {
	t, err := time.Parse(time.RFC3339, modificationDate)
	if err != nil {
		t = time.Unix(0, 0)
	}
	os.Chtimes(path, t, t)
}

// moveFolder moves srcFolder under destParent, renaming with a numeric
// suffix when the name is taken.
func moveFolder(srcFolder, destParent string) (string, error) {
	destParent, err := ensureFolderExists(destParent)
	if err != nil {
		return "", err
	}

	destFolder := filepath.Join(destParent, resolveFreeName(destParent, filepath.Base(srcFolder)))
	if err := os.Rename(srcFolder, destFolder); err != nil {
		// Cross-device rename fails; fall back to copy and remove
		if _, cErr := copyTree(srcFolder, destFolder); cErr != nil {
			return "", fmt.Errorf("failed to move %s: %w", srcFolder, err)
		}
		if err := os.RemoveAll(srcFolder); err != nil {
			return "", fmt.Errorf("failed to remove %s after move: %w", srcFolder, err)
		}
	}
	return destFolder, nil
}

// copyFolder copies srcFolder under destParent, renaming with a numeric
// suffix when the name is taken.
func copyFolder(srcFolder, destParent string) (string, error) {
	destParent, err := ensureFolderExists(destParent)
	if err != nil {
		return "", err
	}

	destFolder := filepath.Join(destParent, resolveFreeName(destParent, filepath.Base(srcFolder)))
	return copyTree(srcFolder, destFolder)
}

// copyTree recursively copies a directory
func copyTree(src, dst string) (string, error) {
	if _, err := ensureFolderExists(dst); err != nil {
		return "", err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", src, err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if _, err := copyTree(srcPath, dstPath); err != nil {
				return "", err
			}
			continue
		}

		in, err := os.Open(srcPath)
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", srcPath, err)
		}
		out, err := os.Create(dstPath)
		if err != nil {
			in.Close()
			return "", fmt.Errorf("failed to create %s: %w", dstPath, err)
		}
		_, err = io.Copy(out, in)
		in.Close()
		if cErr := out.Close(); err == nil {
			err = cErr
		}
		if err != nil {
			return "", fmt.Errorf("failed to copy %s: %w", srcPath, err)
		}
	}

	return dst, nil
}

// placeSymlink creates a symlink to srcPath inside destFolder
func placeSymlink(srcPath, destFolder string) error {
	destFolder, err := ensureFolderExists(destFolder)
	if err != nil {
		return err
	}
	destPath := filepath.Join(destFolder, resolveFreeName(destFolder, filepath.Base(srcPath)))
	if err := os.Symlink(srcPath, destPath); err != nil {
		return fmt.Errorf("failed to create symlink %s: %w", destPath, err)
	}
	return nil
}

// placeFolderSymlink creates a symlink to srcFolder inside destFolder
func placeFolderSymlink(srcFolder, destFolder string) error {
	return placeSymlink(srcFolder, destFolder)
}

// SymlinksSupported probes whether the process can create symbolic links
// on this platform (some platforms require elevated privileges). Callers
// pass the result into Options.OSSupportsSymlinks.
func SymlinksSupported() bool {
	dir, err := os.MkdirTemp("", "photoxport-symlink-probe-")
	if err != nil {
		return false
	}
	defer os.RemoveAll(dir)

	target := filepath.Join(dir, "target")
	if err := os.WriteFile(target, []byte("probe"), 0644); err != nil {
		return false
	}
	return os.Symlink(target, filepath.Join(dir, "link")) == nil
}
