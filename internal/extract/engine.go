// Package extract materialises the collections of a BackupModel onto the
// filesystem, deduplicating assets, segregating burst groups, and using
// symbolic links (when supported and requested) to keep one physical
// copy per asset even when it belongs to multiple collections.
package extract

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/photoxport/photoxport/internal/convert"
	"github.com/photoxport/photoxport/internal/logger"
	"github.com/photoxport/photoxport/internal/types"
)

const (
	nonExclusiveDirName = "non_exclusive_assets"
	stagingDirName      = "staging"
)

// Options configures a single extraction run
type Options struct {
	OutputRoot         string
	OSSupportsSymlinks bool
	UserSetSymlinks    bool
	ConvertMap         map[string]string
	Progress           *Progress
}

// Summary reports what an extraction run did
type Summary struct {
	AssetUnits         int `json:"asset_units"`
	BurstUnits         int `json:"burst_units"`
	FilesPlaced        int `json:"files_placed"`
	FoldersPlaced      int `json:"folders_placed"`
	SymlinksPlaced     int `json:"symlinks_placed"`
	Converted          int `json:"converted"`
	ConversionFailures int `json:"conversion_failures"`
}

// Engine performs extraction runs. Safe to reuse across runs; each run
// gets its own placement registry.
type Engine struct {
	converter *convert.Engine
	log       *logger.Logger
}

// NewEngine returns an extraction engine using the given converter
func NewEngine(converter *convert.Engine, log *logger.Logger) *Engine {
	return &Engine{converter: converter, log: log}
}

// Run extracts the model's assets into opts.OutputRoot. Cancellation is
// cooperative: the context is checked between units and already-written
// files stay in place. A per-asset conversion failure is logged and the
// original file placed; a copy failure aborts the run.
func (e *Engine) Run(ctx context.Context, model *types.BackupModel, pol Policy, opts Options) (*Summary, error) {
	run := &runState{
		engine:      e,
		pol:         pol,
		opts:        opts,
		registry:    newPlacementRegistry(),
		titleByUUID: AlbumTitleMap(model.Albums),
		useSymlinks: opts.OSSupportsSymlinks && opts.UserSetSymlinks,
	}

	unique := Deduplicate(model.Assets)
	bursts, singles := SeparateBurstFrames(unique)

	run.summary.AssetUnits = len(singles)
	run.summary.BurstUnits = len(bursts)
	run.totalUnits = len(singles) + len(bursts)

	for _, asset := range singles {
		if err := ctx.Err(); err != nil {
			return &run.summary, err
		}
		if err := run.placeAsset(asset); err != nil {
			return &run.summary, err
		}
	}

	stagingRoot := filepath.Join(opts.OutputRoot, stagingDirName)
	for _, group := range bursts {
		if err := ctx.Err(); err != nil {
			return &run.summary, err
		}
		if err := run.placeBurst(group, stagingRoot); err != nil {
			return &run.summary, err
		}
	}

	// Remove the staging root when nothing is left behind in it
	if entries, err := os.ReadDir(stagingRoot); err == nil && len(entries) == 0 {
		os.Remove(stagingRoot)
	}

	if opts.Progress != nil {
		opts.Progress.SetPercent(100)
	}

	return &run.summary, nil
}

type runState struct {
	engine      *Engine
	pol         Policy
	opts        Options
	registry    *placementRegistry
	summary     Summary
	titleByUUID map[string]string
	useSymlinks bool

	unitsDone  int
	totalUnits int
}

func (r *runState) tick() {
	r.unitsDone++
	if r.opts.Progress != nil && r.totalUnits > 0 {
		r.opts.Progress.SetPercent(r.unitsDone * 100 / r.totalUnits)
	}
}

func (r *runState) collectionFolder(title string) string {
	return filepath.Join(r.opts.OutputRoot, title)
}

func (r *runState) nonExclusiveFolder() string {
	return filepath.Join(r.opts.OutputRoot, nonExclusiveDirName)
}

// placeAsset applies the single-file placement policy to one asset
func (r *runState) placeAsset(asset types.Asset) error {
	collections := ActiveCollections(asset, r.pol, r.titleByUUID)

	// Already materialised under non_exclusive_assets by an earlier
	// placement; only links are needed.
	if r.useSymlinks {
		if srcPath, ok := r.registry.lookup(asset.AssetUUID); ok {
			for _, collection := range collections {
				if err := placeSymlink(srcPath, r.collectionFolder(collection.Title)); err != nil {
					return err
				}
				r.summary.SymlinksPlaced++
			}
			r.tick()
			return nil
		}
	}

	resolved := r.maybeConvert(asset)
	srcPath := resolved.BackupRelativePath
	name := destName(asset, resolved)

	switch {
	case len(collections) == 0 || len(collections) > 1:
		if r.useSymlinks {
			destPath, err := copyFile(srcPath, r.nonExclusiveFolder(), name, asset)
			if err != nil {
				return err
			}
			r.summary.FilesPlaced++
			r.registry.record(asset.AssetUUID, destPath)

			for _, collection := range collections {
				if err := placeSymlink(destPath, r.collectionFolder(collection.Title)); err != nil {
					return err
				}
				r.summary.SymlinksPlaced++
			}
		} else if len(collections) == 0 {
			if _, err := copyFile(srcPath, r.nonExclusiveFolder(), name, asset); err != nil {
				return err
			}
			r.summary.FilesPlaced++
		} else {
			for _, collection := range collections {
				if _, err := copyFile(srcPath, r.collectionFolder(collection.Title), name, asset); err != nil {
					return err
				}
				r.summary.FilesPlaced++
			}
		}
	default: // exactly one collection
		if _, err := copyFile(srcPath, r.collectionFolder(collections[0].Title), name, asset); err != nil {
			return err
		}
		r.summary.FilesPlaced++
	}

	r.tick()
	return nil
}

// placeBurst stages a burst group's frames into one folder and applies
// the placement policy at folder granularity.
func (r *runState) placeBurst(group BurstGroup, stagingRoot string) error {
	keyFrame := group.Frames[0]
	for _, frame := range group.Frames {
		if frame.IsPrimaryBurstFrame {
			keyFrame = frame
			break
		}
	}
	collections := ActiveCollections(keyFrame, r.pol, r.titleByUUID)

	stagingFolder, err := ensureFolderExists(filepath.Join(stagingRoot, group.UUID))
	if err != nil {
		return err
	}
	for _, frame := range group.Frames {
		resolved := r.maybeConvert(frame)
		if _, err := copyFile(resolved.BackupRelativePath, stagingFolder, destName(frame, resolved), frame); err != nil {
			return err
		}
	}

	// Burst already materialised elsewhere; link and drop the staging copy
	if r.useSymlinks {
		if srcFolder, ok := r.registry.lookup(group.UUID); ok {
			if err := os.RemoveAll(stagingFolder); err != nil {
				return fmt.Errorf("failed to discard staging folder %s: %w", stagingFolder, err)
			}
			for _, collection := range collections {
				if err := placeFolderSymlink(srcFolder, r.collectionFolder(collection.Title)); err != nil {
					return err
				}
				r.summary.SymlinksPlaced++
			}
			r.tick()
			return nil
		}
	}

	switch {
	case len(collections) == 0 || len(collections) > 1:
		if r.useSymlinks {
			destFolder, err := moveFolder(stagingFolder, r.nonExclusiveFolder())
			if err != nil {
				return err
			}
			r.summary.FoldersPlaced++
			r.registry.record(group.UUID, destFolder)

			for _, collection := range collections {
				if err := placeFolderSymlink(destFolder, r.collectionFolder(collection.Title)); err != nil {
					return err
				}
				r.summary.SymlinksPlaced++
			}
		} else if len(collections) == 0 {
			if _, err := moveFolder(stagingFolder, r.nonExclusiveFolder()); err != nil {
				return err
			}
			r.summary.FoldersPlaced++
		} else {
			movedPath, err := moveFolder(stagingFolder, r.collectionFolder(collections[0].Title))
			if err != nil {
				return err
			}
			r.summary.FoldersPlaced++
			for _, collection := range collections[1:] {
				if _, err := copyFolder(movedPath, r.collectionFolder(collection.Title)); err != nil {
					return err
				}
				r.summary.FoldersPlaced++
			}
		}
	default: // exactly one collection
		if _, err := moveFolder(stagingFolder, r.collectionFolder(collections[0].Title)); err != nil {
			return err
		}
		r.summary.FoldersPlaced++
	}

	r.tick()
	return nil
}

// maybeConvert runs the conversion engine when a rule matches the
// asset's extension. Failures are logged and the original asset is used.
func (r *runState) maybeConvert(asset types.Asset) types.Asset {
	if len(r.opts.ConvertMap) == 0 {
		return asset
	}
	if _, ok := r.opts.ConvertMap[strings.ToUpper(asset.FileExtension)]; !ok {
		return asset
	}

	result := r.engine.converter.Convert(types.AssetToConvert{
		Asset:      asset,
		ConvertMap: r.opts.ConvertMap,
	})
	if !result.Success {
		r.summary.ConversionFailures++
		r.engine.log.Warnf("conversion failed for %s: %s", asset.OriginalFilename, result.Error)
		return asset
	}

	r.summary.Converted++
	return *result.ConvertedAsset
}

// destName picks the filename for a placed asset: the original stem plus
// either the converted rendition's extension or the original extension
// lowercased.
func destName(original, resolved types.Asset) string {
	stem := strings.TrimSuffix(original.OriginalFilename, path.Ext(original.OriginalFilename))
	if resolved.BackupRelativePath != original.BackupRelativePath {
		return stem + filepath.Ext(resolved.BackupRelativePath)
	}
	if original.FileExtension == "" {
		return stem
	}
	return stem + "." + strings.ToLower(original.FileExtension)
}
