// Package convert transcodes proprietary media formats (HEIC/HEIF
// stills, MOV clips) into standard formats ahead of placement.
package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/photoxport/photoxport/internal/logger"
	"github.com/photoxport/photoxport/internal/types"
)

// Transcoder produces a converted rendition of the file at sourcePath in
// the target format, written as <stem>.<target lowercase> next to the
// source. It returns the output path.
type Transcoder interface {
	Transcode(sourcePath, targetExt string) (string, error)
}

// Engine routes conversion requests to the image or video transcoder
// based on the asset's extension.
type Engine struct {
	Images Transcoder
	Videos Transcoder
	Log    *logger.Logger
}

// NewEngine returns an Engine with the default transcoders
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{
		Images: NewImageTranscoder(),
		Videos: NewFFmpegTranscoder(),
		Log:    log,
	}
}

// Convert applies the conversion rules to the asset. On success the
// returned asset is a copy of the input whose BackupRelativePath points
// at the converted file inside a fresh per-conversion temp directory;
// every other field, including FileExtension, is preserved verbatim.
func (e *Engine) Convert(req types.AssetToConvert) types.ConvertedAsset {
	ext := strings.ToUpper(req.Asset.FileExtension)

	target, ok := req.ConvertMap[ext]
	if !ok {
		return types.ConvertedAsset{
			Success: false,
			Error:   fmt.Sprintf("no conversion rule for extension: %s", ext),
		}
	}

	var transcoder Transcoder
	switch ext {
	case "HEIC", "HEIF":
		transcoder = e.Images
	case "MOV":
		transcoder = e.Videos
	default:
		return types.ConvertedAsset{
			Success: false,
			Error:   fmt.Sprintf("unsupported conversion type: %s", ext),
		}
	}

	outputPath, err := transcoder.Transcode(req.Asset.BackupRelativePath, target)
	if err != nil {
		return types.ConvertedAsset{Success: false, Error: err.Error()}
	}

	tempPath, err := storeTempFile(outputPath)
	if err != nil {
		return types.ConvertedAsset{Success: false, Error: err.Error()}
	}

	converted := req.Asset
	converted.BackupRelativePath = tempPath

	return types.ConvertedAsset{Success: true, ConvertedAsset: &converted}
}

// storeTempFile moves a converted file into a freshly created temp
// directory so the rendition survives independent of the backup tree.
// Each conversion gets its own directory; none is ever reused.
func storeTempFile(sourcePath string) (string, error) {
	tempDir, err := os.MkdirTemp("", "photoxport-convert-")
	if err != nil {
		return "", fmt.Errorf("failed to create conversion temp directory: %w", err)
	}

	destination := filepath.Join(tempDir, filepath.Base(sourcePath))
	if err := moveFile(sourcePath, destination); err != nil {
		return "", fmt.Errorf("failed to store converted file: %w", err)
	}
	return destination, nil
}

// moveFile renames when possible and falls back to copy-and-remove for
// cross-device moves (the temp directory may be on another filesystem).
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
