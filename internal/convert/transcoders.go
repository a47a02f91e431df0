package convert

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// outputPathFor places the converted rendition next to the source file
// as <stem>.<target lowercase>.
func outputPathFor(sourcePath, targetExt string) string {
	ext := filepath.Ext(sourcePath)
	stem := strings.TrimSuffix(sourcePath, ext)
	return stem + "." + strings.ToLower(targetExt)
}

// ImageTranscoder converts still images. Files whose payload Go's image
// registry can decode (some .HEIC files actually carry JPEG data) are
// re-encoded in-process via imaging; everything else goes through ffmpeg.
type ImageTranscoder struct {
	ffmpeg *FFmpegTranscoder
}

// NewImageTranscoder returns the default image transcoder
func NewImageTranscoder() *ImageTranscoder {
	return &ImageTranscoder{ffmpeg: NewFFmpegTranscoder()}
}

// Transcode converts the image at sourcePath into the target format
func (t *ImageTranscoder) Transcode(sourcePath, targetExt string) (string, error) {
	outputPath := outputPathFor(sourcePath, targetExt)

	if img, err := imaging.Open(sourcePath); err == nil {
		if err := imaging.Save(img, outputPath); err != nil {
			return "", fmt.Errorf("failed to encode %s: %w", outputPath, err)
		}
		return outputPath, nil
	}

	return t.ffmpeg.Transcode(sourcePath, targetExt)
}

// FFmpegTranscoder shells out to ffmpeg for formats Go cannot decode
// natively: HEIC/HEIF stills and MOV video.
type FFmpegTranscoder struct {
	// Binary overrides the ffmpeg executable name. Empty means "ffmpeg"
	// resolved from PATH.
	Binary string
}

// NewFFmpegTranscoder returns the default ffmpeg-backed transcoder
func NewFFmpegTranscoder() *FFmpegTranscoder {
	return &FFmpegTranscoder{}
}

// Transcode runs ffmpeg over the source file, producing the target
// rendition next to it
func (t *FFmpegTranscoder) Transcode(sourcePath, targetExt string) (string, error) {
	binary := t.Binary
	if binary == "" {
		binary = "ffmpeg"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return "", fmt.Errorf("ffmpeg not found on PATH: %w", err)
	}

	outputPath := outputPathFor(sourcePath, targetExt)

	args := []string{"-y", "-loglevel", "error", "-i", sourcePath}
	if strings.EqualFold(targetExt, "mp4") {
		args = append(args, "-c:v", "libx264")
	}
	args = append(args, outputPath)

	cmd := exec.Command(binary, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		// Don't leave a partial rendition next to the source
		os.Remove(outputPath)
		return "", fmt.Errorf("ffmpeg failed for %s: %v: %s", sourcePath, err, strings.TrimSpace(string(output)))
	}

	return outputPath, nil
}
