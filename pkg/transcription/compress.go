package transcription

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MaxUploadBytes is the largest audio file the transcription API accepts.
const MaxUploadBytes = 25 * 1024 * 1024

// compressionBitrates are tried in order until the file fits under
// MaxUploadBytes or the list is exhausted.
var compressionBitrates = []string{"128k", "96k", "64k", "32k"}

// Compressor shrinks oversized audio files before they are submitted for
// transcription.
type Compressor interface {
	// CompressIfNeeded returns a path to an audio file under the size limit.
	// If the input already fits, the input path is returned unchanged; the
	// caller owns cleanup of any new file (path differs from input).
	CompressIfNeeded(path string) (string, error)
}

// FFmpegCompressor compresses audio by invoking the ffmpeg binary with
// progressively lower bitrates, downmixing to mono at 22050 Hz.
type FFmpegCompressor struct {
	// Binary is the ffmpeg executable (default: "ffmpeg").
	Binary string
}

// NewFFmpegCompressor creates a compressor using the ffmpeg binary on PATH.
func NewFFmpegCompressor() *FFmpegCompressor {
	return &FFmpegCompressor{Binary: "ffmpeg"}
}

// CompressIfNeeded implements Compressor.
func (c *FFmpegCompressor) CompressIfNeeded(path string) (string, error) {
	size, err := fileSize(path)
	if err != nil {
		return "", err
	}
	if size <= MaxUploadBytes {
		log.Info().Int64("bytes", size).Msg("Audio file within size limit, no compression needed")
		return path, nil
	}

	log.Info().Int64("bytes", size).Msg("Audio file exceeds size limit, compressing")

	current := path
	for _, bitrate := range compressionBitrates {
		compressed, err := c.encode(path, bitrate)
		if err != nil {
			return "", err
		}

		// Discard the previous attempt before keeping the new one.
		if current != path {
			os.Remove(current)
		}
		current = compressed

		size, err = fileSize(current)
		if err != nil {
			return "", err
		}
		if size <= MaxUploadBytes {
			log.Info().
				Int64("bytes", size).
				Str("bitrate", bitrate).
				Msg("Audio compression complete")
			return current, nil
		}

		log.Info().
			Int64("bytes", size).
			Str("bitrate", bitrate).
			Msg("Compression not sufficient, trying lower bitrate")
	}

	log.Warn().Msg("Could not compress audio below the size limit, using best attempt")
	return current, nil
}

// encode runs one ffmpeg pass at the given bitrate.
func (c *FFmpegCompressor) encode(input, bitrate string) (string, error) {
	binary := c.Binary
	if binary == "" {
		binary = "ffmpeg"
	}

	ext := fileExtension(input)
	output := filepath.Join(os.TempDir(), fmt.Sprintf("compressed-%s.%s", uuid.NewString(), ext))

	cmd := exec.Command(binary,
		"-y",
		"-i", input,
		"-b:a", bitrate,
		"-ac", "1",
		"-ar", "22050",
		output,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		os.Remove(output)
		return "", fmt.Errorf("failed to compress audio file: %w: %s", err, strings.TrimSpace(string(out)))
	}

	return output, nil
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat audio file: %w", err)
	}
	return info.Size(), nil
}

// fileExtension returns the lower-cased extension of the file name, or "mp3"
// when none is present.
func fileExtension(name string) string {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" || len(ext) > 5 {
		return "mp3"
	}
	return strings.ToLower(ext)
}
