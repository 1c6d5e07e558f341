package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
)

// Static errors for media probing.
var (
	// ErrSourceNotFound is returned when the media file does not exist.
	ErrSourceNotFound = errors.New("media: source file does not exist")
	// ErrProbeFailed is returned when duration cannot be parsed from
	// ffmpeg output.
	ErrProbeFailed = errors.New("media: could not parse probe output")
)

const (
	// peakSampleRate is the mono sample rate the source is decoded to
	// before peak reduction.
	peakSampleRate = 8000
	// peakWindow is the number of decoded samples folded into one peak.
	peakWindow = 100
	// maxAmplitude clamps peaks to the unsigned 16-bit sample range.
	maxAmplitude = 32767
)

// FFmpeg implements Prober and PeakExtractor by driving the ffmpeg CLI.
type FFmpeg struct {
	ffmpegPath string
}

// NewFFmpeg creates an FFmpeg adapter. If ffmpegPath is empty it
// defaults to "ffmpeg" (found via PATH).
func NewFFmpeg(ffmpegPath string) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpeg{ffmpegPath: ffmpegPath}
}

// Probe extracts duration and frame rate by parsing ffmpeg's stderr
// banner for the source.
func (f *FFmpeg) Probe(ctx context.Context, path string) (SourceInfo, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return SourceInfo{}, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath,
		"-i", path,
		"-hide_banner",
		"-f", "null", "-",
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	// ffmpeg exits non-zero with a null muxer; the banner on stderr is
	// all we need.
	_ = cmd.Run()

	output := stderr.String()
	duration, err := parseDuration(output)
	if err != nil {
		return SourceInfo{}, err
	}

	return SourceInfo{
		Duration:  duration,
		FrameRate: parseFrameRate(output),
	}, nil
}

var (
	durationRe  = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)\.(\d+)`)
	frameRateRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*fps`)
)

// parseDuration extracts "Duration: HH:MM:SS.cc" from ffmpeg output.
func parseDuration(output string) (float64, error) {
	matches := durationRe.FindStringSubmatch(output)
	if len(matches) < 5 {
		return 0, fmt.Errorf("%w: no duration line", ErrProbeFailed)
	}

	hours, _ := strconv.ParseFloat(matches[1], 64)
	minutes, _ := strconv.ParseFloat(matches[2], 64)
	seconds, _ := strconv.ParseFloat(matches[3], 64)
	frac, _ := strconv.ParseFloat(matches[4], 64)

	divisor := 1.0
	for range matches[4] {
		divisor *= 10
	}

	return hours*3600 + minutes*60 + seconds + frac/divisor, nil
}

// parseFrameRate extracts the "NN fps" stream field. Audio-only
// sources have no fps field; zero means unknown.
func parseFrameRate(output string) float64 {
	matches := frameRateRe.FindStringSubmatch(output)
	if len(matches) < 2 {
		return 0
	}
	fps, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0
	}
	return fps
}

// Peaks decodes the source to mono 8 kHz signed 16-bit PCM streamed on
// stdout and reduces it to coarse peaks, one per 100 samples.
func (f *FFmpeg) Peaks(ctx context.Context, path string) ([]int, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath,
		"-v", "error",
		"-i", path,
		"-ac", "1",
		"-ar", strconv.Itoa(peakSampleRate),
		"-f", "s16le",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("media: decode pcm: %w, stderr: %s", err, stderr.String())
	}

	return reducePeaks(stdout.Bytes()), nil
}

// reducePeaks folds little-endian s16 PCM into per-window peak
// magnitudes, clamped to 0..32767. A trailing partial window is
// dropped, matching the fixed-bin track model.
func reducePeaks(pcm []byte) []int {
	const windowBytes = 2 * peakWindow

	peaks := make([]int, 0, len(pcm)/windowBytes)
	for off := 0; off+windowBytes <= len(pcm); off += windowBytes {
		maxv := 0
		for i := off; i < off+windowBytes; i += 2 {
			v := int(int16(uint16(pcm[i]) | uint16(pcm[i+1])<<8))
			if v < 0 {
				v = -v
			}
			if v > maxAmplitude {
				v = maxAmplitude
			}
			if v > maxv {
				maxv = v
			}
		}
		peaks = append(peaks, maxv)
	}
	return peaks
}

// Compile-time interface checks.
var (
	_ Prober        = (*FFmpeg)(nil)
	_ PeakExtractor = (*FFmpeg)(nil)
)
