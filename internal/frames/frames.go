// Package frames orders visualization frames and writes the ffmpeg concat
// list used to stitch them into a video.
package frames

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultFPS        = 5
	OutputVideoName   = "output_video.mp4"
	concatListPattern = "frames-*.txt"
)

// ErrNoFrames is returned when a directory holds no image frames.
var ErrNoFrames = errors.New("no image frames found")

var firstNumber = regexp.MustCompile(`\d+`)

var imageExts = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
}

// Number returns the first integer in name as a decimal string without
// leading zeros; "" stands for 0, including names with no digits. Keeping
// the digits as text means arbitrarily long runs still order correctly.
func Number(name string) string {
	return strings.TrimLeft(firstNumber.FindString(name), "0")
}

// compareNumbers orders two values returned by Number.
func compareNumbers(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// List returns the image frames in dir ordered by their embedded number.
// Ties keep name order so the result is deterministic.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frames dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := imageExts[strings.ToLower(filepath.Ext(e.Name()))]; ok {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFrames, dir)
	}

	sort.SliceStable(names, func(i, j int) bool {
		if c := compareNumbers(Number(names[i]), Number(names[j])); c != 0 {
			return c < 0
		}
		return names[i] < names[j]
	})

	out := make([]string, len(names))
	for i, n := range names {
		out[i] = filepath.Join(dir, n)
	}
	return out, nil
}

// ConcatList renders an ffmpeg concat-demuxer script for frames shown at fps.
// The last frame is repeated so its duration is honored.
func ConcatList(frames []string, fps int) string {
	if fps <= 0 {
		fps = DefaultFPS
	}
	duration := strconv.FormatFloat(1/float64(fps), 'f', -1, 64)

	var b strings.Builder
	b.WriteString("ffconcat version 1.0\n")
	for _, f := range frames {
		fmt.Fprintf(&b, "file '%s'\nduration %s\n", quote(f), duration)
	}
	if len(frames) > 0 {
		fmt.Fprintf(&b, "file '%s'\n", quote(frames[len(frames)-1]))
	}
	return b.String()
}

// WriteConcatList writes the concat script to a temp file and returns its
// path. The caller removes it.
func WriteConcatList(frames []string, fps int) (string, error) {
	f, err := os.CreateTemp("", concatListPattern)
	if err != nil {
		return "", fmt.Errorf("create concat list: %w", err)
	}
	if _, err := f.WriteString(ConcatList(frames, fps)); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write concat list: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close concat list: %w", err)
	}
	return f.Name(), nil
}

// FFmpegArgs returns the ffmpeg arguments that encode listPath into output.
func FFmpegArgs(listPath, output string, fps int) []string {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-r", strconv.Itoa(fps),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		output,
	}
}

// quote escapes single quotes for the concat demuxer.
func quote(path string) string {
	return strings.ReplaceAll(path, "'", `'\''`)
}
