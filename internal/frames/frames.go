// Package frames handles frame-range expressions ("1-100x2") and frame
// numbers embedded in image-sequence filenames.
package frames

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	rangePattern = regexp.MustCompile(`^(-?\d+)(?:-(-?\d+)(?:x(\d+))?)?$`)
	framePattern = regexp.MustCompile(`^(.+\.)(\d+)(\..+)$`)
)

// Range is one contiguous stepped frame range.
type Range struct {
	Start int
	End   int
	Step  int
}

// ParseRange parses a single frame-range token: "5", "1-100" or "1-100x2".
func ParseRange(expr string) (Range, error) {
	match := rangePattern.FindStringSubmatch(strings.TrimSpace(expr))
	if match == nil {
		return Range{}, fmt.Errorf("invalid frame range %q", expr)
	}

	start, err := strconv.Atoi(match[1])
	if err != nil {
		return Range{}, fmt.Errorf("invalid frame range %q: %w", expr, err)
	}
	r := Range{Start: start, End: start, Step: 1}

	if match[2] != "" {
		end, err := strconv.Atoi(match[2])
		if err != nil {
			return Range{}, fmt.Errorf("invalid frame range %q: %w", expr, err)
		}
		r.End = end
	}
	if match[3] != "" {
		step, err := strconv.Atoi(match[3])
		if err != nil || step < 1 {
			return Range{}, fmt.Errorf("invalid step in frame range %q", expr)
		}
		r.Step = step
	}
	if r.End < r.Start {
		return Range{}, fmt.Errorf("descending frame range %q", expr)
	}
	return r, nil
}

// String renders the range in wire form.
func (r Range) String() string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	if r.Step <= 1 {
		return fmt.Sprintf("%d-%d", r.Start, r.End)
	}
	return fmt.Sprintf("%d-%dx%d", r.Start, r.End, r.Step)
}

// Frames expands the range into the ordered list of frame numbers.
func (r Range) Frames() []int {
	step := r.Step
	if step < 1 {
		step = 1
	}
	var out []int
	for f := r.Start; f <= r.End; f += step {
		out = append(out, f)
	}
	return out
}

// Parse expands a comma-separated frame-range expression into the ordered
// list of frame numbers.
func Parse(expr string) ([]int, error) {
	var out []int
	for _, token := range strings.Split(expr, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		r, err := ParseRange(token)
		if err != nil {
			return nil, err
		}
		out = append(out, r.Frames()...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty frame expression %q", expr)
	}
	return out, nil
}

// ExtractFrame reads the frame number embedded in a sequence filename of
// the form "name.####.ext". The second return value is the digit padding.
func ExtractFrame(filename string) (int, int, error) {
	match := framePattern.FindStringSubmatch(filename)
	if match == nil {
		return 0, 0, fmt.Errorf("no frame number in filename %q", filename)
	}
	frame, err := strconv.Atoi(match[2])
	if err != nil {
		return 0, 0, fmt.Errorf("no frame number in filename %q: %w", filename, err)
	}
	return frame, len(match[2]), nil
}

// PaddedPlaceholder replaces the frame number in a sequence filename with
// '#' placeholders of the same width ("img.1001.exr" -> "img.####.exr").
// Filenames without a frame number are returned unchanged.
func PaddedPlaceholder(filename string) string {
	match := framePattern.FindStringSubmatch(filename)
	if match == nil {
		return filename
	}
	return match[1] + strings.Repeat("#", len(match[2])) + match[3]
}
