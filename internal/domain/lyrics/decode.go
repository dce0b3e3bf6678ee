package lyrics

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/forPelevin/lyricgen/internal/types"
)

var ErrMalformed = errors.New("malformed lyric text")

var reTag = regexp.MustCompile(`^\[(\d+(?:\.\d+)?)\+(\d+(?:\.\d+)?)\]`)

// Decode parses text produced by Encode. Every character takes the window
// of the nearest tag before it on its line, and the last character of each
// tag run is a word end. In ExplicitMarker mode consecutive lines are
// separated by a boundary marker placed at the end of the previous line.
func Decode(text string, opts Options) ([]types.CharTiming, error) {
	lines, err := DecodeLines(text)
	if err != nil {
		return nil, err
	}
	var out []types.CharTiming
	for _, chars := range lines {
		if len(out) > 0 && opts.Boundary == ExplicitMarker {
			out = append(out, boundaryAfter(out[len(out)-1]))
		}
		out = append(out, chars...)
	}
	return out, nil
}

// DecodeLines parses text into one group of timings per non-blank line.
// The groups are the sentences as written, whatever boundary policy
// produced them.
func DecodeLines(text string) ([][]types.CharTiming, error) {
	var out [][]types.CharTiming
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		chars, err := decodeLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, chars)
	}
	return out, nil
}

func decodeLine(line string) ([]types.CharTiming, error) {
	var (
		out       []types.CharTiming
		start     float64
		dur       float64
		hasTag    bool
		runLength int
	)
	for pos := 0; pos < len(line); {
		if line[pos] == '[' {
			if m := reTag.FindStringSubmatch(line[pos:]); m != nil {
				if hasTag && runLength == 0 {
					return nil, fmt.Errorf("%w: empty tag at byte %d", ErrMalformed, pos)
				}
				if len(out) > 0 {
					out[len(out)-1].WordEnd = true
				}
				s, err := strconv.ParseFloat(m[1], 64)
				if err != nil {
					return nil, fmt.Errorf("%w: start %q: %v", ErrMalformed, m[1], err)
				}
				d, err := strconv.ParseFloat(m[2], 64)
				if err != nil {
					return nil, fmt.Errorf("%w: duration %q: %v", ErrMalformed, m[2], err)
				}
				start, dur = round3(s), round3(d)
				hasTag = true
				runLength = 0
				pos += len(m[0])
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(line[pos:])
		if r == utf8.RuneError && size <= 1 {
			return nil, fmt.Errorf("%w: invalid utf-8 at byte %d", ErrMalformed, pos)
		}
		if !hasTag {
			return nil, fmt.Errorf("%w: text before first tag", ErrMalformed)
		}
		if unicode.IsSpace(r) {
			return nil, fmt.Errorf("%w: whitespace at byte %d", ErrMalformed, pos)
		}
		out = append(out, types.CharTiming{Char: r, Start: start, Duration: dur})
		runLength++
		pos += size
	}
	if hasTag && runLength == 0 {
		return nil, fmt.Errorf("%w: trailing tag without text", ErrMalformed)
	}
	if len(out) > 0 {
		out[len(out)-1].WordEnd = true
	}
	return out, nil
}
