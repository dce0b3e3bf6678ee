package lyrics

import (
	"math"
	"strings"
	"unicode"

	"github.com/forPelevin/lyricgen/internal/types"
)

// Stats counts what Align dropped from noisy recognizer output.
type Stats struct {
	Segments      int
	EmptySegments int
	Words         int
	SkippedWords  int
	Chars         int
	Boundaries    int
}

// Align flattens recognized segments into per-character timings. In
// ExplicitMarker mode a boundary marker separates consecutive segments.
func Align(segs []types.Segment, opts Options) []types.CharTiming {
	out, _ := AlignWithStats(segs, opts)
	return out
}

// AlignWithStats is Align that also reports what was kept and dropped.
func AlignWithStats(segs []types.Segment, opts Options) ([]types.CharTiming, Stats) {
	var (
		out []types.CharTiming
		st  Stats
	)
	for _, s := range segs {
		st.Segments++
		emitted := false
		for _, w := range s.Words {
			st.Words++
			chars := visibleRunes(w.Word)
			if len(chars) == 0 || !validSpan(w) {
				st.SkippedWords++
				continue
			}
			// Marker goes in lazily so segments without usable words leave no trace.
			if !emitted && len(out) > 0 && opts.Boundary == ExplicitMarker {
				out = append(out, boundaryAfter(out[len(out)-1]))
				st.Boundaries++
			}
			emitted = true
			out = appendWord(out, chars, w, opts.Distribution)
			st.Chars += len(chars)
		}
		if !emitted {
			st.EmptySegments++
		}
	}
	return out, st
}

func appendWord(out []types.CharTiming, chars []rune, w types.Word, d Distribution) []types.CharTiming {
	total := w.End - w.Start
	n := len(chars)
	step := 0.0
	if n > 0 {
		step = total / float64(n)
	}
	for i, r := range chars {
		ct := types.CharTiming{Char: r, WordEnd: i == n-1}
		switch d {
		case EvenSplit:
			// Cut points are rounded, not the step, so the character
			// windows tile the word exactly.
			ct.Start = round3(w.Start + float64(i)*step)
			end := round3(w.Start + float64(i+1)*step)
			if i == n-1 {
				end = round3(w.End)
			}
			ct.Duration = round3(end - ct.Start)
		default:
			ct.Start = round3(w.Start)
			ct.Duration = round3(total)
		}
		out = append(out, ct)
	}
	return out
}

func boundaryAfter(prev types.CharTiming) types.CharTiming {
	return types.CharTiming{
		Char:    types.BoundaryChar,
		Start:   round3(prev.End()),
		WordEnd: true,
	}
}

// visibleRunes trims the word and drops the characters the text format
// reserves: whitespace breaks sentences and brackets delimit tags.
func visibleRunes(s string) []rune {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if reserved(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func reserved(r rune) bool {
	return unicode.IsSpace(r) || r == '[' || r == ']'
}

func validSpan(w types.Word) bool {
	if math.IsNaN(w.Start) || math.IsNaN(w.End) || math.IsInf(w.Start, 0) || math.IsInf(w.End, 0) {
		return false
	}
	return w.End >= w.Start
}

// round3 rounds half away from zero to milliseconds.
func round3(x float64) float64 { return math.Round(x*1000) / 1000 }
