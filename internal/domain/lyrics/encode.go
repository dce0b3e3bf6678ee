package lyrics

import (
	"math"
	"strconv"
	"strings"

	"github.com/forPelevin/lyricgen/internal/types"
)

// Encode renders timings as one line per sentence:
//
//	[12.34+0.56]字字字[12.90+0.30]字
//
// A tag is written only when a character's start differs from the previous
// tagged start on the same line; untagged characters share that window.
// Timings from Align never carry whitespace or brackets, which Decode
// would read as structure.
func Encode(timings []types.CharTiming, opts Options) string {
	lines := splitLines(timings, opts)
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		out = append(out, encodeLine(ln))
	}
	return strings.Join(out, "\n")
}

func encodeLine(chars []types.CharTiming) string {
	var b strings.Builder
	hasTag := false
	prevStart := 0.0
	for _, c := range chars {
		if !hasTag || c.Start != prevStart {
			writeTag(&b, c.Start, c.Duration)
			hasTag = true
			prevStart = c.Start
		}
		b.WriteRune(c.Char)
	}
	return b.String()
}

func writeTag(b *strings.Builder, start, dur float64) {
	b.WriteByte('[')
	b.WriteString(strconv.FormatFloat(start, 'f', 2, 64))
	b.WriteByte('+')
	b.WriteString(strconv.FormatFloat(dur, 'f', 2, 64))
	b.WriteByte(']')
}

// splitLines groups timings into sentences. Boundary markers always end a
// sentence and are dropped; in GapThreshold mode a timing discontinuity
// larger than the gap also does. Empty sentences are never returned.
func splitLines(timings []types.CharTiming, opts Options) [][]types.CharTiming {
	var (
		out  [][]types.CharTiming
		cur  []types.CharTiming
		prev *types.CharTiming
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, cur)
		}
		cur = nil
	}
	gapMode := opts.Boundary == GapThreshold
	gap := opts.gap()
	for i := range timings {
		c := timings[i]
		if c.IsBoundary() {
			flush()
			prev = nil
			continue
		}
		if gapMode && prev != nil && isGap(*prev, c, gap) {
			flush()
		}
		cur = append(cur, c)
		prev = &timings[i]
	}
	flush()
	return out
}

// isGap measures the discontinuity on the millisecond grid so that float
// noise such as 0.5+0.5 vs 1.01 does not decide a threshold case. The
// threshold itself is used as given.
func isGap(prev, next types.CharTiming, gap float64) bool {
	d := round3(math.Abs(prev.End() - next.Start))
	return d > gap
}
