package lyrics

import (
	"strings"

	"github.com/forPelevin/lyricgen/internal/types"
)

// Sentence is one display line of a karaoke track.
type Sentence struct {
	Chars []types.CharTiming
	Start float64
	End   float64
}

// Sentences groups timings into display lines using the same line breaks
// as Encode. For text read back from a file use DecodeSentences, which
// keeps the written lines.
func Sentences(timings []types.CharTiming, opts Options) []Sentence {
	return sentencesFromLines(splitLines(timings, opts))
}

// DecodeSentences parses lyric text into one sentence per written line.
func DecodeSentences(text string) ([]Sentence, error) {
	lines, err := DecodeLines(text)
	if err != nil {
		return nil, err
	}
	return sentencesFromLines(lines), nil
}

func sentencesFromLines(lines [][]types.CharTiming) []Sentence {
	out := make([]Sentence, 0, len(lines))
	for _, ln := range lines {
		last := ln[len(ln)-1]
		out = append(out, Sentence{
			Chars: ln,
			Start: ln[0].Start,
			End:   round3(last.End()),
		})
	}
	return out
}

func (s Sentence) Text() string {
	var b strings.Builder
	for _, c := range s.Chars {
		b.WriteRune(c.Char)
	}
	return b.String()
}

// ActiveSentence returns the index of the sentence being sung at elapsed
// seconds, or -1 between sentences.
func ActiveSentence(sents []Sentence, elapsed float64) int {
	for i, s := range sents {
		if elapsed >= s.Start && elapsed < s.End {
			return i
		}
	}
	return -1
}

// ActiveChar returns the index of the first character whose window
// contains elapsed, or -1.
func (s Sentence) ActiveChar(elapsed float64) int {
	for i, c := range s.Chars {
		if elapsed >= c.Start && elapsed < c.End() {
			return i
		}
	}
	return -1
}

// Progress is the fill ratio of character i at elapsed seconds, in [0, 1].
func (s Sentence) Progress(i int, elapsed float64) float64 {
	if i < 0 || i >= len(s.Chars) {
		return 0
	}
	c := s.Chars[i]
	switch {
	case elapsed < c.Start:
		return 0
	case elapsed >= c.End() || c.Duration <= 0:
		return 1
	}
	return (elapsed - c.Start) / c.Duration
}
