package lyrics

import (
	"errors"
	"strings"
	"testing"

	"github.com/forPelevin/lyricgen/internal/types"
)

func TestSentences(t *testing.T) {
	timings, err := Decode("[0.00+0.50]你[0.50+0.50]好\n[2.00+0.50]吗吗", DefaultOptions())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	sents := Sentences(timings, DefaultOptions())
	if len(sents) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(sents))
	}
	if sents[0].Text() != "你好" || sents[1].Text() != "吗吗" {
		t.Fatalf("unexpected texts: %q, %q", sents[0].Text(), sents[1].Text())
	}
	if sents[0].Start != 0 || sents[0].End != 1 {
		t.Fatalf("unexpected first window: %v-%v", sents[0].Start, sents[0].End)
	}
	if sents[1].Start != 2 || sents[1].End != 2.5 {
		t.Fatalf("unexpected second window: %v-%v", sents[1].Start, sents[1].End)
	}
}

func TestDecodeSentences_KeepsGapLines(t *testing.T) {
	opts := Options{Distribution: EvenSplit, Boundary: GapThreshold, GapSeconds: 0.01}
	// The 12 ms gaps split lines but shrink to 10 ms once written with two decimals.
	timings := []types.CharTiming{
		{Char: 'a', Start: 0, Duration: 1, WordEnd: true},
		{Char: 'b', Start: 1.012, Duration: 0.5, WordEnd: true},
		{Char: 'c', Start: 2.014, Duration: 0.004, WordEnd: true},
		{Char: 'd', Start: 2.025, Duration: 0.5, WordEnd: true},
	}
	text := Encode(timings, opts)
	if n := len(strings.Split(text, "\n")); n != 3 {
		t.Fatalf("expected 3 written lines, got %d: %q", n, text)
	}

	sents, err := DecodeSentences(text)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var got []string
	for _, s := range sents {
		got = append(got, s.Text())
	}
	if strings.Join(got, "|") != "a|b|cd" {
		t.Fatalf("unexpected sentences: %q", got)
	}
}

func TestDecodeSentences_Malformed(t *testing.T) {
	if _, err := DecodeSentences("[0.00+1.00]a\nb"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestActiveSentence(t *testing.T) {
	sents := []Sentence{{Start: 0, End: 1}, {Start: 2, End: 2.5}}
	tests := map[float64]int{
		-1:  -1,
		0:   0,
		0.9: 0,
		1:   -1,
		1.5: -1,
		2.2: 1,
		3:   -1,
	}
	for elapsed, want := range tests {
		if got := ActiveSentence(sents, elapsed); got != want {
			t.Fatalf("ActiveSentence(%v) = %d, want %d", elapsed, got, want)
		}
	}
}

func TestSentenceProgress(t *testing.T) {
	timings, err := Decode("[1.00+1.00]a[2.00+0.00]b", DefaultOptions())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	s := Sentences(timings, DefaultOptions())[0]
	tests := []struct {
		i       int
		elapsed float64
		want    float64
	}{
		{0, 0.5, 0},
		{0, 1.25, 0.25},
		{0, 2, 1},
		{1, 1.5, 0},
		{1, 2, 1},
		{5, 2, 0},
	}
	for _, tt := range tests {
		if got := s.Progress(tt.i, tt.elapsed); got != tt.want {
			t.Fatalf("Progress(%d, %v) = %v, want %v", tt.i, tt.elapsed, got, tt.want)
		}
	}
	if got := s.ActiveChar(1.5); got != 0 {
		t.Fatalf("ActiveChar(1.5) = %d, want 0", got)
	}
	if got := s.ActiveChar(2); got != -1 {
		t.Fatalf("ActiveChar(2) = %d, want -1", got)
	}
}
