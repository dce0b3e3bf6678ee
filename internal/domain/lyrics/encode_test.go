package lyrics

import (
	"errors"
	"strings"
	"testing"

	"github.com/forPelevin/lyricgen/internal/types"
)

func TestEncode_EndToEnd(t *testing.T) {
	segs := []types.Segment{
		seg(w("你", 0.0, 0.5), w("好", 0.5, 1.0)),
		seg(w("吗", 2.0, 2.5)),
	}
	got := Encode(Align(segs, DefaultOptions()), DefaultOptions())
	want := "[0.00+0.50]你[0.50+0.50]好\n[2.00+0.50]吗"
	if got != want {
		t.Fatalf("unexpected encoding:\n got: %q\nwant: %q", got, want)
	}
}

func TestEncode_Empty(t *testing.T) {
	if got := Encode(nil, DefaultOptions()); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestEncode_SharedWordHasSingleTag(t *testing.T) {
	segs := []types.Segment{seg(w("你好世界", 12.34, 12.9), w("啊", 12.9, 13.2))}
	got := Encode(Align(segs, DefaultOptions()), DefaultOptions())
	want := "[12.34+0.56]你好世界[12.90+0.30]啊"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEncode_MarkerHandling(t *testing.T) {
	timings := []types.CharTiming{
		{Char: ' ', Start: 0},
		{Char: 'a', Start: 1, Duration: 1, WordEnd: true},
		{Char: ' ', Start: 2},
		{Char: ' ', Start: 2},
		{Char: 'a', Start: 1, Duration: 1, WordEnd: true},
		{Char: ' ', Start: 2},
	}
	got := Encode(timings, DefaultOptions())
	// The tag state resets at every marker, so the repeated start is tagged again.
	want := "[1.00+1.00]a\n[1.00+1.00]a"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEncode_GapThreshold(t *testing.T) {
	opts := Options{Distribution: EvenSplit, Boundary: GapThreshold, GapSeconds: 0.01}
	tests := []struct {
		name      string
		nextStart float64
		wantLines int
	}{
		{"contiguous", 1.0, 1},
		{"at threshold", 1.01, 1},
		{"just below start", 0.99, 1},
		{"above threshold", 1.011, 2},
		{"overlap above threshold", 0.98, 2},
		{"sentence pause", 2.0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timings := []types.CharTiming{
				{Char: 'a', Start: 0.5, Duration: 0.5, WordEnd: true},
				{Char: 'b', Start: tt.nextStart, Duration: 0.5, WordEnd: true},
			}
			got := strings.Split(Encode(timings, opts), "\n")
			if len(got) != tt.wantLines {
				t.Fatalf("expected %d lines, got %d: %q", tt.wantLines, len(got), got)
			}
		})
	}
}

func TestEncode_GapThresholdBelowMillisecond(t *testing.T) {
	opts := Options{Distribution: EvenSplit, Boundary: GapThreshold, GapSeconds: 0.0155}
	tests := []struct {
		name      string
		nextStart float64
		wantLines int
	}{
		{"15ms", 1.015, 1},
		{"16ms", 1.016, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timings := []types.CharTiming{
				{Char: 'a', Start: 0.5, Duration: 0.5, WordEnd: true},
				{Char: 'b', Start: tt.nextStart, Duration: 0.5, WordEnd: true},
			}
			got := strings.Split(Encode(timings, opts), "\n")
			if len(got) != tt.wantLines {
				t.Fatalf("expected %d lines, got %d: %q", tt.wantLines, len(got), got)
			}
		})
	}
}

func TestEncode_GapModeFromAligner(t *testing.T) {
	opts := Options{Distribution: EvenSplit, Boundary: GapThreshold, GapSeconds: 0.01}
	segs := []types.Segment{
		seg(w("你好", 0, 1), w("吗", 1, 1.5)),
		seg(w("是", 3, 3.5)),
	}
	got := Encode(Align(segs, opts), opts)
	want := "[0.00+0.50]你[0.50+0.50]好[1.00+0.50]吗\n[3.00+0.50]是"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDecode_InheritsTagWindow(t *testing.T) {
	got, err := Decode("[12.34+0.56]字字字[12.90+0.30]字\n[13.50+0.40]字字", DefaultOptions())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []types.CharTiming{
		{Char: '字', Start: 12.34, Duration: 0.56},
		{Char: '字', Start: 12.34, Duration: 0.56},
		{Char: '字', Start: 12.34, Duration: 0.56, WordEnd: true},
		{Char: '字', Start: 12.9, Duration: 0.3, WordEnd: true},
		{Char: ' ', Start: 13.2, WordEnd: true},
		{Char: '字', Start: 13.5, Duration: 0.4},
		{Char: '字', Start: 13.5, Duration: 0.4, WordEnd: true},
	}
	assertTimings(t, got, want)
}

func TestDecode_GapModeHasNoMarkers(t *testing.T) {
	opts := Options{Distribution: EvenSplit, Boundary: GapThreshold, GapSeconds: 0.01}
	got, err := Decode("[0.00+1.00]a\r\n\n[2.00+1.00]b\n", opts)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0].Char != 'a' || got[1].Char != 'b' {
		t.Fatalf("unexpected timings: %+v", got)
	}
}

func TestDecode_Empty(t *testing.T) {
	got, err := Decode("", DefaultOptions())
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %+v, %v", got, err)
	}
}

func TestDecode_LiteralBracket(t *testing.T) {
	got, err := Decode("[1.00+0.50][副歌]", DefaultOptions())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 4 || got[0].Char != '[' || got[3].Char != ']' {
		t.Fatalf("unexpected timings: %+v", got)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantLine string
	}{
		{"text before tag", "字[0.00+1.00]字", "line 1"},
		{"empty tag", "[0.00+1.00][1.00+1.00]字", "line 1"},
		{"trailing tag", "[0.00+1.00]字[1.00+1.00]", "line 1"},
		{"whitespace", "[0.00+1.00]字\n[1.00+1.00]字 字", "line 2"},
		{"bad utf8", "[0.00+1.00]\xff", "line 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.in, DefaultOptions())
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantLine) {
				t.Fatalf("expected %q in error, got %v", tt.wantLine, err)
			}
		})
	}
}

func TestRoundTrip_Shared(t *testing.T) {
	segs := []types.Segment{
		seg(w("我们", 0.25, 0.75), w("一起", 0.75, 1.5), w("唱", 1.5, 2.0)),
		seg(w("卡拉OK", 3.1, 4.2)),
		seg(),
		seg(w("吧", 5, 5.25)),
	}
	timings := Align(segs, DefaultOptions())
	got, err := Decode(Encode(timings, DefaultOptions()), DefaultOptions())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	assertTimings(t, got, timings)
}

func TestRoundTrip_BracketedWord(t *testing.T) {
	segs := []types.Segment{seg(w("[1+2]", 0, 0.5), w("好", 0.5, 1))}
	timings := Align(segs, DefaultOptions())
	text := Encode(timings, DefaultOptions())
	if want := "[0.00+0.50]1+2[0.50+0.50]好"; text != want {
		t.Fatalf("got %q, want %q", text, want)
	}
	got, err := Decode(text, DefaultOptions())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	assertTimings(t, got, timings)
}

func TestRoundTrip_EvenSplit(t *testing.T) {
	combos := []Options{
		{Distribution: EvenSplit, Boundary: ExplicitMarker, GapSeconds: 0.01},
		{Distribution: EvenSplit, Boundary: GapThreshold, GapSeconds: 0.01},
	}
	segs := []types.Segment{
		seg(w("你好", 0, 0.5), w("世界", 0.5, 1.3)),
		seg(w("再见", 2, 2.4)),
	}
	for _, opts := range combos {
		t.Run(opts.Boundary.String(), func(t *testing.T) {
			timings := Align(segs, opts)
			got, err := Decode(Encode(timings, opts), opts)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			// Per-character tags carry no word grouping, so only windows are compared.
			if len(got) != len(timings) {
				t.Fatalf("expected %d timings, got %d", len(timings), len(got))
			}
			for i := range timings {
				a, b := got[i], timings[i]
				if a.Char != b.Char || a.Start != b.Start || a.Duration != b.Duration {
					t.Fatalf("timing %d: got %+v, want %+v", i, a, b)
				}
			}
		})
	}
}

func TestRoundTrip_TextIsStable(t *testing.T) {
	in := "[0.00+0.50]你[0.50+0.50]好\n[2.00+0.50]吗吗"
	timings, err := Decode(in, DefaultOptions())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := Encode(timings, DefaultOptions()); got != in {
		t.Fatalf("got %q, want %q", got, in)
	}
}
