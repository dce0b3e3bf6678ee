package types

type Transcript struct {
	Language string    `json:"language,omitempty"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

// BoundaryChar marks a sentence break in a CharTiming sequence.
const BoundaryChar = ' '

// CharTiming is one displayed character with its time window in seconds.
// Start and Duration are rounded to milliseconds.
type CharTiming struct {
	Char     rune    `json:"char"`
	Start    float64 `json:"startTime"`
	Duration float64 `json:"duration"`
	WordEnd  bool    `json:"wordEnd"`
}

func (c CharTiming) IsBoundary() bool { return c.Char == BoundaryChar }

func (c CharTiming) End() float64 { return c.Start + c.Duration }
