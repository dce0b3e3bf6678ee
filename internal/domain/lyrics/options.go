package lyrics

import (
	"errors"
	"fmt"
	"strings"
)

// Distribution decides how a word's time span is shared by its characters.
type Distribution int

const (
	// Shared gives every character the whole word window, so a word lights up at once.
	Shared Distribution = iota
	// EvenSplit slices the word window into equal consecutive character windows.
	EvenSplit
)

func (d Distribution) String() string {
	switch d {
	case Shared:
		return "shared"
	case EvenSplit:
		return "even"
	default:
		return fmt.Sprintf("Distribution(%d)", int(d))
	}
}

// ParseDistribution accepts "shared" and "even"; empty means shared.
func ParseDistribution(s string) (Distribution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "shared":
		return Shared, nil
	case "even", "even-split", "evensplit":
		return EvenSplit, nil
	}
	return 0, fmt.Errorf("unknown distribution %q (want shared or even)", s)
}

// Boundary decides where the encoder breaks lines.
type Boundary int

const (
	// ExplicitMarker breaks lines at boundary markers only.
	ExplicitMarker Boundary = iota
	// GapThreshold breaks lines where consecutive characters are not contiguous in time.
	GapThreshold
)

func (b Boundary) String() string {
	switch b {
	case ExplicitMarker:
		return "marker"
	case GapThreshold:
		return "gap"
	default:
		return fmt.Sprintf("Boundary(%d)", int(b))
	}
}

// ParseBoundary accepts "marker" (or "explicit") and "gap"; empty means marker.
func ParseBoundary(s string) (Boundary, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "marker", "explicit":
		return ExplicitMarker, nil
	case "gap":
		return GapThreshold, nil
	}
	return 0, fmt.Errorf("unknown boundary %q (want marker or gap)", s)
}

// DefaultGapSeconds is the GapThreshold default.
const DefaultGapSeconds = 0.01

// Options selects the timing and sentence-break policies.
type Options struct {
	Distribution Distribution
	Boundary     Boundary
	// GapSeconds is the largest tolerated discontinuity between two
	// characters of the same line in GapThreshold mode.
	GapSeconds float64
}

// DefaultOptions is shared word windows with explicit sentence markers.
func DefaultOptions() Options {
	return Options{
		Distribution: Shared,
		Boundary:     ExplicitMarker,
		GapSeconds:   DefaultGapSeconds,
	}
}

// Validate rejects unknown policies and shared windows with gap breaks.
func (o Options) Validate() error {
	switch o.Distribution {
	case Shared, EvenSplit:
	default:
		return fmt.Errorf("invalid distribution: %s", o.Distribution)
	}
	switch o.Boundary {
	case ExplicitMarker:
	case GapThreshold:
		if !(o.GapSeconds > 0) {
			return errors.New("gap must be > 0")
		}
		// All characters of a shared word start together, so every
		// character after the first would look like a gap.
		if o.Distribution == Shared {
			return errors.New("gap boundary requires even distribution")
		}
	default:
		return fmt.Errorf("invalid boundary: %s", o.Boundary)
	}
	return nil
}

func (o Options) gap() float64 {
	if o.GapSeconds > 0 {
		return o.GapSeconds
	}
	return DefaultGapSeconds
}
