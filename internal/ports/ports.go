package ports

import (
	"context"
	"time"

	"github.com/forPelevin/lyricgen/internal/types"
)

type AudioTool interface {
	ExtractAudioMono16k(ctx context.Context, inAudio, outWav string) error
	ProbeDuration(ctx context.Context, inAudio string) (time.Duration, error)
}

type ASR interface {
	Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error)
}

// ScriptConverter rewrites text between Chinese script variants.
type ScriptConverter interface {
	Convert(ctx context.Context, lines []string) ([]string, error)
}
