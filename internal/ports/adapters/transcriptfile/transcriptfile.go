// Package transcriptfile serves a transcript saved earlier, in the
// segments/words JSON shape of openai-whisper, instead of running ASR.
package transcriptfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/forPelevin/lyricgen/internal/types"
)

type Adapter struct {
	path string
}

func New(path string) *Adapter {
	return &Adapter{path: path}
}

func (a *Adapter) Transcribe(ctx context.Context, _, _ string) (types.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return types.Transcript{}, err
	}
	b, err := os.ReadFile(a.path)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("read transcript: %w", err)
	}
	var tr types.Transcript
	if err := json.Unmarshal(b, &tr); err != nil {
		return types.Transcript{}, fmt.Errorf("parse transcript %s: %w", a.path, err)
	}
	for i := range tr.Segments {
		tr.Segments[i].Text = strings.TrimSpace(tr.Segments[i].Text)
	}
	return tr, nil
}
