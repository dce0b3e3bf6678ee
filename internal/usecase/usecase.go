package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/forPelevin/lyricgen/internal/domain/lyrics"
	"github.com/forPelevin/lyricgen/internal/ports"
	"github.com/forPelevin/lyricgen/internal/types"
)

type Deps struct {
	Audio     ports.AudioTool
	ASR       ports.ASR
	Converter ports.ScriptConverter
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type Input struct {
	Audio    string
	OutPath  string
	CacheDir string
	Options  lyrics.Options

	// SkipAudio is set when the ASR reads a saved transcript and needs no wav.
	SkipAudio bool

	Traditional bool
	// ScriptConversionAvailable is resolved once at startup.
	ScriptConversionAvailable bool

	Logger zerolog.Logger
}

type Result struct {
	Timings   []types.CharTiming
	Text      string
	Stats     lyrics.Stats
	Sentences int
	Converted bool
}

func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	log := in.Logger
	if err := in.Options.Validate(); err != nil {
		return Result{}, fmt.Errorf("lyrics options: %w", err)
	}

	wav := filepath.Join(in.CacheDir, "audio.wav")
	if !in.SkipAudio {
		if d, err := u.d.Audio.ProbeDuration(ctx, in.Audio); err != nil {
			log.Warn().Err(err).Msg("probe duration failed")
		} else {
			log.Info().Dur("duration", d).Msg("audio probed")
		}
		log.Info().Str("wav", wav).Msg("extracting audio")
		if err := u.d.Audio.ExtractAudioMono16k(ctx, in.Audio, wav); err != nil {
			return Result{}, err
		}
	}

	log.Info().Msg("transcribing")
	tr, err := u.d.ASR.Transcribe(ctx, wav, in.CacheDir)
	if err != nil {
		return Result{}, err
	}
	log.Info().Int("segments", len(tr.Segments)).Str("language", tr.Language).Msg("transcript ready")

	converted := false
	if in.Traditional {
		converted = u.convertScript(ctx, &tr, in)
	}

	timings, st := lyrics.AlignWithStats(tr.Segments, in.Options)
	if st.SkippedWords > 0 || st.EmptySegments > 0 {
		log.Debug().
			Int("skipped_words", st.SkippedWords).
			Int("empty_segments", st.EmptySegments).
			Msg("dropped unusable recognizer output")
	}
	text := lyrics.Encode(timings, in.Options)

	if err := writeFile(in.OutPath, text); err != nil {
		return Result{}, err
	}

	return Result{
		Timings:   timings,
		Text:      text,
		Stats:     st,
		Sentences: len(lyrics.Sentences(timings, in.Options)),
		Converted: converted,
	}, nil
}

// convertScript rewrites every word in place. Any failure leaves the
// transcript untouched.
func (u Usecase) convertScript(ctx context.Context, tr *types.Transcript, in Input) bool {
	log := in.Logger
	if !in.ScriptConversionAvailable || u.d.Converter == nil {
		log.Warn().Msg("script conversion unavailable, keeping original text")
		return false
	}
	var words []string
	for _, s := range tr.Segments {
		for _, w := range s.Words {
			words = append(words, strings.Join(strings.Fields(w.Word), " "))
		}
	}
	if len(words) == 0 {
		return false
	}
	out, err := u.d.Converter.Convert(ctx, words)
	if err != nil {
		log.Warn().Err(err).Msg("script conversion failed, keeping original text")
		return false
	}
	if len(out) != len(words) {
		log.Warn().Int("want", len(words)).Int("got", len(out)).Msg("script conversion lost words, keeping original text")
		return false
	}
	i := 0
	for si := range tr.Segments {
		for wi := range tr.Segments[si].Words {
			tr.Segments[si].Words[wi].Word = out[i]
			i++
		}
	}
	log.Info().Int("words", len(words)).Msg("converted to traditional script")
	return true
}

func writeFile(path, text string) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close output: %w", cerr))
		}
	}()
	if _, err := f.WriteString(text); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
