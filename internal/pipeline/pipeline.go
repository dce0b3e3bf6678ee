package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/forPelevin/lyricgen/internal/domain/lyrics"
	"github.com/forPelevin/lyricgen/internal/ports"
	"github.com/forPelevin/lyricgen/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/lyricgen/internal/ports/adapters/opencc"
	"github.com/forPelevin/lyricgen/internal/ports/adapters/transcriptfile"
	"github.com/forPelevin/lyricgen/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/lyricgen/internal/usecase"
)

const (
	lyricSuffix    = "_lyric.txt"
	previewLines   = 3
	previewTimings = 10
)

type Config struct {
	Input string
	// Transcript, when set, replaces ASR with a saved whisper JSON transcript.
	Transcript  string
	Out         string
	Options     lyrics.Options
	Traditional bool
	Language    string

	// CacheDir is the base directory for local artifacts (audio, transcripts, etc.).
	// If empty, defaults to ".cache".
	CacheDir string

	FFmpegPath  string
	FFprobePath string

	WhisperBin   string
	WhisperModel string

	OpenCCPath   string
	OpenCCConfig string

	Logger zerolog.Logger
	// Stdout receives the human readable summary. Nil discards it.
	Stdout io.Writer
}

func (c Config) Validate() error {
	if c.Input == "" {
		return errors.New("input is empty")
	}
	if c.Transcript == "" {
		if _, err := os.Stat(c.Input); err != nil {
			return fmt.Errorf("stat input: %w", err)
		}
		if c.WhisperModel == "" {
			return fmt.Errorf("whisper model path is required")
		}
	} else if _, err := os.Stat(c.Transcript); err != nil {
		return fmt.Errorf("stat transcript: %w", err)
	}
	return c.Options.Validate()
}

func Run(ctx context.Context, cfg Config) error {
	log := cfg.Logger
	out := cfg.Stdout
	if out == nil {
		out = io.Discard
	}

	// adapters
	audio := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	var asr ports.ASR = whispercpp.New(cfg.WhisperBin, cfg.WhisperModel, cfg.Language)
	if cfg.Transcript != "" {
		asr = transcriptfile.New(cfg.Transcript)
	}
	conv := opencc.New(cfg.OpenCCPath, cfg.OpenCCConfig)

	// Capability is fixed for the whole run.
	convAvailable := false
	if cfg.Traditional {
		convAvailable = conv.Available()
		if !convAvailable {
			log.Warn().
				Str("binary", cfg.OpenCCPath).
				Msg("opencc not found, writing untransformed text (install opencc to enable --traditional)")
		}
	}

	uc := usecase.New(usecase.Deps{
		Audio:     audio,
		ASR:       asr,
		Converter: conv,
	})

	baseCache := cfg.CacheDir
	if baseCache == "" {
		baseCache = ".cache"
	}
	cacheDir := filepath.Join(baseCache, "runs", runID(cfg.Input))
	log.Debug().Msg("preparing workspace")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return err
	}
	log.Info().Str("cache", cacheDir).Msg("workspace ready")

	outPath := resolveOutPath(cfg.Out, cfg.Input)

	res, err := uc.Run(ctx, usecase.Input{
		Audio:                     cfg.Input,
		OutPath:                   outPath,
		CacheDir:                  cacheDir,
		Options:                   cfg.Options,
		SkipAudio:                 cfg.Transcript != "",
		Traditional:               cfg.Traditional,
		ScriptConversionAvailable: convAvailable,
		Logger:                    log,
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("path", outPath).
		Int("chars", res.Stats.Chars).
		Int("sentences", res.Sentences).
		Bool("traditional", res.Converted).
		Msg("lyrics written")
	return writeSummary(out, outPath, res)
}

// resolveOutPath defaults to <dir>/<name>_lyric.txt beside the input.
func resolveOutPath(out, input string) string {
	if out != "" {
		return out
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(filepath.Dir(input), base+lyricSuffix)
}

func writeSummary(w io.Writer, outPath string, res usecase.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "lyrics saved to: %s\n", outPath)
	fmt.Fprintf(&b, "characters: %d\n", res.Stats.Chars)
	fmt.Fprintf(&b, "sentences: %d\n", res.Sentences)

	lines := strings.Split(res.Text, "\n")
	if res.Text == "" {
		lines = nil
	}
	fmt.Fprintf(&b, "\ntext preview (%d lines):\n", len(lines))
	b.WriteString(strings.Repeat("-", 50) + "\n")
	for i, ln := range lines {
		if i == previewLines {
			fmt.Fprintf(&b, "  ... %d more\n", len(lines)-previewLines)
			break
		}
		fmt.Fprintf(&b, "  %s\n", ln)
	}
	b.WriteString(strings.Repeat("-", 50) + "\n")

	b.WriteString("\ntiming preview:\n")
	for i, c := range res.Timings {
		if i == previewTimings {
			fmt.Fprintf(&b, "... %d more\n", len(res.Timings)-previewTimings)
			break
		}
		fmt.Fprintf(&b, "[%.2fs] %c (%.2fs)\n", c.Start, c.Char, c.Duration)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func runID(input string) string {
	name := normalizePathSegment(strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)))
	if name == "" {
		name = "input"
	}
	return name + "-" + hash(input)
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var _ ports.AudioTool = (*ffmpeg.Adapter)(nil)
var _ ports.ASR = (*whispercpp.Adapter)(nil)
var _ ports.ASR = (*transcriptfile.Adapter)(nil)
var _ ports.ScriptConverter = (*opencc.Adapter)(nil)
