package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/forPelevin/lyricgen/internal/config"
	"github.com/forPelevin/lyricgen/internal/pipeline"
)

func run(cmd *cobra.Command, input string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	s, err := config.Load(cmd.Flags(), cfgFile)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	opts, err := s.LyricsOptions()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Hour)
	defer cancel()

	cfg := pipeline.Config{
		Input:       absIn,
		Transcript:  s.Transcript,
		Out:         s.Out,
		Options:     opts,
		Traditional: s.Traditional,
		Language:    s.Language,
		CacheDir:    s.CacheDir,

		FFmpegPath:  s.FFmpegPath,
		FFprobePath: s.FFprobePath,

		WhisperBin:   s.WhisperBin,
		WhisperModel: s.WhisperModel,

		OpenCCPath:   s.OpenCCPath,
		OpenCCConfig: s.OpenCCConfig,

		Logger: newLogger(cmd.ErrOrStderr(), s.LogLevel, s.LogFormat),
		Stdout: cmd.OutOrStdout(),
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return pipeline.Run(ctx, cfg)
}
