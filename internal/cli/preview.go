package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forPelevin/lyricgen/internal/domain/lyrics"
)

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "preview <lyric.txt>",
		Short:        "Print the sentences of a lyric file with their time windows",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return preview(cmd, args[0])
		},
	}
	cmd.Flags().Float64("at", 0, "Show the sentence and character fill at this playback time (seconds)")
	return cmd
}

// preview shows the sentences exactly as the file's lines split them, so
// files written with either boundary policy read back the same way.
func preview(cmd *cobra.Command, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read lyrics: %w", err)
	}
	sents, err := lyrics.DecodeSentences(string(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	at := -1.0
	if cmd.Flags().Changed("at") {
		at, _ = cmd.Flags().GetFloat64("at")
	}
	return writePreview(cmd.OutOrStdout(), sents, at)
}

// writePreview lists sentences; a non-negative at marks the active one and
// shows how far each of its characters is filled.
func writePreview(w io.Writer, sents []lyrics.Sentence, at float64) error {
	var b strings.Builder
	active := -1
	if at >= 0 {
		active = lyrics.ActiveSentence(sents, at)
	}
	for i, s := range sents {
		mark := " "
		if i == active {
			mark = ">"
		}
		fmt.Fprintf(&b, "%s %3d [%7.2f - %7.2f] %s\n", mark, i+1, s.Start, s.End, s.Text())
		if i != active {
			continue
		}
		for ci, c := range s.Chars {
			fmt.Fprintf(&b, "      %c %3.0f%%\n", c.Char, 100*s.Progress(ci, at))
		}
	}
	fmt.Fprintf(&b, "%d sentences\n", len(sents))
	_, err := io.WriteString(w, b.String())
	return err
}
