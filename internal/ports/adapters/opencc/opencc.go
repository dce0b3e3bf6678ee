package opencc

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultConfig converts Simplified Chinese to Traditional Chinese.
const DefaultConfig = "s2t.json"

type Adapter struct {
	bin    string
	config string
}

func New(binPath, config string) *Adapter {
	if binPath == "" {
		binPath = "opencc"
	}
	if config == "" {
		config = DefaultConfig
	}
	return &Adapter{bin: binPath, config: config}
}

// Available reports whether the opencc binary can be found.
func (a *Adapter) Available() bool {
	_, err := exec.LookPath(a.bin)
	return err == nil
}

// Convert pipes lines through opencc in one process. Lines must not
// contain newlines.
func (a *Adapter) Convert(ctx context.Context, lines []string) ([]string, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	for i, l := range lines {
		if strings.ContainsAny(l, "\r\n") {
			return nil, fmt.Errorf("opencc: line %d contains a newline", i)
		}
	}
	cmd := exec.CommandContext(ctx, a.bin, "-c", a.config)
	cmd.Stdin = strings.NewReader(strings.Join(lines, "\n") + "\n")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("opencc convert: %w\n%s", err, stderr.String())
	}
	return splitOutput(stdout.String(), len(lines))
}

func splitOutput(out string, want int) ([]string, error) {
	got := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(got) != want {
		return nil, fmt.Errorf("opencc returned %d lines, want %d", len(got), want)
	}
	return got, nil
}
