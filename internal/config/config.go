// Package config resolves lyricgen settings from flags, LYRICGEN_* env
// vars, an optional YAML file and defaults, in that order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/forPelevin/lyricgen/internal/domain/lyrics"
)

const EnvPrefix = "LYRICGEN"

type Settings struct {
	Out          string  `mapstructure:"out"`
	Transcript   string  `mapstructure:"transcript"`
	Traditional  bool    `mapstructure:"traditional"`
	Distribution string  `mapstructure:"distribution"`
	Boundary     string  `mapstructure:"boundary"`
	Gap          float64 `mapstructure:"gap"`
	Language     string  `mapstructure:"language"`
	CacheDir     string  `mapstructure:"cache_dir"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	FFmpegPath   string `mapstructure:"ffmpeg_path"`
	FFprobePath  string `mapstructure:"ffprobe_path"`
	WhisperBin   string `mapstructure:"whisper_bin"`
	WhisperModel string `mapstructure:"whisper_model"`
	OpenCCPath   string `mapstructure:"opencc_path"`
	OpenCCConfig string `mapstructure:"opencc_config"`
}

type option struct {
	key   string
	flag  string // empty when only settable by env or file
	def   any
	usage string
}

var options = []option{
	{"out", "out", "", "Output file (default: <audio>_lyric.txt next to the input)"},
	{"transcript", "transcript", "", "Read a saved whisper JSON transcript instead of running ASR"},
	{"traditional", "traditional", false, "Convert Simplified to Traditional Chinese (needs opencc)"},
	{"distribution", "distribution", lyrics.Shared.String(), "Character timing: shared or even"},
	{"boundary", "boundary", lyrics.ExplicitMarker.String(), "Line breaks: marker or gap"},
	{"gap", "gap", lyrics.DefaultGapSeconds, "Gap threshold in seconds for --boundary gap"},
	{"language", "language", "zh", "Spoken language passed to whisper.cpp"},
	{"cache_dir", "cache-dir", ".cache", "Directory for intermediate artifacts"},
	{"log_level", "log-level", "info", "Log level: trace, debug, info, warn, error"},
	{"log_format", "log-format", "console", "Log format: console or json"},
	{"ffmpeg_path", "", "ffmpeg", ""},
	{"ffprobe_path", "", "ffprobe", ""},
	{"whisper_bin", "", ".cache/bin/whisper.cpp", ""},
	{"whisper_model", "", ".cache/models/ggml-tiny.bin", ""},
	{"opencc_path", "", "opencc", ""},
	{"opencc_config", "", "s2t.json", ""},
}

// RegisterFlags adds the command line flags backing Settings.
func RegisterFlags(fs *pflag.FlagSet) {
	for _, o := range options {
		if o.flag == "" {
			continue
		}
		switch def := o.def.(type) {
		case bool:
			if o.key == "traditional" {
				fs.BoolP(o.flag, "t", def, o.usage)
				continue
			}
			fs.Bool(o.flag, def, o.usage)
		case float64:
			fs.Float64(o.flag, def, o.usage)
		case string:
			fs.String(o.flag, def, o.usage)
		}
	}
}

// Load merges all sources. Only flags the user actually set override env
// and file values.
func Load(fs *pflag.FlagSet, configFile string) (Settings, error) {
	v := viper.New()
	for _, o := range options {
		v.SetDefault(o.key, o.def)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for _, o := range options {
			if o.flag == "" {
				continue
			}
			if f := fs.Lookup(o.flag); f != nil {
				if err := v.BindPFlag(o.key, f); err != nil {
					return Settings{}, fmt.Errorf("bind flag %s: %w", o.flag, err)
				}
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return s, nil
}

func (s Settings) LyricsOptions() (lyrics.Options, error) {
	d, err := lyrics.ParseDistribution(s.Distribution)
	if err != nil {
		return lyrics.Options{}, err
	}
	b, err := lyrics.ParseBoundary(s.Boundary)
	if err != nil {
		return lyrics.Options{}, err
	}
	opts := lyrics.Options{Distribution: d, Boundary: b, GapSeconds: s.Gap}
	if err := opts.Validate(); err != nil {
		return lyrics.Options{}, err
	}
	return opts, nil
}

func (s Settings) Validate() error {
	if _, err := s.LyricsOptions(); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(s.LogLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	switch strings.ToLower(s.LogFormat) {
	case "", "console", "json":
	default:
		return fmt.Errorf("log format must be console or json (got: %s)", s.LogFormat)
	}
	if s.Transcript == "" && s.WhisperModel == "" {
		return fmt.Errorf("whisper model path is required")
	}
	return nil
}
