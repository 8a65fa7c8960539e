package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bytepiece/internal/normalize"
	"github.com/bytepiece/internal/tokenizer"
)

const (
	DefaultAppName = "bytepiece"
	EnvPrefix      = "BYTEPIECE"
)

// Config stores the settings shared by the commands.
// The values are read by viper from flags, environment variables or a config file.
type Config struct {
	Model         string  `mapstructure:"model"`
	Matcher       string  `mapstructure:"matcher"`
	Alpha         float64 `mapstructure:"alpha"`
	Seed          uint64  `mapstructure:"seed"`
	Normalize     string  `mapstructure:"normalize"`
	Fallback      bool    `mapstructure:"fallback"`
	MaxSegmentLen int     `mapstructure:"max_segment_len"`
	MaxWindow     int     `mapstructure:"max_window"`
	Workers       int     `mapstructure:"workers"`
	ChunkSize     int     `mapstructure:"chunk_size"`
	AddBOS        bool    `mapstructure:"add_bos"`
	AddEOS        bool    `mapstructure:"add_eos"`
	LogLevel      string  `mapstructure:"log_level"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"model":           "model",
	"matcher":         "matcher",
	"alpha":           "alpha",
	"seed":            "seed",
	"normalize":       "normalize",
	"fallback":        "fallback",
	"max-segment-len": "max_segment_len",
	"max-window":      "max_window",
	"workers":         "workers",
	"chunk-size":      "chunk_size",
	"bos":             "add_bos",
	"eos":             "add_eos",
	"log-level":       "log_level",
}

// RegisterFlags declares every configurable flag on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default ./config.yaml or ~/.config/bytepiece/config.yaml)")
	fs.String("model", "", "path to the model file")
	fs.String("matcher", "automaton", "match strategy: automaton or lookup")
	fs.Float64("alpha", 0, "sampling temperature; <= 0 picks the best segmentation")
	fs.Uint64("seed", 0, "sampler seed used when alpha > 0")
	fs.String("normalize", "", "unicode normalization applied before encoding: nfc, nfkc or empty")
	fs.Bool("fallback", true, "force single-byte pieces where no vocabulary piece fits")
	fs.Int("max-segment-len", 0, "cap on non-newline bytes per segment, 0 for none")
	fs.Int("max-window", 0, "stream window cap in bytes, 0 for 64 x longest piece, negative for none")
	fs.Int("workers", 0, "batch encoding workers, 0 for GOMAXPROCS")
	fs.Int("chunk-size", 64*1024, "read size for streaming input")
	fs.Bool("bos", false, "prepend <bos>")
	fs.Bool("eos", false, "append <eos>")
	fs.String("log-level", "info", "log level")
}

// Load reads configuration from flags, environment and an optional file.
// fs may be nil.
func Load(configPath string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", DefaultAppName))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// every key needs a default so that environment-only values reach Unmarshal
	v.SetDefault("model", "")
	v.SetDefault("matcher", "automaton")
	v.SetDefault("alpha", 0.0)
	v.SetDefault("seed", 0)
	v.SetDefault("normalize", "")
	v.SetDefault("fallback", true)
	v.SetDefault("max_segment_len", 0)
	v.SetDefault("max_window", 0)
	v.SetDefault("workers", 0)
	v.SetDefault("chunk_size", 64*1024)
	v.SetDefault("add_bos", false)
	v.SetDefault("add_eos", false)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "binding flag %s", name)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unable to decode into struct")
	}
	return &cfg, nil
}

// TokenizerOptions translates the configuration into tokenizer options.
// The matcher is resolved separately because it needs the vocabulary.
func (c *Config) TokenizerOptions() ([]tokenizer.Option, error) {
	opts := []tokenizer.Option{
		tokenizer.WithAlpha(c.Alpha),
		tokenizer.WithSeed(c.Seed),
		tokenizer.WithFallback(c.Fallback),
		tokenizer.WithMaxSegmentLen(c.MaxSegmentLen),
	}
	if c.MaxWindow != 0 {
		opts = append(opts, tokenizer.WithMaxWindow(c.MaxWindow))
	}
	if c.Workers > 0 {
		opts = append(opts, tokenizer.WithWorkers(c.Workers))
	}
	if c.ChunkSize > 0 {
		opts = append(opts, tokenizer.WithChunkSize(c.ChunkSize))
	}
	if c.Normalize != "" {
		form, ok := normalize.ByName(c.Normalize)
		if !ok {
			return nil, errors.Errorf("unknown normalization %q", c.Normalize)
		}
		opts = append(opts, tokenizer.WithNormalizer(form))
	}
	return opts, nil
}

// NewMatcher builds the configured match strategy for v.
func (c *Config) NewMatcher(v *tokenizer.Vocabulary) (tokenizer.Matcher, error) {
	switch c.Matcher {
	case "", "automaton":
		return tokenizer.NewAutomaton(v), nil
	case "lookup":
		return tokenizer.NewLookupMatcher(v), nil
	}
	return nil, errors.Errorf("unknown matcher %q", c.Matcher)
}

// Logger returns a console logger on stderr at the configured level.
func (c *Config) Logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
