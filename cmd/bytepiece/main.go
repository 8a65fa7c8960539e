// Command bytepiece encodes text to piece ids, decodes ids back to text and
// prints segmentations.
//
// Usage:
//
//	bytepiece encode   [flags] [file]
//	bytepiece decode   [flags] [file]
//	bytepiece tokenize [flags] [file]
//
// Input defaults to stdin. Every flag can also be set in config.yaml or as
// BYTEPIECE_<KEY> in the environment.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/bytepiece/internal/config"
	"github.com/bytepiece/internal/model"
	"github.com/bytepiece/internal/tokenizer"
)

const decodeBatch = 4096

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	var run func(context.Context, *tokenizer.Tokenizer, *config.Config, io.Reader, io.Writer) error
	switch cmd {
	case "encode":
		run = encode
	case "decode":
		run = decode
	case "tokenize":
		run = tokenize
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "bytepiece: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	fs := pflag.NewFlagSet(cmd, pflag.ExitOnError)
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[2:])

	configPath, _ := fs.GetString("config")
	cfg, err := config.Load(configPath, fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bytepiece: %v\n", err)
		os.Exit(1)
	}
	logger := cfg.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, cmd, run, cfg, fs.Args(), logger); err != nil {
		logger.Error().Err(err).Str("command", cmd).Msg("failed")
		stop()
		os.Exit(1)
	}
}

func execute(
	ctx context.Context,
	cmd string,
	run func(context.Context, *tokenizer.Tokenizer, *config.Config, io.Reader, io.Writer) error,
	cfg *config.Config,
	args []string,
	logger zerolog.Logger,
) error {
	t, err := newTokenizer(cfg, logger)
	if err != nil {
		return err
	}

	in := io.Reader(os.Stdin)
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return errors.Wrap(err, "opening input")
		}
		defer f.Close()
		in = f
	}

	out := bufio.NewWriter(os.Stdout)
	if err := run(ctx, t, cfg, in, out); err != nil {
		return err
	}
	if err := out.Flush(); err != nil {
		return errors.Wrap(err, "writing output")
	}
	logger.Debug().Str("command", cmd).Msg("done")
	return nil
}

func newTokenizer(cfg *config.Config, logger zerolog.Logger) (*tokenizer.Tokenizer, error) {
	if cfg.Model == "" {
		return nil, errors.New("no model given, set --model or BYTEPIECE_MODEL")
	}
	v, err := model.Load(cfg.Model)
	if err != nil {
		return nil, err
	}
	m, err := cfg.NewMatcher(v)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.TokenizerOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, tokenizer.WithMatcher(m), tokenizer.WithLogger(logger))
	return tokenizer.New(v, opts...), nil
}

// encode writes the ids of the whole input on one line.
func encode(ctx context.Context, t *tokenizer.Tokenizer, cfg *config.Config, in io.Reader, out io.Writer) error {
	first := true
	err := t.EncodeReader(ctx, in, cfg.AddBOS, cfg.AddEOS, func(ids []int) error {
		for _, id := range ids {
			if !first {
				if _, err := io.WriteString(out, " "); err != nil {
					return err
				}
			}
			first = false
			if _, err := io.WriteString(out, strconv.Itoa(id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, "\n")
	return err
}

// decode reads whitespace separated ids and writes the raw piece bytes.
func decode(ctx context.Context, t *tokenizer.Tokenizer, _ *config.Config, in io.Reader, out io.Writer) error {
	dec := t.NewDecoder()
	sc := bufio.NewScanner(in)
	sc.Split(bufio.ScanWords)

	ids := make([]int, 0, decodeBatch)
	flush := func() error {
		raw, err := dec.Feed(ids)
		if err != nil {
			return err
		}
		ids = ids[:0]
		_, err = out.Write(raw)
		return err
	}

	for sc.Scan() {
		id, err := strconv.Atoi(sc.Text())
		if err != nil {
			return errors.Wrapf(err, "parsing id %q", sc.Text())
		}
		ids = append(ids, id)
		if len(ids) == decodeBatch {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "reading ids")
	}
	return flush()
}

// tokenize prints the pieces of every segment, one segment per line.
func tokenize(ctx context.Context, t *tokenizer.Tokenizer, cfg *config.Config, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	sc.Split(tokenizer.SplitSegments(cfg.MaxSegmentLen))

	var line strings.Builder
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		pieces, err := t.Tokenize(sc.Text())
		if err != nil {
			return err
		}

		line.Reset()
		for i, p := range pieces {
			if i > 0 {
				line.WriteByte(' ')
			}
			line.WriteString(strconv.Quote(string(p)))
		}
		line.WriteByte('\n')
		if _, err := io.WriteString(out, line.String()); err != nil {
			return err
		}
	}
	return errors.Wrap(sc.Err(), "reading input")
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: bytepiece <command> [flags] [file]

commands:
  encode     print the piece ids of the input
  decode     print the text of whitespace separated ids
  tokenize   print the pieces of every input segment

run "bytepiece <command> --help" for the flags.
`)
}
