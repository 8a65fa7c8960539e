package main

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/bytepiece/internal/model"
	"github.com/bytepiece/internal/tokenizer"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	path := filepath.Join("testdata", "model", "bytepiece.model")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	v, err := model.Load(path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", path).Msg("failed to load model")
	}

	a := tokenizer.NewAutomaton(v)
	logger.Info().
		Str("path", path).
		Int("vocab_size", v.VocabSize()).
		Int("max_piece_len", v.MaxPieceLen()).
		Float64("min_score", v.MinScore()).
		Int("states", a.NumStates()).
		Msg("model loaded and pieces are unique")
}
