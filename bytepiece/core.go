// Package bytepiece is the public entry point of the tokenizer. It loads a
// piece table and segments raw bytes into the pieces of highest total
// log-probability, in one shot or as a stream with bounded memory.
package bytepiece

import (
	"github.com/bytepiece/internal/model"
	"github.com/bytepiece/internal/normalize"
	"github.com/bytepiece/internal/tokenizer"
)

type (
	// Tokenizer maps text to ids and back. Safe for concurrent use.
	Tokenizer = tokenizer.Tokenizer
	// Vocabulary is the immutable piece table.
	Vocabulary = tokenizer.Vocabulary
	// Entry is one row of a piece table.
	Entry = tokenizer.Entry
	// Segmenter picks the best partition of a byte buffer.
	Segmenter = tokenizer.Segmenter
	// StreamState segments unbounded input chunk by chunk.
	StreamState = tokenizer.StreamState
	// Encoder streams bytes to ids. The returned ids are final.
	Encoder = tokenizer.Encoder
	// Decoder streams ids to raw bytes.
	Decoder = tokenizer.Decoder
	// Matcher is a multi-pattern index over the vocabulary.
	Matcher = tokenizer.Matcher
	// Scanner is the per-stream state of a Matcher.
	Scanner = tokenizer.Scanner
	// Match is one piece occurrence.
	Match = tokenizer.Match
	// Option configures a Tokenizer or Segmenter.
	Option = tokenizer.Option
	// Normalizer canonicalizes text before encoding.
	Normalizer = tokenizer.Normalizer
)

const (
	PadID = tokenizer.PadID
	BosID = tokenizer.BosID
	EosID = tokenizer.EosID
)

var (
	ErrInvalidModel = tokenizer.ErrInvalidModel
	ErrUnknownID    = tokenizer.ErrUnknownID
	ErrCoverage     = tokenizer.ErrCoverage
)

var (
	WithMatcher       = tokenizer.WithMatcher
	WithFallback      = tokenizer.WithFallback
	WithOOVPenalty    = tokenizer.WithOOVPenalty
	WithAlpha         = tokenizer.WithAlpha
	WithSeed          = tokenizer.WithSeed
	WithMaxWindow     = tokenizer.WithMaxWindow
	WithNormalizer    = tokenizer.WithNormalizer
	WithMaxSegmentLen = tokenizer.WithMaxSegmentLen
	WithWorkers       = tokenizer.WithWorkers
	WithChunkSize     = tokenizer.WithChunkSize
	WithLogger        = tokenizer.WithLogger
)

var (
	NFC  Normalizer = normalize.NFC
	NFKC Normalizer = normalize.NFKC
)

// New returns a Tokenizer over v.
func New(v *Vocabulary, opts ...Option) *Tokenizer {
	return tokenizer.New(v, opts...)
}

// NewVocabulary validates entries and builds a piece table.
func NewVocabulary(entries []Entry) (*Vocabulary, error) {
	return tokenizer.NewVocabulary(entries)
}

// NewSegmenter returns a Segmenter over v.
func NewSegmenter(v *Vocabulary, opts ...Option) *Segmenter {
	return tokenizer.NewSegmenter(v, opts...)
}

// NewAutomaton builds the default Aho-Corasick matcher.
func NewAutomaton(v *Vocabulary) Matcher { return tokenizer.NewAutomaton(v) }

// NewLookupMatcher builds the suffix lookup matcher.
func NewLookupMatcher(v *Vocabulary) Matcher { return tokenizer.NewLookupMatcher(v) }

// LoadModel reads a model file and builds its vocabulary.
func LoadModel(path string) (*Vocabulary, error) {
	return model.Load(path)
}

// Load reads a model file and returns a Tokenizer over it.
func Load(path string, opts ...Option) (*Tokenizer, error) {
	v, err := model.Load(path)
	if err != nil {
		return nil, err
	}
	return tokenizer.New(v, opts...), nil
}
