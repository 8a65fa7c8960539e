package tokenizer

import (
	"io"
	"runtime"

	"github.com/rs/zerolog"
)

const (
	defaultChunkSize      = 64 * 1024
	defaultWindowPerPiece = 64
	minWindowPerPiece     = 2
	maxNewlineRun         = 100
)

// Normalizer canonicalizes text before segmentation. The reader form is
// used when encoding streams so that normalization never splits a
// composed sequence across chunk boundaries.
type Normalizer interface {
	String(s string) string
	Reader(r io.Reader) io.Reader
}

type config struct {
	matcher    Matcher
	fallback   bool
	oovPenalty float64
	hasPenalty bool
	alpha      float64
	seed       uint64
	maxWindow  int
	hasWindow  bool

	normalizer    Normalizer
	maxSegmentLen int
	workers       int
	chunkSize     int
	logger        zerolog.Logger
}

// Option configures a Segmenter or a Tokenizer.
type Option func(*config)

// WithMatcher replaces the default Aho-Corasick automaton.
func WithMatcher(m Matcher) Option {
	return func(c *config) { c.matcher = m }
}

// WithFallback toggles the forced single-byte piece for positions no
// vocabulary piece reaches. When disabled such input fails with ErrCoverage.
func WithFallback(enabled bool) Option {
	return func(c *config) { c.fallback = enabled }
}

// WithOOVPenalty sets the score of a forced single-byte piece. The default
// is the score of the least likely vocabulary piece.
func WithOOVPenalty(p float64) Option {
	return func(c *config) {
		c.oovPenalty = p
		c.hasPenalty = true
	}
}

// WithAlpha enables sampled segmentation for alpha > 0.
func WithAlpha(alpha float64) Option {
	return func(c *config) { c.alpha = alpha }
}

// WithSeed seeds the sampler used when alpha > 0.
func WithSeed(seed uint64) Option {
	return func(c *config) { c.seed = seed }
}

// WithMaxWindow caps the bytes a stream may retain while waiting for its
// candidate routes to converge. n <= 0 removes the cap. The default is
// 64 times the longest piece.
func WithMaxWindow(n int) Option {
	return func(c *config) {
		c.maxWindow = n
		c.hasWindow = true
	}
}

// WithNormalizer canonicalizes input text before encoding.
func WithNormalizer(n Normalizer) Option {
	return func(c *config) { c.normalizer = n }
}

// WithMaxSegmentLen caps the non-newline bytes of one segment. 0 means
// segments run to the next newline.
func WithMaxSegmentLen(n int) Option {
	return func(c *config) { c.maxSegmentLen = n }
}

// WithWorkers bounds the goroutines used by EncodeBatch.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithChunkSize sets the read size used by EncodeReader.
func WithChunkSize(n int) Option {
	return func(c *config) { c.chunkSize = n }
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.logger = l }
}

func newConfig(v *Vocabulary, opts []Option) *config {
	c := &config{
		fallback:  true,
		workers:   runtime.GOMAXPROCS(0),
		chunkSize: defaultChunkSize,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.matcher == nil {
		c.matcher = NewAutomaton(v)
	}
	if !c.hasPenalty {
		c.oovPenalty = v.MinScore()
	}

	maxLen := c.matcher.MaxPieceLen()
	switch {
	case !c.hasWindow:
		c.maxWindow = defaultWindowPerPiece * maxLen
	case c.maxWindow > 0 && c.maxWindow < minWindowPerPiece*maxLen:
		c.maxWindow = minWindowPerPiece * maxLen
	}

	if c.workers < 1 {
		c.workers = 1
	}
	if c.chunkSize < 1 {
		c.chunkSize = defaultChunkSize
	}
	return c
}
