package tokenizer

import "github.com/pkg/errors"

// Segmenter picks the highest scoring partition of a byte buffer into
// vocabulary pieces. It is safe for concurrent use.
type Segmenter struct {
	vocab *Vocabulary
	cfg   *config
}

// NewSegmenter builds the matcher for v (unless one is supplied) and returns
// a Segmenter.
func NewSegmenter(v *Vocabulary, opts ...Option) *Segmenter {
	return newSegmenter(v, newConfig(v, opts))
}

func newSegmenter(v *Vocabulary, cfg *config) *Segmenter {
	return &Segmenter{vocab: v, cfg: cfg}
}

// Matcher returns the match strategy in use.
func (s *Segmenter) Matcher() Matcher { return s.cfg.matcher }

// Segment returns the pieces of buf, left to right. The pieces alias buf and
// their concatenation is exactly buf. Route memory grows with len(buf); use
// a StreamState for unbounded input.
//
// With alpha > 0 every call samples from sampler stream 0 of the seed, so
// equal inputs give equal samples.
func (s *Segmenter) Segment(buf []byte) ([][]byte, error) {
	return s.segment(buf, 0)
}

func (s *Segmenter) segment(buf []byte, stream uint64) ([][]byte, error) {
	if len(buf) == 0 {
		return nil, nil
	}

	l := newLattice(s.cfg)
	l.reseed(stream)
	for _, b := range buf {
		l.step(b)
	}
	l.settle()

	n := len(buf)
	if !l.reachable(n) {
		return nil, coverageError(l, 0)
	}
	return l.backtrack(n, buf, make([][]byte, 0, n/2+1)), nil
}

// Score sums the vocabulary scores of pieces; pieces outside the vocabulary
// count as the out-of-vocabulary penalty.
func (s *Segmenter) Score(pieces [][]byte) float64 {
	var total float64
	for _, p := range pieces {
		if sc, ok := s.vocab.Score(p); ok {
			total += sc
		} else {
			total += s.cfg.oovPenalty * float64(len(p))
		}
	}
	return total
}

// coverageError reports the first byte offset, counted from the start of the
// stream, that no route reaches.
func coverageError(l *lattice, flushed int) error {
	k := 1
	for k < len(l.route) && l.reachable(k) {
		k++
	}
	return errors.Wrapf(ErrCoverage, "no partition covers the input, first unreachable offset %d", flushed+k)
}
