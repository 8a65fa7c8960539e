package tokenizer

import "iter"

// Hit is a vocabulary piece ending at the byte just consumed by a Scanner.
type Hit struct {
	Len   int
	Score float64
}

// Match is a piece occurrence in a scanned buffer: buf[End-Len+1 : End+1]
// is a vocabulary piece.
type Match struct {
	End   int
	Len   int
	Score float64
}

// Scanner carries the per-stream matching state. It is not safe for
// concurrent use; every stream owns its own Scanner.
type Scanner interface {
	// Step consumes the next byte and returns every piece ending at it,
	// ordered by increasing length. The returned slice is only valid until
	// the next call to Step or Reset and must be treated as read-only.
	Step(b byte) []Hit

	// Reset forgets all consumed bytes.
	Reset()
}

// Matcher is the immutable multi-pattern index built once from a
// Vocabulary. It is safe for concurrent use.
type Matcher interface {
	NewScanner() Scanner
	MaxPieceLen() int
}

// Scan lazily yields every piece occurrence in buf in non-decreasing order
// of end position.
func Scan(m Matcher, buf []byte) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		sc := m.NewScanner()
		for end, b := range buf {
			for _, h := range sc.Step(b) {
				if !yield(Match{End: end, Len: h.Len, Score: h.Score}) {
					return
				}
			}
		}
	}
}
