package tokenizer

import (
	"github.com/armon/go-radix"
)

// LookupMatcher finds pieces by direct lookup of every suffix of the last
// MaxPieceLen bytes. Pieces are stored reversed in a radix tree so a single
// WalkPath over the reversed tail visits every piece ending at the current
// byte, shortest first. It is slower than the Automaton and serves as a
// cross-check for it.
type LookupMatcher struct {
	tree        *radix.Tree
	maxPieceLen int
}

// NewLookupMatcher indexes every piece of v.
func NewLookupMatcher(v *Vocabulary) *LookupMatcher {
	tree := radix.New()
	for _, id := range v.ids {
		piece := v.revVocab[id]
		tree.Insert(reversed(piece), Hit{Len: len(piece), Score: v.scoreOf(id)})
	}
	return &LookupMatcher{tree: tree, maxPieceLen: v.maxPieceLen}
}

func (m *LookupMatcher) MaxPieceLen() int { return m.maxPieceLen }

func (m *LookupMatcher) NewScanner() Scanner {
	return &lookupScanner{
		m:    m,
		tail: make([]byte, 0, m.maxPieceLen),
		rev:  make([]byte, 0, m.maxPieceLen),
	}
}

type lookupScanner struct {
	m    *LookupMatcher
	tail []byte // last maxPieceLen bytes, oldest first
	rev  []byte
	hits []Hit
}

func (sc *lookupScanner) Step(b byte) []Hit {
	if sc.m.maxPieceLen == 0 {
		return nil
	}
	if len(sc.tail) == sc.m.maxPieceLen {
		copy(sc.tail, sc.tail[1:])
		sc.tail = sc.tail[:len(sc.tail)-1]
	}
	sc.tail = append(sc.tail, b)

	sc.rev = sc.rev[:0]
	for i := len(sc.tail) - 1; i >= 0; i-- {
		sc.rev = append(sc.rev, sc.tail[i])
	}

	sc.hits = sc.hits[:0]
	sc.m.tree.WalkPath(string(sc.rev), func(_ string, v interface{}) bool {
		sc.hits = append(sc.hits, v.(Hit))
		return false
	})
	return sc.hits
}

func (sc *lookupScanner) Reset() {
	sc.tail = sc.tail[:0]
}

func reversed(piece []byte) string {
	out := make([]byte, len(piece))
	for i, b := range piece {
		out[len(piece)-1-i] = b
	}
	return string(out)
}
