package tokenizer

const fastLookupSize = 2048

// TransitionLookup resolves automaton transitions using a hybrid approach:
// - full 256-entry rows for the shallowest states (O(1) lookup, failure links folded in)
// - goto-edge map plus failure links for deeper states
//
// States are numbered in breadth-first order, so the dense rows cover exactly
// the states closest to the root, which are the ones visited most.
type TransitionLookup struct {
	fastLookup     [][256]int32
	fastLookupSize int
	fallback       map[uint64]int32
	fail           []int32
}

// NewTransitionLookup builds the lookup from goto edges (packed state<<8|byte)
// and failure links. fail[s] < s must hold for every s > 0.
func NewTransitionLookup(edges map[uint64]int32, fail []int32) *TransitionLookup {
	size := fastLookupSize
	if len(fail) < size {
		size = len(fail)
	}

	fastLookup := make([][256]int32, size)
	for s := 0; s < size; s++ {
		for b := 0; b < 256; b++ {
			if t, ok := edges[packTransition(int32(s), byte(b))]; ok {
				fastLookup[s][b] = t
			} else if s > 0 {
				fastLookup[s][b] = fastLookup[fail[s]][b]
			}
		}
	}

	fallback := make(map[uint64]int32, len(edges)/2)
	for key, t := range edges {
		if int(key>>8) >= size {
			fallback[key] = t
		}
	}

	return &TransitionLookup{
		fastLookup:     fastLookup,
		fastLookupSize: size,
		fallback:       fallback,
		fail:           fail,
	}
}

// Next returns the state reached from s on byte b.
func (tl *TransitionLookup) Next(s int32, b byte) int32 {
	for {
		if int(s) < tl.fastLookupSize {
			return tl.fastLookup[s][b]
		}
		if t, ok := tl.fallback[packTransition(s, b)]; ok {
			return t
		}
		s = tl.fail[s]
	}
}

func packTransition(s int32, b byte) uint64 {
	return uint64(s)<<8 | uint64(b)
}
