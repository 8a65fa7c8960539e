package tokenizer

// Automaton is an Aho-Corasick matcher over the byte alphabet. It reports
// every piece ending at every position, overlapping matches included.
type Automaton struct {
	trans       *TransitionLookup
	out         [][]Hit // out[s]: pieces that are suffixes of state s, shortest first
	maxPieceLen int
	numStates   int
}

type trieEdge struct {
	b  byte
	to int32
}

// NewAutomaton builds the automaton once for all pieces of v.
func NewAutomaton(v *Vocabulary) *Automaton {
	// step 1: plain trie, states numbered in insertion order
	children := [][]trieEdge{nil}
	pieceAt := []int32{-1}
	tmpEdges := make(map[uint64]int32, len(v.ids)*2)
	for _, id := range v.ids {
		s := int32(0)
		for _, b := range v.revVocab[id] {
			key := packTransition(s, b)
			next, ok := tmpEdges[key]
			if !ok {
				next = int32(len(pieceAt))
				tmpEdges[key] = next
				children[s] = append(children[s], trieEdge{b: b, to: next})
				children = append(children, nil)
				pieceAt = append(pieceAt, -1)
			}
			s = next
		}
		pieceAt[s] = int32(id)
	}

	// step 2: renumber breadth-first so shallow states get small ids
	n := len(pieceAt)
	order := make([]int32, 1, n)
	for i := 0; i < len(order); i++ {
		for _, e := range children[order[i]] {
			order = append(order, e.to)
		}
	}
	rank := make([]int32, n)
	for newID, old := range order {
		rank[old] = int32(newID)
	}

	edges := make(map[uint64]int32, len(tmpEdges))
	for old, es := range children {
		for _, e := range es {
			edges[packTransition(rank[old], e.b)] = rank[e.to]
		}
	}

	// step 3: failure links, parents before children
	fail := make([]int32, n)
	for _, old := range order {
		u := rank[old]
		for _, e := range children[old] {
			child := rank[e.to]
			if u == 0 {
				continue
			}
			f := fail[u]
			for {
				if t, ok := edges[packTransition(f, e.b)]; ok {
					fail[child] = t
					break
				}
				if f == 0 {
					break
				}
				f = fail[f]
			}
		}
	}

	// step 4: output lists; the failure state is shallower so it is already done
	out := make([][]Hit, n)
	for newID, old := range order {
		inherited := out[fail[newID]]
		id := pieceAt[old]
		if id < 0 {
			out[newID] = inherited
			continue
		}
		hits := make([]Hit, len(inherited), len(inherited)+1)
		copy(hits, inherited)
		piece := v.revVocab[id]
		out[newID] = append(hits, Hit{Len: len(piece), Score: v.scoreOf(int(id))})
	}

	return &Automaton{
		trans:       NewTransitionLookup(edges, fail),
		out:         out,
		maxPieceLen: v.maxPieceLen,
		numStates:   n,
	}
}

// MaxPieceLen bounds how far back a hit can start.
func (a *Automaton) MaxPieceLen() int { return a.maxPieceLen }

// NumStates returns the number of trie states, root included.
func (a *Automaton) NumStates() int { return a.numStates }

// NewScanner returns a scanner positioned at the root.
func (a *Automaton) NewScanner() Scanner {
	return &automatonScanner{a: a}
}

type automatonScanner struct {
	a     *Automaton
	state int32
}

func (sc *automatonScanner) Step(b byte) []Hit {
	sc.state = sc.a.trans.Next(sc.state, b)
	return sc.a.out[sc.state]
}

func (sc *automatonScanner) Reset() { sc.state = 0 }
