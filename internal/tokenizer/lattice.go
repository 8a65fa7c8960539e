package tokenizer

import (
	"math"
	"math/rand/v2"
	"slices"
)

var negInf = math.Inf(-1)

type routeEntry struct {
	score float64
	prev  int // start of the last piece, relative to the window origin
}

// lattice is the Viterbi route over a window of bytes. route[k] is the best
// partition of buf[:k]; route[0] is the window origin and always final.
type lattice struct {
	cfg   *config
	sc    Scanner
	src   *rand.PCG // nil unless alpha > 0
	rng   *rand.Rand
	buf   []byte
	route []routeEntry
}

func newLattice(cfg *config) *lattice {
	l := &lattice{
		cfg: cfg,
		sc:  cfg.matcher.NewScanner(),
	}
	if cfg.alpha > 0 {
		l.src = rand.NewPCG(cfg.seed, 0)
		l.rng = rand.New(l.src)
	}
	l.reset()
	return l
}

// reseed restarts the sampler on the given stream of the configured seed.
// Segment n of one call always samples from stream n.
func (l *lattice) reseed(stream uint64) {
	if l.src != nil {
		l.src.Seed(l.cfg.seed, stream)
	}
}

func (l *lattice) reset() {
	l.buf = l.buf[:0]
	l.route = append(l.route[:0], routeEntry{score: 0, prev: 0})
	l.sc.Reset()
}

// settle forces a single-byte piece onto the frontier if no piece reached it.
// It must run after every piece ending before the frontier has been applied.
func (l *lattice) settle() {
	k := len(l.buf)
	if k == 0 || !l.cfg.fallback || !math.IsInf(l.route[k].score, -1) {
		return
	}
	l.route[k] = routeEntry{score: l.route[k-1].score + l.cfg.oovPenalty, prev: k - 1}
}

// step consumes one byte and relaxes every route entry it completes.
func (l *lattice) step(b byte) {
	l.settle()
	l.buf = append(l.buf, b)
	l.route = append(l.route, routeEntry{score: negInf})

	end := len(l.buf)
	for _, h := range l.sc.Step(b) {
		start := end - h.Len
		if start < 0 {
			continue
		}
		base := l.route[start].score
		if math.IsInf(base, -1) {
			continue
		}
		if cand := base + h.Score; l.accept(cand, l.route[end].score) {
			l.route[end] = routeEntry{score: cand, prev: start}
		}
	}
}

// accept is the route update rule: argmax when alpha <= 0, otherwise keep
// the candidate with probability sigmoid((cand - cur) * alpha). Equal
// candidates keep the earlier predecessor under argmax.
func (l *lattice) accept(cand, cur float64) bool {
	if l.cfg.alpha <= 0 {
		return cand > cur
	}
	return l.rng.Float64() < sigmoid((cand-cur)*l.cfg.alpha)
}

func (l *lattice) reachable(k int) bool {
	return !math.IsInf(l.route[k].score, -1)
}

// backtrack appends, left to right, the pieces of the best partition of
// [0, end), sliced out of src which must mirror buf.
func (l *lattice) backtrack(end int, src []byte, dst [][]byte) [][]byte {
	first := len(dst)
	for end > 0 {
		start := l.route[end].prev
		dst = append(dst, src[start:end])
		end = start
	}
	slices.Reverse(dst[first:])
	return dst
}

// rebase drops everything before c and makes c the new origin. Scores stay
// absolute so sums are bit-identical to an unwindowed run.
func (l *lattice) rebase(c int) {
	n := copy(l.buf, l.buf[c:])
	l.buf = l.buf[:n]
	m := copy(l.route, l.route[c:])
	l.route = l.route[:m]
	for k := range l.route {
		l.route[k].prev -= c
	}
	l.route[0].prev = 0
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	return 1 - 1/(1+math.Exp(x))
}
