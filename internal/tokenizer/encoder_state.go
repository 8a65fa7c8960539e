package tokenizer

import (
	"bytes"

	"github.com/rs/zerolog"

	"github.com/bytepiece/internal/utils"
)

// StreamState segments unbounded input with memory bounded by the window
// instead of the input length.
//
// Route entries more than maxPieceLen bytes behind the frontier can no longer
// change, so every partition of the whole stream passes through one of the
// last maxPieceLen positions. The stream keeps the route until the
// predecessor chains of all those positions meet; the common prefix is then
// final and is emitted. Output is identical to Segmenter.Segment on the
// concatenated input unless the window cap forces a cut (see WithMaxWindow).
// Every forced cut is logged at warn level and counted by ForcedCuts.
//
// With alpha > 0 the n-th run (runs end at Finish) samples from sampler
// stream n, the same stream Tokenizer.Tokenize uses for its n-th segment.
//
// A StreamState is not safe for concurrent use.
type StreamState struct {
	lat         *lattice
	maxPieceLen int
	maxWindow   int
	logger      zerolog.Logger

	queue      *utils.BucketQueue
	sinceCheck int
	flushed    int    // bytes emitted since the last Finish
	run        uint64 // sampler stream of the current run
	peak       int
	forcedCuts int
	err        error
}

// NewStream returns a stream sharing this Segmenter's vocabulary and matcher.
func (s *Segmenter) NewStream() *StreamState {
	maxLen := s.cfg.matcher.MaxPieceLen()
	if maxLen < 1 {
		maxLen = 1
	}
	return &StreamState{
		lat:         newLattice(s.cfg),
		maxPieceLen: maxLen,
		maxWindow:   s.cfg.maxWindow,
		logger:      s.cfg.logger,
		queue:       utils.NewBucketQueue(2 * maxLen),
	}
}

// Push consumes the next chunk of raw bytes and returns any pieces that no
// later input can change. Returned pieces do not alias chunk.
func (st *StreamState) Push(chunk []byte) [][]byte {
	if st.err != nil {
		return nil
	}

	var out [][]byte
	for _, b := range chunk {
		st.lat.step(b)
		if n := len(st.lat.buf); n > st.peak {
			st.peak = n
		}

		st.sinceCheck++
		if st.sinceCheck < st.maxPieceLen {
			continue
		}
		st.sinceCheck = 0

		out = st.emitCommitted(out)
		if st.err != nil {
			return out
		}
	}
	return out
}

// Finish emits the remaining pieces and resets the stream for reuse. An
// empty stream yields no pieces and no error.
func (st *StreamState) Finish() ([][]byte, error) {
	defer st.reset()

	if st.err != nil {
		return nil, st.err
	}

	l := st.lat
	l.settle()
	end := len(l.buf)
	if end == 0 {
		return nil, nil
	}
	if !l.reachable(end) {
		return nil, coverageError(l, st.flushed)
	}
	return l.backtrack(end, bytes.Clone(l.buf), nil), nil
}

// Err returns the sticky coverage error, if any.
func (st *StreamState) Err() error { return st.err }

// Retained is the number of bytes currently held in the window.
func (st *StreamState) Retained() int { return len(st.lat.buf) }

// PeakRetained is the largest window observed since the stream was created.
func (st *StreamState) PeakRetained() int { return st.peak }

// ForcedCuts counts the cuts the window cap has forced since the stream was
// created. Output after a forced cut may differ from Segmenter.Segment.
func (st *StreamState) ForcedCuts() int { return st.forcedCuts }

// reset ends the current run and moves the sampler to the next stream.
func (st *StreamState) reset() {
	st.lat.reset()
	st.sinceCheck = 0
	st.flushed = 0
	st.err = nil
	st.run++
	st.lat.reseed(st.run)
}

// restart drops any buffered input and rewinds the sampler to stream 0.
func (st *StreamState) restart() {
	st.reset()
	st.run = 0
	st.lat.reseed(0)
}

func (st *StreamState) emitCommitted(out [][]byte) [][]byte {
	l := st.lat
	l.settle()

	pos := len(l.buf)
	lo := pos - st.maxPieceLen + 1
	if lo < 0 {
		lo = 0
	}

	c, ok := st.convergence(lo, pos)
	if !ok {
		st.err = coverageError(l, st.flushed)
		return out
	}
	if c > 0 {
		out = st.commit(c, out)
	}

	if st.maxWindow > 0 && len(l.buf) > st.maxWindow {
		out = st.forceCommit(out)
	}
	return out
}

// convergence returns the latest position shared by the predecessor chains
// of every reachable position in [lo, hi]. ok is false when none is
// reachable, in which case nothing after hi can be reached either.
func (st *StreamState) convergence(lo, hi int) (int, bool) {
	l := st.lat
	q := st.queue
	q.Reset(hi)
	for k := lo; k <= hi; k++ {
		if l.reachable(k) {
			q.Push(k)
		}
	}
	if q.Len() == 0 {
		return 0, false
	}

	for q.Len() > 1 {
		top, _ := q.Pop()
		q.Push(l.route[top].prev)
	}
	c, _ := q.Pop()
	return c, true
}

// commit emits the best partition of [0, c) and rebases the window at c.
func (st *StreamState) commit(c int, out [][]byte) [][]byte {
	l := st.lat
	out = l.backtrack(c, bytes.Clone(l.buf[:c]), out)
	l.rebase(c)
	st.flushed += c
	return out
}

// forceCommit cuts the window when the candidate chains failed to converge
// within maxWindow bytes. The chain of the latest reachable position is
// committed up to maxPieceLen bytes behind the frontier and the rest of the
// window is re-segmented as if the input started there.
func (st *StreamState) forceCommit(out [][]byte) [][]byte {
	l := st.lat
	k := len(l.buf)
	for k > 0 && !l.reachable(k) {
		k--
	}

	target := len(l.buf) - st.maxPieceLen
	for k > target {
		k = l.route[k].prev
	}
	if k <= 0 {
		return out
	}

	out = st.commit(k, out)
	st.forcedCuts++
	st.logger.Warn().
		Int("offset", st.flushed).
		Int("max_window", st.maxWindow).
		Int("forced_cuts", st.forcedCuts).
		Msg("stream window cap reached, forcing a cut")

	tail := bytes.Clone(l.buf)
	l.reset()
	for _, b := range tail {
		l.step(b)
	}
	return out
}
