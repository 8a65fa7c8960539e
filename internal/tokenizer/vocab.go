package tokenizer

import (
	"math"

	"github.com/pkg/errors"
)

// Sentinel ids are fixed and never matched against text.
const (
	PadID = 0
	BosID = 1
	EosID = 2

	numSentinels = 3
)

var sentinelPieces = [numSentinels]string{"<pad>", "<bos>", "<eos>"}

// Entry is one row of an externally loaded piece table.
type Entry struct {
	Piece []byte
	ID    int
	Freq  int64
}

// Vocabulary holds the immutable piece table, safe for concurrent use.
// Invariants we maintain:
//   - revVocab[id] is the exact byte sequence of piece id, nil for holes.
//   - pieceToID[string(revVocab[id])] == id for every real piece.
//   - scores[id] = log(freq) - log(sum of all freqs), always <= 0.
type Vocabulary struct {
	revVocab  [][]byte
	pieceToID map[string]int
	scores    []float64
	// ids of real pieces in table order, used to seed the matchers
	ids []int

	maxPieceLen int
	minScore    float64
}

// NewVocabulary validates the entries and builds the table. Ids 0..2 are
// reserved for <pad>, <bos> and <eos>.
func NewVocabulary(entries []Entry) (*Vocabulary, error) {
	if len(entries) == 0 {
		return nil, errors.Wrap(ErrInvalidModel, "no pieces")
	}

	maxID := numSentinels - 1
	var total float64
	for i, e := range entries {
		if len(e.Piece) == 0 {
			return nil, errors.Wrapf(ErrInvalidModel, "empty piece at row %d (id %d)", i, e.ID)
		}
		if e.ID < numSentinels {
			return nil, errors.Wrapf(ErrInvalidModel, "id %d of piece %q collides with the sentinel range", e.ID, e.Piece)
		}
		if e.Freq <= 0 {
			return nil, errors.Wrapf(ErrInvalidModel, "non-positive frequency %d for piece %q", e.Freq, e.Piece)
		}
		// tables are indexed by id, so ids may be sparse but not unbounded
		if e.ID > maxSparseID(len(entries)) {
			return nil, errors.Wrapf(ErrInvalidModel, "id %d of piece %q is out of range for %d pieces", e.ID, e.Piece, len(entries))
		}
		if e.ID > maxID {
			maxID = e.ID
		}
		total += float64(e.Freq)
	}

	v := &Vocabulary{
		revVocab:  make([][]byte, maxID+1),
		pieceToID: make(map[string]int, len(entries)),
		scores:    make([]float64, maxID+1),
		ids:       make([]int, 0, len(entries)),
		minScore:  0,
	}
	for id, s := range sentinelPieces {
		v.revVocab[id] = []byte(s)
	}

	logTotal := math.Log(total)
	for _, e := range entries {
		if v.revVocab[e.ID] != nil {
			return nil, errors.Wrapf(ErrInvalidModel, "duplicate id %d", e.ID)
		}
		key := string(e.Piece)
		if prev, exists := v.pieceToID[key]; exists {
			return nil, errors.Wrapf(ErrInvalidModel, "duplicate piece %q for ids %d and %d", e.Piece, prev, e.ID)
		}

		v.revVocab[e.ID] = []byte(key)
		v.pieceToID[key] = e.ID
		score := math.Log(float64(e.Freq)) - logTotal
		v.scores[e.ID] = score
		v.ids = append(v.ids, e.ID)

		if score < v.minScore {
			v.minScore = score
		}
		if len(e.Piece) > v.maxPieceLen {
			v.maxPieceLen = len(e.Piece)
		}
	}

	return v, nil
}

// maxSparseID is the largest id accepted for a table of n pieces.
func maxSparseID(n int) int { return 4*n + numSentinels }

// ID returns the id of a real piece. Sentinel names are not matched.
func (v *Vocabulary) ID(piece []byte) (int, bool) {
	id, ok := v.pieceToID[string(piece)]
	return id, ok
}

// Piece returns the bytes for id, including the sentinel names for 0..2.
// The returned slice must be treated as read-only.
func (v *Vocabulary) Piece(id int) ([]byte, bool) {
	if id < 0 || id >= len(v.revVocab) || v.revVocab[id] == nil {
		return nil, false
	}
	return v.revVocab[id], true
}

// Score returns the log-probability of a real piece.
func (v *Vocabulary) Score(piece []byte) (float64, bool) {
	id, ok := v.pieceToID[string(piece)]
	if !ok {
		return 0, false
	}
	return v.scores[id], true
}

func (v *Vocabulary) scoreOf(id int) float64 { return v.scores[id] }

// MaxPieceLen is the byte length of the longest piece.
func (v *Vocabulary) MaxPieceLen() int { return v.maxPieceLen }

// MinScore is the score of the least likely piece.
func (v *Vocabulary) MinScore() float64 { return v.minScore }

// VocabSize counts real pieces plus the three sentinels.
func (v *Vocabulary) VocabSize() int { return len(v.ids) + numSentinels }

// IsSentinel reports whether id is one of <pad>, <bos>, <eos>.
func IsSentinel(id int) bool { return id >= 0 && id < numSentinels }
