package tokenizer

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// testWords are the multi-byte pieces of the default test vocabulary.
var testWords = map[string]int64{
	"he": 30, "ll": 20, "lo": 25, "hell": 8, "hello": 50,
	"wo": 12, "or": 18, "wor": 10, "ld": 15, "world": 40,
	"th": 35, "the": 60, " the": 45, "is": 30, " is": 25,
	"to": 28, "ken": 9, "token": 14, "izer": 6, "tokenizer": 11,
	"in": 40, "ing": 33, "an": 38, "and": 30, " and": 28,
	"aa": 5, "aaa": 3, "ab": 9, "ba": 4,
	"\n\n": 20, ", ": 30, "! ": 12,
	"\xf0\x9f": 6, "\x94\xa5": 5, // split emoji halves
	"नम": 4, "स्ते": 3,
}

// byteEntries returns one entry per byte value, ids 3..258.
func byteEntries(freq func(b byte) int64) []Entry {
	entries := make([]Entry, 0, 256)
	for b := 0; b < 256; b++ {
		entries = append(entries, Entry{Piece: []byte{byte(b)}, ID: numSentinels + b, Freq: freq(byte(b))})
	}
	return entries
}

// buildVocab covers every byte and adds words with ids after the bytes.
func buildVocab(t testing.TB, byteFreq func(b byte) int64, words map[string]int64) *Vocabulary {
	t.Helper()

	entries := byteEntries(byteFreq)
	keys := make([]string, 0, len(words))
	for w := range words {
		if len(w) > 1 {
			keys = append(keys, w)
		}
	}
	sort.Strings(keys)
	for _, w := range keys {
		entries = append(entries, Entry{Piece: []byte(w), ID: len(entries) + numSentinels, Freq: words[w]})
	}

	v, err := NewVocabulary(entries)
	require.NoError(t, err)
	return v
}

func asciiFreq(b byte) int64 {
	switch {
	case b == ' ':
		return 100
	case b >= 'a' && b <= 'z':
		return 20
	case b >= 32 && b < 127:
		return 5
	}
	return 1
}

func loadTestVocab(t testing.TB) *Vocabulary {
	t.Helper()
	return buildVocab(t, asciiFreq, testWords)
}

func loadTestTokenizer(t testing.TB, opts ...Option) *Tokenizer {
	t.Helper()
	return New(loadTestVocab(t), opts...)
}

func randomInput(r *rand.Rand, n int) []byte {
	alphabet := []byte("helowrdtkniza ,!\n")
	input := make([]byte, n)
	for i := range input {
		// bias toward pieces of the vocabulary, but allow the full byte range
		if r.Float64() < 0.85 {
			input[i] = alphabet[r.Intn(len(alphabet))]
		} else {
			input[i] = byte(r.Intn(256))
		}
	}
	return input
}

func joinPieces(pieces [][]byte) []byte {
	var out []byte
	for _, p := range pieces {
		out = append(out, p...)
	}
	return out
}

func piecesToStrings(pieces [][]byte) []string {
	out := make([]string, len(pieces))
	for i, p := range pieces {
		out[i] = string(p)
	}
	return out
}
