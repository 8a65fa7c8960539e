package bytepiece_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytepiece/bytepiece"
)

var modelPath = filepath.Join("..", "testdata", "model", "bytepiece.model")

func TestLoadAndRoundTrip(t *testing.T) {
	tok, err := bytepiece.Load(modelPath, bytepiece.WithNormalizer(bytepiece.NFC))
	require.NoError(t, err)

	text := "hello world\n\nthe tokenizer is tokenizing"
	ids, err := tok.Encode(text, true, true)
	require.NoError(t, err)
	assert.Equal(t, bytepiece.BosID, ids[0])
	assert.Equal(t, bytepiece.EosID, ids[len(ids)-1])

	got, err := tok.Decode(ids)
	require.NoError(t, err)
	assert.Equal(t, text, got)

	var streamed []int
	err = tok.EncodeReader(context.Background(), strings.NewReader(text), true, true, func(chunk []int) error {
		streamed = append(streamed, chunk...)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, ids, streamed)
}

func TestStreamMatchesSegment(t *testing.T) {
	v, err := bytepiece.LoadModel(modelPath)
	require.NoError(t, err)

	seg := bytepiece.NewSegmenter(v, bytepiece.WithMatcher(bytepiece.NewLookupMatcher(v)))
	input := []byte(strings.Repeat("and the world is hello, ", 100))

	want, err := seg.Segment(input)
	require.NoError(t, err)

	st := seg.NewStream()
	got := st.Push(input[:333])
	got = append(got, st.Push(input[333:])...)
	rest, err := st.Finish()
	require.NoError(t, err)
	got = append(got, rest...)

	require.Equal(t, len(want), len(got))
	for i := range want {
		assert.Equal(t, string(want[i]), string(got[i]))
	}
}

func TestErrors(t *testing.T) {
	_, err := bytepiece.NewVocabulary(nil)
	require.ErrorIs(t, err, bytepiece.ErrInvalidModel)

	v, err := bytepiece.NewVocabulary([]bytepiece.Entry{{Piece: []byte("a"), ID: 3, Freq: 1}})
	require.NoError(t, err)

	tok := bytepiece.New(v)
	_, err = tok.Decode([]int{99})
	require.ErrorIs(t, err, bytepiece.ErrUnknownID)

	_, err = tok.Encode("b", false, false)
	require.ErrorIs(t, err, bytepiece.ErrCoverage)
}
