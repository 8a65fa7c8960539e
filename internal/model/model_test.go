package model

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytepiece/internal/tokenizer"
)

// {"YQ==": [3, "a", 5], "Yg==": [4, "b", 3], "YWI=": [5, "ab", 4], "/w==": [6, "\xff", 1]}
const sampleModel = `{
  "YQ==": [3, "a", 5],
  "Yg==": [4, "b", 3],
  "YWI=": [5, "ab", 4],
  "/w==": [6, "", 1]
}`

func TestRead(t *testing.T) {
	entries, err := Read(strings.NewReader(sampleModel))
	require.NoError(t, err)

	require.Len(t, entries, 4)
	assert.Equal(t, tokenizer.Entry{Piece: []byte("a"), ID: 3, Freq: 5}, entries[0])
	assert.Equal(t, tokenizer.Entry{Piece: []byte("b"), ID: 4, Freq: 3}, entries[1])
	assert.Equal(t, tokenizer.Entry{Piece: []byte("ab"), ID: 5, Freq: 4}, entries[2])
	assert.Equal(t, tokenizer.Entry{Piece: []byte{0xff}, ID: 6, Freq: 1}, entries[3])
}

func TestReadRejects(t *testing.T) {
	cases := map[string]string{
		"not_json":     `[1, 2`,
		"bad_base64":   `{"%%%": [3, "x", 1]}`,
		"short_row":    `{"YQ==": [3, "a"]}`,
		"string_id":    `{"YQ==": ["3", "a", 1]}`,
		"float_freq":   `{"YQ==": [3, "a", 1.5]}`,
		"wrong_layout": `{"YQ==": {"id": 3}}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(in))
			require.ErrorIs(t, err, tokenizer.ErrInvalidModel)
		})
	}
}

func TestWriteThenLoad(t *testing.T) {
	entries := []tokenizer.Entry{
		{Piece: []byte("a"), ID: 3, Freq: 5},
		{Piece: []byte("ab"), ID: 4, Freq: 4},
		{Piece: []byte{0xe4, 0xbd}, ID: 5, Freq: 2},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, entries))

	path := filepath.Join(t.TempDir(), "bytepiece.model")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	v, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, v.VocabSize())
	for _, e := range entries {
		id, ok := v.ID(e.Piece)
		require.True(t, ok, "piece %q", e.Piece)
		assert.Equal(t, e.ID, id)
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.model"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, tokenizer.ErrInvalidModel)

	// a well formed file may still describe an invalid vocabulary
	path := filepath.Join(t.TempDir(), "sentinel.model")
	require.NoError(t, os.WriteFile(path, []byte(`{"YQ==": [1, "a", 5]}`), 0o644))
	_, err = Load(path)
	require.ErrorIs(t, err, tokenizer.ErrInvalidModel)
}

func TestLoadTestdataModel(t *testing.T) {
	v, err := Load(filepath.Join("..", "..", "testdata", "model", "bytepiece.model"))
	require.NoError(t, err)

	tok := tokenizer.New(v)
	for _, text := range []string{"hello world", "the tokenizer", "\x00\xff"} {
		ids, err := tok.Encode(text, true, true)
		require.NoError(t, err)
		got, err := tok.Decode(ids)
		require.NoError(t, err)
		assert.Equal(t, strings.ToValidUTF8(text, "\uFFFD"), got)
	}
}
