// Package model reads and writes piece tables stored as JSON objects that map
// a base64 encoded piece to [id, value, frequency].
package model

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/bytepiece/internal/tokenizer"
)

// Read decodes a piece table. Rows are returned sorted by id.
func Read(r io.Reader) ([]tokenizer.Entry, error) {
	var raw map[string][]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrapf(tokenizer.ErrInvalidModel, "parsing model json: %v", err)
	}

	entries := make([]tokenizer.Entry, 0, len(raw))
	for key, row := range raw {
		piece, err := base64.StdEncoding.DecodeString(key)
		if err != nil {
			return nil, errors.Wrapf(tokenizer.ErrInvalidModel, "piece key %q is not base64: %v", key, err)
		}
		if len(row) < 3 {
			return nil, errors.Wrapf(tokenizer.ErrInvalidModel, "piece %q: want [id, value, freq], got %d fields", piece, len(row))
		}

		var e tokenizer.Entry
		e.Piece = piece
		if err := json.Unmarshal(row[0], &e.ID); err != nil {
			return nil, errors.Wrapf(tokenizer.ErrInvalidModel, "piece %q: bad id: %v", piece, err)
		}
		if err := json.Unmarshal(row[2], &e.Freq); err != nil {
			return nil, errors.Wrapf(tokenizer.ErrInvalidModel, "piece %q: bad frequency: %v", piece, err)
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

// Load reads the model file at path and builds its vocabulary.
func Load(path string) (*tokenizer.Vocabulary, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the caller's configuration
	if err != nil {
		return nil, errors.Wrap(err, "opening model")
	}
	defer f.Close()

	entries, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	v, err := tokenizer.NewVocabulary(entries)
	if err != nil {
		return nil, errors.Wrapf(err, "building vocabulary from %s", path)
	}
	return v, nil
}

// Write encodes entries in the format Read accepts. The value field holds
// the piece as text.
func Write(w io.Writer, entries []tokenizer.Entry) error {
	out := make(map[string][3]any, len(entries))
	for _, e := range entries {
		out[base64.StdEncoding.EncodeToString(e.Piece)] = [3]any{e.ID, string(e.Piece), e.Freq}
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(err, "encoding model")
	}
	return nil
}
