package tokenizer

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/text/encoding/unicode"
)

// Encoder interface
type Encoder interface {
	/*
		Feed consumes the next chunk of raw bytes from the input stream. It may emit zero or more
		completed token IDs. Segments end at newline runs and are tokenized independently, so a chunk
		boundary never changes the result.
	*/
	Feed(chunk []byte) ([]int, error)

	/*
		Flush tells the encoder that the stream is complete. It returns the ids of everything still
		buffered. After flush, the encoder is reset to a clean state and can be reused for a new stream.
	*/
	Flush() ([]int, error)
}

// Decoder interface, no need for flush right now because we won't be maintaining internal buffer
type Decoder interface {
	/*
		Feed consumes token IDs and returns the raw bytes of their pieces. Ids up to 2, sentinels
		and negatives alike, produce no bytes. Unlike Tokenizer.Decode the bytes are not repaired, so split UTF-8 sequences survive
		across calls.
	*/
	Feed(ids []int) ([]byte, error)
}

// Tokenizer maps text to piece ids and back. It holds only immutable data
// and is safe for concurrent use.
type Tokenizer struct {
	vocab *Vocabulary
	seg   *Segmenter
	cfg   *config
}

// New builds the matcher once and returns a Tokenizer over v.
func New(v *Vocabulary, opts ...Option) *Tokenizer {
	cfg := newConfig(v, opts)
	t := &Tokenizer{
		vocab: v,
		seg:   newSegmenter(v, cfg),
		cfg:   cfg,
	}

	ev := cfg.logger.Debug().
		Int("vocab_size", v.VocabSize()).
		Int("max_piece_len", v.MaxPieceLen()).
		Float64("alpha", cfg.alpha).
		Bool("fallback", cfg.fallback).
		Int("max_window", cfg.maxWindow)
	if a, ok := cfg.matcher.(*Automaton); ok {
		ev = ev.Int("states", a.NumStates())
	}
	ev.Msg("tokenizer ready")

	return t
}

// Vocab returns the vocabulary.
func (t *Tokenizer) Vocab() *Vocabulary { return t.vocab }

// Segmenter returns the segmenter sharing this tokenizer's matcher.
func (t *Tokenizer) Segmenter() *Segmenter { return t.seg }

// VocabSize counts real pieces plus the three sentinels.
func (t *Tokenizer) VocabSize() int { return t.vocab.VocabSize() }

// Tokenize returns the pieces of text, segment by segment. With alpha > 0
// segment i samples from sampler stream i, so a call is reproducible and
// agrees with EncodeReader and NewEncoder on the same text.
func (t *Tokenizer) Tokenize(text string) ([][]byte, error) {
	if t.cfg.normalizer != nil {
		text = t.cfg.normalizer.String(text)
	}

	var pieces [][]byte
	for i, seg := range Chunk([]byte(text), t.cfg.maxSegmentLen) {
		ps, err := t.seg.segment(seg, uint64(i))
		if err != nil {
			return nil, err
		}
		pieces = append(pieces, ps...)
	}
	return pieces, nil
}

// Encode returns the ids of text, optionally wrapped in <bos> and <eos>.
func (t *Tokenizer) Encode(text string, addBOS, addEOS bool) ([]int, error) {
	pieces, err := t.Tokenize(text)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(pieces)+2)
	if addBOS {
		ids = append(ids, BosID)
	}
	if ids, err = t.appendIDs(ids, pieces); err != nil {
		return nil, err
	}
	if addEOS {
		ids = append(ids, EosID)
	}
	return ids, nil
}

func (t *Tokenizer) appendIDs(ids []int, pieces [][]byte) ([]int, error) {
	for _, p := range pieces {
		id, ok := t.vocab.ID(p)
		if !ok {
			return nil, errors.Wrapf(ErrCoverage, "piece %q has no id", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Decode concatenates the pieces of ids and returns them as text. Ids up to
// EosID are dropped, negative ones included; invalid UTF-8 is replaced with
// U+FFFD.
func (t *Tokenizer) Decode(ids []int) (string, error) {
	raw, err := t.decodeBytes(nil, ids)
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", nil
	}

	text, err := unicode.UTF8.NewDecoder().Bytes(raw)
	if err != nil {
		return "", errors.Wrap(err, "decoding utf-8")
	}
	return string(text), nil
}

func (t *Tokenizer) decodeBytes(dst []byte, ids []int) ([]byte, error) {
	for _, id := range ids {
		if id <= EosID {
			continue
		}
		piece, ok := t.vocab.Piece(id)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownID, "id %d", id)
		}
		dst = append(dst, piece...)
	}
	return dst, nil
}

// EncodeBatch encodes independent texts on a bounded worker pool. Results
// keep the input order; the first error cancels the remaining work.
func (t *Tokenizer) EncodeBatch(ctx context.Context, texts []string, addBOS, addEOS bool) ([][]int, error) {
	out := make([][]int, len(texts))
	p := pool.New().WithMaxGoroutines(t.cfg.workers).WithContext(ctx).WithCancelOnError()
	for i, text := range texts {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ids, err := t.Encode(text, addBOS, addEOS)
			if err != nil {
				return errors.Wrapf(err, "text %d", i)
			}
			out[i] = ids
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeReader streams r through the encoder and hands ids to fn as soon as
// they are final. ctx is checked between reads.
func (t *Tokenizer) EncodeReader(ctx context.Context, r io.Reader, addBOS, addEOS bool, fn func(ids []int) error) error {
	if t.cfg.normalizer != nil {
		r = t.cfg.normalizer.Reader(r)
	}
	if addBOS {
		if err := fn([]int{BosID}); err != nil {
			return err
		}
	}

	enc := t.newStreamEncoder()
	buf := make([]byte, t.cfg.chunkSize)
	var read, emitted int
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, rerr := r.Read(buf)
		if n > 0 {
			read += n
			ids, err := enc.Feed(buf[:n])
			if err != nil {
				return err
			}
			if len(ids) > 0 {
				emitted += len(ids)
				if err := fn(ids); err != nil {
					return err
				}
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return errors.Wrap(rerr, "reading input")
		}
	}

	ids, err := enc.Flush()
	if err != nil {
		return err
	}
	if addEOS {
		ids = append(ids, EosID)
	}
	if len(ids) > 0 {
		emitted += len(ids)
		if err := fn(ids); err != nil {
			return err
		}
	}

	t.cfg.logger.Debug().
		Int("bytes", read).
		Int("ids", emitted).
		Int("forced_cuts", enc.st.ForcedCuts()).
		Msg("stream encoded")
	return nil
}

// NewEncoder returns a streaming encoder. Normalization is not applied; use
// EncodeReader for that.
func (t *Tokenizer) NewEncoder() Encoder {
	return t.newStreamEncoder()
}

func (t *Tokenizer) newStreamEncoder() *streamEncoder {
	return &streamEncoder{
		t:     t,
		st:    t.seg.NewStream(),
		split: splitter{maxLen: t.cfg.maxSegmentLen},
	}
}

// NewDecoder returns a streaming decoder.
func (t *Tokenizer) NewDecoder() Decoder {
	return &byteDecoder{t: t}
}

type streamEncoder struct {
	t     *Tokenizer
	st    *StreamState
	split splitter
}

// Feed errors discard the buffered input; the encoder starts a fresh stream
// on the next call.
func (e *streamEncoder) Feed(chunk []byte) ([]int, error) {
	var ids []int
	var err error

	start := 0
	for i, b := range chunk {
		if !e.split.next(b) {
			continue
		}
		if ids, err = e.t.appendIDs(ids, e.st.Push(chunk[start:i])); err != nil {
			return e.abort(err)
		}
		if ids, err = e.endSegment(ids); err != nil {
			return e.abort(err)
		}
		start = i
	}

	if ids, err = e.t.appendIDs(ids, e.st.Push(chunk[start:])); err != nil {
		return e.abort(err)
	}
	if err := e.st.Err(); err != nil {
		return e.abort(err)
	}
	return ids, nil
}

func (e *streamEncoder) Flush() ([]int, error) {
	defer e.restart()
	return e.endSegment(nil)
}

func (e *streamEncoder) abort(err error) ([]int, error) {
	e.restart()
	return nil, err
}

func (e *streamEncoder) restart() {
	e.st.restart()
	e.split.reset()
}

func (e *streamEncoder) endSegment(ids []int) ([]int, error) {
	pieces, err := e.st.Finish()
	if err != nil {
		return nil, err
	}
	return e.t.appendIDs(ids, pieces)
}

type byteDecoder struct {
	t *Tokenizer
}

func (d *byteDecoder) Feed(ids []int) ([]byte, error) {
	return d.t.decodeBytes(nil, ids)
}
