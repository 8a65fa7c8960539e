package tokenizer

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"testing"
)

func benchCorpus(b *testing.B) []byte {
	b.Helper()
	r := rand.New(rand.NewSource(1))
	words := []string{"hello", "world", "the", "tokenizer", "is", "and", "token", "tokenizing", "नमस्ते", "🔥"}
	var sb strings.Builder
	for sb.Len() < 1<<20 {
		sb.WriteString(words[r.Intn(len(words))])
		if r.Intn(20) == 0 {
			sb.WriteString("\n")
		} else {
			sb.WriteString(" ")
		}
	}
	return []byte(sb.String())
}

func BenchmarkSegment(b *testing.B) {
	seg := NewSegmenter(loadTestVocab(b))
	input := benchCorpus(b)

	b.SetBytes(int64(len(input)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = seg.Segment(input)
	}
}

func BenchmarkSegmentLookupMatcher(b *testing.B) {
	v := loadTestVocab(b)
	seg := NewSegmenter(v, WithMatcher(NewLookupMatcher(v)))
	input := benchCorpus(b)

	b.SetBytes(int64(len(input)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = seg.Segment(input)
	}
}

func BenchmarkStream_8Parallel_4KBChunks(b *testing.B) {
	seg := NewSegmenter(loadTestVocab(b))
	input := benchCorpus(b)

	const chunkSize = 4 << 10         // 4 KiB
	b.SetBytes(int64(len(input)) * 8) // total bytes processed across 8 streams

	b.ResetTimer()

	for n := 0; n < b.N; n++ {
		var wg sync.WaitGroup
		wg.Add(8)

		for streamID := 0; streamID < 8; streamID++ {
			go func() {
				defer wg.Done()

				st := seg.NewStream()
				for pos := 0; pos < len(input); pos += chunkSize {
					_ = st.Push(input[pos:min(pos+chunkSize, len(input))])
				}
				_, _ = st.Finish()
			}()
		}

		wg.Wait()
	}
}

func BenchmarkEncodeBatch(b *testing.B) {
	tok := New(loadTestVocab(b))
	lines := strings.Split(string(benchCorpus(b)), "\n")

	b.SetBytes(int64(len(strings.Join(lines, "\n"))))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := tok.EncodeBatch(context.Background(), lines, false, false); err != nil {
			b.Fatal(err)
		}
	}
}
