package tokenizer

import "bufio"

// splitter cuts text into segments that are tokenized independently: a run
// of non-newline bytes followed by every newline after it. With maxLen > 0
// the non-newline run holds at most maxLen bytes and a newline run at most
// maxNewlineRun bytes.
type splitter struct {
	maxLen int
	run    int // non-newline bytes in the current segment
	nl     int // newline bytes in the current segment
}

// next reports whether b starts a new segment.
func (s *splitter) next(b byte) bool {
	if b == '\n' {
		cut := s.maxLen > 0 && s.nl == maxNewlineRun
		if cut {
			s.run, s.nl = 0, 0
		}
		s.nl++
		return cut
	}

	cut := s.nl > 0 || (s.maxLen > 0 && s.run == s.maxLen)
	if cut {
		s.run, s.nl = 0, 0
	}
	s.run++
	return cut
}

func (s *splitter) reset() {
	s.run, s.nl = 0, 0
}

// Chunk splits text into segments. The segments alias text and concatenate
// back to it exactly.
func Chunk(text []byte, maxLen int) [][]byte {
	if len(text) == 0 {
		return nil
	}

	sp := splitter{maxLen: maxLen}
	var out [][]byte
	start := 0
	for i, b := range text {
		if sp.next(b) && i > start {
			out = append(out, text[start:i])
			start = i
		}
	}
	return append(out, text[start:])
}

// SplitSegments returns a bufio.SplitFunc yielding the same segments as
// Chunk, trailing newlines included.
func SplitSegments(maxLen int) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (int, []byte, error) {
		if len(data) == 0 {
			return 0, nil, nil
		}

		sp := splitter{maxLen: maxLen}
		for i, b := range data {
			if sp.next(b) && i > 0 {
				return i, data[:i], nil
			}
		}
		if atEOF {
			return len(data), data, nil
		}
		// need more data to see where the newline run ends
		return 0, nil, nil
	}
}
