package chunker

import (
	"strings"

	"github.com/TranKhoaa/AITChatbot/internal/services/extract"
)

// defaultSeparators is the split hierarchy, coarsest first: paragraph,
// line, sentence, word, and finally raw character windows.
var defaultSeparators = []string{"\n\n", "\n", ". ", " "}

// Splitter splits text into overlapping chunks of at most Size runes,
// preferring natural boundaries over hard character cuts. Consecutive chunks
// share up to Overlap runes of context so that concepts spanning a boundary
// stay retrievable from at least one chunk.
type Splitter struct {
	size    int
	overlap int
}

func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = 256
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 4
	}
	return &Splitter{size: size, overlap: overlap}
}

// Split chunks a text blob. Whitespace-only input yields zero chunks.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, defaultSeparators)
}

// SplitSource chunks an extracted source. Text sources are chunked as one
// blob; tabular records are serialized with stable field order and chunked
// one by one, never merged across rows.
func (s *Splitter) SplitSource(src extract.Source) []string {
	switch v := src.(type) {
	case extract.TextSource:
		return s.Split(v.Text)
	case extract.TabularSource:
		var chunks []string
		for _, record := range v.Records {
			chunks = append(chunks, s.Split(record.String())...)
		}
		return chunks
	default:
		return nil
	}
}

// split recursively breaks text on the first separator that occurs in it,
// falling back to finer separators for oversized pieces and to raw rune
// windows when no separator helps.
func (s *Splitter) split(text string, separators []string) []string {
	if len([]rune(text)) <= s.size {
		if chunk := strings.TrimSpace(text); chunk != "" {
			return []string{chunk}
		}
		return nil
	}

	sep := ""
	rest := separators
	for i, candidate := range separators {
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}
	if sep == "" {
		return s.windows(text)
	}

	// Split keeping the separator attached to the preceding piece, then
	// recursively shrink anything still over size.
	var pieces []string
	for _, part := range splitAfter(text, sep) {
		if len([]rune(part)) > s.size {
			pieces = append(pieces, s.split(part, rest)...)
		} else {
			pieces = append(pieces, part)
		}
	}

	return s.merge(pieces)
}

// merge packs already-small pieces into chunks up to size, carrying an
// overlap tail from each emitted chunk into the next.
func (s *Splitter) merge(pieces []string) []string {
	var chunks []string
	var cur []rune

	flush := func() {
		chunk := strings.TrimSpace(string(cur))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if len(cur) > s.overlap {
			cur = cur[len(cur)-s.overlap:]
		}
	}

	for _, piece := range pieces {
		pr := []rune(piece)
		if len(cur)+len(pr) > s.size && len(cur) > 0 {
			flush()
			// After carrying the overlap the piece may still not fit;
			// trim the carried context from the front to keep the size
			// bound strict.
			if excess := len(cur) + len(pr) - s.size; excess > 0 {
				if excess >= len(cur) {
					cur = nil
				} else {
					cur = cur[excess:]
				}
			}
		}
		cur = append(cur, pr...)
	}

	if chunk := strings.TrimSpace(string(cur)); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

// windows cuts raw rune windows with overlap, the last-resort split.
func (s *Splitter) windows(text string) []string {
	runes := []rune(text)
	step := s.size - s.overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + s.size
		if end > len(runes) {
			end = len(runes)
		}
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// splitAfter splits on sep keeping it attached to the left piece and drops
// empty leftovers.
func splitAfter(text, sep string) []string {
	parts := strings.SplitAfter(text, sep)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
