package chunker

import (
	"hash/fnv"
	"strings"
)

// DefaultChunkSizeTokens is the default chunk size in (approximate) tokens.
const DefaultChunkSizeTokens = 512

// DefaultOverlapTokens is the default overlap between consecutive chunks.
const DefaultOverlapTokens = 64

// DefaultCharsPerToken is the character-per-token approximation used to
// convert token budgets into character windows.
const DefaultCharsPerToken = 4

type Chunker struct {
	ChunkSizeTokens int
	OverlapTokens   int
	CharsPerToken   int
}

// Chunk is one segment of a document, produced once at ingestion time and
// never mutated afterwards. Start and End are byte offsets into the trimmed
// source text; Content is the trimmed text of the [Start,End) span.
type Chunk struct {
	Index      int
	Content    string
	Start      int
	End        int
	TokenCount int
}

func New(chunkSizeTokens, overlapTokens int) *Chunker {
	return &Chunker{
		ChunkSizeTokens: chunkSizeTokens,
		OverlapTokens:   overlapTokens,
		CharsPerToken:   DefaultCharsPerToken,
	}
}

// Chunk splits text into overlapping segments. Window boundaries prefer a
// natural break (blank line, then newline, then sentence end) found in the
// second half of the window; otherwise the window is cut at the raw boundary.
// Empty input yields no chunks.
func (c *Chunker) Chunk(text string) []Chunk {
	if c.ChunkSizeTokens <= 0 || c.OverlapTokens < 0 || c.OverlapTokens >= c.ChunkSizeTokens {
		return nil
	}

	text = strings.TrimSpace(text)
	n := len(text)
	if n == 0 {
		return nil
	}

	sizeChars := c.ChunkSizeTokens * c.charsPerToken()
	overlapChars := c.OverlapTokens * c.charsPerToken()

	if n <= sizeChars {
		return []Chunk{c.newChunk(0, text, 0, n)}
	}

	var chunks []Chunk
	start := 0
	index := 0

	for start < n {
		end := start + sizeChars
		if end >= n {
			chunks = append(chunks, c.newChunk(index, text, start, n))
			break
		}

		end = findBreak(text, start, end)
		chunks = append(chunks, c.newChunk(index, text, start, end))
		index++

		next := end - overlapChars
		if next <= start {
			// Break search can move the boundary close to the window start;
			// never re-chunk already consumed text.
			next = end
		}
		start = next
	}

	return chunks
}

func (c *Chunker) newChunk(index int, text string, start, end int) Chunk {
	content := strings.TrimSpace(text[start:end])
	return Chunk{
		Index:      index,
		Content:    content,
		Start:      start,
		End:        end,
		TokenCount: (len(content) + c.charsPerToken() - 1) / c.charsPerToken(),
	}
}

func (c *Chunker) charsPerToken() int {
	if c.CharsPerToken <= 0 {
		return DefaultCharsPerToken
	}
	return c.CharsPerToken
}

// findBreak searches backward from the provisional boundary for the nearest
// natural break, accepting only breaks in the second half of the window.
func findBreak(text string, start, end int) int {
	half := start + (end-start)/2
	window := text[half:end]

	if i := strings.LastIndex(window, "\n\n"); i >= 0 {
		return half + i + 2
	}
	if i := strings.LastIndex(window, "\n"); i >= 0 {
		return half + i + 1
	}

	best := -1
	for _, sep := range []string{". ", "! ", "? "} {
		if i := strings.LastIndex(window, sep); i > best {
			best = i
		}
	}
	if best >= 0 {
		return half + best + 2
	}

	return end
}

// ContentHash returns a fast, non-cryptographic fingerprint of chunk content,
// suitable only for exact-duplicate detection.
func ContentHash(content string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(content))
	return h.Sum64()
}
