package citation

import (
	"regexp"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/vaultmind/vault-agent/internal/retrieval"
)

// DefaultExcerptLength bounds the snippet carried by each citation.
const DefaultExcerptLength = 300

// Citation links one inline [n] marker in generated text back to the
// retrieved chunk it references. Ephemeral, derived per answer.
type Citation struct {
	CitationIndex  int     `json:"citation_index"`
	DocumentID     string  `json:"document_id"`
	ChunkID        string  `json:"chunk_id"`
	DocumentName   string  `json:"document_name"`
	Excerpt        string  `json:"excerpt"`
	RelevanceScore float64 `json:"relevance_score"`
	SecurityTier   int     `json:"security_tier"`
}

var markerPattern = regexp.MustCompile(`\[(\d+)\]`)

type Parser struct {
	ExcerptLength int
}

func NewParser(excerptLength int) *Parser {
	if excerptLength <= 0 {
		excerptLength = DefaultExcerptLength
	}
	return &Parser{ExcerptLength: excerptLength}
}

// Parse scans answerText for bracketed 1-based markers and resolves each
// distinct in-range marker to a citation. Out-of-range or malformed markers
// are dropped silently: generation models hallucinate references, and one bad
// marker must never fail a whole answer. Results are sorted by index.
func (p *Parser) Parse(answerText string, retrievedChunks []retrieval.RetrievedChunk) []Citation {
	if answerText == "" || len(retrievedChunks) == 0 {
		return nil
	}

	matches := markerPattern.FindAllStringSubmatch(answerText, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[int]bool)
	var citations []Citation

	for _, match := range matches {
		index, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if index < 1 || index > len(retrievedChunks) {
			continue
		}
		if seen[index] {
			continue
		}
		seen[index] = true

		chunk := retrievedChunks[index-1]
		citations = append(citations, Citation{
			CitationIndex:  index,
			DocumentID:     chunk.DocumentID,
			ChunkID:        chunk.ChunkID,
			DocumentName:   chunk.DocumentName,
			Excerpt:        excerpt(chunk.Content, p.ExcerptLength),
			RelevanceScore: chunk.Similarity,
			SecurityTier:   chunk.SecurityTier,
		})
	}

	sort.Slice(citations, func(i, j int) bool {
		return citations[i].CitationIndex < citations[j].CitationIndex
	})

	return citations
}

// excerpt truncates to the first limit characters, never splitting a
// multibyte rune: excerpts end up in JSON responses and must stay valid
// UTF-8.
func excerpt(content string, limit int) string {
	if utf8.RuneCountInString(content) <= limit {
		return content
	}
	return string([]rune(content)[:limit])
}

// DistinctDocumentCount returns the number of distinct documents the
// citations corroborate across.
func DistinctDocumentCount(citations []Citation) int {
	docs := make(map[string]bool)
	for _, c := range citations {
		docs[c.DocumentID] = true
	}
	return len(docs)
}
