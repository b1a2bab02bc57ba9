package retrieval

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/vaultmind/vault-agent/internal/database"
)

// RetrievedChunk is a chunk scored against one query, denormalized with its
// parent document's display metadata. Lifetime is a single pipeline run.
type RetrievedChunk struct {
	ChunkID      string
	DocumentID   string
	DocumentName string
	SecurityTier int
	ChunkIndex   int
	Content      string
	Similarity   float64
}

type Embedder interface {
	GenerateEmbeddings(ctx context.Context, text string) ([]float32, error)
}

type Searcher interface {
	VectorSearch(ctx context.Context, queryEmbeddings []float32, documentIDs []string, limit int) ([]database.ChunkHit, error)
}

type Retriever struct {
	embedder Embedder
	searcher Searcher
}

func New(embedder Embedder, searcher Searcher) *Retriever {
	return &Retriever{
		embedder: embedder,
		searcher: searcher,
	}
}

// Retrieve embeds the query and returns the topK nearest chunks among the
// accessible documents, ranked by similarity descending. It never fails hard:
// any embedding or search error degrades to an empty result so the caller can
// route to its no-evidence branch instead of crashing the query.
func (r *Retriever) Retrieve(ctx context.Context, query string, documentIDs []string, topK int) []RetrievedChunk {
	if len(documentIDs) == 0 {
		return nil
	}

	embeddings, err := r.embedder.GenerateEmbeddings(ctx, query)
	if err != nil {
		log.Warn().Err(err).Msg("Query embedding failed, returning no chunks")
		return nil
	}

	hits, err := r.searcher.VectorSearch(ctx, embeddings, documentIDs, topK)
	if err != nil {
		log.Warn().Err(err).Msg("Vector search failed, returning no chunks")
		return nil
	}

	chunks := make([]RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		chunks = append(chunks, RetrievedChunk{
			ChunkID:      hit.Id,
			DocumentID:   hit.DocumentID,
			DocumentName: hit.DocumentName,
			SecurityTier: hit.SecurityTier,
			ChunkIndex:   hit.ChunkIndex,
			Content:      hit.Content,
			Similarity:   DistanceToScore(hit.Distance),
		})
	}

	return chunks
}

// DistanceToScore converts a cosine distance (0 identical .. 2 opposite) to a
// similarity score clamped to [0, 1].
func DistanceToScore(distance float64) float64 {
	score := 1.0 - distance

	if score < 0.0 {
		return 0.0
	}
	if score > 1.0 {
		return 1.0
	}

	return score
}
