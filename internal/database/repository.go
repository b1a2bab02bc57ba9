package database

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
)

// ResolveAccessibleDocuments returns the ids of the owner's documents visible
// under the given tier ceiling. Privileged requests see every tier.
func (db *DB) ResolveAccessibleDocuments(ctx context.Context, ownerID string, maxTier int, privileged bool) ([]string, error) {
	query := `
	SELECT id
	FROM documents
	WHERE owner_id = $1
	  AND (security_tier <= $2 OR $3)`

	rows, err := db.Pool.Query(ctx, query, ownerID, maxTier, privileged)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve accessible documents for owner %s: %w", ownerID, err)
	}

	defer rows.Close()

	var documentIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan document id: %w", err)
		}
		documentIDs = append(documentIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return documentIDs, nil
}

// TODO: Add pagination
func (db *DB) GetAllDocs(ctx context.Context, ownerID string) ([]Document, error) {
	query := `SELECT id, name, owner_id, security_tier FROM documents WHERE owner_id = $1`

	rows, err := db.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch documents from DB: %w", err)
	}

	defer rows.Close()

	var documentsResponse []Document

	for rows.Next() {
		var document Document

		if err := rows.Scan(&document.Id, &document.Name, &document.OwnerID, &document.SecurityTier); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		documentsResponse = append(documentsResponse, document)
	}

	return documentsResponse, nil
}

// VectorSearch runs a nearest-neighbor search over chunks whose parent
// document is in documentIDs, ordered by cosine distance ascending.
func (db *DB) VectorSearch(ctx context.Context, queryEmbeddings []float32, documentIDs []string, limit int) ([]ChunkHit, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}

	pgvectorEmbeddings := pgvector.NewVector(queryEmbeddings)

	query := `
	SELECT
	  c.id,
	  c.document_id,
	  d.name,
	  d.security_tier,
	  c.chunk_index,
	  c.content,
	  c.embedding <=> $1 AS distance
	FROM document_chunks c
	JOIN documents d ON d.id = c.document_id
	WHERE c.document_id = ANY($2)
	ORDER BY distance ASC
	LIMIT $3`

	rows, err := db.Pool.Query(ctx, query, pgvectorEmbeddings, documentIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("unable to query the database: %w", err)
	}

	defer rows.Close()

	var hits []ChunkHit
	for rows.Next() {
		var hit ChunkHit

		if err := rows.Scan(&hit.Id, &hit.DocumentID, &hit.DocumentName, &hit.SecurityTier, &hit.ChunkIndex, &hit.Content, &hit.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan chunk hit: %w", err)
		}

		hits = append(hits, hit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	log.Debug().Int("hits", len(hits)).Int("filter_size", len(documentIDs)).Msg("Vector search complete")

	return hits, nil
}
