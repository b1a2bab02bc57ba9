package database

type Document struct {
	Id           string
	Name         string
	OwnerID      string
	SecurityTier int
}

// ChunkHit is one nearest-neighbor row: the chunk joined with its parent
// document's display metadata.
type ChunkHit struct {
	Id           string
	DocumentID   string
	DocumentName string
	SecurityTier int
	ChunkIndex   int
	Content      string
	Distance     float64
}
