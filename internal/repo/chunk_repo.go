package repo

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"github.com/vinayk94/iso-assist/internal/model"
)

// ChunkRepo answers the two read patterns the query pipeline needs: nearest
// neighbors by vector, and chunk hydration by id set.
type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// HydratedChunk is a chunk joined with its parent document metadata.
type HydratedChunk struct {
	ChunkID     int64
	DocumentID  int64
	Content     string
	Position    int
	Title       string
	URL         string
	ContentType string
	FileName    string
}

// Search returns the k nearest chunk embeddings by cosine distance. Distance
// ties break by chunk id so identical corpora always rank identically.
func (r *ChunkRepo) Search(ctx context.Context, vec []float32, k int) ([]model.VectorMatch, error) {
	const query = `
		SELECT chunk_id, embedding <=> $1 AS distance
		FROM embeddings
		ORDER BY embedding <=> $1, chunk_id
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, pgvector.NewVector(vec), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var matches []model.VectorMatch
	for rows.Next() {
		var m model.VectorMatch
		if err := rows.Scan(&m.ChunkID, &m.Distance); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// HydrateChunks resolves chunk ids to content plus document metadata. Ids
// that no longer resolve are simply absent from the result; the caller
// decides how to treat the drift.
func (r *ChunkRepo) HydrateChunks(ctx context.Context, ids []int64) (map[int64]HydratedChunk, error) {
	if len(ids) == 0 {
		return map[int64]HydratedChunk{}, nil
	}
	query := `
		SELECT c.id, c.document_id, c.content, c.position,
			d.title, d.url, d.content_type, d.file_name
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.id IN (?)
	`
	query, args, err := sqlx.In(query, ids)
	if err != nil {
		return nil, err
	}
	query = sqlx.Rebind(sqlx.DOLLAR, query)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make(map[int64]HydratedChunk, len(ids))
	for rows.Next() {
		var h HydratedChunk
		if err := rows.Scan(&h.ChunkID, &h.DocumentID, &h.Content, &h.Position,
			&h.Title, &h.URL, &h.ContentType, &h.FileName); err != nil {
			return nil, err
		}
		result[h.ChunkID] = h
	}
	return result, rows.Err()
}

// EmbeddingDimension reads the declared width of the vector column. For
// pgvector columns atttypmod holds the dimension directly.
func (r *ChunkRepo) EmbeddingDimension(ctx context.Context) (int, error) {
	const query = `
		SELECT atttypmod
		FROM pg_attribute
		WHERE attrelid = 'embeddings'::regclass AND attname = 'embedding'
	`
	var dim int
	if err := r.db.QueryRowContext(ctx, query).Scan(&dim); err != nil {
		return 0, err
	}
	return dim, nil
}

func (r *ChunkRepo) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count)
	return count, err
}

func (r *ChunkRepo) CountDistinctDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT document_id) FROM chunks`).Scan(&count)
	return count, err
}
