package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/poiesic/tributary/core"
	"github.com/poiesic/tributary/vector"
)

const defaultDimension = 384

// Store implements vector.Store backed by Postgres + pgvector.
type Store struct {
	db        *sql.DB
	dimension int
}

var _ vector.Store = (*Store)(nil)

// New connects to Postgres (with pgvector installed) and ensures the
// documents table exists. The dimension fixes the embedding column
// width and must match the embedder's output.
func New(dsn string, dimension int) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return NewFromDB(db, dimension)
}

// NewFromDB reuses an existing *sql.DB.
func NewFromDB(db *sql.DB, dimension int) (*Store, error) {
	if db == nil {
		return nil, ErrDatabaseRequired
	}
	if dimension <= 0 {
		dimension = defaultDimension
	}
	store := &Store{db: db, dimension: dimension}
	if err := store.ensureTables(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) ensureTables() error {
	_, err := s.db.Exec(schemaDDL(s.dimension))
	return err
}

// schemaDDL builds the documents table and its indexes. Filterable
// metadata is flattened into columns; the full metadata struct rides
// along as jsonb for reconstruction.
func schemaDDL(dimension int) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS documents (
  id          text PRIMARY KEY,
  source      text NOT NULL,
  kind        text NOT NULL,
  title       text NOT NULL DEFAULT '',
  content     text NOT NULL DEFAULT '',
  project     text NOT NULL DEFAULT '',
  ts          timestamptz NOT NULL,
  access_list text[],
  public      boolean NOT NULL DEFAULT false,
  metadata    jsonb,
  embedding   vector(%d),
  updated_at  timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS documents_source_kind_idx ON documents (source, kind);
CREATE INDEX IF NOT EXISTS documents_project_idx ON documents (project);
CREATE INDEX IF NOT EXISTS documents_meta_idx ON documents USING gin (metadata);
CREATE INDEX IF NOT EXISTS documents_embedding_idx ON documents USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);
`, dimension)
}

// Upsert inserts or updates documents by id.
func (s *Store) Upsert(ctx context.Context, docs []core.Document) error {
	if len(docs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO documents
 (id, source, kind, title, content, project, ts, access_list, public, metadata, embedding, updated_at)
 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
 ON CONFLICT (id) DO UPDATE SET
   source=EXCLUDED.source,
   kind=EXCLUDED.kind,
   title=EXCLUDED.title,
   content=EXCLUDED.content,
   project=EXCLUDED.project,
   ts=EXCLUDED.ts,
   access_list=EXCLUDED.access_list,
   public=EXCLUDED.public,
   metadata=EXCLUDED.metadata,
   embedding=EXCLUDED.embedding,
   updated_at=now();
`
	for i := range docs {
		d := &docs[i]
		metaBytes, err := json.Marshal(d.Metadata)
		if err != nil {
			return err
		}

		// Documents without an embedding store NULL and stay invisible
		// to similarity queries.
		var emb any
		if len(d.Embedding) > 0 {
			lit, err := toVectorLiteral(d.Embedding, s.dimension)
			if err != nil {
				return err
			}
			emb = lit
		}

		if _, err := tx.ExecContext(ctx, stmt,
			d.ID, string(d.Source), string(d.Kind), d.Title, d.Content,
			d.Metadata.Project, d.Metadata.Timestamp.UTC(),
			pq.Array(d.Metadata.AccessList), d.Metadata.Public,
			metaBytes, emb, time.Now().UTC(),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Query performs cosine similarity search with filters compiled to a
// WHERE clause. The embedding travels as a bound parameter like every
// other value; the ::vector cast hands the driver-quoted literal to
// pgvector's input function.
func (s *Store) Query(ctx context.Context, embedding []float32, filter vector.Filter, topK int) ([]core.Match, error) {
	if topK <= 0 {
		topK = vector.DefaultTopK
	}
	embLit, err := toVectorLiteral(embedding, s.dimension)
	if err != nil {
		return nil, err
	}

	whereSQL, args := buildFilter(filter, 2)
	query := querySQL(whereSQL, topK)
	args = append([]any{embLit}, args...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []core.Match
	for rows.Next() {
		var (
			doc       core.Document
			metaBytes []byte
			score     float32
		)
		if err := rows.Scan(&doc.ID, &doc.Source, &doc.Kind, &doc.Title, &doc.Content, &metaBytes, &score); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(metaBytes, &doc.Metadata)
		matches = append(matches, core.Match{Document: &doc, Score: score})
	}
	return matches, rows.Err()
}

// querySQL renders the similarity query around a compiled WHERE
// clause. $1 is always the query embedding; filter placeholders start
// at $2.
func querySQL(whereSQL string, topK int) string {
	return fmt.Sprintf(`
SELECT id, source, kind, title, content, metadata, 1 - (embedding <=> $1::vector) AS score
FROM documents
WHERE %s
ORDER BY embedding <=> $1::vector
LIMIT %d;
`, whereSQL, topK)
}

// buildFilter compiles a Filter into WHERE clauses. Placeholder
// numbering starts at firstArg; Query reserves $1 for the embedding.
func buildFilter(filter vector.Filter, firstArg int) (string, []any) {
	where := []string{"embedding IS NOT NULL"}
	var args []any

	argIdx := firstArg
	if filter.Source != "" {
		where = append(where, fmt.Sprintf("source = $%d", argIdx))
		args = append(args, string(filter.Source))
		argIdx++
	}
	if len(filter.Kinds) > 0 {
		where = append(where, fmt.Sprintf("kind = ANY($%d)", argIdx))
		args = append(args, pq.Array(kindStrings(filter.Kinds)))
		argIdx++
	}
	if filter.Project != "" {
		where = append(where, fmt.Sprintf("project = $%d", argIdx))
		args = append(args, filter.Project)
		argIdx++
	}
	if !filter.Since.IsZero() {
		where = append(where, fmt.Sprintf("ts >= $%d", argIdx))
		args = append(args, filter.Since.UTC())
		argIdx++
	}
	if !filter.Until.IsZero() {
		where = append(where, fmt.Sprintf("ts <= $%d", argIdx))
		args = append(args, filter.Until.UTC())
		argIdx++
	}
	if filter.AccessibleBy != "" {
		where = append(where, fmt.Sprintf(
			"(public OR COALESCE(cardinality(access_list), 0) = 0 OR $%d = ANY(access_list))", argIdx))
		args = append(args, filter.AccessibleBy)
		argIdx++
	}
	return strings.Join(where, " AND "), args
}

// Get returns the document stored under id. The embedding column is
// write-only; fetched documents carry content and metadata only.
func (s *Store) Get(ctx context.Context, id string) (*core.Document, error) {
	const query = `SELECT id, source, kind, title, content, metadata FROM documents WHERE id = $1`

	var (
		doc       core.Document
		metaBytes []byte
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &doc.Source, &doc.Kind, &doc.Title, &doc.Content, &metaBytes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, vector.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal(metaBytes, &doc.Metadata)
	return &doc, nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM documents`).Scan(&count)
	return count, err
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// toVectorLiteral renders an embedding in pgvector's input format.
func toVectorLiteral(embedding []float32, dim int) (string, error) {
	if len(embedding) == 0 {
		return "", vector.ErrEmbeddingRequired
	}
	if dim > 0 && len(embedding) != dim {
		return "", fmt.Errorf("%w: got %d, column is vector(%d)", vector.ErrDimensionMismatch, len(embedding), dim)
	}
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ",")), nil
}

func kindStrings(kinds []core.Kind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
