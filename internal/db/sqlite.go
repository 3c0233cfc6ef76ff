package db

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/traingrc/textweaver/internal/models"
)

// SQLiteIndex is an embedded fallback index for deployments without
// Postgres. Vectors are stored as little-endian float32 blobs and ranked by
// a brute-force scan, which is fine for small private corpora.
type SQLiteIndex struct {
	conn   *sql.DB
	metric Metric
}

// NewSQLiteIndex opens (or creates) the database file and its schema.
func NewSQLiteIndex(dataSourceName string, metric Metric) (*SQLiteIndex, error) {
	conn, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database: %w", err)
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			namespace TEXT NOT NULL DEFAULT '',
			filename TEXT NOT NULL,
			metadata TEXT NOT NULL,
			embedding BLOB NOT NULL,
			chunk_text TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS records_namespace_idx ON records (namespace);`,
		`CREATE TABLE IF NOT EXISTS access_tokens (
			token TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			expiration TIMESTAMP NOT NULL
		);`,
	}

	for _, q := range queries {
		if _, err := conn.Exec(q); err != nil {
			return nil, fmt.Errorf("failed to ensure sqlite schema: %w", err)
		}
	}

	return &SQLiteIndex{conn: conn, metric: metric}, nil
}

func (s *SQLiteIndex) Upsert(ctx context.Context, namespace string, records []models.Record) error {
	if len(records) == 0 {
		return errors.New("no records to upsert")
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO records (id, namespace, filename, metadata, embedding, chunk_text)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			namespace = excluded.namespace,
			filename = excluded.filename,
			metadata = excluded.metadata,
			embedding = excluded.embedding,
			chunk_text = excluded.chunk_text
	`

	for _, rec := range records {
		if len(rec.Vector) == 0 {
			return fmt.Errorf("record %s has an empty vector", rec.ID)
		}

		metadata, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata for %s: %w", rec.ID, err)
		}

		_, err = tx.ExecContext(ctx, query, rec.ID, namespace,
			rec.Metadata[models.MetaFilename], string(metadata),
			encodeVector(rec.Vector), rec.Metadata[models.MetaText])
		if err != nil {
			return fmt.Errorf("failed to upsert record %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}
	return nil
}

func (s *SQLiteIndex) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]models.Match, error) {
	if len(vector) == 0 {
		return nil, errors.New("query vector cannot be empty")
	}
	if topK <= 0 {
		return nil, errors.New("topK must be greater than zero")
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, metadata, embedding FROM records WHERE namespace = $1`, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search query: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		var (
			match    models.Match
			metadata string
			blob     []byte
		)
		if err := rows.Scan(&match.ID, &metadata, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		if err := json.Unmarshal([]byte(metadata), &match.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata for %s: %w", match.ID, err)
		}

		stored, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("failed to decode vector for %s: %w", match.ID, err)
		}
		match.Distance = distance(s.metric, vector, stored)
		matches = append(matches, match)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating through matches: %w", rows.Err())
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// GetAccessToken looks up a bearer token.
func (s *SQLiteIndex) GetAccessToken(ctx context.Context, token string) (models.AccessToken, error) {
	var out models.AccessToken
	err := s.conn.QueryRowContext(ctx,
		`SELECT username, token, expiration FROM access_tokens WHERE token = $1`,
		token).Scan(&out.Username, &out.Token, &out.Expiration)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AccessToken{}, ErrTokenNotFound
	}
	if err != nil {
		return models.AccessToken{}, fmt.Errorf("failed to fetch access token: %w", err)
	}
	return out, nil
}

func (s *SQLiteIndex) Close() error {
	return s.conn.Close()
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, errors.New("malformed vector blob")
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, nil
}

// distance mirrors the pgvector operators so both backends rank and score
// identically: <-> L2 distance, <=> cosine distance, <#> negated inner
// product. Mismatched lengths rank last.
func distance(metric Metric, a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var dot, normA, normB, sq float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
		d := x - y
		sq += d * d
	}

	switch metric {
	case MetricCosine:
		if normA == 0 || normB == 0 {
			return 1
		}
		return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
	case MetricInnerProduct:
		return -dot
	default:
		return math.Sqrt(sq)
	}
}
