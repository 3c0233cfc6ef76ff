package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/traingrc/textweaver/internal/models"
)

// ErrTokenNotFound is returned when a bearer token has no row in
// access_tokens.
var ErrTokenNotFound = errors.New("access token not found")

var operatorByMetric = map[Metric]string{
	MetricEuclidean:    "<->",
	MetricCosine:       "<=>",
	MetricInnerProduct: "<#>",
}

// PostgresIndex stores records in Postgres with the pgvector extension.
type PostgresIndex struct {
	db     *sql.DB
	metric Metric
}

// NewPostgresIndex opens a connection pool, verifies connectivity, and
// ensures the schema exists. dims fixes the vector column dimension and must
// match the embedding model.
func NewPostgresIndex(connString string, metric Metric, dims int) (*PostgresIndex, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("unable to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	pg := &PostgresIndex{db: db, metric: metric}
	if err := pg.ensureSchema(ctx, dims); err != nil {
		return nil, err
	}

	return pg, nil
}

func (pg *PostgresIndex) ensureSchema(ctx context.Context, dims int) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			namespace TEXT NOT NULL DEFAULT '',
			filename TEXT NOT NULL,
			metadata JSONB NOT NULL,
			embedding VECTOR(%d) NOT NULL,
			chunk_text TEXT NOT NULL DEFAULT ''
		)`, dims),
		`CREATE INDEX IF NOT EXISTS records_namespace_idx ON records (namespace)`,
		`CREATE TABLE IF NOT EXISTS access_tokens (
			token TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			expiration TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := pg.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// Upsert writes the whole batch in one transaction keyed on record id.
func (pg *PostgresIndex) Upsert(ctx context.Context, namespace string, records []models.Record) error {
	if len(records) == 0 {
		return errors.New("no records to upsert")
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := pg.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (id, namespace, filename, metadata, embedding, chunk_text)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			namespace = EXCLUDED.namespace,
			filename = EXCLUDED.filename,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding,
			chunk_text = EXCLUDED.chunk_text
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if len(rec.Vector) == 0 {
			return fmt.Errorf("record %s has an empty vector", rec.ID)
		}

		metadata, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata for %s: %w", rec.ID, err)
		}

		vec := pgvector.NewVector(rec.Vector)
		_, err = stmt.ExecContext(ctx, rec.ID, namespace,
			rec.Metadata[models.MetaFilename], metadata, vec, rec.Metadata[models.MetaText])
		if err != nil {
			return fmt.Errorf("failed to upsert record %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}
	return nil
}

// Query runs a top-k nearest-neighbor lookup scoped to the namespace.
func (pg *PostgresIndex) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]models.Match, error) {
	if len(vector) == 0 {
		return nil, errors.New("query vector cannot be empty")
	}
	if topK <= 0 {
		return nil, errors.New("topK must be greater than zero")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT id, metadata, embedding %s $1 AS distance
		FROM records
		WHERE namespace = $2
		ORDER BY distance
		LIMIT $3
	`, operatorByMetric[pg.metric])

	rows, err := pg.db.QueryContext(ctx, query, pgvector.NewVector(vector), namespace, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search query: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		var (
			match    models.Match
			metadata []byte
		)
		if err := rows.Scan(&match.ID, &metadata, &match.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		if err := json.Unmarshal(metadata, &match.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata for %s: %w", match.ID, err)
		}
		matches = append(matches, match)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating through matches: %w", rows.Err())
	}
	return matches, nil
}

// GetAccessToken looks up a bearer token.
func (pg *PostgresIndex) GetAccessToken(ctx context.Context, token string) (models.AccessToken, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var out models.AccessToken
	err := pg.db.QueryRowContext(ctx,
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

func (pg *PostgresIndex) Close() error {
	return pg.db.Close()
}
