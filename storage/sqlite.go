// SQLite chunk store.
//
// Information Hiding:
// - SQLite connection management hidden behind ChunkStore
// - Schema and supersession transaction encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/richinex/toolvault/embed"
	"github.com/richinex/toolvault/model"
)

// SqliteStore implements ChunkStore on a SQLite database file.
type SqliteStore struct {
	db *sql.DB
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store := &SqliteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// NewSqliteInMemory creates an in-memory store (useful for testing).
// The pool is pinned to one connection: each sqlite :memory: connection is
// its own database, so a pool of them would not share data.
func NewSqliteInMemory() (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &SqliteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			repository_id TEXT NOT NULL,
			tool_id TEXT NOT NULL,
			agent_role TEXT NOT NULL,
			content TEXT NOT NULL,
			importance_score INTEGER NOT NULL,
			findings_count INTEGER NOT NULL,
			critical_count INTEGER NOT NULL,
			high_count INTEGER NOT NULL,
			executed_at INTEGER NOT NULL,
			is_latest INTEGER NOT NULL,
			scheduled_run INTEGER NOT NULL,
			embedding BLOB
		);

		CREATE INDEX IF NOT EXISTS idx_chunks_latest_role
		ON chunks(repository_id, agent_role, is_latest);

		CREATE INDEX IF NOT EXISTS idx_chunks_repo_tool
		ON chunks(repository_id, tool_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// ReplaceLatest supersedes the current latest generation for the pair and
// installs the new one in a single transaction. Readers either see the old
// generation in full or the new one in full.
func (s *SqliteStore) ReplaceLatest(ctx context.Context, repositoryID, toolID string, chunks []model.FindingChunk) error {
	if len(chunks) == 0 {
		return ErrEmptyGeneration
	}
	for _, c := range chunks {
		if c.RepositoryID != repositoryID || c.ToolID != toolID {
			return fmt.Errorf("chunk %s targets (%s, %s), not (%s, %s)",
				c.ID, c.RepositoryID, c.ToolID, repositoryID, toolID)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback is a no-op after Commit.
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"UPDATE chunks SET is_latest = 0 WHERE repository_id = ? AND tool_id = ? AND is_latest = 1",
		repositoryID, toolID)
	if err != nil {
		return fmt.Errorf("failed to supersede previous generation: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks
		(id, repository_id, tool_id, agent_role, content, importance_score,
		 findings_count, critical_count, high_count, executed_at, is_latest,
		 scheduled_run, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		_, err = stmt.ExecContext(ctx,
			c.ID,
			c.RepositoryID,
			c.ToolID,
			string(c.AgentRole),
			c.Content,
			c.ImportanceScore,
			c.FindingsCount,
			c.CriticalCount,
			c.HighCount,
			c.ExecutedAt.UnixMilli(),
			boolToInt(c.ScheduledRun),
			embed.EncodeVector(c.Embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit generation: %w", err)
	}
	return nil
}

// QueryLatest returns all latest chunks for the repository visible to the
// given role, ordered by tool then importance.
func (s *SqliteStore) QueryLatest(ctx context.Context, repositoryID string, role model.AgentRole) ([]model.FindingChunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, repository_id, tool_id, agent_role, content,
		       importance_score, findings_count, critical_count, high_count,
		       executed_at, is_latest, scheduled_run, embedding
		FROM chunks
		WHERE repository_id = ? AND agent_role = ? AND is_latest = 1
		ORDER BY tool_id ASC, importance_score DESC, id ASC`,
		repositoryID, string(role))
	if err != nil {
		return nil, fmt.Errorf("failed to query latest chunks: %w", err)
	}
	defer rows.Close()

	chunks := []model.FindingChunk{} // empty slice, not nil
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunks: %w", err)
	}
	return chunks, nil
}

// DeleteRepository hard-deletes every chunk for a repository.
func (s *SqliteStore) DeleteRepository(ctx context.Context, repositoryID string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM chunks WHERE repository_id = ?", repositoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete repository chunks: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted chunks: %w", err)
	}
	return count, nil
}

// Summary reports latest-generation presence for a repository.
func (s *SqliteStore) Summary(ctx context.Context, repositoryID string) (model.RepositorySummary, error) {
	var toolCount int
	var lastExecuted sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT tool_id), MAX(executed_at)
		FROM chunks
		WHERE repository_id = ? AND is_latest = 1`,
		repositoryID).Scan(&toolCount, &lastExecuted)
	if err != nil {
		return model.RepositorySummary{}, fmt.Errorf("failed to summarize repository: %w", err)
	}

	summary := model.RepositorySummary{
		HasResults: toolCount > 0,
		ToolCount:  toolCount,
	}
	if lastExecuted.Valid {
		summary.LastExecuted = time.UnixMilli(lastExecuted.Int64)
	}
	return summary, nil
}

// rowScanner covers both *sql.Rows and *sql.Row.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanChunk(row rowScanner) (model.FindingChunk, error) {
	var c model.FindingChunk
	var role string
	var executedAt int64
	var isLatest, scheduled int
	var blob []byte

	err := row.Scan(
		&c.ID,
		&c.RepositoryID,
		&c.ToolID,
		&role,
		&c.Content,
		&c.ImportanceScore,
		&c.FindingsCount,
		&c.CriticalCount,
		&c.HighCount,
		&executedAt,
		&isLatest,
		&scheduled,
		&blob,
	)
	if err != nil {
		return model.FindingChunk{}, fmt.Errorf("failed to scan chunk: %w", err)
	}

	c.AgentRole = model.AgentRole(role)
	c.ExecutedAt = time.UnixMilli(executedAt)
	c.IsLatest = isLatest != 0
	c.ScheduledRun = scheduled != 0

	vec, err := embed.DecodeVector(blob)
	if err != nil {
		return model.FindingChunk{}, fmt.Errorf("chunk %s: %w", c.ID, err)
	}
	c.Embedding = vec
	return c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ChunkStore = (*SqliteStore)(nil)
