// Package storage provides the versioned chunk store.
//
// Information Hiding:
// - Storage backend implementation details hidden behind interface
// - Allows swapping between SQLite, a relational table with a generation
//   column, or a managed vector database without API changes
// - Supersession transaction mechanics encapsulated per backend

package storage

import (
	"context"
	"errors"

	"github.com/richinex/toolvault/model"
)

// ErrEmptyGeneration is returned when a write would supersede the previous
// generation without inserting a replacement. Committing it would leave
// readers with zero latest chunks for a tool that has written before.
var ErrEmptyGeneration = errors.New("refusing to store an empty generation")

// ChunkStore persists finding chunks with generation versioning.
//
// Required operational properties:
//   - ReplaceLatest is atomic per (repository, tool) pair: readers filtering
//     on latest never observe a mix of generations or a transient gap.
//   - QueryLatest is exact metadata match; no similarity search is needed.
type ChunkStore interface {
	// ReplaceLatest supersedes the current latest generation for
	// (repositoryID, toolID) and installs chunks as the new one,
	// all-or-nothing. Every chunk must carry the given repository and
	// tool IDs.
	ReplaceLatest(ctx context.Context, repositoryID, toolID string, chunks []model.FindingChunk) error

	// QueryLatest returns all latest chunks for the repository visible to
	// the given role, across all tools. Returns an empty slice (not nil)
	// when nothing has been stored yet.
	QueryLatest(ctx context.Context, repositoryID string, role model.AgentRole) ([]model.FindingChunk, error)

	// DeleteRepository hard-deletes every chunk, all generations, for a
	// repository. Returns the number of chunks removed.
	DeleteRepository(ctx context.Context, repositoryID string) (int64, error)

	// Summary reports whether any latest chunks exist for the repository,
	// how many distinct tools contributed, and the most recent execution
	// time.
	Summary(ctx context.Context, repositoryID string) (model.RepositorySummary, error)
}
