// Package embedding generates vector embeddings for policy documents
// and search queries. The resolver never uses these; they feed the
// persisted index behind the `ingest` and `search` commands.
package embedding

import "context"

// Engine is the embedding provider interface.
type Engine interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch generates embeddings for multiple texts in one call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions returns the embedding dimensionality.
	Dimensions() int
	// Name identifies the engine for diagnostics.
	Name() string
	// Close releases the underlying client.
	Close() error
}
