package main

import (
	"context"
	"fmt"
	"regexp"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"policyqa/internal/dataset"
	"policyqa/internal/embedding"
	"policyqa/internal/store"
)

var ingestPolicyID = regexp.MustCompile(`policy_id:\s*(POL\d+)`)

// runIngest embeds the full corpus and persists the vector index.
// Batches run with bounded parallelism; the dialogue loop never does.
func runIngest(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("no API key configured: pass --api-key or set GEMINI_API_KEY")
	}

	docs, err := dataset.Load(cfg.Dataset.CSVPath)
	if err != nil {
		return err
	}

	db, err := store.NewLocalStore(cfg.Store.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := embedding.NewGenAIEngine(cfg.LLM.APIKey, cfg.Embedding.Model, cfg.Embedding.TaskType)
	if err != nil {
		return err
	}
	defer engine.Close()

	// Re-ingestion replaces the index wholesale.
	if err := db.ClearVectors(); err != nil {
		return err
	}

	batchSize := cfg.Embedding.BatchSize
	if batchSize <= 0 {
		batchSize = 16
	}
	parallelism := cfg.Embedding.Parallelism
	if parallelism <= 0 {
		parallelism = 4
	}

	logger.Info("Ingesting policy dataset",
		zap.Int("documents", len(docs)),
		zap.Int("batch_size", batchSize),
		zap.String("engine", engine.Name()))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for start := 0; start < len(docs); start += batchSize {
		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		g.Go(func() error {
			texts := make([]string, len(batch))
			for i, doc := range batch {
				texts[i] = doc.Content
			}

			embeddings, err := engine.EmbedBatch(gctx, texts)
			if err != nil {
				return fmt.Errorf("embedding batch failed: %w", err)
			}
			if len(embeddings) != len(batch) {
				return fmt.Errorf("embedding batch returned %d vectors for %d documents", len(embeddings), len(batch))
			}

			for i, doc := range batch {
				policyID := ""
				if m := ingestPolicyID.FindStringSubmatch(doc.Content); m != nil {
					policyID = m[1]
				}
				if err := db.StoreVector(policyID, doc.Content, embeddings[i], doc.Metadata); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	n, err := db.CountVectors()
	if err != nil {
		return err
	}
	logger.Info("Ingestion complete", zap.Int("embeddings", n))
	fmt.Printf("Ingested %d documents into %s\n", n, db.Path())
	return nil
}
