package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"policyqa/internal/embedding"
	"policyqa/internal/retrieval"
	"policyqa/internal/store"
)

// runLookup resolves record context for a query without any LLM call.
func runLookup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	logger.Info("Resolving query", zap.String("query", query))

	records, err := loadRecords(cfg)
	if err != nil {
		return err
	}

	resolver := retrieval.NewResolver(records)
	result := resolver.Resolve(query)

	if len(result) == 0 {
		if id, ok := retrieval.ExtractPolicyID(query); ok {
			fmt.Printf("Policy ID %s not found in the record store.\n", id)
		} else {
			fmt.Println("No policy ID in query; no context would be retrieved.")
		}
		return nil
	}

	rec := result[0]
	fmt.Printf("Retrieved policy %s (source %s, row %s):\n\n%s\n",
		rec.ID, rec.Metadata["source"], rec.Metadata["row"], rec.Content)
	return nil
}

// runSearch embeds the query and prints the top matches from the
// persisted index. Deliberately a separate path from chat retrieval.
func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("no API key configured: pass --api-key or set GEMINI_API_KEY")
	}

	k, _ := cmd.Flags().GetInt("top")
	query := strings.Join(args, " ")

	db, err := store.NewLocalStore(cfg.Store.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.CountVectors()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("vector index at %s is empty: run 'policyqa ingest' first", db.Path())
	}

	engine, err := embedding.NewGenAIEngine(cfg.LLM.APIKey, cfg.Embedding.Model, "RETRIEVAL_QUERY")
	if err != nil {
		return err
	}
	defer engine.Close()

	queryVec, err := engine.Embed(ctx, query)
	if err != nil {
		return err
	}

	results, err := db.Search(queryVec, k)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for i, entry := range results {
		fmt.Printf("%d. %s (similarity %.4f)\n", i+1, entry.PolicyID, entry.Similarity)
		for _, line := range strings.Split(entry.Content, "\n") {
			fmt.Printf("   %s\n", line)
		}
	}
	return nil
}
