// Package main provides the policyqa CLI entry point.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"policyqa/internal/config"
	"policyqa/internal/dataset"
	"policyqa/internal/logging"
	"policyqa/internal/store"
)

var (
	// Global flags
	verbose    bool
	apiKey     string
	configPath string
	dataPath   string
	dbPath     string
	timeout    time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "policyqa",
	Short: "policyqa - insurance policy query assistant",
	Long: `policyqa is a conversational assistant over an insurance policy dataset.

Context retrieval is gated strictly on exact policy IDs (POL + three
digits): a query without a known ID gets no record context, never a
semantic-similarity match. The persisted embedding index exists for the
separate 'search' command and is intentionally not a fallback path.

Run without arguments to start the interactive chat loop.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

// chatCmd starts the interactive loop explicitly.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive policy question-answering loop",
	RunE:  runChat,
}

// ingestCmd builds the persisted embedding index.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Embed the policy dataset and persist the vector index",
	Long: `Loads the policy CSV, embeds every row, and persists the embeddings
to the SQLite index. Chat refuses to start until this has run once.`,
	RunE: runIngest,
}

// lookupCmd resolves a single query without starting a session.
var lookupCmd = &cobra.Command{
	Use:   "lookup [query]",
	Short: "Resolve record context for a query (no LLM call)",
	Long: `Runs the classifier and resolver on the given query and prints the
retrieved record, if any. Useful for checking what context a chat turn
would receive.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

// searchCmd queries the embedding index directly.
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Semantic search over the embedding index",
	Long: `Embeds the query and prints the top matches from the persisted
vector index. This path is deliberately separate from chat retrieval.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

// statusCmd shows system status.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show policyqa system status",
	RunE:  showStatus,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (or set GEMINI_API_KEY env)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: .policyqa/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "Policy CSV path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	searchCmd.Flags().IntP("top", "k", 5, "Number of results to return")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the YAML config and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if dataPath != "" {
		cfg.Dataset.CSVPath = dataPath
	}
	if dbPath != "" {
		cfg.Store.DatabasePath = dbPath
	}
	if verbose {
		cfg.Logging.Debug = true
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(stateDir(cfg), cfg.Logging.Debug, cfg.Logging.Level); err != nil {
		return nil, err
	}
	return cfg, nil
}

// stateDir is where logs and the default database live.
func stateDir(cfg *config.Config) string {
	if dir := filepath.Dir(cfg.Store.DatabasePath); dir != "." && dir != "" {
		return dir
	}
	return config.StateDirName
}

// loadRecords loads the dataset and builds the record store. A missing
// dataset file is a fatal startup failure.
func loadRecords(cfg *config.Config) (*store.RecordStore, error) {
	docs, err := dataset.Load(cfg.Dataset.CSVPath)
	if err != nil {
		return nil, err
	}
	records := store.BuildRecordStore(docs)
	logger.Info("Record store ready",
		zap.Int("documents", len(docs)),
		zap.Int("policies", records.Len()))
	return records, nil
}

// showStatus displays system status.
func showStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println("policyqa System Status")
	fmt.Println("======================")
	fmt.Printf("Version: %s\n", cfg.Version)
	fmt.Printf("Model:   %s\n", cfg.LLM.Model)
	fmt.Println()

	if cfg.LLM.APIKey != "" {
		fmt.Println("✓ Gemini API key configured")
	} else {
		fmt.Println("✗ Gemini API key not configured")
	}

	if _, err := os.Stat(cfg.Dataset.CSVPath); err == nil {
		fmt.Printf("✓ Dataset: %s\n", cfg.Dataset.CSVPath)
	} else {
		fmt.Printf("✗ Dataset missing: %s\n", cfg.Dataset.CSVPath)
	}

	db, err := store.NewLocalStore(cfg.Store.DatabasePath)
	if err != nil {
		fmt.Printf("✗ Database: %v\n", err)
		return nil
	}
	defer db.Close()

	n, err := db.CountVectors()
	if err != nil {
		fmt.Printf("✗ Vector index: %v\n", err)
		return nil
	}
	if n > 0 {
		fmt.Printf("✓ Vector index: %d embeddings (%s)\n", n, db.Path())
	} else {
		fmt.Printf("✗ Vector index empty — run 'policyqa ingest' first\n")
	}
	return nil
}
