// This file implements the interactive chat loop: one line in, one
// answer out, strictly sequential.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"policyqa/internal/chat"
	"policyqa/internal/perception"
	"policyqa/internal/retrieval"
	"policyqa/internal/session"
	"policyqa/internal/store"
)

var (
	youStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	botStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	dimStyle = lipgloss.NewStyle().Faint(true)
)

// runChat boots the full pipeline and enters the dialogue loop.
func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("no API key configured: pass --api-key or set GEMINI_API_KEY")
	}

	// Startup failures here are fatal by design: no dataset or no
	// persisted index means there is nothing to answer from.
	records, err := loadRecords(cfg)
	if err != nil {
		return err
	}

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

	client := perception.NewGeminiClientWithConfig(perception.GeminiConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLMTimeout(),
	})

	sess := session.New()
	engine := chat.NewEngine(retrieval.NewResolver(records), client, sess, db)
	logger.Info("Chat session starting",
		zap.String("session", sess.ID),
		zap.String("model", cfg.LLM.Model))

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)

	fmt.Println(dimStyle.Render("--- Insurance Policy Query Assistant Ready ---"))
	fmt.Println(dimStyle.Render("Type 'exit' or 'quit' to end the conversation."))

	return runLoop(cmd.Context(), engine, renderer, os.Stdin, os.Stdout)
}

// runLoop reads one line per turn until the session closes or input
// ends. Each turn fully completes before the next read.
func runLoop(ctx context.Context, engine *chat.Engine, renderer *glamour.TermRenderer, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	reader := bufio.NewReader(in)

	for {
		fmt.Fprintf(out, "\n%s ", youStyle.Render("[You]:"))
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Fprintln(out)
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		answer, closed := engine.HandleInput(ctx, input)
		fmt.Fprintf(out, "%s %s\n", botStyle.Render("[Chatbot]:"), renderAnswer(renderer, answer))
		if closed {
			return nil
		}
	}
}

// renderAnswer renders markdown when a renderer is available, falling
// back to plain text.
func renderAnswer(renderer *glamour.TermRenderer, answer string) string {
	if renderer == nil {
		return answer
	}
	rendered, err := renderer.Render(answer)
	if err != nil {
		return answer
	}
	return strings.TrimSpace(rendered)
}
