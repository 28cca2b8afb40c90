package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/minjae/interview-report/internal/config"
	"github.com/minjae/interview-report/internal/db"
	"github.com/minjae/interview-report/internal/llm"
	"github.com/minjae/interview-report/internal/observability"
	"github.com/minjae/interview-report/internal/report"
)

var (
	buildGenerator  string
	buildEmbeddings string
	buildLogLevel   string
)

var buildReportCmd = &cobra.Command{
	Use:   "build-report <session-id>",
	Short: "Build one session's report and print it as JSON",
	Long:  `Rebuilds the report for a single session against the database and prints the resulting document to stdout. Useful for backfills and debugging.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runBuildReport,
}

func init() {
	buildReportCmd.Flags().StringVar(&buildGenerator, "generator", "", "Override the narrative generator flag (on/off)")
	buildReportCmd.Flags().StringVar(&buildEmbeddings, "embeddings", "", "Override the embedding coverage flag (on/off)")
	buildReportCmd.Flags().StringVar(&buildLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.AddCommand(buildReportCmd)
}

func runBuildReport(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	log := observability.NewLogger(buildLogLevel)

	sessionID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid session ID: %w", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	analytics, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	var gen llm.Generator = llm.Noop{}
	var emb llm.Embedder = llm.Noop{}
	if analytics.GeminiAPIKey != "" {
		llmCfg := llm.DefaultConfig().
			WithGenerationModel(analytics.GenerationModel).
			WithEmbeddingModel(analytics.EmbeddingModel)
		client, err := llm.NewClient(ctx, llmCfg, analytics.GeminiAPIKey)
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		gen, emb = client, client
	}

	builder := report.NewBuilder(database, database, database, analytics, gen, emb, log)

	var flags config.Flags
	if v, ok := config.ParseBool(buildGenerator); ok {
		flags.Generator = &v
	}
	if v, ok := config.ParseBool(buildEmbeddings); ok {
		flags.Embeddings = &v
	}

	rpt, err := builder.BuildReport(ctx, sessionID, flags)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rpt)
}
