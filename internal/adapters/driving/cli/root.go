// Package cli provides the cobra command tree for the corpus binary.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus/internal/core/ports/driving"
	"github.com/custodia-labs/corpus/internal/logger"
	"github.com/custodia-labs/corpus/internal/metrics"
)

// version is overridden at build time with -ldflags.
var version = "dev"

// Services holds the driving ports the commands call into.
type Services struct {
	Projects  driving.ProjectService
	Documents driving.DocumentService
	Ingestion driving.IngestionService
	Retrieval driving.RetrievalService
	Answers   driving.AnswerService
	Chat      driving.ChatService
	Settings  driving.SettingsService
	Metrics   *metrics.Metrics

	// Workers is the ingest queue size used by bulk commands.
	Workers int
}

var (
	projectService   driving.ProjectService
	documentService  driving.DocumentService
	ingestionService driving.IngestionService
	retrievalService driving.RetrievalService
	answerService    driving.AnswerService
	chatService      driving.ChatService
	settingsService  driving.SettingsService
	appMetrics       *metrics.Metrics
	ingestWorkers    int
)

var (
	verbose bool
	ownerID string
)

var rootCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Index documents and ask grounded questions about them",
	Long: `corpus keeps projects of uploaded documents, indexes them into
embedding vectors and answers questions using only the passages that
match.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&ownerID, "owner", "local", "owner id for created and listed projects")
}

// SetServices wires the commands to the application services.
func SetServices(s *Services) {
	projectService = s.Projects
	documentService = s.Documents
	ingestionService = s.Ingestion
	retrievalService = s.Retrieval
	answerService = s.Answers
	chatService = s.Chat
	settingsService = s.Settings
	appMetrics = s.Metrics
	ingestWorkers = s.Workers
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command. Long-running commands stop when ctx is cancelled.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
