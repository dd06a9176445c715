package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/services"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [project-id]",
	Short: "Index the pending documents of a project",
	Long: `Indexes every document of the project that is not yet processed.
Use --all to re-index processed documents too. Documents are indexed in
parallel by the configured number of workers.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

// ingestAll is a flag for the ingest command.
var ingestAll bool

func init() {
	ingestCmd.Flags().BoolVarP(&ingestAll, "all", "a", false, "re-index processed documents too")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	projectID := args[0]
	ctx := context.Background()

	docs, err := documentService.List(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	var ids []string
	for i := range docs {
		if ingestAll || docs[i].Status != domain.StatusProcessed {
			ids = append(ids, docs[i].ID)
		}
	}
	if len(ids) == 0 {
		cmd.Println("Nothing to index.")
		return nil
	}

	cmd.Printf("Indexing %d documents...\n", len(ids))
	return ingestDocuments(ctx, cmd, ids)
}

// ingestDocuments runs ids through an ingest queue and reports each outcome.
func ingestDocuments(ctx context.Context, cmd *cobra.Command, ids []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}
	if len(ids) == 0 {
		return nil
	}

	var (
		mu     sync.Mutex
		failed int
	)
	queue := services.NewIngestQueue(ctx, ingestionService, ingestWorkers,
		services.WithQueueMetrics(appMetrics),
		services.WithResultHandler(func(r services.IngestResult) {
			mu.Lock()
			defer mu.Unlock()
			if r.Err != nil {
				failed++
				cmd.Printf("  %s: %s (%v)\n", r.DocumentID, r.Status, r.Err)
				return
			}
			cmd.Printf("  %s: %s\n", r.DocumentID, r.Status)
		}))

	for _, id := range ids {
		if err := queue.Submit(id); err != nil {
			queue.Close()
			return fmt.Errorf("failed to queue document %s: %w", id, err)
		}
	}
	queue.Close()

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed to index", failed, len(ids))
	}
	cmd.Printf("Indexed %d documents.\n", len(ids))
	return nil
}
