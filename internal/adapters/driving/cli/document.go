package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus/internal/core/domain"
	"github.com/custodia-labs/corpus/internal/core/ports/driving"
	"github.com/custodia-labs/corpus/internal/extractors"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage project documents",
	Long:  `Upload, list, inspect, delete, or re-index the documents of a project.`,
}

var documentUploadCmd = &cobra.Command{
	Use:   "upload [project-id] [file...]",
	Short: "Upload and index files",
	Long: `Stores each file in the project and indexes it. Use --no-ingest to
leave the documents pending and index them later with 'corpus ingest'.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runDocumentUpload,
}

var documentListCmd = &cobra.Command{
	Use:   "list [project-id]",
	Short: "List documents for a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [project-id] [doc-id]",
	Short: "Delete a document and its vectors",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentDelete,
}

var documentReindexCmd = &cobra.Command{
	Use:   "reindex [doc-id]",
	Short: "Re-run indexing for a document",
	Long:  `Extracts, chunks and embeds the document again, replacing its vectors.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentReindex,
}

// uploadNoIngest is a flag for the upload command.
var uploadNoIngest bool

func init() {
	documentUploadCmd.Flags().BoolVar(&uploadNoIngest, "no-ingest", false, "upload without indexing")

	documentCmd.AddCommand(documentUploadCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentReindexCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentUpload(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	projectID := args[0]
	ctx := context.Background()

	ids := make([]string, 0, len(args)-1)
	for _, path := range args[1:] {
		doc, err := uploadFile(ctx, documentService, projectID, path)
		if err != nil {
			return err
		}
		cmd.Printf("Uploaded %s as %s\n", doc.Name, doc.ID)
		ids = append(ids, doc.ID)
	}

	if uploadNoIngest {
		return nil
	}
	return ingestDocuments(ctx, cmd, ids)
}

// uploadFile reads path and uploads it under its base name.
func uploadFile(ctx context.Context, docs driving.DocumentService, projectID, path string) (*domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	name := filepath.Base(path)
	doc, err := docs.Upload(ctx, driving.UploadRequest{
		ProjectID: projectID,
		Name:      name,
		MIMEType:  extractors.ResolveMIMEType("", name),
		Data:      data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return doc, nil
}

func runDocumentList(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	projectID := args[0]

	docs, err := documentService.List(context.Background(), projectID)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Printf("No documents found for project: %s\n", projectID)
		return nil
	}

	cmd.Printf("Documents for project %s:\n\n", projectID)
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Name:   %s\n", docs[i].Name)
		cmd.Printf("    Status: %s\n", docs[i].Status)
		if docs[i].FailureReason != "" {
			cmd.Printf("    Reason: %s\n", docs[i].FailureReason)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Name:     %s\n", doc.Name)
	cmd.Printf("  Project:  %s\n", doc.ProjectID)
	cmd.Printf("  Type:     %s\n", doc.MIMEType)
	cmd.Printf("  Status:   %s\n", doc.Status)
	if doc.FailureReason != "" {
		cmd.Printf("  Reason:   %s\n", doc.FailureReason)
	}
	cmd.Printf("  Chunks:   %d\n", doc.ChunkCount)
	cmd.Printf("  Created:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:  %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	projectID, docID := args[0], args[1]
	if err := documentService.Delete(context.Background(), projectID, docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s deleted.\n", docID)
	return nil
}

func runDocumentReindex(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	docID := args[0]
	cmd.Printf("Indexing document %s...\n", docID)

	status, err := ingestionService.Ingest(context.Background(), docID)
	if err != nil {
		return fmt.Errorf("failed to index document (status %s): %w", status, err)
	}

	cmd.Printf("Document %s %s.\n", docID, status)
	return nil
}
