package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus/internal/core/domain"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  `Create, list, inspect, or delete projects.`,
}

var projectCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectCreate,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectGetCmd = &cobra.Command{
	Use:   "get [project-id]",
	Short: "Show project info",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectGet,
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete [project-id]",
	Short: "Delete a project and everything in it",
	Long: `Removes every document's vectors and content, the conversation
history and the project itself. If some documents cannot be cleaned the
project is kept and the command can be run again.`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectDelete,
}

// projectListAll is a flag for the list command.
var projectListAll bool

func init() {
	projectListCmd.Flags().BoolVarP(&projectListAll, "all", "a", false, "list projects of every owner")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectGetCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	rootCmd.AddCommand(projectCmd)
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	project, err := projectService.Create(context.Background(), ownerID, args[0])
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	cmd.Printf("Created project %s (%s)\n", project.ID, project.Name)
	return nil
}

func runProjectList(cmd *cobra.Command, _ []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	owner := ownerID
	if projectListAll {
		owner = ""
	}

	projects, err := projectService.List(context.Background(), owner)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	if len(projects) == 0 {
		cmd.Println("No projects found.")
		return nil
	}

	for i := range projects {
		cmd.Printf("  %s  %s\n", projects[i].ID, projects[i].Name)
	}
	cmd.Printf("\nTotal: %d projects\n", len(projects))
	return nil
}

func runProjectGet(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	project, err := projectService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}

	cmd.Printf("Project: %s\n\n", project.ID)
	cmd.Printf("  Name:     %s\n", project.Name)
	cmd.Printf("  Owner:    %s\n", project.OwnerID)
	cmd.Printf("  Created:  %s\n", project.CreatedAt.Format("2006-01-02 15:04:05"))

	if documentService != nil {
		docs, err := documentService.List(context.Background(), project.ID)
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}
		counts := make(map[domain.DocumentStatus]int)
		for i := range docs {
			counts[docs[i].Status]++
		}
		cmd.Printf("  Documents: %d (%d processed, %d pending, %d failed)\n", len(docs),
			counts[domain.StatusProcessed], counts[domain.StatusPending], counts[domain.StatusFailed])
	}
	return nil
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	projectID := args[0]
	err := projectService.Delete(context.Background(), projectID)

	var delErr *domain.InconsistentDeleteError
	if errors.As(err, &delErr) {
		cmd.Printf("Project %s was only partially deleted. Documents still to clean:\n", projectID)
		for _, id := range delErr.FailedDocumentIDs() {
			cmd.Printf("  %s: %v\n", id, delErr.Failed[id])
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	cmd.Printf("Project %s deleted.\n", projectID)
	return nil
}
