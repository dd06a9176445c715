package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask [project-id] [question...]",
	Short: "Ask a one-off question about a project's documents",
	Long: `Answers the question from the project's most relevant passages and
lists the sources. The question is not added to the conversation history;
use 'corpus chat' for that.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

var chatCmd = &cobra.Command{
	Use:   "chat [project-id] [message...]",
	Short: "Send a message to the project conversation",
	Long: `Stores the message, answers it using the project's documents and the
recent conversation, and stores the reply.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runChat,
}

var historyCmd = &cobra.Command{
	Use:   "history [project-id]",
	Short: "Show the project conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var askJSON bool

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output answer and sources as JSON")
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(historyCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	question := strings.Join(args[1:], " ")
	answer, err := answerService.AnswerWithSources(context.Background(), args[0], nil, question)
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	if askJSON {
		return outputJSON(cmd, answer)
	}

	cmd.Println(answer.Text)
	if !answer.Grounded {
		return nil
	}
	cmd.Println()
	cmd.Println("Sources:")
	for i := range answer.Sources {
		cmd.Printf("  [%d] %s#%d (%.2f)\n", i+1,
			answer.Sources[i].DocumentID, answer.Sources[i].Position, answer.Sources[i].Score)
	}
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	reply, err := chatService.Send(context.Background(), args[0], strings.Join(args[1:], " "))
	if err != nil {
		if errors.Is(err, domain.ErrRetrievalUnavailable) {
			cmd.Println("Your message was saved but no reply could be generated. Try again later.")
		}
		return fmt.Errorf("chat failed: %w", err)
	}

	cmd.Println(reply.Content)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	messages, err := chatService.History(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(messages) == 0 {
		cmd.Println("No messages yet.")
		return nil
	}

	for i := range messages {
		cmd.Printf("[%s] %s: %s\n",
			messages[i].CreatedAt.Format("2006-01-02 15:04:05"), messages[i].Role, messages[i].Content)
	}
	return nil
}
