package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docchat-labs/docchat/internal/client"
)

var (
	chatConversationID string
	chatUserID         string
	chatNoStream       bool
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask questions about the uploaded documents",
	Long: `Ask a question answered from the indexed documents.

With a message argument, asks once and prints the answer. Without one,
starts an interactive session where follow-up questions share the same
conversation; end it with Ctrl+D or 'exit'.

Examples:
  docchat chat "Is storm damage covered?" -c acme -p home
  docchat chat --conversation 9f2c1a
  docchat chat`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatConversationID, "conversation", "", "continue an existing conversation")
	chatCmd.Flags().StringVarP(&chatUserID, "user", "u", os.Getenv("DOCCHAT_USER_ID"), "user id for personalized answers")
	chatCmd.Flags().BoolVar(&chatNoStream, "no-stream", false, "wait for the full answer instead of streaming")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if len(args) == 1 {
		return askOnce(ctx, args[0])
	}
	return interactive(ctx)
}

func askOnce(ctx context.Context, message string) error {
	convID, err := sendTurn(ctx, message)
	if err != nil {
		return err
	}
	chatConversationID = convID
	fmt.Println(theme.hintStyle().Render("conversation: " + convID))
	return nil
}

func interactive(ctx context.Context) error {
	fmt.Println(theme.statusStyle().Render("Interactive chat. Type 'exit' or press Ctrl+D to quit."))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(theme.statusStyle().Render("> "))
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if message == "exit" || message == "quit" {
			return nil
		}

		convID, err := sendTurn(ctx, message)
		if err != nil {
			fmt.Fprintln(os.Stderr, theme.errorStyle().Render("Error: ")+err.Error())
			continue
		}
		chatConversationID = convID
	}
}

// sendTurn sends one message, prints the answer, and returns the
// conversation id so follow-ups stay in the same conversation.
func sendTurn(ctx context.Context, message string) (string, error) {
	req := client.ChatRequest{
		ConversationID: chatConversationID,
		ClientID:       clientID,
		ProductID:      productID,
		Message:        message,
	}
	if chatUserID != "" {
		req.UserID = &chatUserID
	}

	if chatNoStream {
		result, err := api.Chat(ctx, req)
		if err != nil {
			return "", err
		}
		fmt.Println(result.Answer)
		return result.ConversationID, nil
	}

	convID, err := api.ChatStream(ctx, req, func(chunk string) {
		fmt.Print(chunk)
	})
	if err != nil {
		return "", err
	}
	fmt.Println()
	return convID, nil
}
