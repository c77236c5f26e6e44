package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var rememberUserID string

var rememberCmd = &cobra.Command{
	Use:   "remember <fact>...",
	Short: "Store a fact about a user",
	Long: `Store a fact about a user so future answers can take it into
account.

Examples:
  docchat remember -u alice "has the premium home insurance plan"
  docchat remember -u alice prefers short answers`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemember,
}

func init() {
	rememberCmd.Flags().StringVarP(&rememberUserID, "user", "u", os.Getenv("DOCCHAT_USER_ID"), "user id the fact belongs to")
}

func runRemember(cmd *cobra.Command, args []string) error {
	if rememberUserID == "" {
		return fmt.Errorf("a user id is required (--user or DOCCHAT_USER_ID)")
	}

	fact := strings.Join(args, " ")
	if err := api.Remember(context.Background(), rememberUserID, fact); err != nil {
		return fmt.Errorf("remember: %w", err)
	}

	fmt.Println(theme.successStyle().Render("✓ ") + "remembered for " + rememberUserID)
	return nil
}
