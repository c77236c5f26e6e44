// Package cli provides the command-line interface for docchat.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docchat-labs/docchat/internal/client"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	serverURL string
	clientID  string
	productID string

	// API client, created before every command runs.
	api *client.Client

	theme = defaultTheme
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with your documents",
	Long: `Docchat lets you upload PDF documents, build a searchable index over
them, and ask questions answered from their content.

Documents and conversations are scoped to a client/product pair, so one
server can serve many tenants side by side.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		api = client.New(serverURL)

		// remember is scoped to a user, not a tenant.
		if cmd.Name() == "remember" {
			return nil
		}
		if clientID == "" || productID == "" {
			return fmt.Errorf("--client and --product are required (or set DOCCHAT_CLIENT_ID / DOCCHAT_PRODUCT_ID)")
		}
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "server URL (default $DOCCHAT_SERVER_URL or http://localhost:8080)")
	rootCmd.PersistentFlags().StringVarP(&clientID, "client", "c", os.Getenv("DOCCHAT_CLIENT_ID"), "client id")
	rootCmd.PersistentFlags().StringVarP(&productID, "product", "p", os.Getenv("DOCCHAT_PRODUCT_ID"), "product id")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(vectorizeCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(rememberCmd)
}
