package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file.pdf> [file.pdf ...]",
	Short: "Upload PDF documents",
	Long: `Upload one or more PDF documents for the client/product.

Uploaded documents are stored but not yet searchable; run 'docchat
vectorize' afterwards to (re)build the index.

Examples:
  docchat upload policy.pdf -c acme -p home
  docchat upload terms.pdf conditions.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	for _, path := range args {
		fmt.Println(theme.statusStyle().Render(fmt.Sprintf("Uploading %s...", path)))

		name, err := api.Upload(ctx, clientID, productID, path)
		if err != nil {
			return fmt.Errorf("upload %s: %w", path, err)
		}

		fmt.Println(theme.successStyle().Render("✓ ") + fmt.Sprintf("%s stored as %s", path, name))
	}

	fmt.Println(theme.hintStyle().Render("Run 'docchat vectorize' to make the documents searchable."))
	return nil
}
