package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/swdunlop/portable-html-go/portable"
)

func newRenderCmd() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render portable text JSON from a file or stdin as HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if len(args) == 1 && args[0] != "-" {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read portable text: %w", err)
			}
			in := portable.FromJSON(data)
			if plain {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), portable.PlainText(in))
			} else {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), portable.Render(in))
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print the text without markup")
	return cmd
}
