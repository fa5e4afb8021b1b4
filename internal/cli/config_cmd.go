package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/swdunlop/portable-html-go/internal/config"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration and what each key means",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := getConfig(cmd)
			out := cmd.OutOrStdout()
			if path := v.ConfigFileUsed(); path != "" {
				_, _ = fmt.Fprintf(out, "# loaded from %s\n", path)
			}
			for _, o := range config.Options() {
				value := v.Get(o.Key)
				if o.Key == "store.token" && v.GetString(o.Key) != "" {
					value = "<redacted>"
				}
				if list, ok := value.([]string); ok {
					value = strings.Join(list, ",")
				}
				if _, err := fmt.Fprintf(out, "%-18s = %-32v # %s\n", o.Key, value, o.Comment); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
