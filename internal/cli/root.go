// Package cli implements the sirah command line: serving the site, rendering portable text and showing the
// configuration.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/swdunlop/portable-html-go/hog"
	"github.com/swdunlop/portable-html-go/internal/config"
)

type ctxKey string

const configKey ctxKey = "config"

// Execute runs the sirah command line with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command.  Configuration is loaded and the logger installed before any subcommand
// runs.
func NewRootCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:           "sirah",
		Short:         "Serve an Arabic content site from a portable text content store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			if err := config.Load(v, cfgPath); err != nil {
				return err
			}
			if err := config.Check(v); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			log, err := hog.New(cmd.ErrOrStderr(), v.GetString("log.format"), v.GetString("log.level"))
			if err != nil {
				return err
			}
			zerolog.DefaultContextLogger = &log

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = log.WithContext(ctx)
			cmd.SetContext(context.WithValue(ctx, configKey, v))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (yaml|toml|json)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newConfigCmd())

	cmd.Run = func(cmd *cobra.Command, args []string) { _ = cmd.Help() }

	return cmd
}

func getConfig(cmd *cobra.Command) *viper.Viper {
	v, _ := cmd.Context().Value(configKey).(*viper.Viper)
	if v == nil {
		fmt.Fprintln(os.Stderr, "internal error: configuration not loaded")
		os.Exit(1)
	}
	return v
}
