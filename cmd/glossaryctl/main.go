// Command glossaryctl is the maintenance CLI for the glossary store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/glossary/api/internal/config"
	"github.com/glossary/api/internal/logging"
)

var (
	logger   *zap.Logger
	cfg      *config.Config
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "glossaryctl",
	Short: "Maintain the glossary CSV store",
	Long: `glossaryctl validates, imports and exports the glossary document and
maintains its local backups. Configuration is read from the same
environment variables and GLOSSARY_CONFIG file as the API server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg == nil {
			if cfg, err = config.Load(); err != nil {
				return err
			}
		}
		if logger == nil {
			level := logLevel
			if level == "" {
				level = cfg.LogLevel
			}
			if logger, err = logging.New(level); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, dev)")

	rootCmd.AddCommand(validateCmd, importCmd, exportCmd, pruneBackupsCmd, checkGitHubCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
