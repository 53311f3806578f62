package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/glossary/api/internal/store"
)

var (
	pruneKeep   int
	pruneMaxAge time.Duration
)

var pruneBackupsCmd = &cobra.Command{
	Use:   "prune-backups",
	Short: "Remove old backups of the local glossary file",
	Long: `Remove backups beyond the newest --keep copies and backups older than
--max-age. The newest backup is always kept. Defaults come from
BACKUP_KEEP and BACKUP_MAX_AGE.`,
	Args: cobra.NoArgs,
	RunE: runPruneBackups,
}

func init() {
	pruneBackupsCmd.Flags().IntVar(&pruneKeep, "keep", -1, "number of backups to keep (0 disables the count rule)")
	pruneBackupsCmd.Flags().DurationVar(&pruneMaxAge, "max-age", -1, "remove backups older than this (0 disables the age rule)")
}

func runPruneBackups(cmd *cobra.Command, args []string) error {
	keep, maxAge := cfg.Backup.Keep, cfg.Backup.MaxAge
	if cmd.Flags().Changed("keep") {
		keep = pruneKeep
	}
	if cmd.Flags().Changed("max-age") {
		maxAge = pruneMaxAge
	}

	removed, err := store.PruneBackups(cfg.DataPath, keep, maxAge, time.Now())
	out := cmd.OutOrStdout()
	for _, p := range removed {
		fmt.Fprintf(out, "removed %s\n", p)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Pruned %d backups of %s\n", len(removed), cfg.DataPath)
	return nil
}
