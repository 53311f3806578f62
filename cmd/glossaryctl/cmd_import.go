package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glossary/api/internal/app"
	"github.com/glossary/api/internal/auth"
	"github.com/glossary/api/internal/csvcodec"
	"github.com/glossary/api/internal/glossary"
	"github.com/glossary/api/internal/store"
)

var importDryRun bool

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Merge a CSV file into the configured store",
	Long: `Merge every valid row of FILE into the configured store. Existing terms
are overwritten, new terms are added, invalid rows are reported and skipped.
With --dry-run the merge runs against an in-memory copy and nothing is
written.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "report what would change without writing")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	backend, err := app.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	target := backend.Store

	if importDryRun {
		snap, err := target.Load(ctx)
		if err != nil {
			return err
		}
		var current []byte
		if snap.Exists {
			current = []byte(csvcodec.Encode(snap.Records))
		}
		target = store.NewRemoteStore(store.NewMemoryBlobs(current))
	}

	svc := glossary.NewService(target, glossary.Options{
		Logger:           logger,
		UploadErrorLimit: cfg.UploadErrorLimit,
	})
	res, err := svc.Upload(ctx, &auth.Session{Subject: "glossaryctl"}, string(data))
	if res != nil {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Added: %d\nUpdated: %d\nSkipped: %d\nTotal: %d\n", res.Added, res.Updated, res.Skipped, res.Total)
		for _, e := range res.Errors {
			fmt.Fprintf(out, "  %s\n", e)
		}
		if importDryRun {
			fmt.Fprintln(out, "Dry run: nothing written")
		}
	}
	return err
}
