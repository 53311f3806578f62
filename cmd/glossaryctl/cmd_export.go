package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/glossary/api/internal/app"
	"github.com/glossary/api/internal/csvcodec"
	"github.com/glossary/api/internal/glossary"
)

var (
	exportOutput string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the stored glossary as CSV or JSON",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or json")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	backend, err := app.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	svc := glossary.NewService(backend.Store, glossary.Options{Logger: logger})
	records, err := svc.Stored(ctx)
	if err != nil {
		return err
	}

	var data []byte
	switch exportFormat {
	case "csv":
		data = []byte(csvcodec.Encode(records))
	case "json":
		if data, err = json.MarshalIndent(records, "", "  "); err != nil {
			return err
		}
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown format %q (supported: csv, json)", exportFormat)
	}

	if exportOutput == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := atomic.WriteFile(exportOutput, bytes.NewReader(data)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d records to %s\n", len(records), exportOutput)
	return nil
}
