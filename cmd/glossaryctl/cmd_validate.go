package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glossary/api/internal/csvcodec"
	"github.com/glossary/api/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a glossary CSV file for parse errors and data problems",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	text := string(data)
	out := cmd.OutOrStdout()

	if err := csvcodec.CheckHeader(text); err != nil {
		return err
	}

	res := csvcodec.Decode(text)
	issues := validator.AuditRecords(res.Records)

	fmt.Fprintf(out, "Records: %d\n", len(res.Records))
	fmt.Fprintf(out, "Parse errors: %d\n", len(res.Errors))
	for _, e := range res.Errors {
		fmt.Fprintf(out, "  %s\n", e.Error())
	}
	fmt.Fprintf(out, "Issues: %d\n", len(issues))
	for _, issue := range issues {
		fmt.Fprintf(out, "  [%s] %s: %s\n", issue.Type, issue.Term, issue.Details)
	}

	if len(res.Errors) > 0 || len(issues) > 0 {
		return fmt.Errorf("%s has %d parse errors and %d issues", args[0], len(res.Errors), len(issues))
	}
	fmt.Fprintln(out, "OK")
	return nil
}
