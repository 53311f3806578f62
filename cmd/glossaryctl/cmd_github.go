package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glossary/api/internal/app"
	"github.com/glossary/api/internal/client"
	"github.com/glossary/api/internal/validator"
)

var checkGitHubCmd = &cobra.Command{
	Use:   "check-github",
	Short: "Verify the configured GitHub repository, branch and file",
	Args:  cobra.NoArgs,
	RunE:  runCheckGitHub,
}

func runCheckGitHub(cmd *cobra.Command, args []string) error {
	if err := validator.ValidateRepo(cfg.GitHub.Repo); err != nil {
		return err
	}
	if cfg.GitHub.Token != "" {
		if err := validator.ValidateToken(cfg.GitHub.Token); err != nil {
			return err
		}
	}

	gh := client.NewGitHubClient(app.GitHubConfig(cfg))
	info, err := gh.CheckAccess(cmd.Context())
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	if !info.BranchExists {
		return fmt.Errorf("branch %q not found in %s", info.Branch, info.FullName)
	}
	return nil
}
