package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/expenso-dev/expenso/internal/importer"
	"github.com/expenso-dev/expenso/internal/ingest"
)

func newImportCommand() *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import statements and alert emails into the ledger",
	}
	importCmd.AddCommand(
		newImportStatementCommand(),
		newImportEmailCommand(),
		newImportScanCommand(),
	)
	return importCmd
}

func newImportStatementCommand() *cobra.Command {
	var repoDir string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "statement <file>...",
		Short: "Import CSV or TXT bank statements",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(repoDir)
			if err != nil {
				return err
			}
			return runImportFiles(r, args, dryRun)
		},
	}

	addRepoFlag(cmd, &repoDir)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be imported without writing")

	return cmd
}

func newImportEmailCommand() *cobra.Command {
	var repoDir, subject, body string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "email [file.eml]...",
		Short: "Import transaction alert emails",
		Long:  "Import .eml files, or a single email given with --subject and --body.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && body == "" {
				return errors.New("give .eml files or --body")
			}
			r, err := openRepo(repoDir)
			if err != nil {
				return err
			}
			if body != "" {
				res, err := r.in.ImportEmail(importer.Email{Subject: subject, Body: body}, dryRun)
				if err != nil {
					return err
				}
				printResult(res, dryRun)
			}
			return runImportFiles(r, args, dryRun)
		},
	}

	addRepoFlag(cmd, &repoDir)
	cmd.Flags().StringVar(&subject, "subject", "", "email subject")
	cmd.Flags().StringVar(&body, "body", "", "email body (plain text)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be imported without writing")

	return cmd
}

func newImportScanCommand() *cobra.Command {
	var repoDir string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Import every supported file in import/ and move it to import/processed/",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(repoDir)
			if err != nil {
				return err
			}
			results, err := r.in.Scan(dryRun)
			for _, res := range results {
				printResult(res, dryRun)
			}
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Printf("Nothing to import in %s/\n", importer.ImportDir)
			}
			return nil
		},
	}

	addRepoFlag(cmd, &repoDir)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be imported without writing or moving files")

	return cmd
}

func runImportFiles(r *repo, paths []string, dryRun bool) error {
	for _, path := range paths {
		res, err := r.in.ImportFile(path, dryRun)
		if err != nil {
			return err
		}
		printResult(res, dryRun)
	}
	return nil
}

func printResult(res ingest.Result, dryRun bool) {
	verb := "imported"
	if dryRun {
		verb = "would import"
	}
	fmt.Printf("%s: %d transactions, %s %d, skipped %d\n",
		res.File, len(res.Transactions), verb, len(res.Imported), res.Skipped)
	if dryRun {
		for _, e := range res.Imported {
			fmt.Printf("  %s  %-13s %10s  %s\n",
				e.Date.Format("2006-01-02"), e.Category.DisplayName(), e.Amount.StringFixed(2), e.Description)
		}
	}
	if res.Commit != "" {
		fmt.Printf("  committed %s\n", res.Commit)
	}
}
