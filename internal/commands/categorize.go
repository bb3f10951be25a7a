package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/expenso-dev/expenso/internal/classify"
)

func newCategorizeCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "categorize <description>...",
		Short: "Print the category a description would get",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveRepo(repoDir)
			if err != nil {
				return err
			}
			rules, err := classify.LoadRules(filepath.Join(root, classify.RulesFile))
			if err != nil {
				return err
			}
			c := classify.NewCategoryClassifier(rules.Categories)
			fmt.Println(c.Categorize(strings.Join(args, " ")).DisplayName())
			return nil
		},
	}

	addRepoFlag(cmd, &repoDir)
	return cmd
}
