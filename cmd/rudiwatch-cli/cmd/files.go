package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var filesUsage string

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List rule files and how the rule model uses them",
	Long: `List every folder and rule file below the rule folder, tagged as
main, wrapper, used, unused, folder or unknown.

Examples:
  rudiwatch-cli files
  rudiwatch-cli files --usage unused`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := GetProject()
		if err := p.Seed(cmd.Context()); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}

		for _, e := range p.Session.Usage() {
			if filesUsage != "" && e.Usage.String() != filesUsage {
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", e.Usage, e.Path)
		}
		return nil
	},
}

func init() {
	filesCmd.Flags().StringVarP(&filesUsage, "usage", "u", "", "only list one tag")
	rootCmd.AddCommand(filesCmd)
}
