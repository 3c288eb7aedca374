package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save and inspect logging snapshots",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the logging state of the current rule model",
	Long: `Save expansion and logging levels of every rule into the snapshot
folder. Rules start at their defaults when nothing else set them.

Example:
  rudiwatch-cli snapshot save baseline.yml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := GetProject()
		if err := p.Seed(cmd.Context()); err != nil {
			return err
		}

		path, err := p.Session.Save(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
		return nil
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent snapshots, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := GetProject().Session.RecentSnapshots()
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", e.ModTime.Format("2006-01-02 15:04:05"), e.Path)
		}
		return nil
	},
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Print every node remembered by a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := GetProject()
		if err := p.Session.Load(args[0]); err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), p.Session.Memory().String())
		return nil
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotSaveCmd, snapshotListCmd, snapshotShowCmd)
	rootCmd.AddCommand(snapshotCmd)
}
