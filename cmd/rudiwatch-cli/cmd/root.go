package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rudiwatch/internal/bootstrap"
	"rudiwatch/internal/config"
)

var (
	projectPath string
	verbose     bool
	project     *bootstrap.Project
)

var rootCmd = &cobra.Command{
	Use:   "rudiwatch-cli",
	Short: "CLI for inspecting rudi rule hierarchies",
	Long: `rudiwatch-cli inspects the rule hierarchy of a rudi project.

It prints the rule tree with its logging levels, watches the rule folder
for changes, saves and inspects logging snapshots, and lists how each
source file takes part in the current rule model.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		target := bootstrap.LogSilent
		if verbose {
			target = bootstrap.LogStderr
		}
		p, err := bootstrap.Open(projectPath, target)
		if err != nil {
			return err
		}
		project = p
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if project == nil {
			return nil
		}
		return project.Close()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectPath, "project", "p", config.ProjectPath(), "path to the rudi project")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
}

// GetProject returns the opened project
func GetProject() *bootstrap.Project {
	return project
}
