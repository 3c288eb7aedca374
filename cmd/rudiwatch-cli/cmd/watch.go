package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rudiwatch/internal/application"
	"rudiwatch/internal/ports"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the rule folder and rebuild on every change",
	Long: `Watch the rule folder. Every added or removed file or folder
rebuilds the rule tree; remembered logging levels survive the rebuild.
Stops on Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p := GetProject()
		out := cmd.OutOrStdout()
		if err := p.Seed(ctx); err != nil {
			fmt.Fprintf(out, "initial build failed: %v\n", err)
		} else {
			fmt.Fprintf(out, "built %d nodes\n", p.Session.Tree().Len())
		}

		w := p.NewWatcher()
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()
		fmt.Fprintf(out, "watching %s\n", p.Repo.Root())

		loop := application.NewLoop()
		return loop.Run(ctx, w.Events(), func(ev ports.FileEvent) {
			fmt.Fprintf(out, "%-9s %s\n", ev.Kind, ev.Path)
			if err := p.Session.HandleEvent(ctx, ev); err != nil {
				fmt.Fprintf(out, "  %v\n", err)
				return
			}
			fmt.Fprintf(out, "  rebuilt %d nodes\n", p.Session.Tree().Len())
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
