package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WillCMcC/splitripper/internal/preflight"
	"github.com/WillCMcC/splitripper/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, queue, and tool status",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			status, err := ctx.client().Status()
			if err != nil {
				if jsonOutput {
					return err
				}
				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Daemon", statusError, err.Error(), colorize))
				return nil
			}
			if jsonOutput {
				return writeJSON(cmd, status)
			}

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Daemon", statusOK,
				fmt.Sprintf("running (pid %d)", status.PID), colorize))
			if status.QueueRunning {
				fmt.Fprintln(out, renderStatusLine("Queue", statusOK, "processing", colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Queue", statusInfo, "stopped", colorize))
			}
			fmt.Fprintln(out, renderStatusLine("Concurrency", statusInfo,
				fmt.Sprintf("%d active of %d max", status.Queue.Active, status.Queue.Max), colorize))

			for _, line := range renderSectionHeader("Queue", colorize) {
				fmt.Fprintln(out, line)
			}
			total := 0
			for _, count := range status.Queue.Counts {
				total += count
			}
			fmt.Fprintln(out, renderStatusLine("Items", statusInfo,
				fmt.Sprintf("%d total, %.0f%% complete", total, status.Queue.Progress*100), colorize))
			for _, st := range queue.AllStatuses() {
				if count := status.Queue.Counts[st]; count > 0 {
					fmt.Fprintln(out, renderStatusLine(string(st), statusInfo,
						fmt.Sprintf("%d", count), colorize))
				}
			}

			for _, line := range renderSectionHeader("External tools", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, dep := range status.Dependencies {
				kind := statusOK
				message := "available"
				if version := preflight.ToolVersion(dep.Command); dep.Available && version != "" {
					message = version
				}
				if !dep.Available {
					kind = statusError
					if dep.Optional {
						kind = statusWarn
					}
					message = dep.Detail
				}
				fmt.Fprintln(out, renderStatusLine(dep.Name, kind, message, colorize))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of text")
	return cmd
}
