package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/WillCMcC/splitripper/internal/queue"
)

func newStartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start queue processing",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := ctx.client().StartQueue()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if result.Started {
				fmt.Fprintln(out, "Queue processing started")
				return nil
			}
			if result.Message != "" {
				fmt.Fprintf(out, "Queue processing not started: %s\n", result.Message)
				return nil
			}
			fmt.Fprintln(out, "Queue processing already running")
			return nil
		},
	}
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop queue processing and cancel queued jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.client().StopQueue(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Stop requested")
			return nil
		},
	}
}

func newProgressCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show aggregate queue progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			progress, err := ctx.client().Progress()
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, progress)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Overall progress: %.0f%%\n", progress.Progress*100)
			fmt.Fprintf(out, "Concurrency: %d active of %d max\n", progress.Active, progress.Max)
			for _, status := range queue.AllStatuses() {
				if count := progress.Counts[status]; count > 0 {
					fmt.Fprintf(out, "  %-9s %d\n", string(status)+":", count)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of text")
	return cmd
}

func newConcurrencyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "concurrency [MAX]",
		Short: "Show or set the concurrent job ceiling",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				info, err := ctx.client().Concurrency()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d active of %d max\n", info.Active, info.Max)
				return nil
			}
			max, err := strconv.Atoi(args[0])
			if err != nil || max < 1 {
				return fmt.Errorf("invalid concurrency value %q", args[0])
			}
			info, err := ctx.client().SetConcurrency(max)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Concurrency ceiling set to %d\n", info.Max)
			return nil
		},
	}
	return cmd
}
