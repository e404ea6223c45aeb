package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/WillCMcC/splitripper/internal/config"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and modify the job queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueueList(ctx, cmd, false)
		},
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueAddCommand(ctx))
	queueCmd.AddCommand(newQueueAddFileCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueCancelCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueueList(ctx, cmd, jsonOutput)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func runQueueList(ctx *commandContext, cmd *cobra.Command, jsonOutput bool) error {
	listing, err := ctx.client().Queue()
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd, listing)
	}

	out := cmd.OutOrStdout()
	if len(listing.Items) == 0 {
		fmt.Fprintln(out, "Queue is empty")
		return nil
	}

	rows := make([][]string, 0, len(listing.Items))
	for _, item := range listing.Items {
		rows = append(rows, []string{
			shortID(item.ID),
			jobLabel(item),
			jobPhase(item),
			jobPercent(item),
			jobETA(item),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "TITLE", "STATUS", "PROGRESS", "ETA"},
		rows, 4, 5))
	if listing.Running {
		fmt.Fprintln(out, "Queue processing is running")
	} else {
		fmt.Fprintln(out, "Queue processing is stopped")
	}
	return nil
}

func newQueueAddCommand(ctx *commandContext) *cobra.Command {
	var folder string
	var stemMode string

	cmd := &cobra.Command{
		Use:   "add URL...",
		Short: "Queue remote sources for download and separation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateStemMode(stemMode); err != nil {
				return err
			}
			result, err := ctx.client().AddURLs(args, folder, stemMode)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, item := range result.Added {
				fmt.Fprintf(out, "Queued %s (%s)\n", item.URL, shortID(item.ID))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Destination subfolder under the output root")
	cmd.Flags().StringVar(&stemMode, "stems", "", "Stem mode override (2, 4, or 6)")
	return cmd
}

func newQueueAddFileCommand(ctx *commandContext) *cobra.Command {
	var folder string
	var stemMode string

	cmd := &cobra.Command{
		Use:   "add-file PATH...",
		Short: "Queue local audio files for separation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateStemMode(stemMode); err != nil {
				return err
			}
			paths := make([]string, 0, len(args))
			for _, arg := range args {
				expanded, err := config.ExpandPath(arg)
				if err != nil {
					return fmt.Errorf("resolve path %q: %w", arg, err)
				}
				paths = append(paths, expanded)
			}
			result, err := ctx.client().AddFiles(paths, folder, stemMode)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, item := range result.Added {
				fmt.Fprintf(out, "Queued %s (%s)\n", item.Title, shortID(item.ID))
			}
			for _, rej := range result.Rejected {
				fmt.Fprintf(out, "Rejected %s: %s\n", rej.Path, rej.Error)
			}
			if len(result.Added) == 0 {
				return errors.New("no files were queued")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Destination subfolder under the output root")
	cmd.Flags().StringVar(&stemMode, "stems", "", "Stem mode override (2, 4, or 6)")
	return cmd
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove queued jobs (running jobs survive while processing)",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := ctx.client().ClearQueue()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d items\n", result.Removed)
			return nil
		},
	}
}

func newQueueCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel a queued job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := ctx.client().Cancel(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if result.Canceled {
				fmt.Fprintln(out, "Item canceled")
				return nil
			}
			if result.Message != "" {
				fmt.Fprintln(out, result.Message)
				return nil
			}
			fmt.Fprintln(out, "Item was not canceled")
			return nil
		},
	}
}

func validateStemMode(mode string) error {
	switch strings.TrimSpace(mode) {
	case "", config.StemMode2, config.StemMode4, config.StemMode6:
		return nil
	default:
		return fmt.Errorf("invalid stem mode %q (expected 2, 4, or 6)", mode)
	}
}
