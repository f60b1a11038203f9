package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"descant/internal/pipeline"
	"descant/internal/queue"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process <video-file>",
		Short: "Queue a video and run it through the full description pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := resolveSource(args[0])
			if err != nil {
				return err
			}
			return ctx.withPipeline(func(p *pipeline.Pipeline, store *queue.Store) error {
				runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				item, err := store.NewItem(runCtx, source)
				if err != nil {
					return fmt.Errorf("queue %s: %w", source, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued %s as item %d\n", source, item.ID)

				if err := p.Process(runCtx, item); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Described track written to %s\n", item.OutputPath)
				return nil
			})
		},
	}
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <video-file>...",
		Short: "Queue video files without processing them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *queue.Store) error {
				for _, arg := range args {
					source, err := resolveSource(arg)
					if err != nil {
						return err
					}
					item, err := store.NewItem(cmd.Context(), source)
					if err != nil {
						return fmt.Errorf("queue %s: %w", source, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Queued %s as item %d\n", source, item.ID)
				}
				return nil
			})
		},
	}
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process every runnable item in the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(p *pipeline.Pipeline, store *queue.Store) error {
				runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				if reset, err := store.ResetStale(runCtx); err != nil {
					return err
				} else if reset > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Reset %d interrupted item(s)\n", reset)
				}

				items, err := store.List(runCtx)
				if err != nil {
					return err
				}
				processed := 0
				for _, item := range items {
					if item.Status.Terminal() {
						continue
					}
					if err := p.Process(runCtx, item); err != nil {
						if runCtx.Err() != nil {
							return runCtx.Err()
						}
						fmt.Fprintf(cmd.OutOrStdout(), "Item %d (%s) stopped: %v\n", item.ID, item.Title, err)
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Item %d (%s) -> %s\n", item.ID, item.Title, item.OutputPath)
					processed++
				}
				if processed == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to process")
				}
				return nil
			})
		},
	}
}

func resolveSource(arg string) (string, error) {
	source := strings.TrimSpace(arg)
	if source == "" {
		return "", fmt.Errorf("video path is required")
	}
	absolute, err := filepath.Abs(source)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", source, err)
	}
	if _, err := os.Stat(absolute); err != nil {
		return "", fmt.Errorf("video file not found: %s", absolute)
	}
	return absolute, nil
}
