package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"descant/internal/pipeline"
	"descant/internal/queue"
)

// Per-stage commands let an operator run the pipeline only as far as needed
// and inspect the intermediate products.

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <item-id>",
		Short: "Run extraction and audio analysis for a queue item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(ctx, cmd, args[0], "analyze", func(cmd *cobra.Command, item *queue.Item) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Analysis complete: %s\n", item.ProgressMessage)
				return nil
			})
		},
	}
}

func newScenesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scenes <item-id>",
		Short: "Segment a queue item and show its scene timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(ctx, cmd, args[0], "segment", func(cmd *cobra.Command, item *queue.Item) error {
				scenes, err := pipeline.DecodeScenes(item.ScenesJSON)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(scenes))
				for _, scene := range scenes {
					kind := "dialogue"
					if scene.NonLanguage() {
						kind = "non-language"
					}
					text := scene.Transcription
					if scene.NarrationText != "" {
						text = scene.NarrationText
					}
					rows = append(rows, []string{
						strconv.Itoa(scene.ID),
						formatSeconds(scene.Start),
						formatSeconds(scene.End),
						kind,
						truncate(text, 60),
					})
				}
				out := renderTable(
					[]string{"ID", "Start", "End", "Kind", "Text"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func newMixCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "mix <item-id>",
		Short: "Run the remaining stages and write the described track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(ctx, cmd, args[0], "", func(cmd *cobra.Command, item *queue.Item) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Described track written to %s\n", item.OutputPath)
				return nil
			})
		},
	}
}

func runStage(ctx *commandContext, cmd *cobra.Command, idArg, lastStage string, report func(*cobra.Command, *queue.Item) error) error {
	id, err := parseItemID(idArg)
	if err != nil {
		return err
	}
	return ctx.withPipeline(func(p *pipeline.Pipeline, store *queue.Store) error {
		runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		item, err := store.GetByID(runCtx, id)
		if err != nil {
			return err
		}
		if err := p.ProcessUntil(runCtx, item, lastStage); err != nil {
			return err
		}
		return report(cmd, item)
	})
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}
