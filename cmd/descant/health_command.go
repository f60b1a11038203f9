package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"descant/internal/pipeline"
	"descant/internal/queue"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check stage dependencies (ffmpeg, VAD model, caption API, tts)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(p *pipeline.Pipeline, _ *queue.Store) error {
				checks := p.Health(cmd.Context())
				rows := make([][]string, 0, len(checks))
				failures := 0
				for _, check := range checks {
					state := "ok"
					if !check.Ready {
						state = "unavailable"
						failures++
					}
					rows = append(rows, []string{check.Name, state, check.Detail})
				}
				out := renderTable([]string{"Stage", "State", "Detail"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft})
				fmt.Fprintln(cmd.OutOrStdout(), out)
				if failures > 0 {
					return fmt.Errorf("%d stage(s) unavailable", failures)
				}
				return nil
			})
		},
	}
}
