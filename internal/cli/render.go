package cli

import (
	"github.com/spf13/cobra"

	"github.com/convoflow/convoflow/pkg/flow"
	"github.com/convoflow/convoflow/pkg/pipeline"
)

// renderCommand re-renders a previously exported graph without rebuilding it.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "render <graph.json>",
		Short: "Render an exported flow graph",
		Long: `Render takes a graph previously exported with "build -f json" and renders
it without refetching or regrouping the conversation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			applyBuildConfig(cmd, &opts, cfg)

			g, err := flow.ReadGraphFile(args[0])
			if err != nil {
				return err
			}
			if g.Empty() {
				printWarning("Graph is empty; nothing to render")
				return nil
			}

			runner, err := c.newRunner(cmd.Context(), cfg, opts.noCache)
			if err != nil {
				return err
			}
			defer runner.Close(cmd.Context())

			popts := pipeline.Options{
				Formats:    opts.formats,
				LabelLimit: opts.labelLimit,
				Refresh:    opts.refresh,
				Logger:     c.Logger,
			}

			artifacts, hit, err := runner.RenderWithCacheInfo(cmd.Context(), g, popts)
			if err != nil {
				return err
			}

			printSuccess("Rendered %d format(s)", len(artifacts))
			printStats(g.NodeCount(), g.EdgeCount(), hit)

			result := &pipeline.Result{Graph: g, Artifacts: artifacts}
			opts.input = args[0]
			return writeArtifacts(result, &opts, "")
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot, json (comma-separated)")
	cmd.Flags().IntVar(&opts.labelLimit, "label-limit", 0, "message preview length in node labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when a cached artifact exists")

	return cmd
}
