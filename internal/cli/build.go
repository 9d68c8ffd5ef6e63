package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/convoflow/convoflow/pkg/config"
	"github.com/convoflow/convoflow/pkg/errors"
	"github.com/convoflow/convoflow/pkg/pipeline"
)

// buildOpts holds the command-line flags for the build command.
type buildOpts struct {
	input          string   // transcript file path (instead of a conversation id)
	output         string   // output file path (or base path for multiple formats)
	formats        []string // output formats: "svg", "png", "dot", "json"
	verticalGap    float64  // vertical distance between turns
	horizontalGap  float64  // horizontal distance between assistant branches
	userLabel      string   // display label for user nodes
	assistantLabel string   // fallback label for assistant nodes without a model
	labelLimit     int      // message preview length in node labels
	noCache        bool     // disable the artifact cache
	refresh        bool     // bypass the artifact cache for this run
}

// buildCommand creates the build command: transcript in, rendered graph out.
func (c *CLI) buildCommand() *cobra.Command {
	var formatsStr string
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build [conversation-id]",
		Short: "Build a conversation flow graph and render it",
		Long: `Build groups a conversation's messages into turns, lays them out as a flow
graph, and renders the result.

The conversation comes from one of:
  - a conversation id, resolved through the configured source
  - a transcript file via --input
  - an interactive picker, when neither is given`,
		Args: cobra.MaximumNArgs(1),
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

			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return c.runBuild(cmd.Context(), id, &opts, cfg)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "transcript file to build from")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot, json (comma-separated)")
	cmd.Flags().Float64Var(&opts.verticalGap, "vertical-gap", 0, "vertical distance between turns")
	cmd.Flags().Float64Var(&opts.horizontalGap, "horizontal-gap", 0, "horizontal distance between assistant branches")
	cmd.Flags().StringVar(&opts.userLabel, "user-label", "", "display label for user nodes")
	cmd.Flags().StringVar(&opts.assistantLabel, "assistant-label", "", "fallback label for assistant nodes")
	cmd.Flags().IntVar(&opts.labelLimit, "label-limit", 0, "message preview length in node labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when a cached artifact exists")

	return cmd
}

// applyBuildConfig fills flag values from the config file where the user
// did not set them explicitly.
func applyBuildConfig(cmd *cobra.Command, opts *buildOpts, cfg config.Config) {
	if !cmd.Flags().Changed("vertical-gap") {
		opts.verticalGap = cfg.Layout.VerticalGap
	}
	if !cmd.Flags().Changed("horizontal-gap") {
		opts.horizontalGap = cfg.Layout.HorizontalGap
	}
	if !cmd.Flags().Changed("user-label") {
		opts.userLabel = cfg.Labels.User
	}
	if !cmd.Flags().Changed("assistant-label") {
		opts.assistantLabel = cfg.Labels.Assistant
	}
	if !cmd.Flags().Changed("label-limit") {
		opts.labelLimit = cfg.Render.LabelLimit
	}
}

func (c *CLI) runBuild(ctx context.Context, id string, opts *buildOpts, cfg config.Config) error {
	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close(ctx)

	// Without an id or input file, offer the picker
	if id == "" && opts.input == "" {
		infos, err := runner.Source.List(ctx)
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			printWarning("No conversations found")
			return nil
		}
		id, err = pickConversation(infos)
		if err != nil {
			return err
		}
		if id == "" {
			return nil // user quit the picker
		}
	}

	popts := pipeline.Options{
		ConversationID: id,
		Input:          opts.input,
		VerticalGap:    opts.verticalGap,
		HorizontalGap:  opts.horizontalGap,
		UserLabel:      opts.userLabel,
		AssistantLabel: opts.assistantLabel,
		Formats:        opts.formats,
		LabelLimit:     opts.labelLimit,
		Refresh:        opts.refresh,
		Logger:         c.Logger,
	}

	tracker := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Building flow graph...")
	spinner.Start()

	result, err := runner.Execute(ctx, popts)
	spinner.Stop()
	if err != nil {
		if spinner.Cancelled() {
			return ctx.Err()
		}
		return err
	}
	tracker.done(fmt.Sprintf("Built graph with %d nodes", result.Stats.NodeCount))

	// An empty graph means the conversation had no answered questions;
	// there is nothing worth writing to disk.
	if result.Graph.Empty() {
		printWarning("Conversation has no closed turns; nothing to show")
		return nil
	}

	printSuccess("Flow graph ready")
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)
	printDetail("hash: %s", shortHash(result.GraphHash))

	if err := writeArtifacts(result, opts, id); err != nil {
		return err
	}

	if len(opts.formats) == 1 && opts.formats[0] == pipeline.FormatJSON {
		printNextStep("Render it", fmt.Sprintf("%s build %s -f svg", appName, id))
	}
	return nil
}

// writeArtifacts writes each rendered format to disk.
// With a single format, --output is used verbatim; with multiple formats it
// becomes the base path and the format is appended as the extension.
func writeArtifacts(result *pipeline.Result, opts *buildOpts, id string) error {
	base := opts.output
	if base == "" {
		base = defaultOutputBase(opts.input, id)
	}

	for _, format := range opts.formats {
		path := base
		if len(opts.formats) > 1 || filepath.Ext(path) == "" {
			path = strings.TrimSuffix(base, filepath.Ext(base)) + "." + format
		}
		if err := errors.ValidateOutputPath(path); err != nil {
			return err
		}
		if err := os.WriteFile(path, result.Artifacts[format], 0644); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
		}
		printFile(path)
	}
	return nil
}

// defaultOutputBase derives an output base name from the input.
func defaultOutputBase(input, id string) string {
	if input != "" {
		name := filepath.Base(input)
		return strings.TrimSuffix(name, filepath.Ext(name)) + "-flow"
	}
	if id != "" {
		return id + "-flow"
	}
	return "conversation-flow"
}

// shortHash abbreviates a content hash for display.
func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
