package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// conversationsCommand lists the conversations the configured source knows.
func (c *CLI) conversationsCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"ls"},
		Short:   "List conversations in the configured source",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), cfg, noCache)
			if err != nil {
				return err
			}
			defer runner.Close(cmd.Context())

			infos, err := runner.Source.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				printInfo("No conversations found")
				return nil
			}

			for _, info := range infos {
				title := info.Title
				if title == "" {
					title = StyleDim.Render("—")
				}
				fmt.Printf("%-24s  %-40s  %s\n", info.ID, title,
					StyleDim.Render(fmt.Sprintf("%d messages", info.MessageCount)))
			}
			printDetail("%d conversations", len(infos))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	return cmd
}
