package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) newHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Browse and manage past analyses",
	}

	historyCmd.AddCommand(c.newHistoryListCmd())
	historyCmd.AddCommand(c.newHistoryShowCmd())
	historyCmd.AddCommand(c.newHistorySaveCmd())
	historyCmd.AddCommand(c.newHistoryDeleteCmd())
	historyCmd.AddCommand(c.newHistoryClearCmd())
	historyCmd.AddCommand(c.newHistoryCompareCmd())
	historyCmd.AddCommand(c.newHistoryTrendCmd())

	return historyCmd
}

func (c *cli) newHistoryListCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List history grouped by day (saved first)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withClient(cmd, func(cl *client) error {
				groups := cl.history.List(search, cl.now())
				if c.opts.format == formatJSON {
					return outputJSON(cmd.OutOrStdout(), groupsOutput(groups))
				}
				if len(groups) == 0 && search != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "No history matches %q.\n", search)
					return nil
				}
				printGroups(cmd.OutOrStdout(), groups)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive filter over the idea text")

	return cmd
}

func (c *cli) newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a past analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withClient(cmd, func(cl *client) error {
				item, err := cl.history.Get(args[0])
				if err != nil {
					return userError(err)
				}
				if c.opts.format == formatJSON {
					return outputJSON(cmd.OutOrStdout(), item)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Idea: %s\n\n", item.Idea)
				printResult(cmd.OutOrStdout(), &item.Result, false)
				return nil
			})
		},
	}
}

func (c *cli) newHistorySaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <id>",
		Short: "Toggle the saved flag of a history item",
		Long: `Save toggles whether an item is kept when unsaved history is cleared.
Saved items are listed before unsaved ones.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withClient(cmd, func(cl *client) error {
				item, err := cl.history.ToggleSaved(cmd.Context(), args[0])
				if err != nil {
					return userError(err)
				}
				state := "Unsaved"
				if item.IsSaved {
					state = "Saved"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", state, item.ID)
				return nil
			})
		},
	}
}

func (c *cli) newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a history item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withClient(cmd, func(cl *client) error {
				if err := cl.history.Delete(cmd.Context(), args[0]); err != nil {
					return userError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func (c *cli) newHistoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every history item that is not saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withClient(cmd, func(cl *client) error {
				removed, err := cl.history.ClearUnsaved(cmd.Context())
				if err != nil {
					return userError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d unsaved item(s)\n", removed)
				return nil
			})
		},
	}
}

func (c *cli) newHistoryCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <id> <other-id>",
		Short: "Compare two past analyses side by side",
		Long: `Compare shows <other-id> as the base and <id> as the target.
The score delta is target minus base.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withClient(cmd, func(cl *client) error {
				cmp, err := cl.history.Compare(args[0], args[1])
				if err != nil {
					return userError(err)
				}
				if c.opts.format == formatJSON {
					return outputJSON(cmd.OutOrStdout(), comparisonOutput{
						Base:       cmp.Base,
						Target:     cmp.Target,
						ScoreDelta: cmp.ScoreDelta,
					})
				}
				printComparison(cmd.OutOrStdout(), cmp)
				return nil
			})
		},
	}
}

func (c *cli) newHistoryTrendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trend",
		Short: "Show how validation scores changed over time (oldest first)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withClient(cmd, func(cl *client) error {
				points := cl.history.Trend()
				if c.opts.format == formatJSON {
					return outputJSON(cmd.OutOrStdout(), trendOutput(points))
				}
				printTrend(cmd.OutOrStdout(), points)
				return nil
			})
		},
	}
}
