package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (c *cli) newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <idea>",
		Short: "Analyze a startup idea",
		Long: `Analyze sends the idea to the AI provider, or returns the cached result
when the same idea was analyzed within the last 24 hours.`,
		Example: `  ideacheck analyze "A subscription box for coffee"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withClient(cmd, func(cl *client) error {
				cl.session.SetIdea(strings.Join(args, " "))

				outcome, err := cl.session.Analyze(cmd.Context())
				if outcome == nil {
					return userError(err)
				}
				if err != nil {
					// 分析は成功、履歴の保存のみ失敗
					cmd.PrintErrf("Warning: failed to record history: %v\n", err)
				}

				state := cl.session.State()
				if c.opts.format == formatJSON {
					return outputJSON(cmd.OutOrStdout(), analyzeOutput{
						Result:    outcome.Result,
						Cached:    outcome.Cached,
						HistoryID: state.ActiveID,
					})
				}

				out := cmd.OutOrStdout()
				printResult(out, outcome.Result, outcome.Cached)
				if state.ActiveID != "" {
					fmt.Fprintf(out, "\nSaved to history as %s\n", state.ActiveID)
				}
				return nil
			})
		},
	}
}
