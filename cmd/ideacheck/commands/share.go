package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	analysis "idea-validator-app/internal/modules/analysis/domain"
)

func (c *cli) newShareCmd() *cobra.Command {
	shareCmd := &cobra.Command{
		Use:   "share",
		Short: "Create or open shareable result links",
	}

	shareCmd.AddCommand(&cobra.Command{
		Use:   "encode <id>",
		Short: "Print a share link for a history item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withClient(cmd, func(cl *client) error {
				item, err := cl.history.Get(args[0])
				if err != nil {
					return userError(err)
				}
				link, err := analysis.BuildShareLink(cl.publicURL, &item.Result)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), link)
				return nil
			})
		},
	})

	shareCmd.AddCommand(&cobra.Command{
		Use:   "decode <link-or-token>",
		Short: "Show the result embedded in a share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := decodeShared(args[0])
			if err != nil {
				return userError(err)
			}
			if c.opts.format == formatJSON {
				return outputJSON(cmd.OutOrStdout(), result)
			}
			printResult(cmd.OutOrStdout(), result, false)
			return nil
		},
	})

	return shareCmd
}

// decodeShared 共有リンクまたはトークン単体から結果を復元
func decodeShared(s string) (*analysis.AnalysisResult, error) {
	if strings.Contains(s, analysis.ShareFragmentPrefix) {
		return analysis.ParseShareLink(s)
	}
	return analysis.DecodeShareToken(s)
}
