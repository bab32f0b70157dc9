package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) newAutoSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "autosave [on|off]",
		Short:     "Show or change whether analyses are recorded in history",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withClient(cmd, func(cl *client) error {
				if len(args) == 1 {
					if err := cl.history.SetAutoSave(cmd.Context(), args[0] == "on"); err != nil {
						return userError(err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Auto-save: %s\n", onOff(cl.history.AutoSave()))
				return nil
			})
		},
	}
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
