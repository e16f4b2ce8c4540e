package cli

import (
	"github.com/spf13/cobra"

	"go-user-admin/internal/tui"
)

func (a *app) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive user list",
		RunE: func(cmd *cobra.Command, args []string) error {
			vm, err := a.newView(cmd)
			if err != nil {
				return err
			}
			return tui.Launch(cmd.Context(), vm, "Users - "+a.cfg.App.Name)
		},
	}
}
