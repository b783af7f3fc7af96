package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeryldev/pyworks/internal/domain"
	"github.com/jeryldev/pyworks/internal/ui"
)

func envsCmd() *cobra.Command {
	var fresh bool
	cmd := &cobra.Command{
		Use:   "envs",
		Short: "List discovered Python environments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return err
			}

			var envs []domain.Environment
			if fresh {
				envs, err = appCtx.Envs.Rescan(cmd.Context(), root)
			} else {
				envs, err = appCtx.Envs.Environments(cmd.Context(), root)
			}
			if err != nil {
				return err
			}

			if jsonOut {
				return printJSON(envs)
			}
			fmt.Print(ui.RenderEnvironments(envs))
			return nil
		},
	}
	cmd.Flags().BoolVar(&fresh, "fresh", false, "ignore the environment cache and rediscover")
	return cmd
}
