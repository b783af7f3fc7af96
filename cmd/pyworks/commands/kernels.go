package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeryldev/pyworks/internal/ui"
)

func kernelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kernels",
		Short: "List installed Jupyter kernelspecs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := appCtx.Kernels.List(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(specs)
			}
			fmt.Print(ui.RenderKernelspecs(specs))
			return nil
		},
	}
}
