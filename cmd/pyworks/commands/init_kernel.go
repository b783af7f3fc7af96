package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// init-kernel [name]: register a Jupyter kernelspec for the selected
// environment. The name defaults to one derived from the environment.
func initKernelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-kernel [name]",
		Short: "Register a Jupyter kernel for the selected environment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return err
			}
			env, err := appCtx.Envs.Select(cmd.Context(), root, envName)
			if err != nil {
				return err
			}

			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			spec, err := appCtx.Kernels.Register(cmd.Context(), env, name)
			if err != nil {
				return err
			}

			if jsonOut {
				return printJSON(spec)
			}
			fmt.Printf("Registered kernel %q (%s)\n", spec.Name, spec.DisplayName)
			return nil
		},
	}
}
