package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// fixture: emit the detection fixture script. Repeated emissions are
// byte-identical, so callers may diff them.
func fixtureCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "fixture",
		Short: "Emit the detection fixture script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out != "" {
				if err := appCtx.Selftest.WriteScript(out); err != nil {
					return err
				}
				fmt.Printf("Wrote %s\n", out)
				return nil
			}
			_, err := os.Stdout.Write(appCtx.Selftest.Script())
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the script to a file instead of stdout")
	return cmd
}
