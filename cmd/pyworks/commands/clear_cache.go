package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func clearCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Drop cached environments and probe results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appCtx.Cache.Clear(); err != nil {
				return err
			}
			fmt.Println("Cache cleared")
			return nil
		},
	}
}
