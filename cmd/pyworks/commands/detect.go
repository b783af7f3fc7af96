package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeryldev/pyworks/internal/domain"
	"github.com/jeryldev/pyworks/internal/ui"
)

// detect <file>: report environment, kernel and package status for <file>.
// Exits non-zero when required packages are missing.
func detectCmd() *cobra.Command {
	var fresh, latest bool
	cmd := &cobra.Command{
		Use:   "detect <file>",
		Short: "Detect environment, kernel and packages for a Python file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := appCtx.Detect.Detect(cmd.Context(), args[0], domain.DetectOptions{
				Env:        envName,
				Fresh:      fresh,
				WithLatest: latest,
			})
			if err != nil {
				return err
			}

			if jsonOut {
				if err := printJSON(report); err != nil {
					return err
				}
			} else {
				fmt.Print(ui.RenderReport(report))
			}

			if len(report.Missing) > 0 {
				return fmt.Errorf("%w: %s", domain.ErrMissingPackages,
					strings.Join(distributions(report.Missing), ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fresh, "fresh", false, "ignore cached environments and probe results")
	cmd.Flags().BoolVar(&latest, "latest", false, "also look up newest releases on the package index")
	return cmd
}

func distributions(reqs []domain.Requirement) []string {
	names := make([]string, 0, len(reqs))
	for _, req := range reqs {
		names = append(names, req.Distribution)
	}
	return names
}
