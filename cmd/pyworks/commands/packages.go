package commands

import (
	"errors"
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jeryldev/pyworks/internal/domain"
	"github.com/jeryldev/pyworks/internal/manifest"
	"github.com/jeryldev/pyworks/internal/ui"
)

// packages <file>: show requirement status for <file> without the kernel
// detection phase.
func packagesCmd() *cobra.Command {
	var fresh, latest bool
	cmd := &cobra.Command{
		Use:   "packages <file>",
		Short: "Show requirement status for a Python file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			root, ok := manifest.FindProjectRoot(path)
			if !ok {
				root = filepath.Dir(path)
			}

			env, err := appCtx.Envs.Select(ctx, root, envName)
			if err != nil {
				return err
			}
			reqs, err := appCtx.Packages.Requirements(path, root)
			if err != nil {
				return err
			}
			statuses, err := appCtx.Packages.Check(ctx, env, reqs, fresh)
			if err != nil {
				return err
			}

			if latest {
				for i := range statuses {
					v, err := appCtx.Packages.Latest(ctx, statuses[i].Distribution)
					if errors.Is(err, domain.ErrIndexDisabled) {
						break
					}
					if err != nil {
						log.WithError(err).WithField("distribution", statuses[i].Distribution).
							Warn("index lookup failed")
						continue
					}
					statuses[i].Latest = v
				}
			}

			if jsonOut {
				return printJSON(statuses)
			}
			fmt.Print(ui.RenderPackages(statuses))
			return nil
		},
	}
	cmd.Flags().BoolVar(&fresh, "fresh", false, "ignore cached probe results")
	cmd.Flags().BoolVar(&latest, "latest", false, "also look up newest releases on the package index")
	return cmd
}
