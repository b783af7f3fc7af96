package commands

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jeryldev/pyworks/internal/domain"
)

// selftest: run the bundled detection fixture under the selected environment.
// The child's stdout and stderr are relayed verbatim and the command exits
// with the child's status, so wrappers can script against both.
func selftestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "Run the bundled detection fixture end to end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := appCtx.Selftest.Run(cmd.Context(), envName)
			if err != nil {
				return err
			}

			// Relay the child's streams untouched.
			fmt.Print(res.Stdout)
			fmt.Fprint(os.Stderr, res.Stderr)

			if res.Passed {
				log.WithFields(log.Fields{
					"env":         res.Environment.Name,
					"interpreter": res.Environment.Interpreter,
				}).Info("selftest passed")
				return nil
			}

			code := res.ExitCode
			if code == 0 {
				code = 1
			}
			if len(res.Missing) > 0 {
				return &StatusError{Code: code, Err: fmt.Errorf("%w: %s",
					domain.ErrMissingPackages, strings.Join(res.Missing, ", "))}
			}
			return &StatusError{Code: code, Err: fmt.Errorf("fixture exited with status %d", res.ExitCode)}
		},
	}
}
