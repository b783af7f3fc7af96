package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jeryldev/pyworks/internal/app"
	"github.com/jeryldev/pyworks/internal/buildinfo"
	"github.com/jeryldev/pyworks/internal/config"
)

var (
	cfgFile string
	homeDir string
	envName string
	verbose bool
	jsonOut bool

	appCtx *app.Wire
)

// StatusError carries a specific process exit status through RunE, used when
// the CLI must mirror a child process status instead of the generic 1.
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string { return e.Err.Error() }
func (e *StatusError) Unwrap() error { return e.Err }

// Status maps err to the exit status main should use.
func Status(err error) int {
	if err == nil {
		return 0
	}
	var se *StatusError
	if errors.As(err, &se) && se.Code != 0 {
		return se.Code
	}
	return 1
}

func Execute() error {
	root := &cobra.Command{
		Use:          "pyworks",
		Short:        "Python environment, kernel and package detection for editors",
		Version:      buildinfo.Short(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if homeDir != "" {
				cfg.Home = homeDir
			}
			initLogger(cfg)

			if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
				return err
			}

			appCtx, err = app.NewWire(cfg)
			return err
		},
	}

	root.PersistentFlags().StringVar(&homeDir, "home", "", "state dir (default ~/.pyworks)")
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	root.PersistentFlags().StringVarP(&envName, "env", "e", "", "environment name or interpreter path override")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&jsonOut, "json", false, "machine-readable JSON output")

	root.AddCommand(detectCmd(), envsCmd(), kernelsCmd(), initKernelCmd(),
		packagesCmd(), installCmd(), selftestCmd(), fixtureCmd(), clearCacheCmd())
	return root.Execute()
}

// initLogger points logrus at stderr so stdout stays reserved for reports,
// JSON output and relayed script output.
func initLogger(cfg *config.Config) {
	log.SetOutput(os.Stderr)

	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
