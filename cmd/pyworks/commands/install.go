package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jeryldev/pyworks/internal/domain"
	"github.com/jeryldev/pyworks/internal/ui"
)

// install <file>: detect the missing packages for <file>, confirm, and
// install them into the selected environment.
func installCmd() *cobra.Command {
	var yes, fresh bool
	cmd := &cobra.Command{
		Use:   "install <file>",
		Short: "Install the missing packages for a Python file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			report, err := appCtx.Detect.Detect(ctx, args[0], domain.DetectOptions{
				Env:   envName,
				Fresh: fresh,
			})
			if err != nil {
				return err
			}
			if report.Environment == nil {
				return domain.ErrNoEnvironment
			}
			env := *report.Environment

			if len(report.Missing) == 0 {
				fmt.Fprintln(os.Stderr, "nothing to install")
				return nil
			}
			dists := distributions(report.Missing)

			argv, err := appCtx.Installer.Command(env)
			if err != nil {
				return err
			}

			if !yes {
				if !ui.Interactive() {
					return fmt.Errorf("%w: re-run with --yes to install %s",
						domain.ErrInstallDeclined, strings.Join(dists, ", "))
				}
				items := make([]string, len(report.Missing))
				for i, req := range report.Missing {
					items[i] = fmt.Sprintf("%s  (%s)", req.Distribution, req.Source)
				}
				question := fmt.Sprintf("Install %d package(s) into %s with %s?",
					len(dists), env.Name, argv[0])
				ok, err := ui.Confirm(question, items)
				if err != nil {
					return err
				}
				if !ok {
					return domain.ErrInstallDeclined
				}
			}

			if ui.Interactive() {
				return installWithUI(ctx, env, dists)
			}
			return appCtx.Installer.Install(ctx, env, dists, logProgress)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "install without confirmation")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "ignore cached environments and probe results")
	return cmd
}

// installWithUI drives the install through the progress model. The installer
// runs in a goroutine and feeds the program; ctrl+c cancels the context so a
// running pip is killed before returning.
func installWithUI(ctx context.Context, env domain.Environment, dists []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := tea.NewProgram(ui.NewInstall(len(dists)), tea.WithOutput(os.Stderr))

	done := make(chan error, 1)
	go func() {
		err := appCtx.Installer.Install(ctx, env, dists, func(p domain.InstallProgress) {
			prog.Send(ui.ProgressMsg(p))
		})
		prog.Send(ui.DoneMsg{Err: err})
		done <- err
	}()

	final, err := prog.Run()
	if err != nil {
		cancel()
		<-done
		return err
	}
	if model, ok := final.(ui.InstallModel); ok && model.Cancelled() {
		cancel()
		<-done
		return fmt.Errorf("install cancelled")
	}
	return <-done
}

// logProgress reports install progress through the logger for non-interactive
// runs (pipes, CI).
func logProgress(p domain.InstallProgress) {
	entry := log.WithFields(log.Fields{
		"distribution": p.Distribution,
		"step":         fmt.Sprintf("%d/%d", p.Index, p.Total),
	})
	switch {
	case p.Err != nil:
		entry.WithError(p.Err).Error("install failed")
	case p.Done:
		entry.Info("installed")
	default:
		entry.Info("installing")
	}
}
