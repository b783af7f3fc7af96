package ui

import (
	"fmt"
	"strings"

	"github.com/jeryldev/pyworks/internal/domain"
)

// RenderReport formats a detection report for human eyes. JSON consumers
// should marshal the report directly instead.
func RenderReport(r domain.Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(r.File) + dimStyle.Render(" ("+string(r.Kind)+")") + "\n")

	if env := r.Environment; env != nil {
		line := fmt.Sprintf("%s %s", env.Kind, env.Name)
		if env.Version != "" {
			line += " " + env.Version
		}
		b.WriteString("  " + accentStyle.Render(line) + dimStyle.Render("  "+env.Interpreter) + "\n")
	}

	if r.JupyterChecked {
		if r.JupyterReady {
			status := okStyle.Render("jupyter ready")
			if r.Kernel != nil {
				status += dimStyle.Render("  kernel " + r.Kernel.Name)
			}
			b.WriteString("  " + status + "\n")
		} else {
			b.WriteString("  " + badStyle.Render("jupyter not ready") + dimStyle.Render("  run pyworks init-kernel") + "\n")
		}
	}

	if len(r.Packages) == 0 {
		b.WriteString(dimStyle.Render("  no third-party requirements") + "\n")
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(RenderPackages(r.Packages))
	b.WriteString("\n")
	if n := len(r.Missing); n > 0 {
		b.WriteString(badStyle.Render(fmt.Sprintf("%d missing", n)) + dimStyle.Render("  run pyworks install") + "\n")
	} else {
		b.WriteString(okStyle.Render("all requirements installed") + "\n")
	}
	return b.String()
}

// RenderPackages formats probe results, one per line.
func RenderPackages(statuses []domain.PackageStatus) string {
	if len(statuses) == 0 {
		return dimStyle.Render("no third-party requirements") + "\n"
	}
	var b strings.Builder
	width := 0
	for _, st := range statuses {
		if len(st.Distribution) > width {
			width = len(st.Distribution)
		}
	}
	for _, st := range statuses {
		mark := okStyle.Render("✓")
		if !st.Installed {
			mark = badStyle.Render("✗")
		}
		b.WriteString(fmt.Sprintf("  %s %-*s", mark, width, st.Distribution))
		if st.Latest != "" {
			b.WriteString(dimStyle.Render("  latest " + st.Latest))
		}
		if st.Source != "" {
			b.WriteString(historyStyle.Render("  " + st.Source))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderEnvironments formats the environment list, one per line, with the
// active environment starred.
func RenderEnvironments(envs []domain.Environment) string {
	if len(envs) == 0 {
		return dimStyle.Render("no Python environments found") + "\n"
	}
	var b strings.Builder
	width := 0
	for _, env := range envs {
		if len(env.Name) > width {
			width = len(env.Name)
		}
	}
	for _, env := range envs {
		mark := " "
		if env.Active {
			mark = okStyle.Render("*")
		}
		b.WriteString(fmt.Sprintf("%s %-*s  %-6s %-8s %s\n",
			mark, width, env.Name, env.Kind, env.Version,
			dimStyle.Render(env.Interpreter)))
	}
	return b.String()
}

// RenderKernelspecs formats installed Jupyter kernels, one per line.
func RenderKernelspecs(specs []domain.Kernelspec) string {
	if len(specs) == 0 {
		return dimStyle.Render("no Jupyter kernels installed") + "\n"
	}
	var b strings.Builder
	width := 0
	for _, ks := range specs {
		if len(ks.Name) > width {
			width = len(ks.Name)
		}
	}
	for _, ks := range specs {
		b.WriteString(fmt.Sprintf("  %-*s  %s  %s\n",
			width, ks.Name, ks.DisplayName, dimStyle.Render(ks.Dir)))
	}
	return b.String()
}
