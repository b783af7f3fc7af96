// Package commands defines the pyworks CLI and wires dependencies for subcommands.
//
// Commands
//
//   - detect       Run the full detection flow for a Python file or notebook
//   - envs         List discovered Python environments
//   - kernels      List installed Jupyter kernelspecs
//   - init-kernel  Register a Jupyter kernel for the selected environment
//   - packages     Show requirement status for a file
//   - install      Install the missing packages for a file
//   - selftest     Run the bundled detection fixture end to end
//   - fixture      Emit the detection fixture script
//   - clear-cache  Drop cached environments and probe results
//
// # Implementation
//
// The root command loads configuration, points logging at stderr and builds
// the dependency graph (cache store, interpreter runner, index client,
// services) before any subcommand runs. Stdout carries only reports, JSON
// and relayed script output; everything interactive happens on stderr.
package commands
