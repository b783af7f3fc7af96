// Package python runs Python interpreters as subprocesses: version probes,
// import checks and script execution with captured output.
package python
