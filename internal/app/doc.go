// Package app wires application dependencies for the CLI.
//
// It builds the cache store, interpreter runner, index client and high-level
// services from config.Config, exposing them via the Wire struct for
// commands to use.
package app
