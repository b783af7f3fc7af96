// Package packages resolves what a Python file needs and probes what its
// environment actually has.
package packages
