// Package selftest generates the canonical detection fixture and runs it
// end to end against the selected environment.
package selftest
