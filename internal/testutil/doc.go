// Package testutil provides shared test doubles for the domain interfaces.
package testutil
