// Package installer installs missing distributions with uv or pip and
// verifies the result.
package installer
