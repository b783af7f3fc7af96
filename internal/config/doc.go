// Package config loads pyworks settings from defaults, an optional config
// file and PYWORKS_* environment variables.
package config
