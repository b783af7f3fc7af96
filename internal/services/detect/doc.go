// Package detect orchestrates the auto-detection flow: file classification,
// environment selection, Jupyter support and package probing.
package detect
