// Package kernels discovers Jupyter kernelspecs, matches them to Python
// environments and registers new ones.
package kernels
