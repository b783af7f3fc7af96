// Package pypi implements the package index client over the PyPI JSON API.
package pypi
