// Package imports extracts third-party dependencies from Python sources and
// Jupyter notebooks, and maps import names to the PyPI distributions that
// provide them.
package imports
