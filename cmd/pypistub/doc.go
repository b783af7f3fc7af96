// Package main runs the in-memory PyPI metadata stub used by pyworks during
// development and tests. It serves the subset of the PyPI JSON API the index
// client consumes, so latest-version lookups work without network access.
//
// HTTP API
//
//	GET /pypi/{distribution}/json
//	    Return {"info": {"name": ..., "version": ...}} for {distribution}.
//	    Names are normalized (lowercased, runs of -_. collapse to -) before
//	    lookup, matching the real index.
//
//	POST /pypi/{distribution}/json { "version": "1.2.3" }
//	    Seed or replace the canned version for {distribution}.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit. A handful of
//     common distributions are pre-seeded.
//   - Unknown distributions return 404, which the client maps to its
//     not-found error.
//   - The default listen address is :8080; point the CLI at it with
//     PYWORKS_INDEX_URL=http://127.0.0.1:8080.
package main
