// Package fingerprint derives short stable identifiers for Python
// environments, used as probe-cache keys and shown in listings.
package fingerprint
