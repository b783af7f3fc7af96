// Package ui renders pyworks' interactive surfaces: Bubble Tea models for
// the install confirmation prompt and install progress, plus Lip Gloss
// formatting for reports and listings.
//
// Prompts and progress run on stderr so stdout stays reserved for reports,
// JSON output and relayed script output.
package ui
