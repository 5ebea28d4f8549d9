// Package driving holds the use cases the CLI calls into: building a
// document from a corpus and checking a corpus for broken links.
// internal/core/services implements them.
package driving
