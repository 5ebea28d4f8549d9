// Package memory provides in-memory implementations of driven ports.
// They hold state for a single process and are safe for concurrent use.
package memory
