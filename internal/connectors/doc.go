// Package connectors holds the adapters that discover and read corpus
// files and report changes to them.
package connectors
