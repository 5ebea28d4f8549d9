// Package diagrams extracts fenced mermaid blocks from a document, repairs
// common syntax problems, fingerprints the result and splices rendered
// artifacts (or a placeholder) back into the text.
//
// Extraction is a sequential line scan with three states: outside any block,
// inside a diagram block and inside some other fenced code block. Ordinals
// and artifact names are fixed during the scan so renders can run in any
// order afterwards.
package diagrams
