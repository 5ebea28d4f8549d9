// Package domain defines the core entities for pelagia.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceDocument: One markdown file discovered under the corpus root
//   - Corpus: The ordered set of documents for one run
//   - HeadingAnchor: A unique id assigned to a heading
//   - LinkEdge: A local link and the anchor it resolved to
//   - DiagramBlock: A fenced diagram extracted for external rendering
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
