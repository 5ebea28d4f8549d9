package domain

// ResolveStrategy names the rule that resolved a link.
type ResolveStrategy string

// Resolution strategies, in the order they are attempted.
const (
	StrategyNone         ResolveStrategy = ""
	StrategyExact        ResolveStrategy = "exact"
	StrategyRelative     ResolveStrategy = "relative"
	StrategyRootPrefixed ResolveStrategy = "root-prefixed"
	StrategyFilename     ResolveStrategy = "filename"
)

// LinkEdge is a local markdown link observed while rewriting a document.
// Edges are transient and never persisted.
type LinkEdge struct {
	// Source is the relative path of the linking document.
	Source string

	// Label is the visible link text.
	Label string

	// Target is the raw target string as written.
	Target string

	// Fragment is the part after '#', if any.
	Fragment string

	// Destination is the relative path of the resolved document.
	Destination string

	// AnchorID is the id the link now points at. Empty when unresolved.
	AnchorID string

	// Strategy records which rule resolved the link.
	Strategy ResolveStrategy

	// Dangling is true when a fragment alias matches no issued anchor.
	Dangling bool
}

// Resolved reports whether the link was rewritten.
func (e LinkEdge) Resolved() bool {
	return e.AnchorID != ""
}
