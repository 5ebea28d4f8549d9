package domain

// HeadingAnchor is a heading annotated with its corpus-unique id.
type HeadingAnchor struct {
	// DocumentSlug is the slug of the owning document.
	DocumentSlug string

	// Level is the number of leading '#' markers (1-6).
	Level int

	// Title is the cleaned heading text.
	Title string

	// ID is the assigned anchor id.
	ID string

	// Explicit is true when the author supplied the id with {#...}.
	Explicit bool
}

// AnchorSet is a set of issued anchor ids.
type AnchorSet map[string]struct{}

// Add records an id.
func (s AnchorSet) Add(id string) {
	s[id] = struct{}{}
}

// Has reports whether the id was issued.
func (s AnchorSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// DocumentAnchors holds the ids issued in each document, keyed by the
// document's corpus-relative path.
type DocumentAnchors map[string]AnchorSet

// Add records id as issued in the document at rel.
func (d DocumentAnchors) Add(rel, id string) {
	set, ok := d[rel]
	if !ok {
		set = AnchorSet{}
		d[rel] = set
	}
	set.Add(id)
}

// Has reports whether id was issued in the document at rel.
func (d DocumentAnchors) Has(rel, id string) bool {
	return d[rel].Has(id)
}
