package domain

// ChangeType classifies a filesystem change seen in watch mode.
type ChangeType int

// Change types.
const (
	ChangeCreated ChangeType = iota
	ChangeUpdated
	ChangeDeleted
)

// String returns the change type as a lowercase word.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Change is a markdown file that changed under the corpus root.
type Change struct {
	Path string
	Type ChangeType
}
