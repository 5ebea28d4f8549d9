package driving

import (
	"context"

	"github.com/custodia-labs/pelagia/internal/core/domain"
)

// CheckService reports link problems without rendering anything.
type CheckService interface {
	Check(ctx context.Context, req CheckRequest) (*CheckReport, error)
}

// CheckRequest describes one check.
type CheckRequest struct {
	Folder string
	Start  string
}

// CheckReport lists the links that did not land on a known anchor.
type CheckReport struct {
	Documents int
	Links     int

	// Unresolved are markdown links no strategy resolved.
	Unresolved []domain.LinkEdge

	// Dangling are resolved links whose fragment alias matches no heading.
	Dangling []domain.LinkEdge
}

// OK reports whether every link resolved to an existing anchor.
func (r *CheckReport) OK() bool {
	return len(r.Unresolved) == 0 && len(r.Dangling) == 0
}
