package services

import (
	"context"

	"github.com/custodia-labs/pelagia/internal/core/ports/driven"
	"github.com/custodia-labs/pelagia/internal/core/ports/driving"
	"github.com/custodia-labs/pelagia/internal/diagrams"
	"github.com/custodia-labs/pelagia/internal/links"
)

// Ensure CheckService implements the interface.
var _ driving.CheckService = (*CheckService)(nil)

// CheckService reports broken cross-document links without rendering.
type CheckService struct {
	loader     driven.CorpusLoader
	normaliser driven.Normaliser
}

// NewCheckService creates a check service.
func NewCheckService(loader driven.CorpusLoader, normaliser driven.Normaliser) *CheckService {
	return &CheckService{loader: loader, normaliser: normaliser}
}

// Check scans the corpus and resolves every link. Fragments are checked
// against the anchors a build would issue.
func (s *CheckService) Check(ctx context.Context, req driving.CheckRequest) (*driving.CheckReport, error) {
	if err := ValidateCheckRequest(req); err != nil {
		return nil, err
	}

	scan, err := scanCorpus(ctx, s.loader, s.normaliser, req.Folder, req.Start, diagrams.Rules{})
	if err != nil {
		return nil, err
	}

	// Diagram blocks become placeholders so their bodies are not scanned.
	texts := make([]string, len(scan.docs))
	for i, d := range scan.docs {
		texts[i] = d.plan.Splice(nil)
	}
	anchored, issued := assignAnchors(scan, texts)

	resolver := links.NewResolver(scan.index, links.Options{Anchors: issued})
	report := &driving.CheckReport{Documents: len(scan.docs)}
	for _, a := range anchored {
		_, edges := resolver.Rewrite(a.result.Text, a.scanned.source)
		for _, e := range edges {
			report.Links++
			switch {
			case !e.Resolved():
				report.Unresolved = append(report.Unresolved, e)
			case e.Dangling:
				report.Dangling = append(report.Dangling, e)
			}
		}
	}
	return report, nil
}
