package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pelagia/internal/anchors"
	"github.com/custodia-labs/pelagia/internal/core/domain"
	"github.com/custodia-labs/pelagia/internal/core/ports/driven"
	"github.com/custodia-labs/pelagia/internal/diagrams"
	"github.com/custodia-labs/pelagia/internal/links"
)

// scannedDocument is a document after the sequential scan: front matter
// stripped and diagram blocks cut out with their ordinals fixed.
type scannedDocument struct {
	source domain.SourceDocument
	slug   string
	norm   *driven.NormaliseResult
	plan   *diagrams.Plan
}

// corpusScan is the read-only state shared by the later stages.
type corpusScan struct {
	corpus *domain.Corpus
	index  *links.Index
	docs   []*scannedDocument
}

// blockCount returns the number of diagram blocks across all documents.
func (s *corpusScan) blockCount() int {
	n := 0
	for _, d := range s.docs {
		n += len(d.plan.Blocks)
	}
	return n
}

// scanCorpus loads the corpus and scans every document in order. An
// unterminated diagram block anywhere aborts the scan.
func scanCorpus(
	ctx context.Context,
	loader driven.CorpusLoader,
	normaliser driven.Normaliser,
	folder, start string,
	rules diagrams.Rules,
) (*corpusScan, error) {
	corpus, err := loader.Load(ctx, folder, start)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	scan := &corpusScan{
		corpus: corpus,
		index:  links.NewIndex(corpus.Root, corpus.RelPaths()),
		docs:   make([]*scannedDocument, 0, len(corpus.Documents)),
	}

	for _, src := range corpus.Documents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		docSlug, _ := scan.index.Slug(src.RelPath)

		norm, err := normaliser.Normalise(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("normalise %s: %w", src.RelPath, err)
		}

		plan, err := diagrams.Extract(src.RelPath, norm.Body, docSlug, rules)
		if err != nil {
			return nil, err
		}

		scan.docs = append(scan.docs, &scannedDocument{
			source: src,
			slug:   docSlug,
			norm:   norm,
			plan:   plan,
		})
	}
	return scan, nil
}

// anchoredDocument is a document with heading ids assigned.
type anchoredDocument struct {
	scanned *scannedDocument
	result  anchors.Result
}

// assignAnchors annotates each spliced document and returns the ids issued
// in each one. texts is indexed like scan.docs.
func assignAnchors(scan *corpusScan, texts []string) ([]anchoredDocument, domain.DocumentAnchors) {
	issued := domain.DocumentAnchors{}
	out := make([]anchoredDocument, len(scan.docs))
	for i, d := range scan.docs {
		res := anchors.Rewrite(texts[i], d.slug)
		for _, id := range res.IDs(d.slug) {
			issued.Add(d.source.RelPath, id)
		}
		out[i] = anchoredDocument{scanned: d, result: res}
	}
	return out, issued
}
