package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/pelagia/internal/assembler"
	"github.com/custodia-labs/pelagia/internal/core/domain"
	"github.com/custodia-labs/pelagia/internal/core/ports/driven"
	"github.com/custodia-labs/pelagia/internal/core/ports/driving"
	"github.com/custodia-labs/pelagia/internal/diagrams"
	"github.com/custodia-labs/pelagia/internal/links"
	"github.com/custodia-labs/pelagia/internal/logger"
)

// Ensure BuildService implements the interface.
var _ driving.BuildService = (*BuildService)(nil)

// DefaultTOCDepth is used when a request leaves TOCDepth unset.
const DefaultTOCDepth = 3

// stderrExcerpt bounds the renderer output echoed per failed diagram.
const stderrExcerpt = 200

// BuildService runs the markdown-to-document pipeline.
type BuildService struct {
	loader     driven.CorpusLoader
	normaliser driven.Normaliser
	renderer   driven.DiagramRenderer
	typesetter driven.Typesetter
	locator    driven.ToolLocator
	cache      driven.DiagramCache

	// flights collapses concurrent renders of identical sources.
	flights singleflight.Group
}

// NewBuildService creates a build service. cache may be nil, in which
// case every diagram is rendered.
func NewBuildService(
	loader driven.CorpusLoader,
	normaliser driven.Normaliser,
	renderer driven.DiagramRenderer,
	typesetter driven.Typesetter,
	locator driven.ToolLocator,
	cache driven.DiagramCache,
) *BuildService {
	return &BuildService{
		loader:     loader,
		normaliser: normaliser,
		renderer:   renderer,
		typesetter: typesetter,
		locator:    locator,
		cache:      cache,
	}
}

// buildRun carries the per-run state that the stages share.
type buildRun struct {
	id          string
	req         driving.BuildRequest
	geometry    domain.Geometry
	output      string
	workDir     string
	artifactDir string
	result      *driving.BuildResult
}

// Build runs the pipeline once.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *BuildService) Build(ctx context.Context, req driving.BuildRequest) (*driving.BuildResult, error) {
	started := time.Now()

	// 1. Validate and apply defaults
	if err := ValidateBuildRequest(req); err != nil {
		return nil, err
	}
	if req.Jobs == 0 {
		req.Jobs = runtime.NumCPU()
	}
	if req.TOCDepth == 0 {
		req.TOCDepth = DefaultTOCDepth
	}
	output, err := filepath.Abs(req.Output)
	if err != nil {
		return nil, fmt.Errorf("resolve output: %w", err)
	}

	run := &buildRun{
		id:       uuid.NewString(),
		req:      req,
		geometry: req.Geometry(),
		output:   output,
	}
	run.result = &driving.BuildResult{RunID: run.id, Output: output}
	logger.Debug("run %s: building %s from %s", run.id, output, req.Folder)

	// 2. The typesetter's tools are needed whatever the corpus holds
	if err := requireTools(s.locator, s.typesetter.Requirements()); err != nil {
		return nil, err
	}

	// 3. Load and scan the corpus
	logger.Section("Scan")
	scan, err := scanCorpus(ctx, s.loader, s.normaliser, req.Folder, req.Start,
		diagrams.Rules{FlowDirection: req.FlowDirection})
	if err != nil {
		return nil, err
	}
	run.result.Documents = len(scan.docs)
	run.result.Title = pickTitle(req.Title, scan)
	logger.Debug("scanned %d documents, %d diagrams", len(scan.docs), scan.blockCount())

	// 4. Scratch space, and the renderer only when there is something to draw
	run.workDir, err = os.MkdirTemp("", "pelagia-"+shortID(run.id)+"-")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(run.workDir); err != nil {
			logger.Debug("remove work dir: %v", err)
		}
	}()

	outcomes := make([][]domain.RenderOutcome, len(scan.docs))
	if scan.blockCount() > 0 {
		if err := requireTools(s.locator, s.renderer.Requirements()); err != nil {
			return nil, err
		}
		run.artifactDir = s.artifactDir(run)
		if err := os.MkdirAll(run.artifactDir, 0o755); err != nil {
			return nil, fmt.Errorf("create diagram dir: %w", err)
		}

		logger.Section("Render")
		outcomes, err = s.renderAll(ctx, run, scan)
		if err != nil {
			return nil, err
		}
	}

	// 5. Splice images back in, warning for each failed block
	texts := make([]string, len(scan.docs))
	for i, d := range scan.docs {
		s.reportFailures(run, d, outcomes[i])
		texts[i] = d.plan.Splice(s.relativise(run, outcomes[i]))
	}

	// 6. Heading anchors, then links against the anchors actually issued
	anchored, issued := assignAnchors(scan, texts)
	resolver := links.NewResolver(scan.index, links.Options{
		Anchors:         issued,
		StrictFragments: req.StrictFragments,
	})

	processed := make([]domain.ProcessedDocument, len(anchored))
	for i, a := range anchored {
		run.result.Headings += len(a.result.Anchors)

		text, edges := resolver.Rewrite(a.result.Text, a.scanned.source)
		countEdges(run.result, edges)

		processed[i] = domain.ProcessedDocument{
			Source: a.scanned.source,
			Slug:   a.scanned.slug,
			Title:  a.scanned.norm.Title,
			Text:   text,
		}
	}

	// 7. Assemble and typeset
	logger.Section("Typeset")
	body := assembler.Assemble(processed)
	resources := []string{scan.corpus.Root}
	if run.artifactDir != "" {
		resources = append(resources, run.artifactDir)
	}
	if err := s.writeOutput(ctx, run, body, resources); err != nil {
		return nil, err
	}

	run.result.Duration = time.Since(started)
	return run.result, nil
}

// artifactDir picks where rendered images live. Formats that reference
// images at read time keep them next to the output file.
func (s *BuildService) artifactDir(run *buildRun) string {
	if !s.typesetter.PersistentArtifacts() {
		return filepath.Join(run.workDir, "diagrams")
	}
	stem := strings.TrimSuffix(filepath.Base(run.output), filepath.Ext(run.output))
	return filepath.Join(filepath.Dir(run.output), stem+"_diagrams")
}

// renderAll renders every block with at most req.Jobs in flight. Each
// worker owns one slot of the result, so no locking is needed.
func (s *BuildService) renderAll(
	ctx context.Context,
	run *buildRun,
	scan *corpusScan,
) ([][]domain.RenderOutcome, error) {
	outcomes := make([][]domain.RenderOutcome, len(scan.docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(run.req.Jobs)
	for i, d := range scan.docs {
		outcomes[i] = make([]domain.RenderOutcome, len(d.plan.Blocks))
		for j, block := range d.plan.Blocks {
			g.Go(func() error {
				outcomes[i][j] = s.renderOne(gctx, run, block)
				return nil
			})
		}
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, doc := range outcomes {
		for _, o := range doc {
			switch o.Status {
			case domain.RenderOK:
				run.result.DiagramsRendered++
			case domain.RenderCached:
				run.result.DiagramsCached++
			case domain.RenderFailed:
				run.result.DiagramsFailed++
			}
		}
	}
	return outcomes, nil
}

// renderOne produces the image for one block: from the cache when
// possible, otherwise through the renderer, sharing identical sources.
func (s *BuildService) renderOne(ctx context.Context, run *buildRun, block domain.DiagramBlock) domain.RenderOutcome {
	input, output := diagrams.ArtifactPaths(run.artifactDir, block)
	key := domain.CacheKey(block.Fingerprint, run.geometry)

	if s.cache != nil {
		image, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			logger.Debug("cache get %s: %v", key, err)
		}
		if ok {
			if err := os.WriteFile(output, image, 0o644); err == nil {
				logger.Debug("diagram %s: cached", block.Key())
				return domain.RenderOutcome{ArtifactPath: output, Status: domain.RenderCached}
			}
		}
	}

	v, err, shared := s.flights.Do(key, func() (any, error) {
		err := s.renderer.Render(ctx, driven.RenderJob{
			Ordinal:    block.Ordinal,
			Source:     block.Source,
			InputPath:  input,
			OutputPath: output,
			Geometry:   run.geometry,
			Timeout:    run.req.RenderTimeout,
		})
		if err != nil {
			return nil, err
		}
		image, err := os.ReadFile(output)
		if err != nil {
			return nil, &domain.RenderError{Ordinal: block.Ordinal, Err: err}
		}
		if s.cache != nil {
			if err := s.cache.Put(ctx, key, image); err != nil {
				logger.Debug("cache put %s: %v", key, err)
			}
		}
		return image, nil
	})
	if err != nil {
		var renderErr *domain.RenderError
		if errors.As(err, &renderErr) {
			copied := *renderErr
			copied.Ordinal = block.Ordinal
			err = &copied
		}
		return domain.RenderOutcome{Status: domain.RenderFailed, Err: err}
	}

	status := domain.RenderOK
	if shared {
		image, _ := v.([]byte)
		if _, statErr := os.Stat(output); statErr != nil {
			if err := os.WriteFile(output, image, 0o644); err != nil {
				return domain.RenderOutcome{
					Status: domain.RenderFailed,
					Err:    &domain.RenderError{Ordinal: block.Ordinal, Err: err},
				}
			}
			status = domain.RenderCached
		}
	}
	logger.Debug("diagram %s: rendered", block.Key())
	return domain.RenderOutcome{ArtifactPath: output, Status: status}
}

// reportFailures prints one warning per failed block.
func (s *BuildService) reportFailures(run *buildRun, d *scannedDocument, outcomes []domain.RenderOutcome) {
	for j, o := range outcomes {
		if o.Status != domain.RenderFailed {
			continue
		}
		logger.Warn("mermaid diagram %d in %s failed to render, skipping.", j, d.source.RelPath)
		var renderErr *domain.RenderError
		if errors.As(o.Err, &renderErr) && renderErr.Stderr != "" {
			logger.Detail("Error: %s", renderErr.Excerpt(stderrExcerpt))
		} else {
			logger.Detail("Error: %v", o.Err)
		}
		run.result.Failures = append(run.result.Failures, driving.DiagramFailure{
			Document: d.source.RelPath,
			Ordinal:  j,
			Err:      o.Err,
		})
	}
}

// relativise rewrites artifact paths relative to the output directory for
// formats that keep their images.
func (s *BuildService) relativise(run *buildRun, outcomes []domain.RenderOutcome) []domain.RenderOutcome {
	if !s.typesetter.PersistentArtifacts() || len(outcomes) == 0 {
		return outcomes
	}
	out := make([]domain.RenderOutcome, len(outcomes))
	base := filepath.Dir(run.output)
	for i, o := range outcomes {
		out[i] = o
		if o.ArtifactPath == "" {
			continue
		}
		if rel, err := filepath.Rel(base, o.ArtifactPath); err == nil {
			out[i].ArtifactPath = rel
		}
	}
	return out
}

// writeOutput typesets into a temporary sibling of the output and renames
// it into place, so a failed run never leaves a partial file behind.
func (s *BuildService) writeOutput(ctx context.Context, run *buildRun, body string, resources []string) error {
	dir := filepath.Dir(run.output)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	name := filepath.Base(run.output)
	ext := filepath.Ext(name)
	tmp := filepath.Join(dir, "."+strings.TrimSuffix(name, ext)+"-"+shortID(run.id)+ext)

	err := s.typesetter.Typeset(ctx, driven.TypesetRequest{
		Body:          body,
		WorkDir:       run.workDir,
		OutputPath:    tmp,
		ResourcePaths: resources,
		Title:         run.result.Title,
		TOCDepth:      run.req.TOCDepth,
	})
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, run.output); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("move output into place: %w", err)
	}
	return nil
}

// pickTitle prefers the explicit title, then the start document's.
func pickTitle(explicit string, scan *corpusScan) string {
	if explicit != "" {
		return explicit
	}
	if len(scan.docs) > 0 {
		return scan.docs[0].norm.FrontMatter.Title
	}
	return ""
}

func countEdges(result *driving.BuildResult, edges []domain.LinkEdge) {
	for _, e := range edges {
		switch {
		case !e.Resolved():
			result.LinksUnresolved++
		case e.Dangling:
			result.LinksRewritten++
			result.LinksDangling++
		default:
			result.LinksRewritten++
		}
	}
}

// requireTools returns the first missing binary.
func requireTools(locator driven.ToolLocator, reqs []domain.ToolRequirement) error {
	for _, r := range reqs {
		if _, err := locator.LookPath(r); err != nil {
			return err
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
