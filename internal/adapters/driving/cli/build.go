package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/pelagia/internal/adapters/driven/renderer/mermaid"
	"github.com/custodia-labs/pelagia/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pelagia/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pelagia/internal/adapters/driven/toolchain"
	"github.com/custodia-labs/pelagia/internal/adapters/driven/typesetter/html"
	"github.com/custodia-labs/pelagia/internal/adapters/driven/typesetter/markdown"
	"github.com/custodia-labs/pelagia/internal/adapters/driven/typesetter/pandoc"
	"github.com/custodia-labs/pelagia/internal/connectors/filesystem"
	"github.com/custodia-labs/pelagia/internal/core/domain"
	"github.com/custodia-labs/pelagia/internal/core/ports/driven"
	"github.com/custodia-labs/pelagia/internal/core/ports/driving"
	"github.com/custodia-labs/pelagia/internal/core/services"
	"github.com/custodia-labs/pelagia/internal/logger"
	mdnormaliser "github.com/custodia-labs/pelagia/internal/normalisers/markdown"
)

// Output formats.
const (
	formatPDF      = "pdf"
	formatHTML     = "html"
	formatMarkdown = "markdown"
)

// watchDebounce groups the bursts of events editors produce on save.
const watchDebounce = 300 * time.Millisecond

// buildOptions is the fully resolved configuration for a build.
type buildOptions struct {
	request  driving.BuildRequest
	format   string
	cacheDir string
	pandoc   string
	engine   string
	mmdc     string
	watch    bool
}

var (
	// newBuildService wires the adapters for opts. Replaced in tests.
	newBuildService = defaultBuildService

	// newWatcher returns the change source for --watch. Replaced in tests.
	newWatcher = func() (driven.Watcher, func() error) {
		c := filesystem.New()
		return c, c.Close
	}
)

func init() {
	f := rootCmd.Flags()
	f.String("start", "", "file to place first, relative to the folder")
	f.StringP("out", "o", "", "output file")
	f.String("title", "", "document title (default: start file's front-matter title)")
	f.String("format", formatPDF, "output format: pdf, html or markdown")
	f.Int("mermaid-width", 800, "diagram width in pixels before scaling")
	f.Int("mermaid-height", 600, "diagram height in pixels before scaling")
	f.Float64("mermaid-scale", 1.0, "diagram size multiplier")
	f.String("mermaid-flow-direction", "", "force flowchart direction: TB, TD, BT, RL or LR")
	f.Duration("render-timeout", 60*time.Second, "limit per diagram render (0 disables)")
	f.Int("jobs", 0, "concurrent diagram renders (default: number of CPUs)")
	f.Int("toc-depth", services.DefaultTOCDepth, "deepest heading level in the table of contents")
	f.Bool("strict-fragments", false, "point links with unknown #fragments at the whole document")
	f.String("cache-dir", "", "keep rendered diagrams in a cache under this directory")
	f.String("pdf-engine", "tectonic", "PDF engine passed to pandoc")
	f.Bool("watch", false, "rebuild whenever a markdown file changes")

	_ = rootCmd.MarkFlagRequired("start")
	_ = rootCmd.MarkFlagRequired("out")
}

// resolveBuildOptions merges flags, environment and config for folder.
func resolveBuildOptions(cmd *cobra.Command, folder string) (buildOptions, error) {
	start, _ := cmd.Flags().GetString("start")
	out, _ := cmd.Flags().GetString("out")
	watch, _ := cmd.Flags().GetBool("watch")

	opts := buildOptions{
		request: driving.BuildRequest{
			Folder:          expandHome(folder),
			Start:           expandHome(start),
			Output:          expandHome(out),
			Title:           stringSetting(cmd, "title", "PELAGIA_TITLE", "title"),
			Width:           intSetting(cmd, "mermaid-width", "mermaid.width"),
			Height:          intSetting(cmd, "mermaid-height", "mermaid.height"),
			Scale:           floatSetting(cmd, "mermaid-scale", "mermaid.scale"),
			FlowDirection:   stringSetting(cmd, "mermaid-flow-direction", "", "mermaid.flow_direction"),
			Jobs:            intSetting(cmd, "jobs", "mermaid.jobs"),
			RenderTimeout:   durationSetting(cmd, "render-timeout", "mermaid.timeout"),
			StrictFragments: boolSetting(cmd, "strict-fragments", "links.strict_fragments"),
			TOCDepth:        intSetting(cmd, "toc-depth", "toc.depth"),
		},
		format:   stringSetting(cmd, "format", "PELAGIA_FORMAT", "format"),
		cacheDir: expandHome(stringSetting(cmd, "cache-dir", "PELAGIA_CACHE_DIR", "cache.dir")),
		engine:   stringSetting(cmd, "pdf-engine", "PELAGIA_PDF_ENGINE", "tools.pdf_engine"),
		pandoc:   toolSetting("PELAGIA_PANDOC", "tools.pandoc", pandoc.DefaultBinary),
		mmdc:     toolSetting("PELAGIA_MMDC", "tools.mmdc", mermaid.DefaultBinary),
		watch:    watch,
	}

	err := validation.Validate(opts.format, validation.In(formatPDF, formatHTML, formatMarkdown))
	if err != nil {
		return opts, fmt.Errorf("%w: format %q: %w", domain.ErrInvalidInput, opts.format, err)
	}
	return opts, nil
}

// defaultBuildService wires the production adapters. The returned function
// releases the diagram cache.
func defaultBuildService(opts buildOptions) (driving.BuildService, func() error, error) {
	var typesetter driven.Typesetter
	switch opts.format {
	case formatHTML:
		typesetter = html.New()
	case formatMarkdown:
		typesetter = markdown.New()
	default:
		typesetter = pandoc.New(opts.pandoc, opts.engine)
	}

	var cache driven.DiagramCache = memory.NewDiagramCache()
	if opts.cacheDir != "" {
		store, err := sqlite.NewStore(opts.cacheDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open diagram cache: %w", err)
		}
		cache = store.DiagramCache()
	}

	svc := services.NewBuildService(
		filesystem.New(),
		mdnormaliser.New(),
		mermaid.New(opts.mmdc),
		typesetter,
		toolchain.NewLocator(),
		cache,
	)
	return svc, cache.Close, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	opts, err := resolveBuildOptions(cmd, args[0])
	if err != nil {
		return err
	}

	svc, closeCache, err := newBuildService(opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeCache(); err != nil {
			logger.Debug("close diagram cache: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := buildOnce(ctx, cmd, svc, opts.request); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}
	return watchAndRebuild(ctx, cmd, svc, opts.request)
}

// buildOnce runs one build and prints its outcome.
func buildOnce(ctx context.Context, cmd *cobra.Command, svc driving.BuildService, req driving.BuildRequest) error {
	res, err := svc.Build(ctx, req)
	if err != nil {
		return err
	}

	cmd.Printf("wrote: %s\n", res.Output)

	logger.Section("Summary")
	logger.Info("run:        %s", res.RunID)
	logger.Info("documents:  %d", res.Documents)
	logger.Info("headings:   %d", res.Headings)
	logger.Info("links:      %d rewritten, %d unresolved, %d dangling",
		res.LinksRewritten, res.LinksUnresolved, res.LinksDangling)
	logger.Info("diagrams:   %d rendered, %d cached, %d failed",
		res.DiagramsRendered, res.DiagramsCached, res.DiagramsFailed)
	logger.Info("took:       %s", res.Duration.Round(time.Millisecond))
	return nil
}

// watchAndRebuild rebuilds after markdown changes until ctx is cancelled.
// A failed rebuild is reported and the watch continues.
func watchAndRebuild(ctx context.Context, cmd *cobra.Command, svc driving.BuildService, req driving.BuildRequest) error {
	watcher, closeWatcher := newWatcher()
	defer func() { _ = closeWatcher() }()

	changes, err := watcher.Watch(ctx, req.Folder)
	if err != nil {
		return fmt.Errorf("watch %s: %w", req.Folder, err)
	}
	cmd.Printf("watching %s for changes (Ctrl+C to stop)\n", req.Folder)

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case change, ok := <-changes:
			if !ok {
				return nil
			}
			if isOwnOutput(change.Path, req.Output) {
				continue
			}
			logger.Debug("%s: %s", change.Type, change.Path)
			timer.Reset(watchDebounce)

		case <-timer.C:
			if err := buildOnce(ctx, cmd, svc, req); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Error("%v", err)
			}
		}
	}
}

// isOwnOutput reports whether path is the build output or its temporary
// sibling, so a markdown build inside the corpus does not retrigger itself.
func isOwnOutput(path, output string) bool {
	path, _ = filepath.Abs(path)
	output, _ = filepath.Abs(output)
	if path == output {
		return true
	}
	if filepath.Dir(path) != filepath.Dir(output) {
		return false
	}
	stem := strings.TrimSuffix(filepath.Base(output), filepath.Ext(output))
	return strings.HasPrefix(filepath.Base(path), "."+stem+"-")
}
