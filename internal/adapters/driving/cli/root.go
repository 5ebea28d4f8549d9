// Package cli implements the pelagia command line.
package cli

import (
	"errors"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/pelagia/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pelagia/internal/core/ports/driven"
	"github.com/custodia-labs/pelagia/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

// Exit codes.
const (
	exitOK       = 0
	exitProblems = 1
	exitFatal    = 2
)

var (
	configPath string
	verbose    bool

	// configStore is opened before any command runs.
	configStore driven.ConfigStore

	// openConfigStore is replaced in tests.
	openConfigStore = func(path string) (driven.ConfigStore, error) {
		return file.NewConfigStore(path)
	}
)

// errProblemsFound marks a command that ran but found problems to report.
var errProblemsFound = errors.New("problems found")

var rootCmd = &cobra.Command{
	Use:   "pelagia <folder>",
	Short: "Combine a folder of markdown into one linked document",
	Long: `Pelagia walks a folder of markdown files, renders mermaid diagrams to
images, gives every heading a stable anchor, rewrites links between files
into in-document links and typesets the result as a single PDF, HTML page
or markdown file.

The start file comes first; the remaining files follow in path order,
wrapping around to the ones sorted before it.`,
	Example: `  pelagia docs --start README.md --out handbook.pdf
  pelagia docs --start index.md --out site/handbook.html --format html
  pelagia docs --start index.md --out book.pdf --watch`,
	Args:              cobra.ExactArgs(1),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runBuild,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.pelagia/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print progress and a build summary")
}

// setup runs before every command.
func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	store, err := openConfigStore(expandHome(configPath))
	if err != nil {
		return err
	}
	configStore = store
	logger.Debug("config: %s", store.Path())
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	// A missing .env is normal.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errProblemsFound) {
			return exitProblems
		}
		logger.Error("%v", err)
		return exitFatal
	}
	return exitOK
}
