package cli

import (
	"bytes"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/pelagia/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pelagia/internal/core/ports/driven"
	"github.com/custodia-labs/pelagia/internal/logger"
)

// prepareCLI points the root command at store and a fresh output buffer.
func prepareCLI(t *testing.T, store driven.ConfigStore, args ...string) *bytes.Buffer {
	t.Helper()

	for _, env := range []string{
		"PELAGIA_TITLE", "PELAGIA_FORMAT", "PELAGIA_CACHE_DIR",
		"PELAGIA_PDF_ENGINE", "PELAGIA_PANDOC", "PELAGIA_MMDC",
	} {
		t.Setenv(env, "")
	}

	oldOpen := openConfigStore
	openConfigStore = func(string) (driven.ConfigStore, error) { return store, nil }

	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	logger.SetOutput(buf)

	t.Cleanup(func() {
		openConfigStore = oldOpen
		configStore = nil
		rootCmd.SetArgs(nil)
		logger.SetOutput(os.Stderr)
		logger.SetVerbose(false)
	})
	return buf
}

// runCLI executes args against an empty in-memory config.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLIWithConfig(t, memory.NewConfigStore(), args...)
}

func runCLIWithConfig(t *testing.T, store driven.ConfigStore, args ...string) (string, error) {
	t.Helper()
	buf := prepareCLI(t, store, args...)
	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
