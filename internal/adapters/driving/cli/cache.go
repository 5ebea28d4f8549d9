package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pelagia/internal/adapters/driven/storage/sqlite"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the diagram cache",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete cached diagrams that have not been used recently",
	Args:  cobra.NoArgs,
	RunE:  runCachePrune,
}

func init() {
	cachePruneCmd.Flags().String("cache-dir", "", "cache directory (default: cache.dir setting)")
	cachePruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "age of the last use after which a diagram is removed")
	cacheCmd.AddCommand(cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCachePrune(cmd *cobra.Command, _ []string) error {
	dir := expandHome(stringSetting(cmd, "cache-dir", "PELAGIA_CACHE_DIR", "cache.dir"))
	if dir == "" {
		return errors.New("no cache directory: pass --cache-dir or set cache.dir")
	}
	age, _ := cmd.Flags().GetDuration("older-than")

	store, err := sqlite.NewStore(dir)
	if err != nil {
		return fmt.Errorf("open diagram cache: %w", err)
	}
	defer func() { _ = store.Close() }()

	n, err := store.Prune(cmd.Context(), time.Now().Add(-age))
	if err != nil {
		return fmt.Errorf("prune: %w", err)
	}
	cmd.Printf("removed %d cached diagrams from %s\n", n, store.Path())
	return nil
}
