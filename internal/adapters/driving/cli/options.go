package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// Settings resolve in this order: flag, environment, config file, flag default.

func stringSetting(cmd *cobra.Command, flag, env, key string) string {
	if cmd.Flags().Changed(flag) {
		v, _ := cmd.Flags().GetString(flag)
		return v
	}
	if env != "" {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	if configStore != nil {
		if v := configStore.GetString(key); v != "" {
			return v
		}
	}
	v, _ := cmd.Flags().GetString(flag)
	return v
}

func intSetting(cmd *cobra.Command, flag, key string) int {
	if !cmd.Flags().Changed(flag) && hasKey(key) {
		return configStore.GetInt(key)
	}
	v, _ := cmd.Flags().GetInt(flag)
	return v
}

func floatSetting(cmd *cobra.Command, flag, key string) float64 {
	if !cmd.Flags().Changed(flag) && hasKey(key) {
		return configStore.GetFloat(key)
	}
	v, _ := cmd.Flags().GetFloat64(flag)
	return v
}

func boolSetting(cmd *cobra.Command, flag, key string) bool {
	if !cmd.Flags().Changed(flag) && hasKey(key) {
		return configStore.GetBool(key)
	}
	v, _ := cmd.Flags().GetBool(flag)
	return v
}

func durationSetting(cmd *cobra.Command, flag, key string) time.Duration {
	if !cmd.Flags().Changed(flag) && hasKey(key) {
		return configStore.GetDuration(key)
	}
	v, _ := cmd.Flags().GetDuration(flag)
	return v
}

// toolSetting resolves a binary that has no flag of its own.
func toolSetting(env, key, fallback string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	if configStore != nil {
		if v := configStore.GetString(key); v != "" {
			return v
		}
	}
	return fallback
}

func hasKey(key string) bool {
	if configStore == nil {
		return false
	}
	_, ok := configStore.Get(key)
	return ok
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
