package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change saved settings",
	Long: `Settings saved in the config file apply to every build unless a flag or
environment variable overrides them. Keys use dots for sections, for
example mermaid.width or tools.pdf_engine.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Save a setting",
	Long: `Saves a setting to the config file. Whole numbers, decimals and
true/false are stored as such; anything else is stored as text.`,
	Example: `  pelagia config set mermaid.scale 1.5
  pelagia config set mermaid.timeout 2m
  pelagia config set cache.dir ~/.cache/pelagia`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cmd.Printf("# %s\n", configStore.Path())

	keys := configStore.Keys()
	if len(keys) == 0 {
		cmd.Println("# no settings saved")
		return nil
	}
	for _, key := range keys {
		val, _ := configStore.Get(key)
		cmd.Printf("%s = %v\n", key, val)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]
	if err := configStore.Set(key, parseConfigValue(raw)); err != nil {
		return err
	}
	cmd.Printf("%s = %s\n", key, raw)
	return nil
}

// parseConfigValue picks the narrowest type raw parses as.
func parseConfigValue(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
