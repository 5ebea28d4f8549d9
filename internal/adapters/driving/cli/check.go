package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pelagia/internal/connectors/filesystem"
	"github.com/custodia-labs/pelagia/internal/core/ports/driving"
	"github.com/custodia-labs/pelagia/internal/core/services"
	"github.com/custodia-labs/pelagia/internal/normalisers/markdown"
)

// newCheckService is replaced in tests.
var newCheckService = func() driving.CheckService {
	return services.NewCheckService(filesystem.New(), markdown.New())
}

var checkCmd = &cobra.Command{
	Use:   "check <folder>",
	Short: "Report broken links between documents",
	Long: `Resolves every link between markdown files the way a build would, without
rendering diagrams or typesetting. Links that match no document, and
fragments that match no heading, are listed.

Exits with status 1 when any problem is found.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("start", "", "file to place first, relative to the folder")
	_ = checkCmd.MarkFlagRequired("start")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	start, _ := cmd.Flags().GetString("start")

	report, err := newCheckService().Check(cmd.Context(), driving.CheckRequest{
		Folder: expandHome(args[0]),
		Start:  expandHome(start),
	})
	if err != nil {
		return err
	}

	for _, e := range report.Unresolved {
		cmd.Printf("%s: unresolved link [%s](%s)\n", e.Source, e.Label, e.Target)
	}
	for _, e := range report.Dangling {
		cmd.Printf("%s: no heading for #%s in %s\n", e.Source, e.Fragment, e.Destination)
	}

	problems := len(report.Unresolved) + len(report.Dangling)
	cmd.Printf("checked %d links in %d documents: %s\n", report.Links, report.Documents, plural(problems, "problem"))
	if !report.OK() {
		return fmt.Errorf("%w: %s", errProblemsFound, plural(problems, "problem"))
	}
	return nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
