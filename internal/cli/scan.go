package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/ephemera/internal/scan"
)

// NewScanCommand creates the scan command: the lexical compliance check
// over the engine's (or any) Go source tree.
func NewScanCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Scan source for disallowed API identifiers",
		Long: "Scan lexically inspects a Go source tree for disallowed identifiers:\n" +
			"recurring-timer APIs beyond the single dissolution timer, persistent\n" +
			"storage APIs, and tracking identifiers. An empty report signals\n" +
			"compliance; this is a textual heuristic, not a structural guarantee.\n" +
			"The default target is the lifecycle engine's own source.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "internal/lifecycle"
			if len(args) == 1 {
				dir = args[0]
			}
			return runScan(cmd, root, dir)
		},
	}
	return cmd
}

func runScan(cmd *cobra.Command, root *RootOptions, dir string) error {
	findings, err := scan.New().ScanFS(os.DirFS(dir))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if root.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if findings == nil {
			findings = []scan.Finding{}
		}
		if err := enc.Encode(findings); err != nil {
			return err
		}
	} else {
		if len(findings) == 0 {
			fmt.Fprintf(w, "compliant: no disallowed identifiers in %s\n", dir)
		}
		for _, f := range findings {
			fmt.Fprintln(w, f.String())
		}
	}

	if len(findings) > 0 {
		return fmt.Errorf("%d disallowed identifier(s) in %s", len(findings), dir)
	}
	return nil
}
