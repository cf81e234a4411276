package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/ephemera/internal/lifecycle"
	"github.com/roach88/ephemera/internal/manifest"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	Backend string
	Store   string
}

// NewRunCommand creates the run command: execute every task declared in a
// manifest file.
func NewRunCommand(root *RootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <manifest.cue|manifest.yaml>",
		Short: "Run every task in a manifest file",
		Long: "Run loads a CUE or YAML task manifest, manifests one bounded-lifetime\n" +
			"instance per declared task, executes each once against the selected\n" +
			"store backend, prints the results, and dissolves every instance.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifest(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Backend, "backend", "memory", "store backend (memory|sqlite|badger)")
	cmd.Flags().StringVar(&opts.Store, "store", "", "store location (file for sqlite, directory for badger)")

	return cmd
}

func runManifest(cmd *cobra.Command, root *RootOptions, opts *RunOptions, path string) error {
	specs, err := manifest.Load(path)
	if err != nil {
		return err
	}

	b, err := openBroker(opts.Backend, opts.Store)
	if err != nil {
		return err
	}
	defer b.Close()

	ctx := cmd.Context()
	results := make([]lifecycle.Result, 0, len(specs))

	for _, spec := range specs {
		mopts := []lifecycle.Option{}
		if spec.MaxLifetime > 0 {
			mopts = append(mopts, lifecycle.WithMaxLifetime(spec.MaxLifetime))
		}

		m, err := lifecycle.Manifest(
			lifecycle.Intent{Operation: spec.Operation, Operands: spec.Operands},
			mopts...,
		)
		if err != nil {
			return err
		}

		res, err := m.Execute(ctx, b)
		m.Dissolve()
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	return renderResults(cmd.OutOrStdout(), root.Format, results)
}
