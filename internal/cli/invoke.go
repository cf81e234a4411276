package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/ephemera/internal/lifecycle"
	"github.com/roach88/ephemera/internal/registry"
)

// InvokeOptions holds flags for the invoke command.
type InvokeOptions struct {
	Operation string
	Lifetime  time.Duration
	Precision int // -1 = not set
	Rounding  string
	Backend   string
	Store     string
}

// NewInvokeCommand creates the invoke command: one-shot
// manifest/execute/dissolve of a single task.
func NewInvokeCommand(root *RootOptions) *cobra.Command {
	opts := &InvokeOptions{}

	cmd := &cobra.Command{
		Use:   "invoke --op <name> <operand>...",
		Short: "Manifest a task, execute it once, dissolve it",
		Long: "Invoke manifests a single bounded-lifetime task for the named\n" +
			"operation, executes it once against the selected store backend, prints\n" +
			"the result, and dissolves the instance.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvoke(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Operation, "op", "", "operation name (add|subtract|multiply|divide)")
	cmd.Flags().DurationVar(&opts.Lifetime, "lifetime", lifecycle.DefaultMaxLifetime, "max lifetime before auto-dissolution")
	cmd.Flags().IntVar(&opts.Precision, "precision", -1, "decimal digits to round divide results to")
	cmd.Flags().StringVar(&opts.Rounding, "rounding", "", "rounding mode (half-away|half-even)")
	cmd.Flags().StringVar(&opts.Backend, "backend", "memory", "store backend (memory|sqlite|badger)")
	cmd.Flags().StringVar(&opts.Store, "store", "", "store location (file for sqlite, directory for badger)")
	cobra.CheckErr(cmd.MarkFlagRequired("op"))

	return cmd
}

func runInvoke(cmd *cobra.Command, root *RootOptions, opts *InvokeOptions, args []string) error {
	operands, err := parseOperands(args)
	if err != nil {
		return err
	}

	b, err := openBroker(opts.Backend, opts.Store)
	if err != nil {
		return err
	}
	defer b.Close()

	ctx := cmd.Context()

	// Seeding preferences is the CLI's job as store owner; the engine
	// itself holds zero write grants.
	if opts.Precision >= 0 {
		precision := opts.Precision
		raw, err := registry.Preferences{
			Precision:    &precision,
			RoundingMode: opts.Rounding,
		}.Encode()
		if err != nil {
			return err
		}
		if err := b.Write(ctx, lifecycle.DefaultPreferencesPath, raw); err != nil {
			return fmt.Errorf("seed preferences: %w", err)
		}
	}

	m, err := lifecycle.Manifest(
		lifecycle.Intent{Operation: opts.Operation, Operands: operands},
		lifecycle.WithMaxLifetime(opts.Lifetime),
	)
	if err != nil {
		return err
	}
	defer m.Dissolve()

	res, err := m.Execute(ctx, b)
	if err != nil {
		return err
	}

	return renderResult(cmd.OutOrStdout(), root.Format, res)
}

// parseOperands converts positional arguments to numbers.
func parseOperands(args []string) ([]float64, error) {
	operands := make([]float64, 0, len(args))
	for _, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid operand %q: %w", arg, err)
		}
		operands = append(operands, v)
	}
	return operands, nil
}
