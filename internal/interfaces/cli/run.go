package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/minorchanges/internal/application/variants"
	"github.com/turtacn/minorchanges/internal/domain/minorchanges"
	"github.com/turtacn/minorchanges/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/minorchanges/pkg/errors"
)

type runOptions struct {
	rules       []string
	maxVariants int
	format      string
	writeParent bool
	sinks       []string
	workers     int
	output      string
	quiet       bool
}

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [file|-]",
		Short: "Generate variants for every molecule of a SMILES file",
		Long: "Reads one molecule per line (SMILES, then an optional name) from the\n" +
			"given file or stdin and writes the variants of each molecule to the\n" +
			"configured sinks.  A run report goes to stderr.",
		Example: `  minorchanges run molecules.smi
  cat molecules.smi | minorchanges run --rules insert_ch2,remove_ch2 --max-variants 50
  minorchanges run molecules.smi --format json --sinks stdout,postgres`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.rules, "rules", nil, "rule names to apply (default from config)")
	f.IntVar(&opts.maxVariants, "max-variants", 0, "maximum variants per molecule, 0 for unlimited")
	f.StringVar(&opts.format, "format", "", "output format: smiles or json")
	f.BoolVar(&opts.writeParent, "write-parent", false, "write each parent before its variants")
	f.StringSliceVar(&opts.sinks, "sinks", nil, "output sinks: stdout, postgres, kafka")
	f.IntVarP(&opts.workers, "workers", "w", 0, "molecules processed concurrently")
	f.StringVarP(&opts.output, "output", "o", "", "write stdout-sink variants to this file instead")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress the run report")
	return cmd
}

func runRun(cmd *cobra.Command, args []string, opts *runOptions) error {
	cc, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg := cc.Config
	f := cmd.Flags()
	if f.Changed("rules") {
		cfg.Engine.Rules = opts.rules
	}
	if f.Changed("max-variants") {
		cfg.Engine.MaxVariants = opts.maxVariants
	}
	if f.Changed("format") {
		cfg.Output.Format = opts.format
	}
	if f.Changed("write-parent") {
		cfg.Output.WriteParent = opts.writeParent
	}
	if f.Changed("sinks") {
		cfg.Output.Sinks = opts.sinks
	}
	if f.Changed("workers") {
		cfg.Worker.Concurrency = opts.workers
	}

	in, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer in.Close()

	out := cmd.OutOrStdout()
	if opts.output != "" {
		file, err := os.Create(opts.output)
		if err != nil {
			return errors.Wrap(err, errors.CodeConfigInvalid, "cannot create output file").WithDetail(opts.output)
		}
		defer file.Close()
		out = file
	}

	ctx := cmd.Context()
	a := newApp(cc)
	defer a.Close()

	engOpts, libs, err := a.engineInputs(ctx)
	if err != nil {
		return err
	}
	eng, err := minorchanges.NewEngine(engOpts, libs.Libraries, cc.Logger)
	if err != nil {
		return err
	}
	metrics, _, err := a.metrics()
	if err != nil {
		return err
	}
	// The cache comes first so that migrations can lock on Redis.
	cache, err := a.cache(ctx, metrics)
	if err != nil {
		return err
	}
	sinks, err := a.sinks(ctx, out)
	if err != nil {
		return err
	}

	runnerOpts := []variants.RunnerOption{
		variants.WithSinks(sinks...),
		variants.WithMetrics(metrics),
		variants.WithConcurrency(cfg.Worker.Concurrency, cfg.Worker.QueueDepth),
	}
	if cache != nil {
		runnerOpts = append(runnerOpts, variants.WithCache(cache))
	}

	fingerprint := variants.Fingerprint(engOpts, libs.Digest)
	runner := variants.NewRunner(eng, fingerprint, cc.Logger, runnerOpts...)
	res, err := runner.Run(ctx, in)
	if err != nil {
		return err
	}
	cc.Logger.Info("run finished",
		logging.String("run_id", string(res.RunID)),
		logging.Int("molecules", res.MoleculesRead),
		logging.Int("variants", res.VariantsGenerated),
		logging.Duration("duration", res.Duration))
	if opts.quiet {
		return nil
	}
	return res.Report(cmd.ErrOrStderr())
}

// openInput opens the named file, or stdin for "-" or no argument.
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	file, err := os.Open(args[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNotFound, "cannot open input").WithDetail(args[0])
	}
	return file, nil
}

//Personal.AI order the ending
