// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"deuter-core/adduct"
	"deuter-core/deuteration"
	"deuter/internal/cli"
	"deuter/internal/config"
	"deuter/internal/output"
	"deuter/internal/textio"
	"deuter/internal/version"
	"deuter/internal/writers"
)

// RunContext is the deuter command. Exit codes: 0 ok, 1 calculation
// failed, 2 usage error, 3 output error.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	fs := cli.NewFlagSet("deuter")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		argv = []string{"-h"}
	}
	opts, err := cli.ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(outw)
			fs.Usage()
			return flushCode(outw, stderr, 0)
		}
		_, _ = fmt.Fprintln(stderr, err)
		fs.SetOutput(outw)
		fs.Usage()
		return flushCode(outw, stderr, 2)
	}
	if opts.Version {
		_, _ = fmt.Fprintf(outw, "deuter version %s\n", version.Version)
		return flushCode(outw, stderr, 0)
	}

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}

	calcOpts, err := calcOptions(opts, cfg)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}

	mz, signal, _, err := textio.ReadFile(opts.DataFile, textio.Options{
		Delimiter: opts.Delimiter,
		MassCol:   opts.MassCol,
		SignalCol: opts.SignalCol,
		SkipRows:  opts.SkipRows,
	})
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}

	if err := ctx.Err(); err != nil {
		return 1
	}
	res, err := deuteration.Calculate(opts.Formula, opts.Adduct, mz, signal, calcOpts)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}

	v1 := output.ToResultV1(res, opts.Plot && opts.Output == "json")
	if err := writers.WriteResult(opts.Output, outw, v1, opts.Header); err != nil {
		if writers.IsBrokenPipe(err) {
			return 0
		}
		_, _ = fmt.Fprintln(stderr, err)
		return 3
	}
	return flushCode(outw, stderr, 0)
}

// calcOptions merges flags over the config file into core pipeline options.
func calcOptions(opts cli.Options, cfg config.Config) (deuteration.Options, error) {
	cut, err := deuteration.ParseCutoff(opts.Cutoff)
	if err != nil {
		return deuteration.Options{}, err
	}
	det, err := detector(cfg)
	if err != nil {
		return deuteration.Options{}, err
	}

	out := deuteration.Options{
		Detector:           det,
		Cutoff:             cut,
		Align:              opts.Align,
		Baseline:           opts.Baseline,
		AlignWidth:         cfg.AlignWidth,
		BaselinePercentile: cfg.BaselinePercentile,
	}
	if ac, ok := cut.(deuteration.AutoCutoff); ok && ac.Fraction == 0 {
		out.Cutoff = deuteration.AutoCutoff{Fraction: cfg.CutoffFraction}
	}
	out.Deconv.FWHM = cfg.KernelFWHM
	if opts.FWHM > 0 {
		out.Deconv.FWHM = opts.FWHM
	}
	out.Deconv.WindowPad = cfg.WindowPad
	return out, nil
}

func detector(cfg config.Config) (adduct.Detector, error) {
	for _, spec := range cfg.Adducts {
		if _, err := adduct.Parse(spec); err != nil {
			return nil, fmt.Errorf("config adducts: %w", err)
		}
	}
	return adduct.BasePeakDetector{Candidates: cfg.Adducts, Tolerance: cfg.AdductTolerance}, nil
}

func flushCode(outw *bufio.Writer, stderr io.Writer, code int) int {
	if err := outw.Flush(); writers.IsBrokenPipe(err) {
		return 0
	} else if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 3
	}
	return code
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
