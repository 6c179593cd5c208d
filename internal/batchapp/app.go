// internal/batchapp/app.go
// deuter-batch: run the calculation pipeline over every sample in a
// manifest, fanned out across a worker pool.
package batchapp

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"runtime"
	"sort"
	"sync"

	"deuter-core/adduct"
	"deuter-core/deuteration"
	"deuter/internal/batchcli"
	"deuter/internal/cmdutil"
	"deuter/internal/config"
	"deuter/internal/jsonutil"
	"deuter/internal/output"
	"deuter/internal/textio"
	"deuter/internal/version"
	"deuter/internal/writers"
	"deuter/pkg/api"
)

// RunContext is the deuter-batch command. Exit codes: 0 all samples ok,
// 1 at least one sample failed, 2 usage error, 3 output error.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	fs := batchcli.NewFlagSet("deuter-batch")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		argv = []string{"-h"}
	}
	opts, err := batchcli.ParseArgs(fs, argv)
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
		_, _ = fmt.Fprintf(outw, "deuter-batch version %s\n", version.Version)
		return flushCode(outw, stderr, 0)
	}

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}
	entries, err := batchcli.LoadManifest(opts.ManifestFile)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}
	// Per-row overrides are validated up front so a typo in row 40 does not
	// cost 39 calculations.
	for _, e := range entries {
		if _, err := rowCutoff(e, opts, cfg); err != nil {
			_, _ = fmt.Fprintf(stderr, "%s: sample %s: %v\n", opts.ManifestFile, e.ID, err)
			return 2
		}
	}

	results, failed := runPool(ctx, entries, opts, cfg, stderr)
	if opts.Sort {
		sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	}

	if err := writeAll(outw, results, opts); err != nil {
		if writers.IsBrokenPipe(err) {
			return 0
		}
		_, _ = fmt.Fprintln(stderr, err)
		return 3
	}
	code := 0
	if failed {
		code = 1
	}
	return flushCode(outw, stderr, code)
}

func runPool(ctx context.Context, entries []batchcli.Entry, opts batchcli.Options, cfg config.Config, stderr io.Writer) ([]api.ResultV1, bool) {
	threads := opts.Threads
	if threads < 1 {
		threads = runtime.NumCPU()
	}
	if threads > len(entries) {
		threads = len(entries)
	}

	jobs := make(chan batchcli.Entry, threads)
	type outcome struct {
		res api.ResultV1
		err error
		id  string
	}
	outs := make(chan outcome, threads)

	var wg sync.WaitGroup
	wg.Add(threads)
	for w := 0; w < threads; w++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case e, ok := <-jobs:
					if !ok {
						return
					}
					res, err := runOne(e, opts, cfg)
					select {
					case outs <- outcome{res: res, err: err, id: e.ID}:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	go func() {
	feed:
		for _, e := range entries {
			select {
			case jobs <- e:
			case <-ctx.Done():
				break feed
			}
		}
		close(jobs)
		wg.Wait()
		close(outs)
	}()

	var (
		results []api.ResultV1
		failed  bool
	)
	for o := range outs {
		if o.err != nil {
			failed = true
			cmdutil.Warnf(stderr, "sample %s: %v", o.id, o.err)
			continue
		}
		results = append(results, o.res)
	}
	if ctx.Err() != nil {
		failed = true
	}
	return results, failed
}

func runOne(e batchcli.Entry, opts batchcli.Options, cfg config.Config) (api.ResultV1, error) {
	mz, signal, _, err := textio.ReadFile(e.File, textio.Unset)
	if err != nil {
		return api.ResultV1{}, err
	}

	cut, err := rowCutoff(e, opts, cfg)
	if err != nil {
		return api.ResultV1{}, err
	}
	calcOpts := deuteration.Options{
		Detector:           adduct.BasePeakDetector{Candidates: cfg.Adducts, Tolerance: cfg.AdductTolerance},
		Cutoff:             cut,
		Align:              opts.Align,
		Baseline:           opts.Baseline,
		AlignWidth:         cfg.AlignWidth,
		BaselinePercentile: cfg.BaselinePercentile,
	}
	calcOpts.Deconv.FWHM = cfg.KernelFWHM
	if opts.FWHM > 0 {
		calcOpts.Deconv.FWHM = opts.FWHM
	}
	calcOpts.Deconv.WindowPad = cfg.WindowPad

	spec := e.Adduct
	if spec == "" || spec == "-" {
		spec = opts.Adduct
	}
	res, err := deuteration.Calculate(e.Formula, spec, mz, signal, calcOpts)
	if err != nil {
		return api.ResultV1{}, err
	}

	v1 := output.ToResultV1(res, opts.Plot && opts.Output != "tsv")
	v1.ID = e.ID
	return v1, nil
}

// rowCutoff resolves the cutoff for one row: row value, then the
// command-line default, then auto with the configured fraction.
func rowCutoff(e batchcli.Entry, opts batchcli.Options, cfg config.Config) (deuteration.CutoffStrategy, error) {
	spec := e.Cutoff
	if spec == "" || spec == "-" {
		spec = opts.Cutoff
	}
	cut, err := deuteration.ParseCutoff(spec)
	if err != nil {
		return nil, err
	}
	if ac, ok := cut.(deuteration.AutoCutoff); ok && ac.Fraction == 0 {
		cut = deuteration.AutoCutoff{Fraction: cfg.CutoffFraction}
	}
	return cut, nil
}

func writeAll(w io.Writer, results []api.ResultV1, opts batchcli.Options) error {
	switch opts.Output {
	case "json":
		return output.WriteJSONList(w, results)
	case "jsonl":
		for _, r := range results {
			if err := jsonutil.EncodeLine(w, r); err != nil {
				return err
			}
		}
		return nil
	case "tsv":
		header := opts.Header
		for _, r := range results {
			if err := output.WriteBatchTSV(w, r, header); err != nil {
				return err
			}
			header = false
		}
		return nil
	default:
		return fmt.Errorf("unsupported output %q", opts.Output)
	}
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
