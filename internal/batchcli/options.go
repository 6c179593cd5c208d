// internal/batchcli/options.go
package batchcli

import (
	"errors"
	"flag"
	"fmt"

	"deuter/internal/cliutil"
	"deuter/internal/version"
)

// Options holds all CLI flags and arguments for the deuter-batch command.
type Options struct {
	ManifestFile string

	// Defaults applied to rows that don't override them.
	Adduct   string
	Cutoff   string
	Align    bool
	Baseline bool
	FWHM     float64

	ConfigFile string

	Threads int
	Sort    bool

	Output string
	Plot   bool
	Header bool // true unless --no-header

	Version bool
}

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: batch deuteration estimation from a sample manifest

Version: %s

Usage: %s [options] <manifest.tsv>

The manifest is tab-separated with one sample per line:
  id <TAB> formula <TAB> adduct <TAB> datafile [<TAB> cutoff]
'-' in the adduct or cutoff column falls back to the command-line default.
Lines starting with '#' are skipped.

`, name, version.Version, name)
		fs.PrintDefaults()
	}
	return fs
}

// ParseArgs registers and parses all flags, returns an Options struct.
// The manifest positional may appear anywhere in argv.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool

	fs.StringVar(&opt.Adduct, "adduct", "auto", "default adduct as [nM+X-Y]n+, or 'auto' [auto]")
	fs.StringVar(&opt.Cutoff, "cutoff", "auto", "default cutoff: auto | D<n> | m/z value [auto]")
	fs.BoolVar(&opt.Align, "align", false, "shift each spectrum onto its predicted base peak [false]")
	fs.BoolVar(&opt.Baseline, "baseline", false, "subtract the local baseline before fitting [false]")
	fs.Float64Var(&opt.FWHM, "fwhm", 0, "instrument peak width FWHM in Da (0 = config default) [0]")

	fs.StringVar(&opt.ConfigFile, "config", "", "YAML config file with instrument defaults")

	fs.IntVar(&opt.Threads, "threads", 0, "number of worker threads (0 = all CPUs) [0]")
	fs.BoolVar(&opt.Sort, "sort", false, "sort outputs by sample id for determinism [false]")

	fs.StringVar(&opt.Output, "output", "jsonl", "output format: json | jsonl | tsv [jsonl]")
	fs.BoolVar(&opt.Plot, "plot", false, "include measured/fitted arrays in JSON output [false]")
	noHeader := false
	fs.BoolVar(&noHeader, "no-header", false, "suppress header line in TSV output [false]")

	fs.BoolVar(&opt.Version, "v", false, "print version and exit (shorthand) [false]")
	fs.BoolVar(&opt.Version, "version", false, "print version and exit [false]")
	fs.BoolVar(&help, "h", false, "show this help message (shorthand) [false]")

	flagArgs, posArgs := cliutil.SplitFlagsAndPositionals(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		return opt, err
	}
	if help {
		fs.Usage()
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}
	opt.Header = !noHeader
	posArgs = append(posArgs, fs.Args()...)

	if len(posArgs) != 1 {
		return opt, fmt.Errorf("expected <manifest.tsv>, got %d arguments", len(posArgs))
	}
	opt.ManifestFile = posArgs[0]
	if opt.Threads < 0 {
		return opt, errors.New("--threads must be ≥ 0")
	}
	if opt.FWHM < 0 {
		return opt, errors.New("--fwhm must be ≥ 0")
	}
	if opt.Output != "json" && opt.Output != "jsonl" && opt.Output != "tsv" {
		return opt, fmt.Errorf("invalid --output %q", opt.Output)
	}
	return opt, nil
}
