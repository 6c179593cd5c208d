// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"

	"deuter/internal/cliutil"
	"deuter/internal/version"
)

// Options holds all CLI flags and arguments for the deuter command.
type Options struct {
	// Positionals
	Formula  string
	DataFile string

	// Calculation
	Adduct   string
	Cutoff   string
	Align    bool
	Baseline bool
	FWHM     float64

	// Spectrum file parsing
	Delimiter string
	MassCol   int
	SignalCol int
	SkipRows  int

	// Config
	ConfigFile string

	// Output
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
			`%s: deuteration estimation from mass spectra

Version: %s

Usage: %s [options] <formula> <datafile>

  <formula>   molecular formula with D for deuterium (e.g. C2D6OS)
  <datafile>  delimited m/z / signal text file, or '-' for stdin

`, name, version.Version, name)
		fs.PrintDefaults()
	}
	return fs
}

// ParseArgs registers and parses all flags, returns an Options struct.
// Positionals may appear anywhere in argv.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool

	// Calculation
	fs.StringVar(&opt.Adduct, "adduct", "auto", "adduct as [nM+X-Y]n+, or 'auto' to detect [auto]")
	fs.StringVar(&opt.Cutoff, "cutoff", "auto", "deuteration cutoff: auto | D<n> | m/z value [auto]")
	fs.BoolVar(&opt.Align, "align", false, "shift spectrum onto the predicted base peak [false]")
	fs.BoolVar(&opt.Baseline, "baseline", false, "subtract the local baseline before fitting [false]")
	fs.Float64Var(&opt.FWHM, "fwhm", 0, "instrument peak width FWHM in Da (0 = config default) [0]")

	// Spectrum file parsing
	fs.StringVar(&opt.Delimiter, "delimiter", "", "column delimiter (default: guess)")
	fs.IntVar(&opt.MassCol, "mass-col", -1, "0-based m/z column (-1 = guess) [-1]")
	fs.IntVar(&opt.SignalCol, "signal-col", -1, "0-based signal column (-1 = guess) [-1]")
	fs.IntVar(&opt.SkipRows, "skip-rows", -1, "header rows to skip (-1 = guess) [-1]")

	fs.StringVar(&opt.ConfigFile, "config", "", "YAML config file with instrument defaults")

	// Output
	fs.StringVar(&opt.Output, "output", "text", "output format: text | tsv | json [text]")
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

	// Validation
	if len(posArgs) != 2 {
		return opt, fmt.Errorf("expected <formula> <datafile>, got %d arguments", len(posArgs))
	}
	opt.Formula = posArgs[0]
	opt.DataFile = posArgs[1]
	if opt.Formula == "" {
		return opt, errors.New("formula must not be empty")
	}
	if opt.FWHM < 0 {
		return opt, errors.New("--fwhm must be ≥ 0")
	}
	if opt.MassCol < -1 || opt.SignalCol < -1 {
		return opt, errors.New("--mass-col and --signal-col must be ≥ -1")
	}
	if opt.MassCol >= 0 && opt.MassCol == opt.SignalCol {
		return opt, errors.New("--mass-col and --signal-col must differ")
	}
	if opt.Output != "text" && opt.Output != "tsv" && opt.Output != "json" {
		return opt, fmt.Errorf("invalid --output %q", opt.Output)
	}
	return opt, nil
}
