// internal/textio/reader.go
// Delimited mass-spectrum text files: reading plus best-effort guessing of
// delimiter, header rows, and mass/signal columns. Export formats from
// vendor software vary wildly, so everything guessed here can be overridden
// from the command line.

package textio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Options locates the two numeric columns in a delimited file.
// A negative column or SkipRows, or an empty delimiter, means "guess".
type Options struct {
	Delimiter string
	MassCol   int
	SignalCol int
	SkipRows  int
}

// Unset is the Options value with everything left to the guesser.
var Unset = Options{Delimiter: "", MassCol: -1, SignalCol: -1, SkipRows: -1}

var delimiters = []string{";", ",", "\t", " "}

var massHints = []string{"mass", "m/z", "thompson"}
var signalHints = []string{"signal", "intensity", "count", "cps"}

// Guess inspects up to the first 64 lines and fills any unset option.
// Unguessable fields fall back to delimiter "\t", columns (0, 1), no skip.
func Guess(r io.Reader, opt Options) Options {
	sc := bufio.NewScanner(r)
	var head []string
	for len(head) < 64 && sc.Scan() {
		head = append(head, sc.Text())
	}
	if opt.Delimiter == "" {
		opt.Delimiter = guessDelimiter(head)
	}
	if opt.SkipRows < 0 {
		opt.SkipRows = guessSkipRows(head, opt.Delimiter)
	}
	if opt.MassCol < 0 || opt.SignalCol < 0 {
		mass, sig := guessColumns(head, opt.Delimiter, opt.SkipRows)
		if opt.MassCol < 0 {
			opt.MassCol = mass
		}
		if opt.SignalCol < 0 {
			opt.SignalCol = sig
		}
	}
	return opt
}

// guessDelimiter picks the first delimiter present in every data line.
func guessDelimiter(head []string) string {
	for _, delim := range delimiters {
		all := true
		seen := false
		for _, line := range head {
			if line == "" || line[0] < '0' || line[0] > '9' {
				continue
			}
			seen = true
			if !strings.Contains(line, delim) {
				all = false
				break
			}
		}
		if seen && all {
			return delim
		}
	}
	return "\t"
}

// guessSkipRows counts header lines until one ends in a parseable number.
func guessSkipRows(head []string, delim string) int {
	for i, line := range head {
		fields := splitLine(line, delim)
		if len(fields) == 0 {
			continue
		}
		if _, err := strconv.ParseFloat(fields[len(fields)-1], 64); err == nil {
			return i
		}
	}
	return 0
}

// guessColumns searches the last header line for mass/signal column names.
func guessColumns(head []string, delim string, skip int) (int, int) {
	mass, sig := 0, 1
	if skip < 1 || skip > len(head) {
		return mass, sig
	}
	header := splitLine(head[skip-1], delim)
	foundMass := false
	for i, text := range header {
		lower := strings.ToLower(text)
		if !foundMass && containsAny(lower, massHints) {
			mass = i
			foundMass = true
			continue
		}
		if containsAny(lower, signalHints) {
			sig = i
		}
	}
	return mass, sig
}

func containsAny(s string, hints []string) bool {
	for _, h := range hints {
		if strings.Contains(s, h) {
			return true
		}
	}
	return false
}

// splitLine splits on the delimiter; a space delimiter collapses runs.
func splitLine(line, delim string) []string {
	if delim == " " {
		return strings.Fields(line)
	}
	return strings.Split(strings.TrimRight(line, "\r\n"), delim)
}

// Read parses the two numeric columns. Options must be fully resolved
// (use Guess first, or ReadFile for the combined path).
func Read(r io.Reader, opt Options) (mz, signal []float64, err error) {
	if opt.MassCol == opt.SignalCol {
		return nil, nil, fmt.Errorf("textio: mass and signal columns are both %d", opt.MassCol)
	}
	need := opt.MassCol
	if opt.SignalCol > need {
		need = opt.SignalCol
	}

	sc := bufio.NewScanner(r)
	ln := 0
	for sc.Scan() {
		ln++
		if ln <= opt.SkipRows {
			continue
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := splitLine(line, opt.Delimiter)
		if len(fields) <= need {
			return nil, nil, fmt.Errorf("textio: line %d has %d columns, need %d", ln, len(fields), need+1)
		}
		m, err := strconv.ParseFloat(strings.TrimSpace(fields[opt.MassCol]), 64)
		if err != nil {
			return nil, nil, fmt.Errorf("textio: line %d: bad mass %q", ln, fields[opt.MassCol])
		}
		s, err := strconv.ParseFloat(strings.TrimSpace(fields[opt.SignalCol]), 64)
		if err != nil {
			return nil, nil, fmt.Errorf("textio: line %d: bad signal %q", ln, fields[opt.SignalCol])
		}
		mz = append(mz, m)
		signal = append(signal, s)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	if len(mz) == 0 {
		return nil, nil, fmt.Errorf("textio: no data rows")
	}
	return mz, signal, nil
}

// ReadFile guesses any unset options from the head of the file, then reads
// it. "-" reads from stdin (no guessing, the stream cannot be rewound).
func ReadFile(path string, opt Options) (mz, signal []float64, resolved Options, err error) {
	if path == "-" {
		if opt.Delimiter == "" {
			opt.Delimiter = "\t"
		}
		if opt.MassCol < 0 {
			opt.MassCol = 0
		}
		if opt.SignalCol < 0 {
			opt.SignalCol = 1
		}
		if opt.SkipRows < 0 {
			opt.SkipRows = 0
		}
		mz, signal, err = Read(os.Stdin, opt)
		return mz, signal, opt, err
	}

	if opt.Delimiter == "" || opt.MassCol < 0 || opt.SignalCol < 0 || opt.SkipRows < 0 {
		fh, err := os.Open(path)
		if err != nil {
			return nil, nil, opt, err
		}
		opt = Guess(fh, opt)
		_ = fh.Close()
	}

	fh, err := os.Open(path)
	if err != nil {
		return nil, nil, opt, err
	}
	defer func() { _ = fh.Close() }()
	mz, signal, err = Read(fh, opt)
	return mz, signal, opt, err
}
