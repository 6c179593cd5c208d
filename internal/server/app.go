// internal/server/app.go
package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"

	"deuter/internal/config"
	"deuter/internal/version"
)

// RunContext is the deuter-server command. It blocks until the context is
// cancelled or the listener fails. Exit codes: 0 clean shutdown, 1 listener
// failure, 2 usage error.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("deuter-server", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			"deuter-server: HTTP API for deuteration estimation\n\nVersion: %s\n\nUsage of deuter-server:\n",
			version.Version)
		fs.PrintDefaults()
	}

	addr := fs.String("addr", ":8080", "listen address [:8080]")
	cfgPath := fs.String("config", "", "YAML config file with instrument defaults")
	showVersion := fs.Bool("version", false, "print version and exit [false]")

	if err := fs.Parse(argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *showVersion {
		_, _ = fmt.Fprintf(stdout, "deuter-server version %s\n", version.Version)
		return 0
	}
	if fs.NArg() != 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		return 2
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}

	_, _ = fmt.Fprintf(stderr, "deuter-server %s listening on %s\n", version.Version, *addr)
	if err := New(cfg).ListenAndServe(ctx, *addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
