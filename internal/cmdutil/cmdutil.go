// internal/cmdutil/cmdutil.go
// Shared process scaffolding for the deuter binaries.
package cmdutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Main wires a command's RunContext to the process: signal-aware context,
// stdio, and exit code. Interrupted runs that report success exit 130.
func Main(run func(context.Context, []string, io.Writer, io.Writer) int) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if ctx.Err() != nil && code == 0 {
		code = 130
	}

	stop()
	os.Exit(code)
}

func Warnf(dst io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintf(dst, "WARN: "+format+"\n", a...)
}
