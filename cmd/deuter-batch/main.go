// cmd/deuter-batch/main.go
package main

import (
	"deuter/internal/batchapp"
	"deuter/internal/cmdutil"
)

func main() {
	cmdutil.Main(batchapp.RunContext)
}
