// cmd/deuter/main.go
package main

import (
	"deuter/internal/app"
	"deuter/internal/cmdutil"
)

func main() {
	cmdutil.Main(app.RunContext)
}
