// cmd/deuter-server/main.go
package main

import (
	"deuter/internal/cmdutil"
	"deuter/internal/server"
)

func main() {
	cmdutil.Main(server.RunContext)
}
