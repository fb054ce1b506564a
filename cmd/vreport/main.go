// # cmd/vreport/main.go
package main

import (
	"os"

	"vreport/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
