// Command pelagia combines a folder of markdown files into one document.
package main

import (
	"os"

	"github.com/custodia-labs/pelagia/internal/adapters/driving/cli"
)

func main() {
	os.Exit(cli.Execute())
}
