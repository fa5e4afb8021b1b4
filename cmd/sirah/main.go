// Command sirah serves the site and renders portable text from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/swdunlop/portable-html-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sirah:", err)
		os.Exit(1)
	}
}
