// Package main exports a binary room map as a YAML overlay file of geometry
// overrides, for editing rooms without a map editor.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cory-johannsen/castle/internal/importer"
)

func main() {
	format := flag.String("format", "ran", "source format: ran")
	source := flag.String("source", "", "path to the source map file")
	output := flag.String("output", "", "path to the output overlay YAML file")
	rooms := flag.Int("rooms", 0, "number of rooms to read; 0 derives it from the file size")
	flag.Parse()

	if *source == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "usage: import-content [-format ran] -source <file> -output <file> [-rooms <n>]")
		os.Exit(1)
	}

	var src importer.Source
	switch *format {
	case "ran":
		src = importer.NewMapSource(*rooms)
	default:
		fmt.Fprintf(os.Stderr, "unknown format %q (supported: ran)\n", *format)
		os.Exit(1)
	}

	start := time.Now()
	if err := importer.New(src, os.Stdout).Run(*source, *output); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("import complete in %s\n", time.Since(start).Round(time.Millisecond))
}
