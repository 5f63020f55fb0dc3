// Command xmk is the CLI entry point: flag parsing, source loading, and
// wiring the buffer → lexer → parser → model → resolver pipeline.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ctSkennerton/xmk/internal/xmk"
)

var (
	inputPath    = flag.String("f", "default.xmk", "Use `path` as the input file.")
	preprocess   = flag.Bool("E", false, "Preprocess only; emit the expanded source and exit.")
	verbose      = flag.Bool("v", false, "Verbose logging.")
	extraVerbose = flag.Bool("vv", false, "Extra-verbose logging; also dumps the model store.")
	quiet        = flag.Bool("q", false, "Suppress command echo.")
)

func main() {
	flag.Usage = usage
	for _, arg := range os.Args[1:] {
		if arg == "--help" || arg == "-help" {
			usage()
			os.Exit(0)
		}
	}
	flag.Parse()

	log := xmk.NewLogger(os.Stdout, os.Stderr)
	log.Verbose = *verbose || *extraVerbose
	log.ExtraVerbose = *extraVerbose
	log.Quiet = *quiet

	os.Exit(run(log))
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: xmk [--help] [-E] [-v] [-vv] [-q] [-f path]")
	flag.PrintDefaults()
}

func run(log *xmk.Logger) int {
	buf := &xmk.Buffer{}
	if err := buf.Load(*inputPath); err != nil {
		return log.Fatal(err)
	}

	model := xmk.NewModel()
	lexer := xmk.NewLexer(buf, model)
	parser := xmk.NewParser(lexer, model)

	if err := parser.Parse(); err != nil {
		return log.Fatal(err)
	}

	// Preprocessing always happens as a side effect of parsing (macro
	// expansion rewrites buf in place); -E dumps the result and exits
	// before the missing-build check below.
	if *preprocess {
		fmt.Println(buf.String())
		return 0
	}

	log.DumpModel(model)

	resolver := xmk.NewResolver(model, log, *quiet)
	if err := resolver.Build(); err != nil {
		return log.Fatal(err)
	}

	return 0
}
