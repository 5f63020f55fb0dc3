// Leveled logging, tagging diagnostic lines with "[xmk]" and fatal errors
// with "[error]" (echoed command lines carry no tag), plus a structured
// model-store dump for extra-verbose diagnostics.

package xmk

import (
	"fmt"
	"io"
	"os"

	"github.com/sanity-io/litter"
)

// Logger mirrors the verbosity levers in the CLI surface: quiet commands
// echo, verbose annotates errors with call sites, extra-verbose additionally
// dumps the parsed model store before execution begins.
type Logger struct {
	Verbose      bool
	ExtraVerbose bool
	Quiet        bool
	out          io.Writer
	errOut       io.Writer
}

// NewLogger builds a Logger writing to the given streams. Passing nil for
// either falls back to os.Stdout / os.Stderr.
func NewLogger(out, errOut io.Writer) *Logger {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Logger{out: out, errOut: errOut}
}

// Echo prints a command line before it runs, unless quiet.
func (l *Logger) Echo(cmdline string) {
	if l.Quiet {
		return
	}
	fmt.Fprintln(l.out, commandEchoPrefix()+cmdline)
}

// Debugf prints a verbose-only diagnostic line.
func (l *Logger) Debugf(format string, args ...any) {
	if !l.Verbose {
		return
	}
	fmt.Fprintf(l.errOut, "[xmk] "+format+"\n", args...)
}

// DumpModel pretty-prints the model store when extra-verbose is enabled.
// litter.Options.Dump gives a deterministic, readable rendering of the
// define/target/dependency/command tables, which is otherwise just a set
// of parallel slices and maps with no useful String() method.
func (l *Logger) DumpModel(m *Model) {
	if !l.ExtraVerbose {
		return
	}
	opts := litter.Options{
		HidePrivateFields: false,
		StripPackageNames: true,
		Compact:           false,
	}
	fmt.Fprintln(l.errOut, "[xmk] model store:")
	fmt.Fprintln(l.errOut, opts.Sdump(m))
}

// Fatal reports an *Error to stderr, tagging it with the function and line
// that raised it when verbose mode is active, and returns the process exit
// code the caller should use. Site is always captured at construction time
// (errAt/errLine); Fatal only decides whether to print it.
func (l *Logger) Fatal(err error) int {
	xe, ok := err.(*Error)
	if !ok {
		fmt.Fprintf(l.errOut, "[error] %v\n", err)
		return 1
	}
	if l.Verbose && xe.Site != "" {
		fmt.Fprintf(l.errOut, "[error] %s (%s)\n", xe.Error(), xe.Site)
	} else {
		fmt.Fprintf(l.errOut, "[error] %s\n", xe.Error())
	}
	if xe.Kind == KindCommandFailed && xe.Code != 0 {
		return xe.Code
	}
	return 1
}

func commandEchoPrefix() string {
	if isatty(os.Stdout.Fd()) {
		return "+ "
	}
	return ""
}
