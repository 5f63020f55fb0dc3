package xmk

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func parseSource(src string) (*Model, error) {
	buf := &Buffer{}
	buf.LoadString("<test>", src)
	model := NewModel()
	lex := NewLexer(buf, model)
	p := NewParser(lex, model)
	if err := p.Parse(); err != nil {
		return model, err
	}
	return model, nil
}

func TestParseMinimalBuild(t *testing.T) {
	src := `
build out
target out { depends on { in } created using { cp in out } }
`
	model, err := parseSource(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if model.BuildTarget != "out" {
		t.Errorf("BuildTarget = %q, want out", model.BuildTarget)
	}
	if diff := cmp.Diff([]string{"out"}, model.Targets); diff != "" {
		t.Errorf("Targets mismatch (-want +got):\n%s", diff)
	}
	idx, ok := model.TargetIndex("out")
	if !ok {
		t.Fatal("target out not registered")
	}
	if diff := cmp.Diff([]string{"in"}, model.Deps[idx]); diff != "" {
		t.Errorf("Deps mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"cp in out"}, model.Commands[idx]); diff != "" {
		t.Errorf("Commands mismatch (-want +got):\n%s", diff)
	}
}

func TestParseChainedDependency(t *testing.T) {
	src := `
build app
target app { depends on { app.o } created using { ld -o app app.o } }
target app.o { depends on { app.c } created using { cc -c app.c -o app.o } }
`
	model, err := parseSource(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if diff := cmp.Diff([]string{"app", "app.o"}, model.Targets); diff != "" {
		t.Errorf("Targets mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDefineExpansionAtUse(t *testing.T) {
	src := `
define CC as cc
define FLAGS as -O2
build foo
target foo { depends on { foo.c } created using { $CC $FLAGS -o $(target) $(dep[0]) } }
`
	model, err := parseSource(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	idx, _ := model.TargetIndex("foo")
	want := []string{"cc -O2 -o foo foo.c"}
	if diff := cmp.Diff(want, model.Commands[idx]); diff != "" {
		t.Errorf("Commands mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDefineWithListValue(t *testing.T) {
	src := `
define FLAGS as {
	-O2
	-Wall
}
build foo
target foo { depends on { foo.c } created using { cc $FLAGS -o foo foo.c } }
`
	model, err := parseSource(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	idx, _ := model.TargetIndex("foo")
	want := []string{"cc -O2 -Wall -o foo foo.c"}
	if diff := cmp.Diff(want, model.Commands[idx]); diff != "" {
		t.Errorf("Commands mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMultiEntryListOnNewlines(t *testing.T) {
	src := `
build out
target out {
	depends on {
		a.c
		b.c
	}
	created using {
		cc -c a.c
		cc -c b.c
	}
}
`
	model, err := parseSource(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	idx, _ := model.TargetIndex("out")
	if diff := cmp.Diff([]string{"a.c", "b.c"}, model.Deps[idx]); diff != "" {
		t.Errorf("Deps mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"cc -c a.c", "cc -c b.c"}, model.Commands[idx]); diff != "" {
		t.Errorf("Commands mismatch (-want +got):\n%s", diff)
	}
}

// TestParseDefineStartingNewListEntryIsNotConcatenated guards against a
// macro invocation losing its newline-crossed status across expansion:
// a define used as the first token on its own line inside a list must
// start a new entry, not continue the previous line's entry.
func TestParseDefineStartingNewListEntryIsNotConcatenated(t *testing.T) {
	src := `
define SECOND as "cc -c b.c"
build out
target out {
	depends on { a.c b.c }
	created using {
		cc -c a.c
		$SECOND
	}
}
`
	model, err := parseSource(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	idx, _ := model.TargetIndex("out")
	want := []string{"cc -c a.c", "cc -c b.c"}
	if diff := cmp.Diff(want, model.Commands[idx]); diff != "" {
		t.Errorf("Commands mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDuplicateTarget(t *testing.T) {
	src := `
build out
target out { depends on { a } created using { cmd } }
target out { depends on { b } created using { cmd2 } }
`
	_, err := parseSource(src)
	requireKind(t, err, KindDuplicateTarget)
}

func TestParseDuplicateBuild(t *testing.T) {
	src := `
build out
build other
target out { depends on { a } created using { cmd } }
`
	_, err := parseSource(src)
	requireKind(t, err, KindDuplicateBuild)
}

func TestParseQuotedAndConcatenatedListEntries(t *testing.T) {
	src := `
build out
target out { depends on { in } created using { echo "hello world" extra } }
`
	model, err := parseSource(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	idx, _ := model.TargetIndex("out")
	if diff := cmp.Diff([]string{`echo hello world extra`}, model.Commands[idx]); diff != "" {
		t.Errorf("Commands mismatch (-want +got):\n%s", diff)
	}
}

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected a %s error, got none", kind)
	}
	xe, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *xmk.Error, got %T (%v)", err, err)
	}
	if xe.Kind != kind {
		t.Errorf("got kind %s, want %s", xe.Kind, kind)
	}
}
