package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctSkennerton/xmk/internal/xmk"
)

// TestPreprocessOnlyBypassesMissingBuildCheck: -E on a program with no
// build directive exits 0 and prints the expanded source; only a
// non-preprocess run without a build directive is a missing_build fatal
// error.
func TestPreprocessOnlyBypassesMissingBuildCheck(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "no_build.xmk")
	src := "target x { depends on { y } created using { echo x } }\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}

	origInput, origPreprocess, origQuiet := *inputPath, *preprocess, *quiet
	defer func() {
		*inputPath, *preprocess, *quiet = origInput, origPreprocess, origQuiet
	}()
	*inputPath = path
	*quiet = true

	*preprocess = true
	var out bytes.Buffer
	log := xmk.NewLogger(&out, &out)
	if code := run(log); code != 0 {
		t.Fatalf("expected exit 0 under -E with no build directive, got %d (log: %s)", code, out.String())
	}

	*preprocess = false
	out.Reset()
	if code := run(log); code != 1 {
		t.Fatalf("expected exit 1 for missing build directive, got %d (log: %s)", code, out.String())
	}
	if !strings.Contains(out.String(), "missing_build") {
		t.Errorf("expected a missing_build error, got %q", out.String())
	}
}
