package xmk

import (
	"strings"
	"testing"
)

func TestDefineTableFirstMatchWins(t *testing.T) {
	d := NewDefineTable()
	d.Add("CC", "cc")
	d.Add("CC", "gcc")

	val, ok := d.Lookup("CC")
	if !ok {
		t.Fatal("expected CC to be found")
	}
	if val != "cc" {
		t.Errorf("got %q, want first definition %q", val, "cc")
	}
	if d.Selected != 0 {
		t.Errorf("Selected = %d, want 0", d.Selected)
	}
}

func TestDefineTableLookupMiss(t *testing.T) {
	d := NewDefineTable()
	if _, ok := d.Lookup("NOPE"); ok {
		t.Fatal("expected lookup miss")
	}
}

func TestModelAddTargetSetsScope(t *testing.T) {
	m := NewModel()
	if m.HasScope() {
		t.Fatal("scope should be unset before any target")
	}
	if err := m.AddTarget("foo"); err != nil {
		t.Fatalf("AddTarget: %v", err)
	}
	if !m.HasScope() || m.CurrentScope != "foo" {
		t.Errorf("expected scope foo, got %q (set=%v)", m.CurrentScope, m.HasScope())
	}

	if err := m.AddTarget("bar"); err != nil {
		t.Fatalf("AddTarget: %v", err)
	}
	if m.CurrentScope != "bar" {
		t.Errorf("expected scope to move to bar, got %q", m.CurrentScope)
	}
	// Current scope is never unset on block exit: it stays at the
	// last-entered target even after both blocks close.
	if !m.HasScope() {
		t.Error("expected scope to remain set after leaving both blocks")
	}
}

func TestModelAddTargetDuplicate(t *testing.T) {
	m := NewModel()
	if err := m.AddTarget("foo"); err != nil {
		t.Fatalf("AddTarget: %v", err)
	}
	err := m.AddTarget("foo")
	requireKind(t, err, KindDuplicateTarget)

	xe := err.(*Error)
	if !strings.Contains(xe.Site, "AddTarget") {
		t.Errorf("Site = %q, want it to name AddTarget, not some generic caller", xe.Site)
	}
}

func TestModelParallelTablesStayInSync(t *testing.T) {
	m := NewModel()
	m.AddTarget("a")
	m.AddDependency("a.c")
	m.AddCommand("cc -c a.c")
	m.AddTarget("b")

	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(m.Deps) != len(m.Targets) || len(m.Commands) != len(m.Targets) {
		t.Fatalf("tables out of sync: targets=%d deps=%d commands=%d", len(m.Targets), len(m.Deps), len(m.Commands))
	}
}

func TestModelDependencyIndexing(t *testing.T) {
	m := NewModel()
	m.AddTarget("foo")
	m.AddDependency("foo.c")
	m.AddDependency("foo.h")

	dep, err := m.Dependency(1)
	if err != nil {
		t.Fatalf("Dependency(1): %v", err)
	}
	if dep != "foo.h" {
		t.Errorf("got %q, want foo.h", dep)
	}

	_, err = m.Dependency(2)
	requireKind(t, err, KindIndexOutOfRange)
}

func TestModelScopeViolationWithoutTarget(t *testing.T) {
	m := NewModel()
	err := m.AddDependency("x")
	requireKind(t, err, KindScopeViolation)
}
