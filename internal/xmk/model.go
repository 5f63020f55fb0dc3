// Model store: tables of targets, per-target dependency lists, per-target
// command lists, and defines. Dependency and command tables are kept
// index-parallel to the target table: table lengths track target count
// one to one.

package xmk

// Define is one name/value pair from a `define X as Y` directive. Value is
// expanded lazily, at use site, never at definition time.
type Define struct {
	Name  string
	Value string
}

// DefineTable holds defines in insertion order. Lookup is linear and the
// most recent successful Lookup records its index in Selected, mirroring
// the original implementation's defines.selected_i (set by is_define and
// read back by expand_define immediately after).
type DefineTable struct {
	entries  []Define
	Selected int // index of the most recently looked-up define, -1 if none yet
}

// NewDefineTable returns an empty define table.
func NewDefineTable() *DefineTable {
	return &DefineTable{Selected: -1}
}

// Add appends a new name/value pair. Names are not required to be unique;
// Lookup scans forward and returns on the first match, so when a name is
// defined more than once the FIRST definition is the one used and later
// ones are never seen by lookup.
func (d *DefineTable) Add(name, value string) {
	d.entries = append(d.entries, Define{Name: name, Value: value})
}

// Lookup performs the linear scan used by macro expansion. On success it
// records the matching index in Selected, matching the original
// implementation's is_define/selected_i coupling.
func (d *DefineTable) Lookup(name string) (string, bool) {
	for i, e := range d.entries {
		if e.Name == name {
			d.Selected = i
			return e.Value, true
		}
	}
	return "", false
}

// Len reports how many defines are currently stored.
func (d *DefineTable) Len() int {
	return len(d.entries)
}

// All returns the defines in insertion order, for diagnostics and tests.
func (d *DefineTable) All() []Define {
	return d.entries
}

// Model is the single process-global store populated during parsing and
// read only during execution.
type Model struct {
	Defines *DefineTable

	// Targets is the ordered, unique target name sequence; a name's
	// position here is its stable index into Deps and Commands.
	Targets []string
	index   map[string]int

	// Deps and Commands are parallel to Targets: Deps[i] is the ordered
	// dependency list for Targets[i], Commands[i] its ordered command
	// list. len(Deps) == len(Commands) == len(Targets) holds once a
	// target's block has been entered.
	Deps     [][]string
	Commands [][]string

	// BuildTarget is the sole top-level target name, set exactly once by
	// a `build …` directive.
	BuildTarget    string
	buildTargetSet bool

	// CurrentScope is the name of the target whose `{ … }` block parsing
	// is currently inside; it drives $(target*) and $(dep[N]). It is set
	// on entering each target block and is never unset on exit — the
	// last-entered target's name remains visible afterward.
	CurrentScope string
	scopeSet     bool
}

// NewModel returns an empty, ready-to-populate model store.
func NewModel() *Model {
	return &Model{
		Defines: NewDefineTable(),
		index:   make(map[string]int),
	}
}

// TargetIndex returns a target's stable index and whether it is known.
func (m *Model) TargetIndex(name string) (int, bool) {
	i, ok := m.index[name]
	return i, ok
}

// HasScope reports whether a target block is currently (or has ever been)
// open, gating $(target*) and $(dep[N]) substitution.
func (m *Model) HasScope() bool {
	return m.scopeSet
}

// AddTarget registers a new target, initializing its dependency and
// command slots to empty, and sets it as the current scope. Registering
// the same name twice is a duplicate_target fatal error.
func (m *Model) AddTarget(name string) error {
	if _, exists := m.index[name]; exists {
		return errAt(KindDuplicateTarget, "target %q has already been defined", name)
	}
	m.index[name] = len(m.Targets)
	m.Targets = append(m.Targets, name)
	m.Deps = append(m.Deps, nil)
	m.Commands = append(m.Commands, nil)
	m.CurrentScope = name
	m.scopeSet = true
	return nil
}

// SetBuildTarget records the sole `build …` directive's target. A second
// call is a duplicate_build fatal error.
func (m *Model) SetBuildTarget(name string) error {
	if m.buildTargetSet {
		return errAt(KindDuplicateBuild, "only one build target can be defined, already have %q", m.BuildTarget)
	}
	m.BuildTarget = name
	m.buildTargetSet = true
	return nil
}

// AddDependency appends dep to the current scope's dependency list.
func (m *Model) AddDependency(dep string) error {
	i, err := m.requireScope()
	if err != nil {
		return err
	}
	m.Deps[i] = append(m.Deps[i], dep)
	return nil
}

// AddCommand appends cmd to the current scope's command list.
func (m *Model) AddCommand(cmd string) error {
	i, err := m.requireScope()
	if err != nil {
		return err
	}
	m.Commands[i] = append(m.Commands[i], cmd)
	return nil
}

func (m *Model) requireScope() (int, error) {
	if !m.scopeSet {
		return 0, errAt(KindScopeViolation, "no target scope is currently open")
	}
	i, ok := m.index[m.CurrentScope]
	if !ok {
		return 0, errAt(KindScopeViolation, "current scope %q is not a known target", m.CurrentScope)
	}
	return i, nil
}

// Dependency returns the N-th dependency of the current scope, used by
// the $(dep[N]) built-in. N must be non-negative and strictly less than
// the dependency count.
func (m *Model) Dependency(n int) (string, error) {
	i, err := m.requireScope()
	if err != nil {
		return "", err
	}
	deps := m.Deps[i]
	if len(deps) == 0 {
		return "", errAt(KindIndexOutOfRange, "no dependencies are available for target %q", m.CurrentScope)
	}
	if n < 0 || n >= len(deps) {
		return "", errAt(KindIndexOutOfRange, "index %d exceeds number of defined dependencies for target %q", n, m.CurrentScope)
	}
	return deps[n], nil
}

// Validate checks that the parallel-table invariant holds after every
// target's block has been entered.
func (m *Model) Validate() error {
	if len(m.Deps) != len(m.Targets) || len(m.Commands) != len(m.Targets) {
		return errAt(KindSyntax, "internal inconsistency: targets=%d deps=%d commands=%d", len(m.Targets), len(m.Deps), len(m.Commands))
	}
	return nil
}
