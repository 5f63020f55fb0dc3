// Dependency resolution and command execution. Walks the target graph
// built by the parser in post-order, compares modification times to
// decide what is stale, and runs each out-of-date target's commands
// through the host shell via exec.Command(shell, "-c", cmdline). Sibling
// dependencies are resolved strictly sequentially, never concurrently.

package xmk

import (
	"os"
	"os/exec"
	"time"
)

// defaultShell is the command interpreter used to run recipe lines. xmk's
// CLI surface has no shell-selection flag, so it is fixed.
const defaultShell = "sh"

// Resolver walks the model store built by a Parser and executes whatever
// commands are needed to bring the configured build target up to date.
type Resolver struct {
	model *Model
	log   *Logger
	shell string
}

// NewResolver returns a resolver over model, logging through log. quiet
// suppresses command echo (the `-q` flag); it is applied to log directly
// since Logger.Echo is the only place that decision is made.
func NewResolver(model *Model, log *Logger, quiet bool) *Resolver {
	log.Quiet = quiet
	return &Resolver{model: model, log: log, shell: defaultShell}
}

// Build resolves and, if necessary, rebuilds the configured build target.
// It is the single entry point into dependency resolution and execution.
func (r *Resolver) Build() error {
	if r.model.BuildTarget == "" {
		return errAt(KindMissingBuild, "no build target was declared")
	}
	_, err := r.execute(r.model.BuildTarget)
	return err
}

// execute walks the dependency graph in post-order. It returns whether
// the named target was found pending an update (and so had its commands
// run); it is false for a plain file and for an up-to-date target. The
// caller decides its own staleness from mtimes, not from this value.
func (r *Resolver) execute(name string) (updatePending bool, err error) {
	idx, isTarget := r.model.TargetIndex(name)
	if !isTarget {
		if fileExists(name) {
			return false, nil
		}
		return false, errAt(KindUnknownTarget, "%q is neither a declared target nor an existing file", name)
	}

	deps := r.model.Deps[idx]
	cmds := r.model.Commands[idx]
	if len(deps) == 0 && len(cmds) == 0 {
		return false, errAt(KindEmptyTarget, "target %q has no dependencies and no commands", name)
	}

	targetMtime, targetExists := fileMtime(name)
	updatePending = !targetExists

	for _, dep := range deps {
		if _, derr := r.execute(dep); derr != nil {
			return false, derr
		}
		depMtime, depExists := fileMtime(dep)
		if !depExists || !targetExists || depMtime.After(targetMtime) {
			updatePending = true
		}
	}

	if updatePending {
		for _, cmdline := range cmds {
			r.log.Echo(cmdline)
			if err := r.run(cmdline); err != nil {
				return false, err
			}
		}
	}

	if !fileExists(name) {
		return false, errAt(KindPostBuildMissing, "commands for target %q succeeded but the file was not produced", name)
	}

	return updatePending, nil
}

// run invokes one command line through the host shell, inheriting stdio.
func (r *Resolver) run(cmdline string) error {
	cmd := exec.Command(r.shell, "-c", cmdline)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		code := 1
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
		e := errAt(KindCommandFailed, "command failed: %s", cmdline)
		e.Code = code
		return e
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// fileMtime reports a file's modification time and whether it exists. A
// missing file is never considered newer than anything.
func fileMtime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}
