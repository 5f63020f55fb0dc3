package xmk

import (
	isattypkg "github.com/mattn/go-isatty"
)

// isatty reports whether fd refers to an interactive terminal. Command
// echo (§4.6) gets a "+ " decoration on a tty and a bare line otherwise,
// the same terminal-awareness idiom used around isatty.IsTerminal in the
// pack's other shell-adjacent tools.
func isatty(fd uintptr) bool {
	return isattyIsTerminal(fd) || isattyIsCygwinTerminal(fd)
}

func isattyIsTerminal(fd uintptr) bool {
	return isatty_IsTerminal(fd)
}

func isattyIsCygwinTerminal(fd uintptr) bool {
	return isatty_IsCygwinTerminal(fd)
}

// Indirection kept thin so tests can stub terminal detection without
// touching the go-isatty import directly.
var (
	isatty_IsTerminal       = isattypkg.IsTerminal
	isatty_IsCygwinTerminal = isattypkg.IsCygwinTerminal
)
