// Source buffer: owns the mutable program text being tokenized. Macro
// expansion splices replacement bytes directly into this buffer and the
// tokenizer re-enters at the patch point, rather than layering an
// immutable token stream with pushback.

package xmk

import (
	"os"
)

// sentinel terminates the buffer so the lexer can always peek one rune
// past the last real byte without a bounds check.
const sentinel = 0

// Buffer is the single owned, resizable byte sequence holding the current
// (possibly macro-expanded) program text. Its backing array may move
// across expansions; callers must hold index-based cursors, never slices
// or pointers into Text.
type Buffer struct {
	Text []byte // program bytes, ending in one sentinel byte
	Path string // origin: the file path, or the name given to LoadString
}

// Load reads the whole file at path and appends the sentinel.
func (b *Buffer) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errAt(KindIO, "cannot read %q: %v", path, err)
	}
	b.Path = path
	b.Text = append(data, sentinel)
	return nil
}

// LoadString seeds the buffer directly from a string, for tests and for
// re-tokenizing preprocessed output.
func (b *Buffer) LoadString(path, text string) {
	b.Path = path
	b.Text = append([]byte(text), sentinel)
}

// ExpandAt splices replacement in place of the replacedLen bytes starting
// at offset, growing or shrinking the buffer as needed, and returns the
// offset one past the inserted replacement. The tokenizer rescans from
// offset itself, the start of the replacement, so that further $…
// references inside the replacement are honored (recursive macro
// expansion).
func (b *Buffer) ExpandAt(offset, replacedLen int, replacement []byte) int {
	if offset < 0 || offset+replacedLen > len(b.Text) {
		panic("xmk: ExpandAt out of range")
	}

	tail := append([]byte(nil), b.Text[offset+replacedLen:]...)
	head := append([]byte(nil), b.Text[:offset]...)

	newText := make([]byte, 0, len(head)+len(replacement)+len(tail))
	newText = append(newText, head...)
	newText = append(newText, replacement...)
	newText = append(newText, tail...)

	b.Text = newText
	return offset + len(replacement)
}

// String renders the buffer text without its trailing sentinel, used for
// -E preprocess-only output.
func (b *Buffer) String() string {
	if len(b.Text) == 0 {
		return ""
	}
	return string(b.Text[:len(b.Text)-1])
}
