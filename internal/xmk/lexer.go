// Tokenizer with inline macro expansion. Yields one word at a time from a
// Buffer, reporting whether a newline was crossed since the previous word,
// and transparently substituting user-defined names and built-in
// variables by rewriting the source buffer in place and re-entering at
// the patch point.

package xmk

import (
	"regexp"
	"strconv"
	"strings"
)

// maxWordLen is the bound on a single (non-substituted) word: 254 bytes
// succeed, 255 is a fatal lex error.
const maxWordLen = 254

var depRefPattern = regexp.MustCompile(`^\$\(dep\[([0-9A-Za-z]+)\]\)$`)

// Lexer walks a Buffer one word at a time. Returned words are borrowed
// only in the sense that the buffer backing them may later move; the
// string itself is an independent copy, safe to retain past the next call.
type Lexer struct {
	buf   *Buffer
	model *Model
	pos   int
	line  int

	hasPeek bool
	peeked  lexResult
}

// lexResult is one NextWord/scan return value, cached across Peek/NextWord.
type lexResult struct {
	word        string
	newlineSeen bool
	ok          bool
	err         error
}

// NewLexer returns a tokenizer over buf, consulting model for the current
// scope and define/dependency lookups needed by macro expansion.
func NewLexer(buf *Buffer, model *Model) *Lexer {
	return &Lexer{buf: buf, model: model, line: 1}
}

// Line reports the 1-based source line of the lexer's current position,
// for error messages.
func (l *Lexer) Line() int {
	return l.line
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.buf.Text) {
		return sentinel
	}
	return l.buf.Text[l.pos]
}

// skipWhitespaceAndComments advances past blanks and '#' comments,
// reporting whether at least one newline was crossed.
func (l *Lexer) skipWhitespaceAndComments() bool {
	newlineSeen := false
	for {
		switch c := l.peek(); c {
		case '#':
			for {
				c = l.peek()
				if c == '\n' || c == sentinel {
					break
				}
				l.pos++
			}
		case '\n':
			l.pos++
			l.line++
			newlineSeen = true
		case ' ', '\t', '\r':
			l.pos++
		default:
			return newlineSeen
		}
	}
}

// Peek returns the next word without consuming it: the following NextWord
// call returns the same result. Used by the rule engine to decide, without
// committing, whether an upcoming step should be read as a SYMBOL or a LIST.
func (l *Lexer) Peek() (word string, newlineSeen bool, ok bool, err error) {
	if !l.hasPeek {
		word, newlineSeen, ok, err = l.scan()
		l.peeked = lexResult{word, newlineSeen, ok, err}
		l.hasPeek = true
	}
	r := l.peeked
	return r.word, r.newlineSeen, r.ok, r.err
}

// NextWord returns the next word in the buffer. ok is false only at end of
// input; err is non-nil on any lex or substitution failure, in which case
// word and ok must be ignored.
func (l *Lexer) NextWord() (word string, newlineSeen bool, ok bool, err error) {
	if l.hasPeek {
		l.hasPeek = false
		r := l.peeked
		return r.word, r.newlineSeen, r.ok, r.err
	}
	return l.scan()
}

// scan performs the actual tokenization step that NextWord either runs
// directly or returns from Peek's cache.
func (l *Lexer) scan() (word string, newlineSeen bool, ok bool, err error) {
	newlineSeen = l.skipWhitespaceAndComments()

	if l.peek() == sentinel {
		return "", newlineSeen, false, nil
	}

	start := l.pos
	quoted := l.peek() == '"'
	var raw []byte

	if quoted {
		l.pos++ // opening quote
		for {
			c := l.peek()
			if c == sentinel {
				return "", newlineSeen, false, errLine(KindLex, l.line, "unterminated quoted string")
			}
			if c == '"' {
				l.pos++
				break
			}
			if c == '\n' {
				l.line++
			}
			raw = append(raw, c)
			l.pos++
			if len(raw) > maxWordLen {
				return "", newlineSeen, false, errLine(KindLex, l.line, "word exceeds maximum length of %d bytes", maxWordLen)
			}
		}
	} else {
		for {
			c := l.peek()
			if c == sentinel || c == ' ' || c == '\t' || c == '\n' || c == '\r' {
				break
			}
			raw = append(raw, c)
			l.pos++
			if len(raw) > maxWordLen {
				return "", newlineSeen, false, errLine(KindLex, l.line, "word exceeds maximum length of %d bytes", maxWordLen)
			}
		}
	}

	end := l.pos
	word = string(raw)

	if !quoted && len(word) > 0 && word[0] == '$' {
		expanded, rewritten, eerr := l.expand(word, start, end)
		if eerr != nil {
			return "", newlineSeen, false, eerr
		}
		if rewritten {
			// The expansion replaces this word's position, not its place in
			// the line structure: a macro invoked as the first token on a
			// new line must still report that newline to the caller, even
			// though the patched text itself starts with no whitespace to
			// re-skip. Keep the newline flag captured before this word and
			// discard whatever the resumed scan computes for it.
			l.pos = start
			word, _, ok, err = l.scan()
			return word, newlineSeen, ok, err
		}
		word = expanded
	}

	return word, newlineSeen, true, nil
}

// expand resolves a $-prefixed word. When the word names a
// user define, it splices the define's value into the buffer at
// [start,end) and reports rewritten=true so the caller rescans from the
// patch point — allowing the expansion itself to contain further $…
// references (recursive macro expansion).
func (l *Lexer) expand(word string, start, end int) (result string, rewritten bool, err error) {
	if len(word) == 1 {
		return "", false, errLine(KindLex, l.line, "stray '$' with no following symbol")
	}

	if word[1] == '$' {
		// "$$X" escapes to the literal word "$X"; no define lookup at all.
		return word[1:], false, nil
	}

	switch word {
	case "$(target)":
		if !l.model.HasScope() {
			return "", false, errLine(KindScopeViolation, l.line, "$(target) used outside of a target block")
		}
		return l.model.CurrentScope, false, nil
	case "$(target_name)":
		if !l.model.HasScope() {
			return "", false, errLine(KindScopeViolation, l.line, "$(target_name) used outside of a target block")
		}
		return targetBasename(l.model.CurrentScope), false, nil
	case "$(target_ext)":
		if !l.model.HasScope() {
			return "", false, errLine(KindScopeViolation, l.line, "$(target_ext) used outside of a target block")
		}
		return targetExtension(l.model.CurrentScope), false, nil
	}

	if m := depRefPattern.FindStringSubmatch(word); m != nil {
		if !l.model.HasScope() {
			return "", false, errLine(KindScopeViolation, l.line, "$(dep[...]) used outside of a target block")
		}
		n, perr := strconv.ParseInt(m[1], 0, 64)
		if perr != nil {
			return "", false, errLine(KindLex, l.line, "invalid dependency index in %q", word)
		}
		dep, derr := l.model.Dependency(int(n))
		if derr != nil {
			if xe, ok := derr.(*Error); ok {
				xe.Line = l.line
			}
			return "", false, derr
		}
		return dep, false, nil
	}

	if strings.HasPrefix(word, "$(") {
		return "", false, errLine(KindLex, l.line, "unrecognized built-in substitution %q", word)
	}

	name := word[1:]
	if val, ok := l.model.Defines.Lookup(name); ok {
		l.buf.ExpandAt(start, end-start, []byte(val))
		return "", true, nil
	}

	return "", false, errLine(KindUndefinedSymbol, l.line, "undefined symbol %q", word)
}

func targetBasename(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

func targetExtension(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return ""
}
