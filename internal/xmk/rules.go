// Rule-driven parser. Syntax is a package-level table of Rules; each Rule
// offers one or more alternative Recipes built from a small step vocabulary
// (KEYWORD, SYMBOL, LIST, NESTED_RULE, END). A generic driver matches the
// token stream against the table — SEARCHING for a rule whose leading
// keyword fits, then CHECKING the rest of its recipe — rather than one
// hand-written function per directive.

package xmk

// stepKind names one step in a recipe.
type stepKind int

const (
	stepKeyword stepKind = iota
	stepSymbol
	stepList
	stepNestedRule
	stepEnd
)

// step is one entry in a recipe. keyword is populated only for stepKeyword.
type step struct {
	kind    stepKind
	keyword string
}

func kw(word string) step { return step{kind: stepKeyword, keyword: word} }

var (
	symbolStep     = step{kind: stepSymbol}
	listStep       = step{kind: stepList}
	nestedRuleStep = step{kind: stepNestedRule}
	endStep        = step{kind: stepEnd}
)

// recipe is one ordered alternative for a rule. Within a rule, every
// recipe shares the same leading keyword (that is what the driver's
// SEARCHING phase matches on) and the same length.
type recipe []step

// Rule is one syntactic rule: a set of alternative recipes, plus the
// callbacks invoked as the driver consumes their steps.
type Rule struct {
	Name    string
	Recipes []recipe

	// SymbolCallback runs for every SYMBOL step consumed while this rule is
	// being matched, in order. A rule whose recipes carry more than one
	// SYMBOL step (DEFINE_AS's name and value) relies on callback-local
	// state on Parser to tell them apart.
	SymbolCallback func(p *Parser, word string) error

	// ListCallback runs once, with every entry the list handler
	// accumulated, when a LIST step's block closes.
	ListCallback func(p *Parser, entries []string) error

	// ScopeBlockOpened runs when '{' is consumed opening a NESTED_RULE step.
	ScopeBlockOpened func(p *Parser) error
}

var ruleBuild = &Rule{
	Name:    "BUILD",
	Recipes: []recipe{{kw("build"), symbolStep, endStep}},
	SymbolCallback: func(p *Parser, word string) error {
		return p.model.SetBuildTarget(word)
	},
}

var ruleTarget = &Rule{
	Name:    "TARGET",
	Recipes: []recipe{{kw("target"), symbolStep, nestedRuleStep, endStep}},
	SymbolCallback: func(p *Parser, word string) error {
		p.pendingName = word
		return nil
	},
	// Registering the target here, before any word inside the braces is
	// read, is what makes $(target*) valid starting with the block's first
	// token.
	ScopeBlockOpened: func(p *Parser) error {
		return p.model.AddTarget(p.pendingName)
	},
}

// ruleDefineAs has two recipes diverging at exactly one step: the value is
// either a single symbol or a brace-delimited list (joined with a single
// space to form the stored value). The name is always a single symbol.
var ruleDefineAs = &Rule{
	Name: "DEFINE_AS",
	Recipes: []recipe{
		{kw("define"), symbolStep, kw("as"), symbolStep, endStep},
		{kw("define"), symbolStep, kw("as"), listStep, endStep},
	},
	SymbolCallback: func(p *Parser, word string) error {
		if !p.haveDefineName {
			p.pendingName = word
			p.haveDefineName = true
			return nil
		}
		p.haveDefineName = false
		p.model.Defines.Add(p.pendingName, word)
		return nil
	},
	ListCallback: func(p *Parser, entries []string) error {
		p.haveDefineName = false
		p.model.Defines.Add(p.pendingName, joinList(entries))
		return nil
	},
}

var ruleDependsOn = &Rule{
	Name:    "DEPENDS_ON",
	Recipes: []recipe{{kw("depends"), kw("on"), listStep, endStep}},
	ListCallback: func(p *Parser, entries []string) error {
		for _, dep := range entries {
			if err := p.model.AddDependency(dep); err != nil {
				return err
			}
		}
		return nil
	},
}

var ruleCreatedUsing = &Rule{
	Name:    "CREATED_USING",
	Recipes: []recipe{{kw("created"), kw("using"), listStep, endStep}},
	ListCallback: func(p *Parser, entries []string) error {
		for _, cmdline := range entries {
			if err := p.model.AddCommand(cmdline); err != nil {
				return err
			}
		}
		return nil
	},
}

// topLevelRules is searched for a program's statements. targetBodyRules is
// searched once a TARGET rule's NESTED_RULE step opens a target's body —
// the grammar nests exactly one rule set inside another, so the parse
// stack never needs to track more than this one extra level.
var topLevelRules = []*Rule{ruleBuild, ruleDefineAs, ruleTarget}
var targetBodyRules = []*Rule{ruleDependsOn, ruleCreatedUsing}

// Parser drives the rule engine over a Lexer, populating a Model.
type Parser struct {
	lex   *Lexer
	model *Model

	// pendingName carries a symbol from one step to a later step within the
	// same recipe match: a TARGET name awaiting its block's '{', or
	// DEFINE_AS's name awaiting its value.
	pendingName string
	// haveDefineName distinguishes DEFINE_AS's first SYMBOL callback (the
	// name) from its second (the value), since both recipes route through
	// the same SymbolCallback.
	haveDefineName bool
}

// NewParser returns a parser reading tokens from lex into model.
func NewParser(lex *Lexer, model *Model) *Parser {
	return &Parser{lex: lex, model: model}
}

// Parse consumes the entire program against topLevelRules. Macro expansion
// happens transparently inside the lexer as a side effect of every word
// read, so by the time Parse returns the buffer holds the fully
// preprocessed source.
func (p *Parser) Parse() error {
	if err := p.runRules(topLevelRules, true); err != nil {
		return err
	}
	return p.model.Validate()
}

// runRules implements the SEARCHING/CHECKING driver loop: SEARCHING reads
// one word and finds the rule in rules whose leading keyword matches it;
// CHECKING then hands the rest of the token stream to matchRecipe until
// that rule's recipe reaches its END step. At the top level the loop ends
// at end of input; nested (inside a target's body) it ends at the '}' that
// closes the enclosing block.
func (p *Parser) runRules(rules []*Rule, topLevel bool) error {
	for {
		word, _, ok, err := p.lex.NextWord()
		if err != nil {
			return err
		}
		if !ok {
			if topLevel {
				return nil
			}
			return errLine(KindSyntax, p.lex.Line(), "unexpected end of input")
		}
		if !topLevel && word == "}" {
			return nil
		}

		rule, err := p.search(rules, word)
		if err != nil {
			return err
		}
		if err := p.matchRecipe(rule); err != nil {
			return err
		}
	}
}

// search finds the rule among rules whose recipes all lead with the
// keyword word, claiming the parse for it (the SEARCHING phase). Every
// rule's recipes share a single leading keyword, so checking the first
// recipe is enough.
func (p *Parser) search(rules []*Rule, word string) (*Rule, error) {
	for _, r := range rules {
		lead := r.Recipes[0][0]
		if lead.kind == stepKeyword && lead.keyword == word {
			return r, nil
		}
	}
	return nil, errLine(KindSyntax, p.lex.Line(), "unexpected token %q", word)
}

// matchRecipe drives rule's CHECKING phase: it has already claimed the
// leading keyword, and processes the remaining steps of whichever of the
// rule's recipes the token stream turns out to match. candidates narrows
// as steps are consumed; a rule with only one recipe never narrows at all.
func (p *Parser) matchRecipe(rule *Rule) error {
	candidates := make([]int, len(rule.Recipes))
	for i := range candidates {
		candidates[i] = i
	}
	stepIdx := 1 // index 0, the leading keyword, was consumed by search

	for {
		kind, err := p.resolveStepKind(rule, candidates, stepIdx)
		if err != nil {
			return err
		}

		switch kind {
		case stepEnd:
			return nil

		case stepKeyword:
			word, _, err := p.next()
			if err != nil {
				return err
			}
			if word == "}" {
				return nil
			}
			next := candidates[:0:0]
			for _, idx := range candidates {
				if rule.Recipes[idx][stepIdx].keyword == word {
					next = append(next, idx)
				}
			}
			if len(next) == 0 {
				return errLine(KindSyntax, p.lex.Line(), "expected %q inside %s, found %q", rule.Recipes[candidates[0]][stepIdx].keyword, rule.Name, word)
			}
			candidates = next
			stepIdx++

		case stepSymbol:
			word, _, err := p.next()
			if err != nil {
				return err
			}
			candidates = filterByKind(rule.Recipes, candidates, stepIdx, stepSymbol)
			if rule.SymbolCallback != nil {
				if err := rule.SymbolCallback(p, word); err != nil {
					return err
				}
			}
			stepIdx++

		case stepList:
			if err := p.expectWord("{"); err != nil {
				return err
			}
			entries, err := p.readList()
			if err != nil {
				return err
			}
			candidates = filterByKind(rule.Recipes, candidates, stepIdx, stepList)
			if rule.ListCallback != nil {
				if err := rule.ListCallback(p, entries); err != nil {
					return err
				}
			}
			stepIdx++

		case stepNestedRule:
			if err := p.expectWord("{"); err != nil {
				return err
			}
			if rule.ScopeBlockOpened != nil {
				if err := rule.ScopeBlockOpened(p); err != nil {
					return err
				}
			}
			if err := p.runRules(targetBodyRules, false); err != nil {
				return err
			}
			stepIdx++
		}
	}
}

// resolveStepKind reports the step kind at stepIdx shared by every
// candidate recipe. When candidates disagree — the only case in this
// grammar being DEFINE_AS's SYMBOL-vs-LIST value slot — it peeks the next
// token without consuming it: a '{' selects the LIST alternative, anything
// else selects SYMBOL.
func (p *Parser) resolveStepKind(rule *Rule, candidates []int, stepIdx int) (stepKind, error) {
	kinds := map[stepKind]bool{}
	for _, idx := range candidates {
		kinds[rule.Recipes[idx][stepIdx].kind] = true
	}
	if len(kinds) == 1 {
		for k := range kinds {
			return k, nil
		}
	}
	word, _, ok, err := p.lex.Peek()
	if err != nil {
		return 0, err
	}
	if ok && word == "{" {
		return stepList, nil
	}
	return stepSymbol, nil
}

func filterByKind(recipes []recipe, candidates []int, stepIdx int, kind stepKind) []int {
	out := candidates[:0:0]
	for _, idx := range candidates {
		if recipes[idx][stepIdx].kind == kind {
			out = append(out, idx)
		}
	}
	return out
}

// next reads the next word, turning end-of-input into a syntax error —
// every caller of next() is mid-recipe and expects more tokens.
func (p *Parser) next() (string, bool, error) {
	word, newline, ok, err := p.lex.NextWord()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, errLine(KindSyntax, p.lex.Line(), "unexpected end of input")
	}
	return word, newline, nil
}

func (p *Parser) expectWord(expect string) error {
	word, _, err := p.next()
	if err != nil {
		return err
	}
	if word != expect {
		return errLine(KindSyntax, p.lex.Line(), "expected %q, found %q", expect, word)
	}
	return nil
}

// readList implements the LIST step's entry handler, called once its
// opening '{' has already been consumed: the first word allocates the
// first entry; a word on the same line as the previous one concatenates
// onto it with a single space; a word following a newline starts a new
// entry. Any '{' found while accumulating entries does not open a further
// nesting level: it is accepted and discarded rather than treated as an
// entry.
func (p *Parser) readList() ([]string, error) {
	var entries []string
	for {
		word, newline, ok, err := p.lex.NextWord()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errLine(KindSyntax, p.lex.Line(), "unexpected end of input inside list")
		}
		switch {
		case word == "}":
			return entries, nil
		case word == "{":
			continue
		case len(entries) == 0 || newline:
			entries = append(entries, word)
		default:
			entries[len(entries)-1] += " " + word
		}
	}
}

func joinList(entries []string) string {
	out := ""
	for i, e := range entries {
		if i > 0 {
			out += " "
		}
		out += e
	}
	return out
}
