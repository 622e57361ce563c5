// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package ast

import (
	"strings"

	"github.com/sush-shell/sush/internal/scan"
	"github.com/sush-shell/sush/internal/word"
)

// SyntaxError is a parse failure (spec §7 Syntax(at)).
type SyntaxError struct {
	At  int
	Msg string
}

func (e *SyntaxError) Error() string { return e.Msg }

// IncompleteError is returned when the text ends inside an unclosed
// keyword construct (`if` without `fi`, `{` without `}`, and so on). The
// spec's feeder contract has parsers push nesting expectations the feeder
// tracks directly; this module instead detects the same condition by
// attempting a parse and catching end-of-input at a point where a closing
// keyword is still expected, which lets internal/ast stay a pure
// text-in/AST-out component the driver loop (cmd/sush, internal/term) can
// retry with more feeder input.
type IncompleteError struct{ Want string }

func (e *IncompleteError) Error() string { return "sush: incomplete: expecting " + e.Want }

type parser struct {
	s        string
	pos      int
	heredocs []string
	hdIdx    int
}

// Parse builds the statement list for one feeder.Result: its joined text
// plus the heredoc bodies it collected, consumed in redirect order.
func Parse(text string, heredocs []string) ([]*Stmt, error) {
	p := &parser{s: text, heredocs: heredocs}
	stmts, err := p.parseList(nil)
	if err != nil {
		return nil, err
	}
	p.skipBlankNL()
	if p.pos < len(p.s) {
		return nil, &SyntaxError{At: p.pos, Msg: "unexpected token near " + p.peekWord()}
	}
	return stmts, nil
}

var keywords = map[string]bool{
	"if": true, "then": true, "elif": true, "else": true, "fi": true,
	"while": true, "until": true, "do": true, "done": true,
	"for": true, "in": true, "case": true, "esac": true, "function": true,
	"select": true, "time": true,
}

func (p *parser) skipBlank()   { p.pos += scan.Blank(p.s[p.pos:]) }
func (p *parser) skipComment() { p.pos += scan.Comment(p.s[p.pos:]) }

func (p *parser) skipBlankNL() {
	for {
		p.skipBlank()
		p.skipComment()
		if p.pos < len(p.s) && (p.s[p.pos] == '\n') {
			p.pos++
			continue
		}
		break
	}
}

func (p *parser) eof() bool { return p.pos >= len(p.s) }

func (p *parser) peekWord() string {
	save := p.pos
	p.skipBlank()
	n := scan.Word(p.s[p.pos:], "")
	w := p.s[p.pos : p.pos+n]
	p.pos = save
	return w
}

// atKeyword reports whether the next token (after skipping blanks) is
// exactly kw, without consuming it.
func (p *parser) atKeyword(kw string) bool {
	save := p.pos
	p.skipBlank()
	n := scan.Name(p.s[p.pos:])
	if n == 0 {
		// non-name reserved words such as "}"
		n = scan.Word(p.s[p.pos:], "")
	}
	ok := n == len(kw) && p.s[p.pos:p.pos+n] == kw
	p.pos = save
	return ok
}

func (p *parser) consumeKeyword(kw string) bool {
	p.skipBlank()
	if p.atKeyword(kw) {
		p.pos += len(kw)
		return true
	}
	return false
}

// parseList parses a sequence of and-or lists separated by `;`, `&`,
// newline, or EOF, stopping before any of stopWords (used by compound
// commands to know where their body ends).
func (p *parser) parseList(stopWords []string) ([]*Stmt, error) {
	var stmts []*Stmt
	for {
		p.skipBlankNL()
		if p.eof() || p.atAnyKeyword(stopWords) || p.atCaseArmEnd() {
			return stmts, nil
		}
		stmt, err := p.parseAndOr()
		if err != nil {
			return nil, err
		}
		p.skipBlank()
		switch {
		case p.pos < len(p.s) && p.s[p.pos] == '&' && !p.atOp("&&"):
			stmt.Background = true
			p.pos++
		case p.pos < len(p.s) && p.s[p.pos] == ';' && !p.atCaseArmEnd():
			p.pos++
		}
		stmts = append(stmts, stmt)
		p.skipBlank()
		if p.pos < len(p.s) && p.s[p.pos] == '\n' {
			continue
		}
		p.skipBlankNL()
		if p.eof() || p.atAnyKeyword(stopWords) || p.atCaseArmEnd() {
			return stmts, nil
		}
	}
}

// atCaseArmEnd reports whether the next token is a case-arm terminator
// (`;;`, `;&` or `;;&`), which parseCase consumes itself.
func (p *parser) atCaseArmEnd() bool {
	return p.atOp(";;") || p.atOp(";&")
}

func (p *parser) atAnyKeyword(words []string) bool {
	for _, w := range words {
		if p.atKeyword(w) {
			return true
		}
	}
	return false
}

func (p *parser) atOp(op string) bool {
	return strings.HasPrefix(p.s[p.pos:], op)
}

// parseAndOr parses one `&&`/`||`-chained list, itself built of pipelines.
func (p *parser) parseAndOr() (*Stmt, error) {
	left, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}
	for {
		p.skipBlank()
		var op ListOp
		switch {
		case p.atOp("&&"):
			op = ListAnd
		case p.atOp("||"):
			op = ListOr
		default:
			return left, nil
		}
		p.pos += 2
		p.skipBlankNL()
		right, err := p.parsePipeline()
		if err != nil {
			return nil, err
		}
		left = &Stmt{Cmd: &List{Op: op, Left: left, Right: right}}
	}
}

// parsePipeline parses `[!] cmd (| cmd | |& cmd)*`.
func (p *parser) parsePipeline() (*Stmt, error) {
	negated := false
	timeKw := false
	if p.consumeKeyword("time") {
		timeKw = true
		p.skipBlank()
	}
	if p.peekWord() == "!" {
		p.pos += scan.Word(p.s[p.pos:], "") + (scan.Blank(p.s[p.pos:]))
		negated = true
	}
	first, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	stmts := []*Stmt{first}
	var stderrIn []bool
	for {
		p.skipBlank()
		if p.atOp("||") || p.atOp("&&") {
			break
		}
		if p.pos < len(p.s) && p.s[p.pos] == '|' {
			p.pos++
			stderr := false
			if p.pos < len(p.s) && p.s[p.pos] == '&' {
				p.pos++
				stderr = true
			}
			stderrIn = append(stderrIn, stderr)
			p.skipBlankNL()
			next, err := p.parseStmt()
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, next)
			continue
		}
		break
	}
	if len(stmts) == 1 {
		stmts[0].Negated = negated
		return stmts[0], nil
	}
	return &Stmt{Negated: negated, Cmd: &Pipeline{Stmts: stmts, TimeKw: timeKw, StderrIn: stderrIn}}, nil
}

// parseStmt parses one command (simple or compound); for a simple command
// its leading assignments and its redirects are recorded on the Stmt.
// Redirects after a compound command are not parsed.
func (p *parser) parseStmt() (*Stmt, error) {
	p.skipBlankNL()
	st := &Stmt{}
	cmd, err := p.parseCommand(st)
	if err != nil {
		return nil, err
	}
	st.Cmd = cmd
	return st, nil
}

func (p *parser) parseCommand(st *Stmt) (Command, error) {
	switch {
	case p.atKeyword("if"):
		return p.parseIf()
	case p.atKeyword("while"):
		return p.parseWhile(false)
	case p.atKeyword("until"):
		return p.parseWhile(true)
	case p.atKeyword("for"):
		return p.parseFor()
	case p.atKeyword("case"):
		return p.parseCase()
	case p.atKeyword("function"):
		return p.parseFunctionKw()
	}
	p.skipBlank()
	if p.pos < len(p.s) && p.s[p.pos] == '{' && (p.pos+1 >= len(p.s) || p.s[p.pos+1] == ' ' || p.s[p.pos+1] == '\t' || p.s[p.pos+1] == '\n') {
		return p.parseBrace()
	}
	if p.pos < len(p.s) && p.s[p.pos] == '(' {
		if strings.HasPrefix(p.s[p.pos:], "((") {
			return p.parseArith()
		}
		return p.parseSubshell()
	}
	if strings.HasPrefix(p.s[p.pos:], "[[") {
		return p.parseTest()
	}
	if name, ok := p.peekFuncDecl(); ok {
		return p.parseFunctionName(name)
	}
	return p.parseSimple(st)
}

func (p *parser) peekFuncDecl() (string, bool) {
	save := p.pos
	p.skipBlank()
	n := scan.Name(p.s[p.pos:])
	if n == 0 || keywords[p.s[p.pos:p.pos+n]] {
		p.pos = save
		return "", false
	}
	name := p.s[p.pos : p.pos+n]
	rest := p.s[p.pos+n:]
	ok := strings.HasPrefix(rest, "()")
	p.pos = save
	return name, ok
}

func (p *parser) parseFunctionName(name string) (Command, error) {
	p.skipBlank()
	p.pos += len(name) + 2 // name + "()"
	p.skipBlankNL()
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &FuncDecl{Name: name, Body: body}, nil
}

func (p *parser) parseFunctionKw() (Command, error) {
	p.consumeKeyword("function")
	p.skipBlank()
	n := scan.Name(p.s[p.pos:])
	if n == 0 {
		return nil, &SyntaxError{At: p.pos, Msg: "expected function name"}
	}
	name := p.s[p.pos : p.pos+n]
	p.pos += n
	p.skipBlank()
	if strings.HasPrefix(p.s[p.pos:], "()") {
		p.pos += 2
	}
	p.skipBlankNL()
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &FuncDecl{Name: name, Body: body}, nil
}

func (p *parser) parseBrace() (Command, error) {
	p.pos++ // '{'
	stmts, err := p.parseList([]string{"}"})
	if err != nil {
		return nil, err
	}
	p.skipBlankNL()
	if !p.consumeByte('}') {
		return nil, &IncompleteError{Want: "}"}
	}
	return &Brace{Stmts: stmts}, nil
}

func (p *parser) parseSubshell() (Command, error) {
	p.pos++ // '('
	stmts, err := p.parseListUntilByte(')')
	if err != nil {
		return nil, err
	}
	if !p.consumeByte(')') {
		return nil, &IncompleteError{Want: ")"}
	}
	return &Subshell{Stmts: stmts}, nil
}

// parseListUntilByte parses statements up to (not including) the given
// closer byte, which may appear right after the last statement's `;`/`&`
// with no separating newline, as in `( cmd )`.
func (p *parser) parseListUntilByte(closer byte) ([]*Stmt, error) {
	var stmts []*Stmt
	for {
		p.skipBlankNL()
		if p.eof() {
			return stmts, nil
		}
		if p.s[p.pos] == closer {
			return stmts, nil
		}
		stmt, err := p.parseAndOr()
		if err != nil {
			return nil, err
		}
		p.skipBlank()
		switch {
		case p.pos < len(p.s) && p.s[p.pos] == '&':
			stmt.Background = true
			p.pos++
		case p.pos < len(p.s) && p.s[p.pos] == ';':
			p.pos++
		}
		stmts = append(stmts, stmt)
	}
}

func (p *parser) consumeByte(b byte) bool {
	p.skipBlank()
	if p.pos < len(p.s) && p.s[p.pos] == b {
		p.pos++
		return true
	}
	return false
}

func (p *parser) parseArith() (Command, error) {
	p.pos += 2 // "(("
	start := p.pos
	depth := 1
	for p.pos < len(p.s) && depth > 0 {
		if strings.HasPrefix(p.s[p.pos:], "((") {
			depth++
			p.pos += 2
			continue
		}
		if strings.HasPrefix(p.s[p.pos:], "))") {
			depth--
			p.pos += 2
			continue
		}
		p.pos++
	}
	if depth != 0 {
		return nil, &IncompleteError{Want: "))"}
	}
	expr := p.s[start : p.pos-2]
	return &Arith{Expr: expr}, nil
}

func (p *parser) parseTest() (Command, error) {
	p.pos += 2 // "[["
	start := p.pos
	for {
		idx := strings.Index(p.s[p.pos:], "]]")
		if idx < 0 {
			return nil, &IncompleteError{Want: "]]"}
		}
		p.pos += idx + 2
		break
	}
	content := p.s[start : p.pos-2]
	var words []*word.Word
	for _, f := range strings.Fields(content) {
		words = append(words, &word.Word{Raw: f})
	}
	return &Test{Words: words}, nil
}

func (p *parser) parseIf() (Command, error) {
	p.consumeKeyword("if")
	cond, err := p.parseList([]string{"then"})
	if err != nil {
		return nil, err
	}
	if !p.consumeKeyword("then") {
		return nil, &IncompleteError{Want: "then"}
	}
	thenStmts, err := p.parseList([]string{"elif", "else", "fi"})
	if err != nil {
		return nil, err
	}
	ifc := &If{Cond: cond, Then: thenStmts}
	for p.atKeyword("elif") {
		p.consumeKeyword("elif")
		econd, err := p.parseList([]string{"then"})
		if err != nil {
			return nil, err
		}
		if !p.consumeKeyword("then") {
			return nil, &IncompleteError{Want: "then"}
		}
		ethen, err := p.parseList([]string{"elif", "else", "fi"})
		if err != nil {
			return nil, err
		}
		ifc.Elifs = append(ifc.Elifs, Elif{Cond: econd, Then: ethen})
	}
	if p.atKeyword("else") {
		p.consumeKeyword("else")
		elseStmts, err := p.parseList([]string{"fi"})
		if err != nil {
			return nil, err
		}
		ifc.Else = elseStmts
	}
	if !p.consumeKeyword("fi") {
		return nil, &IncompleteError{Want: "fi"}
	}
	return ifc, nil
}

func (p *parser) parseWhile(until bool) (Command, error) {
	if until {
		p.consumeKeyword("until")
	} else {
		p.consumeKeyword("while")
	}
	cond, err := p.parseList([]string{"do"})
	if err != nil {
		return nil, err
	}
	if !p.consumeKeyword("do") {
		return nil, &IncompleteError{Want: "do"}
	}
	body, err := p.parseList([]string{"done"})
	if err != nil {
		return nil, err
	}
	if !p.consumeKeyword("done") {
		return nil, &IncompleteError{Want: "done"}
	}
	return &While{Cond: cond, Body: body, Until: until}, nil
}

func (p *parser) parseFor() (Command, error) {
	p.consumeKeyword("for")
	p.skipBlank()
	if strings.HasPrefix(p.s[p.pos:], "((") {
		p.pos += 2
		end := strings.Index(p.s[p.pos:], "))")
		if end < 0 {
			return nil, &IncompleteError{Want: "))"}
		}
		header := p.s[p.pos : p.pos+end]
		p.pos += end + 2
		parts := strings.SplitN(header, ";", 3)
		for len(parts) < 3 {
			parts = append(parts, "")
		}
		p.skipBlank()
		if p.pos < len(p.s) && p.s[p.pos] == ';' {
			p.pos++
		}
		if !p.consumeKeyword("do") {
			p.skipBlankNL()
			if !p.consumeKeyword("do") {
				return nil, &IncompleteError{Want: "do"}
			}
		}
		body, err := p.parseList([]string{"done"})
		if err != nil {
			return nil, err
		}
		if !p.consumeKeyword("done") {
			return nil, &IncompleteError{Want: "done"}
		}
		return &ForC{Init: strings.TrimSpace(parts[0]), Cond: strings.TrimSpace(parts[1]), Post: strings.TrimSpace(parts[2]), Body: body}, nil
	}
	n := scan.Name(p.s[p.pos:])
	if n == 0 {
		return nil, &SyntaxError{At: p.pos, Msg: "expected name after for"}
	}
	name := p.s[p.pos : p.pos+n]
	p.pos += n
	p.skipBlankNL()
	hasIn := false
	var list []*word.Word
	if p.consumeKeyword("in") {
		hasIn = true
		for {
			p.skipBlank()
			if p.pos < len(p.s) && (p.s[p.pos] == ';' || p.s[p.pos] == '\n') {
				p.pos++
				break
			}
			if p.atKeyword("do") || p.eof() {
				break
			}
			wn := scan.Word(p.s[p.pos:], "")
			if wn == 0 {
				break
			}
			list = append(list, &word.Word{Raw: p.s[p.pos : p.pos+wn]})
			p.pos += wn
		}
	}
	p.skipBlankNL()
	if !p.consumeKeyword("do") {
		return nil, &IncompleteError{Want: "do"}
	}
	body, err := p.parseList([]string{"done"})
	if err != nil {
		return nil, err
	}
	if !p.consumeKeyword("done") {
		return nil, &IncompleteError{Want: "done"}
	}
	return &For{Name: name, List: list, HasIn: hasIn, Body: body}, nil
}

func (p *parser) parseCase() (Command, error) {
	p.consumeKeyword("case")
	p.skipBlank()
	wn := scan.Word(p.s[p.pos:], "")
	w := &word.Word{Raw: p.s[p.pos : p.pos+wn]}
	p.pos += wn
	p.skipBlankNL()
	if !p.consumeKeyword("in") {
		return nil, &IncompleteError{Want: "in"}
	}
	c := &Case{Word: w}
	p.skipBlankNL()
	for !p.atKeyword("esac") {
		if p.eof() {
			return nil, &IncompleteError{Want: "esac"}
		}
		p.skipBlank()
		if p.pos < len(p.s) && p.s[p.pos] == '(' {
			p.pos++
		}
		var pats []*word.Word
		for {
			p.skipBlank()
			pn := scan.Word(p.s[p.pos:], "|)")
			pats = append(pats, &word.Word{Raw: p.s[p.pos : p.pos+pn]})
			p.pos += pn
			p.skipBlank()
			if p.pos < len(p.s) && p.s[p.pos] == '|' {
				p.pos++
				continue
			}
			break
		}
		if !p.consumeByte(')') {
			return nil, &IncompleteError{Want: ")"}
		}
		body, err := p.parseList([]string{"esac"})
		if err != nil {
			return nil, err
		}
		item := CasePattern{Patterns: pats, Body: body}
		p.skipBlankNL()
		switch {
		case p.atOp(";;&"):
			p.pos += 3
			item.TestNext = true
		case p.atOp(";&"):
			p.pos += 2
			item.Fallthru = true
		case p.atOp(";;"):
			p.pos += 2
		}
		c.Items = append(c.Items, item)
		p.skipBlankNL()
	}
	p.consumeKeyword("esac")
	return c, nil
}

// parseSimple parses a simple command: leading NAME=value assignments, the
// command words, and any redirections interleaved among them. Assignments
// and redirections are stored on st.
func (p *parser) parseSimple(st *Stmt) (Command, error) {
	var assigns []*Assign
	var words []*word.Word
	var redirs []*Redirect
	for {
		p.skipBlank()
		if p.eof() {
			break
		}
		if p.isStmtTerminator() {
			break
		}
		if r, ok, err := p.tryParseRedirect(); ok {
			if err != nil {
				return nil, err
			}
			redirs = append(redirs, r)
			continue
		}
		n := scan.Word(p.s[p.pos:], "")
		if n == 0 {
			break
		}
		tok := p.s[p.pos : p.pos+n]
		if len(words) == 0 {
			if a, ok := parseAssignToken(tok); ok {
				p.pos += n
				assigns = append(assigns, a)
				continue
			}
		}
		words = append(words, &word.Word{Raw: tok, AtStart: len(words) == 0})
		p.pos += n
	}
	st.Assigns, st.Redirs = assigns, redirs
	return &Simple{Words: words}, nil
}

func (p *parser) isStmtTerminator() bool {
	if p.eof() {
		return true
	}
	c := p.s[p.pos]
	switch c {
	case ';', '\n', '&', '|':
		return true
	case ')':
		return true
	}
	if p.atOp("&&") || p.atOp("||") {
		return true
	}
	word := p.peekWord()
	return keywords[word] && word != "" && word != "time"
}

func parseAssignToken(tok string) (*Assign, bool) {
	n := scan.Name(tok)
	if n == 0 || n >= len(tok) {
		return nil, false
	}
	rest := tok[n:]
	idxName := ""
	if strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end < 0 {
			return nil, false
		}
		idxName = rest[1:end]
		rest = rest[end+1:]
	}
	append_ := false
	if strings.HasPrefix(rest, "+=") {
		append_ = true
		rest = rest[2:]
	} else if strings.HasPrefix(rest, "=") {
		rest = rest[1:]
	} else {
		return nil, false
	}
	a := &Assign{Name: tok[:n], Append: append_}
	if idxName != "" {
		a.Index = &word.Word{Raw: idxName}
	}
	if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
		a.Array = true
		inner := rest[1 : len(rest)-1]
		for _, f := range strings.Fields(inner) {
			a.Elems = append(a.Elems, &word.Word{Raw: f})
		}
		return a, true
	}
	a.Value = &word.Word{Raw: rest}
	return a, true
}

// tryParseRedirect attempts to parse a redirection at the current
// position: an optional leading fd digit string, then a redirect symbol,
// then its target word (or, for heredocs, the next queued body).
func (p *parser) tryParseRedirect() (*Redirect, bool, error) {
	save := p.pos
	hasN := false
	n := 0
	digits := 0
	for p.pos+digits < len(p.s) && p.s[p.pos+digits] >= '0' && p.s[p.pos+digits] <= '9' {
		digits++
	}
	if digits > 0 {
		symLen := scan.RedirectSymbol(p.s[p.pos+digits:])
		if symLen == 0 {
			p.pos = save
			return nil, false, nil
		}
		n = atoiSmall(p.s[p.pos : p.pos+digits])
		hasN = true
		p.pos += digits
	}
	symLen := scan.RedirectSymbol(p.s[p.pos:])
	if symLen == 0 {
		p.pos = save
		return nil, false, nil
	}
	sym := p.s[p.pos : p.pos+symLen]
	p.pos += symLen
	op, isHeredoc, isHereStr := redirOpFor(sym)
	r := &Redirect{N: n, HasN: hasN, Op: op}
	p.skipBlank()
	if isHeredoc {
		// consume (and discard) the delimiter word; the body came from
		// the feeder's heredoc queue, already stripped of quoting info
		// this module doesn't need to re-derive (quoted delimiters
		// suppress expansion of the body, handled by internal/redirect).
		wn := scan.Word(p.s[p.pos:], "")
		p.pos += wn
		if p.hdIdx >= len(p.heredocs) {
			return nil, true, &SyntaxError{At: p.pos, Msg: "missing heredoc body"}
		}
		r.Hdoc = p.heredocs[p.hdIdx]
		p.hdIdx++
		return r, true, nil
	}
	if isHereStr {
		wn := scan.Word(p.s[p.pos:], "")
		r.Word = &word.Word{Raw: p.s[p.pos : p.pos+wn]}
		p.pos += wn
		return r, true, nil
	}
	wn := scan.Word(p.s[p.pos:], "")
	if wn == 0 {
		return nil, true, &SyntaxError{At: p.pos, Msg: "expected word after " + sym}
	}
	r.Word = &word.Word{Raw: p.s[p.pos : p.pos+wn]}
	p.pos += wn
	return r, true, nil
}

func redirOpFor(sym string) (op RedirOp, isHeredoc, isHereStr bool) {
	switch sym {
	case "<":
		return RedirLess, false, false
	case ">":
		return RedirGreat, false, false
	case ">>":
		return RedirDplGreat, false, false
	case ">|":
		return RedirClobber, false, false
	case "<>":
		return RedirRdwr, false, false
	case "<&":
		return RedirDupIn, false, false
	case ">&":
		return RedirDupOut, false, false
	case "<<":
		return RedirHeredoc, true, false
	case "<<-":
		return RedirHeredocQ, true, false
	case "<<<":
		return RedirHereStr, false, true
	case "&>":
		return RedirGreatAnd, false, false
	case "&>>":
		return RedirAppAnd, false, false
	}
	return RedirNone, false, false
}

func atoiSmall(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
