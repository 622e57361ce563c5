// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package word

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sush-shell/sush/internal/core"
)

// run is one piece of a word's evaluated text, tagged with whether it came
// from a quoted context (and so must survive field splitting and pathname
// expansion untouched).
type run struct {
	text   string
	quoted bool
}

func evalRawText(cfg *Config, raw string) (string, error) {
	parts, err := ParseRaw(raw, false)
	if err != nil {
		return "", err
	}
	runs, err := evalParts(cfg, parts)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.text)
	}
	return b.String(), nil
}

func evalParts(cfg *Config, parts []Subword) ([]run, error) {
	var runs []run
	for _, p := range parts {
		switch v := p.(type) {
		case *Literal:
			runs = append(runs, run{text: v.Value, quoted: false})
		case *Escaped:
			runs = append(runs, run{text: string(v.Char), quoted: true})
		case *SingleQuoted:
			runs = append(runs, run{text: v.Value, quoted: true})
		case *DoubleQuoted:
			text, err := evalDoubleQuoted(cfg, v.Parts)
			if err != nil {
				return nil, err
			}
			runs = append(runs, run{text: text, quoted: true})
		case *TildePrefix:
			runs = append(runs, run{text: homeDir(v.User), quoted: false})
		case *Parameter:
			s, err := cfg.lookupScalar(v.Name)
			if err != nil {
				return nil, err
			}
			runs = append(runs, run{text: s, quoted: false})
		case *BracedParam:
			s, err := evalBracedParam(cfg, v)
			if err != nil {
				return nil, err
			}
			runs = append(runs, run{text: s, quoted: false})
		case *CommandSub:
			s, err := evalCommandSub(cfg, v.Script)
			if err != nil {
				return nil, err
			}
			runs = append(runs, run{text: s, quoted: v.Quoted})
		case *ArithSub:
			n, err := evalArith(cfg, v.Expr)
			if err != nil {
				return nil, err
			}
			runs = append(runs, run{text: strconv.FormatInt(n, 10), quoted: false})
		case *ExtGlob:
			runs = append(runs, run{text: reconstructExtGlob(v), quoted: false})
		}
	}
	return runs, nil
}

// evalDoubleQuoted concatenates the parts of a double-quoted string,
// special-casing $@ and $*: both become the positional parameters joined
// by the first IFS character (a whole quoted "$@" word is handled by
// wholeArrayFields instead; this path covers "$@" mixed with other text,
// which is joined the same way as "$*").
func evalDoubleQuoted(cfg *Config, parts []Subword) (string, error) {
	var b strings.Builder
	for _, p := range parts {
		if v, ok := p.(*Parameter); ok && (v.Name == "@" || v.Name == "*") {
			b.WriteString(joinOrSplit(cfg, cfg.DB.Positional(), "*", true)[0])
			continue
		}
		runs, err := evalParts(cfg, []Subword{p})
		if err != nil {
			return "", err
		}
		for _, r := range runs {
			b.WriteString(r.text)
		}
	}
	return b.String(), nil
}

func reconstructExtGlob(v *ExtGlob) string {
	return string(v.Op) + "(" + strings.Join(v.Alt, "|") + ")"
}

func evalCommandSub(cfg *Config, script string) (string, error) {
	if cfg.CommandSub == nil {
		return "", nil
	}
	out, err := cfg.CommandSub(script)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

// evalBracedParam applies a ${...} expansion's operator. Array subscripts
// (@ and *) are handled by the caller (expandOneWord) when they occupy an
// entire word; here Index, if present and not @/*, is evaluated as an
// arithmetic subscript.
func evalBracedParam(cfg *Config, bp *BracedParam) (string, error) {
	name := bp.Name
	if bp.Indirect {
		target, err := cfg.lookupScalar(name)
		if err != nil {
			return "", err
		}
		name = target
	}
	if bp.PrefixQuery || bp.PrefixAt {
		names := cfg.DB.NamesByPrefix(name)
		return strings.Join(names, " "), nil
	}
	if bp.Length {
		if bp.Index == "@" || bp.Index == "*" {
			vals, _ := cfg.lookupArray(name)
			return strconv.Itoa(len(vals)), nil
		}
		var s string
		var err error
		if bp.Index == "" {
			s, err = cfg.lookupScalar(name)
		} else {
			s, err = cfg.resolveScalarOrElem(name, bp.Index)
		}
		if err != nil {
			return "", err
		}
		return strconv.Itoa(len([]rune(s))), nil
	}

	set := cfg.isSet(name)
	var cur string
	var err error
	if bp.Index != "" && bp.Index != "@" && bp.Index != "*" {
		cur, err = cfg.resolveScalarOrElem(name, bp.Index)
	} else if bp.Index == "@" || bp.Index == "*" {
		vals, _ := cfg.lookupArray(name)
		cur = strings.Join(vals, " ")
		set = len(vals) > 0
	} else {
		cur, err = cfg.lookupScalar(name)
	}
	if err != nil {
		return "", err
	}

	switch bp.Op {
	case "":
		return cur, nil
	case ":-", "-":
		empty := cur == "" && (bp.Op == ":-" || !set)
		if bp.Op == "-" {
			empty = !set
		}
		if empty {
			return evalRawText(cfg, bp.Arg)
		}
		return cur, nil
	case ":=", "=":
		empty := cur == "" && (bp.Op == ":=" || !set)
		if bp.Op == "=" {
			empty = !set
		}
		if empty {
			val, err := evalRawText(cfg, bp.Arg)
			if err != nil {
				return "", err
			}
			if err := cfg.DB.SetParam(name, val); err != nil {
				return "", err
			}
			return val, nil
		}
		return cur, nil
	case ":?", "?":
		empty := cur == "" && (bp.Op == ":?" || !set)
		if bp.Op == "?" {
			empty = !set
		}
		if empty {
			msg, _ := evalRawText(cfg, bp.Arg)
			if msg == "" {
				msg = "parameter null or not set"
			}
			return "", fmt.Errorf("%s: %s", name, msg)
		}
		return cur, nil
	case ":+", "+":
		nonEmpty := cur != "" || (bp.Op == "+" && set)
		if nonEmpty {
			return evalRawText(cfg, bp.Arg)
		}
		return "", nil
	case "#":
		pat, _ := evalRawText(cfg, bp.Arg)
		return TrimPrefixPattern(cur, pat, cfg.Opts.ExtGlob, false), nil
	case "##":
		pat, _ := evalRawText(cfg, bp.Arg)
		return TrimPrefixPattern(cur, pat, cfg.Opts.ExtGlob, true), nil
	case "%":
		pat, _ := evalRawText(cfg, bp.Arg)
		return TrimSuffixPattern(cur, pat, cfg.Opts.ExtGlob, false), nil
	case "%%":
		pat, _ := evalRawText(cfg, bp.Arg)
		return TrimSuffixPattern(cur, pat, cfg.Opts.ExtGlob, true), nil
	case ":":
		return evalSlice(cur, cfg, bp.Arg, bp.Arg2)
	case "/", "//", "/#", "/%":
		pat, err := evalRawText(cfg, bp.Arg)
		if err != nil {
			return "", err
		}
		with, err := evalRawText(cfg, bp.Arg2)
		if err != nil {
			return "", err
		}
		return replacePattern(cur, pat, with, bp.Op, cfg.Opts.ExtGlob), nil
	case "^", "^^", ",", ",,":
		return applyCase(cur, bp.Op), nil
	case "@":
		return applyAtTransform(cfg, name, cur, bp.Arg), nil
	}
	return cur, nil
}

func (c *Config) resolveScalarOrElem(name, index string) (string, error) {
	n, err := evalArith(c, index)
	if err != nil {
		// associative arrays use a string key, not an arithmetic index.
		key, kerr := evalRawText(c, index)
		if kerr != nil {
			return "", err
		}
		return c.DB.GetAssocElem(name, key), nil
	}
	if e := c.DB.Lookup(name); e != nil && e.Kind == core.KindAssocArray {
		return c.DB.GetAssocElem(name, index), nil
	}
	return c.DB.GetArrayElem(name, int(n)), nil
}

func evalSlice(cur string, cfg *Config, offRaw, lenRaw string) (string, error) {
	runes := []rune(cur)
	n := int64(len(runes))
	off, err := evalArith(cfg, offRaw)
	if err != nil {
		return "", err
	}
	if off < 0 {
		off += n
		if off < 0 {
			off = 0
		}
	}
	if off > n {
		off = n
	}
	end := n
	if lenRaw != "" {
		length, err := evalArith(cfg, lenRaw)
		if err != nil {
			return "", err
		}
		if length < 0 {
			end = n + length
		} else {
			end = off + length
		}
		if end > n {
			end = n
		}
		if end < off {
			end = off
		}
	}
	return string(runes[off:end]), nil
}

func replacePattern(cur, pat, with, op string, extglob bool) string {
	anchorStart, anchorEnd := false, false
	switch op {
	case "/#":
		anchorStart = true
	case "/%":
		anchorEnd = true
	}
	all := op == "//"
	src, err := globToRegexp(pat, extglob, true)
	if err != nil {
		return cur
	}
	finder, err := regexp.Compile(src)
	if err != nil {
		return cur
	}
	var out strings.Builder
	rest := cur
	replaced := false
	for {
		loc := finder.FindStringIndex(rest)
		if loc == nil {
			out.WriteString(rest)
			break
		}
		if anchorStart && loc[0] != 0 {
			out.WriteString(rest)
			break
		}
		if anchorEnd && loc[1] != len(rest) {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:loc[0]])
		out.WriteString(with)
		rest = rest[loc[1]:]
		replaced = true
		if !all || anchorStart || anchorEnd {
			out.WriteString(rest)
			break
		}
		if loc[0] == loc[1] {
			if rest == "" {
				break
			}
			out.WriteByte(rest[0])
			rest = rest[1:]
		}
	}
	if !replaced {
		return cur
	}
	return out.String()
}

func applyCase(s, op string) string {
	switch op {
	case "^":
		return mapFirst(s, strings.ToUpper)
	case "^^":
		return strings.ToUpper(s)
	case ",":
		return mapFirst(s, strings.ToLower)
	case ",,":
		return strings.ToLower(s)
	}
	return s
}

func mapFirst(s string, f func(string) string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return f(string(r[0])) + string(r[1:])
}

func applyAtTransform(cfg *Config, name, cur, arg string) string {
	switch arg {
	case "Q":
		return quoteForReuse(cur)
	case "E":
		return cur
	case "U":
		return strings.ToUpper(cur)
	case "L":
		return strings.ToLower(cur)
	case "u":
		return mapFirst(cur, strings.ToUpper)
	case "a":
		return "-"
	}
	return cur
}

func quoteForReuse(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			b.WriteString(`'\''`)
			continue
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('\'')
	return b.String()
}
