// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package word

import "strings"

// Word is one raw token produced by the scanner, not yet expanded. AtStart
// marks words in command position (so a leading `~` is eligible for tilde
// expansion and a leading `=` after `~` inside an assignment is handled by
// the caller, not here).
type Word struct {
	Raw     string
	AtStart bool
}

// ExpandFields runs the full six-stage pipeline of spec §4.2 over w: brace
// expansion, tilde expansion, parameter/command/arithmetic expansion with
// field splitting, and pathname expansion, ending in quote removal (which
// happens implicitly: quoted runs are copied verbatim into the field text
// with no further splitting or globbing applied to them).
func (w *Word) ExpandFields(cfg *Config) ([]string, error) {
	var out []string
	for _, raw := range ExpandBraces(w.Raw) {
		fields, err := expandOneWord(cfg, raw, w.AtStart)
		if err != nil {
			return nil, err
		}
		out = append(out, fields...)
	}
	return out, nil
}

// ExpandScalar expands w the way an assignment RHS or a `case` pattern
// does: as a single string, with field splitting and pathname expansion
// suppressed (spec §4.2 "Assignment context").
func (w *Word) ExpandScalar(cfg *Config) (string, error) {
	expanded := ExpandBraces(w.Raw)
	raw := w.Raw
	if len(expanded) > 0 {
		raw = expanded[0]
	}
	parts, err := ParseRaw(raw, w.AtStart)
	if err != nil {
		return "", err
	}
	if len(parts) == 1 {
		if t, ok := parts[0].(*TildePrefix); ok {
			return homeDir(t.User), nil
		}
	}
	if tp, ok := firstTilde(parts); ok {
		parts = append([]Subword{&Literal{Value: homeDir(tp.User)}}, parts[1:]...)
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

func firstTilde(parts []Subword) (*TildePrefix, bool) {
	if len(parts) == 0 {
		return nil, false
	}
	t, ok := parts[0].(*TildePrefix)
	return t, ok
}

func expandOneWord(cfg *Config, raw string, atStart bool) ([]string, error) {
	parts, err := ParseRaw(raw, atStart)
	if err != nil {
		return nil, err
	}
	if fields, ok, err := wholeArrayFields(cfg, parts); ok {
		if err != nil {
			return nil, err
		}
		return fields, nil
	}
	runs, err := evalParts(cfg, parts)
	if err != nil {
		return nil, err
	}
	fs := splitRuns(cfg, runs)
	var out []string
	for _, f := range fs {
		if f.quotedOrigin || cfg.Opts.NoGlob {
			out = append(out, f.text)
			continue
		}
		matches := globExpand(cfg, f.text)
		if matches == nil {
			out = append(out, f.text)
		} else {
			out = append(out, matches...)
		}
	}
	return out, nil
}

// wholeArrayFields special-cases a word that is entirely $@, $*, "$@", "$*"
// or an array ref such as ${a[@]}/"${a[@]}" (see joinOrSplit): the $* forms
// join the elements into one field with the first $IFS character, "$@"
// gives one field per element, and an unquoted $@ splits and globs each
// element on its own.
func wholeArrayFields(cfg *Config, parts []Subword) ([]string, bool, error) {
	if len(parts) != 1 {
		return nil, false, nil
	}
	quoted := false
	p := parts[0]
	if dq, ok := p.(*DoubleQuoted); ok && len(dq.Parts) == 1 {
		p = dq.Parts[0]
		quoted = true
	}
	switch v := p.(type) {
	case *Parameter:
		if v.Name != "@" && v.Name != "*" {
			return nil, false, nil
		}
		arr := cfg.DB.Positional()
		return joinOrSplit(cfg, arr, v.Name, quoted), true, nil
	case *BracedParam:
		if v.Index != "@" && v.Index != "*" {
			return nil, false, nil
		}
		arr, _ := cfg.lookupArray(v.Name)
		return joinOrSplit(cfg, arr, v.Index, quoted), true, nil
	}
	return nil, false, nil
}

func joinOrSplit(cfg *Config, arr []string, sym string, quoted bool) []string {
	if sym == "*" {
		sep := " "
		if ifs := cfg.ifs(); ifs != "" {
			sep = ifs[:1]
		}
		return []string{strings.Join(arr, sep)}
	}
	if !quoted {
		// unquoted $@/${a[@]}: each element is its own word, still subject
		// to field splitting and globbing individually.
		var out []string
		for _, e := range arr {
			fs := splitRuns(cfg, []run{{text: e, quoted: false}})
			for _, f := range fs {
				if m := globExpand(cfg, f.text); m != nil {
					out = append(out, m...)
				} else {
					out = append(out, f.text)
				}
			}
		}
		return out
	}
	return append([]string{}, arr...)
}

type field struct {
	text         string
	quotedOrigin bool
}

func splitRuns(cfg *Config, runs []run) []field {
	ifs := cfg.ifs()
	var fields []field
	cur := field{}
	has := false
	for _, r := range runs {
		if r.quoted {
			cur.text += r.text
			cur.quotedOrigin = true
			has = true
			continue
		}
		if r.text == "" {
			continue
		}
		segs := SplitIFS(r.text, ifs)
		if len(segs) == 0 {
			continue
		}
		startsWithIFS := ifs != "" && strings.ContainsRune(ifs, rune(r.text[0]))
		for si, seg := range segs {
			if si > 0 || (si == 0 && startsWithIFS && has) {
				fields = append(fields, cur)
				cur = field{}
				has = false
			}
			if seg != "" {
				cur.text += seg
				has = true
			}
		}
	}
	if has || len(fields) == 0 {
		fields = append(fields, cur)
	}
	return fields
}
