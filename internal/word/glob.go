// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package word

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// globToRegexp translates one bash glob/extglob pattern into a Go regexp
// source string. greedy controls whether `*` (and extglob repetition
// groups) are translated greedy or lazy, which is how longest-match
// (##, %%) vs shortest-match (#, %) pattern removal share one translator.
func globToRegexp(pat string, extglob, greedy bool) (string, error) {
	var b strings.Builder
	star := "*"
	if !greedy {
		star = "*?"
	}
	i := 0
	for i < len(pat) {
		c := pat[i]
		switch {
		case c == '\\' && i+1 < len(pat):
			b.WriteString(regexp.QuoteMeta(string(pat[i+1])))
			i += 2
		case c == '*' && !(extglob && i+1 < len(pat) && pat[i+1] == '('):
			b.WriteString("." + star)
			i++
		case c == '?' && !(extglob && i+1 < len(pat) && pat[i+1] == '('):
			b.WriteString(".")
			i++
		case c == '[':
			j := i + 1
			if j < len(pat) && (pat[j] == '!' || pat[j] == '^') {
				j++
			}
			if j < len(pat) && pat[j] == ']' {
				j++
			}
			for j < len(pat) && pat[j] != ']' {
				j++
			}
			if j >= len(pat) {
				b.WriteString(regexp.QuoteMeta("["))
				i++
				continue
			}
			cls := pat[i+1 : j]
			cls = strings.Replace(cls, "\\", "\\\\", -1)
			if strings.HasPrefix(cls, "!") {
				cls = "^" + cls[1:]
			}
			b.WriteString("[" + cls + "]")
			i = j + 1
		case extglob && (c == '?' || c == '*' || c == '+' || c == '@' || c == '!') && i+1 < len(pat) && pat[i+1] == '(':
			end := matchParen(pat, i+1)
			if end < 0 {
				b.WriteString(regexp.QuoteMeta(string(c)))
				i++
				continue
			}
			alts := splitTop(pat[i+2 : end])
			var sub []string
			for _, a := range alts {
				s, err := globToRegexp(a, extglob, greedy)
				if err != nil {
					return "", err
				}
				sub = append(sub, s)
			}
			group := "(?:" + strings.Join(sub, "|") + ")"
			switch c {
			case '?':
				b.WriteString(group + "?")
			case '*':
				b.WriteString(group + star)
			case '+':
				b.WriteString(group + "+")
				if !greedy {
					b.WriteString("?")
				}
			case '@':
				b.WriteString(group)
			case '!':
				b.WriteString(".*") // negation groups are approximated as wildcard
			}
			i = end + 1
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
			i++
		}
	}
	return b.String(), nil
}

func matchParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func splitTop(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case '|':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

// CompilePattern builds a whole-string matcher for pat.
func CompilePattern(pat string, extglob, nocase bool) (*regexp.Regexp, error) {
	src, err := globToRegexp(pat, extglob, true)
	if err != nil {
		return nil, err
	}
	if nocase {
		src = "(?i)" + src
	}
	return regexp.Compile("^" + src + "$")
}

// MatchPattern reports whether s matches the whole glob pattern pat.
func MatchPattern(pat, s string, extglob, nocase bool) bool {
	re, err := CompilePattern(pat, extglob, nocase)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

// TrimPrefixPattern removes a prefix of s matching pat, longest or shortest
// per greedy, implementing ${v#pat}/${v##pat}.
func TrimPrefixPattern(s, pat string, extglob bool, greedy bool) string {
	src, err := globToRegexp(pat, extglob, true)
	if err != nil {
		return s
	}
	re, err := regexp.Compile("^(?:" + src + ")")
	if err != nil {
		return s
	}
	if greedy {
		if loc := re.FindStringIndex(s); loc != nil {
			return s[loc[1]:]
		}
		return s
	}
	for i := 0; i <= len(s); i++ {
		if MatchPattern(pat, s[:i], extglob, false) {
			return s[i:]
		}
	}
	return s
}

// TrimSuffixPattern removes a suffix of s matching pat, longest or shortest
// per greedy, implementing ${v%pat}/${v%%pat}.
func TrimSuffixPattern(s, pat string, extglob bool, greedy bool) string {
	if greedy {
		for i := 0; i <= len(s); i++ {
			if MatchPattern(pat, s[i:], extglob, false) {
				return s[:i]
			}
		}
		return s
	}
	for i := len(s); i >= 0; i-- {
		if MatchPattern(pat, s[i:], extglob, false) {
			return s[:i]
		}
	}
	return s
}

// globExpand performs pathname expansion on a single field. It returns nil
// (meaning "leave unchanged") when the field has no glob metacharacters or
// nothing matched and nullglob is off.
func globExpand(cfg *Config, field string) []string {
	hasMeta := strings.ContainsAny(field, "*?[")
	if !hasMeta && cfg.Opts.ExtGlob {
		hasMeta = strings.ContainsAny(field, "+@!") && strings.Contains(field, "(")
	}
	if !hasMeta {
		return nil
	}
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	abs := field
	base := dir
	if strings.HasPrefix(field, "/") {
		base = "/"
	}
	comps := strings.Split(strings.TrimPrefix(abs, "/"), "/")
	matches := []string{base}
	if base == "/" {
		matches = []string{""}
	} else if base == "." {
		matches = []string{""}
	}
	for ci, comp := range comps {
		if comp == "" {
			continue
		}
		globstarComp := cfg.Opts.GlobStar && comp == "**"
		var next []string
		for _, m := range matches {
			searchDir := m
			if searchDir == "" {
				searchDir = "."
			}
			if globstarComp {
				walked := walkAll(searchDir)
				next = append(next, walked...)
				continue
			}
			entries, err := os.ReadDir(searchDir)
			if err != nil {
				continue
			}
			isLast := ci == len(comps)-1
			for _, e := range entries {
				name := e.Name()
				if strings.HasPrefix(name, ".") && !strings.HasPrefix(comp, ".") {
					continue
				}
				if !MatchPattern(comp, name, cfg.Opts.ExtGlob, cfg.Opts.NoCaseGlob) {
					continue
				}
				if !isLast && !e.IsDir() {
					continue
				}
				next = append(next, joinMatch(m, name))
			}
		}
		matches = next
		if matches == nil {
			break
		}
	}
	if len(matches) == 0 {
		if cfg.Opts.NullGlob {
			return []string{}
		}
		return nil
	}
	sort.Strings(matches)
	return matches
}

func joinMatch(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

func walkAll(root string) []string {
	var out []string
	filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || p == root {
			return nil
		}
		out = append(out, strings.TrimPrefix(p, root+"/"))
		return nil
	})
	return out
}
