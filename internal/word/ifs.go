// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package word

import "strings"

func isWSByte(c byte) bool { return c == ' ' || c == '\t' || c == '\n' }

func classifyIFS(ifs string) (ws, nws string) {
	for i := 0; i < len(ifs); i++ {
		c := ifs[i]
		if isWSByte(c) {
			ws += string(c)
		} else {
			nws += string(c)
		}
	}
	return ws, nws
}

// SplitIFS splits s on $IFS the way unquoted field splitting does: runs of
// IFS-whitespace collapse to one boundary (and are trimmed from both
// ends), while a non-whitespace IFS character is itself one boundary, and
// may absorb trailing IFS-whitespace.
func SplitIFS(s, ifs string) []string {
	if ifs == "" {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	ws, nws := classifyIFS(ifs)
	allWS := nws == ""
	if allWS {
		return strings.FieldsFunc(s, func(r rune) bool { return strings.ContainsRune(ifs, r) })
	}
	trimmed := strings.Trim(s, ws)
	if trimmed == "" {
		return nil
	}
	var fields []string
	var cur strings.Builder
	i, n := 0, len(trimmed)
	for i < n {
		c := trimmed[i]
		if strings.IndexByte(nws, c) >= 0 || strings.IndexByte(ws, c) >= 0 {
			fields = append(fields, cur.String())
			cur.Reset()
			i++
			for i < n && strings.IndexByte(ws, trimmed[i]) >= 0 {
				i++
			}
			continue
		}
		cur.WriteByte(c)
		i++
	}
	fields = append(fields, cur.String())
	return fields
}

// SplitIFSN behaves like SplitIFS but stops after producing n-1 boundaries;
// everything from that point on, minus any leading and trailing
// IFS-whitespace, becomes the final field. This is the algorithm `read` uses to assign
// trailing input to its last variable (spec §8 scenario 8).
func SplitIFSN(s, ifs string, n int) []string {
	if n <= 0 {
		return nil
	}
	if ifs == "" {
		return []string{s}
	}
	ws, nws := classifyIFS(ifs)
	s = strings.TrimLeft(s, ws)
	var fields []string
	i, ln := 0, len(s)
	for len(fields) < n-1 && i < ln {
		start := i
		for i < ln && strings.IndexByte(ws, s[i]) < 0 && strings.IndexByte(nws, s[i]) < 0 {
			i++
		}
		fields = append(fields, s[start:i])
		if i >= ln {
			break
		}
		i++ // consume the single delimiter char
		for i < ln && strings.IndexByte(ws, s[i]) >= 0 {
			i++
		}
	}
	rest := s[i:]
	rest = strings.TrimRight(rest, ws)
	if len(fields) < n {
		fields = append(fields, rest)
	}
	return fields
}
