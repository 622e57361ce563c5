// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package term

import (
	"os"
	"strconv"
	"strings"
)

// PromptVars carries the pieces of interpreter state a prompt escape can
// reference, gathered once per prompt rather than having ExpandPrompt reach
// back into internal/core itself (this package stays independent of
// internal/core so cmd/sush can wire whichever Database it has).
type PromptVars struct {
	User       string
	Host       string
	Dir        string
	Home       string
	IsRoot     bool
	ExitStatus int
}

// ExpandPrompt renders tpl (the raw value of $PS1/$PS2/$PS4) by substituting
// the small set of backslash escapes original_source's terminal feeder
// recognizes beyond the teacher/spec's treatment of PS1/PS2/PS4 as opaque
// strings (_examples/mvdan-sh/interp/trace.go prints PS4 as-is): `\u`
// (user), `\h` (hostname up to the first dot), `\H` (full hostname), `\w`
// (working directory, `~`-collapsed under $HOME), `\W` (last component of
// that), `\$` (`#` for root, `$` otherwise), `\?` (last exit status), `\n`
// (newline) and `\\` (a backslash). Any other escape, `\!` and `\#`
// included, passes its backslash through unchanged.
func ExpandPrompt(tpl string, v PromptVars) string {
	var b strings.Builder
	for i := 0; i < len(tpl); i++ {
		c := tpl[i]
		if c != '\\' || i+1 >= len(tpl) {
			b.WriteByte(c)
			continue
		}
		i++
		switch tpl[i] {
		case 'u':
			b.WriteString(v.User)
		case 'h':
			host := v.Host
			if idx := strings.IndexByte(host, '.'); idx >= 0 {
				host = host[:idx]
			}
			b.WriteString(host)
		case 'H':
			b.WriteString(v.Host)
		case 'w':
			b.WriteString(collapseHome(v.Dir, v.Home))
		case 'W':
			dir := collapseHome(v.Dir, v.Home)
			if idx := strings.LastIndexByte(dir, '/'); idx >= 0 && idx+1 < len(dir) {
				dir = dir[idx+1:]
			}
			b.WriteString(dir)
		case '$':
			if v.IsRoot {
				b.WriteByte('#')
			} else {
				b.WriteByte('$')
			}
		case 'n':
			b.WriteByte('\n')
		case '?':
			b.WriteString(strconv.Itoa(v.ExitStatus))
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte('\\')
			b.WriteByte(tpl[i])
		}
	}
	return b.String()
}

func collapseHome(dir, home string) string {
	if home == "" || dir == "" {
		return dir
	}
	if dir == home {
		return "~"
	}
	if strings.HasPrefix(dir, home+"/") {
		return "~" + dir[len(home):]
	}
	return dir
}

// CurrentPromptVars fills in the OS-level fields of PromptVars (user,
// host, home) once at startup; Dir and ExitStatus are refreshed by the
// caller before each prompt since they change every command.
func CurrentPromptVars() PromptVars {
	host, _ := os.Hostname()
	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("LOGNAME")
	}
	return PromptVars{
		User:   user,
		Host:   host,
		Home:   os.Getenv("HOME"),
		IsRoot: os.Geteuid() == 0,
	}
}
