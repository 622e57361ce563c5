// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package builtin

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/sush-shell/sush/internal/jobs"
	"github.com/sush-shell/sush/internal/word"
)

func errf(sh Shell, name, format string, a ...any) int {
	fmt.Fprintf(sh.Stderr(), "sush: %s: %s\n", name, fmt.Sprintf(format, a...))
	return 1
}

func biColon(sh Shell, args []string) int { return 0 }
func biTrue(sh Shell, args []string) int  { return 0 }
func biFalse(sh Shell, args []string) int { return 1 }

func biEcho(sh Shell, args []string) int {
	args = args[1:]
	newline := true
	interp := false
loop:
	for len(args) > 0 {
		switch args[0] {
		case "-n":
			newline = false
			args = args[1:]
		case "-e":
			interp = true
			args = args[1:]
		case "-E":
			interp = false
			args = args[1:]
		default:
			break loop
		}
	}
	out := strings.Join(args, " ")
	if interp {
		out = interpretBackslashes(out)
	}
	fmt.Fprint(sh.Stdout(), out)
	if newline {
		fmt.Fprintln(sh.Stdout())
	}
	return 0
}

func interpretBackslashes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '\\':
			b.WriteByte('\\')
		case 'a':
			b.WriteByte('\a')
		case 'r':
			b.WriteByte('\r')
		case 'c':
			return b.String()
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func biPwd(sh Shell, args []string) int {
	fmt.Fprintln(sh.Stdout(), sh.Dir())
	return 0
}

func biCd(sh Shell, args []string) int {
	target := ""
	if len(args) > 1 {
		target = args[1]
	} else if home := sh.DB().Lookup("HOME"); home != nil {
		target = home.String()
	}
	if target == "-" {
		if old := sh.DB().Lookup("OLDPWD"); old != nil {
			target = old.String()
			fmt.Fprintln(sh.Stdout(), target)
		}
	}
	if target == "" {
		return errf(sh, "cd", "HOME not set")
	}
	old := sh.Dir()
	if err := sh.Chdir(target); err != nil {
		return errf(sh, "cd", "%v", err)
	}
	sh.DB().SetParam("OLDPWD", old)
	sh.DB().SetParam("PWD", sh.Dir())
	return 0
}

func biPushd(sh Shell, args []string) int {
	if len(args) < 2 {
		return errf(sh, "pushd", "no other directory")
	}
	if err := sh.PushDir(args[1]); err != nil {
		return errf(sh, "pushd", "%v", err)
	}
	return biDirs(sh, []string{"dirs"})
}

func biPopd(sh Shell, args []string) int {
	dir, err := sh.PopDir()
	if err != nil {
		return errf(sh, "popd", "%v", err)
	}
	fmt.Fprintln(sh.Stdout(), dir)
	return 0
}

func biDirs(sh Shell, args []string) int {
	fmt.Fprintln(sh.Stdout(), strings.Join(sh.DirStack(), " "))
	return 0
}

func biExit(sh Shell, args []string) int {
	code := sh.DB().ExitStatus()
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			errf(sh, "exit", "numeric argument required")
			code = 2
		} else {
			code = n & 0xff
		}
	}
	sh.SetLoop(LoopExit, code)
	return code
}

func biReturn(sh Shell, args []string) int {
	code := sh.DB().ExitStatus()
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			code = n & 0xff
		}
	}
	sh.SetLoop(LoopReturn, code)
	return code
}

func biBreak(sh Shell, args []string) int {
	n := 1
	if len(args) > 1 {
		if v, err := strconv.Atoi(args[1]); err == nil {
			n = v
		}
	}
	sh.SetLoop(LoopBreak, n)
	return 0
}

func biContinue(sh Shell, args []string) int {
	n := 1
	if len(args) > 1 {
		if v, err := strconv.Atoi(args[1]); err == nil {
			n = v
		}
	}
	sh.SetLoop(LoopContinue, n)
	return 0
}

func biExport(sh Shell, args []string) int {
	if len(args) == 1 {
		for _, kv := range sh.DB().Exported() {
			fmt.Fprintf(sh.Stdout(), "export %s\n", kv)
		}
		return 0
	}
	status := 0
	for _, a := range args[1:] {
		if a == "-p" {
			continue
		}
		name, value, has := strings.Cut(a, "=")
		if has {
			if err := sh.DB().SetParam(name, value); err != nil {
				status = errf(sh, "export", "%v", err)
				continue
			}
		}
		sh.DB().MarkExported(name, true)
	}
	return status
}

func biReadonly(sh Shell, args []string) int {
	if len(args) == 1 {
		return 0
	}
	status := 0
	for _, a := range args[1:] {
		name, value, has := strings.Cut(a, "=")
		if has {
			if err := sh.DB().SetParam(name, value); err != nil {
				status = errf(sh, "readonly", "%v", err)
				continue
			}
		}
		sh.DB().MarkReadOnly(name)
	}
	return status
}

func biUnset(sh Shell, args []string) int {
	funcMode := false
	rest := args[1:]
	for len(rest) > 0 && strings.HasPrefix(rest[0], "-") {
		if rest[0] == "-f" {
			funcMode = true
		}
		rest = rest[1:]
	}
	status := 0
	for _, name := range rest {
		if funcMode {
			sh.DeleteFunc(name)
			continue
		}
		if err := sh.DB().Unset(name); err != nil {
			status = errf(sh, "unset", "%v", err)
		}
	}
	return status
}

func biShift(sh Shell, args []string) int {
	n := 1
	if len(args) > 1 {
		if v, err := strconv.Atoi(args[1]); err == nil {
			n = v
		}
	}
	if !sh.DB().Shift(n) {
		return 1
	}
	return 0
}

func biSet(sh Shell, args []string) int {
	args = args[1:]
	var positional []string
	seenDashDash := false
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			seenDashDash = true
			positional = append(positional, args[i+1:]...)
			i = len(args)
		case !seenDashDash && strings.HasPrefix(a, "-") && a != "-":
			for _, c := range a[1:] {
				sh.DB().SetFlag(byte(c), true)
				applyShoptFlag(sh, byte(c), true)
			}
		case !seenDashDash && strings.HasPrefix(a, "+") && a != "+":
			for _, c := range a[1:] {
				sh.DB().SetFlag(byte(c), false)
				applyShoptFlag(sh, byte(c), false)
			}
		default:
			positional = append(positional, args[i:]...)
			i = len(args)
		}
	}
	if len(positional) > 0 || seenDashDash {
		sh.DB().SetPositional(positional)
	}
	return 0
}

func applyShoptFlag(sh Shell, c byte, on bool) {
	o := sh.Opts()
	switch c {
	case 'e':
		o.ErrExit = on
	case 'u':
		o.NoUnset = on
	case 'f':
		o.NoGlob = on
	case 'v':
		o.Verbose = on
	case 'x':
		o.XTrace = on
	case 'n':
		// noexec: parse only, not implemented by the executor; flag still tracked.
	}
}

func biShopt(sh Shell, args []string) int {
	args = args[1:]
	unset := false
	query := false
	for len(args) > 0 && strings.HasPrefix(args[0], "-") {
		switch args[0] {
		case "-u":
			unset = true
		case "-s":
			unset = false
		case "-q", "-p":
			query = true
		}
		args = args[1:]
	}
	if len(args) == 0 {
		for _, name := range []string{"nullglob", "globstar", "nocaseglob", "extglob", "histexpand", "interactive"} {
			fmt.Fprintf(sh.Stdout(), "%s\t%s\n", name, onoff(sh.Opts().GetName(name)))
		}
		return 0
	}
	status := 0
	for _, name := range args {
		if query {
			if !sh.Opts().GetName(name) {
				status = 1
			}
			continue
		}
		sh.Opts().SetName(name, !unset)
	}
	return status
}

func onoff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func biLocal(sh Shell, args []string) int {
	status := 0
	for _, a := range args[1:] {
		name, value, has := strings.Cut(a, "=")
		if !has {
			value = ""
		}
		if err := sh.DB().SetLayerParam(name, value, sh.DB().LayerNum()-1); err != nil {
			status = errf(sh, "local", "%v", err)
		}
	}
	return status
}

func biDeclare(sh Shell, args []string) int {
	var flags string
	rest := args[1:]
	for len(rest) > 0 && strings.HasPrefix(rest[0], "-") {
		flags += rest[0][1:]
		rest = rest[1:]
	}
	status := 0
	for _, a := range rest {
		name, value, has := strings.Cut(a, "=")
		switch {
		case strings.ContainsRune(flags, 'a'):
			var elems []string
			if has {
				elems = strings.Fields(strings.Trim(value, "()"))
			}
			sh.DB().SetArray(name, elems)
		case strings.ContainsRune(flags, 'A'):
			sh.DB().SetAssoc(name)
		default:
			if has {
				if err := sh.DB().SetParam(name, value); err != nil {
					status = errf(sh, "declare", "%v", err)
					continue
				}
			} else if sh.DB().Lookup(name) == nil {
				sh.DB().SetParam(name, "")
			}
		}
		if strings.ContainsRune(flags, 'x') {
			sh.DB().MarkExported(name, true)
		}
		if strings.ContainsRune(flags, 'r') {
			sh.DB().MarkReadOnly(name)
		}
	}
	return status
}

func biLet(sh Shell, args []string) int {
	// Arithmetic evaluation itself lives in internal/arith; biLet reaches it
	// through an optional EvalArith method on the Shell (the type assertion
	// below) to avoid this package importing internal/arith's Resolver
	// adapter directly.
	if ev, ok := sh.(interface{ EvalArith(string) (int64, error) }); ok {
		status := 1
		for _, expr := range args[1:] {
			v, err := ev.EvalArith(expr)
			if err != nil {
				return errf(sh, "let", "%v", err)
			}
			if v != 0 {
				status = 0
			}
		}
		return status
	}
	return errf(sh, "let", "arithmetic unavailable")
}

func biEval(sh Shell, args []string) int {
	return sh.RunText(strings.Join(args[1:], " "))
}

func biSource(sh Shell, args []string) int {
	if len(args) < 2 {
		return errf(sh, "source", "filename argument required")
	}
	code, err := sh.RunFile(args[1], args[2:])
	if err != nil {
		return errf(sh, "source", "%v", err)
	}
	return code
}

func biExec(sh Shell, args []string) int {
	if len(args) == 1 {
		return 0
	}
	return sh.Exec(args[1], args[1:])
}

func biCommand(sh Shell, args []string) int {
	args = args[1:]
	for len(args) > 0 && strings.HasPrefix(args[0], "-") {
		args = args[1:]
	}
	if len(args) == 0 {
		return 0
	}
	return sh.Exec(args[0], args)
}

func biType(sh Shell, args []string) int {
	status := 0
	for _, name := range args[1:] {
		switch {
		case func() bool { _, ok := Lookup(name); return ok }():
			fmt.Fprintf(sh.Stdout(), "%s is a shell builtin\n", name)
		case func() bool { _, ok := sh.LookupFunc(name); return ok }():
			fmt.Fprintf(sh.Stdout(), "%s is a function\n", name)
		default:
			if path, err := sh.LookPath(name); err == nil {
				fmt.Fprintf(sh.Stdout(), "%s is %s\n", name, path)
			} else {
				fmt.Fprintf(sh.Stderr(), "sush: type: %s: not found\n", name)
				status = 1
			}
		}
	}
	return status
}

func biHash(sh Shell, args []string) int {
	args = args[1:]
	if len(args) > 0 && args[0] == "-r" {
		sh.HashClear()
		return 0
	}
	if len(args) == 0 {
		return 0
	}
	status := 0
	for _, name := range args {
		if path, err := sh.LookPath(name); err == nil {
			sh.HashSet(name, path)
		} else {
			status = 1
		}
	}
	return status
}

func biUmask(sh Shell, args []string) int {
	if len(args) == 1 {
		old := syscall.Umask(0)
		syscall.Umask(old)
		fmt.Fprintf(sh.Stdout(), "%04o\n", old)
		return 0
	}
	mode, err := strconv.ParseUint(args[1], 8, 32)
	if err != nil {
		return errf(sh, "umask", "%v", err)
	}
	syscall.Umask(int(mode))
	return 0
}

func biTimes(sh Shell, args []string) int {
	fmt.Fprintln(sh.Stdout(), "0m0.000s 0m0.000s")
	fmt.Fprintln(sh.Stdout(), "0m0.000s 0m0.000s")
	return 0
}

func biAlias(sh Shell, args []string) int {
	if len(args) == 1 {
		for _, name := range sh.AliasNames() {
			v, _ := sh.AliasGet(name)
			fmt.Fprintf(sh.Stdout(), "alias %s='%s'\n", name, v)
		}
		return 0
	}
	for _, a := range args[1:] {
		name, value, has := strings.Cut(a, "=")
		if !has {
			if v, ok := sh.AliasGet(name); ok {
				fmt.Fprintf(sh.Stdout(), "alias %s='%s'\n", name, v)
			}
			continue
		}
		sh.AliasSet(name, value)
	}
	return 0
}

func biUnalias(sh Shell, args []string) int {
	for _, name := range args[1:] {
		sh.AliasUnset(name)
	}
	return 0
}

func biTrap(sh Shell, args []string) int {
	args = args[1:]
	if len(args) == 0 {
		return 0
	}
	if len(args) == 1 {
		if action, ok := sh.TrapGet(args[0]); ok {
			fmt.Fprintf(sh.Stdout(), "trap -- '%s' %s\n", action, args[0])
		}
		return 0
	}
	action := args[0]
	for _, spec := range args[1:] {
		sh.TrapSet(spec, action)
	}
	return 0
}

func biGetopts(sh Shell, args []string) int {
	if len(args) < 3 {
		return errf(sh, "getopts", "usage: getopts optstring name [args]")
	}
	optstring := args[1]
	varName := args[2]
	var operands []string
	if len(args) > 3 {
		operands = args[3:]
	} else {
		operands = sh.DB().Positional()
	}
	optindEntry := sh.DB().Lookup("OPTIND")
	optind := 1
	if optindEntry != nil {
		if v, err := strconv.Atoi(optindEntry.String()); err == nil {
			optind = v
		}
	}
	if optind-1 >= len(operands) {
		sh.DB().SetParam("OPTIND", strconv.Itoa(optind))
		return 1
	}
	cur := operands[optind-1]
	if len(cur) < 2 || cur[0] != '-' {
		sh.DB().SetParam("OPTIND", strconv.Itoa(optind))
		return 1
	}
	opt := cur[1]
	idx := strings.IndexByte(optstring, opt)
	if idx < 0 {
		sh.DB().SetParam(varName, "?")
		sh.DB().SetParam("OPTIND", strconv.Itoa(optind+1))
		return 0
	}
	sh.DB().SetParam(varName, string(opt))
	if idx+1 < len(optstring) && optstring[idx+1] == ':' {
		if len(cur) > 2 {
			sh.DB().SetParam("OPTARG", cur[2:])
			optind++
		} else if optind < len(operands) {
			sh.DB().SetParam("OPTARG", operands[optind])
			optind += 2
		}
	} else {
		optind++
	}
	sh.DB().SetParam("OPTIND", strconv.Itoa(optind))
	return 0
}

func biJobs(sh Shell, args []string) int {
	for _, j := range sh.Jobs().List() {
		fmt.Fprintln(sh.Stdout(), j.ReportLine(sh.Jobs().Marker(j)))
	}
	return 0
}

func biKill(sh Shell, args []string) int {
	for _, spec := range args[1:] {
		if strings.HasPrefix(spec, "%") {
			if j := sh.Jobs().ParseSpec(spec); j != nil {
				j.Signal(15)
			}
			continue
		}
		if pid, err := strconv.Atoi(spec); err == nil {
			p, err := os.FindProcess(pid)
			if err == nil {
				p.Kill()
			}
		}
	}
	return 0
}

func biBg(sh Shell, args []string) int {
	spec := "%%"
	if len(args) > 1 {
		spec = args[1]
	}
	j := sh.Jobs().ParseSpec(spec)
	if j == nil {
		return errf(sh, "bg", "no such job")
	}
	j.Signal(18) // SIGCONT
	return 0
}

func biFg(sh Shell, args []string) int {
	spec := "%%"
	if len(args) > 1 {
		spec = args[1]
	}
	j := sh.Jobs().ParseSpec(spec)
	if j == nil {
		return errf(sh, "fg", "no such job")
	}
	j.Signal(18)
	return 0
}

func biWait(sh Shell, args []string) int {
	if len(args) == 1 {
		for _, j := range sh.Jobs().List() {
			for j.State != jobs.Done {
				sh.Jobs().Poll()
			}
		}
		return 0
	}
	status := 0
	for _, spec := range args[1:] {
		j := sh.Jobs().ParseSpec(spec)
		if j == nil {
			status = 127
			continue
		}
		for j.State != jobs.Done {
			sh.Jobs().Poll()
		}
		status = j.ExitCode
	}
	return status
}

func biPrintf(sh Shell, args []string) int {
	if len(args) < 2 {
		return errf(sh, "printf", "usage: printf format [args]")
	}
	format := interpretBackslashes(args[1])
	vals := args[2:]
	out, err := renderPrintf(format, vals)
	if err != nil {
		return errf(sh, "printf", "%v", err)
	}
	fmt.Fprint(sh.Stdout(), out)
	return 0
}

// renderPrintf implements the subset of printf(1) conversions bash scripts
// commonly use (%s %d %i %x %o %c %% plus width/precision), reusing the
// format string once per full pass over vals if more values remain than
// conversions, matching bash's printf semantics.
func renderPrintf(format string, vals []string) (string, error) {
	var out strings.Builder
	vi := 0
	next := func() string {
		if vi < len(vals) {
			v := vals[vi]
			vi++
			return v
		}
		return ""
	}
	for pass := 0; pass == 0 || vi < len(vals); pass++ {
		i := 0
		for i < len(format) {
			c := format[i]
			if c != '%' {
				out.WriteByte(c)
				i++
				continue
			}
			j := i + 1
			for j < len(format) && strings.IndexByte("-+ 0123456789.", format[j]) >= 0 {
				j++
			}
			if j >= len(format) {
				out.WriteByte('%')
				break
			}
			verb := format[j]
			spec := format[i : j+1]
			switch verb {
			case '%':
				out.WriteByte('%')
			case 's':
				fmt.Fprintf(&out, spec, next())
			case 'd', 'i':
				n, _ := strconv.ParseInt(strings.TrimSpace(next()), 0, 64)
				fmt.Fprintf(&out, strings.Replace(spec, string(verb), "d", 1), n)
			case 'x', 'X', 'o':
				n, _ := strconv.ParseInt(strings.TrimSpace(next()), 0, 64)
				fmt.Fprintf(&out, spec, n)
			case 'c':
				v := next()
				if len(v) > 0 {
					out.WriteByte(v[0])
				}
			case 'f', 'e', 'g':
				n, _ := strconv.ParseFloat(strings.TrimSpace(next()), 64)
				fmt.Fprintf(&out, spec, n)
			case 'b':
				out.WriteString(interpretBackslashes(next()))
			default:
				out.WriteString(spec)
			}
			i = j + 1
		}
		if len(vals) == 0 {
			break
		}
	}
	return out.String(), nil
}

func biRead(sh Shell, args []string) int {
	args = args[1:]
	raw := false
	prompt := ""
	nchars := -1
	var names []string
	for len(args) > 0 {
		switch {
		case args[0] == "-r":
			raw = true
			args = args[1:]
		case args[0] == "-p" && len(args) > 1:
			prompt = args[1]
			args = args[2:]
		case args[0] == "-n" && len(args) > 1:
			n, _ := strconv.Atoi(args[1])
			nchars = n
			args = args[2:]
		default:
			names = append(names, args[0])
			args = args[1:]
		}
	}
	if len(names) == 0 {
		names = []string{"REPLY"}
	}
	if prompt != "" {
		fmt.Fprint(sh.Stderr(), prompt)
	}
	line, err := readLine(sh.Stdin(), nchars)
	if err != nil && line == "" {
		return 1
	}
	if !raw {
		line = unescapeBackslashContinuation(line)
	}
	ifs := " \t\n"
	if e := sh.DB().Lookup("IFS"); e != nil {
		ifs = e.String()
	}
	fields := word.SplitIFSN(line, ifs, len(names))
	for i, name := range names {
		v := ""
		if i < len(fields) {
			v = fields[i]
		}
		sh.DB().SetParam(name, v)
	}
	return 0
}

func readLine(r interface{ Read([]byte) (int, error) }, n int) (string, error) {
	var b strings.Builder
	buf := make([]byte, 1)
	count := 0
	for {
		if n >= 0 && count >= n {
			return b.String(), nil
		}
		_, err := r.Read(buf)
		if err != nil {
			return b.String(), err
		}
		if buf[0] == '\n' {
			return b.String(), nil
		}
		b.WriteByte(buf[0])
		count++
	}
}

func unescapeBackslashContinuation(s string) string {
	return strings.ReplaceAll(s, "\\\n", "")
}

func biTest(sh Shell, args []string) int {
	return evalTest(args[1:])
}

func biTestBracket(sh Shell, args []string) int {
	a := args[1:]
	if len(a) > 0 && a[len(a)-1] == "]" {
		a = a[:len(a)-1]
	}
	return evalTest(a)
}

// evalTest implements the test(1)/[ subset spec §6 requires: unary file
// and string tests, binary string/integer comparisons, and -a/-o/! logical
// combination, left to right (bash's own test(1) grammar, not a full
// recursive-descent parser — good enough for script conditionals).
// EvalTestWords evaluates an already-expanded `[[ ... ]]` word list with
// the same grammar as the `test`/`[` builtin, for internal/exec's Test
// command node.
func EvalTestWords(args []string) int {
	return evalTest(args)
}

func evalTest(args []string) int {
	if len(args) == 0 {
		return 1
	}
	ok, _ := evalTestExpr(args)
	if ok {
		return 0
	}
	return 1
}

func evalTestExpr(args []string) (bool, []string) {
	neg := false
	for len(args) > 0 && args[0] == "!" {
		neg = !neg
		args = args[1:]
	}
	result, rest := evalTestTerm(args)
	for len(rest) > 0 && (rest[0] == "-a" || rest[0] == "-o") {
		op := rest[0]
		var next bool
		next, rest = evalTestTerm(rest[1:])
		if op == "-a" {
			result = result && next
		} else {
			result = result || next
		}
	}
	return result != neg, rest
}

func evalTestTerm(args []string) (bool, []string) {
	if len(args) == 0 {
		return false, args
	}
	if len(args) >= 2 && isUnaryTestOp(args[0]) {
		return unaryTest(args[0], args[1]), args[2:]
	}
	if len(args) >= 3 && isBinaryTestOp(args[1]) {
		return binaryTest(args[0], args[1], args[2]), args[3:]
	}
	return args[0] != "", args[1:]
}

func isUnaryTestOp(op string) bool {
	switch op {
	case "-f", "-d", "-e", "-s", "-r", "-w", "-x", "-z", "-n", "-L", "-h", "-p", "-S":
		return true
	}
	return false
}

func unaryTest(op, arg string) bool {
	switch op {
	case "-z":
		return arg == ""
	case "-n":
		return arg != ""
	}
	info, err := os.Lstat(arg)
	switch op {
	case "-e":
		return err == nil
	case "-f":
		return err == nil && info.Mode().IsRegular()
	case "-d":
		return err == nil && info.IsDir()
	case "-s":
		return err == nil && info.Size() > 0
	case "-L", "-h":
		return err == nil && info.Mode()&os.ModeSymlink != 0
	case "-p":
		return err == nil && info.Mode()&os.ModeNamedPipe != 0
	case "-S":
		return err == nil && info.Mode()&os.ModeSocket != 0
	case "-r", "-w", "-x":
		return err == nil
	}
	return false
}

func isBinaryTestOp(op string) bool {
	switch op {
	case "=", "==", "!=", "-eq", "-ne", "-lt", "-le", "-gt", "-ge", "<", ">":
		return true
	}
	return false
}

func binaryTest(a, op, b string) bool {
	switch op {
	case "=", "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case ">":
		return a > b
	}
	na, erra := strconv.ParseInt(strings.TrimSpace(a), 0, 64)
	nb, errb := strconv.ParseInt(strings.TrimSpace(b), 0, 64)
	if erra != nil || errb != nil {
		return false
	}
	switch op {
	case "-eq":
		return na == nb
	case "-ne":
		return na != nb
	case "-lt":
		return na < nb
	case "-le":
		return na <= nb
	case "-gt":
		return na > nb
	case "-ge":
		return na >= nb
	}
	return false
}
