// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

// Command sush is a small interactive, Bash-compatible shell built on top
// of internal/exec. Its flag surface and the choice of reading -c/stdin/a
// script path are grounded on the teacher's cmd/gosh/main.go (run/runPath/
// runInteractive), generalized from gosh's context.Context-cancellation
// model (gosh never backgrounds anything, so one ctx cancel is enough) to
// this shell's job-table-based cancellation and exit-status mapping.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	xterm "golang.org/x/term"

	"github.com/sush-shell/sush/internal/ast"
	"github.com/sush-shell/sush/internal/builtin"
	"github.com/sush-shell/sush/internal/exec"
	"github.com/sush-shell/sush/internal/feeder"
	"github.com/sush-shell/sush/internal/jobs"
	"github.com/sush-shell/sush/internal/term"
)

const version = "sush version 0.1.0"

var (
	flagC       = flag.String("c", "", "execute STRING instead of reading a script")
	flagI       = flag.Bool("i", false, "force interactive mode")
	flagV       = flag.Bool("v", false, "echo each input line before execution")
	flagX       = flag.Bool("x", false, "print each simple command after expansion")
	flagE       = flag.Bool("e", false, "exit on first non-zero simple command")
	flagU       = flag.Bool("u", false, "unset-variable use is an error")
	flagF       = flag.Bool("f", false, "disable pathname expansion")
	flagVersion = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Parse()
	if *flagVersion {
		fmt.Println(version)
		os.Exit(0)
	}
	os.Exit(run())
}

func run() int {
	args := flag.Args()
	switch {
	case *flagC != "":
		argv0, scriptArgs := "sush", []string(nil)
		if len(args) > 0 {
			argv0, scriptArgs = args[0], args[1:]
		}
		sh := newShell(argv0, scriptArgs)
		if *flagV {
			fmt.Fprintln(os.Stdout, *flagC)
		}
		return sh.RunText(*flagC)

	case len(args) > 0:
		sh := newShell(args[0], args[1:])
		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "sush:", err)
			return 127
		}
		if *flagV {
			fmt.Fprint(os.Stdout, string(data))
		}
		return sh.RunText(string(data))

	default:
		sh := newShell("sush", nil)
		if *flagI || xterm.IsTerminal(int(os.Stdin.Fd())) {
			return runInteractive(sh)
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, "sush:", err)
			return 1
		}
		if *flagV {
			fmt.Fprint(os.Stdout, string(data))
		}
		return sh.RunText(string(data))
	}
}

// newShell builds a Shell with the environment imported per spec §6
// ("Environment read at startup") and the CLI flags applied to its option
// bag, the way the teacher's interp.New(interp.Params(...)) applies -e/-u/
// -f/-v/-x equivalents up front rather than parsing them mid-run.
func newShell(argv0 string, args []string) *exec.Shell {
	sh := exec.New(argv0, args)
	importEnv(sh)
	opts := sh.Opts()
	opts.ErrExit = *flagE
	opts.NoUnset = *flagU
	opts.NoGlob = *flagF
	opts.Verbose = *flagV
	opts.XTrace = *flagX
	opts.Interactive = *flagI
	return sh
}

// importEnv copies the process environment into the Database as exported
// scalars, then fills in the handful of defaults spec §6 calls out
// (PS1/PS2/HISTFILE/HISTFILESIZE) when the parent environment left them
// unset, matching the teacher's expand.ListEnviron posture of treating the
// OS environment as the initial variable set rather than cherry-picking a
// handful of names.
func importEnv(sh *exec.Shell) {
	db := sh.DB()
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !validName(name) {
			continue
		}
		if db.SetParam(name, value) == nil {
			db.MarkExported(name, true)
		}
	}
	db.SetParam("PWD", sh.Dir())
	if db.GetParam("PS1") == "" {
		db.SetParam("PS1", `\u@\h:\w\$ `)
	}
	if db.GetParam("PS2") == "" {
		db.SetParam("PS2", "> ")
	}
	if db.GetParam("HISTFILE") == "" {
		home := db.GetParam("HOME")
		if home == "" {
			home, _ = os.UserHomeDir()
		}
		db.SetParam("HISTFILE", home+"/.sush_history")
	}
	if db.GetParam("HISTFILESIZE") == "" {
		db.SetParam("HISTFILESIZE", "500")
	}
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// runInteractive is the read-parse-eval loop: PS1/PS2 prompts, SIGINT
// cancellation, history persistence, and the IncompleteError-driven
// continuation retry DESIGN.md's internal/ast entry documents (the feeder
// only tracks quote/substitution/heredoc nesting; a missing `fi`/`done`/
// `esac` is only discovered by the parser, so this loop is the one that
// asks for another physical line and retries). Grounded on the teacher's
// cmd/gosh/main.go runInteractive, generalized from its single
// parser.InteractiveSeq call to this shell's own feeder+ast split.
func runInteractive(sh *exec.Shell) int {
	sig := term.InstallParentSignals()
	defer sig.Stop()
	sh.SetSignals(sig)

	hist := term.NewHistory(sh.DB().GetParam("HISTFILE"), histSize(sh))
	if err := hist.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "sush:", err)
	}
	defer hist.Save()

	editor := term.NewEditor(os.Stdin, os.Stdout, hist, sig)
	fdr := feeder.New(editor)
	promptBase := term.CurrentPromptVars()

	status := 0
	for {
		sh.Jobs().Poll()
		for _, j := range sh.Jobs().List() {
			if j.State != jobs.Running {
				fmt.Fprintln(os.Stdout, j.ReportLine(sh.Jobs().Marker(j)))
				sh.Jobs().Remove(j.ID)
			}
		}

		vars := promptBase
		vars.Dir = sh.Dir()
		vars.ExitStatus = sh.DB().ExitStatus()
		ps1 := term.ExpandPrompt(sh.DB().GetParam("PS1"), vars)
		ps2 := term.ExpandPrompt(sh.DB().GetParam("PS2"), vars)
		editor.SetPrompt(ps1)
		fdr.SetContinuePrompt(ps2)

		res, err := fdr.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			if err == term.ErrInterrupt {
				sh.DB().SetExitStatus(130)
				continue
			}
			fmt.Fprintln(os.Stderr, "sush:", err)
			continue
		}

		text := hist.ExpandBang(res.Text)
		stmts, ok := parseWithContinuation(sh, fdr, editor, ps2, text, res.Heredocs)
		if !ok {
			continue
		}
		if *flagV {
			fmt.Fprintln(os.Stdout, text)
		}
		status = sh.Run(stmts)
		if sig, n := sh.Loop(); sig == builtin.LoopExit {
			return n
		}
	}
	return status
}

// parseWithContinuation retries ast.Parse, feeding it one more physical
// line under PS2 each time it reports an *ast.IncompleteError, until the
// command either parses or input runs out.
func parseWithContinuation(sh *exec.Shell, fdr *feeder.Feeder, editor *term.Editor, ps2, text string, heredocs []string) ([]*ast.Stmt, bool) {
	for {
		stmts, err := ast.Parse(text, heredocs)
		if err == nil {
			return stmts, true
		}
		var incomplete *ast.IncompleteError
		if !errors.As(err, &incomplete) {
			fmt.Fprintln(os.Stderr, "sush:", err)
			sh.DB().SetExitStatus(2)
			return nil, false
		}
		editor.SetPrompt(ps2)
		more, merr := fdr.Next()
		if merr != nil {
			fmt.Fprintln(os.Stderr, "sush: unexpected end of input, expecting", incomplete.Want)
			sh.DB().SetExitStatus(2)
			return nil, false
		}
		text += "\n" + more.Text
		heredocs = append(heredocs, more.Heredocs...)
	}
}

func histSize(sh *exec.Shell) int {
	n, err := strconv.Atoi(sh.DB().GetParam("HISTFILESIZE"))
	if err != nil || n < 0 {
		return 500
	}
	return n
}
