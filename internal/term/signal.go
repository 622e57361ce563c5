// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package term

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// ParentSignals installs the interactive-parent signal disposition spec
// §4.10 describes: SIGINT/SIGQUIT/SIGTTOU/SIGTTIN/SIGTSTP ignored (job
// control and Ctrl-C both rely on the shell itself staying alive), SIGCHLD
// observed so the read loop can poll internal/jobs.Table without blocking
// in a dedicated waitpid call. SIGINT additionally flips an atomic flag the
// line editor and parse loop read, per spec's "atomic sigint flag... the
// only concurrently-written datum".
type ParentSignals struct {
	sigint  int32
	sigchld chan os.Signal
	ignored chan os.Signal
}

// InstallParentSignals starts the handlers and returns the controller.
// Call Stop when the shell exits to restore default dispositions.
func InstallParentSignals() *ParentSignals {
	ps := &ParentSignals{
		sigchld: make(chan os.Signal, 1),
		ignored: make(chan os.Signal, 8),
	}
	signal.Notify(ps.ignored, os.Interrupt, syscall.SIGQUIT, syscall.SIGTTOU, syscall.SIGTTIN, syscall.SIGTSTP)
	signal.Notify(ps.sigchld, syscall.SIGCHLD)
	go func() {
		for sig := range ps.ignored {
			if sig == os.Interrupt {
				atomic.StoreInt32(&ps.sigint, 1)
			}
			// SIGQUIT/SIGTTOU/SIGTTIN/SIGTSTP: observed and dropped, the
			// Go equivalent of sigaction(SIG_IGN) for an interactive
			// parent that must never be stopped or quit by its own
			// terminal's control sequences.
		}
	}()
	return ps
}

// SigIntAndClear reports whether SIGINT fired since the last call, clearing
// the flag so it is consumed exactly once (by the line editor or the parse
// loop, whichever reads it first).
func (ps *ParentSignals) SigIntAndClear() bool {
	return atomic.SwapInt32(&ps.sigint, 0) == 1
}

// ChildPoll returns the channel the top-level read loop selects on (or
// drains non-blockingly) to notice a child may have exited, prompting a
// internal/jobs.Table.Poll call per spec's "on each top-level read, the
// shell polls child state".
func (ps *ParentSignals) ChildPoll() <-chan os.Signal { return ps.sigchld }

// Stop reverts to default signal handling, used when the shell is about to
// exit or hand the terminal to a foreground job.
func (ps *ParentSignals) Stop() {
	signal.Stop(ps.ignored)
	signal.Stop(ps.sigchld)
}

// ResetForChild restores default dispositions for SIGINT/SIGQUIT/SIGTTOU/
// SIGTTIN/SIGTSTP immediately before spawning a child process, undoing the
// parent's SIG_IGN the way a real fork()'d shell resets to SIG_DFL between
// fork and exec (spec §4.10: "Child (post-fork, before exec): restores all
// to default"). Go's os/exec has no fork-then-exec hook to run arbitrary
// code in the child before exec, so this instead flips the process-wide
// disposition just before Cmd.Start and flips it back with RestoreParent
// right after — a documented race window (a signal arriving in that brief
// window is delivered with default disposition to the whole process, not
// just the child) accepted the way a single-threaded synchronous shell
// already accepts no-locking elsewhere (spec §5).
func (ps *ParentSignals) ResetForChild() {
	signal.Reset(os.Interrupt, syscall.SIGQUIT, syscall.SIGTTOU, syscall.SIGTTIN, syscall.SIGTSTP)
}

// RestoreParent re-ignores the signals ResetForChild reset, once the child
// has been started (forked) and the parent returns to interactive control.
func (ps *ParentSignals) RestoreParent() {
	signal.Notify(ps.ignored, os.Interrupt, syscall.SIGQUIT, syscall.SIGTTOU, syscall.SIGTTIN, syscall.SIGTSTP)
}
