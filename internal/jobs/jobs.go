// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

// Package jobs implements C10: the background job table. Grounded on the
// teacher's process lifecycle handling in interp/handler_unix.go (which
// sets Setpgid on every spawned command) and interp/handler.go's
// waitStatus/exit-code mapping, generalized from mvdan-sh's synchronous
// "one os/exec.Cmd, one Wait" model (the teacher never backgrounds
// anything) to a polled table of process groups a shell can report on,
// foreground, and wait for independently of the read-eval loop.
package jobs

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// State is a job's last observed run state.
type State int

const (
	Running State = iota
	Stopped
	Done
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	default:
		return "Done"
	}
}

// Job tracks one backgrounded pipeline: its process group and the pids in
// it, so fg/bg/wait can act on the group as a unit the way job control
// expects.
type Job struct {
	ID       int
	PGID     int
	Pids     []int
	Cmdline  string
	State    State
	ExitCode int
	reported bool // report-once: "[1]+ Done text" prints exactly once
	current  bool
}

// Table is the shell's job list, keyed by job ID (1-based and only ever
// increasing; the ID of a removed job is not handed out again).
type Table struct {
	mu   sync.Mutex
	jobs map[int]*Job
	next int
}

func NewTable() *Table {
	return &Table{jobs: make(map[int]*Job), next: 1}
}

// Add registers a freshly started pipeline as a new job.
func (t *Table) Add(pgid int, pids []int, cmdline string) *Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	j := &Job{ID: t.next, PGID: pgid, Pids: pids, Cmdline: cmdline, State: Running}
	t.jobs[j.ID] = j
	t.next++
	return j
}

// Get returns the job for id, or nil.
func (t *Table) Get(id int) *Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.jobs[id]
}

// Current returns the most recently added still-tracked job (the `%%`/`+`
// job), or nil if the table is empty.
func (t *Table) Current() *Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	var best *Job
	for _, j := range t.jobs {
		if best == nil || j.ID > best.ID {
			best = j
		}
	}
	return best
}

// Remove drops a job from the table (used by `disown` and after its exit
// status has been reported and collected by `wait`).
func (t *Table) Remove(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.jobs, id)
}

// List returns every tracked job, sorted by ID, for the `jobs` builtin.
func (t *Table) List() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Job, 0, len(t.jobs))
	for _, j := range t.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out
}

// Poll reaps any children that have changed state without blocking
// (waitpid(-1, WNOHANG|WUNTRACED) per spec §4.9), updating the table in
// place. It returns the jobs whose state changed this call, for the
// notify-on-next-prompt behavior interactive shells use.
func (t *Table) Poll() []*Job {
	var changed []*Job
	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-1, &ws, unix.WNOHANG|unix.WUNTRACED, nil)
		if err != nil || pid <= 0 {
			break
		}
		if j := t.markPid(pid, ws); j != nil {
			changed = append(changed, j)
		}
	}
	return changed
}

func (t *Table) markPid(pid int, ws unix.WaitStatus) *Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, j := range t.jobs {
		for i, p := range j.Pids {
			if p != pid {
				continue
			}
			switch {
			case ws.Stopped():
				j.State = Stopped
			case ws.Exited():
				j.Pids = append(j.Pids[:i], j.Pids[i+1:]...)
				if len(j.Pids) == 0 {
					j.State = Done
					j.ExitCode = ws.ExitStatus()
				}
			case ws.Signaled():
				j.Pids = append(j.Pids[:i], j.Pids[i+1:]...)
				if len(j.Pids) == 0 {
					j.State = Done
					j.ExitCode = 128 + int(ws.Signal())
				}
			}
			return j
		}
	}
	return nil
}

// ReportLine formats the "[id]+ Done     cmdline" style line bash prints
// on state transitions, marking the job reported so it is only shown once.
func (j *Job) ReportLine(marker string) string {
	line := fmt.Sprintf("[%d]%s  %-8s %s", j.ID, marker, j.State, j.Cmdline)
	j.reported = true
	return line
}

// Marker returns "+" for the current job, "-" for the previous, else " ".
func (t *Table) Marker(j *Job) string {
	cur := t.Current()
	if cur != nil && cur.ID == j.ID {
		return "+"
	}
	if list := t.List(); len(list) >= 2 && list[len(list)-2].ID == j.ID {
		return "-"
	}
	return " "
}

// Signal delivers sig to every pid in a job's process group.
func (j *Job) Signal(sig unix.Signal) error {
	return unix.Kill(-j.PGID, sig)
}

// ParseSpec resolves a %N / %+ / %- / %string job-control spec against the
// table, as used by jobs/fg/bg/wait/disown/kill.
func (t *Table) ParseSpec(spec string) *Job {
	spec = strings.TrimPrefix(spec, "%")
	switch spec {
	case "", "+", "%":
		return t.Current()
	case "-":
		jobs := t.List()
		if len(jobs) < 2 {
			return t.Current()
		}
		return jobs[len(jobs)-2]
	}
	var id int
	if _, err := fmt.Sscanf(spec, "%d", &id); err == nil {
		return t.Get(id)
	}
	for _, j := range t.List() {
		if strings.HasPrefix(j.Cmdline, spec) {
			return j
		}
	}
	return nil
}
