// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package core

import (
	"math/rand"
	"os"
	"strconv"
	"time"
)

// Special resolves one of the names that spec §3/§4.3 says are synthesized
// rather than stored: $?, $#, $-, $_, $$, $0..$9, $@, $*, BASHPID, PPID,
// RANDOM, SECONDS. ok is false if name isn't one of these, so the caller falls
// through to the regular layered lookup.
func (d *Database) Special(name string) (value string, isArray bool, array []string, ok bool) {
	switch name {
	case "?":
		return itoa(d.exitStatus), false, nil, true
	case "#":
		return itoa(len(d.Positional())), false, nil, true
	case "-":
		return d.Flags(), false, nil, true
	case "_":
		return d.lastArg, false, nil, true
	case "$":
		return itoa(os.Getpid()), false, nil, true
	case "BASHPID":
		return itoa(os.Getpid()), false, nil, true
	case "PPID":
		return itoa(os.Getppid()), false, nil, true
	case "0":
		return d.ArgName(), false, nil, true
	case "@", "*":
		return "", true, d.Positional(), true
	case "RANDOM":
		return itoa(d.randInt()), false, nil, true
	case "SECONDS":
		return itoa(int(time.Since(d.started).Seconds())), false, nil, true
	}
	if len(name) >= 1 && name[0] >= '1' && name[0] <= '9' {
		if n, err := strconv.Atoi(name); err == nil {
			pos := d.Positional()
			if n >= 1 && n <= len(pos) {
				return pos[n-1], false, nil, true
			}
			return "", false, nil, true
		}
	}
	return "", false, nil, false
}

func (d *Database) randInt() int {
	if d.rnd == nil {
		d.rnd = rand.New(rand.NewSource(time.Now().UnixNano() ^ int64(os.Getpid())))
	}
	return d.rnd.Intn(32768)
}
