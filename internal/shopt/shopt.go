// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

// Package shopt holds the shell's option bag (the `shopt`/`set -o` table
// and the single-letter CLI flags of spec §6), shared by the parser (for
// extglob recognition), the word-expansion pipeline (nullglob/globstar),
// and the executor (pipefail/errexit/nounset/noglob).
package shopt

// Options is a single mutable bag of shell behavior switches. It has no
// methods beyond accessors because every consumer reads/writes fields
// directly — this mirrors the teacher's own small Runner option struct
// rather than introducing a registry abstraction nothing in this scope
// needs.
type Options struct {
	// set -o / single-letter flags (spec §6)
	ErrExit  bool // -e
	NoUnset  bool // -u
	NoGlob   bool // -f
	Verbose  bool // -v
	XTrace   bool // -x
	PipeFail bool

	// shopt
	NullGlob   bool
	GlobStar   bool
	NoCaseGlob bool
	ExtGlob    bool
	HistExpand bool
	Interactive bool
}

// New returns the default option set: histexpand on for interactive use,
// everything else off, matching bash's factory defaults.
func New() *Options {
	return &Options{HistExpand: true}
}

// SetName sets a named shopt option (used by the `shopt` builtin). ok is
// false for an unrecognized name.
func (o *Options) SetName(name string, on bool) bool {
	switch name {
	case "nullglob":
		o.NullGlob = on
	case "globstar":
		o.GlobStar = on
	case "nocaseglob":
		o.NoCaseGlob = on
	case "extglob":
		o.ExtGlob = on
	case "histexpand":
		o.HistExpand = on
	case "pipefail":
		o.PipeFail = on
	default:
		return false
	}
	return true
}

func (o *Options) GetName(name string) (bool, bool) {
	switch name {
	case "nullglob":
		return o.NullGlob, true
	case "globstar":
		return o.GlobStar, true
	case "nocaseglob":
		return o.NoCaseGlob, true
	case "extglob":
		return o.ExtGlob, true
	case "histexpand":
		return o.HistExpand, true
	case "pipefail":
		return o.PipeFail, true
	}
	return false, false
}

// SetFlag handles the single-letter `set -X`/`set +X` flags.
func (o *Options) SetFlag(c byte, on bool) bool {
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
	default:
		return false
	}
	return true
}
