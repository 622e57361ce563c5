// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package core

import (
	"math/rand"
	"sort"
	"strconv"
	"time"
)

// layer is one scope frame: created on function entry, destroyed on return.
type layer struct {
	vars map[string]*Entry
}

func newLayer() *layer {
	return &layer{vars: make(map[string]*Entry)}
}

// Database is the layered parameter store described in spec §3/§4.3.
// Layer 0 is the global scope; higher indices are pushed per function call.
type Database struct {
	layers []*layer

	flags map[byte]bool

	exitStatus int
	lastArg    string

	// positionParams holds one frame per function-call depth; frame[0] is
	// $0, frame[1:] are $1, $2, ...
	positionParams [][]string

	started time.Time
	rnd     *rand.Rand
}

// New returns a Database with a single global layer and one positional
// parameter frame (argv[0] plus script arguments).
func New(argv0 string, args []string) *Database {
	d := &Database{
		layers:  []*layer{newLayer()},
		flags:   make(map[byte]bool),
		started: time.Now(),
	}
	frame := append([]string{argv0}, args...)
	d.positionParams = [][]string{frame}
	return d
}

// PushLayer creates a new scope frame atop the stack, used when entering a
// function call.
func (d *Database) PushLayer() {
	d.layers = append(d.layers, newLayer())
}

// PopLayer destroys the topmost scope frame, used on function return.
func (d *Database) PopLayer() {
	if len(d.layers) > 1 {
		d.layers = d.layers[:len(d.layers)-1]
	}
}

// LayerNum reports the current scope depth (1 = global only).
func (d *Database) LayerNum() int {
	return len(d.layers)
}

// Clone deep-copies every layer and the positional-parameter stack, for
// subshells and command substitutions: they run with their own copy of the
// parameter store so writes never escape back to the parent (spec §4.9's
// "subshells... run in a forked child" becomes, for the in-process
// constructs that don't actually fork, a cloned Database instead).
func (d *Database) Clone() *Database {
	d2 := &Database{
		flags:      make(map[byte]bool, len(d.flags)),
		exitStatus: d.exitStatus,
		lastArg:    d.lastArg,
		started:    d.started,
		rnd:        d.rnd,
	}
	for k, v := range d.flags {
		d2.flags[k] = v
	}
	d2.layers = make([]*layer, len(d.layers))
	for i, l := range d.layers {
		nl := newLayer()
		for name, e := range l.vars {
			nl.vars[name] = e.clone()
		}
		d2.layers[i] = nl
	}
	d2.positionParams = make([][]string, len(d.positionParams))
	for i, f := range d.positionParams {
		d2.positionParams[i] = append([]string{}, f...)
	}
	return d2
}

// PushParamFrame pushes a new positional-parameter frame, used when a
// function is invoked: $0 becomes the function name, $1.. the call args.
func (d *Database) PushParamFrame(frame []string) {
	d.positionParams = append(d.positionParams, frame)
}

// PopParamFrame pops the positional-parameter frame pushed by the matching
// PushParamFrame. The stack is never left empty.
func (d *Database) PopParamFrame() {
	if len(d.positionParams) > 1 {
		d.positionParams = d.positionParams[:len(d.positionParams)-1]
	}
}

func (d *Database) curFrame() []string {
	return d.positionParams[len(d.positionParams)-1]
}

// Positional returns $1..$N for the current frame (without $0).
func (d *Database) Positional() []string {
	f := d.curFrame()
	if len(f) <= 1 {
		return nil
	}
	return f[1:]
}

// SetPositional replaces $1.. in the current frame, keeping $0.
func (d *Database) SetPositional(args []string) {
	f := d.curFrame()
	name := ""
	if len(f) > 0 {
		name = f[0]
	}
	d.positionParams[len(d.positionParams)-1] = append([]string{name}, args...)
}

// Shift removes the first n positional parameters ($1..).
func (d *Database) Shift(n int) bool {
	f := d.curFrame()
	pos := f[1:]
	if n < 0 || n > len(pos) {
		return false
	}
	name := f[0]
	d.positionParams[len(d.positionParams)-1] = append([]string{name}, pos[n:]...)
	return true
}

// ArgName returns $0 for the current frame.
func (d *Database) ArgName() string {
	f := d.curFrame()
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

// ExitStatus/SetExitStatus back $?.
func (d *Database) ExitStatus() int        { return d.exitStatus }
func (d *Database) SetExitStatus(n int)    { d.exitStatus = n }
func (d *Database) LastArg() string        { return d.lastArg }
func (d *Database) SetLastArg(s string)    { d.lastArg = s }

// SetFlag/Flag/Flags back $-.
func (d *Database) SetFlag(c byte, on bool) {
	if on {
		d.flags[c] = true
	} else {
		delete(d.flags, c)
	}
}

func (d *Database) Flag(c byte) bool { return d.flags[c] }

func (d *Database) Flags() string {
	keys := make([]byte, 0, len(d.flags))
	for c := range d.flags {
		keys = append(keys, c)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return string(keys)
}

// findLayer walks the layer stack top-down, returning the layer holding
// name and its entry, or (-1, nil) if unset anywhere.
func (d *Database) findLayer(name string) (int, *Entry) {
	for i := len(d.layers) - 1; i >= 0; i-- {
		if e, ok := d.layers[i].vars[name]; ok {
			return i, e
		}
	}
	return -1, nil
}

// Lookup returns the entry for name, or nil if unset. It does not
// synthesize special parameters; callers check those first (see Special).
func (d *Database) Lookup(name string) *Entry {
	_, e := d.findLayer(name)
	return e
}

// GetParam implements the get_param contract: top-down scan, "" for unset.
func (d *Database) GetParam(name string) string {
	_, e := d.findLayer(name)
	return e.String()
}

// SetParam writes at the top layer unless name already exists at a lower
// layer, in which case it is overwritten in place. Fails with
// *ReadOnlyError if the target entry is read-only.
func (d *Database) SetParam(name, value string) error {
	if idx, e := d.findLayer(name); e != nil {
		if e.ReadOnly {
			return &ReadOnlyError{Name: name}
		}
		return d.setInLayer(idx, name, value, e)
	}
	top := len(d.layers) - 1
	return d.setInLayer(top, name, value, nil)
}

func (d *Database) setInLayer(idx int, name, value string, existing *Entry) error {
	if existing != nil && existing.Kind == KindIndexedArray {
		// assigning a scalar to an existing array rewrites index 0.
		existing.Indexed = setAt(existing.Indexed, 0, value)
		return nil
	}
	if existing != nil && existing.Kind == KindAssocArray {
		existing.Assoc["0"] = value
		return nil
	}
	exported := existing != nil && existing.Exported
	d.layers[idx].vars[name] = &Entry{Kind: KindScalar, Scalar: value, Exported: exported}
	return nil
}

// SetLayerParam writes at layer k explicitly (used by `local`).
func (d *Database) SetLayerParam(name, value string, k int) error {
	if k < 0 || k >= len(d.layers) {
		k = len(d.layers) - 1
	}
	if e, ok := d.layers[k].vars[name]; ok && e.ReadOnly {
		return &ReadOnlyError{Name: name}
	}
	d.layers[k].vars[name] = &Entry{Kind: KindScalar, Scalar: value}
	return nil
}

// SetArray declares (or replaces) an indexed array in the layer that
// already holds name, or at the top layer if name is unset. The new array
// holds exactly values: an existing scalar's value is not kept at index 0.
func (d *Database) SetArray(name string, values []string) error {
	idx, e := d.findLayer(name)
	if e != nil && e.ReadOnly {
		return &ReadOnlyError{Name: name}
	}
	if idx < 0 {
		idx = len(d.layers) - 1
	}
	d.layers[idx].vars[name] = NewIndexedArray(values)
	return nil
}

// SetAssoc declares (or replaces) an associative array at the top layer.
func (d *Database) SetAssoc(name string) error {
	idx, e := d.findLayer(name)
	if e != nil && e.ReadOnly {
		return &ReadOnlyError{Name: name}
	}
	if idx < 0 {
		idx = len(d.layers) - 1
	}
	d.layers[idx].vars[name] = NewAssocArray()
	return nil
}

// SetArrayElem sets values[index] = v, creating the array if absent.
// A negative index is rejected per spec §4.3.
func (d *Database) SetArrayElem(name, v string, index int) error {
	if index < 0 {
		return &NegativeIndexError{Name: name}
	}
	idx, e := d.findLayer(name)
	if e != nil && e.ReadOnly {
		return &ReadOnlyError{Name: name}
	}
	if idx < 0 {
		idx = len(d.layers) - 1
	}
	if e == nil || e.Kind != KindIndexedArray {
		var seed []string
		if e != nil && e.Kind == KindScalar {
			seed = []string{e.Scalar}
		}
		e = NewIndexedArray(seed)
		d.layers[idx].vars[name] = e
	}
	e.Indexed = setAt(e.Indexed, index, v)
	return nil
}

// GetArrayElem returns values[index] for an indexed array, or "" if unset
// or out of range.
func (d *Database) GetArrayElem(name string, index int) string {
	e := d.Lookup(name)
	if e == nil || index < 0 {
		return ""
	}
	switch e.Kind {
	case KindIndexedArray:
		if index < len(e.Indexed) {
			return e.Indexed[index]
		}
	case KindScalar:
		if index == 0 {
			return e.Scalar
		}
	}
	return ""
}

// GetAssocElem returns map[key] for an associative array, or "" if unset.
func (d *Database) GetAssocElem(name, key string) string {
	e := d.Lookup(name)
	if e == nil || e.Kind != KindAssocArray {
		return ""
	}
	return e.Assoc[key]
}

// SetAssocElem sets map[key] = v, creating the assoc array if absent.
func (d *Database) SetAssocElem(name, v, key string) error {
	idx, e := d.findLayer(name)
	if e != nil && e.ReadOnly {
		return &ReadOnlyError{Name: name}
	}
	if idx < 0 {
		idx = len(d.layers) - 1
	}
	if e == nil || e.Kind != KindAssocArray {
		e = NewAssocArray()
		d.layers[idx].vars[name] = e
	}
	e.Assoc[key] = v
	return nil
}

// MarkReadOnly sets the read-only flag on an existing or newly-scalar entry.
func (d *Database) MarkReadOnly(name string) {
	idx, e := d.findLayer(name)
	if e == nil {
		idx = len(d.layers) - 1
		e = NewScalar("")
		d.layers[idx].vars[name] = e
	}
	e.ReadOnly = true
}

// MarkExported sets/clears the export flag.
func (d *Database) MarkExported(name string, on bool) {
	idx, e := d.findLayer(name)
	if e == nil {
		idx = len(d.layers) - 1
		e = NewScalar("")
		d.layers[idx].vars[name] = e
	}
	e.Exported = on
}

// Unset removes name from whichever layer holds it.
func (d *Database) Unset(name string) error {
	idx, e := d.findLayer(name)
	if e == nil {
		return nil
	}
	if e.ReadOnly {
		return &ReadOnlyError{Name: name}
	}
	delete(d.layers[idx].vars, name)
	return nil
}

// Exported returns every NAME=value pair flagged for export, for building
// a child process's environment.
func (d *Database) Exported() []string {
	seen := map[string]bool{}
	var out []string
	for i := len(d.layers) - 1; i >= 0; i-- {
		for name, e := range d.layers[i].vars {
			if seen[name] {
				continue
			}
			seen[name] = true
			if e.Exported {
				out = append(out, name+"="+e.String())
			}
		}
	}
	sort.Strings(out)
	return out
}

// NamesByPrefix lists every visible name starting with prefix, used by
// ${!prefix*} and by completion.
func (d *Database) NamesByPrefix(prefix string) []string {
	seen := map[string]bool{}
	var out []string
	for i := len(d.layers) - 1; i >= 0; i-- {
		for name := range d.layers[i].vars {
			if seen[name] {
				continue
			}
			if len(name) >= len(prefix) && name[:len(prefix)] == prefix {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

func setAt(s []string, i int, v string) []string {
	for len(s) <= i {
		s = append(s, "")
	}
	s[i] = v
	return s
}

func itoa(n int) string { return strconv.Itoa(n) }
