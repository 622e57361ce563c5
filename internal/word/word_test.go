// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package word

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/google/go-cmp/cmp"

	"github.com/sush-shell/sush/internal/core"
	"github.com/sush-shell/sush/internal/shopt"
)

func newTestConfig() *Config {
	db := core.New("sush", []string{"one", "two"})
	return &Config{DB: db, Opts: shopt.New(), Dir: "."}
}

func TestBraceExpansion(t *testing.T) {
	c := qt.New(t)
	c.Assert(ExpandBraces("a{b,c}d"), qt.DeepEquals, []string{"abd", "acd"})
	c.Assert(ExpandBraces("{1..3}"), qt.DeepEquals, []string{"1", "2", "3"})
	c.Assert(ExpandBraces("{01..03}"), qt.DeepEquals, []string{"01", "02", "03"})
	c.Assert(ExpandBraces("{a..c}"), qt.DeepEquals, []string{"a", "b", "c"})
	c.Assert(ExpandBraces("plain"), qt.DeepEquals, []string{"plain"})
	c.Assert(ExpandBraces("x{1..5..2}"), qt.DeepEquals, []string{"x1", "x3", "x5"})
}

func TestParamDefaultOperators(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()

	w := &Word{Raw: "${UNSET:-fallback}"}
	got, err := w.ExpandScalar(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "fallback")

	c.Assert(cfg.DB.SetParam("X", ""), qt.IsNil)
	w2 := &Word{Raw: "${X:=seeded}"}
	got2, err := w2.ExpandScalar(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(got2, qt.Equals, "seeded")
	c.Assert(cfg.DB.GetParam("X"), qt.Equals, "seeded")
}

func TestParamLengthAndSubstring(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	c.Assert(cfg.DB.SetParam("S", "hello world"), qt.IsNil)

	w := &Word{Raw: "${#S}"}
	got, err := w.ExpandScalar(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "11")

	w2 := &Word{Raw: "${S:6:5}"}
	got2, err := w2.ExpandScalar(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(got2, qt.Equals, "world")

	w3 := &Word{Raw: "${S:6}"}
	got3, err := w3.ExpandScalar(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(got3, qt.Equals, "world")
}

func TestParamPatternRemoval(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	c.Assert(cfg.DB.SetParam("P", "/usr/local/bin"), qt.IsNil)

	w := &Word{Raw: "${P##*/}"}
	got, err := w.ExpandScalar(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "bin")

	w2 := &Word{Raw: "${P%/*}"}
	got2, err := w2.ExpandScalar(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(got2, qt.Equals, "/usr/local")
}

func TestParamCaseTransform(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	c.Assert(cfg.DB.SetParam("V", "Hello"), qt.IsNil)

	w := &Word{Raw: "${V^^}"}
	got, err := w.ExpandScalar(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "HELLO")

	w2 := &Word{Raw: "${V,,}"}
	got2, err := w2.ExpandScalar(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(got2, qt.Equals, "hello")
}

func TestParamReplace(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	c.Assert(cfg.DB.SetParam("R", "banana"), qt.IsNil)

	w := &Word{Raw: "${R//a/o}"}
	got, err := w.ExpandScalar(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "bonono")

	w2 := &Word{Raw: "${R/a/o}"}
	got2, err := w2.ExpandScalar(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(got2, qt.Equals, "bonana")
}

func TestFieldSplitting(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	c.Assert(cfg.DB.SetParam("LIST", "one  two three"), qt.IsNil)

	w := &Word{Raw: "$LIST"}
	fields, err := w.ExpandFields(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.DeepEquals, []string{"one", "two", "three"})
}

func TestQuotedNoSplitting(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	c.Assert(cfg.DB.SetParam("LIST", "one two three"), qt.IsNil)

	w := &Word{Raw: `"$LIST"`}
	fields, err := w.ExpandFields(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.DeepEquals, []string{"one two three"})
}

func TestPositionalExplosion(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()

	w := &Word{Raw: `"$@"`}
	fields, err := w.ExpandFields(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.DeepEquals, []string{"one", "two"})

	w2 := &Word{Raw: `"$*"`}
	fields2, err := w2.ExpandFields(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(fields2, qt.DeepEquals, []string{"one two"})
}

func TestArithmeticSubstitution(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	w := &Word{Raw: "$((2+3*4))"}
	got, err := w.ExpandScalar(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "14")
}

func TestCommandSubstitution(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.CommandSub = func(script string) (string, error) {
		return "output\n", nil
	}
	w := &Word{Raw: "$(whatever)"}
	got, err := w.ExpandScalar(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "output")
}

// TestParseRawSubwordTree checks the whole []Subword shape ParseRaw builds
// for a word mixing literal, double-quoted and parameter pieces. cmp.Diff
// gives a readable tree diff on mismatch, which matters here since the
// Subword interface holds several struct variants and a failure buried in
// one DoubleQuoted.Parts element is hard to spot from a bare %+v dump.
func TestParseRawSubwordTree(t *testing.T) {
	c := qt.New(t)
	got, err := ParseRaw(`pre"mid $x"$y`, false)
	c.Assert(err, qt.IsNil)
	want := []Subword{
		&Literal{Value: "pre"},
		&DoubleQuoted{Parts: []Subword{
			&Literal{Value: "mid "},
			&Parameter{Name: "x"},
		}},
		&Parameter{Name: "y"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ParseRaw mismatch (-want +got):\n%s", diff)
	}
}
