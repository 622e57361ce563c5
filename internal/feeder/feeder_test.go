// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package feeder

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestSingleLine(t *testing.T) {
	c := qt.New(t)
	f := New(NewLineSource(strings.NewReader("echo hi\n")))
	r, err := f.Next()
	c.Assert(err, qt.IsNil)
	c.Assert(r.Text, qt.Equals, "echo hi")
	c.Assert(r.Heredocs, qt.HasLen, 0)
}

func TestBackslashContinuation(t *testing.T) {
	c := qt.New(t)
	f := New(NewLineSource(strings.NewReader("echo one \\\ntwo\n")))
	r, err := f.Next()
	c.Assert(err, qt.IsNil)
	c.Assert(r.Text, qt.Equals, "echo one two")
}

func TestUnterminatedQuoteContinues(t *testing.T) {
	c := qt.New(t)
	f := New(NewLineSource(strings.NewReader("echo \"one\ntwo\"\n")))
	r, err := f.Next()
	c.Assert(err, qt.IsNil)
	c.Assert(r.Text, qt.Equals, "echo \"one\ntwo\"")
}

func TestOpenSubshellContinues(t *testing.T) {
	c := qt.New(t)
	f := New(NewLineSource(strings.NewReader("echo $(cat\nfile)\n")))
	r, err := f.Next()
	c.Assert(err, qt.IsNil)
	c.Assert(r.Text, qt.Equals, "echo $(cat\nfile)")
}

func TestHeredocBody(t *testing.T) {
	c := qt.New(t)
	f := New(NewLineSource(strings.NewReader("cat <<EOF\nline one\nline two\nEOF\n")))
	r, err := f.Next()
	c.Assert(err, qt.IsNil)
	c.Assert(r.Text, qt.Equals, "cat <<EOF")
	c.Assert(r.Heredocs, qt.DeepEquals, []string{"line one\nline two"})
}

func TestHeredocStripTabs(t *testing.T) {
	c := qt.New(t)
	f := New(NewLineSource(strings.NewReader("cat <<-EOF\n\t\tindented\n\tEOF\n")))
	r, err := f.Next()
	c.Assert(err, qt.IsNil)
	c.Assert(r.Text, qt.Equals, "cat <<-EOF")
	c.Assert(r.Heredocs, qt.DeepEquals, []string{"indented"})
}

func TestTwoCommandsSeparately(t *testing.T) {
	c := qt.New(t)
	f := New(NewLineSource(strings.NewReader("echo a\necho b\n")))
	r1, err := f.Next()
	c.Assert(err, qt.IsNil)
	c.Assert(r1.Text, qt.Equals, "echo a")
	r2, err := f.Next()
	c.Assert(err, qt.IsNil)
	c.Assert(r2.Text, qt.Equals, "echo b")
}
