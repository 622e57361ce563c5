// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package jobs

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestAddAndList(t *testing.T) {
	c := qt.New(t)
	tbl := NewTable()
	j1 := tbl.Add(100, []int{100}, "sleep 10")
	j2 := tbl.Add(200, []int{200, 201}, "cat | wc -l")
	c.Assert(j1.ID, qt.Equals, 1)
	c.Assert(j2.ID, qt.Equals, 2)
	list := tbl.List()
	c.Assert(list, qt.HasLen, 2)
	c.Assert(list[0].ID, qt.Equals, 1)
	c.Assert(list[1].ID, qt.Equals, 2)
}

func TestCurrentIsHighestID(t *testing.T) {
	c := qt.New(t)
	tbl := NewTable()
	tbl.Add(100, []int{100}, "a")
	j2 := tbl.Add(200, []int{200}, "b")
	c.Assert(tbl.Current().ID, qt.Equals, j2.ID)
}

func TestRemove(t *testing.T) {
	c := qt.New(t)
	tbl := NewTable()
	j1 := tbl.Add(100, []int{100}, "a")
	tbl.Remove(j1.ID)
	c.Assert(tbl.Get(j1.ID), qt.IsNil)
}

func TestParseSpecByID(t *testing.T) {
	c := qt.New(t)
	tbl := NewTable()
	j1 := tbl.Add(100, []int{100}, "sleep 10")
	got := tbl.ParseSpec("%1")
	c.Assert(got, qt.Equals, j1)
}

func TestParseSpecByPrefix(t *testing.T) {
	c := qt.New(t)
	tbl := NewTable()
	j1 := tbl.Add(100, []int{100}, "sleep 10")
	got := tbl.ParseSpec("%sleep")
	c.Assert(got, qt.Equals, j1)
}

func TestParseSpecCurrent(t *testing.T) {
	c := qt.New(t)
	tbl := NewTable()
	tbl.Add(100, []int{100}, "a")
	j2 := tbl.Add(200, []int{200}, "b")
	c.Assert(tbl.ParseSpec("%%"), qt.Equals, j2)
	c.Assert(tbl.ParseSpec(""), qt.Equals, j2)
}
