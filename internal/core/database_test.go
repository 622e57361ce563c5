// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package core_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/sush-shell/sush/internal/core"
)

func TestSetGetParam(t *testing.T) {
	c := qt.New(t)
	db := core.New("sush", nil)
	c.Assert(db.SetParam("x", "1"), qt.IsNil)
	c.Assert(db.GetParam("x"), qt.Equals, "1")
}

func TestReadOnly(t *testing.T) {
	c := qt.New(t)
	db := core.New("sush", nil)
	db.SetParam("x", "1")
	db.MarkReadOnly("x")
	err := db.SetParam("x", "2")
	c.Assert(err, qt.ErrorMatches, "x: readonly variable")
}

func TestLayerScoping(t *testing.T) {
	c := qt.New(t)
	db := core.New("sush", nil)
	db.SetParam("x", "outer")
	depth := db.LayerNum()
	db.PushLayer()
	db.SetLayerParam("x", "inner", db.LayerNum()-1)
	c.Assert(db.GetParam("x"), qt.Equals, "inner")
	db.PopLayer()
	c.Assert(db.GetParam("x"), qt.Equals, "outer")
	c.Assert(db.LayerNum(), qt.Equals, depth)
}

func TestPositionalFrames(t *testing.T) {
	c := qt.New(t)
	db := core.New("sush", []string{"a", "b"})
	c.Assert(db.Positional(), qt.DeepEquals, []string{"a", "b"})
	db.PushParamFrame([]string{"f", "x", "y", "z"})
	c.Assert(db.ArgName(), qt.Equals, "f")
	c.Assert(db.Positional(), qt.DeepEquals, []string{"x", "y", "z"})
	db.PopParamFrame()
	c.Assert(db.Positional(), qt.DeepEquals, []string{"a", "b"})
}

func TestArrayElem(t *testing.T) {
	c := qt.New(t)
	db := core.New("sush", nil)
	c.Assert(db.SetArrayElem("arr", "v0", 0), qt.IsNil)
	c.Assert(db.SetArrayElem("arr", "v2", 2), qt.IsNil)
	e := db.Lookup("arr")
	c.Assert(e.Indexed, qt.DeepEquals, []string{"v0", "", "v2"})

	err := db.SetArrayElem("arr", "bad", -1)
	c.Assert(err, qt.ErrorMatches, "arr: bad array subscript")
}

func TestSpecialParams(t *testing.T) {
	c := qt.New(t)
	db := core.New("sush", []string{"a"})
	db.SetExitStatus(3)
	v, isArr, arr, ok := db.Special("?")
	c.Assert(ok, qt.IsTrue)
	c.Assert(isArr, qt.IsFalse)
	c.Assert(v, qt.Equals, "3")

	_, isArr, arr, ok = db.Special("@")
	c.Assert(ok, qt.IsTrue)
	c.Assert(isArr, qt.IsTrue)
	c.Assert(arr, qt.DeepEquals, []string{"a"})
}
