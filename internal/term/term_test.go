// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package term

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/creack/pty"
	qt "github.com/frankban/quicktest"
)

func TestExpandPromptEscapes(t *testing.T) {
	c := qt.New(t)
	v := PromptVars{User: "amy", Host: "box.example.com", Dir: "/home/amy/proj", Home: "/home/amy"}
	c.Assert(ExpandPrompt(`\u@\h:\w\$ `, v), qt.Equals, "amy@box:~/proj$ ")

	root := v
	root.IsRoot = true
	c.Assert(ExpandPrompt(`\$`, root), qt.Equals, "#")

	c.Assert(ExpandPrompt(`a\nb`, v), qt.Equals, "a\nb")
	c.Assert(ExpandPrompt(`\q`, v), qt.Equals, `\q`)
}

func TestHistorySaveLoadRoundTrip(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "hist")
	h := NewHistory(path, 0)
	h.Add("echo one")
	h.Add("echo one") // immediate repeat, deduped
	h.Add("printf 'a\nb\n'")
	c.Assert(h.Len(), qt.Equals, 2)
	c.Assert(h.Save(), qt.IsNil)

	h2 := NewHistory(path, 0)
	c.Assert(h2.Load(), qt.IsNil)
	c.Assert(h2.Len(), qt.Equals, 2)
	v, ok := h2.At(0)
	c.Assert(ok, qt.Equals, true)
	c.Assert(v, qt.Equals, "printf 'a\nb\n'")
}

func TestHistoryTruncatesToMax(t *testing.T) {
	c := qt.New(t)
	path := filepath.Join(t.TempDir(), "hist")
	h := NewHistory(path, 2)
	h.Add("a")
	h.Add("b")
	h.Add("c")
	c.Assert(h.Save(), qt.IsNil)

	h2 := NewHistory(path, 0)
	c.Assert(h2.Load(), qt.IsNil)
	c.Assert(h2.Len(), qt.Equals, 2)
	v, _ := h2.ByIndex(1)
	c.Assert(v, qt.Equals, "b")
}

func TestHistoryPrevNextWalk(t *testing.T) {
	c := qt.New(t)
	h := NewHistory("", 0)
	h.Add("first")
	h.Add("second")

	v, ok := h.Prev("typing")
	c.Assert(ok, qt.Equals, true)
	c.Assert(v, qt.Equals, "second")

	v, ok = h.Prev("typing")
	c.Assert(ok, qt.Equals, true)
	c.Assert(v, qt.Equals, "first")

	_, ok = h.Prev("typing")
	c.Assert(ok, qt.Equals, false)

	v, ok = h.Next()
	c.Assert(ok, qt.Equals, true)
	c.Assert(v, qt.Equals, "second")

	v, ok = h.Next()
	c.Assert(ok, qt.Equals, true)
	c.Assert(v, qt.Equals, "typing")
}

func TestHistoryExpandBang(t *testing.T) {
	c := qt.New(t)
	h := NewHistory("", 0)
	h.Add("echo first")
	h.Add("echo second")
	h.Add("grep foo file")

	c.Assert(h.ExpandBang("!!"), qt.Equals, "grep foo file")
	c.Assert(h.ExpandBang("!1"), qt.Equals, "echo first")
	c.Assert(h.ExpandBang("!-2"), qt.Equals, "echo second")
	c.Assert(h.ExpandBang("!echo"), qt.Equals, "echo second")
	c.Assert(h.ExpandBang("no bang here"), qt.Equals, "no bang here")
}

func TestEditorReadLineOverPty(t *testing.T) {
	c := qt.New(t)
	ptyFile, ttyFile, err := pty.Open()
	c.Assert(err, qt.IsNil)
	defer ptyFile.Close()
	defer ttyFile.Close()

	hist := NewHistory("", 0)
	ed := NewEditor(ttyFile, ttyFile, hist, nil)
	ed.SetPrompt("$ ")

	done := make(chan struct{})
	var got string
	var readErr error
	go func() {
		got, readErr = ed.ReadLine()
		close(done)
	}()

	_, err = ptyFile.Write([]byte("echo hi\r"))
	c.Assert(err, qt.IsNil)
	<-done
	c.Assert(readErr, qt.IsNil)
	c.Assert(got, qt.Equals, "echo hi")
}

func TestEditorCtrlDOnEmptyLineIsEOF(t *testing.T) {
	c := qt.New(t)
	ptyFile, ttyFile, err := pty.Open()
	c.Assert(err, qt.IsNil)
	defer ptyFile.Close()
	defer ttyFile.Close()

	ed := NewEditor(ttyFile, ttyFile, nil, nil)
	done := make(chan struct{})
	var readErr error
	go func() {
		_, readErr = ed.ReadLine()
		close(done)
	}()
	_, err = ptyFile.Write([]byte{keyCtrlD})
	c.Assert(err, qt.IsNil)
	<-done
	c.Assert(readErr, qt.Equals, io.EOF)
}
