// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package exec

import (
	"bytes"
	"os"
	"testing"

	qt "github.com/frankban/quicktest"
)

func newTestShell() (*Shell, *bytes.Buffer, *bytes.Buffer) {
	sh := New("sush", nil)
	var out, errOut bytes.Buffer
	sh.stdout = &out
	sh.stderr = &errOut
	sh.stdin = bytes.NewReader(nil)
	sh.db.SetParam("PATH", os.Getenv("PATH"))
	return sh, &out, &errOut
}

func TestAssignmentAndExpansion(t *testing.T) {
	c := qt.New(t)
	sh, out, _ := newTestShell()
	status := sh.RunText("FOO=bar\necho $FOO")
	c.Assert(status, qt.Equals, 0)
	c.Assert(out.String(), qt.Equals, "bar\n")
}

func TestIfElse(t *testing.T) {
	c := qt.New(t)
	sh, out, _ := newTestShell()
	sh.RunText("if true; then echo yes; else echo no; fi")
	c.Assert(out.String(), qt.Equals, "yes\n")

	sh2, out2, _ := newTestShell()
	sh2.RunText("if false; then echo yes; else echo no; fi")
	c.Assert(out2.String(), qt.Equals, "no\n")
}

func TestForLoop(t *testing.T) {
	c := qt.New(t)
	sh, out, _ := newTestShell()
	sh.RunText("for i in 1 2 3; do echo $i; done")
	c.Assert(out.String(), qt.Equals, "1\n2\n3\n")
}

func TestForLoopBreak(t *testing.T) {
	c := qt.New(t)
	sh, out, _ := newTestShell()
	sh.RunText("for i in 1 2 3; do if [ $i = 2 ]; then break; fi; echo $i; done")
	c.Assert(out.String(), qt.Equals, "1\n")
}

func TestWhileLoopContinue(t *testing.T) {
	c := qt.New(t)
	sh, out, _ := newTestShell()
	sh.RunText(`
i=0
while [ $i -lt 3 ]; do
	i=$((i+1))
	if [ $i = 2 ]; then continue; fi
	echo $i
done
`)
	c.Assert(out.String(), qt.Equals, "1\n3\n")
}

func TestFunctionCallAndReturn(t *testing.T) {
	c := qt.New(t)
	sh, out, _ := newTestShell()
	status := sh.RunText(`
greet() {
	echo "hi $1"
	return 3
}
greet world
echo "status=$?"
`)
	c.Assert(status, qt.Equals, 0)
	c.Assert(out.String(), qt.Equals, "hi world\nstatus=3\n")
}

func TestArithCommand(t *testing.T) {
	c := qt.New(t)
	sh, _, _ := newTestShell()
	status := sh.RunText("x=1; (( x + 2 == 3 ))")
	c.Assert(status, qt.Equals, 0)

	sh2, _, _ := newTestShell()
	status2 := sh2.RunText("(( 1 == 2 ))")
	c.Assert(status2, qt.Not(qt.Equals), 0)
}

func TestCaseFallthrough(t *testing.T) {
	c := qt.New(t)
	sh, out, _ := newTestShell()
	sh.RunText(`
case a in
a) echo one ;&
b) echo two ;;
c) echo three ;;
esac
`)
	c.Assert(out.String(), qt.Equals, "one\ntwo\n")
}

func TestAndOrChain(t *testing.T) {
	c := qt.New(t)
	sh, out, _ := newTestShell()
	sh.RunText("true && echo a || echo b")
	c.Assert(out.String(), qt.Equals, "a\n")

	sh2, out2, _ := newTestShell()
	sh2.RunText("false && echo a || echo b")
	c.Assert(out2.String(), qt.Equals, "b\n")
}

func TestRedirectToFile(t *testing.T) {
	c := qt.New(t)
	sh, _, _ := newTestShell()
	dir := t.TempDir()
	path := dir + "/out.txt"
	sh.RunText("echo hello > " + path)
	data, err := os.ReadFile(path)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "hello\n")
}

func TestSubshellIsolatesVariables(t *testing.T) {
	c := qt.New(t)
	sh, out, _ := newTestShell()
	sh.RunText("x=outer; (x=inner; echo $x); echo $x")
	c.Assert(out.String(), qt.Equals, "inner\nouter\n")
}

func TestCommandSubstitution(t *testing.T) {
	c := qt.New(t)
	sh, out, _ := newTestShell()
	sh.RunText(`msg=$(echo hi); echo "got $msg"`)
	c.Assert(out.String(), qt.Equals, "got hi\n")
}

func TestPipelineExternal(t *testing.T) {
	if _, err := os.Stat("/bin/cat"); err != nil {
		t.Skip("/bin/cat not available")
	}
	c := qt.New(t)
	sh, out, _ := newTestShell()
	sh.RunText("echo hi | cat")
	c.Assert(out.String(), qt.Equals, "hi\n")
}

func TestExternalTrue(t *testing.T) {
	if _, err := os.Stat("/bin/true"); err != nil {
		t.Skip("/bin/true not available")
	}
	c := qt.New(t)
	sh, _, _ := newTestShell()
	status := sh.RunText("/bin/true")
	c.Assert(status, qt.Equals, 0)
}

func TestBackgroundAndWait(t *testing.T) {
	if _, err := os.Stat("/bin/sleep"); err != nil {
		t.Skip("/bin/sleep not available")
	}
	c := qt.New(t)
	sh, _, _ := newTestShell()
	sh.RunText("/bin/sleep 0.05 &")
	c.Assert(len(sh.Jobs().List()), qt.Equals, 1)
	sh.RunText("wait")
}
