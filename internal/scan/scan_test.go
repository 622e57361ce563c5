// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package scan_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/sush-shell/sush/internal/scan"
)

func TestName(t *testing.T) {
	c := qt.New(t)
	c.Assert(scan.Name("foo_bar2 rest"), qt.Equals, 8)
	c.Assert(scan.Name("2bad"), qt.Equals, 0)
}

func TestNumber(t *testing.T) {
	c := qt.New(t)
	c.Assert(scan.Number("0x1F "), qt.Equals, 4)
	c.Assert(scan.Number("16#ff "), qt.Equals, 5)
	c.Assert(scan.Number("123abc"), qt.Equals, 3)
}

func TestWordQuoting(t *testing.T) {
	c := qt.New(t)
	c.Assert(scan.Word(`'a b'c d`, ""), qt.Equals, 6)
	c.Assert(scan.Word(`a\ b c`, ""), qt.Equals, 4)
}

func TestCalcOperator(t *testing.T) {
	c := qt.New(t)
	c.Assert(scan.CalcOperator("<<=rest"), qt.Equals, 3)
	c.Assert(scan.CalcOperator("**rest"), qt.Equals, 2)
	c.Assert(scan.CalcOperator("+rest"), qt.Equals, 1)
}

func TestHistoryExpansion(t *testing.T) {
	c := qt.New(t)
	c.Assert(scan.HistoryExpansion("!!"), qt.Equals, 2)
	c.Assert(scan.HistoryExpansion("!42 "), qt.Equals, 3)
	c.Assert(scan.HistoryExpansion("!foo "), qt.Equals, 4)
	c.Assert(scan.HistoryExpansion("abc"), qt.Equals, 0)
}
