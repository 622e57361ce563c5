// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package main

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// TestMain lets testscript re-exec this test binary as "sush" for every
// script command, exactly the pattern go-internal/testscript documents for
// testing a CLI without building and installing it first; the teacher's
// own cmd/shfmt uses the same tool for its end-to-end fixtures.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"sush": run,
	}))
}

// TestScripts runs every .txt script under testdata/script, covering
// spec §8's numbered scenarios: simple commands, pipelines, control flow,
// exit-status propagation, and -c invocation.
func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}
