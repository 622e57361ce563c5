// Copyright (c) 2026, The sush Authors
// See LICENSE for licensing information

package word

import (
	"os"
	"strconv"
	"strings"

	"github.com/sush-shell/sush/internal/arith"
	"github.com/sush-shell/sush/internal/core"
	"github.com/sush-shell/sush/internal/shopt"
)

// Config bundles everything the expansion pipeline needs from the rest of
// the shell: the parameter database, the option bag, a callback to run a
// command substitution sub-script, and the working directory pathname
// expansion resolves globs against.
type Config struct {
	DB         *core.Database
	Opts       *shopt.Options
	CommandSub func(script string) (string, error)
	Dir        string
}

func (c *Config) ifs() string {
	v := c.DB.GetParam("IFS")
	if e := c.DB.Lookup("IFS"); e == nil {
		return " \t\n"
	}
	return v
}

// lookupScalar resolves a bare name to its scalar string value, honoring
// -u (nounset) and the special-parameter table.
func (c *Config) lookupScalar(name string) (string, error) {
	if v, isArr, arr, ok := c.DB.Special(name); ok {
		if isArr {
			return strings.Join(arr, " "), nil
		}
		return v, nil
	}
	e := c.DB.Lookup(name)
	if e == nil {
		if c.Opts != nil && c.Opts.NoUnset {
			return "", &core.UnboundError{Name: name}
		}
		return "", nil
	}
	return e.String(), nil
}

// lookupArray resolves $name as an array context: returns the element
// list and whether name is actually array-typed (vs. a scalar, which is
// returned as a single-element slice for uniform handling by callers).
func (c *Config) lookupArray(name string) ([]string, bool) {
	if _, isArr, arr, ok := c.DB.Special(name); ok && isArr {
		return arr, true
	}
	e := c.DB.Lookup(name)
	if e == nil {
		return nil, false
	}
	switch e.Kind {
	case core.KindIndexedArray:
		return e.Indexed, true
	case core.KindAssocArray:
		keys := make([]string, 0, len(e.Assoc))
		for k := range e.Assoc {
			keys = append(keys, k)
		}
		return keys, true
	default:
		return []string{e.Scalar}, false
	}
}

func (c *Config) isSet(name string) bool {
	if _, _, _, ok := c.DB.Special(name); ok {
		return true
	}
	return c.DB.Lookup(name) != nil
}

// dbResolver adapts the Database to arith.Resolver for $(( )) / (( ))
// evaluation.
type dbResolver struct {
	db *core.Database
}

func (r dbResolver) Get(name string) (string, error) {
	if v, isArr, arr, ok := r.db.Special(name); ok {
		if isArr {
			if len(arr) > 0 {
				return arr[0], nil
			}
			return "", nil
		}
		return v, nil
	}
	return r.db.GetParam(name), nil
}

func (r dbResolver) Set(name, value string) error {
	return r.db.SetParam(name, value)
}

func (r dbResolver) GetIndex(name string, idx int64) (string, error) {
	return r.db.GetArrayElem(name, int(idx)), nil
}

func (r dbResolver) SetIndex(name string, idx int64, value string) error {
	return r.db.SetArrayElem(name, value, int(idx))
}

// EvalArith evaluates an arithmetic expression against cfg's database,
// for the standalone `((...))` command and the `let` builtin.
func EvalArith(cfg *Config, expr string) (int64, error) {
	return evalArith(cfg, expr)
}

func evalArith(cfg *Config, expr string) (int64, error) {
	elems, err := arith.Parse(expr)
	if err != nil {
		return 0, err
	}
	return arith.Eval(elems, dbResolver{db: cfg.DB})
}

func homeDir(user string) string {
	if user == "" {
		if h := os.Getenv("HOME"); h != "" {
			return h
		}
		return "/"
	}
	// Looking up other users' home directories needs cgo-free os/user,
	// which the teacher avoids pulling in just for tilde expansion, so no
	// lookup is made: ~user always expands to /home/user.
	return "/home/" + user
}

func itoa(n int) string { return strconv.Itoa(n) }
