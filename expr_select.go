package chain

import (
	"errors"
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// SelectionError captures the failing expression alongside the original
// evaluator error.
type SelectionError struct {
	Expr string
	Err  error
}

func (e *SelectionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("chain: select expr=%q: %v", e.Expr, e.Err)
}

func (e *SelectionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Select evaluates an expr-lang predicate against every effective entry
// of the chain and returns the entries for which it yields true. The
// expression sees two variables, key and value; the effective value is
// the first-match view regardless of the chain's policy. Programs are
// compiled per call unless a ProgramCache is installed via
// WithProgramCache.
func (c *Chain[K, V]) Select(expression string) (map[K]V, error) {
	program, err := c.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	out := make(map[K]V)
	for key, value := range c.Snapshot() {
		keep, err := runPredicate(program, expression, key, value)
		if err != nil {
			return nil, err
		}
		if keep {
			out[key] = value
		}
	}
	return out, nil
}

// SelectFirst returns the first entry, in chain key order, whose key and
// value satisfy the predicate. ErrKeyNotFound reports that nothing
// matched.
func (c *Chain[K, V]) SelectFirst(expression string) (K, V, error) {
	var zeroK K
	var zeroV V
	program, err := c.loadOrCompile(expression)
	if err != nil {
		return zeroK, zeroV, err
	}
	snapshot := c.Snapshot()
	for _, key := range c.Keys() {
		value, ok := snapshot[key]
		if !ok {
			continue
		}
		keep, err := runPredicate(program, expression, key, value)
		if err != nil {
			return zeroK, zeroV, err
		}
		if keep {
			return key, value, nil
		}
	}
	return zeroK, zeroV, fmt.Errorf("%w: no entry matches %q", ErrKeyNotFound, expression)
}

func runPredicate[K comparable, V any](program *exprvm.Program, expression string, key K, value V) (bool, error) {
	result, err := exprlang.Run(program, map[string]any{"key": key, "value": value})
	if err != nil {
		return false, &SelectionError{Expr: expression, Err: err}
	}
	keep, ok := result.(bool)
	if !ok {
		return false, &SelectionError{Expr: expression, Err: fmt.Errorf("predicate returned %T, want bool", result)}
	}
	return keep, nil
}

func (c *Chain[K, V]) loadOrCompile(expression string) (*exprvm.Program, error) {
	if expression == "" {
		return nil, &SelectionError{Expr: expression, Err: errors.New("expression must not be empty")}
	}
	if cache := c.cfg.programs; cache != nil {
		if cached, ok := cache.Get(expression); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, &SelectionError{Expr: expression, Err: err}
	}
	if cache := c.cfg.programs; cache != nil {
		cache.Set(expression, program)
	}
	return program, nil
}
