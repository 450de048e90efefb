package problem

import (
	"fmt"

	"github.com/collomatique/colloml/internal/errors"
	"github.com/collomatique/colloml/internal/eval"
)

// PanicError wraps an *eval.PanicError surfaced while evaluating a
// constraint or objective entry point (spec.md §4.8 ProblemError "Panic
// (value) propagated from evaluation"). It is not PRB-coded, matching
// internal/eval's PanicError design: its payload is a runtime value, not a
// diagnostic string.
type PanicError struct {
	Inner *eval.PanicError
}

func (e *PanicError) Error() string { return e.Inner.Error() }
func (e *PanicError) Unwrap() error { return e.Inner }

func errNonIntegerVariable(name string) error {
	return errors.WrapReport(errors.New("PRB", errors.PRB001,
		fmt.Sprintf("variable %q has a non-integer domain", name), nil).
		WithData(map[string]any{"var": name}))
}

func errUnknownFunction(fn string) error {
	return errors.WrapReport(errors.New("PRB", errors.PRB002,
		fmt.Sprintf("function %q was not found in the module (maybe it is not public?)", fn), nil))
}

func errArgumentCountMismatch(fn string, expected, found int) error {
	return errors.WrapReport(errors.New("PRB", errors.PRB003,
		fmt.Sprintf("function %q expects %d arguments but got %d", fn, expected, found), nil).
		WithData(map[string]any{"expected": expected, "found": found}))
}

func errWrongReturnType(fn, got, want string) error {
	return errors.WrapReport(errors.New("PRB", errors.PRB007,
		fmt.Sprintf("function %q returns %s instead of %s", fn, got, want), nil).
		WithData(map[string]any{"returned": got, "expected": want}))
}

func errUnexpectedReturnValue(fn, got string) error {
	return errors.WrapReport(errors.New("PRB", errors.PRB008,
		fmt.Sprintf("function %q returned %s, which cannot be used here", fn, got), nil))
}
