package eval

import (
	"fmt"

	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/errors"
)

// PanicError carries a user-triggered panic payload (spec.md §7 "Panic
// (ExprValue) raised by user panic(…), e![i] out of bounds, or cast!
// failure"). Unlike every other evaluation error this is not a coded
// *errors.Report, since its payload is a runtime Value rather than a
// string: internal/problem type-asserts it back out to build
// ProblemError.Panic.
type PanicError struct {
	Value *Value
}

func (e *PanicError) Error() string { return "panic: " + e.Value.String() }

func evlErr(code, msg string, sp ast.Span) error {
	return errors.WrapReport(errors.New("EVL", code, msg, &sp))
}

func divByZero(sp ast.Span) error {
	return evlErr(errors.EVL001, "division or modulo by zero", sp)
}

func listIndexPanic(i, n int, sp ast.Span) error {
	return &PanicError{Value: StringValue(fmt.Sprintf(
		"list index out of bounds: index %d but list has %d elements", i, n))}
}

func castPanic(v *Value, target string, sp ast.Span) error {
	return &PanicError{Value: StringValue(fmt.Sprintf(
		"cast! failed: value %s does not fit in type %s", v, target))}
}

func lookupErr(kind, name string, sp ast.Span) error {
	return evlErr(errors.EVL005, fmt.Sprintf("%s %q not found in the environment", kind, name), sp)
}

// argCountMismatch and unknownFunction are raised by Evaluator.evalCall: caller-facing
// PRB-coded problems (spec.md §4.8 ProblemError), surfaced verbatim from C6
// so C8 only needs to wrap, not reinterpret.
func argCountMismatch(module, fn string, expected, found int, sp ast.Span) error {
	return errors.WrapReport(errors.New("PRB", errors.PRB003,
		fmt.Sprintf("%s::%s expects %d arguments, found %d", module, fn, expected, found), &sp).
		WithData(map[string]any{"expected": expected, "found": found}))
}

func unknownFunction(module, fn string, sp ast.Span) error {
	return errors.WrapReport(errors.New("PRB", errors.PRB002,
		fmt.Sprintf("unknown function %s::%s", module, fn), &sp))
}
