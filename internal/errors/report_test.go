package errors_test

import (
	"strings"
	"testing"

	goerrors "errors"

	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/errors"
)

func TestWrapAndAsReport(t *testing.T) {
	sp := ast.Span{Start: 1, End: 4}
	rep := errors.New("check", errors.CHK001, "type mismatch", &sp).
		WithData(map[string]any{"expected": "Int", "found": "Bool"}).
		WithFix("cast the value with cast!", 0.6)

	err := errors.WrapReport(rep)
	got, ok := errors.AsReport(err)
	if !ok {
		t.Fatal("expected AsReport to find the wrapped report")
	}
	if got.Code != errors.CHK001 {
		t.Errorf("Code = %s, want %s", got.Code, errors.CHK001)
	}
	if !strings.Contains(err.Error(), "CHK001") {
		t.Errorf("Error() = %q, want it to mention the code", err.Error())
	}
}

func TestAsReportMissesPlainErrors(t *testing.T) {
	_, ok := errors.AsReport(goerrors.New("boom"))
	if ok {
		t.Error("AsReport should not find a report in a plain error")
	}
}

func TestToJSONIsDeterministic(t *testing.T) {
	rep := errors.New("problem", errors.PRB005, "variable already defined", nil).
		WithData(map[string]any{"z": 1, "a": 2, "m": 3})

	out1, err := rep.ToJSON(true)
	if err != nil {
		t.Fatal(err)
	}
	out2, err := rep.ToJSON(true)
	if err != nil {
		t.Fatal(err)
	}
	if out1 != out2 {
		t.Errorf("ToJSON not deterministic: %q vs %q", out1, out2)
	}
	// encoding/json sorts map keys lexically.
	if !strings.Contains(out1, `"a":2`) || strings.Index(out1, `"a"`) > strings.Index(out1, `"m"`) {
		t.Errorf("expected sorted keys in %q", out1)
	}
}

func TestNewGenericWrapsPlainError(t *testing.T) {
	rep := errors.NewGeneric("solver", goerrors.New("timed out"))
	if rep.Code != "RUNTIME" || rep.Phase != "solver" {
		t.Errorf("unexpected generic report: %+v", rep)
	}
}
