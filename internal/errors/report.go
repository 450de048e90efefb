package errors

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/collomatique/colloml/internal/ast"
)

// Fix is a suggested remediation attached to a Report, surfaced by the CLI
// and REPL alongside the diagnostic.
type Fix struct {
	Suggestion string  `json:"suggestion"`
	Confidence float64 `json:"confidence"`
}

// Report is the canonical structured diagnostic type. Every phase (lexer,
// parser, module loader, semantic checker, evaluator, problem builder,
// reifier) reports its coded diagnostics as *Report values; a few evaluator
// failures (an unmatched match, an invalid operand combination) are still
// plain fmt.Errorf errors, and user panics are eval.PanicError.
type Report struct {
	Schema  string         `json:"schema"` // always "colloml.error/v1"
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Span    *ast.Span      `json:"span,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Fix     *Fix           `json:"fix,omitempty"`
}

const schemaV1 = "colloml.error/v1"

// New builds a Report for phase/code with message, optionally attaching a
// source span.
func New(phase, code, message string, span *ast.Span) *Report {
	return &Report{Schema: schemaV1, Code: code, Phase: phase, Message: message, Span: span}
}

// WithData attaches structured data and returns the receiver for chaining.
func (r *Report) WithData(data map[string]any) *Report {
	r.Data = data
	return r
}

// WithFix attaches a suggested fix and returns the receiver for chaining.
func (r *Report) WithFix(suggestion string, confidence float64) *Report {
	r.Fix = &Fix{Suggestion: suggestion, Confidence: confidence}
	return r
}

// ReportError wraps a Report as a Go error so it survives errors.As
// unwrapping through ordinary error-handling code.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	if e.Rep.Span != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Rep.Code, e.Rep.Message, e.Rep.Span)
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a Report from an error chain.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps a Report as an error. Callers should return
// errors.WrapReport(report) rather than fmt.Errorf to preserve structure
// all the way out to the CLI.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON renders the report deterministically (Go's encoding/json already
// sorts map keys, so Data serialises in a stable order).
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// NewGeneric wraps an arbitrary error as a generic "RUNTIME" report, for the
// rare case where a collaborator (e.g. the solver) returns a plain error.
func NewGeneric(phase string, err error) *Report {
	return &Report{Schema: schemaV1, Code: "RUNTIME", Phase: phase, Message: err.Error()}
}
