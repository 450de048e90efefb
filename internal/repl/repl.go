// Package repl implements `colloml repl`, a line-at-a-time evaluator for
// the DSL surface language against a small in-memory stub dataset.
//
// Grounded on the teacher's internal/repl (github.com/peterh/liner-backed
// read loop, a persistent history file in os.TempDir, fatih/color for
// prompt/error styling). The teacher's REPL drives a Hindley-Milner
// inference engine with type-class dictionaries, none of which exists
// here; this package keeps only the shape that still applies to a
// statically-annotated, uninferred language: read a line, parse+check+
// evaluate it, print the result or the structured error. Command
// completion (":help", ":type", ":quit", ...) uses github.com/sahilm/fuzzy
// the way pack repo ardnew-aenv completes its own shell commands, since
// the teacher's REPL has no completion at all.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/sahilm/fuzzy"

	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/check"
	"github.com/collomatique/colloml/internal/errors"
	"github.com/collomatique/colloml/internal/eval"
	"github.com/collomatique/colloml/internal/lexer"
	"github.com/collomatique/colloml/internal/module"
	"github.com/collomatique/colloml/internal/parser"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

var commands = []string{":help", ":type", ":quit", ":env"}

// REPL evaluates one DSL expression per line against a long-lived stub
// Environment (spec.md §6 "External Interfaces"), re-type-checking from
// scratch each time since the language has no incremental elaboration.
type REPL struct {
	env     eval.Environment
	history []string
}

// New returns a REPL backed by a fresh stub dataset with no declared
// objects or fixed variables.
func New() *REPL {
	return &REPL{env: NewStubEnvironment()}
}

func historyPath() string {
	return filepath.Join(os.TempDir(), ".colloml_history")
}

// Start runs the read-eval-print loop, writing to out. It keeps the
// teacher's Start(io.Reader, io.Writer) signature, but input is read from
// the terminal through liner; in is not read.
func (r *REPL) Start(in io.Reader, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		matches := fuzzy.Find(partial, commands)
		out := make([]string, len(matches))
		for i, m := range matches {
			out[i] = commands[m.Index]
		}
		return out
	})

	if f, err := os.Open(historyPath()); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath()); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintln(out, dim("colloml repl — type :help for commands, :quit to exit"))
	for {
		text, err := line.Prompt("colloml> ")
		if err != nil {
			return
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		line.AppendHistory(text)
		r.history = append(r.history, text)

		if strings.HasPrefix(text, ":") {
			if r.handleCommand(text, out) {
				return
			}
			continue
		}
		r.evalLine(text, out)
	}
}

func (r *REPL) handleCommand(cmd string, out io.Writer) (quit bool) {
	switch {
	case cmd == ":quit" || cmd == ":q":
		return true
	case cmd == ":help":
		fmt.Fprintln(out, "  :help        show this message")
		fmt.Fprintln(out, "  :env         list declared external variables")
		fmt.Fprintln(out, "  :type <expr> show the inferred static type of expr without evaluating it")
		fmt.Fprintln(out, "  :quit        exit")
	case cmd == ":env":
		for name := range r.env.(*StubEnvironment).vars {
			fmt.Fprintln(out, " ", name)
		}
	case strings.HasPrefix(cmd, ":type "):
		expr := strings.TrimPrefix(cmd, ":type ")
		t, err := r.typeOf(expr)
		if err != nil {
			printErr(out, err)
			return false
		}
		fmt.Fprintln(out, t.String())
	default:
		fmt.Fprintln(out, yellow("unknown command: "+cmd))
	}
	return false
}

// buildProbe wraps expr as the sole public, zero-argument function of a
// throwaway "repl" module under each of the candidate return types in
// turn, parsing+checking until one type-checks — the REPL's workaround
// for the language having no type inference (every let binding must state
// its return type up front, spec.md §6 surface grammar).
func buildProbe(expr string, retType string) (*module.GlobalEnv, error) {
	src := fmt.Sprintf("let pub __repl__() -> %s = %s;\n", retType, expr)
	mod, perrs := parser.New(lexer.New(src, "<repl>"), "<repl>").ParseModule("repl")
	if len(perrs) != 0 {
		return nil, errors.WrapReport(perrs[0])
	}
	genv, berrs, _ := module.Build(map[string]*ast.Module{"repl": mod}, nil, nil)
	if len(berrs) != 0 {
		return nil, errors.WrapReport(berrs[0])
	}
	if err, _ := check.New(genv).CheckAll(); err != nil {
		return nil, err
	}
	return genv, nil
}

var candidateTypes = []string{"Int", "Bool", "String", "LinExpr", "Constraint"}

func probeAll(expr string) (*module.GlobalEnv, error) {
	var lastErr error
	for _, t := range candidateTypes {
		genv, err := buildProbe(expr, t)
		if err == nil {
			return genv, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (r *REPL) typeOf(expr string) (fmt.Stringer, error) {
	genv, err := probeAll(expr)
	if err != nil {
		return nil, err
	}
	return genv.Functions[module.FuncKey{Module: "repl", Name: "__repl__"}].Output, nil
}

func (r *REPL) evalLine(expr string, out io.Writer) {
	genv, err := probeAll(expr)
	if err != nil {
		printErr(out, err)
		return
	}
	ev := eval.New(genv, r.env)
	v, err := ev.CallEntryPoint("repl", "__repl__", nil)
	if err != nil {
		printErr(out, err)
		return
	}
	fmt.Fprintln(out, green(v.String()))
}

func printErr(out io.Writer, err error) {
	if rep, ok := errors.AsReport(err); ok {
		fmt.Fprintln(out, red(rep.Code+": "+rep.Message))
		return
	}
	fmt.Fprintln(out, red(err.Error()))
}
