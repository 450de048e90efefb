// Command colloml is the DSL's CLI entry point: parse/check/run a module,
// reformat its AST, drop into a REPL, or build and solve a toy demo problem.
//
// Grounded on the teacher's cmd/ailang/main.go: flag.Bool/flag.Int vars
// declared inline in main, flag.Parse then a switch on flag.Arg(0), and
// fatih/color SprintFuncs for status output. Where the teacher leaves a
// command half-built with a "// TODO: Implement" placeholder (run, check),
// this command wires the real pipeline instead, since every one of these
// operations now exists.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/collomatique/colloml/internal/ast"
	"github.com/collomatique/colloml/internal/check"
	"github.com/collomatique/colloml/internal/config"
	"github.com/collomatique/colloml/internal/errors"
	"github.com/collomatique/colloml/internal/eval"
	"github.com/collomatique/colloml/internal/ilpvar"
	"github.com/collomatique/colloml/internal/lexer"
	"github.com/collomatique/colloml/internal/linexpr"
	"github.com/collomatique/colloml/internal/module"
	"github.com/collomatique/colloml/internal/parser"
	"github.com/collomatique/colloml/internal/problem"
	"github.com/collomatique/colloml/internal/repl"
	"github.com/collomatique/colloml/internal/solver"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	cfg := config.Default()
	configPath := config.RegisterFlags(flag.CommandLine, &cfg)
	parallel := flag.Bool("parallel", false, "solve-demo: solve the demo's independent batches concurrently")
	versionFlag := flag.Bool("version", false, "print version information")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("colloml %s\n", bold("dev"))
		return
	}

	if *configPath != "" {
		loaded, err := config.LoadYAML(cfg, *configPath)
		if err != nil {
			reportFatal(err)
		}
		cfg = loaded
	} else if err := cfg.Validate(); err != nil {
		reportFatal(err)
	}

	if flag.NArg() == 0 {
		printHelp()
		return
	}

	switch command := flag.Arg(0); command {
	case "run":
		requireFileArg(command)
		runFile(flag.Arg(1))
	case "check":
		requireFileArg(command)
		checkFile(flag.Arg(1))
	case "fmt-ast":
		requireFileArg(command)
		fmtAST(flag.Arg(1))
	case "repl":
		repl.New().Start(os.Stdin, os.Stdout)
	case "solve-demo":
		solveDemo(cfg, *parallel)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("error"), command)
		printHelp()
		os.Exit(1)
	}
}

func requireFileArg(command string) {
	if flag.NArg() < 2 {
		fmt.Fprintf(os.Stderr, "%s: %q needs a file argument\n", red("error"), command)
		fmt.Fprintf(os.Stderr, "usage: colloml %s <file.colloml>\n", command)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(bold("colloml") + " - combinatorial scheduling DSL compiler/evaluator")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  colloml <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  run <file>        parse, check and evaluate every public entry point")
	fmt.Println("  check <file>      parse and type-check without evaluating")
	fmt.Println("  fmt-ast <file>    parse and print the normalised AST back out")
	fmt.Println("  repl              start an interactive evaluator")
	fmt.Println("  solve-demo        build and solve a small built-in demo problem")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}

func parseFile(filename string) (*ast.Module, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot read file %q: %w", filename, err)
	}
	l := lexer.New(string(content), filename)
	modName := strings.TrimSuffix(filename[strings.LastIndexByte(filename, '/')+1:], ".colloml")
	mod, errs := parser.New(l, filename).ParseModule(modName)
	if len(errs) != 0 {
		return nil, errors.WrapReport(errs[0])
	}
	return mod, nil
}

func buildChecked(filename string) (*module.GlobalEnv, *ast.Module, error) {
	mod, err := parseFile(filename)
	if err != nil {
		return nil, nil, err
	}
	genv, berrs, warnings := module.Build(map[string]*ast.Module{mod.Name: mod}, nil, nil)
	if len(berrs) != 0 {
		return nil, nil, errors.WrapReport(berrs[0])
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "%s: %s\n", yellow("warning"), w)
	}
	if err, _ := check.New(genv).CheckAll(); err != nil {
		return nil, nil, err
	}
	return genv, mod, nil
}

func checkFile(filename string) {
	fmt.Printf("%s checking %s...\n", cyan("→"), filename)
	if _, _, err := buildChecked(filename); err != nil {
		reportFatal(err)
	}
	fmt.Printf("%s no errors found\n", green("✓"))
}

func fmtAST(filename string) {
	mod, err := parseFile(filename)
	if err != nil {
		reportFatal(err)
	}
	for _, s := range mod.Stmts {
		fmt.Println(s.String())
	}
}

// runFile evaluates every public, zero-argument function in the module in
// declaration order and prints its result, a minimal stand-in for a real
// batch driver (spec.md's Non-goals exclude a scheduling-data loader, so
// there is no dataset to run a full problem build against from the CLI).
func runFile(filename string) {
	genv, mod, err := buildChecked(filename)
	if err != nil {
		reportFatal(err)
	}
	ev := eval.New(genv, repl.NewStubEnvironment())
	ran := 0
	for _, stmt := range mod.Stmts {
		let, ok := stmt.(*ast.LetStmt)
		if !ok || !let.Pub || len(let.Params) != 0 {
			continue
		}
		val, err := ev.CallEntryPoint(mod.Name, let.Name, nil)
		if err != nil {
			reportFatal(err)
		}
		fmt.Printf("%s %s() = %s\n", cyan("→"), let.Name, val.String())
		ran++
	}
	if ran == 0 {
		fmt.Fprintln(os.Stderr, yellow("warning: no public zero-argument function to run"))
	}
}

func reportFatal(err error) {
	if rep, ok := errors.AsReport(err); ok {
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", red("error"), rep.Code, rep.Message)
	} else {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("error"), err)
	}
	os.Exit(1)
}

// solveDemo builds two independent toy binary-knapsack-style batches and
// solves each with internal/solver.BruteForce. With -parallel the two
// already-built batches are solved concurrently via golang.org/x/sync/errgroup,
// since they share no state; without it they run sequentially. This is the
// command's only use of x/sync — it is otherwise unimported anywhere else
// in this module (see DESIGN.md).
func solveDemo(cfg config.Config, parallel bool) {
	batches := demoBatches()
	results := make([]*solver.Solution[problem.Var], len(batches))

	timeout := time.Duration(cfg.SolverTimeout * float64(time.Second))

	solveOne := func(i int) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		bf := &solver.BruteForce[problem.Var]{MaxStates: 1 << 16}
		sol, err := bf.Solve(ctx, batches[i])
		if err != nil {
			return fmt.Errorf("batch %d: %w", i, err)
		}
		results[i] = sol
		return nil
	}

	if parallel {
		g, _ := errgroup.WithContext(context.Background())
		for i := range batches {
			i := i
			g.Go(func() error { return solveOne(i) })
		}
		if err := g.Wait(); err != nil {
			reportFatal(err)
		}
	} else {
		for i := range batches {
			if err := solveOne(i); err != nil {
				reportFatal(err)
			}
		}
	}

	for i, sol := range results {
		fmt.Printf("%s batch %d: objective=%s\n", green("✓"), i, formatFloat(sol.Objective))
		for v, val := range sol.Values {
			fmt.Printf("    %s = %s\n", v.String(), formatFloat(val))
		}
	}
}

func formatFloat(f float64) string { return fmt.Sprintf("%g", f) }

// demoBatches builds two tiny independent ILP models directly against
// internal/problem.Var and internal/solver.Model, bypassing the DSL
// front-end entirely — a fixed worked example rather than something
// derived from a .colloml source file, since solve-demo exists to exercise
// the solver boundary, not re-demonstrate the compiler pipeline.
func demoBatches() []*solver.Model[problem.Var] {
	mk := func(seed int) *solver.Model[problem.Var] {
		a := problem.BaseVar(ilpvar.ExternVar{Name: fmt.Sprintf("a%d", seed)})
		b := problem.BaseVar(ilpvar.ExternVar{Name: fmt.Sprintf("b%d", seed)})
		sum := linexpr.VarExpr(a).Add(linexpr.VarExpr(b))
		atMostOne := linexpr.Leq(sum, linexpr.New[problem.Var](1))
		objective := linexpr.VarExpr(a).MulConst(-2).Add(linexpr.VarExpr(b).MulConst(-3))
		return &solver.Model[problem.Var]{
			Vars: map[problem.Var]solver.Bounds{
				a: {Kind: solver.Binary, Min: 0, Max: 1},
				b: {Kind: solver.Binary, Min: 0, Max: 1},
			},
			Constraints: []*linexpr.Constraint[problem.Var]{atMostOne},
			Objective:   objective,
		}
	}
	return []*solver.Model[problem.Var]{mk(1), mk(2)}
}
