// Package check implements C4, the semantic analyser: phase 2c of the
// original module-processing pipeline (type-checking every function body
// against the C3 global environment) plus the final unused-private-
// declaration warning pass, both deliberately split out of internal/module
// to avoid a resolver/checker import cycle (see DESIGN.md).
//
// Grounded on the teacher's internal/types/typechecker.go (a TypeChecker
// struct driving one pass per declaration, extending a local type
// environment per function) and original_source's module_processing.rs
// phase-2c call into a LocalEnvCheck (the exact expression-level rules come
// from the DSL's own type algebra, internal/typesys, rather than a ported
// Rust checker — that file was not part of the retrieved source).
package check

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/collomatique/colloml/internal/errors"
	"github.com/collomatique/colloml/internal/module"
	"github.com/collomatique/colloml/internal/typesys"
)

// Checker type-checks every function body registered in a *module.GlobalEnv
// and accumulates every CHK### report it finds, instead of stopping at the
// first one (§4.4/§7 "a vector of semantic errors").
type Checker struct {
	env  *module.GlobalEnv
	errs *multierror.Error
}

// New returns a Checker bound to env.
func New(env *module.GlobalEnv) *Checker {
	return &Checker{env: env}
}

// CheckAll runs phase 2c over every function body, then collects unused
// -declaration warnings once checking has finished (so that calls resolved
// during checking have already marked their targets used). Returns the
// accumulated semantic errors (nil if none) and C4's unused-declaration
// warnings; C3's naming-convention warnings are returned by module.Build.
func (c *Checker) CheckAll() (error, []module.Warning) {
	var warns []module.Warning

	for key, fd := range c.env.Functions {
		local := newLocalEnv(key.Module)
		for i, name := range fd.ArgNames {
			local.bind(name, fd.Args[i])
		}
		local.pushScope()
		bodyType, err := c.checkExpr(key.Module, local, fd.Body)
		if err != nil {
			c.errs = multierror.Append(c.errs, err)
			continue
		}
		if !bodyType.IsSubtypeOf(fd.Output, typesys.AllowIntToLinExpr) {
			sp := fd.Body.Span()
			c.errs = multierror.Append(c.errs, errors.WrapReport(errors.New("CHK", errors.CHK001,
				fmt.Sprintf("function %q declares return type %s but its body has type %s", key.Name, fd.Output, bodyType),
				&sp)))
		}
	}

	warns = append(warns, c.env.CollectUnusedWarnings()...)

	if c.errs != nil {
		c.errs.ErrorFormat = func(errs []error) string {
			return multierror.ListFormatFunc(errs)
		}
		return c.errs, warns
	}
	return nil, warns
}
