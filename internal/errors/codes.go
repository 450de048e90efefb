// Package errors provides the structured diagnostic type used across every
// compiler phase: a stable error code, the phase it came from, an optional
// source span, and free-form structured data for tooling to key on.
package errors

// Error codes are organised by phase, matching internal/ast.Span-bearing
// diagnostics as they travel from lexing through problem-building.
const (
	// Lexer/Parser errors (PAR###)
	PAR001 = "PAR001" // expected token not found (p.expect mismatch)
	PAR002 = "PAR002" // invalid integer literal
	PAR003 = "PAR003" // expected a type expression
	PAR004 = "PAR004" // unexpected token starting an expression
	PAR005 = "PAR005" // expected a top-level statement
	PAR006 = "PAR006" // invalid enum declaration syntax
	PAR007 = "PAR007" // invalid match branch syntax
	PAR008 = "PAR008" // invalid reify statement syntax
	PAR009 = "PAR009" // unterminated string literal
	PAR010 = "PAR010" // missing closing delimiter

	// Module/environment errors (MOD###) — C3 Global Environment
	MOD001 = "MOD001" // duplicate function declaration within a module
	MOD002 = "MOD002" // duplicate type/enum declaration, or shadows a primitive/object type
	MOD003 = "MOD003" // unknown type or identifier referenced
	MOD004 = "MOD004" // import names an unknown module, or a module importing itself
	MOD005 = "MOD005" // symbol conflict: an import installs a path already present
	MOD006 = "MOD006" // reify statement's target is not a function, or has the wrong return type
	MOD007 = "MOD007" // duplicate parameter name in a function declaration
	MOD008 = "MOD008" // unguarded recursive type declaration
	MOD009 = "MOD009" // internal variable/variable-list name already defined
	MOD010 = "MOD010" // internal error: unrecognised AST node reached module resolution

	// Semantic check errors (CHK###) — C4 Semantic Analyser
	CHK001 = "CHK001" // type mismatch
	CHK002 = "CHK002" // unbound identifier
	CHK003 = "CHK003" // wrong argument count
	CHK004 = "CHK004" // non-exhaustive or unreachable match branch
	CHK005 = "CHK005" // invalid cast target
	CHK006 = "CHK006" // quantifier body does not type to the required carrier
	CHK007 = "CHK007" // constraint operator applied to non-coercible operands
	CHK008 = "CHK008" // struct/tuple field access on incompatible type
	CHK009 = "CHK009" // unused private declaration (warning-level)

	// Evaluator errors (EVL###) — C6/C7
	EVL001 = "EVL001" // division by zero
	EVL002 = "EVL002" // list index out of bounds (panic-form)
	EVL003 = "EVL003" // cast! failed at runtime
	EVL004 = "EVL004" // fold/sum/forall over an empty collection with no base case
	EVL005 = "EVL005" // external variable/object lookup failed
	EVL006 = "EVL006" // call-history cache inconsistency (internal invariant)

	// Problem-builder errors (PRB###) — C8
	PRB001 = "PRB001" // non-integer-domain variable used where an integer is required
	PRB002 = "PRB002" // unknown function referenced by reify
	PRB003 = "PRB003" // argument count mismatch on a reified call
	PRB004 = "PRB004" // invalid expression value (wrong ExprValue kind returned)
	PRB005 = "PRB005" // variable already defined (external/reified name collision)
	PRB006 = "PRB006" // script already used (duplicate StoredScript reference)
	PRB007 = "PRB007" // wrong return type from a reified function
	PRB008 = "PRB008" // unexpected return value shape
	PRB009 = "PRB009" // eval value incompatible with eval object (original_source supplement)

	// Reification/objectification errors (RFY###) — C9
	RFY001 = "RFY001" // missing or non-finite Big-M bound
	RFY002 = "RFY002" // objective already set (duplicate objectify)
	RFY003 = "RFY003" // empty constraint list passed to an AND-helper encoding

	// Configuration errors (CFG###)
	CFG001 = "CFG001" // invalid flag value
	CFG002 = "CFG002" // config file could not be read or parsed
	CFG003 = "CFG003" // config value out of range

	// Solver-collaborator errors (SLV###)
	SLV001 = "SLV001" // solver reported infeasible
	SLV002 = "SLV002" // solver reported unbounded
	SLV003 = "SLV003" // solver timed out
)
