// Package decorator models the external-module decorator functions CADL
// declarations are annotated with (spec.md §4.5 "Decorator application",
// §9 "Decorator exceptions"). A Binding is the bound, callable form of a
// `$name` export discovered during program loading; the checker invokes
// it once per fully-instantiated declaration.
//
// Descriptor/Binding is grounded on the teacher's core/decorator.Descriptor
// (single source-of-truth metadata struct reflectable by tooling),
// generalized from opal's Role/Capabilities execution-constraint model to
// CADL's simpler "one function, invoked with a Context" contract.
package decorator

import (
	"fmt"

	"github.com/cadl-lang/cadlc/diagnostic"
)

// Func is the shape every bound external decorator function takes: a
// Context carrying the program/target/args, per spec.md §4.5 "invokes
// each attached decorator once ... with a context object exposing the
// program and the argument-source location, followed by the target type
// and the decorator's evaluated arguments."
//
// Decorators return no value (spec.md §4.5); their effect is through side
// effects on what ctx exposes, or a panic that Invoke turns into a
// diagnostic.
type Func func(ctx *Context)

// Descriptor is the reflectable metadata recorded for every bound
// decorator, analogous to the teacher's Descriptor but pared down to what
// CADL's decorator model actually needs: identity and provenance, not
// execution-transport constraints (CADL decorators have no transport
// concept - that is opal's domain, not CADL's).
type Descriptor struct {
	// Path is the decorator's dotted invocation name without its leading
	// "@", e.g. "format" or "openapi.extension".
	Path string
	// ModulePath is the external module the decorator was loaded from.
	ModulePath string
	// ExportName is the `$`-prefixed export key the function was bound
	// from, e.g. "$format".
	ExportName string
}

// Binding pairs a Descriptor with its callable Func, the value stored on
// a syntax.Symbol's DecoratorHandle field (spec.md §3 "Symbols").
type Binding struct {
	Descriptor Descriptor
	Fn         Func
}

// Context is passed to a decorator Func on every invocation.
type Context struct {
	// Program is the *checker.Checker running the check pass, typed as
	// `any` because package checker imports this package. The checker
	// exports no accessor for its state registry, so a decorator cannot
	// reach the registry through Program.
	Program any
	// Target is the type the decorator was applied to.
	Target any
	// Args are the decorator's evaluated argument values, in source
	// order (identifiers resolved to their type, literals to their
	// constant value, type references to the instantiated type - spec.md
	// §4.5).
	Args []any
	// Site is the source span of the declaration the decorator is attached
	// to, used to anchor the diagnostic emitted if the decorator panics.
	Site diagnostic.Target
}

// Invoke calls b.Fn(ctx), recovering a panic into a diagnostic per spec.md
// §9 "Decorator exceptions: a decorator that throws must abort the
// current declaration's checking with a diagnostic that includes the
// decorator name and the target span; other declarations must still be
// checked." The caller is expected to continue checking remaining
// declarations regardless of the returned diagnostic.
func (b *Binding) Invoke(ctx *Context) (diag *diagnostic.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			d := diagnostic.New(diagnostic.CodeDecoratorThrew, "decorator @{name} failed: {reason}", ctx.Site)
			d.FormatArgs = map[string]string{"name": b.Descriptor.Path, "reason": fmt.Sprint(r)}
			diag = &d
		}
	}()
	b.Fn(ctx)
	return nil
}
