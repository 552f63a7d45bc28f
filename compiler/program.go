package compiler

import (
	"github.com/cadl-lang/cadlc/diagnostic"
	"github.com/cadl-lang/cadlc/state"
	"github.com/cadl-lang/cadlc/types"
)

// DiagnosticLevel is the minimum severity an emitter is asked to care
// about, named in spec.md §6's compiler-options accessor. The sink itself
// (diagnostic.Bag) never filters by level - this is advisory metadata
// passed through to emitters, not enforced by the core.
type DiagnosticLevel string

const (
	DiagnosticLevelDefault DiagnosticLevel = ""
	DiagnosticLevelWarning DiagnosticLevel = "warning"
	DiagnosticLevelError   DiagnosticLevel = "error"
)

// Options is the compiler-options accessor spec.md §6 names: "emitters,
// output_dir, no_emit, no_std_lib, diagnostic_level, miscellaneous string
// options" (supplemented in SPEC_FULL.md §4 with a concrete shape).
type Options struct {
	Emitters        []string
	OutputDir       string
	NoEmit          bool
	NoStdLib        bool
	DiagnosticLevel DiagnosticLevel
	Options         map[string]string

	// CurrentExecutable is the realpath-comparable path of the compiler
	// binary actually running, supplied by the CLI that calls Load
	// (spec.md §4.4 step 4 "compiler-version mismatch"). Left empty, the
	// check is skipped - there is nothing to compare against.
	CurrentExecutable string
}

// Program is the emitter/plugin contract spec.md §6 names: the loaded
// source-file map, the constructed type graph rooted at the global
// namespace, the state registry, the diagnostic sink, validate/emit
// callback registration, and the compiler options.
type Program struct {
	bag      *diagnostic.Bag
	sources  map[string]*diagnostic.SourceFile
	global   *types.Namespace
	state    *state.Registry
	options  Options
	emitters []LoadedEmitter

	onValidate []func(*Program)
	onEmit     []func(*Program)
}

// SourceFiles returns every file loaded for this program, keyed by the
// path it was loaded at.
func (p *Program) SourceFiles() map[string]*diagnostic.SourceFile {
	out := make(map[string]*diagnostic.SourceFile, len(p.sources))
	for k, v := range p.sources {
		out[k] = v
	}
	return out
}

// Global returns the constructed type graph's root namespace.
func (p *Program) Global() *types.Namespace { return p.global }

// StateMap returns key's program-scoped Map, per spec.md §4.6.
func (p *Program) StateMap(key state.Key) map[any]any { return p.state.Map(key) }

// StateSet returns key's program-scoped Set, per spec.md §4.6.
func (p *Program) StateSet(key state.Key) map[any]struct{} { return p.state.Set(key) }

// Diagnostics returns the program-level diagnostic sink.
func (p *Program) Diagnostics() *diagnostic.Bag { return p.bag }

// HasError reports whether any error-severity diagnostic was ever
// accepted (spec.md §7 "emitter callbacks inspect it to decide whether to
// write outputs").
func (p *Program) HasError() bool { return p.bag.HasError() }

// CompilerOptions returns the options the program was loaded with.
func (p *Program) CompilerOptions() Options { return p.options }

// Emitters returns the emitters requested via Options.Emitters, resolved
// to package/name pairs (spec.md §4.4 step 5; see LoadEmitters).
func (p *Program) Emitters() []LoadedEmitter { return p.emitters }

// OnValidate appends a validate callback (spec.md §4.4 step 6). Load runs
// the validate callbacks once, before it returns the Program; a callback
// appended to the returned Program is not run by Load.
func (p *Program) OnValidate(fn func(*Program)) { p.onValidate = append(p.onValidate, fn) }

// OnEmit appends an emit callback, run after the validate callbacks and
// skipped entirely when Options.NoEmit is set (spec.md §6 "no_emit"). As
// with OnValidate, a callback appended after Load returns is not run.
func (p *Program) OnEmit(fn func(*Program)) { p.onEmit = append(p.onEmit, fn) }

// runValidateAndEmit dispatches the registered callbacks in registration
// order (spec.md §5 "External-module decorator binding is deterministic
// in the order the module's exports are enumerated" - the same ordering
// discipline applies to these callbacks).
func (p *Program) runValidateAndEmit() {
	for _, fn := range p.onValidate {
		fn(p)
	}
	if p.options.NoEmit {
		return
	}
	for _, fn := range p.onEmit {
		fn(p)
	}
}
