package compiler

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cadl-lang/cadlc/binder"
	"github.com/cadl-lang/cadlc/checker"
	"github.com/cadl-lang/cadlc/decorator"
	"github.com/cadl-lang/cadlc/diagnostic"
	"github.com/cadl-lang/cadlc/internal/invariant"
	"github.com/cadl-lang/cadlc/state"
	"github.com/cadl-lang/cadlc/syntax"
)

// loader holds everything one Load call threads through: the seen-set
// (spec.md §4.4 "each file is loaded at most once"), the files discovered
// so far in depth-first discovery order (spec.md §4.5 "files in import-
// discovery order"), and the shared binder.Registry every bound script
// merges namespaces through.
//
// Grounded on the teacher's runtime/lexer.go debug-logger idiom: a
// log/slog logger gated by an env var, not a boolean field threaded
// through every call.
type loader struct {
	host   Host
	bag    *diagnostic.Bag
	reg    *binder.Registry
	logger *slog.Logger

	seen    map[string]bool
	sources map[string]*diagnostic.SourceFile
	files   []checker.File

	onValidate []func(*Program)
	onEmit     []func(*Program)

	aborted error
}

func newLoader(host Host) *loader {
	invariant.NotNil(host, "host")
	level := slog.LevelInfo
	if os.Getenv("CADLC_DEBUG_LOADER") != "" {
		level = slog.LevelDebug
	}
	return &loader{
		host:    host,
		bag:     diagnostic.NewBag(),
		reg:     binder.NewRegistry(),
		logger:  slog.New(slog.NewTextHandler(host.LogSink(), &slog.HandlerOptions{Level: level})),
		seen:    map[string]bool{},
		sources: map[string]*diagnostic.SourceFile{},
	}
}

// Load runs the pipeline spec.md §4.4 describes: optional stdlib loading,
// main-file resolution, compiler-version-mismatch detection, recursive
// import loading, binding, checking, emitter resolution, and validate/emit
// callback dispatch.
//
// The returned error is non-nil only for the two fatal cases spec.md names:
// a compiler-version mismatch (step 4) and Host cancellation (spec.md §5
// "propagates outward and aborts the compilation... there is no partial
// result" - no Program is returned in that case). Every other failure
// (a missing import, an unresolved library, a malformed descriptor) is
// recorded as a diagnostic on the returned Program instead.
func Load(ctx context.Context, host Host, entryPath string, opts Options) (*Program, error) {
	l := newLoader(host)

	if !opts.NoStdLib {
		dirs, err := host.GetLibDirs(ctx)
		if err != nil {
			l.errorf(diagnostic.CodeIOError, diagnostic.NoTarget,
				"failed to list standard library directories: {reason}", map[string]string{"reason": err.Error()})
		}
		for _, dir := range dirs {
			l.loadDirectory(ctx, dir)
			if l.aborted != nil {
				return nil, l.aborted
			}
		}
	}

	mainPath, err := l.resolveMain(ctx, entryPath)
	if err != nil {
		l.errorf(diagnostic.CodeFileNotFound, diagnostic.NoTarget,
			"entry path '{path}' could not be resolved: {reason}",
			map[string]string{"path": entryPath, "reason": err.Error()})
		return l.finish(opts), nil
	}

	if err := l.checkCompilerVersion(ctx, filepath.Dir(mainPath), opts.CurrentExecutable); err != nil {
		return nil, err
	}

	l.loadFile(ctx, mainPath)
	if l.aborted != nil {
		return nil, l.aborted
	}
	l.emitDuplicateSymbolDiagnostics()

	return l.finish(opts), nil
}

// finish runs the checker over every bound file and assembles the Program
// the emitter/plugin contract exposes (spec.md §4.4 step 6).
func (l *loader) finish(opts Options) *Program {
	st := state.NewRegistry()
	c := checker.New(l.bag, st, l.reg)
	global := c.Check(l.files)
	invariant.Postcondition(global != nil, "checker.Check must always return a global namespace")

	prog := &Program{
		bag: l.bag, sources: l.sources, global: global, state: st, options: opts,
		onValidate: l.onValidate, onEmit: l.onEmit,
	}
	prog.emitters = LoadEmitters(l.bag, opts.Emitters)
	prog.runValidateAndEmit()
	return prog
}

// checkCancelled reports whether ctx has been cancelled, recording the
// cause so Load can abort without a partial result (spec.md §5).
func (l *loader) checkCancelled(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		l.aborted = err
		return true
	}
	return false
}

// resolveMain implements spec.md §4.4 step 2: loads the main file, reading
// a directory's package descriptor first if the entry path names one.
func (l *loader) resolveMain(ctx context.Context, entryPath string) (string, error) {
	abs, err := l.host.ResolveAbsolutePath(ctx, entryPath)
	if err != nil {
		abs = entryPath
	}
	isFile, isDir, err := l.host.Stat(ctx, abs)
	if err != nil {
		return "", err
	}
	if isDir {
		main, _, err := l.resolveDirectory(ctx, abs)
		return main, err
	}
	if !isFile {
		return "", ErrNotFound
	}
	return abs, nil
}

// checkCompilerVersion implements spec.md §4.4 step 4: if a compiler
// package resolves under the main file's directory via the same
// node-style lookup a bare import would use, and its launcher's real path
// differs from the currently executing compiler's, loading aborts.
// currentExecutable == "" (the CLI did not supply its own path) skips the
// check entirely - there is nothing to compare against.
func (l *loader) checkCompilerVersion(ctx context.Context, mainDir, currentExecutable string) error {
	if currentExecutable == "" {
		return nil
	}
	pkgDir, err := l.resolveBareSpecifier(ctx, mainDir, "cadlc")
	if err != nil {
		return nil // no local install found; nothing to compare against
	}
	_, desc, err := l.resolveDirectory(ctx, pkgDir)
	if err != nil {
		return nil
	}
	launcher, ok := desc.launcher(pkgDir)
	if !ok {
		return nil
	}
	localReal, err := l.host.Realpath(ctx, launcher)
	if err != nil {
		return nil
	}
	currentReal, err := l.host.Realpath(ctx, currentExecutable)
	if err != nil {
		currentReal = currentExecutable
	}
	if localReal == currentReal {
		return nil
	}
	l.errorf(diagnostic.CodeCompilerVersionMismatch, diagnostic.NoTarget,
		"a locally installed compiler was found at '{path}'; re-run using that launcher instead",
		map[string]string{"path": localReal})
	return errors.New("compiler: version mismatch, use local launcher " + localReal)
}

// loadDirectory loads one standard-library directory the Host announced
// (spec.md §4.4 step 1).
func (l *loader) loadDirectory(ctx context.Context, dir string) {
	main, _, err := l.resolveDirectory(ctx, dir)
	if err != nil {
		l.errorf(diagnostic.CodeLibraryNotFound, diagnostic.NoTarget,
			"standard library directory '{dir}' has no resolvable entry point: {reason}",
			map[string]string{"dir": dir, "reason": err.Error()})
		return
	}
	l.loadFile(ctx, main)
}

// loadFile parses, binds, and recursively loads path's imports, skipping
// work entirely if path's real path has already been seen (spec.md §4.4
// "each file is loaded at most once (seen-set keyed by absolute path)").
func (l *loader) loadFile(ctx context.Context, path string) {
	if l.checkCancelled(ctx) {
		return
	}

	real, err := l.host.Realpath(ctx, path)
	if err != nil {
		real = path
	}
	if l.seen[real] {
		return
	}
	l.seen[real] = true

	isFile, _, err := l.host.Stat(ctx, path)
	if err != nil || !isFile {
		l.errorf(diagnostic.CodeFileNotFound, diagnostic.NoTarget, "file '{path}' not found", map[string]string{"path": path})
		return
	}
	text, err := l.host.ReadFile(ctx, path)
	if err != nil {
		code := diagnostic.CodeIOError
		if errors.Is(err, ErrNotFound) {
			code = diagnostic.CodeFileNotFound
		}
		l.errorf(code, diagnostic.NoTarget, "failed to read '{path}': {reason}",
			map[string]string{"path": path, "reason": err.Error()})
		return
	}

	l.logger.Debug("loading file", "path", path)
	source := diagnostic.NewSourceFile(path, text)
	l.sources[path] = source
	script := syntax.Parse(source, l.bag)
	binder.Bind(script, l.reg)
	l.files = append(l.files, checker.File{Source: source, Script: script})

	for _, imp := range script.Imports {
		l.loadImport(ctx, script, imp)
		if l.aborted != nil {
			return
		}
	}
}

// loadImport resolves and loads one `import "spec";` statement, emitting a
// diagnostic anchored at the import site on failure instead of aborting
// the whole load (spec.md §7 "Recovery is local where possible").
func (l *loader) loadImport(ctx context.Context, fromScript *syntax.Script, imp *syntax.ImportStatement) {
	if l.checkCancelled(ctx) {
		return
	}

	fromDir := filepath.Dir(fromScript.Path)
	resolved, kind, err := l.resolveSpecifier(ctx, fromDir, imp.Path)
	if err != nil {
		code := diagnostic.CodeFileNotFound
		switch {
		case errors.Is(err, errLibraryNotFound):
			code = diagnostic.CodeLibraryNotFound
		case errors.Is(err, errInvalidImport):
			code = diagnostic.CodeInvalidImport
		}
		l.errorf(code, targetAt(l.sources[fromScript.Path], imp),
			"cannot resolve import '{path}': {reason}", map[string]string{"path": imp.Path, "reason": err.Error()})
		return
	}

	switch kind {
	case kindCadlSource:
		l.loadFile(ctx, resolved)
	case kindExternalModule:
		l.loadExternalModule(ctx, fromScript, resolved)
	default:
		l.errorf(diagnostic.CodeInvalidImport, targetAt(l.sources[fromScript.Path], imp),
			"import '{path}' has an unrecognized extension", map[string]string{"path": imp.Path})
	}
}

// loadExternalModule fetches a JS/MJS module's exports, in enumeration
// order (spec.md §5 "External-module decorator binding is deterministic
// in the order the module's exports are enumerated"), and declares each
// `$`-prefixed function export as a decorator symbol (spec.md §6
// "functions whose key begins with $ are decorator handles").
// "$onValidate"/"$onEmit" exports instead register Program callbacks
// (spec.md §4.4 step 6). A "namespace" export names the dotted namespace
// the module's decorators are bound into, synthesizing any missing
// segment (spec.md §4.3 "Missing namespace segments are synthesized", §2
// row 4 "declares synthetic namespaces for external modules") through the
// shared binder.Registry - the same merging machinery a real
// `namespace A.B {}` declaration goes through - so `using <namespace>`
// from any file of the program sees the decorator, not just the file
// that wrote the import. A module with no "namespace" export instead
// declares straight into the importing file's own locals, scoped the
// same way an ordinary top-level name is.
func (l *loader) loadExternalModule(ctx context.Context, fromScript *syntax.Script, path string) {
	if l.checkCancelled(ctx) {
		return
	}

	real, err := l.host.Realpath(ctx, path)
	if err != nil {
		real = path
	}
	if l.seen[real] {
		return
	}
	l.seen[real] = true

	exports, err := l.host.GetExternalModuleExports(ctx, path)
	if err != nil {
		code := diagnostic.CodeIOError
		if errors.Is(err, ErrNotFound) {
			code = diagnostic.CodeFileNotFound
		}
		l.errorf(code, diagnostic.NoTarget, "failed to load external module '{path}': {reason}",
			map[string]string{"path": path, "reason": err.Error()})
		return
	}

	var namespace string
	for _, exp := range exports {
		if exp.Key == "namespace" {
			if ns, ok := exp.Value.(string); ok {
				namespace = ns
			}
		}
	}

	for _, exp := range exports {
		key, value := exp.Key, exp.Value
		switch {
		case key == "$onValidate":
			if fn, ok := value.(func(*Program)); ok {
				l.onValidate = append(l.onValidate, fn)
			}
		case key == "$onEmit":
			if fn, ok := value.(func(*Program)); ok {
				l.onEmit = append(l.onEmit, fn)
			}
		case key == "namespace":
			// Consumed in the pass above.
		case strings.HasPrefix(key, "$"):
			fn, ok := value.(decorator.Func)
			if !ok {
				continue
			}
			name := strings.TrimPrefix(key, "$")
			sym := &syntax.Symbol{
				Name:  "@" + name,
				Flags: syntax.SymbolDecorator,
				DecoratorHandle: &decorator.Binding{
					Descriptor: decorator.Descriptor{Path: name, ModulePath: path, ExportName: key},
					Fn:         fn,
				},
			}
			if namespace != "" {
				l.reg.DeclareExternal(namespace, name, sym)
			} else {
				fromScript.Locals().Declare(name, sym)
			}
		}
	}
}

func (l *loader) errorf(code string, target diagnostic.Target, msg string, args map[string]string) {
	l.bag.Add(newDiag(code, target, msg, args))
}

func newDiag(code string, target diagnostic.Target, msg string, args map[string]string) diagnostic.Diagnostic {
	d := diagnostic.New(code, msg, target)
	d.FormatArgs = args
	return d
}

func targetAt(file *diagnostic.SourceFile, n syntax.Node) diagnostic.Target {
	if n == nil || file == nil {
		return diagnostic.NoTarget
	}
	return diagnostic.NewTarget(file, n.Base().Span())
}
