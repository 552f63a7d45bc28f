package compiler_test

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/cadl-lang/cadlc/compiler"
	"github.com/cadl-lang/cadlc/decorator"
	"github.com/cadl-lang/cadlc/diagnostic"
	"github.com/stretchr/testify/require"
)

// memHost is an in-memory compiler.Host standing in for a real filesystem
// and module loader, grounded the same way checker_test.go stands in for
// an external-module loader with declareDecorator: the core should not
// need a real OS to be exercised.
type memHost struct {
	files   map[string]string
	dirs    map[string]bool
	modules map[string][]compiler.ModuleExport
	libDirs []string
}

func newMemHost() *memHost {
	return &memHost{
		files:   map[string]string{},
		dirs:    map[string]bool{},
		modules: map[string][]compiler.ModuleExport{},
	}
}

func (h *memHost) addFile(path, text string) {
	h.files[path] = text
	for d := filepath.Dir(path); d != "." && d != "/" && d != ""; d = filepath.Dir(d) {
		h.dirs[d] = true
	}
}

// addModule registers path's exports in the given order, mirroring how a
// real JS module's own key enumeration order would arrive through a Host
// implementation (spec.md §5).
func (h *memHost) addModule(path string, exports ...compiler.ModuleExport) {
	h.modules[path] = exports
	for d := filepath.Dir(path); d != "." && d != "/" && d != ""; d = filepath.Dir(d) {
		h.dirs[d] = true
	}
}

func (h *memHost) ReadFile(ctx context.Context, path string) (string, error) {
	text, ok := h.files[path]
	if !ok {
		return "", fmt.Errorf("%w: %s", compiler.ErrNotFound, path)
	}
	return text, nil
}

func (h *memHost) Stat(ctx context.Context, path string) (isFile, isDir bool, err error) {
	if _, ok := h.files[path]; ok {
		return true, false, nil
	}
	if h.dirs[path] {
		return false, true, nil
	}
	return false, false, fmt.Errorf("%w: %s", compiler.ErrNotFound, path)
}

func (h *memHost) Realpath(ctx context.Context, path string) (string, error) { return path, nil }

func (h *memHost) GetExternalModuleExports(ctx context.Context, path string) ([]compiler.ModuleExport, error) {
	m, ok := h.modules[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", compiler.ErrNotFound, path)
	}
	return m, nil
}

func (h *memHost) GetLibDirs(ctx context.Context) ([]string, error) { return h.libDirs, nil }

func (h *memHost) WriteFile(ctx context.Context, path string, content []byte) error {
	h.addFile(path, string(content))
	return nil
}

func (h *memHost) LogSink() io.Writer { return io.Discard }

func (h *memHost) ResolveAbsolutePath(ctx context.Context, path string) (string, error) { return path, nil }

func diagCodes(bag *diagnostic.Bag) []string {
	var out []string
	for _, d := range bag.All() {
		out = append(out, d.Code)
	}
	return out
}

func TestLoadSingleFile(t *testing.T) {
	host := newMemHost()
	host.addFile("/proj/main.cadl", `model A { x: int32 }`)

	prog, err := compiler.Load(context.Background(), host, "/proj/main.cadl", compiler.Options{NoStdLib: true})
	require.NoError(t, err)
	require.Empty(t, diagCodes(prog.Diagnostics()))
	require.NotNil(t, prog.Global().Models["A"])
}

func TestLoadRelativeImport(t *testing.T) {
	host := newMemHost()
	host.addFile("/proj/main.cadl", `import "./lib.cadl"; model Y { ...X }`)
	host.addFile("/proj/lib.cadl", `model X { x: int32 }`)

	prog, err := compiler.Load(context.Background(), host, "/proj/main.cadl", compiler.Options{NoStdLib: true})
	require.NoError(t, err)
	require.Empty(t, diagCodes(prog.Diagnostics()))

	y := prog.Global().Models["Y"]
	require.NotNil(t, y)
	require.Len(t, y.Properties, 1)
}

func TestLoadDirectoryImportUsesPackageDescriptor(t *testing.T) {
	host := newMemHost()
	host.addFile("/proj/main.cadl", `import "./libdir"; model Y { ...X }`)
	host.addFile("/proj/libdir/package.json", `{"cadlMain": "index.cadl"}`)
	host.addFile("/proj/libdir/index.cadl", `model X { x: int32 }`)

	prog, err := compiler.Load(context.Background(), host, "/proj/main.cadl", compiler.Options{NoStdLib: true})
	require.NoError(t, err)
	require.Empty(t, diagCodes(prog.Diagnostics()))
	require.NotNil(t, prog.Global().Models["Y"])
}

func TestLoadBareSpecifierResolvesThroughNodeModules(t *testing.T) {
	host := newMemHost()
	host.addFile("/proj/src/main.cadl", `import "widgets"; model Y { ...X }`)
	host.addFile("/proj/node_modules/widgets/package.json", `{"cadlMain": "index.cadl"}`)
	host.addFile("/proj/node_modules/widgets/index.cadl", `model X { x: int32 }`)

	prog, err := compiler.Load(context.Background(), host, "/proj/src/main.cadl", compiler.Options{NoStdLib: true})
	require.NoError(t, err)
	require.Empty(t, diagCodes(prog.Diagnostics()))
	require.NotNil(t, prog.Global().Models["Y"])
}

func TestLoadMissingImportProducesDiagnosticWithoutAborting(t *testing.T) {
	host := newMemHost()
	host.addFile("/proj/main.cadl", `import "./missing.cadl"; model A {}`)

	prog, err := compiler.Load(context.Background(), host, "/proj/main.cadl", compiler.Options{NoStdLib: true})
	require.NoError(t, err)
	require.Contains(t, diagCodes(prog.Diagnostics()), diagnostic.CodeFileNotFound)
	require.NotNil(t, prog.Global().Models["A"], "a failed import should not prevent the rest of the program from checking")
}

func TestLoadReportsCrossFileDuplicateSymbol(t *testing.T) {
	host := newMemHost()
	host.addFile("/proj/main.cadl", `import "./a.cadl"; model Dup {}`)
	host.addFile("/proj/a.cadl", `model Dup {}`)

	prog, err := compiler.Load(context.Background(), host, "/proj/main.cadl", compiler.Options{NoStdLib: true})
	require.NoError(t, err)
	require.Contains(t, diagCodes(prog.Diagnostics()), diagnostic.CodeDuplicateSymbol)
}

func TestLoadExternalModuleDecoratorIsInvoked(t *testing.T) {
	host := newMemHost()
	host.addFile("/proj/main.cadl", `import "./lib.js"; @blue model A {}`)
	calls := 0
	host.addModule("/proj/lib.js", compiler.ModuleExport{
		Key: "$blue", Value: decorator.Func(func(ctx *decorator.Context) { calls++ }),
	})

	prog, err := compiler.Load(context.Background(), host, "/proj/main.cadl", compiler.Options{NoStdLib: true})
	require.NoError(t, err)
	require.Empty(t, diagCodes(prog.Diagnostics()))
	require.Equal(t, 1, calls)

	a := prog.Global().Models["A"]
	require.NotNil(t, a)
	require.Len(t, a.Decorators, 1)
	require.Equal(t, "blue", a.Decorators[0].Path)
}

// An external module's "namespace" export is synthesized through the
// binder.Registry (spec.md §4.3 "Missing namespace segments are
// synthesized"), so a decorator it declares is visible, unqualified, from
// a second file that only `using`s the library's namespace - not just the
// file that wrote the `import`.
func TestLoadExternalModuleDecoratorIsVisibleViaUsingFromAnotherFile(t *testing.T) {
	host := newMemHost()
	host.addFile("/proj/main.cadl", `import "./lib.js";`)
	host.addFile("/proj/other.cadl", `
		import "./main.cadl";
		using Widgets.Styling;
		@blue model A {}
	`)
	calls := 0
	host.addModule("/proj/lib.js",
		compiler.ModuleExport{Key: "namespace", Value: "Widgets.Styling"},
		compiler.ModuleExport{Key: "$blue", Value: decorator.Func(func(ctx *decorator.Context) { calls++ })},
	)

	prog, err := compiler.Load(context.Background(), host, "/proj/other.cadl", compiler.Options{NoStdLib: true})
	require.NoError(t, err)
	require.Empty(t, diagCodes(prog.Diagnostics()))
	require.Equal(t, 1, calls)

	a := prog.Global().Models["A"]
	require.NotNil(t, a)
	require.Len(t, a.Decorators, 1)
	require.Equal(t, "blue", a.Decorators[0].Path)
}

func TestLoadEmittersResolvesSpecifiers(t *testing.T) {
	host := newMemHost()
	host.addFile("/proj/main.cadl", `model A {}`)

	prog, err := compiler.Load(context.Background(), host, "/proj/main.cadl",
		compiler.Options{NoStdLib: true, Emitters: []string{"@cadl-lang/openapi3:v1", "plain-emitter"}})
	require.NoError(t, err)
	require.Equal(t, []compiler.LoadedEmitter{
		{Package: "@cadl-lang/openapi3", Name: "v1"},
		{Package: "plain-emitter", Name: ""},
	}, prog.Emitters())
}

func TestLoadNoEmitSkipsOnEmitCallbacks(t *testing.T) {
	host := newMemHost()
	host.addFile("/proj/main.cadl", `import "./lib.js"; model A {}`)
	validateCalls, emitCalls := 0, 0
	host.addModule("/proj/lib.js",
		compiler.ModuleExport{Key: "$onValidate", Value: func(p *compiler.Program) { validateCalls++ }},
		compiler.ModuleExport{Key: "$onEmit", Value: func(p *compiler.Program) { emitCalls++ }},
	)

	prog, err := compiler.Load(context.Background(), host, "/proj/main.cadl", compiler.Options{NoStdLib: true, NoEmit: true})
	require.NoError(t, err)
	require.Empty(t, diagCodes(prog.Diagnostics()))
	require.Equal(t, 1, validateCalls)
	require.Equal(t, 0, emitCalls)
}

func TestLoadCancelledContextAbortsWithoutProgram(t *testing.T) {
	host := newMemHost()
	host.addFile("/proj/main.cadl", `model A {}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prog, err := compiler.Load(ctx, host, "/proj/main.cadl", compiler.Options{NoStdLib: true})
	require.Error(t, err)
	require.Nil(t, prog)
}
