// Package main wires compiler.Host to a real filesystem and JS module
// loader, and exposes the CLI surface spec.md §6 names (compile <path>
// [--emit=pkg[:name]] [--no-emit] [--option=k=v]).
//
// Grounded on cli/main.go's split between a thin cobra entrypoint and the
// ambient I/O every Host method here performs directly with os/io/fs -
// the one concern spec.md §1/§5 keeps out of the compiler core itself.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cadl-lang/cadlc/compiler"
	"github.com/cadl-lang/cadlc/stdlib"
)

// OSHost implements compiler.Host against the local filesystem. It never
// evaluates external JS/MJS modules itself (spec.md §1 Non-goals: a real
// JS runtime embedding); GetExternalModuleExports only recognizes modules
// previously registered via RegisterModule. This CLI does not yet expose
// any flag that calls RegisterModule - there is no JS/MJS export reader
// wired into main.go, so real `import "some-decorator-lib"` programs
// resolve decorators only when embedded as a library (see
// compiler/loader_test.go's memHost for the pattern); see DESIGN.md for
// why this is deferred rather than faked.
type OSHost struct {
	modules map[string][]compiler.ModuleExport
	logSink io.Writer
}

// NewOSHost creates a Host backed by the real filesystem, logging debug
// output to stderr (consumed by compiler.Load's slog logger when
// CADLC_DEBUG_LOADER is set).
func NewOSHost() *OSHost {
	return &OSHost{modules: map[string][]compiler.ModuleExport{}, logSink: os.Stderr}
}

// RegisterModule pre-registers path's exports, in enumeration order,
// standing in for a real dynamic-import mechanism (spec.md §7
// "dynamic-import-in-eval" names the one case this CLI explicitly does
// not support: importing a module whose exports are not statically known
// ahead of time).
func (h *OSHost) RegisterModule(path string, exports []compiler.ModuleExport) {
	h.modules[path] = exports
}

func (h *OSHost) ReadFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", wrapNotFound(err)
	}
	return string(data), nil
}

func (h *OSHost) Stat(ctx context.Context, path string) (isFile, isDir bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, false, wrapNotFound(err)
	}
	return !info.IsDir(), info.IsDir(), nil
}

func (h *OSHost) Realpath(ctx context.Context, path string) (string, error) {
	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", wrapNotFound(err)
	}
	return real, nil
}

func (h *OSHost) GetExternalModuleExports(ctx context.Context, path string) ([]compiler.ModuleExport, error) {
	exports, ok := h.modules[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s (module not registered via RegisterModule)", compiler.ErrNotFound, path)
	}
	return exports, nil
}

// GetLibDirs returns the standard library directory shipped alongside this
// binary, resolved relative to the executable so `go install` and local
// development both find it without an environment variable.
func (h *OSHost) GetLibDirs(ctx context.Context) ([]string, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, nil
	}
	dir := filepath.Join(filepath.Dir(exe), stdlib.DirName)
	if isFile, isDir, err := h.Stat(ctx, dir); err == nil && isDir && !isFile {
		return []string{dir}, nil
	}
	return nil, nil
}

func (h *OSHost) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

func (h *OSHost) LogSink() io.Writer { return h.logSink }

func (h *OSHost) ResolveAbsolutePath(ctx context.Context, path string) (string, error) {
	return filepath.Abs(path)
}

func wrapNotFound(err error) error {
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", compiler.ErrNotFound, err)
	}
	return err
}
