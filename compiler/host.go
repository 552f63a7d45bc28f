// Package compiler implements spec.md §4.4 "Program Loader": given an
// entry path and a Host, it loads the main file and every file it
// transitively imports, binds and checks them into one types.Namespace
// graph, and exposes the result as the emitter/plugin contract spec.md §6
// describes.
//
// The core never touches a filesystem, a process, or a module loader
// directly (spec.md §1, §5 "single-threaded... suspension points are
// confined to Host calls"); every such operation is delegated through the
// Host interface below, so the loader itself stays as pure and testable as
// package checker.
package compiler

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is the sentinel a Host implementation should wrap into any
// error it returns when the path genuinely does not exist, so the loader
// can tell a missing file apart from a transient I/O failure (spec.md §6
// "fails with file-not-found or io-error").
var ErrNotFound = errors.New("compiler: path not found")

// ModuleExport is one named export of an external JS/MJS module, paired
// with the position it was enumerated in (spec.md §6, §5).
type ModuleExport struct {
	Key   string
	Value any
}

// Host is every I/O operation the core delegates outward (spec.md §6
// "Host contract"). Each method takes a context.Context so cancellation
// (spec.md §5) can propagate out of whichever call is in flight.
type Host interface {
	// ReadFile returns a file's full text.
	ReadFile(ctx context.Context, path string) (text string, err error)
	// Stat reports whether path names a regular file, a directory, or
	// neither (err set, per ErrNotFound, when it names neither).
	Stat(ctx context.Context, path string) (isFile, isDir bool, err error)
	// Realpath resolves symlinks, identity-preserving otherwise.
	Realpath(ctx context.Context, path string) (string, error)
	// GetExternalModuleExports fetches the exports of a JS/MJS module, in
	// the order the module itself enumerates them. Values are opaque to
	// the core except that a function whose key begins with "$" is a
	// decorator handle, and a top-level "namespace" export is read as a
	// dotted-string (spec.md §6). Returning them in enumeration order lets
	// the loader bind decorators deterministically (spec.md §5).
	GetExternalModuleExports(ctx context.Context, path string) ([]ModuleExport, error)
	// GetLibDirs returns the standard-library search paths.
	GetLibDirs(ctx context.Context) ([]string, error)
	// WriteFile is used only by emitters.
	WriteFile(ctx context.Context, path string, content []byte) error
	// LogSink receives structured log entries from the loader's debug
	// logger (see CADLC_DEBUG_LOADER).
	LogSink() io.Writer
	// ResolveAbsolutePath normalizes path against the Host's notion of a
	// working directory.
	ResolveAbsolutePath(ctx context.Context, path string) (string, error)
}
