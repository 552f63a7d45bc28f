package compiler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// errLibraryNotFound distinguishes a failed node-style bare-specifier
// lookup (spec.md §7 "library-not-found") from an ordinary missing file.
var errLibraryNotFound = errors.New("compiler: package not found in any node_modules")

// errInvalidImport marks a resolved path whose extension names neither a
// CADL source file nor an external module (spec.md §7 "invalid-import
// (unknown extension)").
var errInvalidImport = errors.New("compiler: unrecognized import extension")

type importKind int

const (
	kindUnknown importKind = iota
	kindCadlSource
	kindExternalModule
)

// packageDescriptor is the subset of a package.json this loader cares
// about: the field naming the CADL entry point (spec.md §4.4 "directory
// paths (resolved via the directory's package descriptor)"; SPEC_FULL.md
// §4 "substituting the package field that names the CADL entry point for
// the usual main field") and, for compiler-version-mismatch detection
// (spec.md §4.4 step 4), the launcher named by "bin".
type packageDescriptor struct {
	Main     string          `json:"main"`
	CadlMain string          `json:"cadlMain"`
	Bin      json.RawMessage `json:"bin"`
}

func (d packageDescriptor) mainEntry() string {
	if d.CadlMain != "" {
		return d.CadlMain
	}
	return d.Main
}

// launcher resolves the "bin" field of a package descriptor to a single
// launcher path under dir, preferring a single string form and otherwise
// one entry of a name->path map (package.json's two legal shapes for
// "bin"); which entry is taken from a map with several is not defined.
func (d packageDescriptor) launcher(dir string) (string, bool) {
	if len(d.Bin) == 0 {
		return "", false
	}
	var asString string
	if err := json.Unmarshal(d.Bin, &asString); err == nil && asString != "" {
		return filepath.Join(dir, asString), true
	}
	var asMap map[string]string
	if err := json.Unmarshal(d.Bin, &asMap); err == nil {
		for _, v := range asMap {
			return filepath.Join(dir, v), true
		}
	}
	return "", false
}

// resolveSpecifier implements spec.md §4.4 step 3's import-specifier
// grammar: relative (`./`, `../`), absolute (leading `/` or a Windows
// drive prefix), or a bare module specifier resolved node-style from
// fromDir upward through each ancestor's node_modules.
func (l *loader) resolveSpecifier(ctx context.Context, fromDir, spec string) (string, importKind, error) {
	var candidate string
	switch {
	case strings.HasPrefix(spec, "./"), strings.HasPrefix(spec, "../"):
		candidate = filepath.Join(fromDir, spec)
	case filepath.IsAbs(spec), isWindowsAbsolute(spec):
		candidate = spec
	default:
		dir, err := l.resolveBareSpecifier(ctx, fromDir, spec)
		if err != nil {
			return "", kindUnknown, err
		}
		candidate = dir
	}
	return l.resolvePathOrDirectory(ctx, candidate)
}

func isWindowsAbsolute(spec string) bool {
	return len(spec) >= 2 && spec[1] == ':' && (spec[0] >= 'A' && spec[0] <= 'Z' || spec[0] >= 'a' && spec[0] <= 'z')
}

// resolvePathOrDirectory classifies a concrete path once any bare
// specifier has already been turned into a directory: a `.cadl` or
// `.js`/`.mjs` suffix is taken at face value, otherwise the path must name
// a directory carrying a package descriptor (spec.md §4.4 step 3).
func (l *loader) resolvePathOrDirectory(ctx context.Context, candidate string) (string, importKind, error) {
	switch {
	case strings.HasSuffix(candidate, ".cadl"):
		return candidate, kindCadlSource, nil
	case strings.HasSuffix(candidate, ".js"), strings.HasSuffix(candidate, ".mjs"):
		return candidate, kindExternalModule, nil
	}

	isFile, isDir, err := l.host.Stat(ctx, candidate)
	if err != nil || (!isFile && !isDir) {
		return "", kindUnknown, fmt.Errorf("%w: %s", ErrNotFound, candidate)
	}
	if isDir {
		main, _, err := l.resolveDirectory(ctx, candidate)
		if err != nil {
			return "", kindUnknown, err
		}
		return l.resolvePathOrDirectory(ctx, main)
	}
	return "", kindUnknown, fmt.Errorf("%w: %s", errInvalidImport, candidate)
}

// resolveDirectory reads dir's package.json (if any) and returns the CADL
// file it names as its entry point, falling back to the conventional
// "main.cadl" when there is no descriptor or no entry-point field.
func (l *loader) resolveDirectory(ctx context.Context, dir string) (string, packageDescriptor, error) {
	descPath := filepath.Join(dir, "package.json")
	isFile, _, statErr := l.host.Stat(ctx, descPath)
	if statErr == nil && isFile {
		text, err := l.host.ReadFile(ctx, descPath)
		if err == nil {
			var desc packageDescriptor
			if jsonErr := json.Unmarshal([]byte(text), &desc); jsonErr == nil {
				if main := desc.mainEntry(); main != "" {
					return filepath.Join(dir, main), desc, nil
				}
				return filepath.Join(dir, "main.cadl"), desc, nil
			}
		}
	}
	return filepath.Join(dir, "main.cadl"), packageDescriptor{}, nil
}

// resolveBareSpecifier implements the node-style lookup spec.md §4.4 step
// 3 names: starting at fromDir, check fromDir/node_modules/spec, then each
// ancestor in turn, following the Host's own directory semantics rather
// than a literal filesystem walk.
func (l *loader) resolveBareSpecifier(ctx context.Context, fromDir, spec string) (string, error) {
	dir := fromDir
	for {
		candidate := filepath.Join(dir, "node_modules", spec)
		_, isDir, err := l.host.Stat(ctx, candidate)
		if err == nil && isDir {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%w: %q from %s", errLibraryNotFound, spec, fromDir)
}
