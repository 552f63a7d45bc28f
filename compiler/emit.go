package compiler

import (
	"strings"

	"github.com/cadl-lang/cadlc/diagnostic"
)

// LoadedEmitter is the result of resolving one `--emit=<package>[:<name>]`
// specifier (spec.md §4.4 step 5, §6 CLI surface). Emitter *execution* is
// out of this module's scope (spec.md §1 Non-goals: code generation); this
// only resolves the specifier into a named record an actual emitter
// pipeline could later be wired to.
type LoadedEmitter struct {
	Package string
	Name    string
}

// LoadEmitters resolves each `<package>[:<name>]` specifier into a
// LoadedEmitter, recording a diagnostic placeholder for any specifier with
// no package name (e.g. a bare ":name" or empty string) without attempting
// to resolve or invoke the emitter itself (SPEC_FULL.md §4 "Emitter
// loading stub").
func LoadEmitters(bag *diagnostic.Bag, specs []string) []LoadedEmitter {
	out := make([]LoadedEmitter, 0, len(specs))
	for _, spec := range specs {
		pkg, name, ok := splitEmitterSpec(spec)
		if !ok {
			bag.Add(newDiag(diagnostic.CodeInvalidImport,
				diagnostic.NoTarget, "invalid --emit specifier '{spec}'", map[string]string{"spec": spec}))
			continue
		}
		out = append(out, LoadedEmitter{Package: pkg, Name: name})
	}
	return out
}

func splitEmitterSpec(spec string) (pkg, name string, ok bool) {
	if spec == "" {
		return "", "", false
	}
	pkg, name = spec, ""
	if idx := strings.LastIndex(spec, ":"); idx >= 0 {
		pkg, name = spec[:idx], spec[idx+1:]
	}
	if pkg == "" {
		return "", "", false
	}
	return pkg, name, true
}
