// Package stdlib names the handful of constants the standard library's
// presence implies elsewhere in the compiler: the implicit "Cadl"
// namespace every file is using'd against (spec.md §4.5), and the
// conventional directory name a Host looks for its bundled sources under
// (spec.md §4.4 step 1 "standard library directories announced by the
// Host").
//
// The standard library's actual contents - the intrinsic type table - live
// in package types (types.Intrinsics, found by types.LookupIntrinsic)
// rather than being parsed from CADL source text; checker.installIntrinsics
// only creates the empty "Cadl" namespace (spec.md §3 lists them as primitives
// the checker constructs, not declarations any namespace's source could
// express: there is no CADL syntax for declaring a new intrinsic). This
// package exists so the "Cadl" name and the on-disk lib directory
// convention have one authoritative spelling instead of being repeated as
// string literals in checker and cmd/cadlc.
package stdlib

// CadlNamespace is the name of the implicit namespace every file resolves
// intrinsics against (spec.md §4.5 "the built-in Cadl namespace which is
// implicitly using'd everywhere").
const CadlNamespace = "Cadl"

// DirName is the conventional subdirectory a Host implementation bundles
// standard-library CADL sources under, relative to wherever it considers
// its own installation root (cmd/cadlc's OSHost resolves it next to the
// compiled binary).
const DirName = "lib"
