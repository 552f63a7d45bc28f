package diagnostic

import (
	"fmt"
	"strings"
)

// Severity distinguishes fatal-to-the-program-semantics diagnostics from
// advisory ones. Only warnings are suppressible (§7: "errors are never
// suppressible").
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Code groups the stable diagnostic codes named in spec.md §7, by phase.
// These are exported as plain string constants (not an enum type) because
// emitters and LSP clients match on the string form directly.
const (
	// Parse-level
	CodeMissingToken             = "missing-token"
	CodeUnknownDirective         = "unknown-directive"
	CodeReservedIdentifierUsed   = "reserved-identifier-used"
	CodeUnterminatedLiteral      = "unterminated-literal"
	CodeTrailingDelimiter        = "trailing-delimiter-disallowed"
	CodeInvalidDecoratorLocation = "invalid-decorator-location"
	CodeInvalidDirectiveLocation = "invalid-directive-location"

	// Load-level
	CodeFileNotFound            = "file-not-found"
	CodeIOError                 = "io-error"
	CodeLibraryNotFound         = "library-not-found"
	CodeInvalidImport           = "invalid-import"
	CodeCompilerVersionMismatch = "compiler-version-mismatch"
	CodeDynamicImportInEval     = "dynamic-import-in-eval"

	// Bind-level
	CodeDuplicateSymbol = "duplicate-symbol"

	// Check-level
	CodeUnresolvedReference          = "unresolved-reference"
	CodeAmbiguousReference           = "ambiguous-reference"
	CodeRecursiveBase                = "recursive-base"
	CodeDefaultTypeMismatch          = "default-type-mismatch"
	CodeDefaultOnRequired            = "default-on-required"
	CodeDuplicateProperty            = "duplicate-property"
	CodeInvalidDecoratorTarget       = "invalid-decorator-target"
	CodeInvalidDecoratorArgumentType = "invalid-decorator-argument-type"
	CodeCircularTemplateInstantiate  = "circular-template-instantiation"
	CodeDecoratorThrew               = "decorator-threw"

	// Meta
	CodeSuppressError = "suppress-error"
)

// Target locates a diagnostic either at a span within a source file, or
// nowhere ("no-target" per spec.md §6).
type Target struct {
	File *SourceFile
	Span Span
	none bool
}

// NoTarget is the sentinel target for diagnostics with no source location
// (e.g. a fatal compiler-version mismatch discovered before any file of
// the affected project was parsed).
var NoTarget = Target{none: true}

// HasTarget reports whether t refers to an actual file span.
func (t Target) HasTarget() bool { return !t.none && t.File != nil }

// NewTarget builds a Target from a file and span.
func NewTarget(file *SourceFile, span Span) Target {
	return Target{File: file, Span: span}
}

// Diagnostic is one error or warning produced anywhere in the pipeline.
type Diagnostic struct {
	Code       string
	Severity   Severity
	Message    string
	Target     Target
	FormatArgs map[string]string
}

// Format renders Message, substituting "{name}" placeholders from
// FormatArgs — the same templated-message convention spec.md §7 describes.
func (d Diagnostic) Format() string {
	msg := d.Message
	for k, v := range d.FormatArgs {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
}

// String renders a human-readable "path:line:col - severity code: message"
// line for CLI output.
func (d Diagnostic) String() string {
	if !d.Target.HasTarget() {
		return fmt.Sprintf("%s %s: %s", d.Severity, d.Code, d.Format())
	}
	line, char := d.Target.File.LineAndCharacter(d.Target.Span.Pos)
	return fmt.Sprintf("%s:%d:%d - %s %s: %s",
		d.Target.File.Path, line+1, char+1, d.Severity, d.Code, d.Format())
}

// New builds an error-severity diagnostic at a target span.
func New(code, message string, target Target) Diagnostic {
	return Diagnostic{Code: code, Severity: SeverityError, Message: message, Target: target}
}

// NewWarning builds a warning-severity diagnostic at a target span.
func NewWarning(code, message string, target Target) Diagnostic {
	return Diagnostic{Code: code, Severity: SeverityWarning, Message: message, Target: target}
}
