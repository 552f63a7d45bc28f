package diagnostic

import "sync"

// SuppressDirective is a `#suppress <code> [message]` directive attached to
// some syntax node (see spec.md §4.2/§4.5). The core package only needs the
// code and the span of nodes it covers; the checker (registerSuppressions)
// walks the parsed directives and calls Bag.RegisterSuppression for them.
type SuppressDirective struct {
	Code    string
	Message string
	// Covers is every node span this directive suppresses diagnostics for
	// (the node it is attached to, plus every descendant).
	Covers []Span
}

// Bag is the single program-level diagnostic sink described in spec.md §7:
// a push-only list that preserves emission order. Suppression is consulted
// only here, and never suppresses an error-severity diagnostic.
type Bag struct {
	mu           sync.Mutex
	diagnostics  []Diagnostic
	hasError     bool
	suppressions []SuppressDirective
}

// NewBag creates an empty diagnostic sink.
func NewBag() *Bag {
	return &Bag{}
}

// RegisterSuppression records a `#suppress` directive's reach so that
// subsequent Add calls can consult it. Must be called before the
// diagnostics it is meant to suppress are added, matching the binder/
// checker phase ordering (directives are known from the parse tree before
// checking emits any diagnostic).
func (b *Bag) RegisterSuppression(d SuppressDirective) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.suppressions = append(b.suppressions, d)
}

// Add pushes a diagnostic onto the bag, honoring suppression for
// warning-severity diagnostics whose target falls within a registered
// suppression's coverage and whose code matches. An attempt to suppress an
// error-severity diagnostic instead emits (in addition to the original
// error) a CodeSuppressError meta-diagnostic, per spec.md §4.5: "errors are
// never suppressible... the original error still fires."
func (b *Bag) Add(d Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if d.Target.HasTarget() {
		for _, s := range b.suppressions {
			if s.Code != d.Code || !covers(s.Covers, d.Target.Span) {
				continue
			}
			if d.Severity == SeverityError {
				b.appendLocked(Diagnostic{
					Code:     CodeSuppressError,
					Severity: SeverityWarning,
					Message:  "errors cannot be suppressed",
					Target:   d.Target,
					FormatArgs: map[string]string{
						"code": d.Code,
					},
				})
				break
			}
			// Warning: fully suppressed, never appended.
			return
		}
	}
	b.appendLocked(d)
}

func (b *Bag) appendLocked(d Diagnostic) {
	b.diagnostics = append(b.diagnostics, d)
	if d.Severity == SeverityError {
		b.hasError = true
	}
}

func covers(spans []Span, target Span) bool {
	for _, s := range spans {
		if s.Encloses(target) {
			return true
		}
	}
	return false
}

// HasError reports whether an error-severity diagnostic has ever been
// accepted. Per spec.md §7 this becomes true on first acceptance and never
// resets.
func (b *Bag) HasError() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hasError
}

// All returns a snapshot of every diagnostic accepted so far, in emission
// order.
func (b *Bag) All() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Diagnostic, len(b.diagnostics))
	copy(out, b.diagnostics)
	return out
}

// Count returns the number of accepted diagnostics, optionally filtered by
// severity ("" for all).
func (b *Bag) Count(severity Severity) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if severity == "" {
		return len(b.diagnostics)
	}
	n := 0
	for _, d := range b.diagnostics {
		if d.Severity == severity {
			n++
		}
	}
	return n
}
