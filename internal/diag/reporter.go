package diag

import "demomark/internal/source"

// Reporter is the minimal contract phases use to emit diagnostics.
type Reporter interface {
	Report(code Code, sev Severity, primary source.Span, msg string, notes []Note)
}

// BagReporter writes into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev, Code: code, Message: msg,
		Primary: primary, Notes: notes,
	})
}

// FirstErrorReporter remembers the first error-severity diagnostic and
// forwards everything to Next. Phases with all-or-nothing semantics stop as
// soon as Failed reports true.
type FirstErrorReporter struct {
	Next  Reporter
	first *Diagnostic
}

func (r *FirstErrorReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if sev >= SevError && r.first == nil {
		r.first = &Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary, Notes: notes}
	}
	if r.Next != nil {
		r.Next.Report(code, sev, primary, msg, notes)
	}
}

// Failed reports whether an error has been seen.
func (r *FirstErrorReporter) Failed() bool {
	return r.first != nil
}

// First returns the first error, if any.
func (r *FirstErrorReporter) First() (Diagnostic, bool) {
	if r.first == nil {
		return Diagnostic{}, false
	}
	return *r.first, true
}

// Emit sends d through r; a nil reporter drops it.
func Emit(r Reporter, d Diagnostic) {
	if r == nil {
		return
	}
	r.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
}
