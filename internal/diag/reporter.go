package diag

// Reporter is the observer contract: producers hand it classified findings and
// never decide presentation.
type Reporter interface {
	Report(code Code, sev Severity, loc Location, msg string, notes []Note)
}

// ReportBuilder accumulates diagnostic details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, sev Severity, code Code, loc Location, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		diag: Diagnostic{
			Severity: sev,
			Code:     code,
			Message:  msg,
			Location: loc,
		},
	}
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, loc Location, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, loc, msg)
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code Code, loc Location, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevWarning, code, loc, msg)
}

// ReportInfo is a shortcut for SevInfo diagnostics.
func ReportInfo(r Reporter, code Code, loc Location, msg string) *ReportBuilder {
	return NewReportBuilder(r, SevInfo, code, loc, msg)
}

// WithNote appends a note to diagnostic.
func (b *ReportBuilder) WithNote(msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag.Notes = append(b.diag.Notes, Note{Msg: msg})
	return b
}

// Emit sends diagnostic to underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.diag.Code, b.diag.Severity, b.diag.Location, b.diag.Message, b.diag.Notes)
	}
	b.emitted = true
}

// Diagnostic returns accumulated diagnostic without emitting.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.diag
}

// BagReporter writes into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, loc Location, msg string, notes []Note) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(&Diagnostic{
		Severity: sev, Code: code, Message: msg,
		Location: loc, Notes: notes,
	})
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, Location, string, []Note) {}

// MultiReporter fans a diagnostic out to every reporter.
type MultiReporter []Reporter

func (m MultiReporter) Report(code Code, sev Severity, loc Location, msg string, notes []Note) {
	for _, r := range m {
		if r != nil {
			r.Report(code, sev, loc, msg, notes)
		}
	}
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(d *Diagnostic)

func (f ReporterFunc) Report(code Code, sev Severity, loc Location, msg string, notes []Note) {
	if f == nil {
		return
	}
	f(&Diagnostic{Severity: sev, Code: code, Message: msg, Location: loc, Notes: notes})
}
