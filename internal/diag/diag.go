// Package diag collects generation-time diagnostics.
//
// Every pass of the generator reports rule violations through a phase-bound
// reporter. The generator inspects the collected reports after each pass and
// halts the unit before any output is written when there are any.
package diag

import (
	"fmt"
	"go/token"
	"io"
	"sort"
	"sync"

	"github.com/sirkon/safemath/internal/rules"
)

// Reporter receives rule violations.
type Reporter interface {
	Report(rule rules.Rule, message string, pos token.Pos)
}

// ReportEngine collects diagnostics discovered by generator passes.
type ReportEngine struct {
	mu      sync.Mutex
	reports []Report
}

// Report represents a single diagnostic entry.
type Report struct {
	Phase    ReportPhase
	RuleCode rules.Rule
	Pos      token.Pos
	Message  string
}

// ReportPhase marks the generator pass where a report was generated.
type ReportPhase int

const (
	_              ReportPhase = iota
	ReportValidate             // directive and signature validation
	ReportDerive               // capability derivation
	ReportRewrite              // function body rewriting
)

func (p ReportPhase) String() string {
	switch p {
	case ReportValidate:
		return "validate"
	case ReportDerive:
		return "derive"
	case ReportRewrite:
		return "rewrite"
	default:
		return fmt.Sprintf("unknown-phase(%d)", p)
	}
}

// ReporterPhase binds a ReportEngine to a fixed phase.
type ReporterPhase struct {
	parent *ReportEngine
	phase  ReportPhase
}

// Phase returns a reporter that sets the given phase for all reports
// produced through it.
func (r *ReportEngine) Phase(p ReportPhase) *ReporterPhase {
	return &ReporterPhase{parent: r, phase: p}
}

// Add appends a new record.
func (r *ReportEngine) Add(rep Report) {
	r.mu.Lock()
	r.reports = append(r.reports, rep)
	r.mu.Unlock()
}

// Report records a new rule violation under the bound phase.
// The rule description is used when message is empty.
func (rp *ReporterPhase) Report(rule rules.Rule, message string, pos token.Pos) {
	if message == "" {
		message = rule.Description()
	}
	rp.parent.Add(Report{
		Phase:    rp.phase,
		RuleCode: rule,
		Message:  message,
		Pos:      pos,
	})
}

// Len returns the number of collected reports.
func (r *ReportEngine) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}

// Reports returns a snapshot of all collected records ordered by position.
func (r *ReportEngine) Reports() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Report, len(r.reports))
	copy(out, r.reports)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Pos < out[j].Pos
	})
	return out
}

const (
	colorRed   = "\x1b[31m"
	colorReset = "\x1b[0m"
)

// PrintSummary prints all collected reports in a compact, human-readable form.
func (r *ReportEngine) PrintSummary(w io.Writer, fset *token.FileSet, color bool) {
	for _, rep := range r.Reports() {
		code := rep.RuleCode.String()
		if color {
			code = colorRed + code + colorReset
		}
		fmt.Fprintf(w, "%s: [%s] %s: %s\n",
			fset.Position(rep.Pos),
			rep.Phase,
			code,
			rep.Message,
		)
	}
}
