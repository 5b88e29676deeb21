package lsp

import (
	"sort"
	"sync"

	"github.com/tidwall/gjson"
)

// DiagnosticSeverity mirrors the LSP severity scale (1 = most severe).
type DiagnosticSeverity int

const (
	DiagnosticSeverityError       DiagnosticSeverity = 1
	DiagnosticSeverityWarning     DiagnosticSeverity = 2
	DiagnosticSeverityInformation DiagnosticSeverity = 3
	DiagnosticSeverityHint        DiagnosticSeverity = 4
)

// Diagnostic is one entry from a textDocument/publishDiagnostics payload,
// the shape this package exists to produce (spec.md's "producer of buffer
// diagnostics").
type Diagnostic struct {
	Range    Range
	Severity DiagnosticSeverity
	Source   string
	Message  string
}

// parseDiagnostics walks a publishDiagnostics notification's params with
// gjson instead of unmarshaling onto a struct: the "diagnostics" array on a
// large file can run into the thousands of entries, and every one only
// needs four fields read out of it.
func parseDiagnostics(params gjson.Result) (uri DocumentURI, diags []Diagnostic) {
	uri = DocumentURI(params.Get("uri").String())
	params.Get("diagnostics").ForEach(func(_, d gjson.Result) bool {
		sev := DiagnosticSeverityError
		if s := d.Get("severity"); s.Exists() {
			sev = DiagnosticSeverity(s.Int())
		}
		diags = append(diags, Diagnostic{
			Range: Range{
				Start: Position{Line: int(d.Get("range.start.line").Int()), Character: int(d.Get("range.start.character").Int())},
				End:   Position{Line: int(d.Get("range.end.line").Int()), Character: int(d.Get("range.end.character").Int())},
			},
			Severity: sev,
			Source:   d.Get("source").String(),
			Message:  d.Get("message").String(),
		})
		return true
	})
	return uri, diags
}

// DiagnosticsStore aggregates the latest diagnostics per file across every
// running server, grounded on the teacher's DiagnosticsService but trimmed
// to what SPEC_FULL.md's narrower "consumer of editor events, producer of
// buffer diagnostics" surface needs: storage, filtering by severity, and a
// change callback — no code-action caching, no per-file debounce timers.
type DiagnosticsStore struct {
	mu          sync.RWMutex
	byPath      map[string][]Diagnostic
	minSeverity DiagnosticSeverity
	onChange    func(path string, diags []Diagnostic)
}

// NewDiagnosticsStore returns a store that keeps every severity by default.
func NewDiagnosticsStore(onChange func(path string, diags []Diagnostic)) *DiagnosticsStore {
	return &DiagnosticsStore{
		byPath:      make(map[string][]Diagnostic),
		minSeverity: DiagnosticSeverityHint,
		onChange:    onChange,
	}
}

// SetMinSeverity filters out diagnostics less severe than sev (a higher
// DiagnosticSeverity number is less severe).
func (s *DiagnosticsStore) SetMinSeverity(sev DiagnosticSeverity) {
	s.mu.Lock()
	s.minSeverity = sev
	s.mu.Unlock()
}

// update replaces path's diagnostics and invokes onChange; called from the
// server's publishDiagnostics notification handler.
func (s *DiagnosticsStore) update(path string, diags []Diagnostic) {
	filtered := make([]Diagnostic, 0, len(diags))
	s.mu.Lock()
	for _, d := range diags {
		if d.Severity <= s.minSeverity || d.Severity == 0 {
			filtered = append(filtered, d)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Range.Start.Line != filtered[j].Range.Start.Line {
			return filtered[i].Range.Start.Line < filtered[j].Range.Start.Line
		}
		return filtered[i].Range.Start.Character < filtered[j].Range.Start.Character
	})
	if len(filtered) == 0 {
		delete(s.byPath, path)
	} else {
		s.byPath[path] = filtered
	}
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(path, filtered)
	}
}

// Get returns the current diagnostics for path.
func (s *DiagnosticsStore) Get(path string) []Diagnostic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byPath[path]
}

// Clear discards a path's diagnostics, e.g. on buffer close.
func (s *DiagnosticsStore) Clear(path string) {
	s.mu.Lock()
	delete(s.byPath, path)
	s.mu.Unlock()
}

// Summary totals diagnostics by severity across every tracked file.
type Summary struct {
	Errors, Warnings, Infos, Hints int
}

// Summary computes totals across every file currently tracked.
func (s *DiagnosticsStore) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum Summary
	for _, diags := range s.byPath {
		for _, d := range diags {
			switch d.Severity {
			case DiagnosticSeverityError:
				sum.Errors++
			case DiagnosticSeverityWarning:
				sum.Warnings++
			case DiagnosticSeverityInformation:
				sum.Infos++
			case DiagnosticSeverityHint:
				sum.Hints++
			}
		}
	}
	return sum
}
