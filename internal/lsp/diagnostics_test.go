package lsp

import (
	"testing"

	"github.com/tidwall/gjson"
)

const publishDiagnosticsFixture = `{
	"uri": "file:///tmp/example/main.go",
	"diagnostics": [
		{"range":{"start":{"line":3,"character":1},"end":{"line":3,"character":5}},"severity":1,"source":"gopls","message":"undefined: foo"},
		{"range":{"start":{"line":1,"character":0},"end":{"line":1,"character":2}},"severity":2,"source":"gopls","message":"unused import"}
	]
}`

func TestParseDiagnostics(t *testing.T) {
	uri, diags := parseDiagnostics(gjson.Parse(publishDiagnosticsFixture))
	if uri != "file:///tmp/example/main.go" {
		t.Fatalf("unexpected uri: %s", uri)
	}
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(diags))
	}
	if diags[0].Severity != DiagnosticSeverityError {
		t.Errorf("expected first diagnostic to be an error, got %v", diags[0].Severity)
	}
	if diags[0].Message != "undefined: foo" {
		t.Errorf("unexpected message: %s", diags[0].Message)
	}
}

func TestDiagnosticsStoreUpdateSortsAndFilters(t *testing.T) {
	var lastPath string
	var lastDiags []Diagnostic
	store := NewDiagnosticsStore(func(path string, diags []Diagnostic) {
		lastPath, lastDiags = path, diags
	})
	store.SetMinSeverity(DiagnosticSeverityWarning)

	diags := []Diagnostic{
		{Range: Range{Start: Position{Line: 5}}, Severity: DiagnosticSeverityHint, Message: "hint"},
		{Range: Range{Start: Position{Line: 2}}, Severity: DiagnosticSeverityError, Message: "second"},
		{Range: Range{Start: Position{Line: 0}}, Severity: DiagnosticSeverityWarning, Message: "first"},
	}
	store.update("/tmp/a.go", diags)

	if lastPath != "/tmp/a.go" {
		t.Fatalf("onChange path = %q", lastPath)
	}
	if len(lastDiags) != 2 {
		t.Fatalf("expected hint filtered out, got %d diagnostics", len(lastDiags))
	}
	if lastDiags[0].Message != "first" || lastDiags[1].Message != "second" {
		t.Fatalf("expected sort by range start line, got %+v", lastDiags)
	}

	got := store.Get("/tmp/a.go")
	if len(got) != 2 {
		t.Fatalf("Get returned %d diagnostics, want 2", len(got))
	}
}

func TestDiagnosticsStoreClearRemovesEmptyUpdate(t *testing.T) {
	store := NewDiagnosticsStore(nil)
	store.update("/tmp/a.go", []Diagnostic{{Severity: DiagnosticSeverityError, Message: "x"}})
	if len(store.Get("/tmp/a.go")) == 0 {
		t.Fatal("expected diagnostic present before clear")
	}
	store.Clear("/tmp/a.go")
	if len(store.Get("/tmp/a.go")) != 0 {
		t.Fatal("expected diagnostics cleared")
	}
}

func TestDiagnosticsStoreSummary(t *testing.T) {
	store := NewDiagnosticsStore(nil)
	store.update("/tmp/a.go", []Diagnostic{
		{Severity: DiagnosticSeverityError},
		{Severity: DiagnosticSeverityWarning},
		{Severity: DiagnosticSeverityWarning},
	})
	store.update("/tmp/b.go", []Diagnostic{
		{Severity: DiagnosticSeverityHint},
	})

	sum := store.Summary()
	if sum.Errors != 1 || sum.Warnings != 2 || sum.Hints != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}
