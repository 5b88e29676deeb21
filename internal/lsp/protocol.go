package lsp

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

// DocumentURI is a file:// URI as used on the wire by LSP.
type DocumentURI string

// Position in a text document: zero-based line and UTF-16 character offset.
type Position struct {
	Line      int
	Character int
}

// Range in a text document.
type Range struct {
	Start Position
	End   Position
}

// Location is a range inside a resource.
type Location struct {
	URI   DocumentURI
	Range Range
}

// WorkspaceFolder names one root the server operates over.
type WorkspaceFolder struct {
	URI  DocumentURI
	Name string
}

// TextDocumentContentChangeEvent describes one edit sent via didChange. Range
// nil means a full-document replacement (this package only ever sends full
// sync, matching component L's whole-buffer Session.Buffer.Text()).
type TextDocumentContentChangeEvent struct {
	Range *Range
	Text  string
}

// ServerCapabilities holds what this package keeps from the initialize
// reply: the server's name and version from serverInfo. TextDocumentSyncKind
// is not read from the reply and stays zero.
type ServerCapabilities struct {
	TextDocumentSyncKind int
	Name                 string
	Version              string
}

// FilePathToURI converts an absolute or relative file path to a file:// URI.
func FilePathToURI(path string) DocumentURI {
	if path == "" {
		return ""
	}
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	path = filepath.ToSlash(path)
	if runtime.GOOS == "windows" && len(path) >= 2 && path[1] == ':' {
		path = "/" + path
	}
	u := &url.URL{Scheme: "file", Path: path}
	return DocumentURI(u.String())
}

// URIToFilePath converts a file:// URI back to a native file path.
func URIToFilePath(uri DocumentURI) string {
	if uri == "" {
		return ""
	}
	u, err := url.Parse(string(uri))
	if err != nil || u.Scheme != "file" {
		return string(uri)
	}
	path := u.Path
	if runtime.GOOS == "windows" && len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path)
}

// extensionLanguages maps a lowercased file extension (without the dot) to
// its LSP languageId, trimmed to the languages a server registered against
// this repo's syntax collection (internal/syntax) is likely to cover.
var extensionLanguages = map[string]string{
	"go":   "go",
	"rs":   "rust",
	"ts":   "typescript",
	"tsx":  "typescriptreact",
	"js":   "javascript",
	"jsx":  "javascriptreact",
	"py":   "python",
	"c":    "c",
	"h":    "c",
	"cpp":  "cpp",
	"cc":   "cpp",
	"hpp":  "cpp",
	"json": "json",
	"yaml": "yaml",
	"yml":  "yaml",
	"toml": "toml",
	"md":   "markdown",
	"sh":   "shellscript",
	"lua":  "lua",
}

// DetectLanguageID returns the LSP languageId for path's extension, or ""
// if none is known.
func DetectLanguageID(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	return extensionLanguages[ext]
}
