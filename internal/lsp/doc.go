// Package lsp is a narrow Language Server Protocol client: a consumer of
// editor document-lifecycle events and a producer of buffer diagnostics
// (SPEC_FULL.md §1, §11), not the general-purpose IDE backend a full LSP
// client usually is. It deliberately does not implement completion, hover,
// go-to-definition, find-references, code actions, renaming, signature
// help, or document formatting — none of those sit in this editor's
// declared surface, and carrying their request/response types along unused
// would just be dead weight.
//
// # Architecture
//
//   - Client: the entry point the editor aggregate (component L) calls
//   - Manager: starts one server per language lazily, routes by file extension
//   - Server: one server subprocess, its JSON-RPC Transport, its open documents
//   - Transport: JSON-RPC 2.0 framing over stdio, built on gjson/sjson rather
//     than encoding/json structs, so a publishDiagnostics payload on a large
//     file is read field-by-field instead of fully unmarshaled
//   - DiagnosticsStore: the latest diagnostics per file, filtered by minimum
//     severity, with a change callback the editor uses to post a per-file
//     error/warning count as a status message
//
// # Usage
//
//	client := lsp.NewClient(lsp.WithWorkspaceRoot(root), lsp.WithAutoDetectServers(true))
//	client.Start(ctx)
//	defer client.Shutdown(ctx)
//
//	client.OpenDocument(ctx, path, content)
//	diags := client.Diagnostics(path)
//
// # Server Lifecycle
//
// Servers start lazily on the first document opened in their language and
// are shut down together on Client.Shutdown. There is no supervised
// crash-recovery mode: a crashed server simply stops producing diagnostics
// for its language until the next document in that language is opened
// (which starts a fresh process) or RestartServer is called.
package lsp
