// Package proto implements the client-event and editor-operation wire
// codecs (spec components C and D): the Key type and its text notation, the
// ClientEvent variant carried from client to server, and the EditorOperation
// variant carried from server to client. Both ride on the tagged-union
// encoding in internal/wire.
package proto
