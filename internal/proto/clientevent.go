package proto

import "github.com/dshills/pepperd/internal/wire"

// ClientHandle is a dense, stable index into the server's client table
// (spec §3). It is reusable after the owning connection closes.
type ClientHandle uint32

// ClientEventKind discriminates the ClientEvent tagged union.
type ClientEventKind uint8

const (
	EventKey ClientEventKind = iota
	EventResize
	EventCommand
)

// ClientEvent is one event flowing from a client to the server (spec §3).
// Target is nil when the event targets "me" (the originating connection);
// otherwise it names the client the event is addressed to, used by scripted
// execute-keys over a foreign client (scenario S6).
type ClientEvent struct {
	Kind    ClientEventKind
	Target  *ClientHandle
	Key     Key    // valid when Kind == EventKey
	Width   uint16 // valid when Kind == EventResize
	Height  uint16 // valid when Kind == EventResize
	Command string // valid when Kind == EventCommand
}

// NewKeyEvent builds a Key client event.
func NewKeyEvent(target *ClientHandle, k Key) ClientEvent {
	return ClientEvent{Kind: EventKey, Target: target, Key: k}
}

// NewResizeEvent builds a Resize client event.
func NewResizeEvent(target *ClientHandle, width, height uint16) ClientEvent {
	return ClientEvent{Kind: EventResize, Target: target, Width: width, Height: height}
}

// NewCommandEvent builds a Command client event.
func NewCommandEvent(target *ClientHandle, text string) ClientEvent {
	return ClientEvent{Kind: EventCommand, Target: target, Command: text}
}

func putOptionalHandle(w *wire.Writer, h *ClientHandle) {
	if h == nil {
		w.PutUint8(0)
		return
	}
	w.PutUint8(1)
	w.PutUint32(uint32(*h))
}

func getOptionalHandle(r *wire.Reader) (*ClientHandle, error) {
	tag, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	if tag == 0 {
		return nil, nil
	}
	v, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	h := ClientHandle(v)
	return &h, nil
}

// EncodeClientEvent appends the wire encoding of e to w.
func EncodeClientEvent(w *wire.Writer, e ClientEvent) {
	w.PutUint8(uint8(e.Kind))
	putOptionalHandle(w, e.Target)
	switch e.Kind {
	case EventKey:
		EncodeKey(w, e.Key)
	case EventResize:
		w.PutUint16(e.Width)
		w.PutUint16(e.Height)
	case EventCommand:
		w.PutString(e.Command)
	}
}

// DecodeClientEvent reads one ClientEvent from r.
func DecodeClientEvent(r *wire.Reader) (ClientEvent, error) {
	disc, err := r.Uint8()
	if err != nil {
		return ClientEvent{}, err
	}
	target, err := getOptionalHandle(r)
	if err != nil {
		return ClientEvent{}, err
	}
	switch ClientEventKind(disc) {
	case EventKey:
		k, err := DecodeKey(r)
		if err != nil {
			return ClientEvent{}, err
		}
		return NewKeyEvent(target, k), nil
	case EventResize:
		width, err := r.Uint16()
		if err != nil {
			return ClientEvent{}, err
		}
		height, err := r.Uint16()
		if err != nil {
			return ClientEvent{}, err
		}
		return NewResizeEvent(target, width, height), nil
	case EventCommand:
		s, err := r.String()
		if err != nil {
			return ClientEvent{}, err
		}
		return NewCommandEvent(target, s), nil
	default:
		return ClientEvent{}, wire.ErrUnknownTag
	}
}
