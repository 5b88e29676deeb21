package proto

import "github.com/dshills/pepperd/internal/wire"

// keyDiscriminant returns the wire discriminant for k.Kind. The mapping is
// the frozen wire-format constant from spec §4.C / §9: None=0 .. Esc=17.
func keyDiscriminant(kind KeyKind) uint8 { return uint8(kind) }

// EncodeKey appends the wire encoding of k to w.
func EncodeKey(w *wire.Writer, k Key) {
	w.PutUint8(keyDiscriminant(k.Kind))
	switch k.Kind {
	case KeyF:
		w.PutUint32(k.F)
	case KeyChar, KeyCtrl, KeyAlt:
		w.PutChar(k.Char)
	}
}

// DecodeKey reads one Key from r.
func DecodeKey(r *wire.Reader) (Key, error) {
	disc, err := r.Uint8()
	if err != nil {
		return Key{}, err
	}
	kind := KeyKind(disc)
	if kind >= keyKindCount {
		return Key{}, wire.ErrUnknownTag
	}
	switch kind {
	case KeyF:
		n, err := r.Uint32()
		if err != nil {
			return Key{}, err
		}
		return NewKeyF(n), nil
	case KeyChar, KeyCtrl, KeyAlt:
		c, err := r.Char()
		if err != nil {
			return Key{}, err
		}
		return Key{Kind: kind, Char: c}, nil
	default:
		return Key{Kind: kind}, nil
	}
}
