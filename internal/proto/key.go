package proto

import (
	"fmt"
	"strconv"
)

// KeyKind discriminates the Key tagged union. The numeric values are a wire
// format constant (spec §9): reordering breaks on-disk/on-wire
// compatibility between client and server builds. New variants are only
// ever added at the end, immediately before keyKindCount.
type KeyKind uint8

const (
	KeyNone KeyKind = iota
	KeyBackspace
	KeyEnter
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyTab
	KeyDelete
	KeyF
	KeyChar
	KeyCtrl
	KeyAlt
	KeyEsc
	keyKindCount
)

// Key is the tagged union described in spec §3. F carries its function
// number (1..=99) when Kind == KeyF; Char carries an ASCII code point when
// Kind is KeyChar, KeyCtrl, or KeyAlt.
type Key struct {
	Kind KeyKind
	F    uint32
	Char rune
}

// Constructors mirroring the Rust enum's unit/tuple variants.
func NewKeyNone() Key               { return Key{Kind: KeyNone} }
func NewKeyBackspace() Key          { return Key{Kind: KeyBackspace} }
func NewKeyEnter() Key              { return Key{Kind: KeyEnter} }
func NewKeyLeft() Key               { return Key{Kind: KeyLeft} }
func NewKeyRight() Key              { return Key{Kind: KeyRight} }
func NewKeyUp() Key                 { return Key{Kind: KeyUp} }
func NewKeyDown() Key                { return Key{Kind: KeyDown} }
func NewKeyHome() Key                { return Key{Kind: KeyHome} }
func NewKeyEnd() Key                 { return Key{Kind: KeyEnd} }
func NewKeyPageUp() Key              { return Key{Kind: KeyPageUp} }
func NewKeyPageDown() Key            { return Key{Kind: KeyPageDown} }
func NewKeyTab() Key                 { return Key{Kind: KeyTab} }
func NewKeyDelete() Key              { return Key{Kind: KeyDelete} }
func NewKeyEsc() Key                 { return Key{Kind: KeyEsc} }
func NewKeyF(n uint32) Key           { return Key{Kind: KeyF, F: n} }
func NewKeyChar(c rune) Key          { return Key{Kind: KeyChar, Char: c} }
func NewKeyCtrl(c rune) Key          { return Key{Kind: KeyCtrl, Char: c} }
func NewKeyAlt(c rune) Key           { return Key{Kind: KeyAlt, Char: c} }

// String implements the Display half of the key-text round trip (spec
// property 2 / scenario S1). Keys whose Display is empty (KeyNone) are
// excluded from the round-trip property by definition.
func (k Key) String() string {
	switch k.Kind {
	case KeyNone:
		return ""
	case KeyBackspace:
		return "<backspace>"
	case KeyEnter:
		return "<enter>"
	case KeyLeft:
		return "<left>"
	case KeyRight:
		return "<right>"
	case KeyUp:
		return "<up>"
	case KeyDown:
		return "<down>"
	case KeyHome:
		return "<home>"
	case KeyEnd:
		return "<end>"
	case KeyPageUp:
		return "<pageup>"
	case KeyPageDown:
		return "<pagedown>"
	case KeyTab:
		return "<tab>"
	case KeyDelete:
		return "<delete>"
	case KeyF:
		return "<f" + strconv.FormatUint(uint64(k.F), 10) + ">"
	case KeyChar:
		switch k.Char {
		case ' ':
			return "<space>"
		case '<':
			return "<less>"
		case '>':
			return "<greater>"
		default:
			return string(k.Char)
		}
	case KeyCtrl:
		return "<c-" + string(k.Char) + ">"
	case KeyAlt:
		return "<a-" + string(k.Char) + ">"
	case KeyEsc:
		return "<esc>"
	default:
		return ""
	}
}

// KeyParseError reports where in the input text parsing failed.
type KeyParseError struct {
	Index int
	Rune  rune
	End   bool
}

func (e *KeyParseError) Error() string {
	if e.End {
		return fmt.Sprintf("could not finish parsing key at index %d", e.Index)
	}
	return fmt.Sprintf("invalid character %q at index %d", e.Rune, e.Index)
}

// parseState walks a rune sequence the way the original recursive-descent
// parser does, tracking the index of the next unread rune for error
// reporting.
type parseState struct {
	runes []rune
	pos   int
}

func (s *parseState) next() (rune, bool) {
	if s.pos >= len(s.runes) {
		return 0, false
	}
	r := s.runes[s.pos]
	s.pos++
	return r, true
}

func (s *parseState) errUnexpectedEnd() error {
	return &KeyParseError{Index: s.pos, End: true}
}

func (s *parseState) errInvalid(r rune) error {
	return &KeyParseError{Index: s.pos - 1, Rune: r}
}

func (s *parseState) consume(want rune) error {
	r, ok := s.next()
	if !ok {
		return s.errUnexpectedEnd()
	}
	if r != want {
		return s.errInvalid(r)
	}
	return nil
}

func (s *parseState) consumeStr(want string) error {
	for _, r := range want {
		if err := s.consume(r); err != nil {
			return err
		}
	}
	return nil
}

// ParseKey parses one key from the head of a rune stream, per the §4.C
// text grammar. It reports how many runes were consumed so callers can
// parse a sequence of keys back to back (ParseAllKeys).
func ParseKey(s string) (Key, int, error) {
	st := &parseState{runes: []rune(s)}
	k, err := parseKey(st)
	if err != nil {
		return Key{}, 0, err
	}
	return k, st.pos, nil
}

// ParseAllKeys parses a string as a tightly packed sequence of key
// notations (e.g. "ihello<esc>"), returning one Key per notation.
func ParseAllKeys(s string) ([]Key, error) {
	st := &parseState{runes: []rune(s)}
	var out []Key
	for st.pos < len(st.runes) {
		k, err := parseKey(st)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

func parseKey(st *parseState) (Key, error) {
	r, ok := st.next()
	if !ok {
		return Key{}, st.errUnexpectedEnd()
	}

	if r != '<' {
		if r == '>' {
			return Key{}, st.errInvalid(r)
		}
		if r > 0x7f {
			return Key{}, st.errInvalid(r)
		}
		return NewKeyChar(r), nil
	}

	tag, ok := st.next()
	if !ok {
		return Key{}, st.errUnexpectedEnd()
	}

	switch tag {
	case 'b':
		if err := st.consumeStr("ackspace>"); err != nil {
			return Key{}, err
		}
		return NewKeyBackspace(), nil
	case 's':
		if err := st.consumeStr("pace>"); err != nil {
			return Key{}, err
		}
		return NewKeyChar(' '), nil
	case 'e':
		c, ok := st.next()
		if !ok {
			return Key{}, st.errUnexpectedEnd()
		}
		switch c {
		case 'n':
			c2, ok := st.next()
			if !ok {
				return Key{}, st.errUnexpectedEnd()
			}
			switch c2 {
			case 't':
				if err := st.consumeStr("er>"); err != nil {
					return Key{}, err
				}
				return NewKeyEnter(), nil
			case 'd':
				if err := st.consume('>'); err != nil {
					return Key{}, err
				}
				return NewKeyEnd(), nil
			default:
				return Key{}, st.errInvalid(c2)
			}
		case 's':
			if err := st.consumeStr("c>"); err != nil {
				return Key{}, err
			}
			return NewKeyEsc(), nil
		default:
			return Key{}, st.errInvalid(c)
		}
	case 'l':
		if err := st.consume('e'); err != nil {
			return Key{}, err
		}
		c, ok := st.next()
		if !ok {
			return Key{}, st.errUnexpectedEnd()
		}
		switch c {
		case 's':
			if err := st.consumeStr("s>"); err != nil {
				return Key{}, err
			}
			return NewKeyChar('<'), nil
		case 'f':
			if err := st.consumeStr("t>"); err != nil {
				return Key{}, err
			}
			return NewKeyLeft(), nil
		default:
			return Key{}, st.errInvalid(c)
		}
	case 'g':
		if err := st.consumeStr("reater>"); err != nil {
			return Key{}, err
		}
		return NewKeyChar('>'), nil
	case 'r':
		if err := st.consumeStr("ight>"); err != nil {
			return Key{}, err
		}
		return NewKeyRight(), nil
	case 'u':
		if err := st.consumeStr("p>"); err != nil {
			return Key{}, err
		}
		return NewKeyUp(), nil
	case 'd':
		c, ok := st.next()
		if !ok {
			return Key{}, st.errUnexpectedEnd()
		}
		switch c {
		case 'o':
			if err := st.consumeStr("wn>"); err != nil {
				return Key{}, err
			}
			return NewKeyDown(), nil
		case 'e':
			if err := st.consumeStr("lete>"); err != nil {
				return Key{}, err
			}
			return NewKeyDelete(), nil
		default:
			return Key{}, st.errInvalid(c)
		}
	case 'h':
		if err := st.consumeStr("ome>"); err != nil {
			return Key{}, err
		}
		return NewKeyHome(), nil
	case 'p':
		if err := st.consumeStr("age"); err != nil {
			return Key{}, err
		}
		c, ok := st.next()
		if !ok {
			return Key{}, st.errUnexpectedEnd()
		}
		switch c {
		case 'u':
			if err := st.consumeStr("p>"); err != nil {
				return Key{}, err
			}
			return NewKeyPageUp(), nil
		case 'd':
			if err := st.consumeStr("own>"); err != nil {
				return Key{}, err
			}
			return NewKeyPageDown(), nil
		default:
			return Key{}, st.errInvalid(c)
		}
	case 't':
		if err := st.consumeStr("ab>"); err != nil {
			return Key{}, err
		}
		return NewKeyTab(), nil
	case 'f':
		c, ok := st.next()
		if !ok {
			return Key{}, st.errUnexpectedEnd()
		}
		d0, ok := digit(c)
		if !ok {
			return Key{}, st.errInvalid(c)
		}
		c2, ok := st.next()
		if !ok {
			return Key{}, st.errUnexpectedEnd()
		}
		if d1, ok := digit(c2); ok {
			if err := st.consume('>'); err != nil {
				return Key{}, err
			}
			return NewKeyF(uint32(d0*10 + d1)), nil
		}
		if c2 == '>' {
			return NewKeyF(uint32(d0)), nil
		}
		return Key{}, st.errInvalid(c2)
	case 'c':
		if err := st.consume('-'); err != nil {
			return Key{}, err
		}
		c, ok := st.next()
		if !ok {
			return Key{}, st.errUnexpectedEnd()
		}
		if !isASCIIAlnum(c) {
			return Key{}, st.errInvalid(c)
		}
		if err := st.consume('>'); err != nil {
			return Key{}, err
		}
		return NewKeyCtrl(c), nil
	case 'a':
		if err := st.consume('-'); err != nil {
			return Key{}, err
		}
		c, ok := st.next()
		if !ok {
			return Key{}, st.errUnexpectedEnd()
		}
		if !isASCIIAlnum(c) {
			return Key{}, st.errInvalid(c)
		}
		if err := st.consume('>'); err != nil {
			return Key{}, err
		}
		return NewKeyAlt(c), nil
	default:
		return Key{}, st.errInvalid(tag)
	}
}

func digit(r rune) (int, bool) {
	if r >= '0' && r <= '9' {
		return int(r - '0'), true
	}
	return 0, false
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
