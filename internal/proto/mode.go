package proto

// Mode is the editor's current modal state, pushed to clients via the Mode
// editor operation and consulted by the keymap engine (component J) to
// select a key-sequence matcher. Discriminant order matches registration
// order in spec §4.J and must not be reordered.
type Mode uint8

const (
	ModeNormal Mode = iota
	ModeInsert
	ModeReadLine
	ModePicker
	ModeCommand
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeInsert:
		return "insert"
	case ModeReadLine:
		return "read_line"
	case ModePicker:
		return "picker"
	case ModeCommand:
		return "command"
	default:
		return "unknown"
	}
}
