package command

import "fmt"

// Args wraps a parsed Line with the consume-as-you-go helpers
// original_source's command/builtin.rs calls through ctx.args
// (assert_no_bang, get_flags, try_next, assert_empty).
type Args struct {
	line Line
	next int
}

// NewArgs begins argument consumption for line.
func NewArgs(line Line) *Args {
	return &Args{line: line}
}

// AssertNoBang fails if the command was invoked with a "!" bang that it
// does not accept.
func (a *Args) AssertNoBang() error {
	if a.line.Bang {
		return &ParseError{From: a.line.NameFrom, To: a.line.NameTo + 1, Msg: fmt.Sprintf("%q does not accept a bang", a.line.Name)}
	}
	return nil
}

// Flag looks up a -name or -name=value flag, returning its value (empty
// string for a bare flag) and whether it was present.
func (a *Args) Flag(name string) (string, bool) {
	for _, f := range a.line.Flags {
		if f.Name == name {
			if f.Value != nil {
				return f.Value.Text, true
			}
			return "", true
		}
	}
	return "", false
}

// GetFlags validates that every flag on the line is named in allowed,
// mirroring builtin.rs's args.get_flags(&mut [...]) pattern.
func (a *Args) GetFlags(allowed ...string) error {
	for _, f := range a.line.Flags {
		found := false
		for _, name := range allowed {
			if f.Name == name {
				found = true
				break
			}
		}
		if !found {
			return &ParseError{From: f.From, To: f.To, Msg: fmt.Sprintf("unexpected flag %q", f.Name)}
		}
	}
	return nil
}

// TryNext returns the next unconsumed positional argument, or nil if
// there are none left.
func (a *Args) TryNext() *Value {
	if a.next >= len(a.line.Args) {
		return nil
	}
	v := &a.line.Args[a.next]
	a.next++
	return v
}

// Next requires one more positional argument.
func (a *Args) Next() (Value, error) {
	v := a.TryNext()
	if v == nil {
		return Value{}, &ParseError{From: a.line.NameFrom, To: a.line.NameTo, Msg: fmt.Sprintf("%q expects another argument", a.line.Name)}
	}
	return *v, nil
}

// AssertEmpty fails if any positional argument is left unconsumed.
func (a *Args) AssertEmpty() error {
	if a.next < len(a.line.Args) {
		v := a.line.Args[a.next]
		return &ParseError{From: v.From, To: v.To, Msg: fmt.Sprintf("unexpected argument %q", v.Text)}
	}
	return nil
}
