package command

import "fmt"

// macro is a user-defined command captured as a body of commands with
// named register parameters (spec §4.K).
type macro struct {
	name   string
	params []string
	body   []string
}

// DefineMacro registers a new macro command. body is a sequence of raw
// command lines evaluated in order on invocation; params names the
// positional registers each line may reference as "%name".
func (r *Registry) DefineMacro(name string, params []string, body []string) error {
	if name == "" {
		return fmt.Errorf("command: empty macro name")
	}
	r.entries[name] = entry{source: SourceMacro, macro: &macro{name: name, params: params, body: append([]string(nil), body...)}}
	return nil
}
