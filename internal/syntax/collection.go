package syntax

import "github.com/tidwall/match"

// Handle is a stable index into a Collection, cheap to copy and compare.
type Handle int

// Collection holds every registered Syntax, keyed by the glob pattern used
// to associate a file path with one. Handle 0 is always the default
// (no-rules) syntax, mirroring the original's SyntaxCollection invariant
// that index 0 is the fallback.
type Collection struct {
	syntaxes []*Syntax
}

// NewCollection returns a Collection seeded with the default syntax at
// handle 0.
func NewCollection() *Collection {
	return &Collection{syntaxes: []*Syntax{New()}}
}

// Add registers s and returns its handle.
func (c *Collection) Add(s *Syntax) Handle {
	c.syntaxes = append(c.syntaxes, s)
	return Handle(len(c.syntaxes) - 1)
}

// Get returns the syntax at handle.
func (c *Collection) Get(h Handle) *Syntax {
	return c.syntaxes[h]
}

// FindHandleByPath returns the handle of the first non-default syntax whose
// extension glob matches path, or false if none match.
func (c *Collection) FindHandleByPath(path string) (Handle, bool) {
	for i := 1; i < len(c.syntaxes); i++ {
		if glob := c.syntaxes[i].ExtensionGlob(); glob != "" && match.Match(path, glob) {
			return Handle(i), true
		}
	}
	return 0, false
}
