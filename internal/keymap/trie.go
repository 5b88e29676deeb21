package keymap

import "github.com/dshills/pepperd/internal/proto"

// node is one trie node. A node is terminal when expansion is non-nil; a
// terminal node never also has children, so a match is always unambiguous
// (ErrAmbiguousBinding catches any insert that would violate this).
type node struct {
	children  map[proto.Key]*node
	expansion []proto.Key
}

func newNode() *node {
	return &node{children: make(map[proto.Key]*node)}
}

func (n *node) isTerminal() bool {
	return n.expansion != nil
}

// trie maps key sequences to expansions for a single mode.
type trie struct {
	root *node
}

func newTrie() *trie {
	return &trie{root: newNode()}
}

// insert binds seq to expansion. It fails if seq is empty, if seq is a
// prefix of (or extends) an already-bound sequence, since that would make
// matching ambiguous between a shorter terminal node and a longer path
// through it.
func (t *trie) insert(seq, expansion []proto.Key) error {
	if len(seq) == 0 {
		return ErrEmptySequence
	}
	n := t.root
	for _, k := range seq {
		if n.isTerminal() {
			return ErrAmbiguousBinding
		}
		child, ok := n.children[k]
		if !ok {
			child = newNode()
			n.children[k] = child
		}
		n = child
	}
	if n.isTerminal() || len(n.children) > 0 {
		return ErrAmbiguousBinding
	}
	n.expansion = append([]proto.Key(nil), expansion...)
	return nil
}
