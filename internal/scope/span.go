package scope

import (
	"fmt"
	"go/ast"
	"go/token"

	"github.com/sirkon/rbtree"
)

// span is a closed [start, end] source range of a scope node. Scopes nested
// in it live in their own tree.
type span struct {
	start token.Pos
	end   token.Pos

	node   ast.Node
	nested *rbtree.Tree[*span]
}

// point is a span of a single position, used as a search key.
func point(pos token.Pos) *span {
	return &span{start: pos, end: pos}
}

// Cmp orders disjoint spans by position and treats any overlap as equality.
// Scopes of a file either nest or are disjoint, an overlap is a nesting.
func (s *span) Cmp(other *span) int {
	switch {
	case s.end < other.start:
		return -1
	case s.start > other.end:
		return 1
	default:
		return 0
	}
}

func (s *span) covers(other *span) bool {
	return s.start <= other.start && s.end >= other.end
}

// place puts s into t or into the nested tree of the span it falls into.
// An s covering the existing span takes its slot and pushes it one level
// down.
func place(t *rbtree.Tree[*span], s *span) {
	got := t.InsertReturn(s)
	switch {
	case got == s:
		return
	case got.covers(s):
		place(got.subtree(), s)
	case s.covers(got):
		moved := *got
		*got = *s
		place(got.subtree(), &moved)
	default:
		panic(fmt.Sprintf("scope: spans %s and %s overlap partially", s, got))
	}
}

func (s *span) subtree() *rbtree.Tree[*span] {
	if s.nested == nil {
		s.nested = rbtree.New[*span]()
	}
	return s.nested
}

// innermost descends into nested trees while they have a span at pos.
func (s *span) innermost(pos token.Pos) ast.Node {
	for s.nested != nil {
		next := s.nested.Search(point(pos))
		if next == nil {
			break
		}
		s = next
	}
	return s.node
}

func (s *span) String() string {
	return fmt.Sprintf("[%d,%d]", s.start, s.end)
}
